package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/config"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

// mailKinds associe un type de message à son modèle et à son objet.
var mailKinds = map[string]struct {
	template string
	subject  string
}{
	"new_account":      {"./templates/new_account_email.html", "Feuille de Garde - Votre compte"},
	"reset_password":   {"./templates/reset_password_otp_email.html", "Feuille de Garde - Réinitialisation du mot de passe"},
	"month_validated":  {"./templates/month_validated_email.html", "Feuille de Garde - Feuille mensuelle validée"},
	"personal_roster":  {"./templates/personal_roster_email.html", "Feuille de Garde - Vos gardes du mois"},
	"monthly_reminder": {"./templates/monthly_reminder_email.html", "Feuille de Garde - Vos gardes du mois prochain"},
}

// queuedMail est la forme reçue sur la file : la charge utile reste brute
// jusqu'à ce que le type soit connu.
type queuedMail struct {
	Type string          `json:"type"`
	To   string          `json:"to"`
	Data json.RawMessage `json:"data"`
}

// decodeMailData retype la charge utile selon le type de message, sans quoi
// les modèles recevraient une map indexée par les clés JSON et rendraient
// tous leurs champs vides.
func decodeMailData(msgType string, raw json.RawMessage) (any, error) {
	var data any
	switch msgType {
	case "new_account":
		data = &domain.NewAccountMailData{}
	case "reset_password":
		data = &domain.ResetPasswordMailData{}
	case "month_validated":
		data = &domain.MonthValidatedMailData{}
	case "personal_roster":
		data = &domain.PersonalRosterMailData{}
	case "monthly_reminder":
		data = &domain.MonthlyReminderMailData{}
	default:
		return nil, fmt.Errorf("type de courriel inconnu : %s", msgType)
	}

	if err := json.Unmarshal(raw, data); err != nil {
		return nil, err
	}
	return data, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("impossible de charger la configuration", slog.String("error", err.Error()))
		return
	}

	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("impossible de créer le client SMTP", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("impossible de joindre le serveur SMTP", slog.String("error", err.Error()))
		return
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("impossible de joindre RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Error("impossible d'ouvrir le canal", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	q, err := ch.QueueDeclare(
		"email_queue",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("impossible de déclarer la file", slog.String("error", err.Error()))
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		logger.Error("impossible de consommer la file", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("message reçu", slog.String("message", string(msg.Body)))

				mailMessage := queuedMail{}
				if err := json.Unmarshal(msg.Body, &mailMessage); err != nil {
					logger.Error("message illisible", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				kind, ok := mailKinds[mailMessage.Type]
				if !ok {
					logger.Error("type de courriel inconnu", slog.String("type", mailMessage.Type))
					_ = msg.Nack(false, false)
					continue
				}

				data, err := decodeMailData(mailMessage.Type, mailMessage.Data)
				if err != nil {
					logger.Error("charge utile illisible", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				m := mail.NewMsg()
				if err := m.From(cfg.Email.SMTP.Username); err != nil {
					logger.Error("expéditeur invalide", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.To(mailMessage.To); err != nil {
					logger.Error("destinataire invalide", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				tmpl, err := template.ParseFiles(kind.template)
				if err != nil {
					logger.Error("modèle de courriel illisible", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				if err := m.SetBodyHTMLTemplate(tmpl, data); err != nil {
					logger.Error("impossible de composer le corps du courriel", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				m.Subject(kind.subject)

				if err := client.DialAndSend(m); err != nil {
					logger.Error("échec de l'envoi", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // remettre en file pour réessayer
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("en attente de messages... (CTRL+C pour quitter)")
	<-sigChan

	slog.Info("arrêt du mail worker...")
	cancel()
	wg.Wait()
	slog.Info("mail worker arrêté")
}
