package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/config"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/reminder"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/repository"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// queuePublisher dépose les rappels dans email_queue, consommée par cmd/mail.
type queuePublisher struct {
	channel *amqp.Channel
	timeout time.Duration
}

func (p *queuePublisher) Publish(msg domain.MailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	return p.channel.PublishWithContext(
		ctx,
		"",
		"email_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// nextRun renvoie le prochain 25 du mois à 08h00, heure locale.
func nextRun(now time.Time) time.Time {
	run := time.Date(now.Year(), now.Month(), 25, 8, 0, 0, 0, now.Location())
	if !run.After(now) {
		run = run.AddDate(0, 1, 0)
	}
	return run
}

func main() {
	var once bool
	flag.BoolVar(&once, "once", false, "envoyer le rappel immédiatement puis quitter")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("impossible de charger la configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("impossible de créer le pool de connexions", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	pingCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("impossible de joindre la base de données", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

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

	if _, err := ch.QueueDeclare("email_queue", true, false, false, false, nil); err != nil {
		logger.Error("impossible de déclarer la file", slog.String("error", err.Error()))
		return
	}

	pub := &queuePublisher{
		channel: ch,
		timeout: time.Duration(cfg.RabbitMQ.PublishTimeout) * time.Second,
	}

	run := func() {
		sent, err := reminder.Send(repo, pub, time.Now())
		if err != nil {
			logger.Error("échec du rappel mensuel", slog.String("error", err.Error()), slog.Int("sent", sent))
			return
		}
		logger.Info("rappel mensuel publié", slog.Int("sent", sent))
	}

	if once {
		run()
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	for {
		next := nextRun(time.Now())
		logger.Info("prochain rappel mensuel", slog.Time("at", next))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-sigChan:
			timer.Stop()
			logger.Info("arrêt du rappel mensuel")
			return
		case <-timer.C:
			run()
		}
	}
}
