// Package reminder construit le rappel mensuel : le 25 de chaque mois, chaque
// sapeur affecté le mois suivant reçoit le récapitulatif de ses gardes.
package reminder

import (
	"fmt"
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

// Directory expose les lectures nécessaires au rappel. *repository.Repository
// la satisfait.
type Directory interface {
	GetAllPersonnels() ([]*domain.Personnel, error)
	GetMonthRosterByPersonnel(year int, month time.Month, equipeID *int64) (map[int64][]*domain.PersonalGardeRow, error)
}

// Publisher pousse un message sur la file de courriels.
type Publisher interface {
	Publish(msg domain.MailMessage) error
}

var moisFrancais = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

// MoisLabel renvoie le libellé français d'un mois, par exemple "mars 2025".
func MoisLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", moisFrancais[month-1], year)
}

// NextMonth renvoie le mois qui suit la date donnée.
func NextMonth(d time.Time) (int, time.Month) {
	if d.Month() == time.December {
		return d.Year() + 1, time.January
	}
	return d.Year(), d.Month() + 1
}

// BuildMails assemble un message monthly_reminder par sapeur actif ayant au
// moins une garde dans le récapitulatif. Les comptes inactifs et les sapeurs
// sans affectation sont ignorés.
func BuildMails(label string, personnels []*domain.Personnel, roster map[int64][]*domain.PersonalGardeRow) []domain.MailMessage {
	byID := make(map[int64]*domain.Personnel, len(personnels))
	for _, p := range personnels {
		byID[p.ID] = p
	}

	messages := make([]domain.MailMessage, 0, len(roster))
	for personnelID, gardes := range roster {
		p, ok := byID[personnelID]
		if !ok || !p.IsActive || len(gardes) == 0 {
			continue
		}

		rows := make([]domain.PersonalGardeRow, 0, len(gardes))
		for _, g := range gardes {
			rows = append(rows, *g)
		}

		messages = append(messages, domain.MailMessage{
			Type: "monthly_reminder",
			To:   p.Email,
			Data: domain.MonthlyReminderMailData{
				FullName:  fmt.Sprintf("%s %s", p.Prenom, p.Nom),
				MoisLabel: label,
				Gardes:    rows,
			},
		})
	}
	return messages
}

// Send lit la feuille de garde du mois suivant now et publie un rappel par
// sapeur affecté. Renvoie le nombre de messages publiés ; un échec de
// publication arrête l'envoi.
func Send(dir Directory, pub Publisher, now time.Time) (int, error) {
	year, month := NextMonth(now)

	roster, err := dir.GetMonthRosterByPersonnel(year, month, nil)
	if err != nil {
		return 0, err
	}
	if len(roster) == 0 {
		return 0, nil
	}

	personnels, err := dir.GetAllPersonnels()
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, msg := range BuildMails(MoisLabel(year, month), personnels, roster) {
		if err := pub.Publish(msg); err != nil {
			return sent, err
		}
		sent++
	}
	return sent, nil
}
