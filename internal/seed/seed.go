// Package seed alimente la base avec le référentiel du centre : équipes,
// compétences, piquets, jours fériés et créneaux de garde.
package seed

import (
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/repository"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/utils"
)

var equipes = []domain.Equipe{
	{Code: "A", Libelle: "Équipe A", Couleur: "#e53935"},
	{Code: "B", Libelle: "Équipe B", Couleur: "#1e88e5"},
	{Code: "C", Libelle: "Équipe C", Couleur: "#43a047"},
	{Code: "D", Libelle: "Équipe D", Couleur: "#fdd835"},
}

var competences = []domain.Competence{
	{Code: "CA", Libelle: "Chef d'agrès"},
	{Code: "CE", Libelle: "Chef d'équipe"},
	{Code: "COD1", Libelle: "Conduite véhicule léger"},
	{Code: "COD2", Libelle: "Conduite poids lourd"},
	{Code: "SUAP", Libelle: "Secours d'urgence aux personnes"},
	{Code: "INC", Libelle: "Incendie"},
}

// piquetSeed relie un piquet à ses exigences par code de compétence.
type piquetSeed struct {
	piquet    domain.Piquet
	exigences []string
}

var piquets = []piquetSeed{
	{piquet: domain.Piquet{Code: "CA", Libelle: "Chef d'agrès"}, exigences: []string{"CA", "INC"}},
	{piquet: domain.Piquet{Code: "COND", Libelle: "Conducteur"}, exigences: []string{"COD2", "INC"}},
	{piquet: domain.Piquet{Code: "CE", Libelle: "Chef d'équipe"}, exigences: []string{"CE", "INC"}},
	{piquet: domain.Piquet{Code: "EQ", Libelle: "Équipier"}, exigences: []string{"INC"}},
	{piquet: domain.Piquet{Code: "VSAV", Libelle: "Équipier VSAV"}, exigences: []string{"SUAP"}},
	{piquet: domain.Piquet{Code: "AST", Libelle: "Astreinte renfort", IsAstreinte: true}, exigences: nil},
}

// SeedReferentiel insère équipes, compétences et piquets. Les doublons sont
// ignorés pour que l'opération soit rejouable.
func SeedReferentiel(repo *repository.Repository) {
	for _, e := range equipes {
		equipe := e
		if err := repo.CreateEquipe(&equipe); err != nil {
			slog.Error("impossible d'insérer l'équipe", "code", equipe.Code, "error", err)
			continue
		}
		slog.Info("équipe insérée", "code", equipe.Code)
	}

	byCode := make(map[string]int64)
	existing, err := repo.GetAllCompetences()
	if err == nil {
		for _, c := range existing {
			byCode[c.Code] = c.ID
		}
	}

	for _, c := range competences {
		if _, ok := byCode[c.Code]; ok {
			continue
		}
		competence := c
		if err := repo.CreateCompetence(&competence); err != nil {
			slog.Error("impossible d'insérer la compétence", "code", competence.Code, "error", err)
			continue
		}
		byCode[competence.Code] = competence.ID
		slog.Info("compétence insérée", "code", competence.Code)
	}

	for _, ps := range piquets {
		piquet := ps.piquet
		if err := repo.CreatePiquet(&piquet); err != nil {
			slog.Error("impossible d'insérer le piquet", "code", piquet.Code, "error", err)
			continue
		}
		for _, code := range ps.exigences {
			competenceID, ok := byCode[code]
			if !ok {
				slog.Error("compétence exigée inconnue", "code", code)
				continue
			}
			if err := repo.AddPiquetExigence(piquet.ID, competenceID); err != nil {
				slog.Error("impossible d'ajouter l'exigence", "piquet", piquet.Code, "competence", code, "error", err)
			}
		}
		slog.Info("piquet inséré", "code", piquet.Code)
	}
}

// easterSunday calcule le dimanche de Pâques (algorithme de Meeus).
func easterSunday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// SeedHolidaysFR insère les jours fériés français d'une année : fêtes fixes
// plus lundi de Pâques, Ascension et lundi de Pentecôte.
func SeedHolidaysFR(repo *repository.Repository, year int) {
	fixed := []struct {
		month time.Month
		day   int
		label string
	}{
		{time.January, 1, "Jour de l'an"},
		{time.May, 1, "Fête du Travail"},
		{time.May, 8, "Victoire 1945"},
		{time.July, 14, "Fête nationale"},
		{time.August, 15, "Assomption"},
		{time.November, 1, "Toussaint"},
		{time.November, 11, "Armistice 1918"},
		{time.December, 25, "Noël"},
	}

	holidays := make([]domain.Holiday, 0, len(fixed)+3)
	for _, f := range fixed {
		holidays = append(holidays, domain.Holiday{
			Date:  time.Date(year, f.month, f.day, 0, 0, 0, 0, time.UTC),
			Label: f.label,
		})
	}

	easter := easterSunday(year)
	holidays = append(holidays,
		domain.Holiday{Date: easter.AddDate(0, 0, 1), Label: "Lundi de Pâques"},
		domain.Holiday{Date: easter.AddDate(0, 0, 39), Label: "Ascension"},
		domain.Holiday{Date: easter.AddDate(0, 0, 50), Label: "Lundi de Pentecôte"},
	)

	inserted := 0
	for _, h := range holidays {
		holiday := h
		if err := repo.CreateHoliday(&holiday); err != nil {
			slog.Error("impossible d'insérer le jour férié", "label", holiday.Label, "error", err)
			continue
		}
		inserted++
	}
	slog.Info("jours fériés insérés", "year", year, "count", inserted)
}

// GenerateMonth crée les créneaux d'un mois : une nuit en semaine, jour et
// nuit les week-ends et fériés. Les créneaux existants sont conservés.
func GenerateMonth(repo *repository.Repository, year int, month time.Month) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)

	created := 0
	for date := first; date.Month() == month; date = date.AddDate(0, 0, 1) {
		isWeekend := utils.IsWeekend(date)
		isHoliday, err := repo.IsHoliday(date)
		if err != nil {
			slog.Error("impossible de vérifier le jour férié", "date", date.Format("2006-01-02"), "error", err)
			return
		}

		slots := []domain.Slot{domain.SlotNuit}
		if isWeekend || isHoliday {
			slots = []domain.Slot{domain.SlotJour, domain.SlotNuit}
		}

		for _, slot := range slots {
			if _, err := repo.GetGardeByDateSlot(date, slot); err == nil {
				continue
			} else if !errors.Is(err, sql.ErrNoRows) {
				slog.Error("impossible de lire le créneau", "date", date.Format("2006-01-02"), "error", err)
				return
			}

			garde := &domain.Garde{
				Date:      date,
				Slot:      slot,
				IsWeekend: isWeekend,
				IsHoliday: isHoliday,
			}
			if err := repo.CreateGarde(garde); err != nil {
				slog.Error("impossible de créer le créneau", "date", date.Format("2006-01-02"), "error", err)
				continue
			}
			created++
		}
	}

	slog.Info("créneaux générés", "year", year, "month", int(month), "count", created)
}
