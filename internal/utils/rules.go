package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

// SlotRef repère un créneau de garde par sa date (minuit UTC) et son slot.
type SlotRef struct {
	Date time.Time
	Slot domain.Slot
}

func NewSlotRef(date time.Time, slot domain.Slot) SlotRef {
	y, m, d := date.Date()
	return SlotRef{Date: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Slot: slot}
}

// ValidateCompetences vérifie que le personnel possède toutes les compétences
// exigées par le piquet, non expirées à la date de la garde.
func ValidateCompetences(exigences []domain.Competence, acquis []domain.Acquis, onDate time.Time) error {
	for _, req := range exigences {
		found := false
		for _, a := range acquis {
			if a.CompetenceID != req.ID {
				continue
			}
			if a.DateExpiration != nil && a.DateExpiration.Before(onDate) {
				return fmt.Errorf("compétence %s expirée le %s", req.Code, a.DateExpiration.Format("02/01/2006"))
			}
			found = true
			break
		}
		if !found {
			return fmt.Errorf("compétence manquante : %s", req.Code)
		}
	}
	return nil
}

// WouldMakeThreeInARow détecte si l'ajout du créneau candidat produirait une
// série de trois gardes consécutives sans coupure de 24 h, c'est-à-dire un
// motif JOUR+NUIT+JOUR ou NUIT+JOUR+NUIT sur deux jours glissants. occupied
// contient les créneaux déjà tenus par le personnel (astreintes exclues par
// l'appelant).
func WouldMakeThreeInARow(occupied map[SlotRef]bool, candidate SlotRef) bool {
	all := make(map[SlotRef]bool, len(occupied)+1)
	for ref := range occupied {
		all[NewSlotRef(ref.Date, ref.Slot)] = true
	}
	candidate = NewSlotRef(candidate.Date, candidate.Slot)
	all[candidate] = true

	has := func(d time.Time, s domain.Slot) bool {
		return all[NewSlotRef(d, s)]
	}

	for _, delta := range []int{-1, 0} {
		d := candidate.Date.AddDate(0, 0, delta)
		next := d.AddDate(0, 0, 1)
		if has(d, domain.SlotJour) && has(d, domain.SlotNuit) && has(next, domain.SlotJour) {
			return true // J N J
		}
		if has(d, domain.SlotNuit) && has(next, domain.SlotJour) && has(next, domain.SlotNuit) {
			return true // N J N
		}
	}
	return false
}

var (
	ErrStatutServiceRequis   = errors.New("personnel à double statut : précisez le statut de service (pro ou volontaire)")
	ErrStatutServiceInvalide = errors.New("statut de service invalide")
)

// ResolveStatutService applique la règle du double statut : pour un personnel
// « double » le statut de service doit être fourni explicitement ; pour les
// autres il est déduit du statut du personnel, une valeur contradictoire est
// refusée.
func ResolveStatutService(p *domain.Personnel, requested *domain.StatutService) (*domain.StatutService, error) {
	if requested != nil && *requested != domain.StatutServicePro && *requested != domain.StatutServiceVolontaire {
		return nil, ErrStatutServiceInvalide
	}

	if p.Statut == domain.StatutDouble {
		if requested == nil {
			return nil, ErrStatutServiceRequis
		}
		return requested, nil
	}

	resolved := domain.StatutService(p.Statut)
	if requested != nil && *requested != resolved {
		return nil, ErrStatutServiceInvalide
	}
	return &resolved, nil
}

// IsWeekend répond true le samedi et le dimanche.
func IsWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
