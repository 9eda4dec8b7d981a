package domain

import "time"

type Slot string

const (
	SlotJour Slot = "JOUR"
	SlotNuit Slot = "NUIT"
)

// Garde représente un créneau de garde : une seule garde par (date, slot).
// En semaine seule la NUIT existe ; week-ends et jours fériés ont JOUR et NUIT.
type Garde struct {
	ID          int64      `json:"id"`
	Date        time.Time  `json:"date"`
	Slot        Slot       `json:"slot"`
	IsWeekend   bool       `json:"isWeekend"`
	IsHoliday   bool       `json:"isHoliday"`
	EquipeID    *int64     `json:"equipeId"`
	Validated   bool       `json:"validated"`
	ValidatedAt *time.Time `json:"validatedAt"`
	Version     int32      `json:"-"`
}
