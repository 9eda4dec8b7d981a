package domain

import "time"

type StatutService string

const (
	StatutServicePro        StatutService = "pro"
	StatutServiceVolontaire StatutService = "volontaire"
)

// Affectation place un personnel sur un piquet pour une garde donnée.
// Unicité en base : une seule affectation par (garde, piquet) et par
// (garde, personnel).
type Affectation struct {
	ID            int64          `json:"id"`
	GardeID       int64          `json:"gardeId"`
	PiquetID      int64          `json:"piquetId"`
	PersonnelID   int64          `json:"personnelId"`
	StatutService *StatutService `json:"statutService"`
	CreatedAt     time.Time      `json:"createdAt"`
}
