package domain

// Indisponibilite marque qu'un personnel s'est déclaré indisponible pour
// une garde. Unique par (garde, personnel).
type Indisponibilite struct {
	ID          int64 `json:"id"`
	GardeID     int64 `json:"gardeId"`
	PersonnelID int64 `json:"personnelId"`
}
