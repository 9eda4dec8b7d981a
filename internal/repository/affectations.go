package repository

import (
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/utils"
)

func (r *Repository) GetAffectationByID(id int64) (*domain.Affectation, error) {
	query := `
		SELECT garde_id, piquet_id, personnel_id, statut_service, created_at
		FROM affectations WHERE id = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	a := &domain.Affectation{
		ID: id,
	}

	dst := []any{&a.GardeID, &a.PiquetID, &a.PersonnelID, &a.StatutService, &a.CreatedAt}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return a, nil
}

func (r *Repository) GetAffectationsByGarde(gardeID int64) ([]*domain.Affectation, error) {
	query := `
		SELECT id, garde_id, piquet_id, personnel_id, statut_service, created_at
		FROM affectations
		WHERE garde_id = $1
		ORDER BY id
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, gardeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	affectations := make([]*domain.Affectation, 0)
	for rows.Next() {
		var a domain.Affectation
		dst := []any{&a.ID, &a.GardeID, &a.PiquetID, &a.PersonnelID, &a.StatutService, &a.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		affectations = append(affectations, &a)
	}

	return affectations, rows.Err()
}

// GetAffectationsByGardes charge en une requête les affectations de toutes
// les gardes demandées, regroupées par garde.
func (r *Repository) GetAffectationsByGardes(gardeIDs []int64) (map[int64][]*domain.Affectation, error) {
	byGarde := make(map[int64][]*domain.Affectation)
	if len(gardeIDs) == 0 {
		return byGarde, nil
	}

	query := `
		SELECT id, garde_id, piquet_id, personnel_id, statut_service, created_at
		FROM affectations
		WHERE garde_id = ANY($1)
		ORDER BY id
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, gardeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a domain.Affectation
		dst := []any{&a.ID, &a.GardeID, &a.PiquetID, &a.PersonnelID, &a.StatutService, &a.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		byGarde[a.GardeID] = append(byGarde[a.GardeID], &a)
	}

	return byGarde, rows.Err()
}

func (r *Repository) CreateAffectation(a *domain.Affectation) error {
	query := `
		INSERT INTO affectations (garde_id, piquet_id, personnel_id, statut_service)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	args := []any{a.GardeID, a.PiquetID, a.PersonnelID, a.StatutService}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteAffectation(id int64) error {
	query := `
		DELETE FROM affectations WHERE id = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}

// GetOccupiedSlots renvoie les créneaux déjà tenus par un personnel autour
// d'une date, hors piquets d'astreinte. Sert au contrôle des enchaînements.
func (r *Repository) GetOccupiedSlots(personnelID int64, from, to time.Time) (map[utils.SlotRef]bool, error) {
	query := `
		SELECT g.date, g.slot
		FROM affectations a
		INNER JOIN gardes g ON g.id = a.garde_id
		INNER JOIN piquets p ON p.id = a.piquet_id
		WHERE a.personnel_id = $1 AND g.date BETWEEN $2 AND $3 AND p.is_astreinte = FALSE
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, personnelID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	occupied := make(map[utils.SlotRef]bool)
	for rows.Next() {
		var date time.Time
		var slot domain.Slot
		if err := rows.Scan(&date, &slot); err != nil {
			return nil, err
		}
		occupied[utils.NewSlotRef(date, slot)] = true
	}

	return occupied, rows.Err()
}

// CountMonthAffectations compte les gardes (hors astreinte) déjà affectées à
// un personnel sur le mois. Sert au classement des suggestions.
func (r *Repository) CountMonthAffectations(personnelID int64, year int, month time.Month) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM affectations a
		INNER JOIN gardes g ON g.id = a.garde_id
		INNER JOIN piquets p ON p.id = a.piquet_id
		WHERE a.personnel_id = $1
			AND EXTRACT(YEAR FROM g.date) = $2 AND EXTRACT(MONTH FROM g.date) = $3
			AND p.is_astreinte = FALSE
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	count := 0
	if err := r.dbpool.QueryRowContext(ctx, query, personnelID, year, int(month)).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

// GetUpcomingAffectations renvoie les prochaines gardes d'un personnel avec le
// détail du créneau et du piquet, pour la feuille de route individuelle.
func (r *Repository) GetUpcomingAffectations(personnelID int64, from time.Time) ([]*domain.PersonalGardeRow, error) {
	query := `
		SELECT g.date, g.slot, p.libelle
		FROM affectations a
		INNER JOIN gardes g ON g.id = a.garde_id
		INNER JOIN piquets p ON p.id = a.piquet_id
		WHERE a.personnel_id = $1 AND g.date >= $2
		ORDER BY g.date, g.slot
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, personnelID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gardes := make([]*domain.PersonalGardeRow, 0)
	for rows.Next() {
		var row domain.PersonalGardeRow
		var date time.Time
		var slot domain.Slot
		if err := rows.Scan(&date, &slot, &row.Piquet); err != nil {
			return nil, err
		}
		row.Date = date.Format("02/01/2006")
		row.Slot = string(slot)
		gardes = append(gardes, &row)
	}

	return gardes, rows.Err()
}

// GetMonthRosterByPersonnel regroupe les gardes du mois par personnel, pour
// les courriels de feuille de garde individuelle et le rappel mensuel. Sans
// filtre d'équipe, tout le mois est couvert.
func (r *Repository) GetMonthRosterByPersonnel(year int, month time.Month, equipeID *int64) (map[int64][]*domain.PersonalGardeRow, error) {
	query := `
		SELECT a.personnel_id, g.date, g.slot, p.libelle
		FROM affectations a
		INNER JOIN gardes g ON g.id = a.garde_id
		INNER JOIN piquets p ON p.id = a.piquet_id
		WHERE EXTRACT(YEAR FROM g.date) = $1 AND EXTRACT(MONTH FROM g.date) = $2
		AND ($3::bigint IS NULL OR g.equipe_id = $3)
		ORDER BY g.date, g.slot
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, year, int(month), equipeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byPersonnel := make(map[int64][]*domain.PersonalGardeRow)
	for rows.Next() {
		var personnelID int64
		var date time.Time
		var slot domain.Slot
		var row domain.PersonalGardeRow
		if err := rows.Scan(&personnelID, &date, &slot, &row.Piquet); err != nil {
			return nil, err
		}
		row.Date = date.Format("02/01/2006")
		row.Slot = string(slot)
		byPersonnel[personnelID] = append(byPersonnel[personnelID], &row)
	}

	return byPersonnel, rows.Err()
}
