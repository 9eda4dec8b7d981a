package repository

import (
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

func (r *Repository) GetIndisponibiliteByID(id int64) (*domain.Indisponibilite, error) {
	query := `
		SELECT garde_id, personnel_id
		FROM indisponibilites WHERE id = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	i := &domain.Indisponibilite{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&i.GardeID, &i.PersonnelID); err != nil {
		return nil, err
	}

	return i, nil
}

func (r *Repository) GetIndisponibilitesByGardes(gardeIDs []int64) (map[int64][]*domain.Indisponibilite, error) {
	byGarde := make(map[int64][]*domain.Indisponibilite)
	if len(gardeIDs) == 0 {
		return byGarde, nil
	}

	query := `
		SELECT id, garde_id, personnel_id
		FROM indisponibilites
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
		var i domain.Indisponibilite
		if err := rows.Scan(&i.ID, &i.GardeID, &i.PersonnelID); err != nil {
			return nil, err
		}
		byGarde[i.GardeID] = append(byGarde[i.GardeID], &i)
	}

	return byGarde, rows.Err()
}

// ListIndisponibilites filtre par garde et/ou par sapeur ; les deux filtres
// sont facultatifs.
func (r *Repository) ListIndisponibilites(gardeID *int64, personnelID *int64) ([]*domain.Indisponibilite, error) {
	query := `
		SELECT id, garde_id, personnel_id
		FROM indisponibilites
		WHERE ($1::bigint IS NULL OR garde_id = $1)
		AND ($2::bigint IS NULL OR personnel_id = $2)
		ORDER BY id
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, gardeID, personnelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	indisponibilites := make([]*domain.Indisponibilite, 0)
	for rows.Next() {
		var i domain.Indisponibilite
		if err := rows.Scan(&i.ID, &i.GardeID, &i.PersonnelID); err != nil {
			return nil, err
		}
		indisponibilites = append(indisponibilites, &i)
	}

	return indisponibilites, rows.Err()
}

func (r *Repository) CreateIndisponibilite(i *domain.Indisponibilite) error {
	query := `
		INSERT INTO indisponibilites (garde_id, personnel_id)
		VALUES ($1, $2)
		RETURNING id
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, i.GardeID, i.PersonnelID).Scan(&i.ID); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteIndisponibilite(id int64) error {
	query := `
		DELETE FROM indisponibilites WHERE id = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}
