package repository

import (
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

func (r *Repository) GetAllEquipes() ([]*domain.Equipe, error) {
	query := `
		SELECT id, code, libelle, couleur, version FROM equipes ORDER BY code
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	equipes := make([]*domain.Equipe, 0)
	for rows.Next() {
		var e domain.Equipe
		if err := rows.Scan(&e.ID, &e.Code, &e.Libelle, &e.Couleur, &e.Version); err != nil {
			return nil, err
		}
		equipes = append(equipes, &e)
	}

	return equipes, rows.Err()
}

func (r *Repository) GetEquipeByID(id int64) (*domain.Equipe, error) {
	query := `
		SELECT code, libelle, couleur, version FROM equipes WHERE id = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	e := &domain.Equipe{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&e.Code, &e.Libelle, &e.Couleur, &e.Version); err != nil {
		return nil, err
	}

	return e, nil
}

func (r *Repository) CreateEquipe(e *domain.Equipe) error {
	query := `
		INSERT INTO equipes (code, libelle, couleur)
		VALUES ($1, $2, $3)
		RETURNING id, version
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, e.Code, e.Libelle, e.Couleur).Scan(&e.ID, &e.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateEquipe(e *domain.Equipe) error {
	query := `
		UPDATE equipes
		SET
			code = $1,
			libelle = $2,
			couleur = $3,
			version = version + 1
		WHERE id = $4 AND version = $5
		RETURNING version
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	args := []any{e.Code, e.Libelle, e.Couleur, e.ID, e.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&e.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteEquipe(id int64) error {
	query := `
		DELETE FROM equipes WHERE id = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}
