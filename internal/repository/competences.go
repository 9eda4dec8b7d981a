package repository

import (
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

func (r *Repository) GetAllCompetences() ([]*domain.Competence, error) {
	query := `
		SELECT id, code, libelle FROM competences ORDER BY code
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	competences := make([]*domain.Competence, 0)
	for rows.Next() {
		var c domain.Competence
		if err := rows.Scan(&c.ID, &c.Code, &c.Libelle); err != nil {
			return nil, err
		}
		competences = append(competences, &c)
	}

	return competences, rows.Err()
}

func (r *Repository) CreateCompetence(c *domain.Competence) error {
	query := `
		INSERT INTO competences (code, libelle) VALUES ($1, $2) RETURNING id
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	return r.dbpool.QueryRowContext(ctx, query, c.Code, c.Libelle).Scan(&c.ID)
}

func (r *Repository) DeleteCompetence(id int64) error {
	query := `
		DELETE FROM competences WHERE id = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}
