package repository

import (
	"database/sql"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

func (r *Repository) GetAllPiquets() ([]*domain.Piquet, error) {
	query := `
		SELECT
			p.id, p.code, p.libelle, p.is_astreinte, p.position,
			c.id, c.code, c.libelle
		FROM piquets p
		LEFT JOIN piquet_competences pc ON pc.piquet_id = p.id
		LEFT JOIN competences c ON c.id = pc.competence_id
		ORDER BY p.position, p.code, c.code
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]*domain.Piquet)
	ordered := make([]*domain.Piquet, 0)

	for rows.Next() {
		var row struct {
			ID          int64
			Code        string
			Libelle     string
			IsAstreinte bool
			Position    int32

			CompID    sql.NullInt64
			CompCode  sql.NullString
			CompLabel sql.NullString
		}

		dst := []any{&row.ID, &row.Code, &row.Libelle, &row.IsAstreinte, &row.Position, &row.CompID, &row.CompCode, &row.CompLabel}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		p, exists := byID[row.ID]
		if !exists {
			p = &domain.Piquet{
				ID:          row.ID,
				Code:        row.Code,
				Libelle:     row.Libelle,
				IsAstreinte: row.IsAstreinte,
				Position:    row.Position,
				Exigences:   make([]domain.Competence, 0),
			}
			byID[row.ID] = p
			ordered = append(ordered, p)
		}

		if row.CompID.Valid {
			p.Exigences = append(p.Exigences, domain.Competence{
				ID:      row.CompID.Int64,
				Code:    row.CompCode.String,
				Libelle: row.CompLabel.String,
			})
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ordered, nil
}

func (r *Repository) GetPiquetByID(id int64) (*domain.Piquet, error) {
	query := `
		SELECT code, libelle, is_astreinte, position FROM piquets WHERE id = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	p := &domain.Piquet{
		ID: id,
	}

	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(&p.Code, &p.Libelle, &p.IsAstreinte, &p.Position); err != nil {
		return nil, err
	}

	exigences, err := r.GetPiquetExigences(id)
	if err != nil {
		return nil, err
	}
	p.Exigences = exigences

	return p, nil
}

func (r *Repository) GetPiquetExigences(piquetID int64) ([]domain.Competence, error) {
	query := `
		SELECT c.id, c.code, c.libelle
		FROM piquet_competences pc
		JOIN competences c ON c.id = pc.competence_id
		WHERE pc.piquet_id = $1
		ORDER BY c.code
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, piquetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exigences := make([]domain.Competence, 0)
	for rows.Next() {
		var c domain.Competence
		if err := rows.Scan(&c.ID, &c.Code, &c.Libelle); err != nil {
			return nil, err
		}
		exigences = append(exigences, c)
	}

	return exigences, rows.Err()
}

// CreatePiquet place le nouveau piquet en fin de liste d'affichage.
func (r *Repository) CreatePiquet(p *domain.Piquet) error {
	query := `
		INSERT INTO piquets (code, libelle, is_astreinte, position)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), 0) + 1 FROM piquets))
		RETURNING id, position
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, p.Code, p.Libelle, p.IsAstreinte).Scan(&p.ID, &p.Position); err != nil {
		return err
	}

	for _, c := range p.Exigences {
		if err := r.AddPiquetExigence(p.ID, c.ID); err != nil {
			return err
		}
	}

	return nil
}

func (r *Repository) DeletePiquet(id int64) error {
	query := `
		DELETE FROM piquets WHERE id = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}

func (r *Repository) AddPiquetExigence(piquetID int64, competenceID int64) error {
	query := `
		INSERT INTO piquet_competences (piquet_id, competence_id) VALUES ($1, $2)
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, piquetID, competenceID)
	return err
}

func (r *Repository) RemovePiquetExigence(piquetID int64, competenceID int64) error {
	query := `
		DELETE FROM piquet_competences WHERE piquet_id = $1 AND competence_id = $2
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, piquetID, competenceID)
	return err
}
