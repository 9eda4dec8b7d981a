package repository

import (
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

// ListGardes renvoie les gardes d'un mois, triées par date puis slot (JOUR
// avant NUIT). Avec equipeID, filtre sur cette équipe ; includeUnassigned y
// ajoute les gardes encore sans équipe.
func (r *Repository) ListGardes(year int, month time.Month, equipeID *int64, includeUnassigned bool) ([]*domain.Garde, error) {
	query := `
		SELECT id, date, slot, is_weekend, is_holiday, equipe_id, validated, validated_at, version
		FROM gardes
		WHERE EXTRACT(YEAR FROM date) = $1 AND EXTRACT(MONTH FROM date) = $2
	`
	args := []any{year, int(month)}

	if equipeID != nil {
		if includeUnassigned {
			query += ` AND (equipe_id = $3 OR equipe_id IS NULL)`
		} else {
			query += ` AND equipe_id = $3`
		}
		args = append(args, *equipeID)
	}

	query += ` ORDER BY date, slot`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gardes := make([]*domain.Garde, 0)
	for rows.Next() {
		var g domain.Garde
		dst := []any{&g.ID, &g.Date, &g.Slot, &g.IsWeekend, &g.IsHoliday, &g.EquipeID, &g.Validated, &g.ValidatedAt, &g.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		gardes = append(gardes, &g)
	}

	return gardes, rows.Err()
}

func (r *Repository) GetGardeByID(id int64) (*domain.Garde, error) {
	query := `
		SELECT date, slot, is_weekend, is_holiday, equipe_id, validated, validated_at, version
		FROM gardes WHERE id = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	g := &domain.Garde{
		ID: id,
	}

	dst := []any{&g.Date, &g.Slot, &g.IsWeekend, &g.IsHoliday, &g.EquipeID, &g.Validated, &g.ValidatedAt, &g.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return g, nil
}

func (r *Repository) GetGardeByDateSlot(date time.Time, slot domain.Slot) (*domain.Garde, error) {
	query := `
		SELECT id, date, slot, is_weekend, is_holiday, equipe_id, validated, validated_at, version
		FROM gardes WHERE date = $1 AND slot = $2
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	g := &domain.Garde{}
	dst := []any{&g.ID, &g.Date, &g.Slot, &g.IsWeekend, &g.IsHoliday, &g.EquipeID, &g.Validated, &g.ValidatedAt, &g.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, date, slot).Scan(dst...); err != nil {
		return nil, err
	}

	return g, nil
}

func (r *Repository) CreateGarde(g *domain.Garde) error {
	query := `
		INSERT INTO gardes (date, slot, is_weekend, is_holiday, equipe_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, validated, validated_at, version
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	args := []any{g.Date, g.Slot, g.IsWeekend, g.IsHoliday, g.EquipeID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&g.ID, &g.Validated, &g.ValidatedAt, &g.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) UpdateGardeEquipe(g *domain.Garde) error {
	query := `
		UPDATE gardes
		SET equipe_id = $1, version = version + 1
		WHERE id = $2 AND version = $3
		RETURNING version
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	if err := r.dbpool.QueryRowContext(ctx, query, g.EquipeID, g.ID, g.Version).Scan(&g.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeleteGarde(id int64) error {
	query := `
		DELETE FROM gardes WHERE id = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}

// ValidateMonth verrouille toutes les gardes du mois pour l'équipe donnée et
// renvoie le nombre de gardes touchées.
func (r *Repository) ValidateMonth(year int, month time.Month, equipeID int64) (int64, error) {
	query := `
		UPDATE gardes
		SET validated = TRUE, validated_at = NOW(), version = version + 1
		WHERE EXTRACT(YEAR FROM date) = $1 AND EXTRACT(MONTH FROM date) = $2 AND equipe_id = $3
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, year, int(month), equipeID)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

// UnvalidateMonth déverrouille les gardes du mois ; sans equipeID, tout le
// périmètre du mois est dévalidé.
func (r *Repository) UnvalidateMonth(year int, month time.Month, equipeID *int64) (int64, error) {
	query := `
		UPDATE gardes
		SET validated = FALSE, validated_at = NULL, version = version + 1
		WHERE EXTRACT(YEAR FROM date) = $1 AND EXTRACT(MONTH FROM date) = $2 AND validated = TRUE
	`
	args := []any{year, int(month)}

	if equipeID != nil {
		query += ` AND equipe_id = $3`
		args = append(args, *equipeID)
	}

	ctx, cancel := r.queryCtx()
	defer cancel()

	res, err := r.dbpool.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func (r *Repository) IsHoliday(date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM holidays WHERE date = $1)
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	isHoliday := false
	if err := r.dbpool.QueryRowContext(ctx, query, date).Scan(&isHoliday); err != nil {
		return false, err
	}

	return isHoliday, nil
}

func (r *Repository) CreateHoliday(h *domain.Holiday) error {
	query := `
		INSERT INTO holidays (date, label)
		VALUES ($1, $2)
		ON CONFLICT (date) DO NOTHING
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, h.Date, h.Label)
	return err
}
