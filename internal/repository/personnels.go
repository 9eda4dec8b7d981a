package repository

import (
	"context"
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

func (r *Repository) queryCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
}

func (r *Repository) GetPersonnelByID(id int64) (*domain.Personnel, error) {
	query := `
		SELECT nom, prenom, grade, email, password_hash, statut, equipe_id, is_active, created_at, version
		FROM personnels WHERE id = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	p := &domain.Personnel{
		ID: id,
	}

	dst := []any{&p.Nom, &p.Prenom, &p.Grade, &p.Email, &p.PasswordHash, &p.Statut, &p.EquipeID, &p.IsActive, &p.CreatedAt, &p.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	if err := r.loadPersonnelRoles(p); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *Repository) GetPersonnelByEmail(email string) (*domain.Personnel, error) {
	query := `
		SELECT id, nom, prenom, grade, password_hash, statut, equipe_id, is_active, created_at, version
		FROM personnels WHERE email = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	p := &domain.Personnel{
		Email: email,
	}

	dst := []any{&p.ID, &p.Nom, &p.Prenom, &p.Grade, &p.PasswordHash, &p.Statut, &p.EquipeID, &p.IsActive, &p.CreatedAt, &p.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(dst...); err != nil {
		return nil, err
	}

	if err := r.loadPersonnelRoles(p); err != nil {
		return nil, err
	}

	return p, nil
}

func (r *Repository) loadPersonnelRoles(p *domain.Personnel) error {
	query := `
		SELECT role FROM personnel_roles WHERE personnel_id = $1 ORDER BY role
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	p.Roles = make([]domain.Role, 0)
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role); err != nil {
			return err
		}
		p.Roles = append(p.Roles, role)
	}

	return rows.Err()
}

func (r *Repository) GetAllPersonnels() ([]*domain.Personnel, error) {
	query := `
		SELECT
			p.id, p.nom, p.prenom, p.grade, p.email, p.statut, p.equipe_id, p.is_active, p.created_at, p.version,
			pr.role
		FROM personnels p
		LEFT JOIN personnel_roles pr ON pr.personnel_id = p.id
		ORDER BY p.nom, p.prenom, p.id
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byID := make(map[int64]*domain.Personnel)
	ordered := make([]*domain.Personnel, 0)

	for rows.Next() {
		var row struct {
			P    domain.Personnel
			Role *domain.Role
		}

		dst := []any{
			&row.P.ID, &row.P.Nom, &row.P.Prenom, &row.P.Grade, &row.P.Email,
			&row.P.Statut, &row.P.EquipeID, &row.P.IsActive, &row.P.CreatedAt, &row.P.Version,
			&row.Role,
		}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}

		p, exists := byID[row.P.ID]
		if !exists {
			p = &row.P
			p.Roles = make([]domain.Role, 0)
			byID[p.ID] = p
			ordered = append(ordered, p)
		}
		if row.Role != nil {
			p.Roles = append(p.Roles, *row.Role)
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ordered, nil
}

func (r *Repository) CreatePersonnel(p *domain.Personnel) error {
	query := `
		INSERT INTO personnels (nom, prenom, grade, email, password_hash, statut, equipe_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_active, created_at, version
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	args := []any{p.Nom, p.Prenom, p.Grade, p.Email, p.PasswordHash, p.Statut, p.EquipeID}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.IsActive, &p.CreatedAt, &p.Version); err != nil {
		return err
	}

	return r.ReplacePersonnelRoles(p.ID, p.Roles)
}

func (r *Repository) UpdatePersonnel(p *domain.Personnel) error {
	query := `
		UPDATE personnels
		SET
			nom = $1,
			prenom = $2,
			grade = $3,
			email = $4,
			password_hash = $5,
			statut = $6,
			equipe_id = $7,
			is_active = $8,
			version = version + 1
		WHERE id = $9 AND version = $10
		RETURNING version
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	args := []any{p.Nom, p.Prenom, p.Grade, p.Email, p.PasswordHash, p.Statut, p.EquipeID, p.IsActive, p.ID, p.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&p.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) DeletePersonnel(id int64) error {
	query := `
		DELETE FROM personnels WHERE id = $1
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, id)
	return err
}

// ReplacePersonnelRoles remplace l'ensemble des rôles en une transaction.
func (r *Repository) ReplacePersonnelRoles(personnelID int64, roles []domain.Role) error {
	ctx, cancel := r.queryCtx()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM personnel_roles WHERE personnel_id = $1`, personnelID); err != nil {
		return err
	}

	for _, role := range roles {
		if _, err := tx.ExecContext(ctx, `INSERT INTO personnel_roles (personnel_id, role) VALUES ($1, $2)`, personnelID, role); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetPersonnelCompetences(personnelID int64) ([]domain.Acquis, error) {
	query := `
		SELECT pc.competence_id, c.code, pc.date_obtention, pc.date_expiration
		FROM personnel_competences pc
		JOIN competences c ON c.id = pc.competence_id
		WHERE pc.personnel_id = $1
		ORDER BY c.code
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, personnelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	acquis := make([]domain.Acquis, 0)
	for rows.Next() {
		var a domain.Acquis
		if err := rows.Scan(&a.CompetenceID, &a.Code, &a.DateObtention, &a.DateExpiration); err != nil {
			return nil, err
		}
		acquis = append(acquis, a)
	}

	return acquis, rows.Err()
}

func (r *Repository) AddPersonnelCompetence(personnelID int64, competenceID int64, obtention *time.Time, expiration *time.Time) error {
	query := `
		INSERT INTO personnel_competences (personnel_id, competence_id, date_obtention, date_expiration)
		VALUES ($1, $2, $3, $4)
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, personnelID, competenceID, obtention, expiration)
	return err
}

func (r *Repository) RemovePersonnelCompetence(personnelID int64, competenceID int64) error {
	query := `
		DELETE FROM personnel_competences WHERE personnel_id = $1 AND competence_id = $2
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	_, err := r.dbpool.ExecContext(ctx, query, personnelID, competenceID)
	return err
}

// GetActiveOfficierEmails renvoie les adresses des officiers actifs, pour la
// notification de validation mensuelle.
func (r *Repository) GetActiveOfficierEmails() ([]string, error) {
	query := `
		SELECT DISTINCT p.email
		FROM personnels p
		JOIN personnel_roles pr ON pr.personnel_id = p.id
		WHERE pr.role = 'OFFICIER' AND p.is_active = TRUE AND p.email <> ''
	`

	ctx, cancel := r.queryCtx()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}

	return emails, rows.Err()
}
