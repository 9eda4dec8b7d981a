package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/utils"
	"golang.org/x/crypto/bcrypt"
)

func (h *Handler) GetAllPersonnels(w http.ResponseWriter, r *http.Request) {
	personnels, err := h.repository.GetAllPersonnels()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "liste du personnel récupérée", personnels)
}

func (h *Handler) CreatePersonnel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nom      string   `json:"nom" validate:"required"`
		Prenom   string   `json:"prenom" validate:"required"`
		Grade    string   `json:"grade" validate:"required"`
		Email    string   `json:"email" validate:"required,email"`
		Statut   string   `json:"statut" validate:"required,oneof=pro volontaire double"`
		EquipeID *int64   `json:"equipeId"`
		Roles    []string `json:"roles" validate:"required,min=1,dive,oneof=ADMIN OFFICIER OPE CHEF_EQUIPE ADJ_CHEF_EQUIPE AGENT"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	password := utils.GenerateRandomPassword(h.config.NewPersonnel.PasswordLength)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	roles := make([]domain.Role, 0, len(req.Roles))
	for _, role := range req.Roles {
		roles = append(roles, domain.Role(role))
	}

	personnel := &domain.Personnel{
		Nom:          req.Nom,
		Prenom:       req.Prenom,
		Grade:        req.Grade,
		Email:        req.Email,
		PasswordHash: string(hashedPassword),
		Statut:       domain.Statut(req.Statut),
		EquipeID:     req.EquipeID,
		Roles:        roles,
	}

	if err := h.repository.CreatePersonnel(personnel); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "personnels_email_key":
				h.badRequest(w, r, errors.New("cette adresse électronique est déjà utilisée"))
			case pgErr.ConstraintName == "personnels_equipe_id_fkey":
				h.badRequest(w, r, errors.New("équipe inconnue"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	mailMessage := domain.MailMessage{
		Type: "new_account",
		To:   personnel.Email,
		Data: domain.NewAccountMailData{
			FullName: fmt.Sprintf("%s %s", personnel.Prenom, personnel.Nom),
			Email:    personnel.Email,
			Password: password,
		},
	}

	if err := h.publishMail(mailMessage); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "personnel créé", personnel)
}

func (h *Handler) GetPersonnelInfo(w http.ResponseWriter, r *http.Request) {
	personnel := r.Context().Value(PersonnelInfoCtx).(*domain.Personnel)

	competences, err := h.repository.GetPersonnelCompetences(personnel.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	personnel.Competences = competences

	h.successResponse(w, r, "fiche du personnel récupérée", personnel)
}

func (h *Handler) UpdatePersonnel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nom      *string  `json:"nom"`
		Prenom   *string  `json:"prenom"`
		Grade    *string  `json:"grade"`
		Email    *string  `json:"email" validate:"omitempty,email"`
		Statut   *string  `json:"statut" validate:"omitempty,oneof=pro volontaire double"`
		EquipeID *int64   `json:"equipeId"`
		Roles    []string `json:"roles" validate:"omitempty,min=1,dive,oneof=ADMIN OFFICIER OPE CHEF_EQUIPE ADJ_CHEF_EQUIPE AGENT"`
		IsActive *bool    `json:"isActive"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	personnel := r.Context().Value(PersonnelInfoCtx).(*domain.Personnel)

	if req.Nom != nil {
		personnel.Nom = *req.Nom
	}
	if req.Prenom != nil {
		personnel.Prenom = *req.Prenom
	}
	if req.Grade != nil {
		personnel.Grade = *req.Grade
	}
	if req.Email != nil {
		personnel.Email = *req.Email
	}
	if req.Statut != nil {
		personnel.Statut = domain.Statut(*req.Statut)
	}
	if req.EquipeID != nil {
		personnel.EquipeID = req.EquipeID
	}
	if req.IsActive != nil {
		personnel.IsActive = *req.IsActive
	}

	if err := h.repository.UpdatePersonnel(personnel); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "personnels_email_key":
				h.badRequest(w, r, errors.New("cette adresse électronique est déjà utilisée"))
			case pgErr.ConstraintName == "personnels_equipe_id_fkey":
				h.badRequest(w, r, errors.New("équipe inconnue"))
			default:
				h.internalServerError(w, r, err)
			}
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "mise à jour échouée, veuillez réessayer")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if req.Roles != nil {
		roles := make([]domain.Role, 0, len(req.Roles))
		for _, role := range req.Roles {
			roles = append(roles, domain.Role(role))
		}
		if err := h.repository.ReplacePersonnelRoles(personnel.ID, roles); err != nil {
			h.internalServerError(w, r, err)
			return
		}
		personnel.Roles = roles
	}

	h.successResponse(w, r, "fiche du personnel mise à jour", personnel)
}

func (h *Handler) DeletePersonnel(w http.ResponseWriter, r *http.Request) {
	personnel := r.Context().Value(PersonnelInfoCtx).(*domain.Personnel)

	if err := h.repository.DeletePersonnel(personnel.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "personnel supprimé", nil)
}

func (h *Handler) AddPersonnelCompetence(w http.ResponseWriter, r *http.Request) {
	personnel := r.Context().Value(PersonnelInfoCtx).(*domain.Personnel)

	var req struct {
		CompetenceID   int64      `json:"competenceId" validate:"required"`
		DateObtention  *time.Time `json:"dateObtention"`
		DateExpiration *time.Time `json:"dateExpiration"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.AddPersonnelCompetence(personnel.ID, req.CompetenceID, req.DateObtention, req.DateExpiration); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "personnel_competences_pkey":
				h.badRequest(w, r, errors.New("compétence déjà attribuée"))
			case pgErr.ConstraintName == "personnel_competences_competence_id_fkey":
				h.badRequest(w, r, errors.New("compétence inconnue"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "compétence attribuée", nil)
}

func (h *Handler) RemovePersonnelCompetence(w http.ResponseWriter, r *http.Request) {
	personnel := r.Context().Value(PersonnelInfoCtx).(*domain.Personnel)

	competenceIDParam := chi.URLParam(r, "competenceID")
	competenceID, err := strconv.ParseInt(competenceIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "identifiant de compétence invalide")
		return
	}

	if err := h.repository.RemovePersonnelCompetence(personnel.ID, competenceID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "compétence retirée", nil)
}
