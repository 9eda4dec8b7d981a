package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

func (h *Handler) GetAllCompetences(w http.ResponseWriter, r *http.Request) {
	competences, err := h.repository.GetAllCompetences()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "liste des compétences récupérée", competences)
}

func (h *Handler) CreateCompetence(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code    string `json:"code" validate:"required"`
		Libelle string `json:"libelle" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	competence := &domain.Competence{
		Code:    req.Code,
		Libelle: req.Libelle,
	}

	if err := h.repository.CreateCompetence(competence); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "competences_code_key":
			h.badRequest(w, r, errors.New("ce code de compétence existe déjà"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "compétence créée", competence)
}

func (h *Handler) DeleteCompetence(w http.ResponseWriter, r *http.Request) {
	competenceIDParam := chi.URLParam(r, "id")
	competenceID, err := strconv.ParseInt(competenceIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "identifiant de compétence invalide")
		return
	}

	if err := h.repository.DeleteCompetence(competenceID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "piquet_competences_competence_id_fkey":
			h.errorResponse(w, r, "cette compétence est exigée par un piquet")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "compétence supprimée", nil)
}
