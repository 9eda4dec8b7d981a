package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

func (h *Handler) GetAllPiquets(w http.ResponseWriter, r *http.Request) {
	piquets, err := h.repository.GetAllPiquets()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "liste des piquets récupérée", piquets)
}

func (h *Handler) CreatePiquet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code          string  `json:"code" validate:"required"`
		Libelle       string  `json:"libelle" validate:"required"`
		IsAstreinte   bool    `json:"isAstreinte"`
		CompetenceIDs []int64 `json:"competenceIds"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	piquet := &domain.Piquet{
		Code:        req.Code,
		Libelle:     req.Libelle,
		IsAstreinte: req.IsAstreinte,
	}

	if err := h.repository.CreatePiquet(piquet); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "piquets_code_key":
			h.badRequest(w, r, errors.New("ce code de piquet existe déjà"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	for _, competenceID := range req.CompetenceIDs {
		if err := h.repository.AddPiquetExigence(piquet.ID, competenceID); err != nil {
			h.internalServerError(w, r, err)
			return
		}
	}

	exigences, err := h.repository.GetPiquetExigences(piquet.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	piquet.Exigences = exigences

	h.successResponse(w, r, "piquet créé", piquet)
}

func (h *Handler) DeletePiquet(w http.ResponseWriter, r *http.Request) {
	piquet := r.Context().Value(PiquetCtx).(*domain.Piquet)

	if err := h.repository.DeletePiquet(piquet.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "affectations_piquet_id_fkey":
			h.errorResponse(w, r, "des affectations existent encore sur ce piquet")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "piquet supprimé", nil)
}

func (h *Handler) AddPiquetExigence(w http.ResponseWriter, r *http.Request) {
	piquet := r.Context().Value(PiquetCtx).(*domain.Piquet)

	var req struct {
		CompetenceID int64 `json:"competenceId" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.AddPiquetExigence(piquet.ID, req.CompetenceID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "piquet_competences_pkey":
				h.badRequest(w, r, errors.New("exigence déjà présente"))
			case pgErr.ConstraintName == "piquet_competences_competence_id_fkey":
				h.badRequest(w, r, errors.New("compétence inconnue"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "exigence ajoutée", nil)
}

func (h *Handler) RemovePiquetExigence(w http.ResponseWriter, r *http.Request) {
	piquet := r.Context().Value(PiquetCtx).(*domain.Piquet)

	competenceIDParam := chi.URLParam(r, "competenceID")
	competenceID, err := strconv.ParseInt(competenceIDParam, 10, 64)
	if err != nil {
		h.errorResponse(w, r, "identifiant de compétence invalide")
		return
	}

	if err := h.repository.RemovePiquetExigence(piquet.ID, competenceID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "exigence retirée", nil)
}
