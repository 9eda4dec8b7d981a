package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

func (h *Handler) GetAllEquipes(w http.ResponseWriter, r *http.Request) {
	equipes, err := h.repository.GetAllEquipes()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "liste des équipes récupérée", equipes)
}

func (h *Handler) GetEquipeInfo(w http.ResponseWriter, r *http.Request) {
	equipe := r.Context().Value(EquipeCtx).(*domain.Equipe)
	h.successResponse(w, r, "équipe récupérée", equipe)
}

func (h *Handler) CreateEquipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code    string `json:"code" validate:"required"`
		Libelle string `json:"libelle" validate:"required"`
		Couleur string `json:"couleur" validate:"required,hexcolor"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	equipe := &domain.Equipe{
		Code:    req.Code,
		Libelle: req.Libelle,
		Couleur: req.Couleur,
	}

	if err := h.repository.CreateEquipe(equipe); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "equipes_code_key":
			h.badRequest(w, r, errors.New("ce code d'équipe existe déjà"))
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "équipe créée", equipe)
}

func (h *Handler) UpdateEquipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code    *string `json:"code"`
		Libelle *string `json:"libelle"`
		Couleur *string `json:"couleur" validate:"omitempty,hexcolor"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	equipe := r.Context().Value(EquipeCtx).(*domain.Equipe)

	if req.Code != nil {
		equipe.Code = *req.Code
	}
	if req.Libelle != nil {
		equipe.Libelle = *req.Libelle
	}
	if req.Couleur != nil {
		equipe.Couleur = *req.Couleur
	}

	if err := h.repository.UpdateEquipe(equipe); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "equipes_code_key":
			h.badRequest(w, r, errors.New("ce code d'équipe existe déjà"))
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "mise à jour échouée, veuillez réessayer")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "équipe mise à jour", equipe)
}

func (h *Handler) DeleteEquipe(w http.ResponseWriter, r *http.Request) {
	equipe := r.Context().Value(EquipeCtx).(*domain.Equipe)

	if err := h.repository.DeleteEquipe(equipe.ID); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "gardes_equipe_id_fkey":
			h.errorResponse(w, r, "des gardes sont encore attribuées à cette équipe")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "équipe supprimée", nil)
}
