package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

// GetIndisponibilites liste les indisponibilités, filtrables par garde et
// par sapeur via les paramètres garde et personnel.
func (h *Handler) GetIndisponibilites(w http.ResponseWriter, r *http.Request) {
	var gardeID, personnelID *int64

	if param := r.URL.Query().Get("garde"); param != "" {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "identifiant de garde invalide")
			return
		}
		gardeID = &id
	}
	if param := r.URL.Query().Get("personnel"); param != "" {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "identifiant de personnel invalide")
			return
		}
		personnelID = &id
	}

	indisponibilites, err := h.repository.ListIndisponibilites(gardeID, personnelID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "indisponibilités récupérées", indisponibilites)
}

// CreateIndisponibilite marque un sapeur indisponible sur un créneau. Un
// agent ne déclare que ses propres indisponibilités, les chefs et rôles de
// gestion peuvent en poser pour autrui.
func (h *Handler) CreateIndisponibilite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GardeID     int64 `json:"gardeId" validate:"required"`
		PersonnelID int64 `json:"personnelId" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	session := h.session(r)
	privileged := session.CanAdminOverride() || session.IsChef() || session.HasAnyRole(domain.RoleOpe)
	if !privileged && req.PersonnelID != session.PersonnelID {
		h.errorResponse(w, r, "vous ne pouvez déclarer que vos propres indisponibilités")
		return
	}

	garde, err := h.repository.GetGardeByID(req.GardeID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "garde introuvable")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if garde.Validated && !session.CanAdminOverride() {
		h.lockedResponse(w, r)
		return
	}

	indispo := &domain.Indisponibilite{
		GardeID:     req.GardeID,
		PersonnelID: req.PersonnelID,
	}

	if err := h.repository.CreateIndisponibilite(indispo); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "indisponibilites_garde_id_personnel_id_key":
				h.badRequest(w, r, errors.New("indisponibilité déjà déclarée sur ce créneau"))
			case pgErr.ConstraintName == "indisponibilites_personnel_id_fkey":
				h.badRequest(w, r, errors.New("personnel inconnu"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "indisponibilité déclarée", indispo)
}

func (h *Handler) DeleteIndisponibilite(w http.ResponseWriter, r *http.Request) {
	indispo := r.Context().Value(IndisponibiliteCtx).(*domain.Indisponibilite)

	session := h.session(r)
	privileged := session.CanAdminOverride() || session.IsChef() || session.HasAnyRole(domain.RoleOpe)
	if !privileged && indispo.PersonnelID != session.PersonnelID {
		h.errorResponse(w, r, "vous ne pouvez retirer que vos propres indisponibilités")
		return
	}

	garde, err := h.repository.GetGardeByID(indispo.GardeID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	if garde.Validated && !session.CanAdminOverride() {
		h.lockedResponse(w, r)
		return
	}

	if err := h.repository.DeleteIndisponibilite(indispo.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "indisponibilité retirée", nil)
}
