package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/authz"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/utils"
)

// canManageGarde répond true si l'acteur a le droit de modifier la feuille de
// garde du créneau : ADMIN et OFFICIER partout, OPE partout, chef ou adjoint
// sur sa propre équipe seulement.
func canManageGarde(session *authz.Session, garde *domain.Garde) bool {
	if session.CanAdminOverride() || session.HasAnyRole(domain.RoleOpe) {
		return true
	}
	if !session.IsChef() {
		return false
	}
	return session.EquipeID != nil && garde.EquipeID != nil && *session.EquipeID == *garde.EquipeID
}

// CreateAffectation place un sapeur sur un piquet d'une garde, après contrôle
// du verrouillage mensuel, des compétences exigées, de la règle des trois
// gardes consécutives et du double statut.
func (h *Handler) CreateAffectation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GardeID       int64                 `json:"gardeId" validate:"required"`
		PiquetID      int64                 `json:"piquetId" validate:"required"`
		PersonnelID   int64                 `json:"personnelId" validate:"required"`
		StatutService *domain.StatutService `json:"statutService"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
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

	session := h.session(r)
	if !canManageGarde(session, garde) {
		h.errorResponse(w, r, "droits insuffisants")
		return
	}
	if garde.Validated && !session.CanAdminOverride() {
		h.lockedResponse(w, r)
		return
	}

	personnel, err := h.repository.GetPersonnelByID(req.PersonnelID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "personnel introuvable")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}
	if !personnel.IsActive {
		h.errorResponse(w, r, "ce personnel n'est plus en activité")
		return
	}

	statutService, err := utils.ResolveStatutService(personnel, req.StatutService)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	piquet, err := h.repository.GetPiquetByID(req.PiquetID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "piquet introuvable")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	acquis, err := h.repository.GetPersonnelCompetences(personnel.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if err := utils.ValidateCompetences(piquet.Exigences, acquis, garde.Date); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	// Les astreintes n'entrent pas dans le décompte des gardes consécutives
	if !piquet.IsAstreinte {
		occupied, err := h.repository.GetOccupiedSlots(personnel.ID, garde.Date.AddDate(0, 0, -1), garde.Date.AddDate(0, 0, 1))
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if utils.WouldMakeThreeInARow(occupied, utils.NewSlotRef(garde.Date, garde.Slot)) {
			h.errorResponse(w, r, "affectation refusée : trois gardes consécutives")
			return
		}
	}

	affectation := &domain.Affectation{
		GardeID:       garde.ID,
		PiquetID:      piquet.ID,
		PersonnelID:   personnel.ID,
		StatutService: statutService,
	}

	if err := h.repository.CreateAffectation(affectation); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr):
			switch {
			case pgErr.ConstraintName == "affectations_garde_id_piquet_id_key":
				h.badRequest(w, r, errors.New("ce piquet est déjà tenu sur cette garde"))
			case pgErr.ConstraintName == "affectations_garde_id_personnel_id_key":
				h.badRequest(w, r, errors.New("ce sapeur est déjà affecté sur cette garde"))
			default:
				h.internalServerError(w, r, err)
			}
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "affectation créée", affectation)
}

func (h *Handler) DeleteAffectation(w http.ResponseWriter, r *http.Request) {
	affectation := r.Context().Value(AffectationCtx).(*domain.Affectation)

	garde, err := h.repository.GetGardeByID(affectation.GardeID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	session := h.session(r)
	if !canManageGarde(session, garde) {
		h.errorResponse(w, r, "droits insuffisants")
		return
	}
	if garde.Validated && !session.CanAdminOverride() {
		h.lockedResponse(w, r)
		return
	}

	if err := h.repository.DeleteAffectation(affectation.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "affectation supprimée", nil)
}
