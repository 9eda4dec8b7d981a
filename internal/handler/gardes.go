package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/utils"
)

var moisFrancais = [...]string{
	"janvier", "février", "mars", "avril", "mai", "juin",
	"juillet", "août", "septembre", "octobre", "novembre", "décembre",
}

func moisLabel(year int, month time.Month) string {
	return fmt.Sprintf("%s %d", moisFrancais[month-1], year)
}

type gardeDetail struct {
	*domain.Garde
	Affectations     []*domain.Affectation     `json:"affectations"`
	Indisponibilites []*domain.Indisponibilite `json:"indisponibilites"`
}

func (h *Handler) parseMonthParams(r *http.Request) (int, time.Month, error) {
	year, err := strconv.Atoi(r.URL.Query().Get("annee"))
	if err != nil || year < 2000 || year > 2100 {
		return 0, 0, errors.New("année invalide")
	}

	monthInt, err := strconv.Atoi(r.URL.Query().Get("mois"))
	if err != nil || monthInt < 1 || monthInt > 12 {
		return 0, 0, errors.New("mois invalide")
	}

	return year, time.Month(monthInt), nil
}

// GetGardes renvoie la feuille de garde d'un mois : gardes, affectations et
// indisponibilités, plus l'état de validation du mois. Un chef d'équipe sans
// rôle ADMIN ou OFFICIER est cantonné à sa propre équipe, quel que soit le
// paramètre demandé.
func (h *Handler) GetGardes(w http.ResponseWriter, r *http.Request) {
	year, month, err := h.parseMonthParams(r)
	if err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	var equipeID *int64
	if param := r.URL.Query().Get("equipe"); param != "" {
		id, err := strconv.ParseInt(param, 10, 64)
		if err != nil {
			h.errorResponse(w, r, "identifiant d'équipe invalide")
			return
		}
		equipeID = &id
	}
	includeUnassigned := r.URL.Query().Get("include_unassigned") == "true"

	session := h.session(r)
	if session.IsChef() && !session.CanAdminOverride() {
		if session.EquipeID == nil {
			h.errorResponse(w, r, "aucune équipe rattachée à votre compte")
			return
		}
		equipeID = session.EquipeID
	}

	gardes, err := h.repository.ListGardes(year, month, equipeID, includeUnassigned)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	gardeIDs := make([]int64, 0, len(gardes))
	for _, g := range gardes {
		gardeIDs = append(gardeIDs, g.ID)
	}

	affectations, err := h.repository.GetAffectationsByGardes(gardeIDs)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	indisponibilites, err := h.repository.GetIndisponibilitesByGardes(gardeIDs)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	details := make([]*gardeDetail, 0, len(gardes))
	isMonthValidated := len(gardes) > 0
	for _, g := range gardes {
		if !g.Validated {
			isMonthValidated = false
		}
		affs := affectations[g.ID]
		if affs == nil {
			affs = make([]*domain.Affectation, 0)
		}
		indispos := indisponibilites[g.ID]
		if indispos == nil {
			indispos = make([]*domain.Indisponibilite, 0)
		}
		details = append(details, &gardeDetail{
			Garde:            g,
			Affectations:     affs,
			Indisponibilites: indispos,
		})
	}

	h.successResponse(w, r, "feuille de garde récupérée", map[string]any{
		"gardes":           details,
		"isMonthValidated": isMonthValidated,
	})
}

func (h *Handler) GetGardeInfo(w http.ResponseWriter, r *http.Request) {
	garde := r.Context().Value(GardeCtx).(*domain.Garde)

	affectations, err := h.repository.GetAffectationsByGarde(garde.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	indisponibilites, err := h.repository.GetIndisponibilitesByGardes([]int64{garde.ID})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	indispos := indisponibilites[garde.ID]
	if indispos == nil {
		indispos = make([]*domain.Indisponibilite, 0)
	}

	h.successResponse(w, r, "garde récupérée", &gardeDetail{
		Garde:            garde,
		Affectations:     affectations,
		Indisponibilites: indispos,
	})
}

// CreateGarde ajoute un créneau exceptionnel hors génération mensuelle,
// par exemple une journée de renfort sur un jour de semaine.
func (h *Handler) CreateGarde(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date     string      `json:"date" validate:"required,datetime=2006-01-02"`
		Slot     domain.Slot `json:"slot" validate:"required,oneof=JOUR NUIT"`
		EquipeID *int64      `json:"equipeId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	if _, err := h.repository.GetGardeByDateSlot(date, req.Slot); err == nil {
		h.errorResponse(w, r, "un créneau existe déjà à cette date")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		h.internalServerError(w, r, err)
		return
	}

	isHoliday, err := h.repository.IsHoliday(date)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	garde := &domain.Garde{
		Date:      date,
		Slot:      req.Slot,
		IsWeekend: utils.IsWeekend(date),
		IsHoliday: isHoliday,
		EquipeID:  req.EquipeID,
	}
	if err := h.repository.CreateGarde(garde); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "créneau créé", garde)
}

// DeleteGarde supprime un créneau et tout ce qui s'y rattache. Refusé sur un
// mois validé sauf pour ADMIN et OFFICIER.
func (h *Handler) DeleteGarde(w http.ResponseWriter, r *http.Request) {
	garde := r.Context().Value(GardeCtx).(*domain.Garde)

	session := h.session(r)
	if garde.Validated && !session.CanAdminOverride() {
		h.lockedResponse(w, r)
		return
	}

	if err := h.repository.DeleteGarde(garde.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "créneau supprimé", nil)
}

// GenerateMonth crée les créneaux du mois : une nuit chaque jour de semaine,
// un jour et une nuit les week-ends et jours fériés. L'opération est
// idempotente, les créneaux déjà présents sont conservés tels quels.
func (h *Handler) GenerateMonth(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Annee int `json:"annee" validate:"required,min=2000,max=2100"`
		Mois  int `json:"mois" validate:"required,min=1,max=12"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	month := time.Month(req.Mois)
	first := time.Date(req.Annee, month, 1, 0, 0, 0, 0, time.UTC)

	created := 0
	for date := first; date.Month() == month; date = date.AddDate(0, 0, 1) {
		isWeekend := utils.IsWeekend(date)
		isHoliday, err := h.repository.IsHoliday(date)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		slots := []domain.Slot{domain.SlotNuit}
		if isWeekend || isHoliday {
			slots = []domain.Slot{domain.SlotJour, domain.SlotNuit}
		}

		for _, slot := range slots {
			_, err := h.repository.GetGardeByDateSlot(date, slot)
			if err == nil {
				continue
			}
			if !errors.Is(err, sql.ErrNoRows) {
				h.internalServerError(w, r, err)
				return
			}

			garde := &domain.Garde{
				Date:      date,
				Slot:      slot,
				IsWeekend: isWeekend,
				IsHoliday: isHoliday,
			}
			if err := h.repository.CreateGarde(garde); err != nil {
				h.internalServerError(w, r, err)
				return
			}
			created++
		}
	}

	h.successResponse(w, r, fmt.Sprintf("%d créneaux générés pour %s", created, moisLabel(req.Annee, month)), map[string]any{
		"created": created,
	})
}

// AssignTeam attribue une équipe à un créneau, ou la retire si equipeId est
// absent. Le créneau est créé à la volée s'il n'existe pas encore.
func (h *Handler) AssignTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date     string      `json:"date" validate:"required,datetime=2006-01-02"`
		Slot     domain.Slot `json:"slot" validate:"required,oneof=JOUR NUIT"`
		EquipeID *int64      `json:"equipeId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	session := h.session(r)

	garde, err := h.repository.GetGardeByDateSlot(date, req.Slot)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if req.EquipeID == nil {
			h.errorResponse(w, r, "aucune garde sur ce créneau")
			return
		}

		isHoliday, err := h.repository.IsHoliday(date)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		garde = &domain.Garde{
			Date:      date,
			Slot:      req.Slot,
			IsWeekend: utils.IsWeekend(date),
			IsHoliday: isHoliday,
			EquipeID:  req.EquipeID,
		}
		if err := h.repository.CreateGarde(garde); err != nil {
			h.internalServerError(w, r, err)
			return
		}

		h.successResponse(w, r, "équipe attribuée", garde)
		return
	case err != nil:
		h.internalServerError(w, r, err)
		return
	}

	if garde.Validated && !session.CanAdminOverride() {
		h.lockedResponse(w, r)
		return
	}

	garde.EquipeID = req.EquipeID
	if err := h.repository.UpdateGardeEquipe(garde); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "le créneau a été modifié entre-temps, veuillez réessayer")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if req.EquipeID == nil {
		h.successResponse(w, r, "équipe retirée", garde)
		return
	}
	h.successResponse(w, r, "équipe attribuée", garde)
}

// ValiderMois verrouille la feuille de garde d'une équipe pour le mois, puis
// notifie les opérations, les officiers et chaque sapeur concerné.
func (h *Handler) ValiderMois(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Annee    int    `json:"annee" validate:"required,min=2000,max=2100"`
		Mois     int    `json:"mois" validate:"required,min=1,max=12"`
		EquipeID *int64 `json:"equipeId"`
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

	// Un chef ne valide que sa propre équipe, le paramètre est ignoré
	equipeID := req.EquipeID
	if !session.CanAdminOverride() {
		if session.EquipeID == nil {
			h.errorResponse(w, r, "aucune équipe rattachée à votre compte")
			return
		}
		equipeID = session.EquipeID
	}
	if equipeID == nil {
		h.errorResponse(w, r, "équipe requise")
		return
	}

	equipe, err := h.repository.GetEquipeByID(*equipeID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "équipe introuvable")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	month := time.Month(req.Mois)
	count, err := h.repository.ValidateMonth(req.Annee, month, equipe.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if count == 0 {
		h.errorResponse(w, r, "aucune garde à valider sur ce mois")
		return
	}

	validateur, err := h.repository.GetPersonnelByID(session.PersonnelID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	validateurNom := fmt.Sprintf("%s %s", validateur.Prenom, validateur.Nom)
	label := moisLabel(req.Annee, month)

	// Les échecs d'envoi ne doivent pas annuler la validation : la feuille
	// est déjà verrouillée, on journalise et on continue
	notified := h.sendValidationMails(r, label, equipe, validateurNom, req.Annee, month)

	h.successResponse(w, r, fmt.Sprintf("feuille de garde de %s validée pour l'équipe %s", label, equipe.Libelle), map[string]any{
		"gardesValidees": count,
		"notifications":  notified,
	})
}

func (h *Handler) sendValidationMails(r *http.Request, label string, equipe *domain.Equipe, validateur string, year int, month time.Month) int {
	notified := 0

	summary := domain.MonthValidatedMailData{
		MoisLabel:  label,
		Equipe:     equipe.Libelle,
		Validateur: validateur,
	}

	recipients := []string{h.config.Email.OperationsAddress}
	officierEmails, err := h.repository.GetActiveOfficierEmails()
	if err != nil {
		h.logInternalServerError(r, err)
	} else {
		recipients = append(recipients, officierEmails...)
	}

	for _, to := range recipients {
		err := h.publishMail(domain.MailMessage{
			Type: "month_validated",
			To:   to,
			Data: summary,
		})
		if err != nil {
			h.logInternalServerError(r, err)
			continue
		}
		notified++
	}

	roster, err := h.repository.GetMonthRosterByPersonnel(year, month, &equipe.ID)
	if err != nil {
		h.logInternalServerError(r, err)
		return notified
	}

	personnels, err := h.repository.GetAllPersonnels()
	if err != nil {
		h.logInternalServerError(r, err)
		return notified
	}

	byID := make(map[int64]*domain.Personnel, len(personnels))
	for _, p := range personnels {
		byID[p.ID] = p
	}

	for personnelID, gardes := range roster {
		p, ok := byID[personnelID]
		if !ok || !p.IsActive {
			continue
		}

		err := h.publishMail(domain.MailMessage{
			Type: "personal_roster",
			To:   p.Email,
			Data: domain.PersonalRosterMailData{
				FullName:   fmt.Sprintf("%s %s", p.Prenom, p.Nom),
				MoisLabel:  label,
				Equipe:     equipe.Libelle,
				Validateur: validateur,
				Gardes:     derefRows(gardes),
			},
		})
		if err != nil {
			h.logInternalServerError(r, err)
			continue
		}
		notified++
	}

	return notified
}

func derefRows(rows []*domain.PersonalGardeRow) []domain.PersonalGardeRow {
	out := make([]domain.PersonalGardeRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return out
}

// DevaliderMois rouvre une feuille de garde validée. Réservé à ADMIN et
// OFFICIER ; sans equipeId, tout le mois est rouvert.
func (h *Handler) DevaliderMois(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Annee    int    `json:"annee" validate:"required,min=2000,max=2100"`
		Mois     int    `json:"mois" validate:"required,min=1,max=12"`
		EquipeID *int64 `json:"equipeId"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	month := time.Month(req.Mois)
	count, err := h.repository.UnvalidateMonth(req.Annee, month, req.EquipeID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if count == 0 {
		h.errorResponse(w, r, "aucune garde validée sur ce mois")
		return
	}

	h.successResponse(w, r, fmt.Sprintf("feuille de garde de %s rouverte", moisLabel(req.Annee, month)), map[string]any{
		"gardesRouvertes": count,
	})
}

type suggestion struct {
	Personnel    *domain.Personnel `json:"personnel"`
	MemeEquipe   bool              `json:"memeEquipe"`
	GardesCeMois int               `json:"gardesCeMois"`
	Indisponible bool              `json:"indisponible"`
}

// GetSuggestions classe les sapeurs affectables sur un piquet d'une garde :
// équipe de la garde d'abord, puis les moins sollicités sur le mois.
func (h *Handler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	garde := r.Context().Value(GardeCtx).(*domain.Garde)

	piquetID, err := strconv.ParseInt(r.URL.Query().Get("piquet"), 10, 64)
	if err != nil {
		h.errorResponse(w, r, "identifiant de piquet invalide")
		return
	}

	piquet, err := h.repository.GetPiquetByID(piquetID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "piquet introuvable")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	affectations, err := h.repository.GetAffectationsByGarde(garde.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	dejaAffectes := make(map[int64]bool, len(affectations))
	for _, a := range affectations {
		dejaAffectes[a.PersonnelID] = true
	}

	indisponibilites, err := h.repository.GetIndisponibilitesByGardes([]int64{garde.ID})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	indisponibles := make(map[int64]bool)
	for _, i := range indisponibilites[garde.ID] {
		indisponibles[i.PersonnelID] = true
	}

	personnels, err := h.repository.GetAllPersonnels()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	year, month := garde.Date.Year(), garde.Date.Month()

	suggestions := make([]*suggestion, 0)
	for _, p := range personnels {
		if !p.IsActive || dejaAffectes[p.ID] {
			continue
		}

		acquis, err := h.repository.GetPersonnelCompetences(p.ID)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}
		if err := utils.ValidateCompetences(piquet.Exigences, acquis, garde.Date); err != nil {
			continue
		}

		count, err := h.repository.CountMonthAffectations(p.ID, year, month)
		if err != nil {
			h.internalServerError(w, r, err)
			return
		}

		memeEquipe := garde.EquipeID != nil && p.EquipeID != nil && *garde.EquipeID == *p.EquipeID
		suggestions = append(suggestions, &suggestion{
			Personnel:    p,
			MemeEquipe:   memeEquipe,
			GardesCeMois: count,
			Indisponible: indisponibles[p.ID],
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if a.Indisponible != b.Indisponible {
			return !a.Indisponible
		}
		if a.MemeEquipe != b.MemeEquipe {
			return a.MemeEquipe
		}
		if a.GardesCeMois != b.GardesCeMois {
			return a.GardesCeMois < b.GardesCeMois
		}
		if a.Personnel.Nom != b.Personnel.Nom {
			return a.Personnel.Nom < b.Personnel.Nom
		}
		return a.Personnel.Prenom < b.Personnel.Prenom
	})

	h.successResponse(w, r, "suggestions récupérées", suggestions)
}
