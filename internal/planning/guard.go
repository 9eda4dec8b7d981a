package planning

import (
	"context"
	"sync"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

// Guard encadre les mutations du mois chargé : affectations et
// indisponibilités. Chaque mutation vérifie le verrou mensuel côté client,
// et une cible déjà en vol absorbe la seconde demande au lieu de la mettre
// en file.
type Guard struct {
	store   *Store
	confirm Confirmer
	chooser StatutChooser

	mu                  sync.Mutex
	pendingGardes       map[int64]bool
	pendingAffectations map[int64]bool
}

func NewGuard(store *Store, confirm Confirmer, chooser StatutChooser) *Guard {
	return &Guard{
		store:               store,
		confirm:             confirm,
		chooser:             chooser,
		pendingGardes:       make(map[int64]bool),
		pendingAffectations: make(map[int64]bool),
	}
}

// IsGardePending répond true quand une mutation est en vol sur la garde.
func (g *Guard) IsGardePending(gardeID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pendingGardes[gardeID]
}

// IsAffectationPending répond true quand une suppression est en vol sur
// l'affectation.
func (g *Guard) IsAffectationPending(affectationID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pendingAffectations[affectationID]
}

func (g *Guard) acquireGarde(gardeID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pendingGardes[gardeID] {
		return false
	}
	g.pendingGardes[gardeID] = true
	return true
}

func (g *Guard) releaseGarde(gardeID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pendingGardes, gardeID)
}

func (g *Guard) acquireAffectation(affectationID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pendingAffectations[affectationID] {
		return false
	}
	g.pendingAffectations[affectationID] = true
	return true
}

func (g *Guard) releaseAffectation(affectationID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pendingAffectations, affectationID)
}

// CreateAssignment place un sapeur sur un piquet. Pour un personnel à double
// statut, le statut de service est recueilli avant l'appel ; renoncer annule
// sans aucun appel réseau. Après création, les affectations de la garde sont
// relues depuis le serveur.
func (g *Guard) CreateAssignment(ctx context.Context, gardeID, piquetID, personnelID int64) error {
	if !g.store.CanModify() {
		return ErrMonthLocked
	}

	detail := g.store.garde(gardeID)
	if detail == nil {
		return ErrUnknownGarde
	}

	personnel := g.store.personnel(personnelID)
	if personnel == nil {
		return ErrUnknownPersonnel
	}

	var statutService *domain.StatutService
	if personnel.Statut == domain.StatutDouble {
		statut, ok := g.chooser.ChooseStatutService(*personnel)
		if !ok {
			return ErrCancelled
		}
		statutService = &statut
	}

	if !g.acquireGarde(gardeID) {
		return ErrPending
	}
	defer g.releaseGarde(gardeID)

	_, err := g.store.api.CreateAffectation(ctx, AssignmentRequest{
		GardeID:       gardeID,
		PiquetID:      piquetID,
		PersonnelID:   personnelID,
		StatutService: statutService,
	})
	if err != nil {
		return err
	}

	return g.store.refreshGarde(ctx, gardeID)
}

// DeleteAssignment retire une affectation après confirmation, puis relit la
// garde concernée.
func (g *Guard) DeleteAssignment(ctx context.Context, affectationID int64) error {
	if !g.store.CanModify() {
		return ErrMonthLocked
	}

	snap := g.store.Snapshot()
	if snap == nil {
		return ErrNotLoaded
	}

	var gardeID int64
	found := false
	for _, detail := range snap.Gardes {
		for _, a := range detail.Affectations {
			if a.ID == affectationID {
				gardeID = detail.Garde.ID
				found = true
				break
			}
		}
	}
	if !found {
		return ErrUnknownGarde
	}

	if !g.confirm.Confirm("Retirer cette affectation ?") {
		return ErrCancelled
	}

	if !g.acquireAffectation(affectationID) {
		return ErrPending
	}
	defer g.releaseAffectation(affectationID)

	if err := g.store.api.DeleteAffectation(ctx, affectationID); err != nil {
		return err
	}

	return g.store.refreshGarde(ctx, gardeID)
}

// ToggleUnavailability bascule l'indisponibilité d'un sapeur sur un créneau.
// La mise à jour locale est optimiste et annulée si l'appel échoue ; aucune
// relecture n'est faite en cas de succès.
func (g *Guard) ToggleUnavailability(ctx context.Context, gardeID, personnelID int64) error {
	if !g.store.CanModify() {
		return ErrMonthLocked
	}

	detail := g.store.garde(gardeID)
	if detail == nil {
		return ErrUnknownGarde
	}

	if !g.acquireGarde(gardeID) {
		return ErrPending
	}
	defer g.releaseGarde(gardeID)

	previous := detail.Indisponibilites

	var existing *domain.Indisponibilite
	for i := range previous {
		if previous[i].PersonnelID == personnelID {
			existing = &previous[i]
			break
		}
	}

	if existing != nil {
		// Retrait : disparition locale immédiate, rollback si le serveur refuse
		next := make([]domain.Indisponibilite, 0, len(previous)-1)
		for _, indispo := range previous {
			if indispo.ID != existing.ID {
				next = append(next, indispo)
			}
		}
		g.store.setIndisponibilites(gardeID, next)

		if err := g.store.api.DeleteIndisponibilite(ctx, existing.ID); err != nil {
			g.store.setIndisponibilites(gardeID, previous)
			return err
		}
		return nil
	}

	// Ajout : apparition locale immédiate, l'identifiant provisoire est
	// remplacé par celui du serveur
	placeholder := domain.Indisponibilite{
		ID:          -int64(len(previous)) - 1,
		GardeID:     gardeID,
		PersonnelID: personnelID,
	}
	g.store.setIndisponibilites(gardeID, append(append([]domain.Indisponibilite{}, previous...), placeholder))

	created, err := g.store.api.CreateIndisponibilite(ctx, gardeID, personnelID)
	if err != nil {
		g.store.setIndisponibilites(gardeID, previous)
		return err
	}

	g.store.setIndisponibilites(gardeID, append(append([]domain.Indisponibilite{}, previous...), *created))
	return nil
}
