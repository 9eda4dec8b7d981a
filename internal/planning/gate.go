package planning

import (
	"context"
	"fmt"
)

// Gate porte les deux bascules d'état du mois : validation et dévalidation.
// Les refus de droits et de périmètre sont rendus avant tout appel réseau.
type Gate struct {
	store   *Store
	confirm Confirmer
}

func NewGate(store *Store, confirm Confirmer) *Gate {
	return &Gate{
		store:   store,
		confirm: confirm,
	}
}

// resolveValidationScope détermine l'équipe visée : un chef valide la sienne,
// ADMIN et OFFICIER doivent désigner explicitement une équipe.
func (g *Gate) resolveValidationScope(equipeID *int64) (int64, error) {
	session := g.store.Session()

	if !session.CanAdminOverride() {
		if session.EquipeID == nil {
			return 0, ErrNoTeam
		}
		return *session.EquipeID, nil
	}

	if equipeID == nil {
		return 0, ErrTeamRequired
	}
	return *equipeID, nil
}

// Validate verrouille la feuille de garde du mois chargé pour l'équipe visée,
// après confirmation, puis recharge le mois.
func (g *Gate) Validate(ctx context.Context, equipeID *int64) error {
	if !g.store.CanValidate() {
		return ErrPermissionDenied
	}

	snap := g.store.Snapshot()
	if snap == nil {
		return ErrNotLoaded
	}

	scope, err := g.resolveValidationScope(equipeID)
	if err != nil {
		return err
	}

	if !g.confirm.Confirm(fmt.Sprintf("Valider la feuille de garde de %d/%d ? Elle sera verrouillée pour les équipes.", int(snap.Month), snap.Year)) {
		return ErrCancelled
	}

	if err := g.store.api.ValiderMois(ctx, snap.Year, snap.Month, scope); err != nil {
		return err
	}

	return g.store.Reload(ctx)
}

// Unvalidate rouvre une feuille validée. Un chef ne peut pas déverrouiller,
// seuls ADMIN et OFFICIER le peuvent.
func (g *Gate) Unvalidate(ctx context.Context, equipeID *int64) error {
	if !g.store.Session().CanAdminOverride() {
		return ErrPermissionDenied
	}

	snap := g.store.Snapshot()
	if snap == nil {
		return ErrNotLoaded
	}

	if !g.confirm.Confirm(fmt.Sprintf("Rouvrir la feuille de garde de %d/%d ? Les modifications seront à nouveau possibles.", int(snap.Month), snap.Year)) {
		return ErrCancelled
	}

	if err := g.store.api.DevaliderMois(ctx, snap.Year, snap.Month, equipeID); err != nil {
		return err
	}

	return g.store.Reload(ctx)
}
