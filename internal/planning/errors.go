package planning

import "errors"

// Ces erreurs sont levées côté client, avant tout appel réseau.
var (
	ErrMonthLocked      = errors.New("feuille de garde validée : modification verrouillée")
	ErrPermissionDenied = errors.New("droits insuffisants")
	ErrTeamRequired     = errors.New("équipe requise")
	ErrNoTeam           = errors.New("aucune équipe rattachée à votre compte")
	ErrNotLoaded        = errors.New("aucun mois chargé")
	ErrCancelled        = errors.New("opération annulée")
	ErrPending          = errors.New("une opération est déjà en cours sur cette cible")
	ErrUnknownGarde     = errors.New("garde inconnue dans le mois chargé")
	ErrUnknownPersonnel = errors.New("personnel inconnu")
)
