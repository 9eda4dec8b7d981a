// Package planning est le cœur client de la feuille de garde : chargement
// mensuel, verrouillage de validation et garde-fous de modification. Il ne
// connaît le serveur qu'à travers l'interface API.
package planning

import (
	"context"
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

// AssignmentRequest décrit la création d'une affectation.
type AssignmentRequest struct {
	GardeID       int64                 `json:"gardeId"`
	PiquetID      int64                 `json:"piquetId"`
	PersonnelID   int64                 `json:"personnelId"`
	StatutService *domain.StatutService `json:"statutService,omitempty"`
}

// API est la surface serveur consommée par le cœur. Toute implémentation doit
// renvoyer le message d'erreur structuré du serveur quand il y en a un.
type API interface {
	ListGardes(ctx context.Context, year int, month time.Month, equipeID *int64) ([]domain.Garde, error)
	ListPersonnels(ctx context.Context) ([]domain.Personnel, error)
	GetGardeDetail(ctx context.Context, gardeID int64) (GardeDetail, error)
	CreateAffectation(ctx context.Context, req AssignmentRequest) (*domain.Affectation, error)
	DeleteAffectation(ctx context.Context, id int64) error
	CreateIndisponibilite(ctx context.Context, gardeID, personnelID int64) (*domain.Indisponibilite, error)
	DeleteIndisponibilite(ctx context.Context, id int64) error
	ValiderMois(ctx context.Context, year int, month time.Month, equipeID int64) error
	DevaliderMois(ctx context.Context, year int, month time.Month, equipeID *int64) error
}

// Confirmer recueille une confirmation interactive avant les opérations
// destructrices ou engageantes. Répondre false abandonne l'opération sans
// aucun appel réseau.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmerFunc adapte une fonction en Confirmer.
type ConfirmerFunc func(message string) bool

func (f ConfirmerFunc) Confirm(message string) bool { return f(message) }

// StatutChooser recueille le statut de service d'un sapeur à double statut.
// ok vaut false quand l'utilisateur renonce.
type StatutChooser interface {
	ChooseStatutService(p domain.Personnel) (statut domain.StatutService, ok bool)
}

// StatutChooserFunc adapte une fonction en StatutChooser.
type StatutChooserFunc func(p domain.Personnel) (domain.StatutService, bool)

func (f StatutChooserFunc) ChooseStatutService(p domain.Personnel) (domain.StatutService, bool) {
	return f(p)
}
