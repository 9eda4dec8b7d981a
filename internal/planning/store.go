package planning

import (
	"context"
	"sync"
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/authz"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"golang.org/x/sync/errgroup"
)

// GardeDetail regroupe une garde avec ses affectations et indisponibilités.
type GardeDetail struct {
	Garde            domain.Garde
	Affectations     []domain.Affectation
	Indisponibilites []domain.Indisponibilite
}

// Snapshot est l'état d'un mois chargé. Il est remplacé en bloc à chaque
// chargement réussi, jamais fusionné.
type Snapshot struct {
	Year       int
	Month      time.Month
	EquipeID   *int64
	Gardes     []GardeDetail
	Personnels []domain.Personnel
}

// IsMonthValidated est recalculé à chaque lecture, jamais mis en cache : un
// mois est validé quand il contient au moins une garde et qu'elles le sont
// toutes.
func IsMonthValidated(gardes []GardeDetail) bool {
	if len(gardes) == 0 {
		return false
	}
	for _, g := range gardes {
		if !g.Garde.Validated {
			return false
		}
	}
	return true
}

// Store détient le snapshot du mois courant. Les lectures sont servies sous
// verrou partagé ; un chargement qui échoue laisse le snapshot précédent
// intact.
type Store struct {
	api     API
	session *authz.Session

	mu   sync.RWMutex
	snap *Snapshot
}

func NewStore(api API, session *authz.Session) *Store {
	return &Store{
		api:     api,
		session: session,
	}
}

// resolveScope applique le cantonnement : un chef sans rôle ADMIN ou OFFICIER
// consulte sa propre équipe, quel que soit le périmètre demandé.
func (s *Store) resolveScope(equipeID *int64) (*int64, error) {
	if s.session.IsChef() && !s.session.CanAdminOverride() {
		if s.session.EquipeID == nil {
			return nil, ErrNoTeam
		}
		return s.session.EquipeID, nil
	}
	return equipeID, nil
}

// LoadMonth charge la feuille de garde d'un mois : une requête de listage,
// puis les affectations et indisponibilités de chaque garde en parallèle. Le
// snapshot n'est publié que si tous les appels aboutissent.
func (s *Store) LoadMonth(ctx context.Context, year int, month time.Month, equipeID *int64) error {
	scope, err := s.resolveScope(equipeID)
	if err != nil {
		return err
	}

	gardes, err := s.api.ListGardes(ctx, year, month, scope)
	if err != nil {
		return err
	}

	details := make([]GardeDetail, len(gardes))
	var personnels []domain.Personnel

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := s.api.ListPersonnels(gctx)
		if err != nil {
			return err
		}
		personnels = list
		return nil
	})

	for i, garde := range gardes {
		i, garde := i, garde
		details[i].Garde = garde

		// une seule lecture par garde, affectations et indisponibilités
		// arrivent ensemble
		g.Go(func() error {
			detail, err := s.api.GetGardeDetail(gctx, garde.ID)
			if err != nil {
				return err
			}
			details[i].Affectations = detail.Affectations
			details[i].Indisponibilites = detail.Indisponibilites
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	s.snap = &Snapshot{
		Year:       year,
		Month:      month,
		EquipeID:   scope,
		Gardes:     details,
		Personnels: personnels,
	}
	s.mu.Unlock()

	return nil
}

// Reload recharge le mois courant avec le même périmètre.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()

	if snap == nil {
		return ErrNotLoaded
	}
	return s.LoadMonth(ctx, snap.Year, snap.Month, snap.EquipeID)
}

// Snapshot renvoie une copie superficielle de l'état courant, nil si aucun
// mois n'est chargé.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap == nil {
		return nil
	}
	copied := *s.snap
	return &copied
}

func (s *Store) Session() *authz.Session { return s.session }

// IsMonthValidated répond sur le mois chargé ; false si rien n'est chargé.
func (s *Store) IsMonthValidated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap == nil {
		return false
	}
	return IsMonthValidated(s.snap.Gardes)
}

// CanModify répond true tant que le mois n'est pas validé, ou pour les rôles
// qui passent outre le verrou.
func (s *Store) CanModify() bool {
	return !s.IsMonthValidated() || s.session.CanAdminOverride()
}

// CanValidate répond true pour un chef (sa propre équipe) et pour les rôles
// ADMIN et OFFICIER.
func (s *Store) CanValidate() bool {
	return s.session.IsChef() || s.session.CanAdminOverride()
}

// garde renvoie le détail d'une garde du snapshot, nil si absente.
func (s *Store) garde(gardeID int64) *GardeDetail {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap == nil {
		return nil
	}
	for i := range s.snap.Gardes {
		if s.snap.Gardes[i].Garde.ID == gardeID {
			copied := s.snap.Gardes[i]
			return &copied
		}
	}
	return nil
}

// personnel renvoie la fiche d'un sapeur du snapshot, nil si absente.
func (s *Store) personnel(personnelID int64) *domain.Personnel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snap == nil {
		return nil
	}
	for i := range s.snap.Personnels {
		if s.snap.Personnels[i].ID == personnelID {
			copied := s.snap.Personnels[i]
			return &copied
		}
	}
	return nil
}

// refreshGarde relit les affectations d'une garde depuis le serveur et les
// substitue dans le snapshot (lecture après écriture, jamais de fusion
// optimiste). Les indisponibilités locales sont laissées telles quelles, leur
// état peut porter une mise à jour optimiste en cours.
func (s *Store) refreshGarde(ctx context.Context, gardeID int64) error {
	detail, err := s.api.GetGardeDetail(ctx, gardeID)
	if err != nil {
		return err
	}
	affectations := detail.Affectations

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap == nil {
		return ErrNotLoaded
	}
	for i := range s.snap.Gardes {
		if s.snap.Gardes[i].Garde.ID == gardeID {
			s.snap.Gardes[i].Affectations = affectations
			return nil
		}
	}
	return ErrUnknownGarde
}

// setIndisponibilites remplace localement les indisponibilités d'une garde.
// Sert à la mise à jour optimiste du basculement et à son annulation.
func (s *Store) setIndisponibilites(gardeID int64, indispos []domain.Indisponibilite) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap == nil {
		return
	}
	for i := range s.snap.Gardes {
		if s.snap.Gardes[i].Garde.ID == gardeID {
			s.snap.Gardes[i].Indisponibilites = indispos
			return
		}
	}
}
