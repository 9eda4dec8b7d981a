package planning

import (
	"context"
	"sync"
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/authz"
	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

// fakeAPI est une implémentation en mémoire de l'interface API, avec
// injection d'erreurs et comptage des appels.
type fakeAPI struct {
	mu sync.Mutex

	gardes       []domain.Garde
	affectations map[int64][]domain.Affectation
	indispos     map[int64][]domain.Indisponibilite
	personnels   []domain.Personnel
	nextID       int64

	listGardesErr    error
	detailErr        error
	createAffErr     error
	deleteAffErr     error
	createIndispoErr error
	deleteIndispoErr error
	validerErr       error
	devaliderErr     error
	createAffBlocked chan struct{}
	createAffEntered chan struct{}

	calls map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		affectations: make(map[int64][]domain.Affectation),
		indispos:     make(map[int64][]domain.Indisponibilite),
		nextID:       1000,
		calls:        make(map[string]int),
	}
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeAPI) ListGardes(ctx context.Context, year int, month time.Month, equipeID *int64) ([]domain.Garde, error) {
	f.record("ListGardes")
	if f.listGardesErr != nil {
		return nil, f.listGardesErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Garde, 0, len(f.gardes))
	for _, g := range f.gardes {
		if equipeID != nil && (g.EquipeID == nil || *g.EquipeID != *equipeID) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeAPI) ListPersonnels(ctx context.Context) ([]domain.Personnel, error) {
	f.record("ListPersonnels")
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Personnel{}, f.personnels...), nil
}

func (f *fakeAPI) GetGardeDetail(ctx context.Context, gardeID int64) (GardeDetail, error) {
	f.record("GetGardeDetail")
	if f.detailErr != nil {
		return GardeDetail{}, f.detailErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	detail := GardeDetail{
		Affectations:     append([]domain.Affectation{}, f.affectations[gardeID]...),
		Indisponibilites: append([]domain.Indisponibilite{}, f.indispos[gardeID]...),
	}
	for _, g := range f.gardes {
		if g.ID == gardeID {
			detail.Garde = g
			break
		}
	}
	return detail, nil
}

func (f *fakeAPI) CreateAffectation(ctx context.Context, req AssignmentRequest) (*domain.Affectation, error) {
	f.record("CreateAffectation")
	if f.createAffEntered != nil {
		close(f.createAffEntered)
		f.createAffEntered = nil
	}
	if f.createAffBlocked != nil {
		<-f.createAffBlocked
	}
	if f.createAffErr != nil {
		return nil, f.createAffErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	a := domain.Affectation{
		ID:            f.nextID,
		GardeID:       req.GardeID,
		PiquetID:      req.PiquetID,
		PersonnelID:   req.PersonnelID,
		StatutService: req.StatutService,
	}
	f.affectations[req.GardeID] = append(f.affectations[req.GardeID], a)
	return &a, nil
}

func (f *fakeAPI) DeleteAffectation(ctx context.Context, id int64) error {
	f.record("DeleteAffectation")
	if f.deleteAffErr != nil {
		return f.deleteAffErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for gardeID, list := range f.affectations {
		next := list[:0]
		for _, a := range list {
			if a.ID != id {
				next = append(next, a)
			}
		}
		f.affectations[gardeID] = next
	}
	return nil
}

func (f *fakeAPI) CreateIndisponibilite(ctx context.Context, gardeID, personnelID int64) (*domain.Indisponibilite, error) {
	f.record("CreateIndisponibilite")
	if f.createIndispoErr != nil {
		return nil, f.createIndispoErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	i := domain.Indisponibilite{ID: f.nextID, GardeID: gardeID, PersonnelID: personnelID}
	f.indispos[gardeID] = append(f.indispos[gardeID], i)
	return &i, nil
}

func (f *fakeAPI) DeleteIndisponibilite(ctx context.Context, id int64) error {
	f.record("DeleteIndisponibilite")
	if f.deleteIndispoErr != nil {
		return f.deleteIndispoErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for gardeID, list := range f.indispos {
		next := list[:0]
		for _, i := range list {
			if i.ID != id {
				next = append(next, i)
			}
		}
		f.indispos[gardeID] = next
	}
	return nil
}

func (f *fakeAPI) ValiderMois(ctx context.Context, year int, month time.Month, equipeID int64) error {
	f.record("ValiderMois")
	if f.validerErr != nil {
		return f.validerErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	for i := range f.gardes {
		if f.gardes[i].EquipeID != nil && *f.gardes[i].EquipeID == equipeID {
			f.gardes[i].Validated = true
			f.gardes[i].ValidatedAt = &now
		}
	}
	return nil
}

func (f *fakeAPI) DevaliderMois(ctx context.Context, year int, month time.Month, equipeID *int64) error {
	f.record("DevaliderMois")
	if f.devaliderErr != nil {
		return f.devaliderErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.gardes {
		if equipeID != nil && (f.gardes[i].EquipeID == nil || *f.gardes[i].EquipeID != *equipeID) {
			continue
		}
		f.gardes[i].Validated = false
		f.gardes[i].ValidatedAt = nil
	}
	return nil
}

var _ API = (*fakeAPI)(nil)

func int64ptr(v int64) *int64 { return &v }

func garde(id int64, equipeID *int64, slot domain.Slot, validated bool) domain.Garde {
	return domain.Garde{
		ID:        id,
		Date:      time.Date(2025, time.March, int(id%28)+1, 0, 0, 0, 0, time.UTC),
		Slot:      slot,
		EquipeID:  equipeID,
		Validated: validated,
	}
}

func adminSession() *authz.Session {
	return &authz.Session{PersonnelID: 1, Roles: []domain.Role{domain.RoleAdmin}}
}

func chefSession(equipeID int64) *authz.Session {
	return &authz.Session{PersonnelID: 2, EquipeID: &equipeID, Roles: []domain.Role{domain.RoleChefEquipe}}
}

func agentSession() *authz.Session {
	return &authz.Session{PersonnelID: 3, EquipeID: int64ptr(1), Roles: []domain.Role{domain.RoleAgent}}
}

// alwaysConfirm et neverConfirm pilotent les confirmations interactives.
var (
	alwaysConfirm = ConfirmerFunc(func(string) bool { return true })
	neverConfirm  = ConfirmerFunc(func(string) bool { return false })
)

var noChooser = StatutChooserFunc(func(domain.Personnel) (domain.StatutService, bool) {
	return "", false
})
