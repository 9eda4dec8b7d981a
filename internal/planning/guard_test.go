package planning

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guardFixture(t *testing.T, api *fakeAPI, chooser StatutChooser) (*Store, *Guard) {
	t.Helper()

	store := NewStore(api, chefSession(1))
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, nil))
	return store, NewGuard(store, alwaysConfirm, chooser)
}

func TestCreateAssignmentLockedMonth(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, true)}
	api.personnels = []domain.Personnel{{ID: 7, Statut: domain.StatutPro, IsActive: true}}

	_, guard := guardFixture(t, api, noChooser)
	before := api.totalCalls()

	err := guard.CreateAssignment(context.Background(), 1, 5, 7)
	assert.ErrorIs(t, err, ErrMonthLocked)
	assert.Equal(t, before, api.totalCalls(), "le verrou est appliqué côté client")
}

func TestCreateAssignmentAdminOverridesLock(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, true)}
	api.personnels = []domain.Personnel{{ID: 7, Statut: domain.StatutPro, IsActive: true}}

	store := NewStore(api, adminSession())
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, nil))
	guard := NewGuard(store, alwaysConfirm, noChooser)

	require.NoError(t, guard.CreateAssignment(context.Background(), 1, 5, 7))
	assert.Equal(t, 1, api.count("CreateAffectation"))
}

func TestCreateAssignmentReadAfterWrite(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}
	api.personnels = []domain.Personnel{{ID: 7, Statut: domain.StatutVolontaire, IsActive: true}}

	store, guard := guardFixture(t, api, noChooser)
	require.NoError(t, guard.CreateAssignment(context.Background(), 1, 5, 7))

	// les affectations affichées viennent d'une relecture serveur
	snap := store.Snapshot()
	require.Len(t, snap.Gardes, 1)
	require.Len(t, snap.Gardes[0].Affectations, 1)
	assert.EqualValues(t, 7, snap.Gardes[0].Affectations[0].PersonnelID)
	assert.GreaterOrEqual(t, api.count("GetGardeDetail"), 2, "une relecture doit suivre la création")
}

func TestCreateAssignmentDoubleStatutRequiresChoice(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}
	api.personnels = []domain.Personnel{{ID: 9, Statut: domain.StatutDouble, IsActive: true}}

	_, guard := guardFixture(t, api, noChooser)
	before := api.count("CreateAffectation")

	err := guard.CreateAssignment(context.Background(), 1, 5, 9)
	assert.ErrorIs(t, err, ErrCancelled, "renoncer au choix du statut annule la création")
	assert.Equal(t, before, api.count("CreateAffectation"))
}

func TestCreateAssignmentDoubleStatutChosen(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}
	api.personnels = []domain.Personnel{{ID: 9, Statut: domain.StatutDouble, IsActive: true}}

	chooser := StatutChooserFunc(func(p domain.Personnel) (domain.StatutService, bool) {
		return domain.StatutServiceVolontaire, true
	})

	store, guard := guardFixture(t, api, chooser)
	require.NoError(t, guard.CreateAssignment(context.Background(), 1, 5, 9))

	snap := store.Snapshot()
	require.Len(t, snap.Gardes[0].Affectations, 1)
	require.NotNil(t, snap.Gardes[0].Affectations[0].StatutService)
	assert.Equal(t, domain.StatutServiceVolontaire, *snap.Gardes[0].Affectations[0].StatutService)
}

func TestCreateAssignmentSingleStatutSkipsChooser(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}
	api.personnels = []domain.Personnel{{ID: 7, Statut: domain.StatutPro, IsActive: true}}

	chooserCalled := false
	chooser := StatutChooserFunc(func(p domain.Personnel) (domain.StatutService, bool) {
		chooserCalled = true
		return domain.StatutServicePro, true
	})

	_, guard := guardFixture(t, api, chooser)
	require.NoError(t, guard.CreateAssignment(context.Background(), 1, 5, 7))
	assert.False(t, chooserCalled, "le choix n'est demandé que pour un double statut")
}

func TestCreateAssignmentPendingSuppressed(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}
	api.personnels = []domain.Personnel{{ID: 7, Statut: domain.StatutPro, IsActive: true}}

	blocked := make(chan struct{})
	entered := make(chan struct{})
	api.createAffBlocked = blocked
	api.createAffEntered = entered

	_, guard := guardFixture(t, api, noChooser)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = guard.CreateAssignment(context.Background(), 1, 5, 7)
	}()

	<-entered
	assert.True(t, guard.IsGardePending(1))

	// la seconde demande sur la même garde est absorbée, pas mise en file
	err := guard.CreateAssignment(context.Background(), 1, 5, 7)
	assert.ErrorIs(t, err, ErrPending)

	close(blocked)
	wg.Wait()
	assert.False(t, guard.IsGardePending(1))
	assert.Equal(t, 1, api.count("CreateAffectation"))
}

func TestDeleteAssignmentConfirmation(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}
	api.affectations[1] = []domain.Affectation{{ID: 42, GardeID: 1, PiquetID: 5, PersonnelID: 7}}

	store := NewStore(api, chefSession(1))
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, nil))

	guard := NewGuard(store, neverConfirm, noChooser)
	before := api.count("DeleteAffectation")

	assert.ErrorIs(t, guard.DeleteAssignment(context.Background(), 42), ErrCancelled)
	assert.Equal(t, before, api.count("DeleteAffectation"))

	guard = NewGuard(store, alwaysConfirm, noChooser)
	require.NoError(t, guard.DeleteAssignment(context.Background(), 42))
	assert.Equal(t, before+1, api.count("DeleteAffectation"))

	snap := store.Snapshot()
	assert.Empty(t, snap.Gardes[0].Affectations, "la garde est relue après suppression")
}

func TestToggleUnavailabilityCreate(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}

	store, guard := guardFixture(t, api, noChooser)
	require.NoError(t, guard.ToggleUnavailability(context.Background(), 1, 7))

	snap := store.Snapshot()
	require.Len(t, snap.Gardes[0].Indisponibilites, 1)
	assert.EqualValues(t, 7, snap.Gardes[0].Indisponibilites[0].PersonnelID)
	assert.Positive(t, snap.Gardes[0].Indisponibilites[0].ID, "l'identifiant provisoire est remplacé par celui du serveur")
	assert.Equal(t, 1, api.count("CreateIndisponibilite"))
}

func TestToggleUnavailabilityDelete(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}
	api.indispos[1] = []domain.Indisponibilite{{ID: 30, GardeID: 1, PersonnelID: 7}}

	store, guard := guardFixture(t, api, noChooser)
	require.NoError(t, guard.ToggleUnavailability(context.Background(), 1, 7))

	snap := store.Snapshot()
	assert.Empty(t, snap.Gardes[0].Indisponibilites)
	assert.Equal(t, 1, api.count("DeleteIndisponibilite"))
}

func TestToggleUnavailabilityRollbackOnCreateFailure(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}
	api.createIndispoErr = errors.New("le serveur a refusé")

	store, guard := guardFixture(t, api, noChooser)
	err := guard.ToggleUnavailability(context.Background(), 1, 7)
	require.Error(t, err)
	assert.EqualError(t, err, "le serveur a refusé")

	snap := store.Snapshot()
	assert.Empty(t, snap.Gardes[0].Indisponibilites, "la mise à jour optimiste doit être annulée")
}

func TestToggleUnavailabilityRollbackOnDeleteFailure(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}
	api.indispos[1] = []domain.Indisponibilite{{ID: 30, GardeID: 1, PersonnelID: 7}}
	api.deleteIndispoErr = errors.New("le serveur a refusé")

	store, guard := guardFixture(t, api, noChooser)
	require.Error(t, guard.ToggleUnavailability(context.Background(), 1, 7))

	snap := store.Snapshot()
	require.Len(t, snap.Gardes[0].Indisponibilites, 1, "l'indisponibilité doit réapparaître après l'échec")
	assert.EqualValues(t, 30, snap.Gardes[0].Indisponibilites[0].ID)
}

func TestToggleUnavailabilityLockedMonth(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, true)}

	_, guard := guardFixture(t, api, noChooser)
	before := api.totalCalls()

	assert.ErrorIs(t, guard.ToggleUnavailability(context.Background(), 1, 7), ErrMonthLocked)
	assert.Equal(t, before, api.totalCalls())
}

func TestGuardUnknownTargets(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}
	api.personnels = []domain.Personnel{{ID: 7, Statut: domain.StatutPro, IsActive: true}}

	_, guard := guardFixture(t, api, noChooser)

	assert.ErrorIs(t, guard.CreateAssignment(context.Background(), 99, 5, 7), ErrUnknownGarde)
	assert.ErrorIs(t, guard.CreateAssignment(context.Background(), 1, 5, 99), ErrUnknownPersonnel)
	assert.ErrorIs(t, guard.DeleteAssignment(context.Background(), 99), ErrUnknownGarde)
}
