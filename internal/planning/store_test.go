package planning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMonthValidatedEmpty(t *testing.T) {
	assert.False(t, IsMonthValidated(nil))
	assert.False(t, IsMonthValidated([]GardeDetail{}))
}

func TestIsMonthValidatedAllValidated(t *testing.T) {
	gardes := []GardeDetail{
		{Garde: garde(1, int64ptr(1), domain.SlotNuit, true)},
		{Garde: garde(2, int64ptr(1), domain.SlotJour, true)},
	}
	assert.True(t, IsMonthValidated(gardes))
}

func TestIsMonthValidatedOneUnvalidated(t *testing.T) {
	gardes := []GardeDetail{
		{Garde: garde(1, int64ptr(1), domain.SlotNuit, true)},
		{Garde: garde(2, int64ptr(1), domain.SlotJour, false)},
	}
	assert.False(t, IsMonthValidated(gardes))
}

func TestLoadMonthPublishesSnapshot(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{
		garde(1, int64ptr(1), domain.SlotNuit, false),
		garde(2, int64ptr(1), domain.SlotJour, false),
	}
	api.affectations[1] = []domain.Affectation{{ID: 10, GardeID: 1, PiquetID: 5, PersonnelID: 7}}
	api.indispos[2] = []domain.Indisponibilite{{ID: 20, GardeID: 2, PersonnelID: 8}}
	api.personnels = []domain.Personnel{{ID: 7, Nom: "Lemoine"}}

	store := NewStore(api, adminSession())
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, int64ptr(1)))

	snap := store.Snapshot()
	require.NotNil(t, snap)
	require.Len(t, snap.Gardes, 2)
	assert.Len(t, snap.Gardes[0].Affectations, 1)
	assert.Len(t, snap.Gardes[1].Indisponibilites, 1)
	assert.Len(t, snap.Personnels, 1)
	assert.Equal(t, 2025, snap.Year)
	assert.Equal(t, time.March, snap.Month)
}

func TestLoadMonthFetchesEachGardeOnce(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{
		garde(1, int64ptr(1), domain.SlotNuit, false),
		garde(2, int64ptr(1), domain.SlotJour, false),
		garde(3, int64ptr(1), domain.SlotNuit, false),
	}

	store := NewStore(api, adminSession())
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, int64ptr(1)))

	assert.Equal(t, 1, api.count("ListGardes"))
	assert.Equal(t, len(api.gardes), api.count("GetGardeDetail"), "une seule lecture de détail par garde")
}

func TestLoadMonthFailureKeepsPreviousSnapshot(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}

	store := NewStore(api, adminSession())
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, int64ptr(1)))
	previous := store.Snapshot()
	require.NotNil(t, previous)

	api.detailErr = errors.New("le serveur est injoignable")
	err := store.LoadMonth(context.Background(), 2025, time.April, int64ptr(1))
	require.Error(t, err)

	snap := store.Snapshot()
	require.NotNil(t, snap)
	assert.Equal(t, time.March, snap.Month, "le snapshot précédent doit rester intact")
	assert.Equal(t, previous.Gardes, snap.Gardes)
}

func TestLoadMonthListFailureLeavesNilSnapshot(t *testing.T) {
	api := newFakeAPI()
	api.listGardesErr = errors.New("panne")

	store := NewStore(api, adminSession())
	require.Error(t, store.LoadMonth(context.Background(), 2025, time.March, nil))
	assert.Nil(t, store.Snapshot())
}

func TestLoadMonthChiefScopePinned(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{
		garde(1, int64ptr(1), domain.SlotNuit, false),
		garde(2, int64ptr(2), domain.SlotNuit, false),
	}

	store := NewStore(api, chefSession(1))
	// l'équipe 2 est demandée, mais le chef est cantonné à la sienne
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, int64ptr(2)))

	snap := store.Snapshot()
	require.NotNil(t, snap)
	require.NotNil(t, snap.EquipeID)
	assert.EqualValues(t, 1, *snap.EquipeID)
	require.Len(t, snap.Gardes, 1)
	assert.EqualValues(t, 1, snap.Gardes[0].Garde.ID)
}

func TestLoadMonthChiefWithoutTeam(t *testing.T) {
	api := newFakeAPI()
	session := chefSession(1)
	session.EquipeID = nil

	store := NewStore(api, session)
	err := store.LoadMonth(context.Background(), 2025, time.March, nil)
	assert.ErrorIs(t, err, ErrNoTeam)
	assert.Zero(t, api.totalCalls(), "aucun appel réseau attendu")
}

func TestCanModifyUnvalidatedMonth(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}

	store := NewStore(api, agentSession())
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, nil))
	assert.True(t, store.CanModify())
}

func TestCanModifyValidatedMonth(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, true)}

	agentStore := NewStore(api, agentSession())
	require.NoError(t, agentStore.LoadMonth(context.Background(), 2025, time.March, nil))
	assert.False(t, agentStore.CanModify())

	adminStore := NewStore(api, adminSession())
	require.NoError(t, adminStore.LoadMonth(context.Background(), 2025, time.March, nil))
	assert.True(t, adminStore.CanModify(), "ADMIN passe outre le verrou")
}

func TestCanValidateRoles(t *testing.T) {
	api := newFakeAPI()

	assert.True(t, NewStore(api, chefSession(1)).CanValidate())
	assert.True(t, NewStore(api, adminSession()).CanValidate())
	assert.False(t, NewStore(api, agentSession()).CanValidate())
}

func TestReloadWithoutSnapshot(t *testing.T) {
	store := NewStore(newFakeAPI(), adminSession())
	assert.ErrorIs(t, store.Reload(context.Background()), ErrNotLoaded)
}
