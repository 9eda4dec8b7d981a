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

func TestValidateByChef(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}

	store := NewStore(api, chefSession(1))
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, nil))

	gate := NewGate(store, alwaysConfirm)
	require.NoError(t, gate.Validate(context.Background(), nil))

	assert.Equal(t, 1, api.count("ValiderMois"))
	assert.True(t, store.IsMonthValidated(), "le mois doit être rechargé après validation")
}

func TestValidateByAgentRejectedWithoutNetwork(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}

	store := NewStore(api, agentSession())
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, nil))
	before := api.totalCalls()

	gate := NewGate(store, alwaysConfirm)
	assert.ErrorIs(t, gate.Validate(context.Background(), nil), ErrPermissionDenied)
	assert.Equal(t, before, api.totalCalls(), "le refus de droits ne fait aucun appel réseau")
}

func TestValidateAdminRequiresExplicitTeam(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}

	store := NewStore(api, adminSession())
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, nil))
	before := api.totalCalls()

	gate := NewGate(store, alwaysConfirm)
	assert.ErrorIs(t, gate.Validate(context.Background(), nil), ErrTeamRequired)
	assert.Equal(t, before, api.totalCalls())

	require.NoError(t, gate.Validate(context.Background(), int64ptr(1)))
	assert.Equal(t, 1, api.count("ValiderMois"))
}

func TestValidateChefWithoutTeam(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, nil, domain.SlotNuit, false)}

	session := chefSession(1)
	store := NewStore(api, session)
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, nil))

	session.EquipeID = nil
	before := api.totalCalls()

	gate := NewGate(store, alwaysConfirm)
	assert.ErrorIs(t, gate.Validate(context.Background(), nil), ErrNoTeam)
	assert.Equal(t, before, api.totalCalls())
}

func TestValidateDeclinedConfirmation(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}

	store := NewStore(api, chefSession(1))
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, nil))
	before := api.totalCalls()

	gate := NewGate(store, neverConfirm)
	assert.ErrorIs(t, gate.Validate(context.Background(), nil), ErrCancelled)
	assert.Equal(t, before, api.totalCalls(), "renoncer n'émet aucun appel")
}

func TestValidateServerErrorSurfaced(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, false)}
	api.validerErr = errors.New("aucune garde à valider sur ce mois")

	store := NewStore(api, chefSession(1))
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, nil))

	gate := NewGate(store, alwaysConfirm)
	err := gate.Validate(context.Background(), nil)
	require.Error(t, err)
	assert.EqualError(t, err, "aucune garde à valider sur ce mois")
	assert.False(t, store.IsMonthValidated())
}

func TestUnvalidateByChefRejected(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, true)}

	store := NewStore(api, chefSession(1))
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, nil))
	before := api.totalCalls()

	gate := NewGate(store, alwaysConfirm)
	assert.ErrorIs(t, gate.Unvalidate(context.Background(), nil), ErrPermissionDenied)
	assert.Equal(t, before, api.totalCalls(), "un chef ne peut pas déverrouiller")
}

func TestUnvalidateByAdmin(t *testing.T) {
	api := newFakeAPI()
	api.gardes = []domain.Garde{garde(1, int64ptr(1), domain.SlotNuit, true)}

	store := NewStore(api, adminSession())
	require.NoError(t, store.LoadMonth(context.Background(), 2025, time.March, nil))
	require.True(t, store.IsMonthValidated())

	gate := NewGate(store, alwaysConfirm)
	require.NoError(t, gate.Unvalidate(context.Background(), nil))

	assert.Equal(t, 1, api.count("DevaliderMois"))
	assert.False(t, store.IsMonthValidated(), "le mois doit être rechargé après réouverture")
}

func TestGateWithoutLoadedMonth(t *testing.T) {
	api := newFakeAPI()
	store := NewStore(api, adminSession())
	gate := NewGate(store, alwaysConfirm)

	assert.ErrorIs(t, gate.Validate(context.Background(), int64ptr(1)), ErrNotLoaded)
	assert.ErrorIs(t, gate.Unvalidate(context.Background(), nil), ErrNotLoaded)
	assert.Zero(t, api.totalCalls())
}
