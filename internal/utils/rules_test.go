package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateCompetences_NoRequirements(t *testing.T) {
	err := ValidateCompetences(nil, nil, date(2025, time.March, 1))
	assert.NoError(t, err)
}

func TestValidateCompetences_Missing(t *testing.T) {
	exigences := []domain.Competence{{ID: 1, Code: "SAP1"}}
	err := ValidateCompetences(exigences, nil, date(2025, time.March, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAP1")
}

func TestValidateCompetences_Expired(t *testing.T) {
	expiration := date(2025, time.February, 1)
	exigences := []domain.Competence{{ID: 1, Code: "COD1"}}
	acquis := []domain.Acquis{{CompetenceID: 1, Code: "COD1", DateExpiration: &expiration}}

	err := ValidateCompetences(exigences, acquis, date(2025, time.March, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expirée")
}

func TestValidateCompetences_ValidUntilGardeDate(t *testing.T) {
	expiration := date(2025, time.March, 1)
	exigences := []domain.Competence{{ID: 1, Code: "COD1"}}
	acquis := []domain.Acquis{{CompetenceID: 1, Code: "COD1", DateExpiration: &expiration}}

	// expire le jour même : encore valide
	assert.NoError(t, ValidateCompetences(exigences, acquis, date(2025, time.March, 1)))
}

func TestWouldMakeThreeInARow_JourNuitJour(t *testing.T) {
	occupied := map[SlotRef]bool{
		NewSlotRef(date(2025, time.March, 8), domain.SlotJour): true,
		NewSlotRef(date(2025, time.March, 9), domain.SlotJour): true,
	}
	candidate := NewSlotRef(date(2025, time.March, 8), domain.SlotNuit)

	assert.True(t, WouldMakeThreeInARow(occupied, candidate))
}

func TestWouldMakeThreeInARow_NuitJourNuit(t *testing.T) {
	occupied := map[SlotRef]bool{
		NewSlotRef(date(2025, time.March, 7), domain.SlotNuit): true,
		NewSlotRef(date(2025, time.March, 8), domain.SlotNuit): true,
	}
	candidate := NewSlotRef(date(2025, time.March, 8), domain.SlotJour)

	assert.True(t, WouldMakeThreeInARow(occupied, candidate))
}

func TestWouldMakeThreeInARow_GapBreaksSeries(t *testing.T) {
	occupied := map[SlotRef]bool{
		NewSlotRef(date(2025, time.March, 6), domain.SlotNuit): true,
		NewSlotRef(date(2025, time.March, 8), domain.SlotNuit): true,
	}
	candidate := NewSlotRef(date(2025, time.March, 10), domain.SlotNuit)

	assert.False(t, WouldMakeThreeInARow(occupied, candidate))
}

func TestResolveStatutService_DoubleRequiresChoice(t *testing.T) {
	p := &domain.Personnel{Statut: domain.StatutDouble}

	_, err := ResolveStatutService(p, nil)
	assert.ErrorIs(t, err, ErrStatutServiceRequis)

	pro := domain.StatutServicePro
	resolved, err := ResolveStatutService(p, &pro)
	require.NoError(t, err)
	assert.Equal(t, domain.StatutServicePro, *resolved)
}

func TestResolveStatutService_SingleStatutInferred(t *testing.T) {
	p := &domain.Personnel{Statut: domain.StatutVolontaire}

	resolved, err := ResolveStatutService(p, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.StatutServiceVolontaire, *resolved)
}

func TestResolveStatutService_MismatchRejected(t *testing.T) {
	p := &domain.Personnel{Statut: domain.StatutPro}
	volontaire := domain.StatutServiceVolontaire

	_, err := ResolveStatutService(p, &volontaire)
	assert.ErrorIs(t, err, ErrStatutServiceInvalide)
}

func TestIsWeekend(t *testing.T) {
	assert.True(t, IsWeekend(date(2025, time.March, 8)))  // samedi
	assert.True(t, IsWeekend(date(2025, time.March, 9)))  // dimanche
	assert.False(t, IsWeekend(date(2025, time.March, 10))) // lundi
}
