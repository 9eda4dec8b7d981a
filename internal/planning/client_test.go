package planning

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(t *testing.T, w http.ResponseWriter, success bool, message string, data any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"message": message,
		"data":    data,
	}))
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeEnvelope(t, w, true, "ok", map[string]any{"gardes": []any{}})
	}))
	defer server.Close()

	client := NewClient(server.URL, "jeton-de-test", nil)
	_, err := client.ListGardes(context.Background(), 2025, time.March, nil)
	require.NoError(t, err)
	assert.Equal(t, "Bearer jeton-de-test", gotAuth)
}

func TestClientListGardes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gardes", r.URL.Path)
		assert.Equal(t, "2025", r.URL.Query().Get("annee"))
		assert.Equal(t, "3", r.URL.Query().Get("mois"))
		assert.Equal(t, "4", r.URL.Query().Get("equipe"))

		writeEnvelope(t, w, true, "feuille de garde récupérée", map[string]any{
			"gardes": []map[string]any{
				{
					"id": 1, "date": "2025-03-01T00:00:00Z", "slot": "NUIT",
					"validated": true, "affectations": []any{}, "indisponibilites": []any{},
				},
			},
			"isMonthValidated": true,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", nil)
	gardes, err := client.ListGardes(context.Background(), 2025, time.March, int64ptr(4))
	require.NoError(t, err)
	require.Len(t, gardes, 1)
	assert.EqualValues(t, 1, gardes[0].ID)
	assert.Equal(t, domain.SlotNuit, gardes[0].Slot)
	assert.True(t, gardes[0].Validated)
}

func TestClientGardeDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gardes/7", r.URL.Path)
		writeEnvelope(t, w, true, "garde récupérée", map[string]any{
			"id": 7, "date": "2025-03-02T00:00:00Z", "slot": "JOUR",
			"affectations": []map[string]any{
				{"id": 10, "gardeId": 7, "piquetId": 2, "personnelId": 5},
			},
			"indisponibilites": []map[string]any{
				{"id": 20, "gardeId": 7, "personnelId": 6},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", nil)

	detail, err := client.GetGardeDetail(context.Background(), 7)
	require.NoError(t, err)
	assert.EqualValues(t, 7, detail.Garde.ID)
	require.Len(t, detail.Affectations, 1)
	assert.EqualValues(t, 5, detail.Affectations[0].PersonnelID)
	require.Len(t, detail.Indisponibilites, 1)
	assert.EqualValues(t, 6, detail.Indisponibilites[0].PersonnelID)
}

func TestClientSurfacesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(t, w, false, "feuille de garde validée : modification verrouillée", nil)
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", nil)
	_, err := client.CreateAffectation(context.Background(), AssignmentRequest{GardeID: 1, PiquetID: 2, PersonnelID: 3})
	require.Error(t, err)
	assert.EqualError(t, err, "feuille de garde validée : modification verrouillée")
}

func TestClientUnreadableResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>mauvaise passerelle</html>"))
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", nil)
	err := client.DeleteAffectation(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestClientValiderMoisBody(t *testing.T) {
	var got struct {
		Annee    int    `json:"annee"`
		Mois     int    `json:"mois"`
		EquipeID *int64 `json:"equipeId"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/gardes/valider-mois", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeEnvelope(t, w, true, "feuille validée", nil)
	}))
	defer server.Close()

	client := NewClient(server.URL, "t", nil)
	require.NoError(t, client.ValiderMois(context.Background(), 2025, time.March, 4))
	assert.Equal(t, 2025, got.Annee)
	assert.Equal(t, 3, got.Mois)
	require.NotNil(t, got.EquipeID)
	assert.EqualValues(t, 4, *got.EquipeID)
}
