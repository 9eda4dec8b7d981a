package planning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sdis50-dev/feuille-de-garde/backend/internal/domain"
)

// Client est l'implémentation REST de l'interface API : il porte le jeton de
// session sur chaque requête et décode l'enveloppe {success, message, data}.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do exécute la requête et décode data dans out. Une enveloppe en échec est
// rendue telle quelle : le message du serveur devient l'erreur, sans reprise
// automatique.
func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("réponse illisible du serveur (%s)", resp.Status)
	}

	if !env.Success {
		if env.Message != "" {
			return errors.New(env.Message)
		}
		return fmt.Errorf("échec de la requête (%s)", resp.Status)
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(env.Data, out)
}

type gardeDetailPayload struct {
	domain.Garde
	Affectations     []domain.Affectation     `json:"affectations"`
	Indisponibilites []domain.Indisponibilite `json:"indisponibilites"`
}

func (c *Client) ListGardes(ctx context.Context, year int, month time.Month, equipeID *int64) ([]domain.Garde, error) {
	path := fmt.Sprintf("/gardes?annee=%d&mois=%d", year, int(month))
	if equipeID != nil {
		path += fmt.Sprintf("&equipe=%d", *equipeID)
	}

	var data struct {
		Gardes []gardeDetailPayload `json:"gardes"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, err
	}

	gardes := make([]domain.Garde, 0, len(data.Gardes))
	for _, detail := range data.Gardes {
		gardes = append(gardes, detail.Garde)
	}
	return gardes, nil
}

func (c *Client) ListPersonnels(ctx context.Context) ([]domain.Personnel, error) {
	var personnels []domain.Personnel
	if err := c.do(ctx, http.MethodGet, "/personnels", nil, &personnels); err != nil {
		return nil, err
	}
	return personnels, nil
}

// GetGardeDetail lit une garde et ses deux listes en une seule requête.
func (c *Client) GetGardeDetail(ctx context.Context, gardeID int64) (GardeDetail, error) {
	var payload gardeDetailPayload
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/gardes/%d", gardeID), nil, &payload); err != nil {
		return GardeDetail{}, err
	}
	return GardeDetail{
		Garde:            payload.Garde,
		Affectations:     payload.Affectations,
		Indisponibilites: payload.Indisponibilites,
	}, nil
}

func (c *Client) CreateAffectation(ctx context.Context, req AssignmentRequest) (*domain.Affectation, error) {
	var created domain.Affectation
	if err := c.do(ctx, http.MethodPost, "/affectations", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteAffectation(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/affectations/%d", id), nil, nil)
}

func (c *Client) CreateIndisponibilite(ctx context.Context, gardeID, personnelID int64) (*domain.Indisponibilite, error) {
	req := struct {
		GardeID     int64 `json:"gardeId"`
		PersonnelID int64 `json:"personnelId"`
	}{GardeID: gardeID, PersonnelID: personnelID}

	var created domain.Indisponibilite
	if err := c.do(ctx, http.MethodPost, "/indisponibilites", req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) DeleteIndisponibilite(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/indisponibilites/%d", id), nil, nil)
}

func (c *Client) ValiderMois(ctx context.Context, year int, month time.Month, equipeID int64) error {
	req := struct {
		Annee    int    `json:"annee"`
		Mois     int    `json:"mois"`
		EquipeID *int64 `json:"equipeId"`
	}{Annee: year, Mois: int(month), EquipeID: &equipeID}

	return c.do(ctx, http.MethodPost, "/gardes/valider-mois", req, nil)
}

func (c *Client) DevaliderMois(ctx context.Context, year int, month time.Month, equipeID *int64) error {
	req := struct {
		Annee    int    `json:"annee"`
		Mois     int    `json:"mois"`
		EquipeID *int64 `json:"equipeId"`
	}{Annee: year, Mois: int(month), EquipeID: equipeID}

	return c.do(ctx, http.MethodPost, "/gardes/devalider-mois", req, nil)
}

var _ API = (*Client)(nil)
