package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/fitplay/internal/models"
	"github.com/claude/fitplay/internal/storage"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the FitPlay REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). The server
// resolves the user from the connection, so userID arguments are ignored.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("httpclient: read body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", path, err)
	}
	return nil
}

func (c *HTTPClient) QuerySessionLogs(ctx context.Context, _ int, start, end time.Time, kind models.WorkoutKind) ([]models.SessionLogRow, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))
	if kind != "" {
		params.Set("kind", string(kind))
	}
	var rows []models.SessionLogRow
	if err := c.get(ctx, "/api/v1/sessions", params, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *HTTPClient) GetActivityStats(ctx context.Context, _ int, _ time.Time) (*storage.ActivityStats, error) {
	var stats storage.ActivityStats
	if err := c.get(ctx, "/api/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *HTTPClient) ListExercises(ctx context.Context, muscle string) ([]models.Exercise, error) {
	var params url.Values
	if muscle != "" {
		params = url.Values{"muscle": {muscle}}
	}
	var exercises []models.Exercise
	if err := c.get(ctx, "/api/v1/exercises", params, &exercises); err != nil {
		return nil, err
	}
	return exercises, nil
}

func (c *HTTPClient) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	var challenges []models.Challenge
	if err := c.get(ctx, "/api/v1/challenges", nil, &challenges); err != nil {
		return nil, err
	}
	return challenges, nil
}

func (c *HTTPClient) ChallengeDayExercises(ctx context.Context, dayID uuid.UUID) ([]models.SessionExercise, error) {
	var list []models.SessionExercise
	if err := c.get(ctx, "/api/v1/challenge-days/"+dayID.String()+"/exercises", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *HTTPClient) GetProfile(ctx context.Context, _ int) (*models.Profile, error) {
	var p models.Profile
	if err := c.get(ctx, "/api/v1/profile", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *HTTPClient) CustomWorkoutExercises(ctx context.Context, _ int, id uuid.UUID) ([]models.SessionExercise, error) {
	var list []models.SessionExercise
	if err := c.get(ctx, "/api/v1/workouts/"+id.String()+"/exercises", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}
