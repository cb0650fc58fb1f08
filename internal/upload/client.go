package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/claude/fitplay/internal/ingest"
	"github.com/claude/fitplay/internal/models"
)

// errClient marks responses that retrying cannot fix.
var errClient = errors.New("request rejected")

// Client talks to the FitPlay server over HTTP. Besides uploading catalog
// files it serves as the exercise source, weight source and session sink of
// the terminal player.
type Client struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
	backoff    time.Duration
}

// NewClient creates a new HTTP client for the FitPlay server. apiKey is only
// needed for catalog uploads.
func NewClient(serverURL, apiKey string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		backoff: time.Second,
	}
}

// SendCatalog POSTs a YAML catalog file to the server's catalog endpoint.
// Retries up to 3 times with exponential backoff on network errors and 5xx
// responses.
func (c *Client) SendCatalog(ctx context.Context, data []byte) (*ingest.Result, error) {
	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff << uint(attempt-1)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := c.sendCatalogOnce(ctx, data)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, errClient) {
			return nil, err
		}
		lastErr = err
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

func (c *Client) sendCatalogOnce(ctx context.Context, data []byte) (*ingest.Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/catalog", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errClient, err)
	}
	req.Header.Set("Content-Type", "application/yaml")
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, fmt.Errorf("%w (status %d): %s", errClient, resp.StatusCode, body)
	default:
		return nil, fmt.Errorf("catalog upload failed (status %d): %s", resp.StatusCode, body)
	}

	var result ingest.Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding catalog result: %w", err)
	}
	return &result, nil
}

// SessionExercises fetches the ordered exercise list of a challenge day or
// custom workout.
func (c *Client) SessionExercises(ctx context.Context, ref models.WorkoutRef) ([]models.SessionExercise, error) {
	var path string
	switch ref.Kind {
	case models.KindChallengeDay:
		path = "/api/v1/challenge-days/" + ref.ID.String() + "/exercises"
	case models.KindCustomWorkout:
		path = "/api/v1/workouts/" + ref.ID.String() + "/exercises"
	default:
		return nil, fmt.Errorf("unknown workout kind %q", ref.Kind)
	}

	var list []models.SessionExercise
	if err := c.get(ctx, path, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Profile returns the user's profile, including the server's default weight.
func (c *Client) Profile(ctx context.Context) (*models.Profile, error) {
	var p models.Profile
	if err := c.get(ctx, "/api/v1/profile", &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// BodyWeight returns the user's recorded weight. ok is false when none is set.
func (c *Client) BodyWeight(ctx context.Context) (float64, bool, error) {
	p, err := c.Profile(ctx)
	if err != nil {
		return 0, false, err
	}
	if p.WeightKg == nil {
		return 0, false, nil
	}
	return *p.WeightKg, true, nil
}

// RecordSession POSTs a completed session. It is not retried.
func (c *Client) RecordSession(ctx context.Context, rec models.SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.serverURL+"/api/v1/sessions", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("recording session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("recording session (status %d): %s", resp.StatusCode, body)
	}
	return nil
}

// Sessions lists the user's sessions started in [start, end).
func (c *Client) Sessions(ctx context.Context, start, end time.Time) ([]models.SessionLogRow, error) {
	q := url.Values{}
	q.Set("start", start.Format(time.RFC3339))
	q.Set("end", end.Format(time.RFC3339))

	var rows []models.SessionLogRow
	if err := c.get(ctx, "/api/v1/sessions?"+q.Encode(), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// Challenges lists the catalog's challenges with their day ids.
func (c *Client) Challenges(ctx context.Context) ([]models.Challenge, error) {
	var list []models.Challenge
	if err := c.get(ctx, "/api/v1/challenges", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Workouts lists the user's custom workouts.
func (c *Client) Workouts(ctx context.Context) ([]models.CustomWorkout, error) {
	var list []models.CustomWorkout
	if err := c.get(ctx, "/api/v1/workouts", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("fetching %s (status %d): %s", path, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
