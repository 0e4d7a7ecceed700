// Package telemetry reports track plays to the platform's play-count
// service. Reporting is strictly fire-and-forget: nothing here may
// block or disturb playback.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrNotAuthenticated is returned when no session credential is
// available; the caller treats it as "skip silently".
var ErrNotAuthenticated = errors.New("not authenticated")

// Client calls the play-count service.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a client for the play-count service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 10 * time.Second},
	}
}

type playReport struct {
	EventID  string `json:"eventId"`
	PlayedAt int64  `json:"playedAt"`
}

// ReportPlay submits one play of trackID, authenticated with the
// caller's session credential. The event ID makes retries idempotent
// on the service side.
func (c *Client) ReportPlay(ctx context.Context, trackID, session string) error {
	if session == "" {
		return ErrNotAuthenticated
	}

	body, err := json.Marshal(playReport{
		EventID:  uuid.NewString(),
		PlayedAt: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("report play: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/tracks/%s/plays", c.baseURL, trackID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("report play: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+session)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("report play: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("report play: unexpected status %s", resp.Status)
	}
	return nil
}
