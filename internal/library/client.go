// Package library supplies the tracks fed to the playback engine:
// either the hosted backend's library endpoint or a local folder scan.
package library

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/lmeunier/groove/internal/playback"
)

// Client fetches a user's track library from the hosted backend.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient creates a library client for the backend at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

type trackJSON struct {
	ID           string  `json:"id"`
	OwnerID      string  `json:"ownerId"`
	Title        string  `json:"title"`
	Artist       string  `json:"artist"`
	MediaURL     string  `json:"mediaUrl"`
	Duration     float64 `json:"duration,omitempty"` // seconds
	Size         int64   `json:"size,omitempty"`
	ContentType  string  `json:"contentType,omitempty"`
	PlayCount    int64   `json:"playCount,omitempty"`
	LastPlayedAt int64   `json:"lastPlayedAt,omitempty"` // unix seconds
	CreatedAt    int64   `json:"createdAt"`
}

// FetchLibrary returns the tracks available to the authenticated
// session, in the order the backend stores them.
func (c *Client) FetchLibrary(ctx context.Context, session string) ([]playback.Track, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/tracks", nil)
	if err != nil {
		return nil, fmt.Errorf("fetch library: %w", err)
	}
	if session != "" {
		req.Header.Set("Authorization", "Bearer "+session)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch library: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch library: unexpected status %s", resp.Status)
	}

	var raw []trackJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("fetch library: decode: %w", err)
	}

	tracks := make([]playback.Track, len(raw))
	for i, t := range raw {
		tracks[i] = playback.Track{
			ID:          t.ID,
			OwnerID:     t.OwnerID,
			Title:       t.Title,
			Artist:      t.Artist,
			MediaURL:    t.MediaURL,
			Duration:    time.Duration(t.Duration * float64(time.Second)),
			Size:        t.Size,
			ContentType: t.ContentType,
			PlayCount:   t.PlayCount,
			CreatedAt:   time.Unix(t.CreatedAt, 0),
		}
		if t.LastPlayedAt > 0 {
			tracks[i].LastPlayedAt = time.Unix(t.LastPlayedAt, 0)
		}
	}
	return tracks, nil
}
