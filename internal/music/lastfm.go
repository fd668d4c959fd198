// Package music fetches genre material from the Last.fm API to ground song
// suggestions in tracks that actually exist.
package music

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultAPIURL = "https://ws.audioscrobbler.com/2.0/"

// Track is one entry from a genre's top-tracks chart.
type Track struct {
	Name   string
	Artist string
}

// Client talks to the Last.fm API. A nil *Client is usable and returns no
// data, so callers don't special-case a missing API key.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Log        *zap.Logger
}

// NewClientFromEnv returns a client when LAST_FM_API_KEY is set, else nil.
func NewClientFromEnv(log *zap.Logger) *Client {
	key := strings.TrimSpace(os.Getenv("LAST_FM_API_KEY"))
	if key == "" {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		APIKey:     key,
		BaseURL:    defaultAPIURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Log:        log,
	}
}

// TopTracksByGenre fetches up to limit top tracks for a genre tag. Genres
// "" and "any" are skipped. Tracks missing a name or artist are dropped.
func (c *Client) TopTracksByGenre(ctx context.Context, genre string, limit int) ([]Track, error) {
	if c == nil {
		return nil, nil
	}
	tag := strings.ToLower(strings.TrimSpace(genre))
	if tag == "" || tag == "any" {
		return nil, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	var out struct {
		Tracks struct {
			Track []struct {
				Name   string `json:"name"`
				Artist struct {
					Name string `json:"name"`
				} `json:"artist"`
			} `json:"track"`
		} `json:"tracks"`
	}
	params := url.Values{
		"method":  {"tag.gettoptracks"},
		"tag":     {tag},
		"limit":   {fmt.Sprint(limit)},
		"api_key": {c.APIKey},
		"format":  {"json"},
	}
	if err := c.get(ctx, params, &out); err != nil {
		return nil, fmt.Errorf("lastfm top tracks for %q: %w", tag, err)
	}

	tracks := make([]Track, 0, len(out.Tracks.Track))
	for _, t := range out.Tracks.Track {
		if t.Name == "" || t.Artist.Name == "" {
			continue
		}
		tracks = append(tracks, Track{Name: t.Name, Artist: t.Artist.Name})
	}
	c.Log.Debug("fetched genre tracks", zap.String("tag", tag), zap.Int("count", len(tracks)))
	return tracks, nil
}

// GenreBlurb fetches the tag's wiki summary with markup stripped, for prompt
// context. Empty when the tag has no wiki entry.
func (c *Client) GenreBlurb(ctx context.Context, genre string) (string, error) {
	if c == nil {
		return "", nil
	}
	tag := strings.ToLower(strings.TrimSpace(genre))
	if tag == "" || tag == "any" || tag == "other" {
		return "", nil
	}

	var out struct {
		Tag struct {
			Wiki struct {
				Summary string `json:"summary"`
			} `json:"wiki"`
		} `json:"tag"`
	}
	params := url.Values{
		"method":  {"tag.getinfo"},
		"tag":     {tag},
		"api_key": {c.APIKey},
		"format":  {"json"},
	}
	if err := c.get(ctx, params, &out); err != nil {
		return "", fmt.Errorf("lastfm tag info for %q: %w", tag, err)
	}
	return StripHTML(out.Tag.Wiki.Summary), nil
}

func (c *Client) get(ctx context.Context, params url.Values, out any) error {
	base := c.BaseURL
	if base == "" {
		base = defaultAPIURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("status %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// FormatTracksForPrompt renders tracks as a bullet list for prompt
// inclusion, capped at limit. Empty input yields an empty string.
func FormatTracksForPrompt(tracks []Track, limit int) string {
	if len(tracks) == 0 {
		return ""
	}
	if limit > 0 && len(tracks) > limit {
		tracks = tracks[:limit]
	}
	lines := make([]string, len(tracks))
	for i, t := range tracks {
		lines[i] = fmt.Sprintf("- %s by %s", t.Name, t.Artist)
	}
	return "Popular tracks in this genre include:\n" + strings.Join(lines, "\n")
}
