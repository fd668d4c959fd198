package astro

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// HTTPProvider calls an external chart-data service over JSON/HTTP.
type HTTPProvider struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewHTTPProviderFromEnv builds a provider from CHART_API_URL, or reports
// that no chart backend is configured.
func NewHTTPProviderFromEnv() (*HTTPProvider, error) {
	base := strings.TrimRight(strings.TrimSpace(os.Getenv("CHART_API_URL")), "/")
	if base == "" {
		return nil, fmt.Errorf("CHART_API_URL is not set")
	}
	return &HTTPProvider{
		BaseURL:    base,
		HTTPClient: &http.Client{Timeout: chartTimeout()},
	}, nil
}

func chartTimeout() time.Duration {
	if v := os.Getenv("CHART_HTTP_TIMEOUT_MS"); v != "" {
		if d, err := time.ParseDuration(v + "ms"); err == nil {
			return d
		}
	}
	return 15 * time.Second
}

func (p *HTTPProvider) DailyFacts(ctx context.Context, birth BirthInfo) (Facts, error) {
	return p.fetch(ctx, "/charts/daily", birth)
}

func (p *HTTPProvider) NatalFacts(ctx context.Context, birth BirthInfo) (Facts, error) {
	return p.fetch(ctx, "/charts/natal", birth)
}

func (p *HTTPProvider) fetch(ctx context.Context, path string, birth BirthInfo) (Facts, error) {
	body, err := json.Marshal(birth)
	if err != nil {
		return Facts{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return Facts{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := p.HTTPClient.Do(req)
	if err != nil {
		return Facts{}, fmt.Errorf("chart provider: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var eresp map[string]any
		_ = json.NewDecoder(res.Body).Decode(&eresp)
		return Facts{}, fmt.Errorf("chart provider status %d: %v", res.StatusCode, eresp)
	}

	var facts Facts
	if err := json.NewDecoder(res.Body).Decode(&facts); err != nil {
		return Facts{}, fmt.Errorf("chart provider: decode: %w", err)
	}
	return facts, nil
}
