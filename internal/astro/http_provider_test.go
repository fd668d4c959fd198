package astro

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPProviderDailyFacts(t *testing.T) {
	var gotPath string
	var gotBirth BirthInfo
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBirth))
		json.NewEncoder(w).Encode(Facts{
			Sun: "Leo", Moon: "Pisces", Ascendant: "Virgo",
			CurrentPlanets: map[string]PlanetPosition{
				"Mercury": {Sign: "Gemini", Degree: 10, Retrograde: true},
			},
		})
	}))
	defer ts.Close()

	p := &HTTPProvider{BaseURL: ts.URL, HTTPClient: &http.Client{Timeout: time.Second}}
	facts, err := p.DailyFacts(context.Background(), BirthInfo{
		Date: "1990/01/01", Time: "12:00", TimezoneOffset: "+00:00",
		Latitude: "51.5", Longitude: "-0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "/charts/daily", gotPath)
	assert.Equal(t, "1990/01/01", gotBirth.Date)
	assert.Equal(t, "Leo", facts.Sun)
	assert.True(t, facts.MercuryRetrograde())
}

func TestHTTPProviderNatalPath(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(Facts{Sun: "Aries"})
	}))
	defer ts.Close()

	p := &HTTPProvider{BaseURL: ts.URL, HTTPClient: &http.Client{Timeout: time.Second}}
	_, err := p.NatalFacts(context.Background(), BirthInfo{})
	require.NoError(t, err)
	assert.Equal(t, "/charts/natal", gotPath)
}

func TestHTTPProviderErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad birth data"}`, http.StatusUnprocessableEntity)
	}))
	defer ts.Close()

	p := &HTTPProvider{BaseURL: ts.URL, HTTPClient: &http.Client{Timeout: time.Second}}
	_, err := p.DailyFacts(context.Background(), BirthInfo{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}
