package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validBody() map[string]any {
	return map[string]any{
		"birth_date":      "1990-01-01",
		"birth_time":      "12:00",
		"timezone_offset": "+00:00",
		"latitude":        51.5,
		"longitude":       -0.1,
		"music_genre":     "rock",
		"chart_type":      "daily",
	}
}

func TestValidateRequestAccepted(t *testing.T) {
	req, err := ValidateRequest(validBody())
	require.NoError(t, err)
	assert.Equal(t, "1990/01/01", req.Birth.Date, "date separators normalized")
	assert.Equal(t, "12:00", req.Birth.Time)
	assert.Equal(t, "51.5", req.Birth.Latitude)
	assert.Equal(t, "-0.1", req.Birth.Longitude)
	assert.Equal(t, "rock", req.Genre)
	assert.Equal(t, "daily", req.ChartType)
}

func TestValidateRequestSlashDatePassesThrough(t *testing.T) {
	body := validBody()
	body["birth_date"] = "1990/01/01"
	req, err := ValidateRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "1990/01/01", req.Birth.Date)
}

func TestValidateRequestAllFieldsMissing(t *testing.T) {
	_, err := ValidateRequest(map[string]any{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t,
		[]string{"birth_date", "birth_time", "timezone_offset", "latitude", "longitude"},
		verr.Missing)
}

func TestValidateRequestReportsEveryMissingField(t *testing.T) {
	_, err := ValidateRequest(map[string]any{
		"birth_date":  "1990-01-01",
		"music_genre": "any",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t,
		[]string{"birth_time", "timezone_offset", "latitude", "longitude"},
		verr.Missing)
	for _, name := range verr.Missing {
		assert.Contains(t, verr.Error(), name)
	}
}

func TestValidateRequestZeroNumericsAllowed(t *testing.T) {
	body := validBody()
	body["timezone_offset"] = "0"
	body["latitude"] = 0.0
	body["longitude"] = 0.0
	req, err := ValidateRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "0", req.Birth.Latitude)
	assert.Equal(t, "0", req.Birth.Longitude)
}

func TestValidateRequestRejectsNullAndBlank(t *testing.T) {
	body := validBody()
	body["latitude"] = nil
	body["birth_time"] = "   "
	_, err := ValidateRequest(body)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{"birth_time", "latitude"}, verr.Missing)
}

func TestValidateRequestGenreDefaults(t *testing.T) {
	body := validBody()
	delete(body, "music_genre")
	delete(body, "chart_type")
	req, err := ValidateRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "any", req.Genre)
	assert.Equal(t, "daily", req.ChartType)
}

func TestValidateRequestOtherGenreCollapse(t *testing.T) {
	body := validBody()
	body["music_genre"] = "other"
	body["other_genre"] = "bossa nova"
	req, err := ValidateRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "bossa nova", req.Genre)

	// A blank write-in falls back to "any" rather than leaking the literal
	// "other" downstream.
	body["other_genre"] = "  "
	req, err = ValidateRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "any", req.Genre)

	delete(body, "other_genre")
	req, err = ValidateRequest(body)
	require.NoError(t, err)
	assert.Equal(t, "any", req.Genre)
}
