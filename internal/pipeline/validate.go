package pipeline

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/example/astrostream/internal/astro"
)

// requiredFields are checked in this order so error messages are stable.
var requiredFields = []string{"birth_date", "birth_time", "timezone_offset", "latitude", "longitude"}

// ValidationError reports every required field that was missing or empty,
// not just the first.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}

// SuggestionRequest is a validated, normalized music suggestion request.
type SuggestionRequest struct {
	Birth     astro.BirthInfo
	Genre     string
	ChartType string
}

// ValidateRequest checks a decoded request body and normalizes it. Fields are
// kept as an untyped map so that an absent key, an explicit null, and a blank
// string are all rejected while a legitimate numeric zero passes.
func ValidateRequest(body map[string]any) (*SuggestionRequest, error) {
	var missing []string
	values := map[string]string{}
	for _, name := range requiredFields {
		s, ok := fieldValue(body, name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		values[name] = s
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	genre := strings.TrimSpace(stringField(body, "music_genre"))
	if genre == "" {
		genre = "any"
	}
	// An "other" selection with a written-in genre collapses to that genre;
	// a blank write-in falls back to "any" so no literal "other" tag leaks
	// into prompts or track lookups.
	if strings.EqualFold(genre, "other") {
		if og := strings.TrimSpace(stringField(body, "other_genre")); og != "" {
			genre = og
		} else {
			genre = "any"
		}
	}

	chartType := strings.TrimSpace(stringField(body, "chart_type"))
	if chartType == "" {
		chartType = astro.ChartTypeDaily
	}

	return &SuggestionRequest{
		Birth: astro.BirthInfo{
			Date:           astro.NormalizeDate(values["birth_date"]),
			Time:           values["birth_time"],
			TimezoneOffset: values["timezone_offset"],
			Latitude:       values["latitude"],
			Longitude:      values["longitude"],
		},
		Genre:     genre,
		ChartType: chartType,
	}, nil
}

// fieldValue stringifies a present, non-empty field. Numeric zero is a valid
// value; a missing key, JSON null, or blank string is not.
func fieldValue(body map[string]any, name string) (string, bool) {
	v, ok := body[name]
	if !ok || v == nil {
		return "", false
	}
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	default:
		return "", false
	}
}

func stringField(body map[string]any, name string) string {
	s, _ := body[name].(string)
	return s
}
