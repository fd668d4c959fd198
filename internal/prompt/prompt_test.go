package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/astrostream/internal/astro"
)

func sampleFacts() astro.Facts {
	return astro.Facts{
		Sun:       "Leo",
		Moon:      "Pisces",
		Ascendant: "Virgo",
		Houses: map[int][]astro.HousePlacement{
			1: {{Name: "Mars", Sign: "Virgo"}},
			5: {{Name: "Venus", Sign: "Cancer"}, {Name: "Jupiter", Sign: "Leo"}},
		},
		CurrentPlanets: map[string]astro.PlanetPosition{
			"Mercury": {Sign: "Gemini", Degree: 12.34, Retrograde: true},
			"Sun":     {Sign: "Virgo", Degree: 5.5},
		},
	}
}

func TestGenreClause(t *testing.T) {
	assert.Empty(t, GenreClause("", astro.ChartTypeDaily))
	assert.Empty(t, GenreClause("any", astro.ChartTypeDaily))
	assert.Empty(t, GenreClause("ANY", astro.ChartTypeDaily))
	assert.Equal(t,
		"(Please suggest songs from any genre that fits the vibe)",
		GenreClause("other", astro.ChartTypeDaily))
	assert.Equal(t,
		"(Please suggest a song from any genre that fits the chart)",
		GenreClause("other", astro.ChartTypeNatal))
	assert.Equal(t,
		"(Please prioritize rock genre if possible)",
		GenreClause("rock", astro.ChartTypeDaily))
}

func TestBuildSuggestionDeterministic(t *testing.T) {
	facts := sampleFacts()
	sys1, user1 := BuildSuggestion(facts, "rock", astro.ChartTypeDaily, "Popular tracks...")
	sys2, user2 := BuildSuggestion(facts, "rock", astro.ChartTypeDaily, "Popular tracks...")
	assert.Equal(t, sys1, sys2)
	assert.Equal(t, user1, user2, "same inputs must produce byte-identical prompts")
}

func TestBuildSuggestionContent(t *testing.T) {
	_, user := BuildSuggestion(sampleFacts(), "rock", astro.ChartTypeDaily, "Popular tracks in this genre include:\n- Yesterday by The Beatles")
	assert.Contains(t, user, "Sun: Leo, Moon: Pisces, Ascendant: Virgo")
	assert.Contains(t, user, "Song: <title> by <artist>")
	assert.Contains(t, user, "(Please prioritize rock genre if possible)")
	assert.Contains(t, user, "Mercury in Gemini at 12.34 degrees (RETROGRADE)")
	assert.Contains(t, user, "Yesterday by The Beatles")

	// House lines appear in house order.
	first := strings.Index(user, "1st House")
	fifth := strings.Index(user, "5th House")
	require.Greater(t, first, -1)
	require.Greater(t, fifth, first)
}

func TestBuildSuggestionNatalFraming(t *testing.T) {
	_, daily := BuildSuggestion(sampleFacts(), "any", astro.ChartTypeDaily, "")
	_, natal := BuildSuggestion(sampleFacts(), "any", astro.ChartTypeNatal, "")
	assert.Contains(t, daily, "today's vibe")
	assert.Contains(t, natal, "natal chart data")
	assert.NotEqual(t, daily, natal)
}

func TestBuildRetryAppendsFixedSuffix(t *testing.T) {
	initial := "base prompt"
	first := BuildRetry(initial, 1)
	second := BuildRetry(initial, 2)

	assert.True(t, strings.HasPrefix(first, initial))
	assert.Contains(t, first, "real, well-known song")
	assert.Equal(t, first, BuildRetry(initial, 1), "rebuilding is idempotent")
	assert.Equal(t, first, second, "the suffix does not vary with the attempt index")
}

func TestAnalysisPromptsCarryFacts(t *testing.T) {
	facts := sampleFacts()
	for _, build := range []func(astro.Facts) (string, string){
		BuildDailyAnalysis, BuildNatalAnalysis, BuildTacoOrder,
	} {
		system, user := build(facts)
		assert.NotEmpty(t, system)
		assert.Contains(t, user, "Sun: Leo, Moon: Pisces, Ascendant: Virgo")
	}
}
