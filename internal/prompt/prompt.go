// Package prompt assembles the system and user prompts sent to the text
// backend. Every builder is a pure function of its inputs so that identical
// requests produce byte-identical prompts.
package prompt

import (
	"fmt"
	"strings"

	"github.com/example/astrostream/internal/astro"
)

// SystemAstrologer is the persona for horoscope and music prompts.
const SystemAstrologer = "You are a cool astrologer who uses lots of emojis and is very casual. " +
	"You are also very concise and to the point. You are an expert in astrology and can analyze charts quickly. " +
	"Never use any mdashes in your responses those just aren't cool."

// SystemTacoOracle is the persona for the Live Más order prompt.
const SystemTacoOracle = "You are a cool astrologer who uses lots of emojis and is very casual. " +
	"You are also very concise and to the point. You are an expert in astrology and can analyze charts and the taco bell menu quickly. " +
	"Never use any mdashes in your responses those just aren't cool."

// retrySuffix is appended verbatim on every retry attempt. It deliberately
// does not mention why the previous attempt was rejected; keeping the suffix
// fixed keeps retry prompts reproducible.
const retrySuffix = "\n\nIMPORTANT: Your previous suggestion was not a real song. " +
	"You MUST suggest a real, well-known song that actually exists and can be verified. " +
	"Do not invent a song title or an artist."

// GenreClause renders the genre-preference clause for a prompt. No preference
// yields no clause; the literal "other" asks for an open-genre pick phrased
// per chart type; anything else asks to prioritize that genre.
func GenreClause(genre, chartType string) string {
	g := strings.ToLower(strings.TrimSpace(genre))
	switch {
	case g == "" || g == "any":
		return ""
	case g == "other":
		if chartType == astro.ChartTypeNatal {
			return "(Please suggest a song from any genre that fits the chart)"
		}
		return "(Please suggest songs from any genre that fits the vibe)"
	default:
		return fmt.Sprintf("(Please prioritize %s genre if possible)", genre)
	}
}

// BuildSuggestion builds the system instruction and user prompt for the
// verified music suggestion pipeline. musicContext is optional genre material
// (popular tracks, genre blurb) gathered ahead of the call.
func BuildSuggestion(facts astro.Facts, genre, chartType, musicContext string) (system, user string) {
	var b strings.Builder
	if chartType == astro.ChartTypeNatal {
		b.WriteString("Based on the following natal chart data, suggest exactly one song that captures this person's core energy. ")
	} else {
		b.WriteString("Based on the following astrological chart data, suggest exactly one song that matches today's vibe for this person. ")
	}
	b.WriteString("The song must be a real, released song. ")
	b.WriteString("Respond with a single line in the format: Song: <title> by <artist>. ")
	if clause := GenreClause(genre, chartType); clause != "" {
		b.WriteString(clause)
		b.WriteString(" ")
	}
	b.WriteString("\n\n")
	writeFacts(&b, facts)
	if musicContext != "" {
		b.WriteString("\n\n")
		b.WriteString(musicContext)
	}
	return SystemAstrologer, b.String()
}

// BuildRetry appends the fixed correction clause to the initial prompt. The
// result depends only on the initial prompt, so rebuilding for the same
// attempt yields the same bytes.
func BuildRetry(initial string, attempt int) string {
	return initial + retrySuffix
}

// BuildDailyAnalysis builds the daily horoscope prompt.
func BuildDailyAnalysis(facts astro.Facts) (system, user string) {
	var b strings.Builder
	b.WriteString("Only respond in a few sentences. Based on the following astrological chart data: ")
	b.WriteString("First give a single sentence summarizing the day for the person getting the horoscope as a title for the horoscope ")
	b.WriteString("and then please recommend some activities to do or not to do ideally in bullet format ")
	b.WriteString("the first sentence in your response should be what today's vibe will be like ")
	b.WriteString("please also recommend a beverage to drink given today's vibe:\n\n")
	writeFacts(&b, facts)
	return SystemAstrologer, b.String()
}

// BuildNatalAnalysis builds the full natal chart summary prompt.
func BuildNatalAnalysis(facts astro.Facts) (system, user string) {
	var b strings.Builder
	b.WriteString("Only respond in a few sentences. Based on the following natal chart data, ")
	b.WriteString("please give a concise, emoji-filled summary of this person's personality and life themes. ")
	b.WriteString("Highlight any unique planetary placements or house patterns. ")
	b.WriteString("Format your response in bullet points:\n\n")
	writeFacts(&b, facts)
	return SystemAstrologer, b.String()
}

// BuildTacoOrder builds the Live Más order prompt.
func BuildTacoOrder(facts astro.Facts) (system, user string) {
	var b strings.Builder
	b.WriteString("You are a cosmic Taco Bell expert! Based on this person's astrological chart, ")
	b.WriteString("create a personalized Taco Bell order that matches their cosmic energy. ")
	b.WriteString("Be creative, fun, and use lots of emojis! Be concise and use a bulleted list.:\n\n")
	writeFacts(&b, facts)
	return SystemTacoOracle, b.String()
}

func writeFacts(b *strings.Builder, facts astro.Facts) {
	fmt.Fprintf(b, "Sun: %s, Moon: %s, Ascendant: %s", facts.Sun, facts.Moon, facts.Ascendant)
	if houses := astro.FormatHouses(facts.Houses); houses != "" {
		b.WriteString("\n\nPlanets in Houses:\n")
		b.WriteString(houses)
	}
	if len(facts.CurrentPlanets) > 0 {
		b.WriteString("\n\nCurrent Planets status:\n")
		b.WriteString(astro.FormatPlanets(facts.CurrentPlanets))
	}
}
