// Package astro models the chart facts the service receives from the external
// chart-data provider. Position derivation itself happens on the other side of
// the Provider interface.
package astro

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

const (
	ChartTypeDaily = "daily"
	ChartTypeNatal = "natal"
)

// BirthInfo identifies the chart to derive. All fields are passed through to
// the provider verbatim; Date uses slash separators (see NormalizeDate).
type BirthInfo struct {
	Date           string `json:"birth_date"`
	Time           string `json:"birth_time"`
	TimezoneOffset string `json:"timezone_offset"`
	Latitude       string `json:"latitude"`
	Longitude      string `json:"longitude"`
}

// PlanetPosition is one planet's current placement.
type PlanetPosition struct {
	Sign       string  `json:"sign"`
	Degree     float64 `json:"degree"`
	Retrograde bool    `json:"retrograde"`
}

// HousePlacement is a planet sitting in a natal house.
type HousePlacement struct {
	Name   string  `json:"name"`
	Sign   string  `json:"sign"`
	Degree float64 `json:"degree,omitempty"`
}

// Facts is the chart-derived input to prompt construction.
type Facts struct {
	Sun            string                    `json:"sun"`
	Moon           string                    `json:"moon"`
	Ascendant      string                    `json:"ascendant"`
	Houses         map[int][]HousePlacement  `json:"houses,omitempty"`
	CurrentPlanets map[string]PlanetPosition `json:"current_planets,omitempty"`
}

// MercuryRetrograde reports whether Mercury is currently retrograde.
func (f Facts) MercuryRetrograde() bool {
	return f.CurrentPlanets["Mercury"].Retrograde
}

// Provider derives chart facts from birth data. Implementations are expected
// to be safe for concurrent use.
type Provider interface {
	// DailyFacts returns natal placements plus today's transits.
	DailyFacts(ctx context.Context, birth BirthInfo) (Facts, error)
	// NatalFacts returns the full natal chart without transits.
	NatalFacts(ctx context.Context, birth BirthInfo) (Facts, error)
}

// NormalizeDate rewrites an HTML date input (YYYY-MM-DD) into the slash form
// the chart provider expects. Slash-form input passes through unchanged.
func NormalizeDate(date string) string {
	return strings.ReplaceAll(strings.TrimSpace(date), "-", "/")
}

// houseNames captions each house for prompts.
var houseNames = map[int]string{
	1:  "1st House (Self/Identity) 🪞",
	2:  "2nd House (Money/Values) 💰",
	3:  "3rd House (Communication) 💬",
	4:  "4th House (Home/Family) 🏡",
	5:  "5th House (Creativity/Romance) 🎨",
	6:  "6th House (Health/Work) 🧑‍💼",
	7:  "7th House (Partnerships) 🤝",
	8:  "8th House (Transformation) 🔄",
	9:  "9th House (Philosophy/Travel) 🌍",
	10: "10th House (Career/Reputation) 🏆",
	11: "11th House (Friends/Hopes) 👥",
	12: "12th House (Spirituality/Subconscious) 🔮",
}

// HouseName returns the prompt caption for a house number.
func HouseName(n int) string {
	if name, ok := houseNames[n]; ok {
		return name
	}
	return fmt.Sprintf("House %d", n)
}

// FormatHouses renders per-house planet placements, one line per occupied
// house in house order.
func FormatHouses(houses map[int][]HousePlacement) string {
	nums := make([]int, 0, len(houses))
	for n := range houses {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	var lines []string
	for _, n := range nums {
		placements := houses[n]
		if len(placements) == 0 {
			continue
		}
		parts := make([]string, len(placements))
		for i, p := range placements {
			parts[i] = fmt.Sprintf("%s in %s", p.Name, p.Sign)
		}
		lines = append(lines, HouseName(n)+": "+strings.Join(parts, ", "))
	}
	return strings.Join(lines, "\n")
}

// FormatPlanets renders current planetary positions with retrograde
// annotations, in stable name order.
func FormatPlanets(current map[string]PlanetPosition) string {
	names := make([]string, 0, len(current))
	for name := range current {
		names = append(names, name)
	}
	sort.Strings(names)

	var positions []string
	var retrograde []string
	for _, name := range names {
		p := current[name]
		line := fmt.Sprintf("%s in %s at %.2f degrees", name, p.Sign, p.Degree)
		if p.Retrograde {
			line += " (RETROGRADE)"
			retrograde = append(retrograde, name)
		} else {
			line += " (direct)"
		}
		positions = append(positions, line)
	}

	result := "CURRENT PLANETARY POSITIONS:\n" + strings.Join(positions, "\n")
	if len(retrograde) > 0 {
		result += "\n\nRETROGRADE PLANETS: " + strings.Join(retrograde, ", ")
	} else {
		result += "\n\nNo planets are currently retrograde."
	}
	return result
}
