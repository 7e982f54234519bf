package plan

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Ordered; the first matching keyword wins, so keep the order stable.
var shortNameKeywords = []string{"Abendmahl", "Familien", "Grünen", "Konfirmation", "Ökum"}

// Location-based synonyms checked only when no keyword matched.
var shortNameSynonyms = []struct {
	substring string
	label     string
}{
	{"Sankenbach", "Grünen"},
	{"Flößerplatz", "Grünen"},
	{"Gartenschau", "Grünen"},
	{"Schelkewiese", "Grünen"},
	{"Wohnzimmer", "Wohnzimmer"},
	{"CVJM", "CVJM"},
	{"Impuls", "Impuls"},
}

var shortNameExpansions = map[string]string{
	"Abendmahl":  "mit Abendmahl",
	"Familien":   "für Familien",
	"Grünen":     "im Grünen",
	"Wohnzimmer": "Wohnzimmer-Worship",
	"Ökum":       "Ökumenisch",
}

// Classify maps a free-text event title to its canonical occasion label.
// Matching is case-insensitive; the keyword pass runs before the synonym
// pass and wins on overlap. Returns "" when nothing matches.
func Classify(title string) string {
	upper := strings.ToUpper(title)

	result := ""
	for _, keyword := range shortNameKeywords {
		if strings.Contains(upper, strings.ToUpper(keyword)) {
			result = keyword
			break
		}
	}
	if result == "" {
		for _, synonym := range shortNameSynonyms {
			if strings.Contains(upper, strings.ToUpper(synonym.substring)) {
				result = synonym.label
				break
			}
		}
	}

	if expanded, ok := shortNameExpansions[result]; ok {
		return expanded
	}
	return result
}

var specialServiceShortNames = map[string]string{
	"Posaunenchor": "Pos.Chor",
	"InJoy Chor":   "InJ.Chor",
	"Kirchenchor":  "Kir.Chor",
}

// ShortenSpecialService rewrites a special-service suffix like
// "mit Posaunenchor und Kirchenchor" into its abbreviated comma form
// "Pos.Chor, Kir.Chor". Unmapped group names pass through unchanged and are
// logged once per occurrence.
func ShortenSpecialService(specialServices string) string {
	parts := strings.Split(specialServices, " und ")
	short := make([]string, 0, len(parts))

	for _, part := range parts {
		name := strings.TrimPrefix(part, "mit ")
		if abbreviated, ok := specialServiceShortNames[name]; ok {
			short = append(short, abbreviated)
			continue
		}
		short = append(short, name)
		logrus.WithField("service", name).Warn("no known short form for special service")
	}
	return strings.Join(short, ", ")
}
