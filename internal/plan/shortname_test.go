package plan

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Gottesdienst", ""},
		{"Abendgottesdienst", ""},
		{"Gottesdienst mit Abendmahl", "mit Abendmahl"},
		{"GOTTESDIENST MIT ABENDMAHL", "mit Abendmahl"},
		{"Familien-Gottesdienst", "für Familien"},
		{"Gottesdienst im Grünen", "im Grünen"},
		{"Goldene Konfirmation", "Konfirmation"},
		{"Konfirmation", "Konfirmation"},
		{"Ökum. Gottesdienst", "Ökumenisch"},
		{"Gottesdienst am Sankenbach", "im Grünen"},
		{"Gottesdienst am Flößerplatz", "im Grünen"},
		{"Gottesdienst auf der Gartenschau", "im Grünen"},
		{"Gottesdienst Schelkewiese", "im Grünen"},
		{"Wohnzimmer-Gottesdienst", "Wohnzimmer-Worship"},
		{"CVJM Sonntagstreff", "CVJM"},
		{"Impuls-Gottesdienst", "Impuls"},
		// Keyword pass wins over synonym pass on overlap.
		{"Familien-Gottesdienst am Sankenbach", "für Familien"},
	}

	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			if got := Classify(tc.title); got != tc.want {
				t.Errorf("Classify(%q) = %q, want %q", tc.title, got, tc.want)
			}
		})
	}
}

func TestClassifyIdempotentOnCanonicalLabel(t *testing.T) {
	if got := Classify(Classify("Goldene Konfirmation")); got != "Konfirmation" {
		t.Errorf("re-applied Classify = %q, want %q", got, "Konfirmation")
	}
}

func TestShortenSpecialService(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"single mapped", "mit Posaunenchor", "Pos.Chor"},
		{"two mapped", "mit Posaunenchor und Kirchenchor", "Pos.Chor, Kir.Chor"},
		{"injoy", "mit InJoy Chor", "InJ.Chor"},
		{"unmapped passthrough", "mit Was anderes", "Was anderes"},
		{"mixed", "mit Kirchenchor und Flötenkreis", "Kir.Chor, Flötenkreis"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShortenSpecialService(tc.input); got != tc.want {
				t.Errorf("ShortenSpecialService(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
