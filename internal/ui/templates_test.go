package ui

import "testing"

func TestTemplatesEmbedded(t *testing.T) {
	names := []string{
		"base.html",
		"main.html",
		"login_churchtools.html",
		"login_communi.html",
		"download_plan_months.html",
		"ct_calendar_appointments.html",
		"ct_contacts.html",
		"communi_events.html",
	}
	for _, name := range names {
		if _, err := templateFS.Open("templates/" + name); err != nil {
			t.Fatalf("expected embedded template %s, got error: %v", name, err)
		}
	}
}

func TestTemplatesParsed(t *testing.T) {
	for _, name := range []string{"main.html", "download_plan_months.html"} {
		if _, ok := templates[name]; !ok {
			t.Errorf("template set %q missing", name)
		}
	}
	if _, ok := templates["base.html"]; ok {
		t.Error("base.html must not be a standalone template set")
	}
}
