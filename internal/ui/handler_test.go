package ui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gemeindetools/planweb/internal/auth"
	"github.com/gemeindetools/planweb/internal/config"
	"github.com/gemeindetools/planweb/internal/plan"
	"github.com/gemeindetools/planweb/internal/store"
)

func testHandler() *Handler {
	cfg := &config.Config{
		BaseURL:           "http://localhost:8080",
		Version:           "test",
		ChurchToolsDomain: "gemeinde.church.tools",
	}
	cfg.Session.Secret = "0123456789abcdef0123456789abcdef"
	return NewHandler(cfg, nil)
}

func TestLoginChurchToolsFormRenders(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/login_churchtools?error=Anmeldung+fehlgeschlagen", nil)
	rec := httptest.NewRecorder()
	h.LoginChurchToolsForm(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`name="domain"`,
		`name="username"`,
		`name="password"`,
		"gemeinde.church.tools",
		"Anmeldung fehlgeschlagen",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestLoginCommuniFormRenders(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/login_communi", nil)
	rec := httptest.NewRecorder()
	h.LoginCommuniForm(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	for _, want := range []string{`name="server"`, `name="token"`, `name="app_id"`} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("body missing %q", want)
		}
	}
}

func TestMainRenders(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest(http.MethodGet, "/main", nil)
	clients := &auth.Clients{Session: &store.Session{CTDomain: "https://gemeinde.church.tools"}}
	req = req.WithContext(auth.WithClients(req.Context(), clients))

	rec := httptest.NewRecorder()
	h.Main(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "https://gemeinde.church.tools") {
		t.Error("body missing connected domain")
	}
	if !strings.Contains(body, "/download/plan_months") {
		t.Error("body missing plan link")
	}
	if !strings.Contains(body, "Communi ist nicht verbunden") {
		t.Error("body missing communi hint for session without communi token")
	}
}

func TestNewPlanTableView(t *testing.T) {
	table := &plan.Table{
		Locations: []string{"Marienkirche", "Stadtkirche"},
		Rows: []*plan.Row{
			{
				ShortDay:       "So 01.12",
				SpecialDayName: "1. Advent",
				Cells: map[string]*plan.Cell{
					"Stadtkirche": {
						ShortTime:        []string{"10.00", "18.00"},
						ShortName:        []string{"mit Abendmahl", "Gottesdienst"},
						Predigt:          []string{"Schmidt", "Maier"},
						SpecialService:   []string{"mit Posaunenchor", ""},
						Taufe:            []string{"", ""},
						Abendmahl:        []string{"Abendmahl", ""},
						Musik:            []string{"Pos.Chor", ""},
						PredigtLastname:  []string{"Schmidt", "Maier"},
						OrganistLastname: []string{"Bauer", "Bauer"},
					},
				},
			},
		},
	}

	view := newPlanTableView(table)
	if len(view.Rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(view.Rows))
	}
	row := view.Rows[0]
	if len(row.Cells) != 2 {
		t.Fatalf("got %d cells, want one per location", len(row.Cells))
	}
	if len(row.Cells[0].Entries) != 0 {
		t.Errorf("location without occurrences must yield an empty cell")
	}
	entries := row.Cells[1].Entries
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Time != "10.00" || entries[0].Name != "mit Abendmahl" {
		t.Errorf("first entry = %+v, want 10.00 mit Abendmahl", entries[0])
	}
	if entries[0].Musik != "Pos.Chor" || entries[1].Musik != "" {
		t.Errorf("music fields not carried per occurrence: %+v", entries)
	}
	if row.SpecialDayName != "1. Advent" {
		t.Errorf("special day name = %q", row.SpecialDayName)
	}
}
