package churchtools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		name   string
		domain string
		want   string
	}{
		{name: "bare host", domain: "gemeinde.church.tools", want: "https://gemeinde.church.tools"},
		{name: "with scheme", domain: "http://localhost:9000", want: "http://localhost:9000"},
		{name: "trailing slash", domain: "https://gemeinde.church.tools/", want: "https://gemeinde.church.tools"},
		{name: "empty", domain: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeDomain(tt.domain); got != tt.want {
				t.Errorf("normalizeDomain(%q) = %q, want %q", tt.domain, got, tt.want)
			}
		})
	}
}

func TestGetSendsLoginToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data": [{"id": 2, "name": "Gottesdienste"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token")
	cals, err := c.Calendars(context.Background())
	if err != nil {
		t.Fatalf("calendars: %v", err)
	}

	if gotAuth != "Login secret-token" {
		t.Errorf("authorization header = %q, want Login token scheme", gotAuth)
	}
	if len(cals) != 1 || cals[0].Name != "Gottesdienste" {
		t.Errorf("calendars = %+v", cals)
	}
}

func TestGetUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(srv.URL, "expired")
	if _, err := c.Calendars(context.Background()); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestCalendarAppointmentsPrefersCalculatedDate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query()["calendar_ids[]"]; len(got) != 2 {
			t.Errorf("calendar_ids[] = %v, want two values", got)
		}
		w.Write([]byte(`{"data": [
			{"base": {"id": 7, "caption": "Gottesdienst", "startDate": "2024-12-01T09:00:00Z", "calendar": {"id": 2}},
			 "calculated": {"startDate": "2024-12-08T09:00:00Z"}},
			{"base": {"id": 8, "caption": "Krippenspiel", "startDate": "2024-12-24", "calendar": {"id": 2}},
			 "calculated": {}}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "t")
	from := time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)
	appointments, err := c.CalendarAppointments(context.Background(), []int{2, 3}, from, from.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("appointments: %v", err)
	}

	if len(appointments) != 2 {
		t.Fatalf("got %d appointments, want 2", len(appointments))
	}
	if appointments[0].StartDate != "2024-12-08T09:00:00Z" {
		t.Errorf("recurring occurrence start = %q, want the calculated date", appointments[0].StartDate)
	}
	if appointments[1].StartDate != "2024-12-24" {
		t.Errorf("series start = %q, want the base date when no calculated one exists", appointments[1].StartDate)
	}
}

func TestEventByAppointmentMatchesOccurrence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [
			{"id": 40, "name": "Anderes", "appointmentId": 6, "startDate": "2024-12-01T09:00:00Z"},
			{"id": 41, "name": "Gottesdienst", "appointmentId": 7, "startDate": "2024-12-01T09:00:00Z",
			 "eventServices": [
				{"serviceId": 1, "personId": 12, "person": {"domainAttributes": {"lastName": "Schmidt"}}},
				{"serviceId": 2, "name": "Orgelvertretung"}
			]}
		]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "t")
	event, err := c.EventByAppointment(context.Background(), 7, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("event: %v", err)
	}
	if event == nil || event.ID != 41 {
		t.Fatalf("event = %+v, want ID 41", event)
	}
	if len(event.Services) != 2 {
		t.Fatalf("got %d services, want 2", len(event.Services))
	}
	if event.Services[0].Person == nil || event.Services[0].Person.LastName != "Schmidt" {
		t.Errorf("first assignment = %+v, want nested person detail", event.Services[0])
	}
	if event.Services[1].Name != "Orgelvertretung" {
		t.Errorf("second assignment = %+v, want free-text name", event.Services[1])
	}

	missing, err := c.EventByAppointment(context.Background(), 99, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))
	if err != nil || missing != nil {
		t.Errorf("unmatched appointment = (%+v, %v), want (nil, nil)", missing, err)
	}
}

func TestPersonNotFoundIsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL, "t")
	p, err := c.Person(context.Background(), 12)
	if err != nil {
		t.Fatalf("person: %v", err)
	}
	if p != nil {
		t.Errorf("person = %+v, want nil for invisible person", p)
	}
}

func TestPersonsFollowsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.Write([]byte(`{"data": [` + personPage(personsPageSize) + `]}`))
			return
		}
		w.Write([]byte(`{"data": [{"id": 999, "firstName": "Letzte", "lastName": "Person"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "t")
	persons, err := c.Persons(context.Background())
	if err != nil {
		t.Fatalf("persons: %v", err)
	}
	if len(persons) != personsPageSize+1 {
		t.Errorf("got %d persons, want %d across two pages", len(persons), personsPageSize+1)
	}
}

func personPage(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += `{"id": ` + strconv.Itoa(i+1) + `}`
	}
	return out
}

func TestSexNameCachesMasterdata(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Write([]byte(`{"data": {"sexes": [{"id": 1, "name": "sex.male"}, {"id": 2, "name": "sex.female"}]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "t")
	for i := 0; i < 3; i++ {
		name, err := c.SexName(context.Background(), 2)
		if err != nil {
			t.Fatalf("sex name: %v", err)
		}
		if name != "sex.female" {
			t.Errorf("name = %q, want sex.female", name)
		}
	}
	if calls != 1 {
		t.Errorf("masterdata fetched %d times, want once", calls)
	}

	name, err := c.SexName(context.Background(), 42)
	if err != nil || name != "" {
		t.Errorf("unknown sex = (%q, %v), want empty name", name, err)
	}
}
