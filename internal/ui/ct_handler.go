package ui

import (
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gemeindetools/planweb/internal/auth"
	"github.com/gemeindetools/planweb/internal/export"
	"github.com/gemeindetools/planweb/internal/german"
	httperrors "github.com/gemeindetools/planweb/internal/http/errors"
	"github.com/gemeindetools/planweb/internal/plan"
)

// Defaults of the embeddable appointment listing.
const (
	defaultAppointmentCalendar = 2
	defaultAppointmentDays     = 14
	defaultAppointmentService  = 1
)

type appointmentView struct {
	Time    string
	Caption string
	Names   string
}

type appointmentDayView struct {
	Label          string
	SpecialDayName string
	Appointments   []appointmentView
}

// CalendarAppointments lists the upcoming appointments of one or more
// calendars grouped by day. The page is designed to be embedded as an
// IFrame, so the chrome can be switched off with hide_menu.
func (h *Handler) CalendarAppointments(w http.ResponseWriter, r *http.Request) {
	clients, ok := auth.ClientsFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login_churchtools", http.StatusFound)
		return
	}

	q := r.URL.Query()
	calendarIDs := parseIDs(q["calendar_id"])
	if len(calendarIDs) == 0 {
		calendarIDs = []int{defaultAppointmentCalendar}
	}
	days := defaultAppointmentDays
	if parsed, err := strconv.Atoi(q.Get("days")); err == nil && parsed > 0 {
		days = parsed
	}
	serviceIDs := []int{defaultAppointmentService}
	if _, given := q["services"]; given {
		serviceIDs = parseIDs(q["services"])
	}
	withSpecialNames := q.Get("special_names") != ""
	hideMenu := q.Get("hide_menu") != ""

	loc := h.cfg.Location()
	now := time.Now().In(loc)
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	to := from.AddDate(0, 0, days)

	appointments, err := clients.CT.CalendarAppointments(r.Context(), calendarIDs, from, to)
	if err != nil {
		httperrors.InternalError(w, r, err, "failed to load appointments")
		return
	}

	resolver := plan.NewResolver(clients.CT)

	type entry struct {
		start time.Time
		view  appointmentView
	}
	entries := make([]entry, 0, len(appointments))
	for _, appointment := range appointments {
		start, err := plan.ParseStartDate(appointment.StartDate, loc)
		if err != nil {
			httperrors.LogError(r, "skipping appointment with unparseable start date", err)
			continue
		}

		names := ""
		if len(serviceIDs) > 0 {
			event, err := clients.CT.EventByAppointment(r.Context(), appointment.ID, start)
			if err != nil {
				httperrors.InternalError(w, r, err, "failed to load event")
				return
			}
			if event != nil {
				names, err = resolver.TitledNames(r.Context(), event, serviceIDs, h.cfg.Report.TitlePrefixGroups)
				if err != nil {
					httperrors.InternalError(w, r, err, "failed to resolve service names")
					return
				}
			}
		}

		entries = append(entries, entry{start: start, view: appointmentView{
			Time:    start.Format("15:04"),
			Caption: appointment.Caption,
			Names:   names,
		}})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].start.Before(entries[j].start) })

	var dayViews []appointmentDayView
	dayIndex := map[string]int{}
	for _, e := range entries {
		key := e.start.Format("2006-01-02")
		idx, seen := dayIndex[key]
		if !seen {
			day := appointmentDayView{Label: german.LongDay(e.start)}
			if withSpecialNames {
				name, err := resolver.SpecialDayName(r.Context(), e.start, h.cfg.Report.SpecialDayCalendarIDs)
				if err != nil {
					httperrors.InternalError(w, r, err, "failed to resolve special day name")
					return
				}
				day.SpecialDayName = name
			}
			dayViews = append(dayViews, day)
			idx = len(dayViews) - 1
			dayIndex[key] = idx
		}
		dayViews[idx].Appointments = append(dayViews[idx].Appointments, e.view)
	}

	data := map[string]any{
		"Title":   "Termine",
		"ShowNav": !hideMenu,
		"Days":    dayViews,
	}
	h.render(w, r, "ct_calendar_appointments.html", h.withFlash(r, data))
}

// Contacts lists all persons with their phone numbers and offers the list
// as a VCard download for phone system imports.
func (h *Handler) Contacts(w http.ResponseWriter, r *http.Request) {
	clients, ok := auth.ClientsFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login_churchtools", http.StatusFound)
		return
	}

	persons, err := clients.CT.Persons(r.Context())
	if err != nil {
		httperrors.InternalError(w, r, err, "failed to load persons")
		return
	}

	if r.URL.Query().Has("download") {
		w.Header().Set("Content-Type", "text/vcard; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="ct_contacts.vcf"`)
		if _, err := io.WriteString(w, export.ContactsVCF(persons)); err != nil {
			httperrors.LogError(r, "failed to write vcard export", err)
		}
		return
	}

	data := map[string]any{
		"Title":   "Kontakte",
		"ShowNav": true,
		"Persons": persons,
		"Count":   len(persons),
	}
	h.render(w, r, "ct_contacts.html", h.withFlash(r, data))
}
