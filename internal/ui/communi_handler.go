package ui

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gemeindetools/planweb/internal/auth"
	"github.com/gemeindetools/planweb/internal/german"
	httperrors "github.com/gemeindetools/planweb/internal/http/errors"
	"github.com/gemeindetools/planweb/internal/plan"
)

// Window of the Communi event listing around today.
const (
	communiDaysPast   = 7
	communiDaysFuture = 25
)

type communiEventView struct {
	start      time.Time
	Date       string
	Caption    string
	GroupID    int
	GroupTitle string
}

// CommuniEvents lists the appointments around today together with the
// Communi group that matches each one, so an admin can see which events
// already have a group and jump to it.
func (h *Handler) CommuniEvents(w http.ResponseWriter, r *http.Request) {
	clients, ok := auth.ClientsFromContext(r.Context())
	if !ok || clients.Communi == nil {
		http.Redirect(w, r, "/login_communi", http.StatusFound)
		return
	}

	loc := h.cfg.Location()
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	from := today.AddDate(0, 0, -communiDaysPast)
	to := today.AddDate(0, 0, communiDaysFuture)

	appointments, err := clients.CT.CalendarAppointments(r.Context(), h.cfg.Report.SelectedCalendars, from, to)
	if err != nil {
		httperrors.InternalError(w, r, err, "failed to load appointments")
		return
	}

	groups, err := clients.Communi.Groups(r.Context())
	if err != nil {
		httperrors.InternalError(w, r, err, "failed to load communi groups")
		return
	}

	events := make([]communiEventView, 0, len(appointments))
	for _, appointment := range appointments {
		start, err := plan.ParseStartDate(appointment.StartDate, loc)
		if err != nil {
			httperrors.LogError(r, "skipping appointment with unparseable start date", err)
			continue
		}

		view := communiEventView{
			start:   start,
			Date:    german.ShortDay(start) + start.Format(" 15:04"),
			Caption: appointment.Caption,
		}
		for _, group := range groups {
			if strings.Contains(strings.ToLower(group.Title), strings.ToLower(appointment.Caption)) {
				view.GroupID = group.ID
				view.GroupTitle = group.Title
				break
			}
		}
		events = append(events, view)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].start.Before(events[j].start) })

	data := map[string]any{
		"Title":   "Communi Gruppen",
		"ShowNav": true,
		"Events":  events,
		"Server":  clients.Communi.Server(),
	}
	h.render(w, r, "communi_events.html", h.withFlash(r, data))
}
