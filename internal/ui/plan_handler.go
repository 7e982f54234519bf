package ui

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gemeindetools/planweb/internal/auth"
	"github.com/gemeindetools/planweb/internal/churchtools"
	"github.com/gemeindetools/planweb/internal/export"
	httperrors "github.com/gemeindetools/planweb/internal/http/errors"
	"github.com/gemeindetools/planweb/internal/plan"
)

// Submit button labels double as the action dispatch values.
const (
	actionAdjust = "Auswahl anpassen"
	actionDocx   = "DOCx Document Download"
	actionXlsx   = "Excel Download"
)

const (
	docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// optionView is one entry of a multi-select on the plan form.
type optionView struct {
	ID       int
	Name     string
	Selected bool
}

// planSelection carries the ID sets one report run is scoped to.
type planSelection struct {
	Calendars       []int
	Resources       []int
	ProgramServices []int
	MusicServices   []int
}

type planEntryView struct {
	Time           string
	Name           string
	SpecialService string
	Predigt        string
	Taufe          string
	Abendmahl      string
	Musik          string
}

type planCellView struct {
	Entries []planEntryView
}

type planRowView struct {
	ShortDay       string
	SpecialDayName string
	Cells          []planCellView
}

type planTableView struct {
	Locations []string
	Rows      []planRowView
}

// PlanMonthsForm shows the report form pre-filled with the instance
// defaults and a timeframe starting at the next full month.
func (h *Handler) PlanMonthsForm(w http.ResponseWriter, r *http.Request) {
	clients, ok := auth.ClientsFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login_churchtools", http.StatusFound)
		return
	}

	from := firstOfNextMonth(time.Now().In(h.cfg.Location()))
	to := from.AddDate(0, h.cfg.Report.TimeframeMonths, 0).AddDate(0, 0, -1)

	selection := planSelection{
		Calendars:       h.cfg.Report.SelectedCalendars,
		Resources:       h.cfg.Report.SelectedResources,
		ProgramServices: h.cfg.Report.SelectedProgramServices,
		MusicServices:   h.cfg.Report.SelectedMusicServices,
	}

	data, err := h.planFormData(r.Context(), clients.CT, from, to, selection)
	if err != nil {
		httperrors.InternalError(w, r, err, "failed to load plan form options")
		return
	}

	h.render(w, r, "download_plan_months.html", h.withFlash(r, data))
}

// PlanMonths runs the report over the submitted selection and either
// renders the preview table or streams one of the two document formats.
func (h *Handler) PlanMonths(w http.ResponseWriter, r *http.Request) {
	clients, ok := auth.ClientsFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login_churchtools", http.StatusFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		httperrors.BadRequestError(w, r, err, "invalid form")
		return
	}

	loc := h.cfg.Location()
	from, err := parseFormDate(r.PostFormValue("from_date"), loc)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid from date")
		return
	}
	to, err := parseFormDate(r.PostFormValue("to_date"), loc)
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid to date")
		return
	}

	selection := planSelection{
		Calendars:       parseIDs(r.PostForm["selected_calendars"]),
		Resources:       parseIDs(r.PostForm["selected_resources"]),
		ProgramServices: parseIDs(r.PostForm["selected_program_services"]),
		MusicServices:   parseIDs(r.PostForm["selected_music_services"]),
	}

	aggregator := plan.NewAggregator(clients.CT, h.cfg.Report, loc)
	table, err := aggregator.Build(r.Context(), plan.Params{
		From:              from,
		To:                to,
		CalendarIDs:       selection.Calendars,
		ResourceIDs:       selection.Resources,
		ProgramServiceIDs: selection.ProgramServices,
		MusicServiceIDs:   selection.MusicServices,
	})
	if errors.Is(err, churchtools.ErrUnauthorized) {
		http.Redirect(w, r, "/login_churchtools", http.StatusFound)
		return
	}
	if err != nil {
		httperrors.InternalError(w, r, err, "failed to build plan")
		return
	}

	switch r.PostFormValue("action") {
	case actionDocx:
		w.Header().Set("Content-Type", docxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.PlanFilename(from, "docx")+`"`)
		if err := export.WritePlanDocx(w, table, from, h.cfg.Report.DocxFooterTexts); err != nil {
			httperrors.LogError(r, "failed to write docx plan", err)
		}
	case actionXlsx:
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+export.PlanFilename(from, "xlsx")+`"`)
		if err := export.WritePlanXlsx(w, table, from); err != nil {
			httperrors.LogError(r, "failed to write xlsx plan", err)
		}
	default:
		data, err := h.planFormData(r.Context(), clients.CT, from, to, selection)
		if err != nil {
			httperrors.InternalError(w, r, err, "failed to load plan form options")
			return
		}
		data["Table"] = newPlanTableView(table)
		data["From"] = from
		h.render(w, r, "download_plan_months.html", h.withFlash(r, data))
	}
}

// planFormData loads the selectable calendars, resources and services from
// the instance and marks the given selection.
func (h *Handler) planFormData(ctx context.Context, ct *churchtools.Client, from, to time.Time, selection planSelection) (map[string]any, error) {
	calendars, err := ct.Calendars(ctx)
	if err != nil {
		return nil, err
	}
	calendarOptions := make([]optionView, 0, len(calendars))
	for _, c := range calendars {
		calendarOptions = append(calendarOptions, optionView{
			ID:       c.ID,
			Name:     c.Name,
			Selected: containsID(selection.Calendars, c.ID),
		})
	}

	resources, err := ct.ResourceMasterdata(ctx)
	if err != nil {
		return nil, err
	}
	resourceOptions := []optionView{}
	for _, res := range resources.Resources {
		if !containsID(h.cfg.Report.AvailableResourceTypeIDs, res.ResourceTypeID) {
			continue
		}
		resourceOptions = append(resourceOptions, optionView{
			ID:       res.ID,
			Name:     res.Name,
			Selected: containsID(selection.Resources, res.ID),
		})
	}
	// Pseudo-resource: keep occurrences that have no booked location at all.
	resourceOptions = append(resourceOptions, optionView{
		ID:       -1,
		Name:     plan.NoLocationSelected,
		Selected: containsID(selection.Resources, -1),
	})

	masterdata, err := ct.EventMasterdata(ctx)
	if err != nil {
		return nil, err
	}
	programOptions := []optionView{}
	musicOptions := []optionView{}
	for _, service := range masterdata.Services {
		switch {
		case service.ServiceGroupID == h.cfg.Report.ProgramServiceGroupID:
			programOptions = append(programOptions, optionView{
				ID:       service.ID,
				Name:     service.Name,
				Selected: containsID(selection.ProgramServices, service.ID),
			})
		case containsID(h.cfg.Report.MusicServiceGroupIDs, service.ServiceGroupID):
			musicOptions = append(musicOptions, optionView{
				ID:       service.ID,
				Name:     service.Name,
				Selected: containsID(selection.MusicServices, service.ID),
			})
		}
	}

	return map[string]any{
		"Title":           "Monatsplan",
		"ShowNav":         true,
		"FromDate":        from.Format("2006-01-02"),
		"ToDate":          to.Format("2006-01-02"),
		"Calendars":       calendarOptions,
		"Resources":       resourceOptions,
		"ProgramServices": programOptions,
		"MusicServices":   musicOptions,
		"ActionAdjust":    actionAdjust,
		"ActionDocx":      actionDocx,
		"ActionXlsx":      actionXlsx,
	}, nil
}

func newPlanTableView(table *plan.Table) planTableView {
	view := planTableView{Locations: table.Locations}
	for _, row := range table.Rows {
		rowView := planRowView{
			ShortDay:       row.ShortDay,
			SpecialDayName: row.SpecialDayName,
		}
		for _, location := range table.Locations {
			cell := row.Cells[location]
			cellView := planCellView{}
			if cell != nil {
				for i := 0; i < cell.Len(); i++ {
					cellView.Entries = append(cellView.Entries, planEntryView{
						Time:           cell.ShortTime[i],
						Name:           cell.ShortName[i],
						SpecialService: cell.SpecialService[i],
						Predigt:        cell.Predigt[i],
						Taufe:          cell.Taufe[i],
						Abendmahl:      cell.Abendmahl[i],
						Musik:          cell.Musik[i],
					})
				}
			}
			rowView.Cells = append(rowView.Cells, cellView)
		}
		view.Rows = append(view.Rows, rowView)
	}
	return view
}

func firstOfNextMonth(now time.Time) time.Time {
	year, month, _ := now.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, now.Location()).AddDate(0, 1, 0)
}
