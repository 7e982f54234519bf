package plan

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gemeindetools/planweb/internal/config"
	"github.com/gemeindetools/planweb/internal/german"
)

// Params are the user-selected inputs of one report run.
type Params struct {
	From time.Time
	To   time.Time

	CalendarIDs       []int
	ResourceIDs       []int
	ProgramServiceIDs []int
	MusicServiceIDs   []int
}

// Cell holds the per-occurrence values of one (day, location) pair, one
// slot per occurrence in chronological order. All slices always have equal
// length; Append is the only way entries are added.
type Cell struct {
	ShortTime        []string
	ShortName        []string
	Predigt          []string
	SpecialService   []string
	Taufe            []string
	Abendmahl        []string
	Musik            []string
	PredigtLastname  []string
	OrganistLastname []string
}

// Len returns the number of occurrences in the cell.
func (c *Cell) Len() int { return len(c.ShortTime) }

func (c *Cell) append(o occurrence) {
	c.ShortTime = append(c.ShortTime, o.shortTime)
	c.ShortName = append(c.ShortName, o.shortName)
	c.Predigt = append(c.Predigt, o.predigt)
	c.SpecialService = append(c.SpecialService, o.specialService)
	c.Taufe = append(c.Taufe, o.taufe)
	c.Abendmahl = append(c.Abendmahl, o.abendmahl)
	c.Musik = append(c.Musik, o.musik)
	c.PredigtLastname = append(c.PredigtLastname, o.predigtLastname)
	c.OrganistLastname = append(c.OrganistLastname, o.organistLastname)
}

// Row is one day of the plan with one cell per location that has at least
// one occurrence on that day.
type Row struct {
	Day            time.Time
	ShortDay       string
	SpecialDayName string
	Cells          map[string]*Cell
}

// Table is the final plan: rows ordered by day, locations sorted by name.
type Table struct {
	Locations []string
	Rows      []*Row
}

// occurrence is one enriched calendar appointment before the reshape.
type occurrence struct {
	start            time.Time
	location         string
	shortDay         string
	specialDayName   string
	shortTime        string
	shortName        string
	predigt          string
	specialService   string
	taufe            string
	abendmahl        string
	musik            string
	predigtLastname  string
	organistLastname string
}

// Aggregator runs the report pipeline: fetch, normalize, enrich, rename,
// filter, reshape, merge. It holds no state between runs.
type Aggregator struct {
	api      API
	resolver *Resolver
	defaults config.ReportDefaults
	loc      *time.Location
	log      *logrus.Entry
}

// NewAggregator returns an aggregator over the given API using the
// instance defaults and report timezone.
func NewAggregator(api API, defaults config.ReportDefaults, loc *time.Location) *Aggregator {
	return &Aggregator{
		api:      api,
		resolver: NewResolver(api),
		defaults: defaults,
		loc:      loc,
		log:      logrus.WithField("component", "plan"),
	}
}

// Resolver returns the resolver the aggregator enriches occurrences with.
func (a *Aggregator) Resolver() *Resolver { return a.resolver }

// ParseStartDate normalizes an upstream start date literal. Date-only
// values (10 characters) are local midnight in loc; full timestamps carry a
// UTC offset and are converted into loc. Both forms occur in the wild, so
// neither may be assumed.
func ParseStartDate(raw string, loc *time.Location) (time.Time, error) {
	if len(raw) == 10 {
		t, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse date-only start %q: %w", raw, err)
		}
		return t, nil
	}
	t, err := time.Parse("2006-01-02T15:04:05Z", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse start timestamp %q: %w", raw, err)
	}
	return t.In(loc), nil
}

// Role order of the per-role lastname columns. Fixed so runs are
// reproducible regardless of config map iteration.
var lastnameRoles = []string{"predigt", "organist", "musikteam", "taufe"}

// Build fetches all appointments in the requested range and runs the full
// pipeline. Occurrences whose upstream data is malformed are skipped with a
// warning; transport and auth failures abort the run.
func (a *Aggregator) Build(ctx context.Context, params Params) (*Table, error) {
	appointments, err := a.api.CalendarAppointments(ctx, params.CalendarIDs, params.From, params.To)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	a.log.WithField("count", len(appointments)).Debug("fetched calendar appointments")

	occurrences := make([]occurrence, 0, len(appointments))
	for _, item := range appointments {
		o, err := a.enrich(ctx, item.ID, item.Caption, item.Subtitle, item.StartDate, params)
		if err != nil {
			return nil, err
		}
		if o != nil {
			occurrences = append(occurrences, *o)
		}
	}

	sort.SliceStable(occurrences, func(i, j int) bool {
		return occurrences[i].start.Before(occurrences[j].start)
	})

	return reshape(occurrences), nil
}

func (a *Aggregator) enrich(ctx context.Context, appointmentID int, caption, subtitle, rawStart string, params Params) (*occurrence, error) {
	log := a.log.WithField("appointment", appointmentID)

	start, err := ParseStartDate(rawStart, a.loc)
	if err != nil {
		log.WithError(err).Warn("skipping appointment with unparseable start date")
		return nil, nil
	}

	event, err := a.api.EventByAppointment(ctx, appointmentID, start)
	if err != nil {
		return nil, fmt.Errorf("resolve event for appointment %d: %w", appointmentID, err)
	}
	if event == nil {
		log.WithField("date", start.Format("2006-01-02")).Warn("skipping appointment without event")
		return nil, nil
	}

	o := &occurrence{
		start:     start,
		shortDay:  german.ShortDay(start),
		shortName: Classify(caption + subtitle),
		shortTime: shortTime(start),
	}

	o.specialDayName, err = a.resolver.SpecialDayName(ctx, start, a.defaults.SpecialDayCalendarIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve special day name: %w", err)
	}

	o.predigt, err = a.resolver.TitledNames(ctx, event, params.ProgramServiceIDs, a.defaults.TitlePrefixGroups)
	if err != nil {
		return nil, fmt.Errorf("resolve titled names: %w", err)
	}

	o.specialService, err = a.resolver.SpecialServiceSuffix(ctx, event, params.MusicServiceIDs, a.defaults.GroupTypeRoleIDLeads)
	if err != nil {
		return nil, fmt.Errorf("resolve special service suffix: %w", err)
	}

	locations, err := a.resolver.PrimaryLocation(ctx, appointmentID, start, params.ResourceIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve primary location: %w", err)
	}
	if len(locations) > 0 {
		o.location = locations[0]
	} else {
		o.location = NoLocationSelected
		if !containsInt(params.ResourceIDs, -1) {
			log.Debug("dropping occurrence at non-reportable location")
			return nil, nil
		}
	}
	for _, rename := range a.defaults.LocationRenames {
		if o.location == rename.From {
			o.location = rename.To
		}
	}

	lastnames := map[string]string{}
	for _, role := range lastnameRoles {
		lastnames[role], err = a.resolver.LastnamesOrUnknown(ctx, event.ID, a.defaults.RoleServiceIDs[role])
		if err != nil {
			return nil, fmt.Errorf("resolve %s lastnames: %w", role, err)
		}
	}
	o.predigtLastname = lastnames["predigt"]
	o.organistLastname = lastnames["organist"]

	musik := lastnames["musikteam"]
	if o.specialService != "" {
		short := ShortenSpecialService(o.specialService)
		if musik != "" && short != "" {
			musik += ", " + short
		} else if short != "" {
			musik = short
		}
	}
	o.musik = musik

	if lastnames["taufe"] != "" {
		o.taufe = "Taufe " + lastnames["taufe"]
	}

	communion, err := a.resolver.HasAssignment(ctx, event.ID, a.defaults.CommunionServiceIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve communion marker: %w", err)
	}
	if communion {
		o.abendmahl = "Abendmahl"
	}

	return o, nil
}

// reshape pivots chronologically sorted occurrences into one row per day
// with one cell per location, then merges rows sharing a day key. The
// append order preserves the chronological sort, so each cell's lists are
// ordered by time of day.
func reshape(occurrences []occurrence) *Table {
	table := &Table{}

	rowIndex := map[string]*Row{}
	locationSeen := map[string]bool{}

	for _, o := range occurrences {
		dayKey := o.start.Format("2006-01-02")

		row, ok := rowIndex[dayKey]
		if !ok {
			row = &Row{
				Day:            time.Date(o.start.Year(), o.start.Month(), o.start.Day(), 0, 0, 0, 0, o.start.Location()),
				ShortDay:       o.shortDay,
				SpecialDayName: o.specialDayName,
				Cells:          map[string]*Cell{},
			}
			rowIndex[dayKey] = row
			table.Rows = append(table.Rows, row)
		}

		cell, ok := row.Cells[o.location]
		if !ok {
			cell = &Cell{}
			row.Cells[o.location] = cell
		}
		cell.append(o)

		if !locationSeen[o.location] {
			locationSeen[o.location] = true
			table.Locations = append(table.Locations, o.location)
		}
	}

	sort.Strings(table.Locations)
	return table
}

func shortTime(t time.Time) string {
	if t.Hour() == 0 {
		return "Ganztag"
	}
	return t.Format("15.04")
}

func containsInt(ids []int, want int) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
