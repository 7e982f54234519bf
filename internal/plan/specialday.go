package plan

import (
	"context"
	"time"
)

// SpecialDayName returns the caption of the first appointment on the given
// day in the dedicated special-occasion calendars, or "" if there is none.
// Only the first chronological match is considered; multiple same-day
// entries are not merged.
func (r *Resolver) SpecialDayName(ctx context.Context, date time.Time, specialCalendarIDs []int) (string, error) {
	if len(specialCalendarIDs) == 0 {
		return "", nil
	}

	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := midnight.AddDate(0, 0, 1).Add(-time.Second)

	appointments, err := r.api.CalendarAppointments(ctx, specialCalendarIDs, midnight, endOfDay)
	if err != nil {
		return "", err
	}
	if len(appointments) == 0 {
		return "", nil
	}
	return appointments[0].Caption, nil
}
