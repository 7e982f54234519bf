package plan

import (
	"context"
	"sort"
	"time"
)

// PrimaryLocation resolves the names of the resources booked for an
// appointment occurrence on the given date. Negative IDs in resourceIDs are
// "no selection" sentinels and are filtered out before querying. The result
// is the deduplicated, sorted set of booked resource names; callers pick the
// first entry for single-value display.
func (r *Resolver) PrimaryLocation(ctx context.Context, appointmentID int, date time.Time, resourceIDs []int) ([]string, error) {
	queried := make([]int, 0, len(resourceIDs))
	for _, id := range resourceIDs {
		if id >= 0 {
			queried = append(queried, id)
		}
	}
	if len(queried) == 0 {
		return nil, nil
	}

	bookings, err := r.api.Bookings(ctx, queried, date, appointmentID)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var names []string
	for _, booking := range bookings {
		if !seen[booking.ResourceName] {
			seen[booking.ResourceName] = true
			names = append(names, booking.ResourceName)
		}
	}
	sort.Strings(names)
	return names, nil
}
