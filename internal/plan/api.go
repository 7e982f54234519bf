// Package plan builds the monthly schedule table: it pulls calendar
// appointments and their event, booking and service-assignment data from
// ChurchTools, resolves display values per occurrence, and reshapes the
// result into one row per day with one column group per location.
package plan

import (
	"context"
	"time"

	"github.com/gemeindetools/planweb/internal/churchtools"
)

// API is the read-only slice of the ChurchTools client the pipeline needs.
// *churchtools.Client satisfies it; tests provide fakes.
type API interface {
	CalendarAppointments(ctx context.Context, calendarIDs []int, from, to time.Time) ([]churchtools.Appointment, error)
	EventByAppointment(ctx context.Context, appointmentID int, date time.Time) (*churchtools.Event, error)
	ServiceAssignments(ctx context.Context, eventID, serviceID int) ([]churchtools.ServiceAssignment, error)
	Bookings(ctx context.Context, resourceIDs []int, date time.Time, appointmentID int) ([]churchtools.Booking, error)
	GroupMembers(ctx context.Context, groupID int) ([]churchtools.GroupMember, error)
	GroupMembersFiltered(ctx context.Context, groupIDs, roleIDs, personIDs []int) ([]churchtools.GroupMember, error)
	Group(ctx context.Context, groupID int) (*churchtools.Group, error)
	Person(ctx context.Context, personID int) (*churchtools.Person, error)
	SexName(ctx context.Context, sexID int) (string, error)
	EventMasterdata(ctx context.Context) (*churchtools.EventMasterdata, error)
}
