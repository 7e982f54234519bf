package plan

import (
	"context"
	"time"

	"github.com/gemeindetools/planweb/internal/churchtools"
)

// fakeAPI serves canned ChurchTools data to the resolver and aggregator
// tests. Zero-value fields behave like an empty upstream.
type fakeAPI struct {
	appointments map[int][]churchtools.Appointment // by calendar ID
	events       map[int]*churchtools.Event        // by appointment ID
	assignments  map[int]map[int][]churchtools.ServiceAssignment // by event ID, service ID
	bookings     map[int][]churchtools.Booking // by appointment ID
	groupMembers map[int][]churchtools.GroupMember
	groups       map[int]churchtools.Group
	persons      map[int]churchtools.Person
	sexes        map[int]string
	masterdata   churchtools.EventMasterdata
}

func (f *fakeAPI) CalendarAppointments(_ context.Context, calendarIDs []int, from, to time.Time) ([]churchtools.Appointment, error) {
	var out []churchtools.Appointment
	for _, calendarID := range calendarIDs {
		for _, a := range f.appointments[calendarID] {
			start, err := ParseStartDate(a.StartDate, from.Location())
			if err != nil {
				continue
			}
			if !start.Before(from) && !start.After(to) {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (f *fakeAPI) EventByAppointment(_ context.Context, appointmentID int, _ time.Time) (*churchtools.Event, error) {
	return f.events[appointmentID], nil
}

func (f *fakeAPI) ServiceAssignments(_ context.Context, eventID, serviceID int) ([]churchtools.ServiceAssignment, error) {
	return f.assignments[eventID][serviceID], nil
}

func (f *fakeAPI) Bookings(_ context.Context, resourceIDs []int, date time.Time, appointmentID int) ([]churchtools.Booking, error) {
	allowed := map[int]bool{}
	for _, id := range resourceIDs {
		allowed[id] = true
	}
	var out []churchtools.Booking
	for _, b := range f.bookings[appointmentID] {
		if allowed[b.ResourceID] {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeAPI) GroupMembers(_ context.Context, groupID int) ([]churchtools.GroupMember, error) {
	return f.groupMembers[groupID], nil
}

func (f *fakeAPI) GroupMembersFiltered(_ context.Context, groupIDs, roleIDs, personIDs []int) ([]churchtools.GroupMember, error) {
	groupSet := map[int]bool{}
	for _, id := range groupIDs {
		groupSet[id] = true
	}
	roleSet := map[int]bool{}
	for _, id := range roleIDs {
		roleSet[id] = true
	}
	personSet := map[int]bool{}
	for _, id := range personIDs {
		personSet[id] = true
	}

	var out []churchtools.GroupMember
	for groupID, members := range f.groupMembers {
		if !groupSet[groupID] {
			continue
		}
		for _, m := range members {
			if roleSet[m.RoleID] && personSet[m.PersonID] {
				member := m
				member.GroupID = groupID
				out = append(out, member)
			}
		}
	}
	return out, nil
}

func (f *fakeAPI) Group(_ context.Context, groupID int) (*churchtools.Group, error) {
	g, ok := f.groups[groupID]
	if !ok {
		return &churchtools.Group{ID: groupID}, nil
	}
	return &g, nil
}

func (f *fakeAPI) Person(_ context.Context, personID int) (*churchtools.Person, error) {
	p, ok := f.persons[personID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeAPI) SexName(_ context.Context, sexID int) (string, error) {
	return f.sexes[sexID], nil
}

func (f *fakeAPI) EventMasterdata(_ context.Context) (*churchtools.EventMasterdata, error) {
	return &f.masterdata, nil
}
