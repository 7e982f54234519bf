package churchtools

import "strconv"

// Calendar is one calendar the instance exposes.
type Calendar struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Appointment is one occurrence of a (possibly recurring) calendar entry.
// The ID is stable per series; an occurrence is only unique together with
// its start date. StartDate is kept as the raw upstream literal because the
// API mixes date-only values ("2024-12-25") for all-day entries with full
// UTC timestamps ("2024-12-25T10:00:00Z").
type Appointment struct {
	ID         int
	Caption    string
	Subtitle   string
	StartDate  string
	CalendarID int
}

// Event is the instantiated occurrence tied to an appointment and date.
type Event struct {
	ID            int
	Name          string
	AppointmentID int
	StartDate     string
	CalendarID    int
	Services      []ServiceAssignment
}

// ServiceAssignment links an event and a service role to either a person
// (PersonID != 0, Person carries the nested detail), a free-text name, or
// nothing at all (role unfilled).
type ServiceAssignment struct {
	ServiceID int
	PersonID  int
	Name      string
	Person    *PersonDetail
}

// PersonDetail is the nested person record embedded in a service assignment.
type PersonDetail struct {
	LastName string
}

// Person is a full person record.
type Person struct {
	ID           int    `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	SexID        int    `json:"sexId"`
	PhonePrivate string `json:"phonePrivate"`
	PhoneWork    string `json:"phoneWork"`
	Mobile       string `json:"mobile"`
}

// Booking is a reservation of a physical resource for one appointment
// occurrence.
type Booking struct {
	ResourceID    int
	ResourceName  string
	AppointmentID int
	StartDate     string
}

// Group is a named group; membership in certain groups confers title
// prefixes or marks choir leadership.
type Group struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GroupMember is one person's membership in a group, with the role the
// membership carries (role ID semantics differ per group type).
type GroupMember struct {
	GroupID  int `json:"groupId"`
	PersonID int `json:"personId"`
	RoleID   int `json:"groupTypeRoleId"`
}

// Service is one service role from the event masterdata. GroupIDs is kept
// as upstream delivers it (strings); use GroupIDInts for the parsed form.
type Service struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	ServiceGroupID int      `json:"serviceGroupId"`
	GroupIDs       []string `json:"groupIds"`
}

// GroupIDInts returns the parseable group IDs of the service.
func (s Service) GroupIDInts() []int {
	ids := make([]int, 0, len(s.GroupIDs))
	for _, raw := range s.GroupIDs {
		if id, err := strconv.Atoi(raw); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// EventMasterdata is the service catalog of the instance.
type EventMasterdata struct {
	Services []Service `json:"services"`
}

// Resource is a bookable physical resource (room, building, site).
type Resource struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	ResourceTypeID int    `json:"resourceTypeId"`
}

// ResourceMasterdata is the resource catalog of the instance.
type ResourceMasterdata struct {
	Resources []Resource `json:"resources"`
}
