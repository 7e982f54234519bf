package plan

import (
	"context"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gemeindetools/planweb/internal/churchtools"
)

// Sentinels rendered when a role is unfilled or a person record is missing.
// The report must always render; resolution gaps never become errors.
const (
	UnknownName        = "Noch unbekannt"
	UnknownLastname    = "?"
	NoLocationSelected = "Ortsangabe nicht ausgewählt"
)

// Resolver answers the per-occurrence display questions of the aggregation
// pass. All methods are read-only; API errors propagate, missing data
// degrades to sentinels.
type Resolver struct {
	api API
	log *logrus.Entry
}

// NewResolver returns a resolver on top of the given API.
func NewResolver(api API) *Resolver {
	return &Resolver{api: api, log: logrus.WithField("component", "plan")}
}

// TitledNames resolves the persons assigned to the given service roles on an
// event and formats them as "<prefix> <lastname>", joined with ", ".
// Assignments without a linked person render as the unknown-name sentinel.
// Enumeration order is preserved, not sorted.
func (r *Resolver) TitledNames(ctx context.Context, event *churchtools.Event, serviceIDs, titleGroupIDs []int) (string, error) {
	var assignments []churchtools.ServiceAssignment
	for _, serviceID := range serviceIDs {
		rows, err := r.api.ServiceAssignments(ctx, event.ID, serviceID)
		if err != nil {
			return "", err
		}
		assignments = append(assignments, rows...)
	}

	names := make([]string, 0, len(assignments))
	for _, assignment := range assignments {
		if assignment.PersonID == 0 {
			names = append(names, UnknownName)
			continue
		}

		prefix, err := r.TitlePrefix(ctx, assignment.PersonID, titleGroupIDs)
		if err != nil {
			return "", err
		}

		if assignment.Person == nil {
			r.log.WithFields(logrus.Fields{
				"event":  event.ID,
				"person": assignment.PersonID,
			}).Warn("assignment has person id but no person detail")
			names = append(names, UnknownName)
			continue
		}
		names = append(names, strings.TrimLeft(prefix+" "+assignment.Person.LastName, " "))
	}

	return strings.Join(names, ", "), nil
}

// TitlePrefix returns the name of the first group in orderedGroupIDs the
// person belongs to, or "" if none. For persons with the female sex
// attribute the first word of the group name gets an "in" suffix, a
// heuristic for the common German feminine forms.
func (r *Resolver) TitlePrefix(ctx context.Context, personID int, orderedGroupIDs []int) (string, error) {
	groupName := ""
	for _, groupID := range orderedGroupIDs {
		members, err := r.api.GroupMembers(ctx, groupID)
		if err != nil {
			return "", err
		}
		for _, member := range members {
			if member.PersonID == personID {
				group, err := r.api.Group(ctx, groupID)
				if err != nil {
					return "", err
				}
				groupName = group.Name
				break
			}
		}
		if groupName != "" {
			break
		}
	}
	if groupName == "" {
		return "", nil
	}

	person, err := r.api.Person(ctx, personID)
	if err != nil {
		return "", err
	}
	if person == nil {
		r.log.WithField("person", personID).Warn("person not resolvable, skipping gendered title")
		return groupName, nil
	}

	sexName, err := r.api.SexName(ctx, person.SexID)
	if err != nil {
		return "", err
	}
	if sexName == "sex.female" {
		parts := strings.Split(groupName, " ")
		parts[0] += "in"
		groupName = strings.Join(parts, " ")
	}
	return groupName, nil
}

// SpecialServiceSuffix resolves the names of the groups whose leaders are
// assigned to the given music service roles on an event, formatted as
// "mit X und Y". Returns "" when no group matches. Leadership is determined
// by the group-type role IDs, which differ per group type.
func (r *Resolver) SpecialServiceSuffix(ctx context.Context, event *churchtools.Event, musicServiceIDs, leadRoleIDs []int) (string, error) {
	masterdata, err := r.api.EventMasterdata(ctx)
	if err != nil {
		return "", err
	}

	musicServiceSet := intSet(musicServiceIDs)
	var consideredGroupIDs []int
	seen := map[int]bool{}
	for _, service := range masterdata.Services {
		if !musicServiceSet[service.ID] {
			continue
		}
		for _, groupID := range service.GroupIDInts() {
			if !seen[groupID] {
				seen[groupID] = true
				consideredGroupIDs = append(consideredGroupIDs, groupID)
			}
		}
	}

	var groupNames []string
	for _, serviceID := range musicServiceIDs {
		assignments, err := r.api.ServiceAssignments(ctx, event.ID, serviceID)
		if err != nil {
			return "", err
		}
		for _, assignment := range assignments {
			if assignment.PersonID == 0 {
				continue
			}
			memberships, err := r.api.GroupMembersFiltered(ctx, consideredGroupIDs, leadRoleIDs, []int{assignment.PersonID})
			if err != nil {
				return "", err
			}
			for _, membership := range memberships {
				group, err := r.api.Group(ctx, membership.GroupID)
				if err != nil {
					return "", err
				}
				groupNames = append(groupNames, group.Name)
			}
		}
	}

	if len(groupNames) == 0 {
		return "", nil
	}
	return "mit " + strings.Join(groupNames, " und "), nil
}

// LastnamesOrUnknown resolves the assignments of the given service roles on
// an event to lastnames, free-text names or the "?" sentinel, deduplicated
// as a set and joined with ", ". The set step drops repeat assignments of
// the same person across roles; the result is sorted for determinism.
func (r *Resolver) LastnamesOrUnknown(ctx context.Context, eventID int, serviceIDs []int) (string, error) {
	names := map[string]bool{}
	for _, serviceID := range serviceIDs {
		assignments, err := r.api.ServiceAssignments(ctx, eventID, serviceID)
		if err != nil {
			return "", err
		}
		for _, assignment := range assignments {
			switch {
			case assignment.PersonID != 0 && assignment.Person != nil:
				names[assignment.Person.LastName] = true
			case assignment.PersonID != 0:
				r.log.WithFields(logrus.Fields{
					"event":  eventID,
					"person": assignment.PersonID,
				}).Warn("assignment has person id but no person detail")
				names[UnknownLastname] = true
			case assignment.Name != "":
				names[assignment.Name] = true
			default:
				names[UnknownLastname] = true
			}
		}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)
	return strings.Join(sorted, ", "), nil
}

// HasAssignment reports whether any of the given service roles is filled on
// the event. Used for the communion marker.
func (r *Resolver) HasAssignment(ctx context.Context, eventID int, serviceIDs []int) (bool, error) {
	for _, serviceID := range serviceIDs {
		assignments, err := r.api.ServiceAssignments(ctx, eventID, serviceID)
		if err != nil {
			return false, err
		}
		if len(assignments) > 0 {
			return true, nil
		}
	}
	return false, nil
}

func intSet(ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
