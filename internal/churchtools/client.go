package churchtools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gemeindetools/planweb/internal/metrics"
)

// ErrUnauthorized is returned when the upstream rejects the token or
// credentials. Handlers treat it as "session expired, log in again".
var ErrUnauthorized = errors.New("churchtools: unauthorized")

const (
	defaultTimeout  = 30 * time.Second
	personsPageSize = 100
)

// Client talks to one ChurchTools instance using a login token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *logrus.Entry

	mu    sync.Mutex
	sexes map[int]string
}

// New returns a client for the given instance domain (e.g.
// "https://example.church.tools") authenticating with a login token.
func New(domain, token string) *Client {
	return &Client{
		baseURL: normalizeDomain(domain),
		token:   token,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     logrus.WithField("component", "churchtools"),
	}
}

// Login authenticates with username/password and returns a token-bearing
// client. The flow mirrors the web login: a cookie session is established,
// then the permanent login token is fetched for subsequent requests.
func Login(ctx context.Context, domain, username, password string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL: normalizeDomain(domain),
		http:    &http.Client{Timeout: defaultTimeout, Jar: jar},
		log:     logrus.WithField("component", "churchtools"),
	}

	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ObserveUpstreamLatency(ctx, "churchtools.login", start)
	if err != nil {
		return nil, fmt.Errorf("login request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login: unexpected status %d", resp.StatusCode)
	}

	var loginResp struct {
		Data struct {
			PersonID int `json:"personId"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}

	var token string
	if err := c.get(ctx, "churchtools.logintoken", fmt.Sprintf("/api/persons/%d/logintoken", loginResp.Data.PersonID), nil, &token); err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errors.New("churchtools: login token missing in response")
	}

	c.token = token
	c.http = &http.Client{Timeout: defaultTimeout}
	return c, nil
}

// Token returns the login token the client authenticates with.
func (c *Client) Token() string { return c.token }

// Domain returns the normalized instance base URL.
func (c *Client) Domain() string { return c.baseURL }

// WhoAmI returns the person the token belongs to.
func (c *Client) WhoAmI(ctx context.Context) (*Person, error) {
	var p Person
	if err := c.get(ctx, "churchtools.whoami", "/api/whoami", nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Calendars lists all calendars visible to the token.
func (c *Client) Calendars(ctx context.Context) ([]Calendar, error) {
	var cals []Calendar
	if err := c.get(ctx, "churchtools.calendars", "/api/calendars", nil, &cals); err != nil {
		return nil, err
	}
	return cals, nil
}

type appointmentWire struct {
	Base struct {
		ID       int    `json:"id"`
		Caption  string `json:"caption"`
		Subtitle string `json:"subtitle"`
		StartDate string `json:"startDate"`
		Calendar struct {
			ID int `json:"id"`
		} `json:"calendar"`
	} `json:"base"`
	Calculated struct {
		StartDate string `json:"startDate"`
	} `json:"calculated"`
}

// CalendarAppointments lists appointment occurrences on the given calendars
// within [from, to]. Recurring entries are expanded by the upstream; each
// item carries the series attributes plus the calculated occurrence date.
func (c *Client) CalendarAppointments(ctx context.Context, calendarIDs []int, from, to time.Time) ([]Appointment, error) {
	q := url.Values{}
	for _, id := range calendarIDs {
		q.Add("calendar_ids[]", strconv.Itoa(id))
	}
	q.Set("from", from.Format("2006-01-02"))
	q.Set("to", to.Format("2006-01-02"))

	var wire []appointmentWire
	if err := c.get(ctx, "churchtools.calendar_appointments", "/api/calendars/appointments", q, &wire); err != nil {
		return nil, err
	}

	appointments := make([]Appointment, 0, len(wire))
	for _, item := range wire {
		start := item.Calculated.StartDate
		if start == "" {
			start = item.Base.StartDate
		}
		appointments = append(appointments, Appointment{
			ID:         item.Base.ID,
			Caption:    item.Base.Caption,
			Subtitle:   item.Base.Subtitle,
			StartDate:  start,
			CalendarID: item.Base.Calendar.ID,
		})
	}
	return appointments, nil
}

type eventWire struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	AppointmentID int    `json:"appointmentId"`
	StartDate     string `json:"startDate"`
	Calendar      struct {
		DomainIdentifier string `json:"domainIdentifier"`
	} `json:"calendar"`
	EventServices []serviceAssignmentWire `json:"eventServices"`
}

type serviceAssignmentWire struct {
	ServiceID int     `json:"serviceId"`
	PersonID  *int    `json:"personId"`
	Name      *string `json:"name"`
	Person    *struct {
		DomainAttributes struct {
			LastName string `json:"lastName"`
		} `json:"domainAttributes"`
	} `json:"person"`
}

func (w eventWire) toEvent() *Event {
	ev := &Event{
		ID:            w.ID,
		Name:          w.Name,
		AppointmentID: w.AppointmentID,
		StartDate:     w.StartDate,
	}
	if id, err := strconv.Atoi(w.Calendar.DomainIdentifier); err == nil {
		ev.CalendarID = id
	}
	for _, s := range w.EventServices {
		assignment := ServiceAssignment{ServiceID: s.ServiceID}
		if s.PersonID != nil {
			assignment.PersonID = *s.PersonID
		}
		if s.Name != nil {
			assignment.Name = *s.Name
		}
		if s.Person != nil {
			assignment.Person = &PersonDetail{LastName: s.Person.DomainAttributes.LastName}
		}
		ev.Services = append(ev.Services, assignment)
	}
	return ev
}

// EventByAppointment resolves the event instantiated for an appointment
// occurrence on the given date. Returns (nil, nil) when no event exists for
// the occurrence; appointment IDs alone are not unique, so the date is part
// of the lookup key.
func (c *Client) EventByAppointment(ctx context.Context, appointmentID int, date time.Time) (*Event, error) {
	q := url.Values{}
	q.Set("from", date.Format("2006-01-02"))
	q.Set("to", date.Format("2006-01-02"))
	q.Set("include", "eventServices")

	var wire []eventWire
	if err := c.get(ctx, "churchtools.events", "/api/events", q, &wire); err != nil {
		return nil, err
	}

	for _, ev := range wire {
		if ev.AppointmentID == appointmentID {
			return ev.toEvent(), nil
		}
	}
	return nil, nil
}

// ServiceAssignments returns the assignment rows of one service role on an
// event. Unfilled roles yield no rows.
func (c *Client) ServiceAssignments(ctx context.Context, eventID, serviceID int) ([]ServiceAssignment, error) {
	q := url.Values{}
	q.Set("include", "eventServices")

	var wire eventWire
	if err := c.get(ctx, "churchtools.event", fmt.Sprintf("/api/events/%d", eventID), q, &wire); err != nil {
		return nil, err
	}

	var rows []ServiceAssignment
	for _, assignment := range wire.toEvent().Services {
		if assignment.ServiceID == serviceID {
			rows = append(rows, assignment)
		}
	}
	return rows, nil
}

type bookingWire struct {
	Base struct {
		Resource struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"resource"`
		AppointmentID int    `json:"appointmentId"`
		StartDate     string `json:"startDate"`
	} `json:"base"`
}

// Bookings lists resource bookings for an appointment occurrence on the
// given day, restricted to the given resources.
func (c *Client) Bookings(ctx context.Context, resourceIDs []int, date time.Time, appointmentID int) ([]Booking, error) {
	q := url.Values{}
	for _, id := range resourceIDs {
		q.Add("resource_ids[]", strconv.Itoa(id))
	}
	q.Set("from", date.Format("2006-01-02"))
	q.Set("to", date.Format("2006-01-02"))

	var wire []bookingWire
	if err := c.get(ctx, "churchtools.bookings", "/api/bookings", q, &wire); err != nil {
		return nil, err
	}

	var bookings []Booking
	for _, item := range wire {
		if item.Base.AppointmentID != appointmentID {
			continue
		}
		bookings = append(bookings, Booking{
			ResourceID:    item.Base.Resource.ID,
			ResourceName:  item.Base.Resource.Name,
			AppointmentID: item.Base.AppointmentID,
			StartDate:     item.Base.StartDate,
		})
	}
	return bookings, nil
}

// GroupMembers lists all memberships of one group.
func (c *Client) GroupMembers(ctx context.Context, groupID int) ([]GroupMember, error) {
	var members []GroupMember
	if err := c.get(ctx, "churchtools.group_members", fmt.Sprintf("/api/groups/%d/members", groupID), nil, &members); err != nil {
		return nil, err
	}
	for i := range members {
		members[i].GroupID = groupID
	}
	return members, nil
}

// GroupMembersFiltered lists memberships across groups, filtered by
// group-type role IDs and person IDs.
func (c *Client) GroupMembersFiltered(ctx context.Context, groupIDs, roleIDs, personIDs []int) ([]GroupMember, error) {
	q := url.Values{}
	for _, id := range groupIDs {
		q.Add("ids[]", strconv.Itoa(id))
	}
	for _, id := range roleIDs {
		q.Add("grouptype_role_ids[]", strconv.Itoa(id))
	}
	for _, id := range personIDs {
		q.Add("person_ids[]", strconv.Itoa(id))
	}

	var members []GroupMember
	if err := c.get(ctx, "churchtools.groups_members", "/api/groups/members", q, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// Group fetches one group.
func (c *Client) Group(ctx context.Context, groupID int) (*Group, error) {
	var g Group
	if err := c.get(ctx, "churchtools.group", fmt.Sprintf("/api/groups/%d", groupID), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// Person fetches one person. Returns (nil, nil) when the person is not
// visible to the token, so callers can degrade instead of failing the batch.
func (c *Client) Person(ctx context.Context, personID int) (*Person, error) {
	var p Person
	err := c.get(ctx, "churchtools.person", fmt.Sprintf("/api/persons/%d", personID), nil, &p)
	if errors.Is(err, errNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Persons lists all persons visible to the token, following pagination.
func (c *Client) Persons(ctx context.Context) ([]Person, error) {
	var all []Person
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("limit", strconv.Itoa(personsPageSize))

		var batch []Person
		if err := c.get(ctx, "churchtools.persons", "/api/persons", q, &batch); err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < personsPageSize {
			return all, nil
		}
	}
}

// SexName resolves a sex ID to its masterdata name (e.g. "sex.female").
// The mapping is fetched once per client and cached. Unknown IDs resolve to
// the empty string.
func (c *Client) SexName(ctx context.Context, sexID int) (string, error) {
	c.mu.Lock()
	cached := c.sexes
	c.mu.Unlock()

	if cached == nil {
		var masterdata struct {
			Sexes []struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"sexes"`
		}
		if err := c.get(ctx, "churchtools.person_masterdata", "/api/person/masterdata", nil, &masterdata); err != nil {
			return "", err
		}
		cached = make(map[int]string, len(masterdata.Sexes))
		for _, sex := range masterdata.Sexes {
			cached[sex.ID] = sex.Name
		}
		c.mu.Lock()
		c.sexes = cached
		c.mu.Unlock()
	}

	return cached[sexID], nil
}

// EventMasterdata fetches the service catalog.
func (c *Client) EventMasterdata(ctx context.Context) (*EventMasterdata, error) {
	var md EventMasterdata
	if err := c.get(ctx, "churchtools.event_masterdata", "/api/event/masterdata", nil, &md); err != nil {
		return nil, err
	}
	return &md, nil
}

// ResourceMasterdata fetches the resource catalog.
func (c *Client) ResourceMasterdata(ctx context.Context) (*ResourceMasterdata, error) {
	var md ResourceMasterdata
	if err := c.get(ctx, "churchtools.resource_masterdata", "/api/resource/masterdata", nil, &md); err != nil {
		return nil, err
	}
	return &md, nil
}

var errNotFound = errors.New("churchtools: not found")

func (c *Client) get(ctx context.Context, operation, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Login "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.ObserveUpstreamLatency(ctx, operation, start)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return errNotFound
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: unexpected status %d: %s", operation, resp.StatusCode, bytes.TrimSpace(body))
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", operation, err)
	}
	return nil
}

func normalizeDomain(domain string) string {
	domain = trimTrailingSlash(domain)
	if domain == "" {
		return domain
	}
	if !hasScheme(domain) {
		domain = "https://" + domain
	}
	return domain
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}

func hasScheme(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != ""
}
