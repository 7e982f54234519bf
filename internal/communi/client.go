// Package communi is a minimal client for the Communi REST API, covering
// the group lookup and recommendation posting the event pages need.
package communi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gemeindetools/planweb/internal/metrics"
)

// ErrUnauthorized is returned when the token or app ID is rejected.
var ErrUnauthorized = errors.New("communi: unauthorized")

const defaultTimeout = 30 * time.Second

// User is the account the token belongs to.
type User struct {
	ID        int    `json:"id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
}

// Group is one Communi group (chat).
type Group struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Client talks to one Communi instance.
type Client struct {
	baseURL string
	token   string
	appID   int
	http    *http.Client
	log     *logrus.Entry
}

// New returns a client for the given server, token and app ID. The trio is
// verified lazily; call WhoAmI to check it eagerly.
func New(server, token string, appID int) *Client {
	return &Client{
		baseURL: trimTrailingSlash(server),
		token:   token,
		appID:   appID,
		http:    &http.Client{Timeout: defaultTimeout},
		log:     logrus.WithField("component", "communi"),
	}
}

// Token returns the API token the client authenticates with.
func (c *Client) Token() string { return c.token }

// Server returns the instance base URL.
func (c *Client) Server() string { return c.baseURL }

// AppID returns the app ID the client authenticates with.
func (c *Client) AppID() int { return c.appID }

// WhoAmI returns the user the token belongs to.
func (c *Client) WhoAmI(ctx context.Context) (*User, error) {
	q := url.Values{}
	q.Set("loginId", "self")

	var users []User
	if err := c.do(ctx, "communi.whoami", http.MethodGet, "/user", q, nil, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, errors.New("communi: whoami returned no user")
	}
	return &users[0], nil
}

// Groups lists all groups visible to the token.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	var groups []Group
	if err := c.do(ctx, "communi.groups", http.MethodGet, "/group", nil, nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// Recommend posts a recommendation message into a group.
func (c *Client) Recommend(ctx context.Context, groupID int, text string) error {
	payload := map[string]any{
		"groupId": groupID,
		"text":    text,
	}
	return c.do(ctx, "communi.recommend", http.MethodPost, "/message", nil, payload, nil)
}

func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, payload, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	req.Header.Set("X-Authorization", "Bearer "+c.token)
	req.Header.Set("X-App", strconv.Itoa(c.appID))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
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
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: unexpected status %d: %s", operation, resp.StatusCode, bytes.TrimSpace(raw))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
