// Package auth implements the credential-forwarding login flow: the user
// logs in with their upstream ChurchTools (and optionally Communi)
// credentials, the resulting API tokens are stored server-side, and a
// cookie-bound session reconstructs the clients per request.
package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gemeindetools/planweb/internal/churchtools"
	"github.com/gemeindetools/planweb/internal/communi"
	"github.com/gemeindetools/planweb/internal/config"
	"github.com/gemeindetools/planweb/internal/store"
)

// ErrBadCredentials is returned when an upstream rejects the login.
var ErrBadCredentials = errors.New("auth: invalid credentials")

// Service encapsulates login, logout and the session middleware.
type Service struct {
	cfg      *config.Config
	store    *store.Store
	sessions *SessionManager
	log      *logrus.Entry
}

func NewService(cfg *config.Config, store *store.Store, sessions *SessionManager) *Service {
	return &Service{
		cfg:      cfg,
		store:    store,
		sessions: sessions,
		log:      logrus.WithField("component", "auth"),
	}
}

// LoginChurchTools verifies the credentials against the ChurchTools
// instance and binds the resulting token to the browser session.
func (s *Service) LoginChurchTools(ctx context.Context, w http.ResponseWriter, r *http.Request, domain, username, password string) error {
	client, err := churchtools.Login(ctx, domain, username, password)
	if errors.Is(err, churchtools.ErrUnauthorized) {
		return ErrBadCredentials
	}
	if err != nil {
		return err
	}

	session := s.currentOrNewSession(ctx, r)
	session.CTDomain = client.Domain()
	session.CTToken = client.Token()
	session.ExpiresAt = time.Now().Add(SessionTTL)

	if err := s.store.Sessions.Save(ctx, session); err != nil {
		return err
	}
	s.log.WithField("session", session.ID).Info("churchtools login succeeded")
	return s.sessions.Issue(w, session.ID)
}

// LoginCommuni verifies the token against the Communi instance and binds it
// to the browser session. An existing ChurchTools login on the same session
// is kept.
func (s *Service) LoginCommuni(ctx context.Context, w http.ResponseWriter, r *http.Request, server, token string, appID int) error {
	client := communi.New(server, token, appID)
	if _, err := client.WhoAmI(ctx); err != nil {
		if errors.Is(err, communi.ErrUnauthorized) {
			return ErrBadCredentials
		}
		return err
	}

	session := s.currentOrNewSession(ctx, r)
	session.CommuniServer = client.Server()
	session.CommuniToken = token
	session.CommuniAppID = appID
	session.ExpiresAt = time.Now().Add(SessionTTL)

	if err := s.store.Sessions.Save(ctx, session); err != nil {
		return err
	}
	s.log.WithField("session", session.ID).Info("communi login succeeded")
	return s.sessions.Issue(w, session.ID)
}

// Logout drops the server-side session and clears the cookie.
func (s *Service) Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if sessionID, ok := s.sessions.CurrentSessionID(r); ok {
		if err := s.store.Sessions.Delete(ctx, sessionID); err != nil {
			s.log.WithError(err).Warn("failed to delete session on logout")
		}
	}
	s.sessions.Clear(w)
}

// Session loads the live session for the request, or nil when there is
// none.
func (s *Service) Session(ctx context.Context, r *http.Request) *store.Session {
	sessionID, ok := s.sessions.CurrentSessionID(r)
	if !ok {
		return nil
	}
	session, err := s.store.Sessions.Get(ctx, sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		s.log.WithError(err).Warn("failed to load session")
		return nil
	}
	return session
}

// RequireChurchTools redirects to the ChurchTools login page unless the
// request carries a session with a ChurchTools token. The reconstructed
// clients are placed in the request context.
func (s *Service) RequireChurchTools(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := s.Session(r.Context(), r)
		if session == nil || session.CTToken == "" {
			http.Redirect(w, r, "/login_churchtools", http.StatusFound)
			return
		}

		clients := &Clients{
			Session: session,
			CT:      churchtools.New(session.CTDomain, session.CTToken),
		}
		if session.CommuniToken != "" {
			clients.Communi = communi.New(session.CommuniServer, session.CommuniToken, session.CommuniAppID)
		}

		next.ServeHTTP(w, r.WithContext(WithClients(r.Context(), clients)))
	})
}

// RequireCommuni additionally redirects to the Communi login page when the
// session has no Communi token. Must be mounted inside RequireChurchTools.
func (s *Service) RequireCommuni(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clients, ok := ClientsFromContext(r.Context())
		if !ok || clients.Communi == nil {
			http.Redirect(w, r, "/login_communi", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Service) currentOrNewSession(ctx context.Context, r *http.Request) *store.Session {
	if session := s.Session(ctx, r); session != nil {
		return session
	}
	return &store.Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
}
