package auth

import (
	"crypto/sha256"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/gemeindetools/planweb/internal/config"
)

// SessionTTL is how long a login stays valid. Server-side session rows and
// the cookie share this lifetime.
const SessionTTL = 12 * time.Hour

// SessionManager manages the browser session cookie. The cookie carries
// only the server-side session ID; the upstream tokens never leave the
// database.
type SessionManager struct {
	cfg        *config.Config
	cookieName string
	codec      *securecookie.SecureCookie
	secure     bool
}

func NewSessionManager(cfg *config.Config) *SessionManager {
	hash := sha256.Sum256([]byte(cfg.Session.Secret + ":cookie"))
	hashKey := hash[:]

	// securecookie requires a 16, 24 or 32 byte block key.
	blockKey := hash[:]
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(SessionTTL / time.Second))
	sc.SetSerializer(securecookie.JSONEncoder{})

	secure := true
	if base, err := url.Parse(cfg.BaseURL); err == nil && base.Scheme != "https" {
		secure = false
	}

	return &SessionManager{
		cfg:        cfg,
		cookieName: "planweb_session",
		codec:      sc,
		secure:     secure,
	}
}

// Issue sets the session cookie for a session ID.
func (m *SessionManager) Issue(w http.ResponseWriter, sessionID string) error {
	value := map[string]any{
		"session_id": sessionID,
		"exp":        time.Now().Add(SessionTTL).Unix(),
	}

	encoded, err := m.codec.Encode(m.cookieName, value)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		Expires:  time.Now().Add(SessionTTL),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Clear removes the session cookie.
func (m *SessionManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:    m.cookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		Secure:  m.secure,
	})
}

// CurrentSessionID extracts the session ID from the request cookie if
// present and unexpired.
func (m *SessionManager) CurrentSessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}

	var value map[string]any
	if err := m.codec.Decode(m.cookieName, c.Value, &value); err != nil {
		return "", false
	}

	exp, ok := value["exp"].(float64)
	if !ok || time.Unix(int64(exp), 0).Before(time.Now()) {
		return "", false
	}

	sessionID, ok := value["session_id"].(string)
	if !ok || sessionID == "" {
		return "", false
	}

	return sessionID, true
}
