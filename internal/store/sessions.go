package store

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/nacl/secretbox"
)

// ErrSessionNotFound is returned when no live session exists for an ID.
var ErrSessionNotFound = errors.New("store: session not found")

// Session is one logged-in browser session. Either upstream may be absent;
// pages requiring a specific upstream check for its token.
type Session struct {
	ID string

	CTDomain string
	CTToken  string

	CommuniServer string
	CommuniToken  string
	CommuniAppID  int

	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionRepo stores sessions with the upstream tokens sealed via
// secretbox, so a database dump alone does not leak usable credentials.
type SessionRepo struct {
	pool PgxPool
	key  [32]byte
}

func newSessionRepo(pool PgxPool, secret string) *SessionRepo {
	return &SessionRepo{
		pool: pool,
		key:  sha256.Sum256([]byte(secret + ":store")),
	}
}

// Save inserts or replaces a session.
func (r *SessionRepo) Save(ctx context.Context, session *Session) error {
	defer observeDB(ctx, "db.sessions.save")()

	ctToken, err := r.seal(session.CTToken)
	if err != nil {
		return err
	}
	communiToken, err := r.seal(session.CommuniToken)
	if err != nil {
		return err
	}

	const q = `INSERT INTO sessions
        (id, ct_domain, ct_token, communi_server, communi_token, communi_app_id, created_at, expires_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
        ct_domain = EXCLUDED.ct_domain,
        ct_token = EXCLUDED.ct_token,
        communi_server = EXCLUDED.communi_server,
        communi_token = EXCLUDED.communi_token,
        communi_app_id = EXCLUDED.communi_app_id,
        expires_at = EXCLUDED.expires_at`
	if _, err := r.pool.Exec(ctx, q,
		session.ID, session.CTDomain, ctToken,
		session.CommuniServer, communiToken, session.CommuniAppID,
		session.CreatedAt, session.ExpiresAt,
	); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get loads a session by ID. Expired sessions are treated as absent.
func (r *SessionRepo) Get(ctx context.Context, id string) (*Session, error) {
	defer observeDB(ctx, "db.sessions.get")()

	const q = `SELECT id, ct_domain, ct_token, communi_server, communi_token, communi_app_id, created_at, expires_at
FROM sessions WHERE id = $1 AND expires_at > NOW()`

	var (
		session      Session
		ctToken      []byte
		communiToken []byte
	)
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&session.ID, &session.CTDomain, &ctToken,
		&session.CommuniServer, &communiToken, &session.CommuniAppID,
		&session.CreatedAt, &session.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if session.CTToken, err = r.open(ctToken); err != nil {
		return nil, fmt.Errorf("unseal session token: %w", err)
	}
	if session.CommuniToken, err = r.open(communiToken); err != nil {
		return nil, fmt.Errorf("unseal session token: %w", err)
	}
	return &session, nil
}

// Delete removes a session. Deleting an unknown ID is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	defer observeDB(ctx, "db.sessions.delete")()

	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes all sessions past their expiry.
func (r *SessionRepo) DeleteExpired(ctx context.Context) error {
	defer observeDB(ctx, "db.sessions.delete_expired")()

	if _, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= NOW()`); err != nil {
		return fmt.Errorf("delete expired sessions: %w", err)
	}
	return nil
}

func (r *SessionRepo) seal(plaintext string) ([]byte, error) {
	if plaintext == "" {
		return nil, nil
	}
	var nonce [24]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &r.key), nil
}

func (r *SessionRepo) open(sealed []byte) (string, error) {
	if len(sealed) == 0 {
		return "", nil
	}
	if len(sealed) < 24 {
		return "", errors.New("sealed value too short")
	}
	var nonce [24]byte
	copy(nonce[:], sealed[:24])
	plaintext, ok := secretbox.Open(nil, sealed[24:], &nonce, &r.key)
	if !ok {
		return "", errors.New("sealed value failed to open")
	}
	return string(plaintext), nil
}
