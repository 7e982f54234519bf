package auth

import (
	"context"

	"github.com/gemeindetools/planweb/internal/churchtools"
	"github.com/gemeindetools/planweb/internal/communi"
	"github.com/gemeindetools/planweb/internal/store"
)

type contextKey string

const contextKeyClients contextKey = "clients"

// Clients are the per-request upstream clients reconstructed from the
// session. CT is always set behind RequireChurchTools; Communi is nil until
// the user also logs into Communi.
type Clients struct {
	Session *store.Session
	CT      *churchtools.Client
	Communi *communi.Client
}

func WithClients(ctx context.Context, clients *Clients) context.Context {
	return context.WithValue(ctx, contextKeyClients, clients)
}

func ClientsFromContext(ctx context.Context) (*Clients, bool) {
	c, ok := ctx.Value(contextKeyClients).(*Clients)
	return c, ok
}
