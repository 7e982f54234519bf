// Package ui serves the server-rendered HTML pages of the admin helper.
package ui

import (
	"html/template"
	"net/http"

	"github.com/gemeindetools/planweb/internal/auth"
	"github.com/gemeindetools/planweb/internal/config"
)

// Handler serves server-rendered HTML pages.
type Handler struct {
	cfg         *config.Config
	authService *auth.Service
	templates   map[string]*template.Template
}

func NewHandler(cfg *config.Config, authService *auth.Service) *Handler {
	return &Handler{cfg: cfg, authService: authService, templates: templates}
}

// Main is the landing page with links to the tool pages and the state of
// both upstream connections.
func (h *Handler) Main(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title":   "Hauptmenü",
		"ShowNav": true,
		"Version": h.cfg.Version,
	}
	if clients, ok := auth.ClientsFromContext(r.Context()); ok {
		data["CTDomain"] = clients.Session.CTDomain
		data["CommuniConnected"] = clients.Communi != nil
	}
	h.render(w, r, "main.html", h.withFlash(r, data))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.Logout(r.Context(), w, r)
	h.redirect(w, r, "/login_churchtools", map[string]string{"status": "Abgemeldet"})
}
