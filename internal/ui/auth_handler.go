package ui

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gemeindetools/planweb/internal/auth"
	httperrors "github.com/gemeindetools/planweb/internal/http/errors"
)

func (h *Handler) LoginChurchToolsForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title":  "ChurchTools Login",
		"Domain": h.cfg.ChurchToolsDomain,
	}
	h.render(w, r, "login_churchtools.html", h.withFlash(r, data))
}

func (h *Handler) LoginChurchTools(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httperrors.BadRequestError(w, r, err, "invalid form")
		return
	}

	domain := r.PostFormValue("domain")
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if domain == "" || username == "" || password == "" {
		h.redirect(w, r, "/login_churchtools", map[string]string{"error": "Bitte alle Felder ausfüllen"})
		return
	}

	err := h.authService.LoginChurchTools(r.Context(), w, r, domain, username, password)
	if errors.Is(err, auth.ErrBadCredentials) {
		h.redirect(w, r, "/login_churchtools", map[string]string{"error": "Anmeldung fehlgeschlagen"})
		return
	}
	if err != nil {
		httperrors.InternalError(w, r, err, "churchtools login failed")
		return
	}

	h.redirect(w, r, "/main", map[string]string{"status": "Mit ChurchTools verbunden"})
}

func (h *Handler) LoginCommuniForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Title":  "Communi Login",
		"Server": h.cfg.CommuniServer,
	}
	h.render(w, r, "login_communi.html", h.withFlash(r, data))
}

func (h *Handler) LoginCommuni(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httperrors.BadRequestError(w, r, err, "invalid form")
		return
	}

	server := r.PostFormValue("server")
	token := r.PostFormValue("token")
	appID, err := strconv.Atoi(r.PostFormValue("app_id"))
	if server == "" || token == "" || err != nil {
		h.redirect(w, r, "/login_communi", map[string]string{"error": "Bitte alle Felder ausfüllen"})
		return
	}

	err = h.authService.LoginCommuni(r.Context(), w, r, server, token, appID)
	if errors.Is(err, auth.ErrBadCredentials) {
		h.redirect(w, r, "/login_communi", map[string]string{"error": "Anmeldung fehlgeschlagen"})
		return
	}
	if err != nil {
		httperrors.InternalError(w, r, err, "communi login failed")
		return
	}

	h.redirect(w, r, "/main", map[string]string{"status": "Mit Communi verbunden"})
}
