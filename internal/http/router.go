package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/gemeindetools/planweb/internal/auth"
	"github.com/gemeindetools/planweb/internal/config"
	"github.com/gemeindetools/planweb/internal/http/csrf"
	"github.com/gemeindetools/planweb/internal/http/ratelimit"
	"github.com/gemeindetools/planweb/internal/metrics"
	"github.com/gemeindetools/planweb/internal/store"
	"github.com/gemeindetools/planweb/internal/ui"
)

// NewRouter wires all HTTP routes for the admin UI.
func NewRouter(cfg *config.Config, store *store.Store, authService *auth.Service) http.Handler {
	r := chi.NewRouter()

	// Login endpoints: 5 requests per second, burst of 10
	loginRateLimiter := ratelimit.NewIPRateLimiter(rate.Limit(5), 10, 5*time.Minute, cfg.TrustedProxies)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.HealthCheck(ctx); err != nil {
			http.Error(w, "unready", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if cfg.PrometheusEnabled {
		r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	uiHandler := ui.NewHandler(cfg, authService)

	r.Group(func(r chi.Router) {
		r.Use(loginRateLimiter.Middleware())
		r.Get("/login_churchtools", uiHandler.LoginChurchToolsForm)
		r.Post("/login_churchtools", uiHandler.LoginChurchTools)
		r.Get("/login_communi", uiHandler.LoginCommuniForm)
		r.Post("/login_communi", uiHandler.LoginCommuni)
	})

	r.Post("/logout", uiHandler.Logout)

	r.Group(func(r chi.Router) {
		r.Use(authService.RequireChurchTools)
		r.Use(csrf.Middleware(cfg))
		r.Get("/", uiHandler.Main)
		r.Get("/main", uiHandler.Main)

		r.Get("/download/plan_months", uiHandler.PlanMonthsForm)
		r.Post("/download/plan_months", uiHandler.PlanMonths)

		r.Get("/ct/calendar_appointments", uiHandler.CalendarAppointments)
		r.Get("/ct/contacts", uiHandler.Contacts)

		r.Group(func(r chi.Router) {
			r.Use(authService.RequireCommuni)
			r.Get("/communi/events", uiHandler.CommuniEvents)
		})
	})

	return r
}
