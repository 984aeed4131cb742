package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/baechuer/signup-service/internal/transport/http/middleware"
)

type HealthHandler interface {
	Health(w http.ResponseWriter, r *http.Request)
	Ready(w http.ResponseWriter, r *http.Request)
}

type UsersHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
}

type Deps struct {
	Health HealthHandler
	Users  UsersHandler
	SPA    http.Handler

	NotFound         http.HandlerFunc
	MethodNotAllowed http.HandlerFunc

	CORSAllowedOrigins []string
	MetricsEnabled     bool

	// optional; nil disables the limit
	RLRegister func(http.Handler) http.Handler
}

func New(deps Deps) (http.Handler, error) {
	if deps.Health == nil {
		return nil, fmt.Errorf("nil Health handler")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("nil Users handler")
	}
	if deps.SPA == nil {
		return nil, fmt.Errorf("nil SPA handler")
	}
	if deps.NotFound == nil {
		return nil, fmt.Errorf("nil NotFound handler")
	}
	if deps.MethodNotAllowed == nil {
		return nil, fmt.Errorf("nil MethodNotAllowed handler")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics)
	r.Use(middleware.CORS(deps.CORSAllowedOrigins))

	r.NotFound(deps.NotFound)
	r.MethodNotAllowed(deps.MethodNotAllowed)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.SecurityHeaders)
		r.NotFound(deps.NotFound)
		r.MethodNotAllowed(deps.MethodNotAllowed)

		r.Get("/health", deps.Health.Health)
		r.Get("/ready", deps.Health.Ready)
		if deps.MetricsEnabled {
			r.Method(http.MethodGet, "/metrics", promhttp.Handler())
		}

		users := r.With()
		if deps.RLRegister != nil {
			users = r.With(deps.RLRegister)
		}
		users.Post("/users", deps.Users.Register)
	})

	// registered last: everything not claimed above is the frontend's
	r.Method(http.MethodGet, "/*", deps.SPA)
	r.Method(http.MethodHead, "/*", deps.SPA)

	return r, nil
}
