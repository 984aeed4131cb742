package http_handlers

import (
	"context"
	"net/http"

	"github.com/baechuer/signup-service/internal/logger"
	"github.com/baechuer/signup-service/internal/transport/http/response"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

type healthBody struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// Health handles GET /api/health. It never touches the database.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.OK(w, healthBody{OK: true})
}

// Ready handles GET /api/ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			logger.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
			response.JSON(w, http.StatusServiceUnavailable, healthBody{OK: false, Message: "database unavailable"})
			return
		}
	}
	response.OK(w, healthBody{OK: true})
}
