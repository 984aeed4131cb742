package http_handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/baechuer/signup-service/internal/application/users"
	"github.com/baechuer/signup-service/internal/domain"
	"github.com/baechuer/signup-service/internal/logger"
	"github.com/baechuer/signup-service/internal/transport/http/dto"
	"github.com/baechuer/signup-service/internal/transport/http/middleware"
	"github.com/baechuer/signup-service/internal/transport/http/response"
)

type Registerer interface {
	Register(ctx context.Context, cmd users.RegisterCmd) (domain.User, error)
}

type UsersHandler struct {
	svc Registerer
}

func NewUsersHandler(svc Registerer) *UsersHandler {
	return &UsersHandler{svc: svc}
}

// Register handles POST /api/users
func (h *UsersHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := response.DecodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.fail(w, r, err)
		return
	}

	// a client hang-up must not abort a half-done registration
	ctx := context.WithoutCancel(r.Context())

	u, err := h.svc.Register(ctx, users.RegisterCmd{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	middleware.RegistrationsTotal.WithLabelValues("created").Inc()
	logger.Ctx(r.Context()).Info().
		Str("user_id", u.ID).
		Msg("user_created")

	response.Created(w, "User created")
}

func (h *UsersHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	middleware.RegistrationsTotal.WithLabelValues(outcome(err)).Inc()
	response.WriteError(w, r, err)
}

func outcome(err error) string {
	var de *domain.Error
	if errors.As(err, &de) && de.Code != "" {
		return de.Code
	}
	return "internal_error"
}
