package http_handlers

import (
	"net/http"

	"github.com/baechuer/signup-service/internal/domain"
	"github.com/baechuer/signup-service/internal/transport/http/response"
)

func NotFound(w http.ResponseWriter, r *http.Request) {
	response.WriteError(w, r, domain.ErrRouteNotFound(r.URL.Path))
}

func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response.WriteError(w, r, domain.ErrMethodNotAllowed(r.Method))
}
