package http_handlers

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/baechuer/signup-service/internal/domain"
	"github.com/baechuer/signup-service/internal/logger"
	"github.com/baechuer/signup-service/internal/transport/http/response"
)

// SPAHandler serves pre-built frontend assets from root and answers every
// other non-API GET with the entry document, leaving routing to the client.
type SPAHandler struct {
	fsys  fs.FS
	index string
}

func NewSPAHandler(root, index string) *SPAHandler {
	if root == "" {
		root = "dist"
	}
	if index == "" {
		index = "index.html"
	}
	return &SPAHandler{fsys: os.DirFS(root), index: index}
}

func (h *SPAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		response.WriteError(w, r, domain.ErrMethodNotAllowed(r.Method))
		return
	}

	if isAPIPath(r.URL.Path) {
		response.WriteError(w, r, domain.ErrRouteNotFound(r.URL.Path))
		return
	}

	name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
	if name != "" && name != h.index {
		if f, fi, ok := h.open(r.Context(), name); ok {
			defer f.Close()
			h.serveContent(w, r, f, fi)
			return
		}
	}

	f, fi, ok := h.open(r.Context(), h.index)
	if !ok {
		response.WriteError(w, r, domain.ErrRouteNotFound(r.URL.Path))
		return
	}
	defer f.Close()

	w.Header().Set("Cache-Control", "no-cache")
	h.serveContent(w, r, f, fi)
}

// open returns name only when it is a regular file; directories and
// missing paths fall through to the entry document.
func (h *SPAHandler) open(ctx context.Context, name string) (fs.File, fs.FileInfo, bool) {
	f, err := h.fsys.Open(name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Ctx(ctx).Warn().Err(err).Str("name", name).Msg("spa file unreadable")
		}
		return nil, nil, false
	}
	fi, err := f.Stat()
	if err != nil || !fi.Mode().IsRegular() {
		_ = f.Close()
		return nil, nil, false
	}
	return f, fi, true
}

// serveContent is used instead of http.ServeFileFS, which redirects any
// path ending in "/index.html" to its directory.
func (h *SPAHandler) serveContent(w http.ResponseWriter, r *http.Request, f fs.File, fi fs.FileInfo) {
	rs, ok := f.(io.ReadSeeker)
	if !ok {
		response.WriteError(w, r, domain.ErrInternal(errors.New("spa: "+fi.Name()+" is not seekable")))
		return
	}
	http.ServeContent(w, r, fi.Name(), fi.ModTime(), rs)
}

func isAPIPath(p string) bool {
	return p == "/api" || strings.HasPrefix(p, "/api/")
}
