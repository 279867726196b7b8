package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/noteshare/internal/notestore"
)

// ResourceHandler serves raw attachment bytes from the profile.
type ResourceHandler struct {
	resources notestore.ResourceSource
}

// NewResourceHandler creates a handler reading from resources.
func NewResourceHandler(resources notestore.ResourceSource) *ResourceHandler {
	return &ResourceHandler{resources: resources}
}

// Get handles GET /api/resources/{id}.
//
//	@Summary		Download a note attachment
//	@Tags			resources
//	@Produce		octet-stream
//	@Param			id	path		string	true	"Resource id"
//	@Success		200	{file}		binary
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/resources/{id} [get]
func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	meta, err := h.resources.ResourceMeta(r.Context(), id)
	if err != nil {
		writeError(w, "get resource", err)
		return
	}
	data, err := h.resources.ResourceBinary(r.Context(), id)
	if err != nil {
		writeError(w, "get resource", err)
		return
	}

	mime := meta.Mime
	if mime == "" {
		mime = "application/octet-stream"
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
