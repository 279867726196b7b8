package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/noteshare/internal/notestore"
	"github.com/starford/noteshare/internal/share"
	"github.com/starford/noteshare/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// defaultExpiration is used when a request does not name one.
// events, if non-nil, is mounted at GET /events inside the auth group and
// receives a note.shared event for every saved share.
func NewRouter(svc *share.Service, resources notestore.ResourceSource, events *sse.Broker, authEnabled bool, token string, defaultExpiration int) chi.Router {
	h := NewHandler(svc, events, defaultExpiration)
	rh := NewResourceHandler(resources)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/notes/{id}/html", h.NoteHTML)
	r.Post("/notes/{id}/share", h.ShareNote)
	r.Get("/resources/{id}", rh.Get)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
