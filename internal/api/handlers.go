package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/noteshare/internal/checksum"
	"github.com/starford/noteshare/internal/share"
	"github.com/starford/noteshare/internal/sse"
)

const maxShareBody = 64 << 10

// Handler holds API route handlers.
type Handler struct {
	svc               *share.Service
	events            *sse.Broker
	defaultExpiration int
}

// NewHandler creates a new Handler. events may be nil.
func NewHandler(svc *share.Service, events *sse.Broker, defaultExpiration int) *Handler {
	if defaultExpiration == 0 {
		defaultExpiration = share.DefaultExpirationDays
	}
	return &Handler{svc: svc, events: events, defaultExpiration: defaultExpiration}
}

// NoteHTML handles GET /api/notes/{id}/html.
//
//	@Summary		Render a note as a standalone HTML page
//	@Tags			notes
//	@Produce		html
//	@Param			id			path		string	true	"Note id"
//	@Param			type		query		string	false	"Share type"	Enums(public, encrypted)
//	@Param			password	query		string	false	"Password for encrypted pages"
//	@Success		200			{string}	string
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/html [get]
func (h *Handler) NoteHTML(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	settings, err := share.ParseSettings(q.Get("type"), q.Get("expiration"))
	if err != nil {
		writeError(w, "render note", err)
		return
	}
	if q.Get("expiration") == "" {
		settings.ExpirationDays = h.defaultExpiration
	}

	res, err := h.svc.Build(r.Context(), chi.URLParam(r, "id"), settings, q.Get("password"))
	if err != nil {
		writeError(w, "render note", err)
		return
	}

	body := []byte(res.HTML)
	etag := checksum.ETag(body)
	w.Header().Set("ETag", etag)
	if res.Password != "" {
		w.Header().Set("X-Share-Password", res.Password)
	}
	// A generated password changes the page on every request.
	if res.Password == "" || q.Get("password") != "" {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// ShareNote handles POST /api/notes/{id}/share.
//
//	@Summary		Render a note and save it to the share directory
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Note id"
//	@Param			body	body		ShareRequest	true	"Share settings"
//	@Success		201		{object}	ShareResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id}/share [post]
func (h *Handler) ShareNote(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	data, err := io.ReadAll(io.LimitReader(r.Body, maxShareBody))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("read body failed"))
		return
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON"))
			return
		}
	}

	expiration := strconv.Itoa(req.Expiration)
	if req.Expiration == 0 {
		expiration = strconv.Itoa(h.defaultExpiration)
	}
	settings, err := share.ParseSettings(req.Type, expiration)
	if err != nil {
		writeError(w, "share note", err)
		return
	}

	res, err := h.svc.Share(r.Context(), chi.URLParam(r, "id"), settings, share.Options{
		Path:     req.Path,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, "share note", err)
		return
	}
	if h.events != nil {
		h.events.PublishShared(res.NoteID, res.Settings.Type, res.Path)
	}
	writeJSON(w, http.StatusCreated, res)
}
