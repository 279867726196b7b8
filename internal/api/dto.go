package api

import "github.com/starford/noteshare/internal/share"

// ShareRequest is the request body for sharing a note.
type ShareRequest struct {
	Type       string `json:"type" example:"encrypted"`
	Expiration int    `json:"expiration" example:"7"`
	Path       string `json:"path" example:"trip.html"`
	Password   string `json:"password"`
}

// ShareResponse is the result of a saved share.
type ShareResponse = share.Result
