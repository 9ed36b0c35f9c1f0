package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/response"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// CardLookup is the card-data service used by CardHandler.
type CardLookup interface {
	GetCommander(ctx context.Context, name string) *models.Commander
	Suggest(ctx context.Context, query string) []string
	ImageURL(ctx context.Context, name string) string
}

// CardHandler serves commander lookups.
type CardHandler struct {
	lookup CardLookup
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(lookup CardLookup) *CardHandler {
	return &CardHandler{lookup: lookup}
}

var (
	errNameRequired = errors.New("name is required")
	errCardNotFound = errors.New("card not found")
)

// GetCommander resolves ?name= to a commander with its color identity.
func (h *CardHandler) GetCommander(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		response.BadRequest(w, errNameRequired)
		return
	}

	commander := h.lookup.GetCommander(r.Context(), name)
	if commander == nil {
		response.NotFound(w, errCardNotFound)
		return
	}

	response.Success(w, commander)
}

// Suggest returns card names matching ?q=.
func (h *CardHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.lookup.Suggest(r.Context(), r.URL.Query().Get("q")))
}

// ImageResponse is the body returned by GetImage.
type ImageResponse struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// GetImage returns the image URL of ?name=.
func (h *CardHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		response.BadRequest(w, errNameRequired)
		return
	}

	url := h.lookup.ImageURL(r.Context(), name)
	if url == "" {
		response.NotFound(w, errCardNotFound)
		return
	}

	response.Success(w, ImageResponse{Name: name, URL: url})
}
