package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/response"
	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
)

// BuddyHandler handles the pod buddies list.
type BuddyHandler struct {
	collection *collection.Service
	logger     *zap.Logger
}

// NewBuddyHandler creates a new BuddyHandler.
func NewBuddyHandler(svc *collection.Service, logger *zap.Logger) *BuddyHandler {
	return &BuddyHandler{collection: svc, logger: logger}
}

// GetBuddies lists pod buddies.
func (h *BuddyHandler) GetBuddies(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	buddies, err := h.collection.ListPodBuddies(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, buddies)
}

// AddBuddyRequest is the body of AddBuddy.
type AddBuddyRequest struct {
	Name string `json:"name"`
}

// AddBuddy adds a pod buddy.
func (h *BuddyHandler) AddBuddy(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req AddBuddyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.collection.AddPodBuddy(r.Context(), user.ID, req.Name); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}

// RemoveBuddy removes a pod buddy by name.
func (h *BuddyHandler) RemoveBuddy(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.collection.RemovePodBuddy(r.Context(), user.ID, chi.URLParam(r, "name")); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}
