package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/response"
	"github.com/ramonehamilton/EDH-Tracker/internal/friends"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// ProfileHandler handles the caller's own profile.
type ProfileHandler struct {
	friends *friends.Service
	logger  *zap.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc *friends.Service, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{friends: svc, logger: logger}
}

// ProfileView is the caller's identity and social state.
type ProfileView struct {
	FriendID              string                 `json:"friendId"`
	Username              string                 `json:"username"`
	Email                 string                 `json:"email"`
	Friends               []string               `json:"friends"`
	PendingFriendRequests []models.FriendRequest `json:"pendingFriendRequests"`
}

// GetProfile returns the caller's profile, creating the friend ID on first use.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	data, err := h.friends.EnsureUserProfile(r.Context(), user.ID, user.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	profile, err := h.friends.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, ProfileView{
		FriendID:              data.FriendID,
		Username:              data.Username,
		Email:                 profile.Email,
		Friends:               profile.Friends,
		PendingFriendRequests: profile.PendingFriendRequests,
	})
}

// UpdateUsernameRequest is the body of UpdateUsername.
type UpdateUsernameRequest struct {
	Username string `json:"username"`
}

// UpdateUsername changes the caller's display name.
func (h *ProfileHandler) UpdateUsername(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateUsernameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	if _, err := h.friends.EnsureUserProfile(r.Context(), user.ID, user.Email); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.friends.UpdateUsername(r.Context(), user.ID, req.Username); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}
