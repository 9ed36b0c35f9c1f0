package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/response"
	"github.com/ramonehamilton/EDH-Tracker/internal/friends"
)

// FriendHandler handles friends and friend requests.
type FriendHandler struct {
	friends *friends.Service
	logger  *zap.Logger
}

// NewFriendHandler creates a new FriendHandler.
func NewFriendHandler(svc *friends.Service, logger *zap.Logger) *FriendHandler {
	return &FriendHandler{friends: svc, logger: logger}
}

// GetFriends lists the caller's friends with their public summary.
func (h *FriendHandler) GetFriends(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if _, err := h.friends.EnsureUserProfile(r.Context(), user.ID, user.Email); err != nil {
		writeError(w, h.logger, err)
		return
	}
	profile, err := h.friends.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	list, err := h.friends.LoadFriendsWithProfiles(r.Context(), profile.Friends)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, list)
}

// GetRequests lists pending incoming requests.
func (h *FriendHandler) GetRequests(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	if _, err := h.friends.EnsureUserProfile(r.Context(), user.ID, user.Email); err != nil {
		writeError(w, h.logger, err)
		return
	}
	profile, err := h.friends.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, profile.PendingFriendRequests)
}

// SendRequestBody is the body of SendRequest.
type SendRequestBody struct {
	FriendID string `json:"friendId"`
}

// SendRequest sends a friend request to the given friend ID.
func (h *FriendHandler) SendRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req SendRequestBody
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	me, err := h.friends.EnsureUserProfile(r.Context(), user.ID, user.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := h.friends.SendFriendRequest(r.Context(), user.ID, me.FriendID, me.Username, req.FriendID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}

// AcceptRequest accepts the pending request from {fromID}.
func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	me, err := h.friends.EnsureUserProfile(r.Context(), user.ID, user.Email)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	fromID := friends.NormalizeFriendID(chi.URLParam(r, "fromID"))
	if err := h.friends.AcceptFriendRequest(r.Context(), user.ID, me.FriendID, fromID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}

// DeclineRequest drops the pending request from {fromID}.
func (h *FriendHandler) DeclineRequest(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	fromID := friends.NormalizeFriendID(chi.URLParam(r, "fromID"))
	if err := h.friends.DeclineFriendRequest(r.Context(), user.ID, fromID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}

// RemoveFriend removes {friendID} from the caller's friends.
func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	friendID := friends.NormalizeFriendID(chi.URLParam(r, "friendID"))
	if err := h.friends.RemoveFriend(r.Context(), user.ID, friendID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}

// GetFriend returns a friend's decks and games for read-only viewing.
func (h *FriendHandler) GetFriend(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	data, err := friendSnapshot(r.Context(), h.friends, user.ID, chi.URLParam(r, "friendID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, data)
}
