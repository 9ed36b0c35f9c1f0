package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/response"
	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
	"github.com/ramonehamilton/EDH-Tracker/internal/friends"
	"github.com/ramonehamilton/EDH-Tracker/internal/stats"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// StatsHandler serves statistics over the caller's or a friend's games.
type StatsHandler struct {
	collection *collection.Service
	friends    *friends.Service
	logger     *zap.Logger
	now        func() time.Time
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(coll *collection.Service, fr *friends.Service, logger *zap.Logger) *StatsHandler {
	return &StatsHandler{collection: coll, friends: fr, logger: logger, now: time.Now}
}

// parseFilter reads ?range=, ?deck= and ?players= into a GameFilter.
func parseFilter(r *http.Request, now time.Time) (stats.GameFilter, error) {
	q := r.URL.Query()

	tr, err := stats.ParseRange(q.Get("range"), now)
	if err != nil {
		return stats.GameFilter{}, err
	}
	filter := stats.GameFilter{Range: tr, DeckName: q.Get("deck")}

	if raw := q.Get("players"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return stats.GameFilter{}, fmt.Errorf("invalid players %q", raw)
		}
		filter.TotalPlayers = n
	}
	return filter, nil
}

// friendSnapshot returns the games and decks of a friend of the caller.
// Users who are not in the caller's friends list are reported as not found.
func friendSnapshot(ctx context.Context, svc *friends.Service, uid, friendID string) (*models.FriendPublicData, error) {
	profile, err := svc.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	friendID = friends.NormalizeFriendID(friendID)
	if !profile.HasFriend(friendID) {
		return nil, friends.ErrFriendNotFound
	}
	return svc.GetFriendPublicData(ctx, friendID)
}

// GetStats returns one statistic, or the dashboard for /stats.
func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	filter, err := parseFilter(r, h.now())
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	games, decks, err := h.collection.Snapshot(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := stats.Compute(chi.URLParam(r, "kind"), games, decks, filter)
	if err != nil {
		response.NotFound(w, err)
		return
	}

	response.Success(w, result)
}

// FriendStats is a friend's dashboard.
type FriendStats struct {
	FriendID  string           `json:"friendId"`
	Username  string           `json:"username"`
	Dashboard models.Dashboard `json:"dashboard"`
}

// GetFriendStats returns the dashboard of one of the caller's friends.
func (h *StatsHandler) GetFriendStats(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	filter, err := parseFilter(r, h.now())
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	data, err := friendSnapshot(r.Context(), h.friends, user.ID, chi.URLParam(r, "friendID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, FriendStats{
		FriendID:  data.FriendID,
		Username:  data.Username,
		Dashboard: stats.ComputeDashboard(data.Games, data.Decks, filter),
	})
}
