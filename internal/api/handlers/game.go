package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/response"
	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
)

// GameHandler handles the game log.
type GameHandler struct {
	collection *collection.Service
	logger     *zap.Logger
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(svc *collection.Service, logger *zap.Logger) *GameHandler {
	return &GameHandler{collection: svc, logger: logger}
}

// GetGames returns the caller's games, newest first.
func (h *GameHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	games, err := h.collection.ListGames(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, games)
}

// LogGame records a game.
func (h *GameHandler) LogGame(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req collection.NewGame
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	game, err := h.collection.LogGame(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Created(w, game)
}

// EditGame replaces a game's details.
func (h *GameHandler) EditGame(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	gameID, err := int64Param(r, "gameID")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req collection.NewGame
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	game, err := h.collection.EditGame(r.Context(), user.ID, gameID, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, game)
}

// DeleteGame removes a game.
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	gameID, err := int64Param(r, "gameID")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.collection.DeleteGame(r.Context(), user.ID, gameID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}
