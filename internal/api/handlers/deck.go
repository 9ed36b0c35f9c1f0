package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/response"
	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
)

// DeckHandler handles deck-related API requests.
type DeckHandler struct {
	collection *collection.Service
	logger     *zap.Logger
}

// NewDeckHandler creates a new DeckHandler.
func NewDeckHandler(svc *collection.Service, logger *zap.Logger) *DeckHandler {
	return &DeckHandler{collection: svc, logger: logger}
}

// GetDecks returns the caller's decks. Archived decks are included with ?archived=true.
func (h *DeckHandler) GetDecks(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	includeArchived := r.URL.Query().Get("archived") == "true"
	decks, err := h.collection.ListDecks(r.Context(), user.ID, includeArchived)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, decks)
}

// CreateDeck adds a deck.
func (h *DeckHandler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req collection.NewDeck
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	deck, err := h.collection.AddDeck(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Created(w, deck)
}

// UpdateDeck edits a deck's name, commander or decklist.
func (h *DeckHandler) UpdateDeck(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	deckID, err := int64Param(r, "deckID")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req collection.DeckUpdate
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	deck, err := h.collection.UpdateDeck(r.Context(), user.ID, deckID, req)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, deck)
}

// ArchiveDeckRequest is the body of ArchiveDeck.
type ArchiveDeckRequest struct {
	Archived bool `json:"archived"`
}

// ArchiveDeck archives or restores a deck.
func (h *DeckHandler) ArchiveDeck(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	deckID, err := int64Param(r, "deckID")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req ArchiveDeckRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.collection.ArchiveDeck(r.Context(), user.ID, deckID, req.Archived); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}

// DeleteDeck removes a deck. Past games keep their snapshot.
func (h *DeckHandler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	deckID, err := int64Param(r, "deckID")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.collection.DeleteDeck(r.Context(), user.ID, deckID); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}

// ReorderDecksRequest is the body of ReorderDecks.
type ReorderDecksRequest struct {
	DeckIDs []int64 `json:"deckIds"`
}

// ReorderDecks stores a manual deck order.
func (h *DeckHandler) ReorderDecks(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req ReorderDecksRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.collection.ReorderDecks(r.Context(), user.ID, req.DeckIDs); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.NoContent(w)
}
