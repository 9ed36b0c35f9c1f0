// Package handlers implements the REST endpoints on top of the domain services.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/auth"
	"github.com/ramonehamilton/EDH-Tracker/internal/api/response"
	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
	"github.com/ramonehamilton/EDH-Tracker/internal/friends"
)

const maxBodyBytes = 8 << 20

var errNoUser = errors.New("no authenticated user")

// decodeJSON decodes the request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// int64Param parses a numeric URL parameter.
func int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return id, nil
}

// currentUser returns the caller or writes a 401.
func currentUser(w http.ResponseWriter, r *http.Request) (auth.User, bool) {
	user, ok := auth.FromContext(r.Context())
	if !ok {
		response.Unauthorized(w, errNoUser)
	}
	return user, ok
}

// writeError maps domain errors to status codes. Unclassified errors are
// logged and reported as 500.
func writeError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, friends.ErrValidation), errors.Is(err, collection.ErrInvalidInput):
		response.BadRequest(w, err)
	case errors.Is(err, friends.ErrNotFound),
		errors.Is(err, collection.ErrDeckNotFound),
		errors.Is(err, collection.ErrGameNotFound):
		response.NotFound(w, err)
	case errors.Is(err, collection.ErrDuplicateDeck):
		response.Conflict(w, err)
	default:
		logger.Error("request failed", zap.Error(err))
		response.InternalError(w, errors.New("internal error"))
	}
}
