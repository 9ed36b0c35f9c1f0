package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/response"
	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
	"github.com/ramonehamilton/EDH-Tracker/internal/export"
	"github.com/ramonehamilton/EDH-Tracker/internal/friends"
	"github.com/ramonehamilton/EDH-Tracker/internal/stats"
)

// ExportHandler handles downloads, backups and restores.
type ExportHandler struct {
	collection *collection.Service
	friends    *friends.Service
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(coll *collection.Service, fr *friends.Service, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{collection: coll, friends: fr, logger: logger, now: time.Now}
}

func formatParam(r *http.Request) (export.Format, error) {
	raw := r.URL.Query().Get("format")
	if raw == "" {
		return export.FormatCSV, nil
	}
	return export.ParseFormat(raw)
}

// Export downloads games, decks or one statistic as CSV or JSON.
// {dataset} is "games", "decks" or a statistic name.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	format, err := formatParam(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	games, decks, err := h.collection.Snapshot(r.Context(), user.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	filter, err := parseFilter(r, h.now())
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	dataset := chi.URLParam(r, "dataset")
	data, err := export.SelectDataset(dataset, format, games, decks, filter)
	switch {
	case errors.Is(err, stats.ErrUnknownKind):
		response.NotFound(w, err)
		return
	case err != nil:
		response.BadRequest(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.ExportToWriter(&buf, format, data, true); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Download(w, format.ContentType(), export.GenerateFilename(dataset, format, h.now()), buf.Bytes())
}

// Backup downloads the caller's whole collection as JSON.
func (h *ExportHandler) Backup(w http.ResponseWriter, r *http.Request) {
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

	compress := r.URL.Query().Get("gzip") == "true"
	var buf bytes.Buffer
	if err := export.WriteBackup(&buf, export.NewBackup(profile, h.now()), compress); err != nil {
		writeError(w, h.logger, err)
		return
	}

	filename := export.GenerateFilename("backup", export.FormatJSON, h.now())
	contentType := "application/json"
	if compress {
		filename += ".gz"
		contentType = "application/gzip"
	}
	response.Download(w, contentType, filename, buf.Bytes())
}

// RestoreResult summarizes a restore.
type RestoreResult struct {
	Decks      int `json:"decks"`
	Games      int `json:"games"`
	PodBuddies int `json:"podBuddies"`
}

// Restore replaces the caller's collection with an uploaded backup.
func (h *ExportHandler) Restore(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	backup, err := export.ReadBackup(r.Body)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.collection.Restore(r.Context(), user.ID, backup.Decks, backup.Games, backup.PodBuddies); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.Success(w, RestoreResult{
		Decks:      len(backup.Decks),
		Games:      len(backup.Games),
		PodBuddies: len(backup.PodBuddies),
	})
}
