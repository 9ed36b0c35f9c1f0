package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/response"
	"github.com/ramonehamilton/EDH-Tracker/internal/charts"
	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
	"github.com/ramonehamilton/EDH-Tracker/internal/stats"
)

// ChartHandler renders statistics charts as HTML pages.
type ChartHandler struct {
	collection *collection.Service
	logger     *zap.Logger
	now        func() time.Time
}

// NewChartHandler creates a new ChartHandler.
func NewChartHandler(coll *collection.Service, logger *zap.Logger) *ChartHandler {
	return &ChartHandler{collection: coll, logger: logger, now: time.Now}
}

// GetChart renders the {kind} chart over the filtered games.
func (h *ChartHandler) GetChart(w http.ResponseWriter, r *http.Request) {
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

	config := charts.DefaultChartConfig()
	config.Subtitle = filter.Range.FormatPeriod()

	chart, err := charts.Build(charts.Kind(chi.URLParam(r, "kind")), stats.ComputeDashboard(games, decks, filter), config)
	if err != nil {
		response.NotFound(w, err)
		return
	}

	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		writeError(w, h.logger, err)
		return
	}

	response.HTML(w, buf.Bytes())
}
