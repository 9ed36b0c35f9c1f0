package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/api/response"
	"github.com/ramonehamilton/EDH-Tracker/internal/friends"
	"github.com/ramonehamilton/EDH-Tracker/internal/metrics"
	"github.com/ramonehamilton/EDH-Tracker/internal/scheduler"
)

// Job is a background maintenance job that can be run on demand.
type Job interface {
	Name() string
	Status() *scheduler.Status
	Trigger() error
}

// AdminHandler runs maintenance tasks.
type AdminHandler struct {
	friends *friends.Service
	metrics *metrics.APIMetrics
	jobs    []Job
	logger  *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(svc *friends.Service, m *metrics.APIMetrics, jobs []Job, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{friends: svc, metrics: m, jobs: jobs, logger: logger}
}

// JobStatus is the API view of a maintenance job.
type JobStatus struct {
	Name         string     `json:"name"`
	Running      bool       `json:"running"`
	Interval     string     `json:"interval"`
	LastRun      *time.Time `json:"lastRun,omitempty"`
	NextRun      *time.Time `json:"nextRun,omitempty"`
	RunCount     int        `json:"runCount"`
	FailureCount int        `json:"failureCount"`
	LastError    string     `json:"lastError,omitempty"`
}

func jobStatus(st *scheduler.Status) JobStatus {
	js := JobStatus{
		Name:         st.Name,
		Running:      st.Running,
		Interval:     st.Interval.String(),
		RunCount:     st.RunCount,
		FailureCount: st.FailureCount,
	}
	if !st.LastRun.IsZero() {
		js.LastRun = &st.LastRun
	}
	if !st.NextRun.IsZero() {
		js.NextRun = &st.NextRun
	}
	if st.LastError != nil {
		js.LastError = st.LastError.Error()
	}
	return js
}

// GetJobs lists the maintenance jobs.
func (h *AdminHandler) GetJobs(w http.ResponseWriter, _ *http.Request) {
	out := make([]JobStatus, 0, len(h.jobs))
	for _, job := range h.jobs {
		out = append(out, jobStatus(job.Status()))
	}
	response.Success(w, out)
}

// RunJob starts a maintenance job now. The run continues in the background.
func (h *AdminHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	for _, job := range h.jobs {
		if job.Name() != name {
			continue
		}
		if err := job.Trigger(); err != nil {
			response.Conflict(w, err)
			return
		}
		h.logger.Info("maintenance job triggered", zap.String("job", name))
		response.JSON(w, http.StatusAccepted, response.SuccessResponse{Data: jobStatus(job.Status())})
		return
	}
	response.NotFound(w, fmt.Errorf("unknown job %q", name))
}

// Reconcile repairs one-sided friend links. ?dryRun=true only reports.
func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	dryRun := r.URL.Query().Get("dryRun") == "true"

	report, err := h.friends.Reconcile(r.Context(), dryRun)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	h.logger.Info("reconcile finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("profiles", report.ProfilesScanned),
		zap.Int("friends_removed", report.FriendsRemoved),
		zap.Int("requests_removed", report.RequestsRemoved))
	response.Success(w, report)
}

// GetMetrics returns request counts and per-route latency. ?reset=true
// clears them after reading.
func (h *AdminHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	stats := h.metrics.Stats()
	if r.URL.Query().Get("reset") == "true" {
		h.metrics.Reset()
	}
	response.Success(w, stats)
}
