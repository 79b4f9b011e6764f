package handlers

import (
	"context"
	"net/http"
	"sort"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/wonny/fundlens/internal/scheduler"
	"github.com/wonny/fundlens/pkg/logger"
)

// JobScheduler is the part of the scheduler exposed over HTTP
type JobScheduler interface {
	GetJobStats() map[string]scheduler.JobStats
	GetJobHistory(jobName string, n int) ([]scheduler.JobResult, error)
	RunJob(ctx context.Context, jobName string) (scheduler.JobResult, error)
}

// SchedulerHandler handles watchlist job endpoints
type SchedulerHandler struct {
	sched  JobScheduler
	logger *logger.Logger
}

// NewSchedulerHandler creates a new scheduler handler. sched may be nil
// (serve --no-scheduler); every endpoint then answers 503.
func NewSchedulerHandler(sched JobScheduler, log *logger.Logger) *SchedulerHandler {
	return &SchedulerHandler{sched: sched, logger: log}
}

func (h *SchedulerHandler) enabled(w http.ResponseWriter) bool {
	if h.sched == nil {
		RespondError(w, http.StatusServiceUnavailable, "scheduler disabled")
		return false
	}
	return true
}

// ListJobs handles GET /api/scheduler/jobs
func (h *SchedulerHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	stats := h.sched.GetJobStats()
	jobs := make([]scheduler.JobStats, 0, len(stats))
	for _, st := range stats {
		jobs = append(jobs, st)
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].JobName < jobs[j].JobName })

	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetHistory handles GET /api/scheduler/jobs/{name}/history?limit=20
func (h *SchedulerHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			RespondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	name := mux.Vars(r)["name"]
	results, err := h.sched.GetJobHistory(name, limit)
	if err != nil {
		RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"job":     name,
		"results": results,
	})
}

// RunJob handles POST /api/scheduler/jobs/{name}/run. It blocks until the
// job (retries included) finishes.
func (h *SchedulerHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	if !h.enabled(w) {
		return
	}

	name := mux.Vars(r)["name"]
	h.logger.WithField("job", name).Info("Manual job run triggered")

	result, err := h.sched.RunJob(r.Context(), name)
	if err != nil {
		RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	RespondJSON(w, status, result)
}
