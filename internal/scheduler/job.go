package scheduler

import (
	"context"
	"time"
)

// Job represents a scheduled job
// ⭐ SSOT: 스케줄 작업 인터페이스는 여기서만 정의
type Job interface {
	Name() string

	// Run executes one attempt; the scheduler owns retries
	Run(ctx context.Context) error

	// Schedule returns a standard 5-field cron expression, e.g.
	// "30 18 * * 1-5" (평일 18:30, 장 마감 및 월매출 공시 이후), "@daily", "@every 6h"
	Schedule() string
}

// maxHistory is the number of results kept per job
const maxHistory = 100

// JobResult is one finished execution, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// JobHistory keeps the latest maxHistory results, oldest first
type JobHistory struct {
	Results []JobResult
}

// Add appends a result, dropping the oldest past maxHistory
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if n := len(h.Results); n > maxHistory {
		h.Results = append(h.Results[:0:0], h.Results[n-maxHistory:]...)
	}
}

// Latest returns up to n most recent results, newest first
func (h *JobHistory) Latest(n int) []JobResult {
	n = min(n, len(h.Results))
	out := make([]JobResult, 0, n)
	for i := len(h.Results) - 1; i >= len(h.Results)-n; i-- {
		out = append(out, h.Results[i])
	}
	return out
}

// lastWhere returns the newest result with Success == ok
func (h *JobHistory) lastWhere(ok bool) *JobResult {
	for i := len(h.Results) - 1; i >= 0; i-- {
		if h.Results[i].Success == ok {
			r := h.Results[i]
			return &r
		}
	}
	return nil
}

// Failures counts failed results
func (h *JobHistory) Failures() int {
	n := 0
	for _, r := range h.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate returns the share of successful runs (0 with no history)
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	return float64(len(h.Results)-h.Failures()) / float64(len(h.Results))
}
