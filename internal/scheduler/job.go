package scheduler

import (
	"context"
	"time"
)

// Job is a unit of scheduled work.
type Job interface {
	// Name identifies the job in logs and history.
	Name() string

	// Schedule returns the cron expression with a seconds field,
	// e.g. "0 30 17 * * 1-5".
	Schedule() string

	// Run executes the job once.
	Run(ctx context.Context) error
}

// JobResult records one execution of a job.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
}

// historyLimit caps how many results a job keeps.
const historyLimit = 100

// JobHistory keeps the most recent results for one job.
type JobHistory struct {
	Results []JobResult
}

// AddResult appends a result, dropping the oldest beyond the cap.
func (h *JobHistory) AddResult(result JobResult) {
	h.Results = append(h.Results, result)

	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Last returns the most recent result, or nil when the job has not
// run yet.
func (h *JobHistory) Last() *JobResult {
	if len(h.Results) == 0 {
		return nil
	}
	last := h.Results[len(h.Results)-1]
	return &last
}

// FailureCount returns how many recorded runs failed.
func (h *JobHistory) FailureCount() int {
	failures := 0
	for _, result := range h.Results {
		if !result.Success {
			failures++
		}
	}
	return failures
}

// SuccessRate returns the fraction of recorded runs that succeeded.
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0.0
	}
	return float64(len(h.Results)-h.FailureCount()) / float64(len(h.Results))
}
