package contracts

import "time"

// Result is a finished screening run: the full ranking plus run
// statistics. An all-excluded universe yields an empty Rows slice
// with populated Stats, which is a valid result, not an error.
type Result struct {
	Model     string        `json:"model"`
	Spec      RankingSpec   `json:"spec"`
	StartedAt time.Time     `json:"started_at"`
	Elapsed   time.Duration `json:"elapsed"`
	Rows      []Row         `json:"rows"`
	Stats     RunStats      `json:"stats"`
}

// TopRows returns the first n rows of the ranking. The full ranking
// stays intact; this is a view, not a mutation.
func (r *Result) TopRows(n int) []Row {
	if n < 0 {
		n = 0
	}
	if n > len(r.Rows) {
		n = len(r.Rows)
	}
	return r.Rows[:n]
}

// IsEmpty reports whether every symbol was excluded.
func (r *Result) IsEmpty() bool {
	return len(r.Rows) == 0
}
