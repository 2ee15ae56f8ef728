package models

import "time"

// Pipeline stage identifiers used in StageError records.
const (
	StageScraping      = "scraping"
	StageSummarization = "summarization"
	StageStorage       = "storage"
)

// StageError records a single per-item stage failure. Errors are accumulated
// by the orchestrator and never retried within a run.
type StageError struct {
	Stage      string
	ArticleURL string
	Message    string
	Timestamp  time.Time
}

// RunReport is the aggregate outcome of one pipeline execution.
type RunReport struct {
	RunID      string
	Collected  int
	Scraped    int
	Classified int
	Summarized int
	Stored     int
	Errors     []StageError
	StartedAt  time.Time
	FinishedAt time.Time
}

// ErrorsByStage groups the accumulated errors by stage name.
func (r RunReport) ErrorsByStage() map[string]int {
	counts := make(map[string]int)
	for _, e := range r.Errors {
		counts[e.Stage]++
	}
	return counts
}
