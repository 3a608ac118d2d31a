package core

import "time"

// Store defines the interface for run-history operations.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema() error

	CreateRun(run *Run) error
	CompleteRun(id string, outcome RunOutcome) error
	GetRun(id string) (*Run, error)
	GetLatestRun(env string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)
}

// RunStatus represents the status of a calendar run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// Run represents one full-replace execution of the calendar dimension.
type Run struct {
	ID          string     `json:"id"`
	Environment string     `json:"environment"`
	Destination string     `json:"destination"`
	Status      RunStatus  `json:"status"`
	StartDate   time.Time  `json:"start_date"`
	RowLimit    int        `json:"row_limit"`
	Watermark   *time.Time `json:"watermark,omitempty"`
	RowsWritten int64      `json:"rows_written"`
	Truncated   bool       `json:"truncated"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// RunOutcome holds the fields recorded when a run finishes.
type RunOutcome struct {
	Status      RunStatus
	Watermark   *time.Time
	RowsWritten int64
	Truncated   bool
	Error       string
}
