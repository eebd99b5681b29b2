package models

import (
	"time"
)

// JobStatus represents the state of a scrape job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IsTerminal reports whether the status is a terminal state. Failed jobs are
// never retried automatically; clients resubmit.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobProgress tracks completion of a scrape job. Total is fixed when the code
// list is known; Current counts processed codes (not per-source lookups) and
// only ever increases.
type JobProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Job represents one scraping run. Jobs live only in the registry's memory;
// there is no persistence and no cleanup of finished jobs.
type Job struct {
	ID        string      `json:"id"`
	Status    JobStatus   `json:"status"`
	Progress  JobProgress `json:"progress"`
	Message   string      `json:"message"` // Latest human-readable status line
	Email     string      `json:"email"`   // Delivery destination
	CreatedAt time.Time   `json:"created_at"`
}

// NewJob creates a queued job record
func NewJob(id, email string) *Job {
	return &Job{
		ID:        id,
		Status:    JobStatusPending,
		Progress:  JobProgress{},
		Message:   "Job queued",
		Email:     email,
		CreatedAt: time.Now(),
	}
}
