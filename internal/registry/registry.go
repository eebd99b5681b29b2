// Package registry holds the process-wide, in-memory job table. It is the
// only state shared between the HTTP layer, the orchestrator, and workers,
// so every entry point serializes access internally.
package registry

import (
	"fmt"
	"sync"

	"github.com/akashstwt/scraper-backend/internal/models"
)

// ErrNotFound is returned when a job id is not present in the registry
var ErrNotFound = fmt.Errorf("job not found")

// Registry owns all Job records. Workers are only permitted to increment
// progress; all other mutation goes through Mutate, which is reserved for
// the orchestrator.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

// New creates an empty job registry
func New() *Registry {
	return &Registry{
		jobs: make(map[string]*models.Job),
	}
}

// Create stores a new job record. Returns an error if the id already exists.
func (r *Registry) Create(job *models.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.ID]; exists {
		return fmt.Errorf("job %s already exists", job.ID)
	}
	r.jobs[job.ID] = job
	return nil
}

// Get returns a snapshot of the job with the given id. Callers receive a
// copy; mutating it does not affect the registry.
func (r *Registry) Get(id string) (models.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[id]
	if !ok {
		return models.Job{}, ErrNotFound
	}
	return *job, nil
}

// Mutate applies fn to the job under the registry lock. Used by the
// orchestrator for status and message transitions.
func (r *Registry) Mutate(id string, fn func(*models.Job)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	fn(job)
	return nil
}

// IncrementProgress atomically bumps the progress counter by one. This is
// the only registry operation workers are allowed to call; increments from
// concurrent workers are never lost.
func (r *Registry) IncrementProgress(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return ErrNotFound
	}
	job.Progress.Current++
	return nil
}

// Len returns the number of job records held
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}
