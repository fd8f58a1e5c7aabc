package domain

import (
	"regexp"
	"time"
)

// DefaultUpdateInterval is the refresh cadence for tasks that do not specify one.
const DefaultUpdateInterval = 600 * time.Second

var taskNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// TaskField names a task column that the core is allowed to write back.
type TaskField string

const (
	// FieldCoverage holds the task coverage as JSON.
	FieldCoverage TaskField = "coverage"
	// FieldLastUpdated holds the time of the last successful update.
	FieldLastUpdated TaskField = "lastUpdated"
	// FieldURL holds the extract path.
	FieldURL TaskField = "URL"
)

// Task is a named polygon of interest whose extract is kept up to date on disk.
type Task struct {
	ID             int64
	Name           string
	Coverage       Coverage
	URL            string
	ExpirationDate *time.Time
	UpdateInterval time.Duration
	LastUpdated    *time.Time
	AddedDate      *time.Time
	AverageRuntime time.Duration
}

// Expired reports whether the task expiration date lies before now.
func (t Task) Expired(now time.Time) bool {
	return t.ExpirationDate != nil && t.ExpirationDate.Before(now)
}

// Interval returns the update interval, falling back to DefaultUpdateInterval.
func (t Task) Interval() time.Duration {
	if t.UpdateInterval <= 0 {
		return DefaultUpdateInterval
	}
	return t.UpdateInterval
}

// NewTask describes a task to be created in the store.
type NewTask struct {
	Name           string
	Coverage       Coverage
	ExpirationDate *time.Time
	UpdateInterval time.Duration
}

// Validate checks the fields the store cannot repair on its own.
func (n NewTask) Validate() error {
	if !taskNamePattern.MatchString(n.Name) {
		return ErrInvalidTaskName
	}
	if n.Coverage.IsZero() {
		return ErrInvalidCoverage
	}
	return nil
}

// Stat is a single recorded update duration of a task.
type Stat struct {
	TaskID    int64
	Timestamp time.Time
	Timing    time.Duration
}
