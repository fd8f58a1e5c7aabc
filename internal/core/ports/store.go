package ports

import (
	"context"
	"time"

	"go.trai.ch/rtosm/internal/core/domain"
)

// TaskStore is the part of the task store the reconciliation core uses.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type TaskStore interface {
	// ListTasks returns every stored task.
	ListTasks(ctx context.Context) ([]domain.Task, error)

	// DeleteTask removes a task and its statistics.
	DeleteTask(ctx context.Context, id int64) error

	// UpdateTaskField writes a single field of a task. The value type depends on
	// the field: domain.Coverage, time.Time or string.
	UpdateTaskField(ctx context.Context, id int64, field domain.TaskField, value any) error

	// AppendStat records the duration of one update.
	AppendStat(ctx context.Context, id int64, ts time.Time, elapsed time.Duration) error

	// SetAverageRuntime recomputes the average update duration of a task.
	SetAverageRuntime(ctx context.Context, id int64) error
}

// TaskRepository adds the administrative operations used by the CLI.
type TaskRepository interface {
	TaskStore

	// CreateTask stores a new task and assigns its extract path.
	CreateTask(ctx context.Context, task domain.NewTask) (domain.Task, error)

	// GetTask returns a single task.
	GetTask(ctx context.Context, id int64) (domain.Task, error)

	// ListStats returns the recorded update durations of a task, oldest first.
	ListStats(ctx context.Context, id int64) ([]domain.Stat, error)

	// Close releases the underlying database.
	Close() error
}

// RepositoryOpener opens the task repository described by a configuration.
type RepositoryOpener interface {
	Open(ctx context.Context, cfg *domain.Config) (TaskRepository, error)
}
