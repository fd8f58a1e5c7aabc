package domain

// WorkerState is the lifecycle state of a task worker.
type WorkerState uint8

const (
	// StateIdle means no process is in flight for the task.
	StateIdle WorkerState = iota
	// StateAcquiringInitial means the first extract is being downloaded or cut from the planet.
	StateAcquiringInitial
	// StateClipping means the extract is being clipped to the task coverage.
	StateClipping
	// StateUpdating means an incremental update is running and holds a limiter slot.
	StateUpdating
	// StateTerminated is absorbing: timers are cancelled and the worker is discarded.
	StateTerminated
)

func (s WorkerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiringInitial:
		return "acquiring"
	case StateClipping:
		return "clipping"
	case StateUpdating:
		return "updating"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// WorkerStatus is a point-in-time view of one worker, used for status reporting.
type WorkerStatus struct {
	TaskID int64  `json:"task_id"`
	Name   string `json:"name"`
	State  string `json:"state"`
	URL    string `json:"url"`
}
