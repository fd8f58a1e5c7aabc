// Package testutil provides fakes shared by engine tests.
package testutil

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"go.trai.ch/rtosm/internal/core/ports"
)

// Runner is a ports.ProcessRunner that never spawns anything. Processes stay
// running until the test completes them, unless OnStart does so.
type Runner struct {
	// OnStart, when set, is called with every started process.
	OnStart func(p *Process)

	mu      sync.Mutex
	started []*Process
}

var _ ports.ProcessRunner = (*Runner)(nil)

// Start records cmd and returns a pending process.
func (r *Runner) Start(_ context.Context, cmd ports.Command) ports.Process {
	r.mu.Lock()
	p := &Process{
		id:   strconv.Itoa(len(r.started) + 1),
		cmd:  cmd,
		done: make(chan ports.Outcome, 1),
	}
	r.started = append(r.started, p)
	hook := r.OnStart
	r.mu.Unlock()

	if hook != nil {
		hook(p)
	}
	return p
}

// Started returns every process started so far, oldest first.
func (r *Runner) Started() []*Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Process(nil), r.started...)
}

// Kinds returns the kinds of all started processes, oldest first.
func (r *Runner) Kinds() []ports.ProcessKind {
	var kinds []ports.ProcessKind
	for _, p := range r.Started() {
		kinds = append(kinds, p.Kind())
	}
	return kinds
}

// Last returns the most recently started process, or nil.
func (r *Runner) Last() *Process {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.started) == 0 {
		return nil
	}
	return r.started[len(r.started)-1]
}

// Running returns the processes that have not completed yet.
func (r *Runner) Running() []*Process {
	var running []*Process
	for _, p := range r.Started() {
		if !p.Finished() {
			running = append(running, p)
		}
	}
	return running
}

// Process is a ports.Process completed by the test.
type Process struct {
	id   string
	cmd  ports.Command
	done chan ports.Outcome

	once     sync.Once
	finished atomic.Bool
	killed   atomic.Bool
}

var _ ports.Process = (*Process)(nil)

func (p *Process) ID() string                 { return p.id }
func (p *Process) Kind() ports.ProcessKind    { return p.cmd.Kind }
func (p *Process) Done() <-chan ports.Outcome { return p.done }

// Command returns the command the process was started with.
func (p *Process) Command() ports.Command { return p.cmd }

// Kill completes the process with OutcomeKilled.
func (p *Process) Kill() {
	p.killed.Store(true)
	p.Complete(ports.Outcome{Kind: ports.OutcomeKilled, ExitCode: -1})
}

// Killed reports whether Kill was called.
func (p *Process) Killed() bool { return p.killed.Load() }

// Finished reports whether an outcome was delivered.
func (p *Process) Finished() bool { return p.finished.Load() }

// Complete delivers out. Only the first call has an effect.
func (p *Process) Complete(out ports.Outcome) {
	p.once.Do(func() {
		p.finished.Store(true)
		p.done <- out
		close(p.done)
	})
}

// Succeed completes the process with OutcomeSuccess.
func (p *Process) Succeed() { p.Complete(ports.Outcome{Kind: ports.OutcomeSuccess}) }

// Fail completes the process with OutcomeFailed and exit code 1.
func (p *Process) Fail() {
	p.Complete(ports.Outcome{Kind: ports.OutcomeFailed, ExitCode: 1, Output: "boom"})
}
