// Package shell provides the process runner adapter.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/rtosm/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	defaultTailSize = 64 << 10
	killWaitDelay   = 10 * time.Second
)

// Runner implements ports.ProcessRunner using os/exec.
type Runner struct {
	logger   ports.Logger
	tailSize int
}

var _ ports.ProcessRunner = (*Runner)(nil)

// NewRunner creates a new Runner that streams tool output to the debug log.
func NewRunner(logger ports.Logger) *Runner {
	return &Runner{
		logger:   logger,
		tailSize: defaultTailSize,
	}
}

// Start spawns the command. Spawn failures are delivered as OutcomeFailed.
func (r *Runner) Start(ctx context.Context, c ports.Command) ports.Process {
	pctx, cancel := context.WithCancel(ctx)
	p := &process{
		id:     uuid.NewString(),
		kind:   c.Kind,
		cancel: cancel,
		done:   make(chan ports.Outcome, 1),
	}

	cmd := exec.CommandContext(pctx, c.Name, c.Args...) //nolint:gosec // tool paths come from config
	cmd.Dir = c.Dir
	cmd.WaitDelay = killWaitDelay
	configureProcessGroup(cmd)

	tail := newTailBuffer(r.tailSize)
	lw := &logWriter{logger: r.logger, prefix: string(c.Kind) + " " + p.id[:8] + ": "}
	out := &combinedWriter{tail: tail, log: lw}
	cmd.Stdout = out
	cmd.Stderr = out

	r.logger.Debug("starting " + string(c.Kind) + " " + p.id[:8] + ": " + c.String())

	if err := cmd.Start(); err != nil {
		cancel()
		p.finish(ports.Outcome{
			Kind:     ports.OutcomeFailed,
			ExitCode: -1,
			Err:      zerr.With(zerr.Wrap(err, domain.ErrProcessStartFailed.Error()), "command", c.Name),
		})
		return p
	}

	go func() {
		waitErr := cmd.Wait()
		_ = lw.Close()
		cancel()
		killed := p.killed.Load() || ctx.Err() != nil
		p.finish(classify(c, waitErr, tail.String(), killed))
	}()

	return p
}

// classify maps the end of a process to an outcome. Order matters: a kill
// wins over everything, and a noop marker wins over a non-zero exit.
func classify(c ports.Command, waitErr error, output string, killed bool) ports.Outcome {
	exitCode := 0
	if waitErr != nil {
		exitCode = -1
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		}
	}

	outcome := ports.Outcome{ExitCode: exitCode, Output: output}
	switch {
	case killed:
		outcome.Kind = ports.OutcomeKilled
	case c.NoopMarker != "" && strings.Contains(output, c.NoopMarker):
		outcome.Kind = ports.OutcomeNoop
	case waitErr != nil:
		outcome.Kind = ports.OutcomeFailed
		outcome.Err = zerr.With(zerr.Wrap(waitErr, domain.ErrProcessFailed.Error()), "exit_code", exitCode)
	case c.SuccessMarker != "" && !strings.Contains(output, c.SuccessMarker):
		outcome.Kind = ports.OutcomeFailed
		outcome.Err = zerr.With(domain.ErrUnexpectedOutput, "marker", c.SuccessMarker)
	default:
		outcome.Kind = ports.OutcomeSuccess
	}
	return outcome
}

type process struct {
	id     string
	kind   ports.ProcessKind
	cancel context.CancelFunc
	killed atomic.Bool
	done   chan ports.Outcome
	once   sync.Once
}

func (p *process) ID() string              { return p.id }
func (p *process) Kind() ports.ProcessKind { return p.kind }
func (p *process) Done() <-chan ports.Outcome {
	return p.done
}

// Kill terminates the process group. Safe to call more than once and after exit.
func (p *process) Kill() {
	p.killed.Store(true)
	p.cancel()
}

func (p *process) finish(o ports.Outcome) {
	p.once.Do(func() {
		p.done <- o
		close(p.done)
	})
}

// combinedWriter receives both stdout and stderr. os/exec serializes writes
// when the same writer is used for both streams.
type combinedWriter struct {
	tail *tailBuffer
	log  *logWriter
}

func (w *combinedWriter) Write(p []byte) (int, error) {
	_, _ = w.tail.Write(p)
	return w.log.Write(p)
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	buf []byte
	max int
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{max: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.max; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	return string(t.buf)
}

type logWriter struct {
	logger ports.Logger
	prefix string
	buf    []byte
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.logLine(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	return len(p), nil
}

func (w *logWriter) Close() error {
	if len(w.buf) > 0 {
		w.logLine(w.buf)
		w.buf = nil
	}
	return nil
}

func (w *logWriter) logLine(line []byte) {
	msg := strings.TrimSuffix(string(line), "\r")
	if strings.TrimSpace(msg) == "" {
		return
	}
	w.logger.Debug(w.prefix + msg)
}
