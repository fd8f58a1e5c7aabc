// Package worker implements the per-task state machine that acquires, clips and
// updates one extract.
//
// A Worker is not safe for concurrent use. Every method, timer callback and
// process completion runs on the controller loop.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/rtosm/internal/core/ports"
	"go.trai.ch/rtosm/internal/engine/matcher"
	"go.trai.ch/zerr"
)

// Limiter caps the number of concurrent updates.
type Limiter interface {
	TryAcquire() bool
	Release()
}

// Dispatcher runs closures on the controller loop. Post reports false once the
// loop has stopped and the closure will never run.
type Dispatcher interface {
	Post(fn func()) bool
}

// CatalogSource returns the live region catalog, nil while unavailable.
type CatalogSource interface {
	Snapshot() *domain.Catalog
}

// Settings are the tunables shared by all workers.
type Settings struct {
	WorkDir          string
	BaseURL          string
	PlanetFile       string
	DataAgeThreshold time.Duration
	CapacityRetry    time.Duration
}

// Env bundles the collaborators shared by all workers.
type Env struct {
	Runner   ports.ProcessRunner
	Tools    ports.Toolchain
	Poly     ports.PolyEncoder
	Store    ports.TaskStore
	Catalog  CatalogSource
	Limiter  Limiter
	Loop     Dispatcher
	Metrics  ports.Metrics
	Logger   ports.Logger
	Settings Settings
	Now      func() time.Time
}

// inflight is the single process a worker may have running.
type inflight struct {
	proc    ports.Process
	scratch []string
	onDone  func(ports.Outcome)
	settled chan struct{}
}

// Worker keeps the extract of one task current.
type Worker struct {
	ctx  context.Context
	env  *Env
	task domain.Task

	state    domain.WorkerState
	inflight *inflight

	ticker   *time.Timer
	retry    *time.Timer
	retryGen uint64
	backoff  backoff.BackOff
}

// New creates an idle worker for task. ctx scopes every process and store call.
func New(ctx context.Context, env *Env, task domain.Task) *Worker {
	if env.Now == nil {
		env.Now = time.Now
	}
	return &Worker{
		ctx:     ctx,
		env:     env,
		task:    task,
		state:   domain.StateIdle,
		backoff: backoff.NewConstantBackOff(env.Settings.CapacityRetry),
	}
}

// ID returns the task id.
func (w *Worker) ID() int64 { return w.task.ID }

// Task returns the current task snapshot.
func (w *Worker) Task() domain.Task { return w.task }

// State returns the current lifecycle state.
func (w *Worker) State() domain.WorkerState { return w.state }

// Status returns a point-in-time view for status reporting.
func (w *Worker) Status() domain.WorkerStatus {
	return domain.WorkerStatus{
		TaskID: w.task.ID,
		Name:   w.task.Name,
		State:  w.state.String(),
		URL:    w.task.URL,
	}
}

// Start arms the periodic update timer and acquires the extract when it is missing.
func (w *Worker) Start() {
	if w.task.URL == "" {
		w.logError(zerr.With(domain.ErrMissingURL, "task_id", w.task.ID))
		w.Terminate()
		return
	}

	w.armTicker()
	if _, ok := exists(w.task.URL); !ok {
		w.acquire()
	}
}

// Update brings the extract up to date. It does nothing unless the worker is idle.
func (w *Worker) Update() {
	if w.state != domain.StateIdle {
		w.debug("update skipped, worker is " + w.state.String())
		return
	}

	if !w.env.Limiter.TryAcquire() {
		w.scheduleRetry()
		return
	}

	info, ok := exists(w.task.URL)
	if !ok || w.env.Now().Sub(info.ModTime()) > w.env.Settings.DataAgeThreshold || w.task.Coverage.Geometry() == nil {
		w.env.Limiter.Release()
		w.acquire()
		return
	}

	w.startUpdate()
}

// Terminate kills any running process, cancels the timers and removes the extract.
// The worker is discarded afterwards. Calling it again has no effect.
func (w *Worker) Terminate() {
	if w.state == domain.StateTerminated {
		return
	}
	w.shutdown()
	removeFiles(w.env.Logger, w.task.URL)
}

// Stop is Terminate without removing the extract. The returned channel is
// closed once the killed process, if any, has exited and its side files are gone.
func (w *Worker) Stop() <-chan struct{} {
	return w.shutdown()
}

func (w *Worker) shutdown() <-chan struct{} {
	settled := make(chan struct{})
	if w.ticker != nil {
		w.ticker.Stop()
	}
	w.cancelRetry()

	if fl := w.inflight; fl != nil {
		w.inflight = nil
		settled = fl.settled
		fl.proc.Kill()
	} else {
		close(settled)
	}

	if w.state != domain.StateTerminated {
		w.setState(domain.StateTerminated)
	}
	return settled
}

func (w *Worker) armTicker() {
	w.ticker = time.AfterFunc(w.task.Interval(), func() {
		w.env.Loop.Post(func() {
			if w.state == domain.StateTerminated {
				return
			}
			w.armTicker()
			w.Update()
		})
	})
}

// scheduleRetry replaces any pending capacity retry with a new one.
func (w *Worker) scheduleRetry() {
	w.cancelRetry()
	gen := w.retryGen
	delay := w.backoff.NextBackOff()

	w.info(fmt.Sprintf("update capacity reached, retrying in %s", delay))
	w.retry = time.AfterFunc(delay, func() {
		w.env.Loop.Post(func() {
			if gen != w.retryGen || w.state == domain.StateTerminated {
				return
			}
			w.retry = nil
			w.Update()
		})
	})
}

func (w *Worker) cancelRetry() {
	w.retryGen++
	if w.retry != nil {
		w.retry.Stop()
		w.retry = nil
	}
}

func (w *Worker) setState(to domain.WorkerState) bool {
	from := w.state
	if !CanTransition(from, to) {
		w.logError(zerr.With(zerr.With(domain.ErrInvalidTransition, "from", from.String()), "to", to.String()))
		return false
	}
	w.state = to
	if from == domain.StateUpdating {
		w.env.Limiter.Release()
	}
	w.debug(from.String() + " -> " + to.String())
	return true
}

// start runs cmd as the single in-flight process. scratch lists the files the
// step creates; they are removed when the process is killed or superseded.
func (w *Worker) start(cmd ports.Command, scratch []string, onDone func(ports.Outcome)) {
	fl := &inflight{
		proc:    w.env.Runner.Start(w.ctx, cmd),
		scratch: scratch,
		onDone:  onDone,
		settled: make(chan struct{}),
	}
	w.inflight = fl
	w.debug(fmt.Sprintf("started %s: %s", cmd.Kind, cmd))

	go func() {
		out := <-fl.proc.Done()
		if !w.env.Loop.Post(func() { w.complete(fl, out) }) {
			removeFiles(w.env.Logger, fl.scratch...)
			close(fl.settled)
		}
	}()
}

func (w *Worker) complete(fl *inflight, out ports.Outcome) {
	defer close(fl.settled)

	if w.inflight != fl || w.state == domain.StateTerminated || out.Kind == ports.OutcomeKilled {
		removeFiles(w.env.Logger, fl.scratch...)
		if w.inflight == fl {
			w.inflight = nil
			w.setState(domain.StateIdle)
		}
		return
	}

	w.inflight = nil
	fl.onDone(out)
}

func (w *Worker) startUpdate() {
	tempDir := domain.UpdateTempDir(w.env.Settings.WorkDir, w.task.ID)
	if err := os.MkdirAll(tempDir, domain.DirPerm); err != nil {
		w.env.Limiter.Release()
		w.logError(zerr.Wrap(err, domain.ErrProcessStartFailed.Error()))
		return
	}

	side := domain.SideFile(w.task.URL, domain.UpdatePrefix)
	started := w.env.Now()
	w.setState(domain.StateUpdating)
	w.start(w.env.Tools.Update(w.task.URL, side, tempDir), []string{side}, func(out ports.Outcome) {
		w.updateDone(out, side, started)
	})
}

func (w *Worker) updateDone(out ports.Outcome, side string, started time.Time) {
	w.env.Metrics.ObserveUpdate(out.Kind.String(), w.env.Now().Sub(started))

	switch out.Kind {
	case ports.OutcomeNoop:
		w.info("extract already up to date")
		removeFiles(w.env.Logger, side)
		w.setState(domain.StateIdle)
	case ports.OutcomeSuccess:
		if err := replace(side, w.task.URL); err != nil {
			w.logError(err)
			removeFiles(w.env.Logger, side)
			w.setState(domain.StateIdle)
			return
		}
		w.clip(func() { w.recordStats(started) })
	default:
		w.warn("update failed", out)
		removeFiles(w.env.Logger, side)
		w.setState(domain.StateIdle)
	}
}

// clip cuts the extract down to the task coverage and runs then on success.
func (w *Worker) clip(then func()) {
	if !w.setState(domain.StateClipping) {
		return
	}

	poly, err := w.env.Poly.Encode(w.task.ID, w.task.Name, w.task.Coverage.Geometry())
	if err != nil {
		w.logError(err)
		w.setState(domain.StateIdle)
		return
	}

	side := domain.SideFile(w.task.URL, domain.ClipPrefix)
	w.start(w.env.Tools.Clip(w.task.URL, poly, side), []string{poly, side}, func(out ports.Outcome) {
		if out.Kind != ports.OutcomeSuccess {
			w.warn("clip failed", out)
			removeFiles(w.env.Logger, poly, side)
			w.setState(domain.StateIdle)
			return
		}
		if err := replace(side, w.task.URL); err != nil {
			w.logError(err)
			removeFiles(w.env.Logger, poly, side)
			w.setState(domain.StateIdle)
			return
		}
		removeFiles(w.env.Logger, poly)
		if then != nil {
			then()
		}
		w.setState(domain.StateIdle)
	})
}

func (w *Worker) recordStats(started time.Time) {
	now := w.env.Now()
	id := w.task.ID

	if err := w.env.Store.AppendStat(w.ctx, id, now, now.Sub(started)); err != nil {
		w.logError(err)
	}
	if err := w.env.Store.SetAverageRuntime(w.ctx, id); err != nil {
		w.logError(err)
	}
	if err := w.env.Store.UpdateTaskField(w.ctx, id, domain.FieldLastUpdated, now); err != nil {
		w.logError(err)
	}
	w.task.LastUpdated = &now
	w.info(fmt.Sprintf("extract updated in %s", now.Sub(started).Round(time.Millisecond)))
}

// acquire downloads the regional extract that covers the task, or cuts it
// from the planet file when no region matches.
func (w *Worker) acquire() {
	if !w.setState(domain.StateAcquiringInitial) {
		return
	}

	m, ok := matcher.FindExtract(w.task.Coverage, w.env.Catalog.Snapshot())
	if !ok {
		w.acquireFromPlanet()
		return
	}

	if w.task.Coverage.IsRegionCode() {
		resolved := domain.GeometryCoverage(m.Name, m.Geometry)
		if err := w.env.Store.UpdateTaskField(w.ctx, w.task.ID, domain.FieldCoverage, resolved); err != nil {
			w.logError(err)
		}
		w.task.Coverage = resolved
		w.info("region code resolved to " + m.Name)
	}

	if err := os.MkdirAll(filepath.Dir(w.task.URL), domain.DirPerm); err != nil {
		w.logError(zerr.Wrap(err, domain.ErrProcessStartFailed.Error()))
		w.setState(domain.StateIdle)
		return
	}

	url := strings.TrimSuffix(w.env.Settings.BaseURL, "/") + "/" + m.Name + "-latest" + domain.ExtractSuffix
	side := domain.SideFile(w.task.URL, domain.UpdatePrefix)
	w.info("downloading " + url)
	w.start(w.env.Tools.Download(url, side), []string{side}, func(out ports.Outcome) {
		if out.Kind != ports.OutcomeSuccess {
			w.warn("download failed", out)
			removeFiles(w.env.Logger, side)
			w.setState(domain.StateIdle)
			return
		}
		if err := replace(side, w.task.URL); err != nil {
			w.logError(err)
			removeFiles(w.env.Logger, side)
			w.setState(domain.StateIdle)
			return
		}
		w.clip(nil)
	})
}

func (w *Worker) acquireFromPlanet() {
	g := w.task.Coverage.Geometry()
	if g == nil {
		w.logError(zerr.With(domain.ErrCoverageUnresolved, "region", w.task.Coverage.Region))
		w.Terminate()
		return
	}

	planet := w.env.Settings.PlanetFile
	if _, ok := exists(planet); planet == "" || !ok {
		w.logError(zerr.With(domain.ErrNoExtractSource, "planet_file", planet))
		w.Terminate()
		return
	}

	poly, err := w.env.Poly.Encode(w.task.ID, w.task.Name, g)
	if err != nil {
		w.logError(err)
		w.Terminate()
		return
	}

	side := domain.SideFile(w.task.URL, domain.UpdatePrefix)
	w.info("no region covers the task, extracting from " + planet)
	w.start(w.env.Tools.PlanetExtract(planet, poly, side), []string{poly, side}, func(out ports.Outcome) {
		if out.Kind != ports.OutcomeSuccess {
			w.warn("planet extract failed", out)
			removeFiles(w.env.Logger, poly, side)
			w.Terminate()
			return
		}
		if err := replace(side, w.task.URL); err != nil {
			w.logError(err)
			removeFiles(w.env.Logger, poly, side)
			w.setState(domain.StateIdle)
			return
		}
		removeFiles(w.env.Logger, poly)
		w.setState(domain.StateIdle)
	})
}

func (w *Worker) prefix() string {
	return fmt.Sprintf("task %d (%s): ", w.task.ID, w.task.Name)
}

func (w *Worker) debug(msg string) { w.env.Logger.Debug(w.prefix() + msg) }
func (w *Worker) info(msg string)  { w.env.Logger.Info(w.prefix() + msg) }

func (w *Worker) warn(msg string, out ports.Outcome) {
	detail := fmt.Sprintf("%s (%s, exit code %d)", msg, out.Kind, out.ExitCode)
	if out.Err != nil {
		detail += ": " + out.Err.Error()
	}
	w.env.Logger.Warn(w.prefix() + detail)
}

func (w *Worker) logError(err error) {
	w.env.Logger.Error(zerr.With(zerr.With(err, "task_id", w.task.ID), "task", w.task.Name))
}
