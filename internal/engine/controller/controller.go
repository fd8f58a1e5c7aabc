// Package controller reconciles the stored tasks with the set of running workers.
package controller

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/rtosm/internal/core/ports"
	"go.trai.ch/rtosm/internal/engine/worker"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// DefaultShutdownTimeout bounds how long shutdown waits for killed processes.
const DefaultShutdownTimeout = 30 * time.Second

// Catalog is the region catalog the controller keeps fresh.
type Catalog interface {
	worker.CatalogSource
	Refresh(ctx context.Context) error
	RefreshWithRetry(ctx context.Context) error
}

// Deps are the collaborators of a Controller. Watcher may be nil.
type Deps struct {
	Runner  ports.ProcessRunner
	Tools   ports.Toolchain
	Poly    ports.PolyEncoder
	Store   ports.TaskStore
	Catalog Catalog
	Watcher ports.Watcher
	Metrics ports.Metrics
	Logger  ports.Logger
}

// Controller owns the worker registry and the event loop every worker runs on.
type Controller struct {
	loop    *Loop
	limiter *Limiter
	env     *worker.Env

	store   ports.TaskStore
	catalog Catalog
	watcher ports.Watcher
	metrics ports.Metrics
	logger  ports.Logger

	dataDir         string
	workDir         string
	syncInterval    time.Duration
	refreshInterval time.Duration
	shutdownTimeout time.Duration
	now             func() time.Time

	// Owned by the loop.
	ctx     context.Context
	workers map[int64]*worker.Worker
	lastSet string
}

// New creates a Controller from the service configuration.
func New(cfg *domain.Config, deps Deps) *Controller {
	c := &Controller{
		loop:            NewLoop(),
		limiter:         NewLimiter(cfg.Update.MaxParallel, deps.Metrics),
		store:           deps.Store,
		catalog:         deps.Catalog,
		watcher:         deps.Watcher,
		metrics:         deps.Metrics,
		logger:          deps.Logger,
		dataDir:         cfg.DataDir,
		workDir:         cfg.WorkDir,
		syncInterval:    cfg.Controller.SyncInterval,
		refreshInterval: cfg.Catalog.RefreshInterval,
		shutdownTimeout: DefaultShutdownTimeout,
		now:             time.Now,
		ctx:             context.Background(),
		workers:         make(map[int64]*worker.Worker),
	}

	c.env = &worker.Env{
		Runner:  deps.Runner,
		Tools:   deps.Tools,
		Poly:    deps.Poly,
		Store:   deps.Store,
		Catalog: deps.Catalog,
		Limiter: c.limiter,
		Loop:    c.loop,
		Metrics: deps.Metrics,
		Logger:  deps.Logger,
		Settings: worker.Settings{
			WorkDir:          cfg.WorkDir,
			BaseURL:          cfg.Extracts.BaseURL,
			PlanetFile:       cfg.Extracts.PlanetFile,
			DataAgeThreshold: cfg.Update.DataAgeThreshold,
			CapacityRetry:    cfg.Update.CapacityRetry,
		},
		Now: func() time.Time { return c.now() },
	}
	return c
}

// Run drives the controller until ctx is done, then stops every worker and
// removes the scratch files they leave behind.
func (c *Controller) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	c.ctx = gctx

	ready := make(chan struct{})

	g.Go(func() error {
		return c.loop.Run(gctx)
	})
	g.Go(func() error {
		c.runCatalog(gctx, ready)
		return nil
	})
	g.Go(func() error {
		select {
		case <-ready:
		case <-gctx.Done():
			return nil
		}
		c.runSync(gctx)
		return nil
	})
	if c.watcher != nil {
		g.Go(func() error {
			c.runWatcher(gctx)
			return nil
		})
	}

	err := g.Wait()
	return errors.Join(err, c.shutdown())
}

// Workers returns the status of every registered worker ordered by task id.
func (c *Controller) Workers(ctx context.Context) ([]domain.WorkerStatus, error) {
	var out []domain.WorkerStatus
	err := c.loop.Call(ctx, func() {
		out = c.snapshot()
	})
	return out, err
}

func (c *Controller) snapshot() []domain.WorkerStatus {
	out := make([]domain.WorkerStatus, 0, len(c.workers))
	for _, id := range slices.Sorted(maps.Keys(c.workers)) {
		out = append(out, c.workers[id].Status())
	}
	return out
}

// runCatalog makes one refresh attempt before releasing the first sync. When
// that attempt fails the retries run while workers already reconcile.
func (c *Controller) runCatalog(ctx context.Context, ready chan<- struct{}) {
	err := c.catalog.Refresh(ctx)
	close(ready)
	if err != nil && ctx.Err() == nil {
		c.logger.Warn("region catalog unavailable, retrying: " + err.Error())
		if err := c.catalog.RefreshWithRetry(ctx); err != nil && ctx.Err() == nil {
			c.logger.Error(err)
		}
	}

	ticker := time.NewTicker(c.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.catalog.Refresh(ctx); err != nil && ctx.Err() == nil {
				c.logger.Error(err)
			}
		}
	}
}

func (c *Controller) runSync(ctx context.Context) {
	c.sync(ctx)

	ticker := time.NewTicker(c.syncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.sync(ctx)
		}
	}
}

// sync lists the tasks off the loop and reconciles on it.
func (c *Controller) sync(ctx context.Context) {
	tasks, err := c.store.ListTasks(ctx)
	if err != nil {
		if ctx.Err() == nil {
			c.logger.Error(err)
		}
		return
	}
	c.loop.Post(func() { c.reconcile(tasks) })
}

func (c *Controller) runWatcher(ctx context.Context) {
	if err := c.watcher.Start(ctx, c.dataDir); err != nil {
		c.logger.Warn("extract watcher disabled: " + err.Error())
		return
	}
	defer func() {
		if err := c.watcher.Stop(); err != nil {
			c.logger.Error(err)
		}
	}()

	for ev := range c.watcher.Events() {
		if ev.Operation != ports.OpRemove && ev.Operation != ports.OpRename {
			continue
		}
		path := ev.Path
		c.loop.Post(func() { c.extractRemoved(path) })
	}
}

// extractRemoved asks the worker owning path to fetch its extract again.
func (c *Controller) extractRemoved(path string) {
	for _, w := range c.workers {
		if samePath(w.Task().URL, path) {
			c.logger.Info(fmt.Sprintf("extract of task %d removed", w.ID()))
			w.Update()
		}
	}
}

// reconcile brings the registry in line with the stored tasks. It runs on the loop.
func (c *Controller) reconcile(tasks []domain.Task) {
	now := c.now()

	fetched := make(map[int64]domain.Task, len(tasks))
	for _, t := range tasks {
		fetched[t.ID] = t
	}

	for id, w := range c.workers {
		if w.State() == domain.StateTerminated {
			delete(c.workers, id)
		}
	}

	for id, w := range c.workers {
		t, ok := fetched[id]
		if !ok {
			t = w.Task()
		}
		if !t.Expired(now) {
			continue
		}
		c.expire(t)
		delete(fetched, id)
		w.Terminate()
		delete(c.workers, id)
	}

	for id, w := range c.workers {
		if _, ok := fetched[id]; !ok {
			c.logger.Info(fmt.Sprintf("task %d removed", id))
			w.Terminate()
			delete(c.workers, id)
		}
	}

	for _, t := range tasks {
		if _, ok := fetched[t.ID]; !ok {
			continue
		}
		if _, ok := c.workers[t.ID]; ok {
			continue
		}
		if t.Expired(now) {
			c.expire(t)
			continue
		}
		w := worker.New(c.ctx, c.env, t)
		c.workers[t.ID] = w
		w.Start()
	}

	c.metrics.SetWorkers(len(c.workers))
	c.logWorkerSet()
}

func (c *Controller) expire(t domain.Task) {
	c.logger.Info(fmt.Sprintf("task %d (%s) expired", t.ID, t.Name))
	if err := c.store.DeleteTask(c.ctx, t.ID); err != nil {
		c.logger.Error(err)
	}
}

func (c *Controller) logWorkerSet() {
	ids := slices.Sorted(maps.Keys(c.workers))
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprint(id))
	}
	set := strings.Join(parts, ",")
	if set == c.lastSet {
		return
	}
	c.lastSet = set
	c.logger.Info("workers: [" + set + "]")
}

// shutdown stops every worker and removes leftover scratch files. It runs
// after the loop has returned.
func (c *Controller) shutdown() error {
	settled := make([]<-chan struct{}, 0, len(c.workers))
	for _, w := range c.workers {
		settled = append(settled, w.Stop())
	}
	clear(c.workers)
	c.metrics.SetWorkers(0)

	timeout := time.NewTimer(c.shutdownTimeout)
	defer timeout.Stop()
	for _, ch := range settled {
		select {
		case <-ch:
		case <-timeout.C:
			c.logger.Warn("timed out waiting for processes to exit")
			return c.removeScratch()
		}
	}
	return c.removeScratch()
}

func (c *Controller) removeScratch() error {
	var errs []error
	if err := os.RemoveAll(filepath.Join(c.workDir, domain.UpdateTempDirName)); err != nil {
		errs = append(errs, err)
	}

	polys, err := filepath.Glob(filepath.Join(c.workDir, "task*.poly"))
	if err != nil {
		errs = append(errs, err)
	}
	for _, p := range polys {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, zerr.With(err, "path", p))
		}
	}
	return errors.Join(errs...)
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
