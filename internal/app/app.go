// Package app implements the application layer for rtosm.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.trai.ch/rtosm/internal/adapters/config"   //nolint:depguard // Wired in app layer
	"go.trai.ch/rtosm/internal/adapters/lock"     //nolint:depguard // Wired in app layer
	"go.trai.ch/rtosm/internal/adapters/metrics"  //nolint:depguard // Wired in app layer
	"go.trai.ch/rtosm/internal/adapters/osmtools" //nolint:depguard // Wired in app layer
	"go.trai.ch/rtosm/internal/adapters/polyfile" //nolint:depguard // Wired in app layer
	"go.trai.ch/rtosm/internal/adapters/status"   //nolint:depguard // Wired in app layer
	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/rtosm/internal/core/ports"
	"go.trai.ch/rtosm/internal/engine/catalog"
	"go.trai.ch/rtosm/internal/engine/controller"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// configurable is implemented by loggers whose output can follow the configuration.
type configurable interface {
	SetLevel(name string)
	SetJSON(enable bool)
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	opener       ports.RepositoryOpener
	runner       ports.ProcessRunner
	boundaries   ports.BoundaryLoader
	watcher      ports.Watcher
	logger       ports.Logger
	configPath   string
}

// New creates a new App instance. watcher may be nil.
func New(
	loader ports.ConfigLoader,
	opener ports.RepositoryOpener,
	runner ports.ProcessRunner,
	boundaries ports.BoundaryLoader,
	watcher ports.Watcher,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		opener:       opener,
		runner:       runner,
		boundaries:   boundaries,
		watcher:      watcher,
		logger:       log,
	}
}

// SetConfigPath selects the configuration file. An empty path uses the default lookup.
func (a *App) SetConfigPath(path string) {
	a.configPath = path
}

// Serve runs the extract keeper until ctx is cancelled.
func (a *App) Serve(ctx context.Context) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	for _, dir := range []string{cfg.DataDir, cfg.WorkDir, cfg.Catalog.MetaDir, filepath.Dir(cfg.Database)} {
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return zerr.With(zerr.Wrap(err, "failed to create directory"), "dir", dir)
		}
	}

	dirLock, err := lock.Acquire(cfg.DataDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := dirLock.Release(); err != nil {
			a.logger.Error(err)
		}
	}()

	repo, err := a.opener.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			a.logger.Error(err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	tools := osmtools.New(cfg.Tools)
	cat := catalog.New(cfg.Catalog, a.runner, tools, a.boundaries, m, a.logger)
	ctrl := controller.New(cfg, controller.Deps{
		Runner:  a.runner,
		Tools:   tools,
		Poly:    polyfile.NewEncoder(cfg.WorkDir),
		Store:   repo,
		Catalog: cat,
		Watcher: a.watcher,
		Metrics: m,
		Logger:  a.logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return ctrl.Run(gctx)
	})
	if cfg.Status.Address != "" {
		srv := status.NewServer(cfg.Status.Address, reg, ctrl, cat, a.logger)
		g.Go(func() error {
			return srv.Serve(gctx)
		})
	}

	a.logger.Info(fmt.Sprintf("keeping extracts in %s", cfg.DataDir))
	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("shutdown complete")
	return nil
}

// AddTask stores a new task. The running service picks it up on its next sync.
func (a *App) AddTask(ctx context.Context, task domain.NewTask) (domain.Task, error) {
	var created domain.Task
	err := a.withRepository(ctx, func(repo ports.TaskRepository) error {
		var err error
		created, err = repo.CreateTask(ctx, task)
		return err
	})
	return created, err
}

// ListTasks returns every stored task.
func (a *App) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := a.withRepository(ctx, func(repo ports.TaskRepository) error {
		var err error
		tasks, err = repo.ListTasks(ctx)
		return err
	})
	return tasks, err
}

// RemoveTask deletes a task. The running service terminates its worker and
// removes the extract on its next sync.
func (a *App) RemoveTask(ctx context.Context, id int64) error {
	return a.withRepository(ctx, func(repo ports.TaskRepository) error {
		return repo.DeleteTask(ctx, id)
	})
}

// ImportTasks stores every task defined in r. Tasks that cannot be stored are
// reported together; the others are kept.
func (a *App) ImportTasks(ctx context.Context, r io.Reader) ([]domain.Task, error) {
	defs, err := config.ReadTaskFile(r)
	if err != nil {
		return nil, err
	}

	var created []domain.Task
	err = a.withRepository(ctx, func(repo ports.TaskRepository) error {
		var errs []error
		for _, def := range defs {
			task, err := repo.CreateTask(ctx, def)
			if err != nil {
				errs = append(errs, zerr.With(err, "task", def.Name))
				continue
			}
			created = append(created, task)
		}
		return errors.Join(errs...)
	})
	return created, err
}

// TaskStats returns the task and its recorded update durations.
func (a *App) TaskStats(ctx context.Context, id int64) (domain.Task, []domain.Stat, error) {
	var (
		task  domain.Task
		stats []domain.Stat
	)
	err := a.withRepository(ctx, func(repo ports.TaskRepository) error {
		var err error
		if task, err = repo.GetTask(ctx, id); err != nil {
			return err
		}
		stats, err = repo.ListStats(ctx, id)
		return err
	})
	return task, stats, err
}

func (a *App) loadConfig() (*domain.Config, error) {
	cfg, err := a.configLoader.Load(a.configPath)
	if err != nil {
		return nil, err
	}
	if l, ok := a.logger.(configurable); ok {
		l.SetLevel(cfg.Log.Level)
		l.SetJSON(cfg.Log.JSON)
	}
	return cfg, nil
}

func (a *App) withRepository(ctx context.Context, fn func(ports.TaskRepository) error) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "dir", filepath.Dir(cfg.Database))
	}

	repo, err := a.opener.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := repo.Close(); err != nil {
			a.logger.Error(err)
		}
	}()
	return fn(repo)
}
