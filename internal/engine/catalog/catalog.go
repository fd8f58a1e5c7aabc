// Package catalog keeps the set of named region boundaries used to pick extracts.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cespare/xxhash/v2"
	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/rtosm/internal/core/ports"
	"go.trai.ch/zerr"
)

// Catalog fetches the boundary archive, loads it and publishes immutable snapshots.
type Catalog struct {
	runner  ports.ProcessRunner
	tools   ports.Toolchain
	loader  ports.BoundaryLoader
	metrics ports.Metrics
	logger  ports.Logger

	sourceURL      string
	metaDir        string
	startupTimeout time.Duration
	now            func() time.Time

	current    atomic.Pointer[domain.Catalog]
	refreshing atomic.Bool
}

// New creates a Catalog. Snapshot returns nil until the first successful refresh.
func New(
	cfg domain.CatalogConfig,
	runner ports.ProcessRunner,
	tools ports.Toolchain,
	loader ports.BoundaryLoader,
	metrics ports.Metrics,
	logger ports.Logger,
) *Catalog {
	return &Catalog{
		runner:         runner,
		tools:          tools,
		loader:         loader,
		metrics:        metrics,
		logger:         logger,
		sourceURL:      cfg.SourceURL,
		metaDir:        cfg.MetaDir,
		startupTimeout: cfg.StartupTimeout,
		now:            time.Now,
	}
}

// Snapshot returns the published catalog, or nil while it is unavailable.
func (c *Catalog) Snapshot() *domain.Catalog {
	return c.current.Load()
}

// Refresh fetches the archive if it changed upstream and republishes the catalog.
// Concurrent calls fail with ErrCatalogRefreshInProgress.
func (c *Catalog) Refresh(ctx context.Context) error {
	if !c.refreshing.CompareAndSwap(false, true) {
		return domain.ErrCatalogRefreshInProgress
	}
	defer c.refreshing.Store(false)

	if err := os.MkdirAll(c.metaDir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCatalogFetchFailed.Error()), "dir", c.metaDir)
	}

	published := c.current.Load()

	fetch := c.wait(ctx, c.runner.Start(ctx, c.tools.FetchCatalog(c.sourceURL, c.metaDir)))
	switch fetch.Kind {
	case ports.OutcomeKilled:
		if ctx.Err() != nil {
			return zerr.Wrap(context.Cause(ctx), domain.ErrCatalogFetchFailed.Error())
		}
		return c.failed(domain.ErrCatalogFetchFailed, fetch)
	case ports.OutcomeFailed:
		return c.failed(domain.ErrCatalogFetchFailed, fetch)
	case ports.OutcomeNoop:
		if published != nil {
			c.logger.Debug("boundary archive not modified")
			return nil
		}
	case ports.OutcomeSuccess:
	}

	archive, err := c.archivePath()
	if err != nil {
		return err
	}
	fingerprint, err := hashFile(archive)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCatalogFetchFailed.Error()), "archive", archive)
	}
	if published != nil && published.Fingerprint() == fingerprint {
		c.logger.Debug("boundary archive unchanged")
		return nil
	}

	extract := c.wait(ctx, c.runner.Start(ctx, c.tools.ExtractArchive(archive, c.metaDir)))
	if extract.Kind != ports.OutcomeSuccess {
		c.publish(nil)
		return c.failed(domain.ErrCatalogExtractFailed, extract)
	}

	regions, err := c.loader.Load(ctx, c.metaDir)
	if err != nil {
		// Without the archive the next conditional fetch downloads it again.
		if rmErr := os.Remove(archive); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			c.logger.Warn(fmt.Sprintf("failed to remove boundary archive %s: %v", archive, rmErr))
		}
		return zerr.Wrap(err, domain.ErrBoundaryParseFailed.Error())
	}

	c.publish(domain.NewCatalog(regions, fingerprint, c.now()))
	c.logger.Info(fmt.Sprintf("region catalog loaded (%d regions)", len(regions)))
	return nil
}

// RefreshWithRetry refreshes with exponential backoff until it succeeds, the
// startup timeout elapses or ctx is done. A zero timeout retries until ctx is done.
func (c *Catalog) RefreshWithRetry(ctx context.Context) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, c.Refresh(ctx)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(c.startupTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Warn(fmt.Sprintf("region catalog refresh failed, retrying in %s: %v", next.Round(time.Second), err))
		}),
	)
	return err
}

func (c *Catalog) publish(cat *domain.Catalog) {
	c.current.Store(cat)
	c.metrics.SetCatalogRegions(cat.Len())
}

// wait blocks for the outcome of p, killing it when ctx is done.
func (c *Catalog) wait(ctx context.Context, p ports.Process) ports.Outcome {
	select {
	case out := <-p.Done():
		return out
	case <-ctx.Done():
		p.Kill()
		return <-p.Done()
	}
}

func (c *Catalog) failed(sentinel error, out ports.Outcome) error {
	err := sentinel
	if out.Err != nil {
		err = zerr.Wrap(out.Err, sentinel.Error())
	}
	return zerr.With(zerr.With(err, "exit_code", out.ExitCode), "output", out.Output)
}

func (c *Catalog) archivePath() (string, error) {
	u, err := url.Parse(c.sourceURL)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrCatalogFetchFailed.Error()), "url", c.sourceURL)
	}
	return filepath.Join(c.metaDir, path.Base(u.Path)), nil
}

func hashFile(p string) (uint64, error) {
	f, err := os.Open(p) //nolint:gosec // path built from configuration
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}
