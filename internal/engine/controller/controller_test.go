package controller_test

import (
	"context"
	"fmt"
	"iter"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/rtosm/internal/adapters/metrics"
	"go.trai.ch/rtosm/internal/adapters/osmtools"
	"go.trai.ch/rtosm/internal/adapters/polyfile"
	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/rtosm/internal/core/ports"
	"go.trai.ch/rtosm/internal/core/ports/mocks"
	"go.trai.ch/rtosm/internal/engine/controller"
	"go.trai.ch/rtosm/internal/testutil"
	"go.uber.org/mock/gomock"
)

const syncInterval = 5 * time.Second

// memStore is an in-memory ports.TaskStore.
type memStore struct {
	mu      sync.Mutex
	tasks   map[int64]domain.Task
	deleted []int64
}

func (s *memStore) put(t domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[t.ID] = t
}

func (s *memStore) remove(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
}

func (s *memStore) deletedIDs() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.deleted)
}

func (s *memStore) ListTasks(context.Context) ([]domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (s *memStore) DeleteTask(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(s.tasks, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *memStore) UpdateTaskField(_ context.Context, id int64, field domain.TaskField, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tasks[id]
	if field == domain.FieldCoverage {
		t.Coverage = value.(domain.Coverage)
	}
	s.tasks[id] = t
	return nil
}

func (s *memStore) AppendStat(context.Context, int64, time.Time, time.Duration) error { return nil }
func (s *memStore) SetAverageRuntime(context.Context, int64) error                    { return nil }

// fakeCatalog publishes a fixed catalog. With refreshErr set it stays
// unavailable and RefreshWithRetry blocks until the controller stops.
type fakeCatalog struct {
	cat        *domain.Catalog
	refreshErr error
	retrying   atomic.Bool
}

func (f *fakeCatalog) Snapshot() *domain.Catalog {
	if f.refreshErr != nil {
		return nil
	}
	return f.cat
}

func (f *fakeCatalog) Refresh(context.Context) error { return f.refreshErr }

func (f *fakeCatalog) RefreshWithRetry(ctx context.Context) error {
	if f.refreshErr == nil {
		return nil
	}
	f.retrying.Store(true)
	<-ctx.Done()
	return context.Cause(ctx)
}

// chanWatcher delivers events sent by the test.
type chanWatcher struct {
	events chan ports.WatchEvent
}

func (w *chanWatcher) Start(ctx context.Context, _ string) error {
	go func() {
		<-ctx.Done()
		close(w.events)
	}()
	return nil
}

func (w *chanWatcher) Stop() error { return nil }

func (w *chanWatcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for ev := range w.events {
			if !yield(ev) {
				return
			}
		}
	}
}

type harness struct {
	ctrl    *controller.Controller
	store   *memStore
	runner  *testutil.Runner
	watcher *chanWatcher
	catalog *fakeCatalog
	cfg     *domain.Config
	stop    func() error
}

func square(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mock := gomock.NewController(t)
	logger := mocks.NewMockLogger(mock)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	root := t.TempDir()
	cfg := &domain.Config{
		DataDir: filepath.Join(root, "data"),
		WorkDir: filepath.Join(root, "work"),
		Catalog: domain.CatalogConfig{RefreshInterval: 24 * time.Hour},
		Extracts: domain.ExtractsConfig{
			BaseURL: "https://download.geofabrik.de/",
		},
		Update: domain.UpdateConfig{
			MaxParallel:      2,
			DataAgeThreshold: 24 * time.Hour,
			CapacityRetry:    30 * time.Second,
		},
		Controller: domain.ControllerConfig{SyncInterval: syncInterval},
	}
	require.NoError(t, os.MkdirAll(cfg.DataDir, 0o750))

	h := &harness{
		store:   &memStore{tasks: make(map[int64]domain.Task)},
		runner:  &testutil.Runner{},
		watcher: &chanWatcher{events: make(chan ports.WatchEvent)},
		catalog: &fakeCatalog{cat: domain.NewCatalog([]domain.Region{
			{Name: "europe/germany", Polygon: square(6, 47, 15, 55), Area: 50},
		}, 1, time.Time{})},
		cfg: cfg,
	}
	h.ctrl = controller.New(cfg, controller.Deps{
		Runner: h.runner,
		Tools:  osmtools.New(domain.ToolsConfig{Wget: "wget", Tar: "tar", OSMUpdate: "osmupdate", OSMConvert: "osmconvert"}),
		Poly:   polyfile.NewEncoder(cfg.WorkDir),
		Store:  h.store,
		Catalog: h.catalog,
		Watcher: h.watcher,
		Metrics: metrics.Nop{},
		Logger:  logger,
	})
	return h
}

// run starts the controller and waits for the first reconciliation.
func (h *harness) run() {
	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- h.ctrl.Run(ctx) }()
	h.stop = func() error {
		cancel()
		return <-errs
	}
	synctest.Wait()
}

// task stores a task whose extract already exists.
func (h *harness) task(t *testing.T, id int64) domain.Task {
	t.Helper()
	task := h.pendingTask(id)
	require.NoError(t, os.WriteFile(task.URL, []byte("extract"), 0o600))
	return task
}

// pendingTask stores a task whose extract still has to be acquired.
func (h *harness) pendingTask(id int64) domain.Task {
	name := fmt.Sprintf("extract_%d", id)
	task := domain.Task{
		ID:       id,
		Name:     name,
		Coverage: domain.GeometryCoverage(name, square(13, 52, 14, 53)),
		URL:      domain.ExtractPath(h.cfg.DataDir, id, name),
	}
	h.store.put(task)
	return task
}

func (h *harness) nextSync() {
	time.Sleep(syncInterval)
	synctest.Wait()
}

func ids(t *testing.T, c *controller.Controller) []int64 {
	t.Helper()
	workers, err := c.Workers(context.Background())
	require.NoError(t, err)
	out := make([]int64, 0, len(workers))
	for _, w := range workers {
		out = append(out, w.TaskID)
	}
	return out
}

func TestReconcile_FollowsStore(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.task(t, 1)
		removed := h.task(t, 2)
		h.run()

		assert.Equal(t, []int64{1, 2}, ids(t, h.ctrl))

		h.store.remove(2)
		h.task(t, 3)
		h.nextSync()

		assert.Equal(t, []int64{1, 3}, ids(t, h.ctrl))
		_, err := os.Stat(removed.URL)
		assert.ErrorIs(t, err, os.ErrNotExist, "terminated worker removes its extract")

		workers, err := h.ctrl.Workers(context.Background())
		require.NoError(t, err)
		for _, w := range workers {
			assert.Equal(t, domain.StateIdle.String(), w.State)
		}

		require.NoError(t, h.stop())
	})
}

func TestReconcile_ExpiredTasksAreDeleted(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)

		soon := time.Now().Add(time.Minute)
		expiring := h.task(t, 1)
		expiring.ExpirationDate = &soon
		h.store.put(expiring)

		past := time.Now().Add(-time.Minute)
		expired := h.task(t, 2)
		expired.ExpirationDate = &past
		h.store.put(expired)

		h.run()

		assert.Equal(t, []int64{1}, ids(t, h.ctrl), "an already expired task never gets a worker")
		assert.Equal(t, []int64{2}, h.store.deletedIDs())

		time.Sleep(time.Minute)
		h.nextSync()

		assert.Empty(t, ids(t, h.ctrl))
		assert.Equal(t, []int64{2, 1}, h.store.deletedIDs())
		_, err := os.Stat(expiring.URL)
		assert.ErrorIs(t, err, os.ErrNotExist)

		require.NoError(t, h.stop())
	})
}

func TestReconcile_DoesNotWaitForCatalog(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.catalog.refreshErr = domain.ErrCatalogFetchFailed

		h.task(t, 1)
		past := time.Now().Add(-time.Minute)
		expired := h.task(t, 2)
		expired.ExpirationDate = &past
		h.store.put(expired)

		h.run()

		assert.True(t, h.catalog.retrying.Load())
		assert.Equal(t, []int64{1}, ids(t, h.ctrl))
		assert.Equal(t, []int64{2}, h.store.deletedIDs())

		h.nextSync()
		assert.Equal(t, []int64{1}, ids(t, h.ctrl))

		require.NoError(t, h.stop())
	})
}

func TestReconcile_SelfTerminatedWorkerIsRecreated(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		broken := h.pendingTask(1)
		broken.URL = ""
		h.store.put(broken)
		h.run()

		workers, err := h.ctrl.Workers(context.Background())
		require.NoError(t, err)
		require.Len(t, workers, 1)
		assert.Equal(t, domain.StateTerminated.String(), workers[0].State)

		for range 3 {
			h.nextSync()
			assert.Equal(t, []int64{1}, ids(t, h.ctrl), "at most one worker per task")
		}

		require.NoError(t, h.stop())
	})
}

func TestRun_ShutdownKillsProcessesAndRemovesScratch(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.pendingTask(1)
		h.run()

		download := h.runner.Last()
		require.NotNil(t, download)
		require.Equal(t, ports.KindDownload, download.Kind())
		side := domain.SideFile(task.URL, domain.UpdatePrefix)
		require.NoError(t, os.WriteFile(side, []byte("partial"), 0o600))

		require.NoError(t, os.MkdirAll(domain.UpdateTempDir(h.cfg.WorkDir, 7), 0o750))
		stray := domain.PolyFilePath(h.cfg.WorkDir, 7)
		require.NoError(t, os.WriteFile(stray, []byte("poly"), 0o600))

		require.NoError(t, h.stop())

		assert.True(t, download.Killed())
		for _, p := range []string{side, stray, filepath.Join(h.cfg.WorkDir, domain.UpdateTempDirName), task.URL} {
			_, err := os.Stat(p)
			assert.ErrorIs(t, err, os.ErrNotExist, p)
		}

		_, err := h.ctrl.Workers(context.Background())
		require.ErrorIs(t, err, domain.ErrControllerStopped)
	})
}

func TestRun_RemovedExtractIsAcquiredAgain(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.task(t, 1)
		h.run()
		require.Empty(t, h.runner.Started())

		require.NoError(t, os.Remove(task.URL))
		h.watcher.events <- ports.WatchEvent{Path: task.URL, Operation: ports.OpRemove}
		synctest.Wait()

		assert.Equal(t, []ports.ProcessKind{ports.KindDownload}, h.runner.Kinds())

		require.NoError(t, h.stop())
	})
}

func TestLimiter(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockMetrics(ctrl)
	gomock.InOrder(
		m.EXPECT().SetUpdatesInFlight(1),
		m.EXPECT().SetUpdatesInFlight(2),
		m.EXPECT().SetUpdatesInFlight(1),
		m.EXPECT().SetUpdatesInFlight(2),
	)

	l := controller.NewLimiter(2, m)
	assert.True(t, l.TryAcquire())
	assert.True(t, l.TryAcquire())
	assert.False(t, l.TryAcquire())
	assert.Equal(t, 2, l.InUse())

	l.Release()
	assert.True(t, l.TryAcquire())
}

func TestLoop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := controller.NewLoop()
		var got []int
		require.True(t, l.Post(func() { got = append(got, 1) }))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			_ = l.Run(ctx)
			close(done)
		}()

		require.NoError(t, l.Call(context.Background(), func() { got = append(got, 2) }))
		assert.Equal(t, []int{1, 2}, got)

		cancel()
		<-done
		assert.False(t, l.Post(func() {}))
		require.ErrorIs(t, l.Call(context.Background(), func() {}), domain.ErrControllerStopped)
	})
}
