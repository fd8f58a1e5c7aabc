package worker_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
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
	"go.trai.ch/rtosm/internal/engine/worker"
	"go.trai.ch/rtosm/internal/testutil"
	"go.uber.org/mock/gomock"
)

const baseURL = "https://download.geofabrik.de/"

// queueLoop collects posted closures until the test drains them.
type queueLoop struct {
	q chan func()
}

func (l *queueLoop) Post(fn func()) bool {
	l.q <- fn
	return true
}

type fakeLimiter struct {
	capacity int
	used     int
	attempts int
}

func (l *fakeLimiter) TryAcquire() bool {
	l.attempts++
	if l.used >= l.capacity {
		return false
	}
	l.used++
	return true
}

func (l *fakeLimiter) Release() { l.used-- }

type staticCatalog struct {
	cat *domain.Catalog
}

func (s *staticCatalog) Snapshot() *domain.Catalog { return s.cat }

type harness struct {
	loop    *queueLoop
	runner  *testutil.Runner
	limiter *fakeLimiter
	store   *mocks.MockTaskStore
	catalog *staticCatalog
	env     *worker.Env
	dataDir string
	workDir string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Debug(gomock.Any()).AnyTimes()
	logger.EXPECT().Info(gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any()).AnyTimes()
	logger.EXPECT().Error(gomock.Any()).AnyTimes()

	root := t.TempDir()
	h := &harness{
		loop:    &queueLoop{q: make(chan func(), 128)},
		runner:  &testutil.Runner{},
		limiter: &fakeLimiter{capacity: 1},
		store:   mocks.NewMockTaskStore(ctrl),
		catalog: &staticCatalog{cat: europe()},
		dataDir: filepath.Join(root, "data"),
		workDir: filepath.Join(root, "work"),
	}
	require.NoError(t, os.MkdirAll(h.dataDir, 0o750))

	h.env = &worker.Env{
		Runner:  h.runner,
		Tools:   osmtools.New(domain.ToolsConfig{Wget: "wget", Tar: "tar", OSMUpdate: "osmupdate", OSMConvert: "osmconvert"}),
		Poly:    polyfile.NewEncoder(h.workDir),
		Store:   h.store,
		Catalog: h.catalog,
		Limiter: h.limiter,
		Loop:    h.loop,
		Metrics: metrics.Nop{},
		Logger:  logger,
		Settings: worker.Settings{
			WorkDir:          h.workDir,
			BaseURL:          baseURL,
			DataAgeThreshold: 24 * time.Hour,
			CapacityRetry:    30 * time.Second,
		},
	}
	return h
}

func square(x0, y0, x1, y1 float64) orb.Polygon {
	return orb.Polygon{{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}}
}

func europe() *domain.Catalog {
	return domain.NewCatalog([]domain.Region{
		{Name: "europe", Polygon: square(-10, 35, 40, 70), Area: 100},
		{Name: "europe/germany", Polygon: square(6, 47, 15, 55), Area: 50},
		{Name: "europe/france", Polygon: square(-5, 42, 8, 51), Area: 60},
	}, 1, time.Time{})
}

func (h *harness) task(id int64, c domain.Coverage) domain.Task {
	name := fmt.Sprintf("extract_%d", id)
	return domain.Task{
		ID:       id,
		Name:     name,
		Coverage: c,
		URL:      domain.ExtractPath(h.dataDir, id, name),
	}
}

func (h *harness) worker(task domain.Task) *worker.Worker {
	return worker.New(context.Background(), h.env, task)
}

// settle runs posted closures until every goroutine in the bubble is blocked
// and nothing is left to run.
func (h *harness) settle() {
	for {
		synctest.Wait()
		select {
		case fn := <-h.loop.q:
			fn()
		default:
			return
		}
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func assertMissing(t *testing.T, paths ...string) {
	t.Helper()
	for _, p := range paths {
		_, err := os.Stat(p)
		assert.ErrorIs(t, err, os.ErrNotExist, p)
	}
}

func berlin() domain.Coverage {
	return domain.GeometryCoverage("berlin", square(13, 52, 14, 53))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to domain.WorkerState
		want     bool
	}{
		{domain.StateIdle, domain.StateUpdating, true},
		{domain.StateIdle, domain.StateAcquiringInitial, true},
		{domain.StateIdle, domain.StateClipping, false},
		{domain.StateAcquiringInitial, domain.StateClipping, true},
		{domain.StateAcquiringInitial, domain.StateUpdating, false},
		{domain.StateUpdating, domain.StateClipping, true},
		{domain.StateUpdating, domain.StateAcquiringInitial, false},
		{domain.StateClipping, domain.StateIdle, true},
		{domain.StateClipping, domain.StateUpdating, false},
		{domain.StateTerminated, domain.StateIdle, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, worker.CanTransition(tt.from, tt.to))
		})
	}

	for _, s := range []domain.WorkerState{
		domain.StateIdle, domain.StateAcquiringInitial, domain.StateClipping, domain.StateUpdating,
	} {
		assert.True(t, worker.CanTransition(s, domain.StateTerminated), s.String())
	}
}

func TestStart_WithoutURLTerminates(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.task(1, berlin())
		task.URL = ""

		w := h.worker(task)
		w.Start()
		h.settle()

		assert.Equal(t, domain.StateTerminated, w.State())
		assert.Empty(t, h.runner.Started())
	})
}

func TestStart_ExistingExtractStaysIdle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.task(1, berlin())
		writeFile(t, task.URL, "extract")

		w := h.worker(task)
		w.Start()
		h.settle()

		assert.Equal(t, domain.StateIdle, w.State())
		assert.Empty(t, h.runner.Started())

		// The periodic timer triggers an update.
		time.Sleep(domain.DefaultUpdateInterval + time.Second)
		h.settle()

		assert.Equal(t, domain.StateUpdating, w.State())
		assert.Equal(t, []ports.ProcessKind{ports.KindUpdate}, h.runner.Kinds())

		w.Stop()
		h.settle()
	})
}

func TestUpdate_AlreadyUpToDate(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.task(1, berlin())
		writeFile(t, task.URL, "extract")
		w := h.worker(task)

		w.Update()
		h.settle()

		require.Equal(t, domain.StateUpdating, w.State())
		assert.Equal(t, 1, h.limiter.used)
		update := h.runner.Last()
		assert.Contains(t, update.Command().Args, task.URL)
		assertMissing(t, domain.PolyFilePath(h.workDir, task.ID))

		update.Complete(ports.Outcome{Kind: ports.OutcomeNoop})
		h.settle()

		assert.Equal(t, domain.StateIdle, w.State())
		assert.Equal(t, 0, h.limiter.used)
		assert.Equal(t, "extract", readFile(t, task.URL))
		assertMissing(t,
			domain.SideFile(task.URL, domain.UpdatePrefix),
			domain.PolyFilePath(h.workDir, task.ID),
		)
		assert.Len(t, h.runner.Started(), 1)
	})
}

func TestUpdate_SuccessClipsAndRecordsStats(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.task(1, berlin())
		writeFile(t, task.URL, "extract")
		w := h.worker(task)

		h.store.EXPECT().AppendStat(gomock.Any(), task.ID, gomock.Any(), gomock.Any()).Return(nil)
		h.store.EXPECT().SetAverageRuntime(gomock.Any(), task.ID).Return(nil)
		h.store.EXPECT().UpdateTaskField(gomock.Any(), task.ID, domain.FieldLastUpdated, gomock.Any()).Return(nil)

		w.Update()
		h.settle()

		writeFile(t, domain.SideFile(task.URL, domain.UpdatePrefix), "updated")
		h.runner.Last().Succeed()
		h.settle()

		require.Equal(t, domain.StateClipping, w.State())
		assert.Equal(t, 0, h.limiter.used, "slot released when leaving updating")
		assert.Equal(t, "updated", readFile(t, task.URL))

		clip := h.runner.Last()
		require.Equal(t, ports.KindClip, clip.Kind())
		assert.Contains(t, clip.Command().Args, "-B="+domain.PolyFilePath(h.workDir, task.ID))

		writeFile(t, domain.SideFile(task.URL, domain.ClipPrefix), "clipped")
		time.Sleep(time.Minute)
		clip.Succeed()
		h.settle()

		assert.Equal(t, domain.StateIdle, w.State())
		assert.Equal(t, "clipped", readFile(t, task.URL))
		require.NotNil(t, w.Task().LastUpdated)
		assertMissing(t,
			domain.SideFile(task.URL, domain.UpdatePrefix),
			domain.SideFile(task.URL, domain.ClipPrefix),
			domain.PolyFilePath(h.workDir, task.ID),
		)
	})
}

func TestUpdate_FailureKeepsExtract(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.task(1, berlin())
		writeFile(t, task.URL, "extract")
		w := h.worker(task)

		w.Update()
		h.settle()
		writeFile(t, domain.SideFile(task.URL, domain.UpdatePrefix), "partial")
		h.runner.Last().Fail()
		h.settle()

		assert.Equal(t, domain.StateIdle, w.State())
		assert.Equal(t, 0, h.limiter.used)
		assert.Equal(t, "extract", readFile(t, task.URL))
		assertMissing(t, domain.SideFile(task.URL, domain.UpdatePrefix), domain.PolyFilePath(h.workDir, task.ID))
	})
}

func TestUpdate_AtMostOneProcess(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.limiter.capacity = 10
		task := h.task(1, berlin())
		writeFile(t, task.URL, "extract")
		w := h.worker(task)

		w.Update()
		w.Update()
		h.settle()
		w.Update()
		h.settle()

		assert.Len(t, h.runner.Started(), 1)
		assert.Len(t, h.runner.Running(), 1)
		assert.Equal(t, 1, h.limiter.used)

		writeFile(t, domain.SideFile(task.URL, domain.UpdatePrefix), "updated")
		h.runner.Last().Succeed()
		h.settle()

		// Clipping is in flight; updates are still refused.
		w.Update()
		h.settle()

		assert.Equal(t, []ports.ProcessKind{ports.KindUpdate, ports.KindClip}, h.runner.Kinds())
		assert.Len(t, h.runner.Running(), 1)

		w.Stop()
		h.settle()
	})
}

func TestUpdate_CapacityRetry(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.limiter.capacity = 0
		task := h.task(1, berlin())
		writeFile(t, task.URL, "extract")
		w := h.worker(task)

		w.Update()
		h.settle()
		time.Sleep(10 * time.Second)
		w.Update()
		h.settle()

		assert.Equal(t, domain.StateIdle, w.State())
		assert.Equal(t, 2, h.limiter.attempts)

		// The second refusal replaced the first retry.
		time.Sleep(25 * time.Second)
		h.settle()
		assert.Equal(t, 2, h.limiter.attempts)

		time.Sleep(5 * time.Second)
		h.settle()
		assert.Equal(t, 3, h.limiter.attempts, "exactly one retry fired")
		assert.Equal(t, domain.StateIdle, w.State())
		assert.Empty(t, h.runner.Started())

		h.limiter.capacity = 1
		time.Sleep(30 * time.Second)
		h.settle()

		assert.Equal(t, 4, h.limiter.attempts)
		assert.Equal(t, domain.StateUpdating, w.State())

		w.Stop()
		h.settle()
	})
}

func TestUpdate_StaleExtractIsAcquiredAgain(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.task(1, berlin())
		writeFile(t, task.URL, "extract")
		old := time.Now().Add(-48 * time.Hour)
		require.NoError(t, os.Chtimes(task.URL, old, old))
		w := h.worker(task)

		w.Update()
		h.settle()

		assert.Equal(t, domain.StateAcquiringInitial, w.State())
		assert.Equal(t, 0, h.limiter.used)
		assert.Equal(t, []ports.ProcessKind{ports.KindDownload}, h.runner.Kinds())

		w.Stop()
		h.settle()
	})
}

func TestTerminate_RemovesExtractAndSideFiles(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.task(1, berlin())
		writeFile(t, task.URL, "extract")
		w := h.worker(task)

		w.Update()
		h.settle()
		update := h.runner.Last()
		writeFile(t, domain.SideFile(task.URL, domain.UpdatePrefix), "partial")

		w.Terminate()
		w.Terminate()
		h.settle()

		assert.Equal(t, domain.StateTerminated, w.State())
		assert.True(t, update.Killed())
		assert.Equal(t, 0, h.limiter.used)
		assertMissing(t,
			task.URL,
			domain.SideFile(task.URL, domain.UpdatePrefix),
			domain.PolyFilePath(h.workDir, task.ID),
		)

		// Timers are cancelled.
		time.Sleep(2 * domain.DefaultUpdateInterval)
		h.settle()
		assert.Len(t, h.runner.Started(), 1)
	})
}

func TestStop_KeepsExtractUnchanged(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.task(1, berlin())
		writeFile(t, task.URL, "extract")
		w := h.worker(task)
		w.Start()

		w.Update()
		h.settle()
		writeFile(t, domain.SideFile(task.URL, domain.UpdatePrefix), "partial")

		settled := w.Stop()
		h.settle()

		select {
		case <-settled:
		default:
			t.Fatal("stop did not settle")
		}
		assert.Equal(t, domain.StateTerminated, w.State())
		assert.Equal(t, "extract", readFile(t, task.URL))
		assertMissing(t, domain.SideFile(task.URL, domain.UpdatePrefix), domain.PolyFilePath(h.workDir, task.ID))
	})
}

func TestCompletion_AfterStopOnlyCleansUp(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.task(1, berlin())
		writeFile(t, task.URL, "extract")
		w := h.worker(task)

		w.Update()
		h.settle()

		// The update finishes while the stop is already under way.
		writeFile(t, domain.SideFile(task.URL, domain.UpdatePrefix), "updated")
		h.runner.Last().Succeed()
		w.Stop()
		h.settle()

		assert.Equal(t, "extract", readFile(t, task.URL))
		assertMissing(t, domain.SideFile(task.URL, domain.UpdatePrefix))
		assert.Len(t, h.runner.Started(), 1)
	})
}

func TestAcquire_RegionCodeEndToEnd(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.task(1, domain.RegionCoverage("germany"))
		w := h.worker(task)

		var persisted domain.Coverage
		h.store.EXPECT().
			UpdateTaskField(gomock.Any(), task.ID, domain.FieldCoverage, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ int64, _ domain.TaskField, v any) error {
				persisted = v.(domain.Coverage)
				return nil
			})

		w.Start()
		h.settle()

		require.Equal(t, domain.StateAcquiringInitial, w.State())
		download := h.runner.Last()
		require.Equal(t, ports.KindDownload, download.Kind())
		assert.Contains(t, download.Command().Args, "https://download.geofabrik.de/europe/germany-latest.osm.pbf")
		assert.Contains(t, download.Command().Args, domain.SideFile(task.URL, domain.UpdatePrefix))

		assert.False(t, persisted.IsRegionCode())
		assert.Equal(t, "europe/germany", persisted.Name())
		assert.True(t, w.Task().Coverage.Equal(persisted))

		writeFile(t, domain.SideFile(task.URL, domain.UpdatePrefix), "germany")
		download.Succeed()
		h.settle()

		require.Equal(t, domain.StateClipping, w.State())
		clip := h.runner.Last()
		require.Equal(t, ports.KindClip, clip.Kind())

		poly := readFile(t, domain.PolyFilePath(h.workDir, task.ID))
		assert.Contains(t, poly, "\t6\t47\n", "clipped to the resolved region")

		writeFile(t, domain.SideFile(task.URL, domain.ClipPrefix), "germany clipped")
		clip.Succeed()
		h.settle()

		assert.Equal(t, domain.StateIdle, w.State())
		assert.Equal(t, "germany clipped", readFile(t, task.URL))
		assertMissing(t, domain.PolyFilePath(h.workDir, task.ID))

		// The next update finds nothing to do and the coverage is not persisted again.
		w.Update()
		h.settle()
		h.runner.Last().Complete(ports.Outcome{Kind: ports.OutcomeNoop})
		h.settle()

		assert.Equal(t, domain.StateIdle, w.State())
		assert.Equal(t, []ports.ProcessKind{ports.KindDownload, ports.KindClip, ports.KindUpdate}, h.runner.Kinds())

		w.Stop()
		h.settle()
	})
}

func TestAcquire_GeometryPicksSmallestRegion(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.task(1, berlin())
		w := h.worker(task)

		w.Start()
		h.settle()

		download := h.runner.Last()
		require.NotNil(t, download)
		assert.Contains(t, download.Command().Args, "https://download.geofabrik.de/europe/germany-latest.osm.pbf")
		assert.True(t, w.Task().Coverage.Equal(berlin()), "geometry coverage is kept")

		w.Stop()
		h.settle()
	})
}

func TestAcquire_DownloadFailureReturnsToIdle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		task := h.task(1, berlin())
		w := h.worker(task)

		w.Start()
		h.settle()
		writeFile(t, domain.SideFile(task.URL, domain.UpdatePrefix), "partial")
		h.runner.Last().Fail()
		h.settle()

		assert.Equal(t, domain.StateIdle, w.State())
		assertMissing(t, task.URL, domain.SideFile(task.URL, domain.UpdatePrefix))

		// The next tick retries the acquisition.
		w.Update()
		h.settle()
		assert.Equal(t, []ports.ProcessKind{ports.KindDownload, ports.KindDownload}, h.runner.Kinds())

		w.Stop()
		h.settle()
	})
}

func TestAcquire_PlanetFallback(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.catalog.cat = nil
		planet := filepath.Join(h.dataDir, "planet.osm.pbf")
		writeFile(t, planet, "planet")
		h.env.Settings.PlanetFile = planet

		task := h.task(1, berlin())
		w := h.worker(task)
		w.Start()
		h.settle()

		require.Equal(t, domain.StateAcquiringInitial, w.State())
		p := h.runner.Last()
		require.Equal(t, ports.KindPlanetExtract, p.Kind())
		assert.Equal(t, planet, p.Command().Args[0])

		writeFile(t, domain.SideFile(task.URL, domain.UpdatePrefix), "cut")
		p.Succeed()
		h.settle()

		assert.Equal(t, domain.StateIdle, w.State())
		assert.Equal(t, "cut", readFile(t, task.URL))
		assertMissing(t, domain.PolyFilePath(h.workDir, task.ID))

		w.Stop()
		h.settle()
	})
}

func TestAcquire_PlanetFailureTerminates(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		h := newHarness(t)
		h.catalog.cat = nil
		planet := filepath.Join(h.dataDir, "planet.osm.pbf")
		writeFile(t, planet, "planet")
		h.env.Settings.PlanetFile = planet

		task := h.task(1, berlin())
		w := h.worker(task)
		w.Start()
		h.settle()
		h.runner.Last().Fail()
		h.settle()

		assert.Equal(t, domain.StateTerminated, w.State())
		assertMissing(t, domain.PolyFilePath(h.workDir, task.ID), domain.SideFile(task.URL, domain.UpdatePrefix))
	})
}

func TestAcquire_WithoutSourceTerminates(t *testing.T) {
	tests := []struct {
		name     string
		coverage domain.Coverage
		catalog  *domain.Catalog
		planet   bool
	}{
		{name: "no region and no planet file", coverage: domain.GeometryCoverage("", square(100, 0, 101, 1)), catalog: europe()},
		{name: "catalog unavailable", coverage: berlin()},
		{name: "unknown region code with planet file", coverage: domain.RegionCoverage("atlantis"), catalog: europe(), planet: true},
		{name: "unknown region code without catalog", coverage: domain.RegionCoverage("germany"), planet: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				h := newHarness(t)
				h.catalog.cat = tt.catalog
				if tt.planet {
					planet := filepath.Join(h.dataDir, "planet.osm.pbf")
					writeFile(t, planet, "planet")
					h.env.Settings.PlanetFile = planet
				}

				w := h.worker(h.task(1, tt.coverage))
				w.Start()
				h.settle()

				assert.Equal(t, domain.StateTerminated, w.State())
				assert.Empty(t, h.runner.Started())
			})
		})
	}
}
