// Package sqlite persists tasks and their update statistics in SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/rtosm/internal/core/ports"
	"go.trai.ch/zerr"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// timeLayout matches the ISO strings written by the HTTP API sharing the database.
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

//go:embed migrations/*.sql
var migrations embed.FS

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
}

const taskColumns = `id, name, coverage, URL, expirationDate, updateInterval, lastUpdated, addedDate, averageRuntime`

// Store implements ports.TaskRepository.
type Store struct {
	db      *sql.DB
	dataDir string
	logger  ports.Logger
	now     func() time.Time
}

var _ ports.TaskRepository = (*Store)(nil)

// Open opens or creates the database at path and migrates its schema.
// Extract paths of new tasks are placed inside dataDir.
func Open(ctx context.Context, path, dataDir string, logger ports.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "path", path)
	}

	// SQLite allows a single writer; one connection avoids SQLITE_BUSY between our own goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "pragma", pragma)
		}
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dataDir: dataDir, logger: logger, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return zerr.Wrap(err, domain.ErrMigrationFailed.Error())
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return zerr.Wrap(err, domain.ErrMigrationFailed.Error())
	}
	if _, err := provider.Up(ctx); err != nil {
		return zerr.Wrap(err, domain.ErrMigrationFailed.Error())
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ListTasks returns every task ordered by id. Rows whose coverage cannot be
// decoded are skipped with a warning.
func (s *Store) ListTasks(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to list tasks")
	}
	defer func() { _ = rows.Close() }()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			s.logger.Warn(err.Error())
			continue
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, zerr.Wrap(err, "failed to list tasks")
	}
	return tasks, nil
}

// GetTask returns a single task.
func (s *Store) GetTask(ctx context.Context, id int64) (domain.Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, zerr.With(domain.ErrTaskNotFound, "id", id)
	}
	return task, err
}

// CreateTask inserts a task and assigns its extract path from the generated id.
func (s *Store) CreateTask(ctx context.Context, nt domain.NewTask) (domain.Task, error) {
	if err := nt.Validate(); err != nil {
		return domain.Task{}, err
	}
	coverage, err := json.Marshal(nt.Coverage)
	if err != nil {
		return domain.Task{}, zerr.Wrap(err, domain.ErrInvalidCoverage.Error())
	}
	interval := nt.UpdateInterval
	if interval <= 0 {
		interval = domain.DefaultUpdateInterval
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, zerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	// Coverage is unique on creation only; resolved region codes may coincide.
	var existing int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM tasks WHERE coverage = ? LIMIT 1`, coverage).Scan(&existing)
	switch {
	case err == nil:
		return domain.Task{}, zerr.With(zerr.With(domain.ErrTaskAlreadyExists, "name", nt.Name), "existing_id", existing)
	case !errors.Is(err, sql.ErrNoRows):
		return domain.Task{}, zerr.Wrap(err, "failed to check for duplicate task")
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO tasks (name, coverage, expirationDate, updateInterval, addedDate) VALUES (?, ?, ?, ?, ?)`,
		nt.Name, coverage, formatTime(nt.ExpirationDate), int64(interval/time.Second), formatTime(ptr(s.now())),
	)
	if err != nil {
		return domain.Task{}, zerr.Wrap(err, "failed to insert task")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Task{}, zerr.Wrap(err, "failed to read task id")
	}

	url := domain.ExtractPath(s.dataDir, id, nt.Name)
	if _, err := tx.ExecContext(ctx, `UPDATE tasks SET URL = ? WHERE id = ?`, url, id); err != nil {
		return domain.Task{}, zerr.Wrap(err, "failed to assign extract path")
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, zerr.Wrap(err, "failed to commit task")
	}

	return s.GetTask(ctx, id)
}

// DeleteTask removes a task and its statistics.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zerr.Wrap(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to delete task"), "id", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return zerr.With(domain.ErrTaskNotFound, "id", id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM taskstats WHERE taskID = ?`, id); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to delete task statistics"), "id", id)
	}
	return tx.Commit()
}

// UpdateTaskField writes a single field. Coverage takes a domain.Coverage,
// lastUpdated a time.Time and URL a string.
func (s *Store) UpdateTaskField(ctx context.Context, id int64, field domain.TaskField, value any) error {
	var column string
	var arg any

	switch field {
	case domain.FieldCoverage:
		c, ok := value.(domain.Coverage)
		if !ok {
			return zerr.With(domain.ErrInvalidCoverage, "type", typeName(value))
		}
		data, err := json.Marshal(c)
		if err != nil {
			return zerr.Wrap(err, domain.ErrInvalidCoverage.Error())
		}
		column, arg = "coverage", data
	case domain.FieldLastUpdated:
		ts, ok := value.(time.Time)
		if !ok {
			return zerr.With(domain.ErrUnknownTaskField, "type", typeName(value))
		}
		column, arg = "lastUpdated", formatTime(&ts)
	case domain.FieldURL:
		url, ok := value.(string)
		if !ok {
			return zerr.With(domain.ErrUnknownTaskField, "type", typeName(value))
		}
		column, arg = "URL", url
	default:
		return zerr.With(domain.ErrUnknownTaskField, "field", string(field))
	}

	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+column+` = ? WHERE id = ?`, arg, id)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to update task"), "field", string(field))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return zerr.With(domain.ErrTaskNotFound, "id", id)
	}
	return nil
}

// AppendStat records one update duration in milliseconds.
func (s *Store) AppendStat(ctx context.Context, id int64, ts time.Time, elapsed time.Duration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO taskstats (timestamp, taskID, timing) VALUES (?, ?, ?)`,
		formatTime(&ts), id, elapsed.Milliseconds(),
	)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to record task statistics"), "id", id)
	}
	return nil
}

// SetAverageRuntime stores the mean of all recorded durations of a task.
func (s *Store) SetAverageRuntime(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET averageRuntime = (SELECT avg(timing) FROM taskstats WHERE taskID = ?) WHERE id = ?`,
		id, id,
	)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to update average runtime"), "id", id)
	}
	return nil
}

// ListStats returns the recorded durations of a task, oldest first.
func (s *Store) ListStats(ctx context.Context, id int64) ([]domain.Stat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, timing FROM taskstats WHERE taskID = ? ORDER BY timestamp`, id)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to list task statistics"), "id", id)
	}
	defer func() { _ = rows.Close() }()

	var stats []domain.Stat
	for rows.Next() {
		var ts string
		var ms int64
		if err := rows.Scan(&ts, &ms); err != nil {
			return nil, zerr.Wrap(err, "failed to scan task statistics")
		}
		parsed, err := parseTime(ts)
		if err != nil {
			return nil, err
		}
		stats = append(stats, domain.Stat{TaskID: id, Timestamp: parsed, Timing: time.Duration(ms) * time.Millisecond})
	}
	return stats, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (domain.Task, error) {
	var (
		t                                       domain.Task
		coverage                                []byte
		url, expiration, lastUpdated, addedDate sql.NullString
		interval                                sql.NullInt64
		average                                 sql.NullFloat64
	)
	if err := row.Scan(&t.ID, &t.Name, &coverage, &url, &expiration, &interval, &lastUpdated, &addedDate, &average); err != nil {
		return domain.Task{}, err
	}

	if err := json.Unmarshal(coverage, &t.Coverage); err != nil {
		return domain.Task{}, zerr.With(zerr.Wrap(err, domain.ErrInvalidCoverage.Error()), "id", t.ID)
	}

	t.URL = url.String
	if interval.Valid {
		t.UpdateInterval = time.Duration(interval.Int64) * time.Second
	}
	if average.Valid {
		t.AverageRuntime = time.Duration(average.Float64 * float64(time.Millisecond))
	}

	var err error
	if t.ExpirationDate, err = parseNullTime(expiration); err != nil {
		return domain.Task{}, zerr.With(err, "id", t.ID)
	}
	if t.LastUpdated, err = parseNullTime(lastUpdated); err != nil {
		return domain.Task{}, zerr.With(err, "id", t.ID)
	}
	if t.AddedDate, err = parseNullTime(addedDate); err != nil {
		return domain.Task{}, zerr.With(err, "id", t.ID)
	}
	return t, nil
}

func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, zerr.With(zerr.New("invalid timestamp"), "value", s)
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}

func ptr[T any](v T) *T { return &v }
