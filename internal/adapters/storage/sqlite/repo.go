// Package sqlite persists resolution snapshots: one row per recorded
// resolve, carrying the schedule JSON and its digest so later runs can
// detect drift in the authored universe.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/raceday/pitstop/internal/app"
	"github.com/raceday/pitstop/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName matches the name modernc.org/sqlite registers with database/sql.
const driverName = "sqlite"

// Repository stores snapshots in one sqlite database file.
type Repository struct {
	db *sql.DB
}

// Open opens (creating if needed) the snapshot database at path.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens an in-memory snapshot store, used by tests.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the underlying database.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			fork TEXT NOT NULL,
			digest TEXT NOT NULL,
			taken_at TEXT NOT NULL,
			schedule_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_fork_taken
			ON snapshots (fork, taken_at);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate snapshots: %w", err)
		}
	}
	return nil
}

// SaveSnapshot persists one snapshot row.
func (r *Repository) SaveSnapshot(ctx context.Context, snapshot domain.Snapshot) error {
	if strings.TrimSpace(snapshot.ID) == "" {
		return errors.New("snapshot id is required")
	}
	payload, err := json.Marshal(snapshot.Schedule)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, fork, digest, taken_at, schedule_json)
			VALUES (?, ?, ?, ?, ?)`,
		snapshot.ID,
		snapshot.Fork,
		snapshot.Digest,
		snapshot.TakenAt.UTC().Format(time.RFC3339Nano),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot for one fork, or
// app.ErrNotFound when none has been taken.
func (r *Repository) LatestSnapshot(ctx context.Context, fork string) (domain.Snapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, fork, digest, taken_at, schedule_json FROM snapshots
			WHERE fork = ? ORDER BY taken_at DESC, id DESC LIMIT 1`, fork)
	snapshot, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Snapshot{}, app.ErrNotFound
	}
	return snapshot, err
}

// ListSnapshots returns all snapshots for one fork, oldest first.
func (r *Repository) ListSnapshots(ctx context.Context, fork string) ([]domain.Snapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, fork, digest, taken_at, schedule_json FROM snapshots
			WHERE fork = ? ORDER BY taken_at ASC, id ASC`, fork)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Snapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snapshot)
	}
	return out, rows.Err()
}

// scanner matches sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanSnapshot decodes one snapshot row.
func scanSnapshot(row scanner) (domain.Snapshot, error) {
	var (
		snapshot domain.Snapshot
		takenAt  string
		payload  string
	)
	if err := row.Scan(&snapshot.ID, &snapshot.Fork, &snapshot.Digest, &takenAt, &payload); err != nil {
		return domain.Snapshot{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, takenAt)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("parse taken_at: %w", err)
	}
	snapshot.TakenAt = parsed
	if err := json.Unmarshal([]byte(payload), &snapshot.Schedule); err != nil {
		return domain.Snapshot{}, fmt.Errorf("decode schedule: %w", err)
	}
	return snapshot, nil
}
