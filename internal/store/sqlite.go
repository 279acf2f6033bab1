package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/scaling-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS cycles (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL DEFAULT 'running',
	candidates INTEGER NOT NULL DEFAULT 0,
	summary    TEXT,
	error      TEXT,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS counters (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	data       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_cycles_status ON cycles(status);
CREATE INDEX IF NOT EXISTS idx_cycles_created_at ON cycles(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateCycle(ctx context.Context, candidates int) (*model.CycleRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cycles (id, status, candidates, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(model.CycleStatusRunning), candidates, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert cycle")
	}

	return &model.CycleRecord{
		ID:         id,
		Status:     model.CycleStatusRunning,
		Candidates: candidates,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *SQLiteStore) CompleteCycle(ctx context.Context, cycleID string, summary *model.CycleSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal summary")
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE cycles SET status = ?, summary = ?, updated_at = ? WHERE id = ?`,
		string(summary.Status), string(summaryJSON), time.Now().UTC(), cycleID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete cycle %s", cycleID)
	}
	return checkRowsAffected(res, "cycle", cycleID)
}

func (s *SQLiteStore) FailCycle(ctx context.Context, cycleID string, cause string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE cycles SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(model.CycleStatusFailed), cause, time.Now().UTC(), cycleID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: fail cycle %s", cycleID)
	}
	return checkRowsAffected(res, "cycle", cycleID)
}

func (s *SQLiteStore) GetCycle(ctx context.Context, cycleID string) (*model.CycleRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, status, candidates, summary, error, created_at, updated_at FROM cycles WHERE id = ?`,
		cycleID,
	)
	return scanCycle(row)
}

func (s *SQLiteStore) ListCycles(ctx context.Context, filter CycleFilter) ([]model.CycleRecord, error) {
	query := `SELECT id, status, candidates, summary, error, created_at, updated_at FROM cycles WHERE 1=1`
	var args []any

	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if !filter.CreatedAfter.IsZero() {
		query += ` AND created_at > ?`
		args = append(args, filter.CreatedAfter.UTC())
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list cycles")
	}
	defer rows.Close()

	var cycles []model.CycleRecord
	for rows.Next() {
		c, err := scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, *c)
	}
	return cycles, eris.Wrap(rows.Err(), "sqlite: list cycles iterate")
}

func (s *SQLiteStore) SaveCounters(ctx context.Context, counters model.PerformanceCounters) error {
	data, err := json.Marshal(counters)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal counters")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO counters (id, data, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		string(data), time.Now().UTC(),
	)
	return eris.Wrap(err, "sqlite: save counters")
}

func (s *SQLiteStore) LoadCounters(ctx context.Context) (*model.PerformanceCounters, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM counters WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load counters")
	}

	var counters model.PerformanceCounters
	if err := json.Unmarshal([]byte(data), &counters); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal counters")
	}
	return &counters, nil
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanCycle(row scannable) (*model.CycleRecord, error) {
	var c model.CycleRecord
	var summaryJSON, errText sql.NullString

	err := row.Scan(&c.ID, &c.Status, &c.Candidates, &summaryJSON, &errText, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("cycle not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan cycle")
	}

	if summaryJSON.Valid {
		c.Summary = &model.CycleSummary{}
		if err := json.Unmarshal([]byte(summaryJSON.String), c.Summary); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal summary")
		}
	}
	if errText.Valid {
		c.Error = errText.String
	}
	return &c, nil
}
