package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/scaling-cli/internal/model"
)

// pgxPool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// in tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    pgxPool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the most frequently used store operations.
var preparedStatements = map[string]string{
	"insert_cycle":   `INSERT INTO cycles (id, status, candidates, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
	"complete_cycle": `UPDATE cycles SET status = $1, summary = $2, updated_at = $3 WHERE id = $4`,
	"fail_cycle":     `UPDATE cycles SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
	"get_cycle":      `SELECT id, status, candidates, summary, error, created_at, updated_at FROM cycles WHERE id = $1`,
	"load_counters":  `SELECT data FROM counters WHERE id = 1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS cycles (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	status     TEXT NOT NULL DEFAULT 'running',
	candidates INTEGER NOT NULL DEFAULT 0,
	summary    JSONB,
	error      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS counters (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	data       JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cycles_status ON cycles(status);
CREATE INDEX IF NOT EXISTS idx_cycles_created_at ON cycles(created_at);
`

func (s *PostgresStore) Ping(ctx context.Context) error {
	return eris.Wrap(s.pool.Ping(ctx), "postgres: ping")
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) CreateCycle(ctx context.Context, candidates int) (*model.CycleRecord, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.pool.Exec(ctx,
		`INSERT INTO cycles (id, status, candidates, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, string(model.CycleStatusRunning), candidates, now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert cycle")
	}

	return &model.CycleRecord{
		ID:         id,
		Status:     model.CycleStatusRunning,
		Candidates: candidates,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *PostgresStore) CompleteCycle(ctx context.Context, cycleID string, summary *model.CycleSummary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal summary")
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE cycles SET status = $1, summary = $2, updated_at = $3 WHERE id = $4`,
		string(summary.Status), summaryJSON, time.Now().UTC(), cycleID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete cycle %s", cycleID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("cycle not found: %s", cycleID)
	}
	return nil
}

func (s *PostgresStore) FailCycle(ctx context.Context, cycleID string, cause string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE cycles SET status = $1, error = $2, updated_at = $3 WHERE id = $4`,
		string(model.CycleStatusFailed), cause, time.Now().UTC(), cycleID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: fail cycle %s", cycleID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("cycle not found: %s", cycleID)
	}
	return nil
}

func (s *PostgresStore) GetCycle(ctx context.Context, cycleID string) (*model.CycleRecord, error) {
	var c model.CycleRecord
	var summaryNull *[]byte
	var errNull *string

	err := s.pool.QueryRow(ctx,
		`SELECT id, status, candidates, summary, error, created_at, updated_at FROM cycles WHERE id = $1`,
		cycleID,
	).Scan(&c.ID, &c.Status, &c.Candidates, &summaryNull, &errNull, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get cycle %s", cycleID)
	}

	if summaryNull != nil {
		c.Summary = &model.CycleSummary{}
		if err := json.Unmarshal(*summaryNull, c.Summary); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal summary")
		}
	}
	if errNull != nil {
		c.Error = *errNull
	}
	return &c, nil
}

func (s *PostgresStore) ListCycles(ctx context.Context, filter CycleFilter) ([]model.CycleRecord, error) {
	query := `SELECT id, status, candidates, summary, error, created_at, updated_at FROM cycles WHERE true`
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		query += fmt.Sprintf(` AND status = $%d`, argIdx)
		args = append(args, string(filter.Status))
		argIdx++
	}
	if !filter.CreatedAfter.IsZero() {
		query += fmt.Sprintf(` AND created_at > $%d`, argIdx)
		args = append(args, filter.CreatedAfter.UTC())
		argIdx++
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += fmt.Sprintf(` LIMIT $%d`, argIdx)
	args = append(args, limit)
	argIdx++

	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, argIdx)
		args = append(args, filter.Offset)
		argIdx++
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list cycles")
	}
	defer rows.Close()

	var cycles []model.CycleRecord
	for rows.Next() {
		var c model.CycleRecord
		var summaryNull *[]byte
		var errNull *string

		if err := rows.Scan(&c.ID, &c.Status, &c.Candidates, &summaryNull, &errNull, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan cycle")
		}
		if summaryNull != nil {
			c.Summary = &model.CycleSummary{}
			if err := json.Unmarshal(*summaryNull, c.Summary); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal summary")
			}
		}
		if errNull != nil {
			c.Error = *errNull
		}
		cycles = append(cycles, c)
	}
	return cycles, eris.Wrap(rows.Err(), "postgres: list cycles iterate")
}

func (s *PostgresStore) SaveCounters(ctx context.Context, counters model.PerformanceCounters) error {
	data, err := json.Marshal(counters)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal counters")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO counters (id, data, updated_at) VALUES (1, $1, $2)
		 ON CONFLICT (id) DO UPDATE SET data = $1, updated_at = $2`,
		data, time.Now().UTC(),
	)
	return eris.Wrap(err, "postgres: save counters")
}

func (s *PostgresStore) LoadCounters(ctx context.Context) (*model.PerformanceCounters, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM counters WHERE id = 1`).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrap(err, "postgres: load counters")
	}

	var counters model.PerformanceCounters
	if err := json.Unmarshal(data, &counters); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal counters")
	}
	return &counters, nil
}
