package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
	applogger "github.com/katheedev/crypto-sentiment/pkg/logger"
)

// ClickHouseRunStore persists analysis runs and backtest records.
type ClickHouseRunStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewClickHouseRunStore(db *sql.DB, database string) *ClickHouseRunStore {
	return &ClickHouseRunStore{db: db, database: database}
}

// SetLogger injects a structured logger.
func (s *ClickHouseRunStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *ClickHouseRunStore) Init(ctx context.Context) error {
	return nil // Schema init in DI provider
}

func (s *ClickHouseRunStore) SaveRun(ctx context.Context, run domrepo.Run) error {
	q := fmt.Sprintf("INSERT INTO %s.runs (symbol, interval, summary, created_at) VALUES (?, ?, ?, ?)", s.database)
	ts := run.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if _, err := s.db.ExecContext(ctx, q, run.Symbol, run.Interval, run.Summary, ts); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_run error",
				applogger.String("symbol", run.Symbol),
				applogger.String("interval", run.Interval),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (s *ClickHouseRunStore) SaveBacktest(ctx context.Context, rec domrepo.BacktestRecord) error {
	q := fmt.Sprintf("INSERT INTO %s.backtests (params, metrics, created_at) VALUES (?, ?, ?)", s.database)
	ts := rec.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	if _, err := s.db.ExecContext(ctx, q, rec.Params, rec.Metrics, ts); err != nil {
		if s.l != nil {
			s.l.Error("clickhouse save_backtest error", applogger.Error(err))
		}
		return fmt.Errorf("save backtest: %w", err)
	}
	return nil
}

func (s *ClickHouseRunStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseRunStore) Close() error {
	return nil // Pool managed by pkg/clickhouse
}

var _ domrepo.RunStore = (*ClickHouseRunStore)(nil)

// ClickHouseConfigStore keeps runtime config overrides in a ReplacingMergeTree
// keyed by override key, so concurrent writers resolve last-writer-wins.
type ClickHouseConfigStore struct {
	db       *sql.DB
	database string
}

func NewClickHouseConfigStore(db *sql.DB, database string) *ClickHouseConfigStore {
	return &ClickHouseConfigStore{db: db, database: database}
}

func (s *ClickHouseConfigStore) All(ctx context.Context) (map[string]string, error) {
	q := fmt.Sprintf("SELECT key, value FROM %s.config_overrides FINAL", s.database)
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("load overrides: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		out[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *ClickHouseConfigStore) Put(ctx context.Context, key, value string) error {
	q := fmt.Sprintf("INSERT INTO %s.config_overrides (key, value, updated_at) VALUES (?, ?, ?)", s.database)
	if _, err := s.db.ExecContext(ctx, q, key, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("put override: %w", err)
	}
	return nil
}

func (s *ClickHouseConfigStore) Reset(ctx context.Context) error {
	q := fmt.Sprintf("TRUNCATE TABLE %s.config_overrides", s.database)
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("reset overrides: %w", err)
	}
	return nil
}

var _ domrepo.ConfigStore = (*ClickHouseConfigStore)(nil)
