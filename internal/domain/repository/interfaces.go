package repository

import (
	"context"
	"time"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
)

// Run records one analysis pass over a symbol.
type Run struct {
	Symbol    string
	Interval  string
	Summary   string // JSON
	CreatedAt time.Time
}

// BacktestRecord persists the parameters and metrics of one backtest.
type BacktestRecord struct {
	Params    string // JSON
	Metrics   string // JSON
	CreatedAt time.Time
}

// RunStore persists analysis runs and backtest records.
type RunStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	SaveRun(ctx context.Context, run Run) error
	SaveBacktest(ctx context.Context, rec BacktestRecord) error
	Health(ctx context.Context) error
	Close() error
}

// ConfigStore persists runtime config overrides as key -> JSON fragments.
// Concurrent writes to the same key resolve last-writer-wins.
type ConfigStore interface {
	All(ctx context.Context) (map[string]string, error)
	Put(ctx context.Context, key, value string) error
	Reset(ctx context.Context) error
}

// ModelStore persists trained classifier artifacts keyed by (symbol, interval).
// Save must replace atomically so a concurrent Load never observes a partial
// artifact.
type ModelStore interface {
	Save(symbol string, iv Interval, artifact []byte) error
	Load(symbol string, iv Interval) ([]byte, bool, error)
}

// RunPublisher emits run events to an external broker.
type RunPublisher interface {
	PublishRun(ctx context.Context, run Run) error
	Close() error
}

// TickStream is a live market feed of closed candles.
type TickStream interface {
	Connect(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.StreamCandle, <-chan error)
	Close() error
}

// Metrics records operational measurements.
type Metrics interface {
	RecordRun(symbol, interval string)
	RecordError(kind string)
	RecordLastPrice(symbol string, price float64)
	RecordLatency(op string, seconds float64)
}
