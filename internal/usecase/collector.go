package usecase

import (
	"context"
	"sync/atomic"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
	applogger "github.com/katheedev/crypto-sentiment/pkg/logger"
)

// Collector consumes the live candle stream: it tracks last prices and
// invalidates cached analyses so the next request sees the fresh bar.
type Collector struct {
	stream   domrepo.TickStream
	analyzer *Analyzer
	interval domrepo.Interval
	metrics  domrepo.Metrics
	l        *applogger.Logger
	closed   atomic.Bool
}

// NewCollector creates a Collector.
func NewCollector(stream domrepo.TickStream, analyzer *Analyzer, interval domrepo.Interval, metrics domrepo.Metrics, l *applogger.Logger) *Collector {
	return &Collector{
		stream:   stream,
		analyzer: analyzer,
		interval: interval,
		metrics:  metrics,
		l:        l,
	}
}

func (c *Collector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	go c.run(ctx)
	return nil
}

// run consumes the stream until ctx ends, reconnecting after read failures.
func (c *Collector) run(ctx context.Context) {
	for {
		candles, errs := c.stream.Read(ctx)
		c.consume(ctx, candles, errs)
		if ctx.Err() != nil || c.closed.Load() {
			return
		}

		r, ok := c.stream.(interface {
			Reconnect(context.Context) error
		})
		if !ok {
			return
		}
		c.l.Warn("stream ended, reconnecting")
		if err := r.Reconnect(ctx); err != nil {
			c.metrics.RecordError("stream")
			c.l.Error("stream reconnect failed", applogger.Error(err))
			return
		}
	}
}

// consume returns once both stream channels are closed.
func (c *Collector) consume(ctx context.Context, candles <-chan models.StreamCandle, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				c.metrics.RecordError("stream")
				c.l.Warn("stream error", applogger.Error(err))
			}
		case candle, ok := <-candles:
			if !ok {
				return
			}
			c.onCandle(ctx, candle)
		}
	}
}

func (c *Collector) onCandle(ctx context.Context, candle models.StreamCandle) {
	c.metrics.RecordLastPrice(candle.Symbol, candle.Close)
	c.analyzer.InvalidateCache(ctx, candle.Symbol, c.interval)
	c.l.Debug("closed candle",
		applogger.String("symbol", candle.Symbol),
		applogger.Float64("close", candle.Close),
	)
}

func (c *Collector) Stop() error {
	c.closed.Store(true)
	return c.stream.Close()
}
