package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
	"github.com/katheedev/crypto-sentiment/internal/usecase"
	pkgch "github.com/katheedev/crypto-sentiment/pkg/clickhouse"
	"github.com/katheedev/crypto-sentiment/pkg/config"
	xhttp "github.com/katheedev/crypto-sentiment/pkg/http"
	applogger "github.com/katheedev/crypto-sentiment/pkg/logger"
	"github.com/katheedev/crypto-sentiment/pkg/queue"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	handler    xhttp.Handler
	collector  *usecase.Collector // nil when streaming is disabled
	jobs       *queue.RedisQueue  // nil when the queue is disabled
	chClient   *pkgch.Client      // nil when persistence is disabled
	publisher  domrepo.RunPublisher
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	collector *usecase.Collector,
	jobs *queue.RedisQueue,
	chClient *pkgch.Client,
	publisher domrepo.RunPublisher,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		handler:   handler,
		collector: collector,
		jobs:      jobs,
		chClient:  chClient,
		publisher: publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(a.cfg.Metrics.Path),
	)

	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.l.Error("collector error", applogger.Error(err))
			}
		}()
		a.l.Info("collector started", applogger.Strings("symbols", a.cfg.Market.StreamSymbols))
	}

	if a.jobs != nil {
		if err := a.jobs.Start(); err != nil {
			a.l.Error("job queue start error", applogger.Error(err))
		} else {
			a.l.Info("job queue started", applogger.Int("workers", a.cfg.Queue.Workers))
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.l.Warn("collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.jobs != nil {
		if err := a.jobs.Stop(shutdownCtx); err != nil {
			a.l.Warn("job queue stop error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}
