package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mid "CropPulse/internal/middleware"
	"CropPulse/internal/usecase"
	"CropPulse/pkg/config"
	xhttp "CropPulse/pkg/http"
	applogger "CropPulse/pkg/logger"
)

// Loader fills the in-memory record set before traffic is accepted.
type Loader interface {
	Load(ctx context.Context) error
}

// Sweeper drops per-client state idle for longer than idle.
type Sweeper interface {
	Sweep(idle time.Duration) int
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	store      Loader
	httpServer *xhttp.Server
	limiter    Sweeper
	scanner    *usecase.AlertScanner // nil when alerts are disabled
	pipeline   *mid.AlertPipeline    // nil when alerts are disabled
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	store Loader,
	httpServer *xhttp.Server,
	limiter Sweeper,
	scanner *usecase.AlertScanner,
	pipeline *mid.AlertPipeline,
) *App {
	return &App{
		cfg:        cfg,
		l:          l,
		store:      store,
		httpServer: httpServer,
		limiter:    limiter,
		scanner:    scanner,
		pipeline:   pipeline,
	}
}

// Run loads the record set, starts the server and the alert scanner, and
// blocks until SIGINT or SIGTERM.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loadCtx, loadCancel := context.WithTimeout(ctx, a.cfg.Data.LoadTimeout)
	err := a.store.Load(loadCtx)
	loadCancel()
	if err != nil {
		return fmt.Errorf("load price records: %w", err)
	}

	if a.pipeline != nil {
		a.pipeline.Start(ctx)
	}
	if a.scanner != nil {
		if err := a.scanner.Start(ctx); err != nil {
			return fmt.Errorf("start alert scanner: %w", err)
		}
	}

	if a.limiter != nil {
		go sweepLoop(ctx, a.limiter, a.cfg.Server.RateLimit.IdleTTL, a.l)
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown()
}

// shutdown stops the server first, then the scanner, then drains the pipeline.
func (a *App) shutdown() error {
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}
	if a.scanner != nil {
		if err := a.scanner.Shutdown(ctx); err != nil {
			a.l.Warn("alert scanner stop error", applogger.Error(err))
		}
	}
	if a.pipeline != nil {
		a.pipeline.Stop()
	}

	a.l.Info("shutdown complete")
	return nil
}

// sweepLoop evicts idle rate limit buckets every half idle period until ctx ends.
func sweepLoop(ctx context.Context, s Sweeper, idle time.Duration, l *applogger.Logger) {
	if idle <= 0 {
		idle = 10 * time.Minute
	}
	t := time.NewTicker(idle / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(idle); n > 0 {
				l.Debug("rate limit buckets evicted", applogger.Int("count", n))
			}
		}
	}
}
