package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"CryptoHunter/internal/usecase"
	pkgch "CryptoHunter/pkg/clickhouse"
	"CryptoHunter/pkg/cache"
	"CryptoHunter/pkg/config"
	xhttp "CryptoHunter/pkg/http"
	applogger "CryptoHunter/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	monitor    *usecase.Monitor
	collector  *usecase.StreamCollector // optional
	handler    xhttp.Handler
	cacheStore cache.Service
	chClient   *pkgch.Client // optional
	httpServer *xhttp.Server

	closers []func() error
}

// New creates a new App instance with all dependencies. collector and
// chClient may be nil when the stream or ClickHouse is disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	monitor *usecase.Monitor,
	collector *usecase.StreamCollector,
	handler xhttp.Handler,
	cacheStore cache.Service,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		monitor:    monitor,
		collector:  collector,
		handler:    handler,
		cacheStore: cacheStore,
		chClient:   chClient,
	}
}

// AddCloser registers extra cleanup to run on shutdown, such as the Kafka
// publisher.
func (a *App) AddCloser(fn func() error) {
	if fn != nil {
		a.closers = append(a.closers, fn)
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithLogger(a.log),
	)

	a.monitor.Start(ctx)
	a.log.Info("monitor started", applogger.Strings("symbols", a.cfg.Market.Symbols))

	if a.collector != nil {
		if err := a.collector.Start(ctx); err != nil {
			a.log.Warn("stream collector start failed, polling only", applogger.Error(err))
		} else {
			a.log.Info("stream collector started")
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Stop(); err != nil {
			a.log.Warn("stream collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	for _, fn := range a.closers {
		if err := fn(); err != nil {
			a.log.Warn("closer error", applogger.Error(err))
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.cacheStore != nil {
		if err := a.cacheStore.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
