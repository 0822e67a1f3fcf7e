package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fooddelivery/api"
	"fooddelivery/config"
	"fooddelivery/infrastructure/persistence/mysql"
	"fooddelivery/pkg/logger"

	"go.uber.org/zap"
)

// App is the wired HTTP service.
type App struct {
	config  *config.Config
	router  *api.Router
	server  *http.Server
	worker  *mysql.OutboxRelay
	closers []func() error
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.router.GetEngine()
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return a.Serve(ctx)
}

// Serve serves until ctx is cancelled or the listener fails.
func (a *App) Serve(ctx context.Context) error {
	defer a.close()

	workerCtx, cancelWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	if a.worker != nil {
		go func() {
			defer close(workerDone)
			logger.Info("Outbox worker started in-process",
				zap.Duration("poll_interval", a.config.Worker.PollInterval))
			if err := a.worker.Run(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Outbox worker stopped", zap.Error(err))
			}
		}()
	} else {
		close(workerDone)
	}
	defer func() {
		cancelWorker()
		<-workerDone
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening",
			zap.String("addr", a.server.Addr),
			zap.String("health", "/api/v1/health"))
		serveErr <- a.server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	timeout := a.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

// close releases connections in reverse order of creation.
func (a *App) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("failed to release resource", zap.Error(err))
		}
	}
	a.closers = nil
}
