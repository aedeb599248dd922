package builder

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/notes-backend/internal/state"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

// backgroundJobs is implemented by usecases that spawn summary and indexing work
type backgroundJobs interface {
	Wait()
}

// App represents the application with all its components
type App struct {
	server *http.Server
	store  *state.Store
	jobs   backgroundJobs
	logger *zap.Logger
}

// Run serves HTTP until SIGINT/SIGTERM or a listener error, then shuts down
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		a.store.Close()
		return err
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down server gracefully", zap.Int("sessions", a.store.Len()))

	// Hijacked websocket streams end when their session feeds close
	a.server.RegisterOnShutdown(a.store.Close)

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	done := make(chan struct{})
	go func() {
		a.jobs.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("Background document jobs finished")
	case <-ctx.Done():
		a.logger.Warn("Background document jobs still running at shutdown deadline")
	}

	a.logger.Info("Application stopped gracefully")
	_ = a.logger.Sync()
	return nil
}
