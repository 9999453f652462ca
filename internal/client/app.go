package client

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/workers"
)

// UI is the interactive front end driven by the app.
type UI interface {
	Run(ctx context.Context, signedIn bool) error
}

// Closer releases a resource held for the app lifetime.
type Closer interface {
	Close() error
}

// App runs one client process: it resumes the stored session, starts the
// background sync and blocks in the UI.
type App struct {
	services *service.ClientServices
	ui       UI
	workers  *workers.Workers
	storages Closer
	logger   *logger.Logger
}

func NewApp(services *service.ClientServices, ui UI, workers *workers.Workers, storages Closer, logger *logger.Logger) (*App, error) {
	if services == nil || ui == nil || workers == nil {
		return nil, ErrIncompleteApp
	}
	return &App{
		services: services,
		ui:       ui,
		workers:  workers,
		storages: storages,
		logger:   logger,
	}, nil
}

func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	return a.run(ctx)
}

func (a *App) run(ctx context.Context) error {
	defer a.close()

	_, signedIn, err := a.services.AuthService.Restore(ctx)
	if err != nil {
		// a session that cannot be resumed only means the user signs in again
		a.logger.Warn().Err(err).Str("func", "App.run").Msg("stored session was not restored")
		signedIn = false
	}

	a.workers.Run(ctx)

	if err := a.ui.Run(ctx, signedIn); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

func (a *App) close() {
	a.workers.Stop()
	a.services.Close()
	if a.storages == nil {
		return
	}
	if err := a.storages.Close(); err != nil {
		a.logger.Err(err).Str("func", "App.close").Msg("failed to close local storage")
	}
}
