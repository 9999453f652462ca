package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/models"
)

// Services is the part of the client the TUI drives.
type Services struct {
	Sync   service.SyncCoordinator
	Auth   service.ClientAuthService
	Search service.SearchService
	Export service.ExportService
	Info   service.ServerInfoService
}

type TUI struct {
	services  Services
	buildInfo models.AppBuildInfo
	logger    *logger.Logger
}

func New(services *service.ClientServices, buildInfo models.AppBuildInfo, logger *logger.Logger) *TUI {
	return &TUI{
		services: Services{
			Sync:   services.Coordinator,
			Auth:   services.AuthService,
			Search: services.SearchService,
			Export: services.Remote,
			Info:   services.Remote,
		},
		buildInfo: buildInfo,
		logger:    logger,
	}
}

// Run shows the TUI until the user quits or ctx is cancelled. signedIn opens
// the watch list directly, otherwise the start menu.
func (t *TUI) Run(ctx context.Context, signedIn bool) error {
	start := pageMenu
	if signedIn {
		start = pageRecords
	}

	root := NewRootModel(ctx, t.services, start, t.buildInfo)
	_, err := tea.NewProgram(root, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if err != nil && ctx.Err() != nil && errors.Is(err, tea.ErrProgramKilled) {
		t.logger.Info().Msg("tui stopped by shutdown")
		return nil
	}
	return err
}
