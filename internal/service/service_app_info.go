package service

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

type appInfoService struct {
	info   models.ServerInfo
	logger *logger.Logger
}

// NewAppInfoService describes the server from its configuration. Push lists
// websocket when the REST listener is on and grpc when the gRPC one is.
func NewAppInfoService(cfg *config.StructuredConfig, logger *logger.Logger) (AppInfoService, error) {
	if cfg.App.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	push := make([]string, 0, 2)
	if cfg.Server.HTTPAddress != "" {
		push = append(push, models.PushWebsocket)
	}
	if cfg.Server.GRPCAddress != "" {
		push = append(push, models.PushGRPC)
	}

	return &appInfoService{
		info: models.ServerInfo{
			Version:  cfg.App.Version,
			PageSize: cfg.Sync.PageSize,
			Push:     push,
		},
		logger: logger,
	}, nil
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.info.Version
}

func (s *appInfoService) GetServerInfo(ctx context.Context) models.ServerInfo {
	info := s.info
	info.Push = append([]string(nil), s.info.Push...)
	return info
}
