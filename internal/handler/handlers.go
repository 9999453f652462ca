package handler

import (
	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/handler/grpc"
	"github.com/MKhiriev/go-offline-sync/internal/handler/http"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/service"
)

// Handlers bundles the transports enabled by the server configuration. HTTP
// serves REST and the websocket push channel, GRPC the push stream only.
type Handlers struct {
	HTTP *http.Handler
	GRPC *grpc.Handler
}

// NewHandlers builds a handler for every configured listen address. Both
// share services, so a write over REST reaches gRPC subscribers through the
// same hub.
func NewHandlers(services *service.Services, cfg config.Server, logger *logger.Logger) (*Handlers, error) {
	var handlers Handlers

	if cfg.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, logger)
		logger.Info().Str("address", cfg.HTTPAddress).Msg("rest and websocket push enabled")
	}
	if cfg.GRPCAddress != "" {
		handlers.GRPC = grpc.NewHandler(services, logger)
		logger.Info().Str("address", cfg.GRPCAddress).Msg("grpc push enabled")
	}

	if handlers.HTTP == nil && handlers.GRPC == nil {
		return nil, errNoHandlersAreCreated
	}
	return &handlers, nil
}
