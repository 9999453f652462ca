// Package grpc implements the gRPC push stream of the sync server.
package grpc

import (
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/pushrpc"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
)

// Handler is the gRPC counterpart of the websocket push channel. Both read
// from the same [service.PushHub].
type Handler struct {
	// services provides the auth service and the push hub.
	services *service.Services

	logger *logger.Logger
}

// NewHandler constructs a [Handler].
func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		services: services,
		logger:   logger,
	}
}

// Subscribe implements [pushrpc.PushServer]. The stream lives until the
// client cancels or the token expires; a missing, invalid or expired token
// ends it with codes.Unauthenticated.
func (h *Handler) Subscribe(_ *pushrpc.SubscribeRequest, stream pushrpc.EventStream) error {
	ctx := stream.Context()

	tokenString, err := utils.ParseBearerToken(pushrpc.AuthorizationFromContext(ctx))
	if err != nil {
		h.logger.Warn().Err(err).Str("func", "*Handler.Subscribe").Msg("push stream without token")
		return status.Error(codes.Unauthenticated, "missing bearer token")
	}

	token, err := h.services.AuthService.ParseToken(ctx, tokenString)
	if err != nil {
		h.logger.Warn().Err(err).Str("func", "*Handler.Subscribe").Msg("push stream token rejected")
		return status.Error(codes.Unauthenticated, err.Error())
	}

	events, unsubscribe := h.services.Hub.Subscribe(token.UserID)
	defer unsubscribe()

	log := h.logger.With().Int64("user_id", token.UserID).Logger()
	log.Debug().Str("func", "*Handler.Subscribe").Msg("push stream opened")

	var expired <-chan time.Time
	if token.ExpiresAt != nil {
		timer := time.NewTimer(time.Until(token.ExpiresAt.Time))
		defer timer.Stop()
		expired = timer.C
	}

	for {
		select {
		case event, open := <-events:
			if !open {
				return nil
			}
			if err := stream.Send(&event); err != nil {
				log.Warn().Err(err).Str("func", "*Handler.Subscribe").Msg("push send failed")
				return err
			}

		case <-expired:
			log.Info().Str("func", "*Handler.Subscribe").Msg("push stream closed, token expired")
			return status.Error(codes.Unauthenticated, service.ErrTokenIsExpiredOrInvalid.Error())

		case <-ctx.Done():
			log.Debug().Str("func", "*Handler.Subscribe").Msg("push stream closed by client")
			return nil
		}
	}
}
