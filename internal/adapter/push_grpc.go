package adapter

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/pushrpc"
	"github.com/MKhiriev/go-offline-sync/models"
)

type grpcPushListener struct {
	target string
	logger *logger.Logger
}

func newGRPCPushListener(target string, logger *logger.Logger) *grpcPushListener {
	return &grpcPushListener{target: target, logger: logger}
}

// Listen implements [PushListener].
func (l *grpcPushListener) Listen(ctx context.Context, token string, events chan<- models.PushEvent) error {
	conn, err := grpc.NewClient(l.target, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("%w: grpc client: %w", ErrTransport, err)
	}
	defer conn.Close()

	stream, err := pushrpc.NewClient(conn).Subscribe(ctx, token)
	if err != nil {
		return l.mapStreamError(ctx, err)
	}

	l.logger.Debug().Str("func", "grpcPushListener.Listen").Msg("push stream opened")

	for {
		event, err := stream.Recv()
		if err != nil {
			return l.mapStreamError(ctx, err)
		}

		select {
		case events <- *event:
		case <-ctx.Done():
			return nil
		}
	}
}

func (l *grpcPushListener) mapStreamError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return nil
	}
	if status.Code(err) == codes.Unauthenticated {
		return ErrAuthInvalid
	}
	return fmt.Errorf("%w: push stream: %w", ErrTransport, err)
}
