package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/pushrpc"
	"github.com/MKhiriev/go-offline-sync/internal/service"
	servicemock "github.com/MKhiriev/go-offline-sync/internal/service/mock"
	"github.com/MKhiriev/go-offline-sync/models"
)

func startPushServer(t *testing.T, auth service.AuthService, hub service.PushHub) *pushrpc.Client {
	t.Helper()

	lis := bufconn.Listen(1 << 16)
	s := grpc.NewServer()
	pushrpc.RegisterPushServer(s, NewHandler(&service.Services{AuthService: auth, Hub: hub}, logger.Nop()))
	go s.Serve(lis)
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return pushrpc.NewClient(conn)
}

func tokenFor(owner int64, ttl time.Duration) models.Token {
	return models.Token{
		UserID: owner,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
}

func TestSubscribe_StreamsOwnerEvents(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := servicemock.NewMockAuthService(ctrl)
	auth.EXPECT().ParseToken(gomock.Any(), "good").Return(tokenFor(7, time.Hour), nil)

	hub := service.NewHub(logger.Nop())
	client := startPushServer(t, auth, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := client.Subscribe(ctx, "good")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Subscribers(7) == 1 }, time.Second, 5*time.Millisecond)

	event := models.PushEvent{Type: models.EventUpdated, Payload: models.Record{ID: "a", Title: "Heat", LastEdit: 3}}
	hub.Publish(8, models.PushEvent{Type: models.EventCreated, Payload: models.Record{ID: "foreign"}})
	hub.Publish(7, event)

	got, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, event.Type, got.Type)
	assert.Equal(t, "a", got.Payload.ID)

	cancel()
	require.Eventually(t, func() bool { return hub.Subscribers(7) == 0 }, time.Second, 5*time.Millisecond)
}

func TestSubscribe_RejectedToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := servicemock.NewMockAuthService(ctrl)
	auth.EXPECT().ParseToken(gomock.Any(), "bad").Return(models.Token{}, service.ErrTokenIsExpiredOrInvalid)

	client := startPushServer(t, auth, service.NewHub(logger.Nop()))

	stream, err := client.Subscribe(context.Background(), "bad")
	require.NoError(t, err)

	_, err = stream.Recv()
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestSubscribe_ExpiryEndsStream(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := servicemock.NewMockAuthService(ctrl)
	auth.EXPECT().ParseToken(gomock.Any(), "short").Return(models.Token{
		UserID: 7,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: &jwt.NumericDate{Time: time.Now().Add(30 * time.Millisecond)},
		},
	}, nil)

	hub := service.NewHub(logger.Nop())
	client := startPushServer(t, auth, hub)

	stream, err := client.Subscribe(context.Background(), "short")
	require.NoError(t, err)

	_, err = stream.Recv()
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
	require.Eventually(t, func() bool { return hub.Subscribers(7) == 0 }, time.Second, 5*time.Millisecond)
}
