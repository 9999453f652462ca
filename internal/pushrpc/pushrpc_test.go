package pushrpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/MKhiriev/go-offline-sync/models"
)

type fakePushServer struct {
	events []models.PushEvent
	auth   chan string
}

func (f *fakePushServer) Subscribe(_ *SubscribeRequest, stream EventStream) error {
	authorization := AuthorizationFromContext(stream.Context())
	f.auth <- authorization
	if authorization != "Bearer good" {
		return status.Error(codes.Unauthenticated, "bad token")
	}

	for i := range f.events {
		if err := stream.Send(&f.events[i]); err != nil {
			return err
		}
	}
	<-stream.Context().Done()
	return nil
}

func startBufServer(t *testing.T, srv PushServer) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 16)
	s := grpc.NewServer()
	RegisterPushServer(s, srv)
	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	return NewClient(conn)
}

func TestSubscribe_ReceivesEventsInOrder(t *testing.T) {
	srv := &fakePushServer{
		events: []models.PushEvent{
			{Type: models.EventCreated, Payload: models.Record{ID: "a", Title: "Alien", LastEdit: 1}},
			{Type: models.EventUpdated, Payload: models.Record{ID: "a", Title: "Aliens", LastEdit: 2}},
		},
		auth: make(chan string, 1),
	}
	client := startBufServer(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Subscribe(ctx, "good")
	require.NoError(t, err)

	first, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, models.EventCreated, first.Type)
	assert.Equal(t, "Alien", first.Payload.Title)

	second, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, models.EventUpdated, second.Type)
	assert.Equal(t, int64(2), second.Payload.LastEdit)

	assert.Equal(t, "Bearer good", <-srv.auth)
}

func TestSubscribe_Unauthenticated(t *testing.T) {
	srv := &fakePushServer{auth: make(chan string, 1)}
	client := startBufServer(t, srv)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.Subscribe(ctx, "bad")
	require.NoError(t, err)

	_, err = stream.Recv()
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestAuthorizationFromContext_Missing(t *testing.T) {
	assert.Empty(t, AuthorizationFromContext(context.Background()))
}
