package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

func newPushServer(t *testing.T, events []models.PushEvent) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, pushPath, r.URL.Path)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, event := range events {
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
		// hold the connection until the client leaves
		_, _, _ = conn.ReadMessage()
	}))
}

func TestWSPushListener_ForwardsEvents(t *testing.T) {
	srv := newPushServer(t, []models.PushEvent{
		{Type: models.EventCreated, Payload: models.Record{ID: "a", Title: "Alien"}},
		{Type: models.EventUpdated, Payload: models.Record{ID: "a", Title: "Aliens"}},
	})
	defer srv.Close()

	listener, err := NewPushListener(config.ClientAdapter{HTTPAddress: srv.URL}, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan models.PushEvent, 2)
	done := make(chan error, 1)
	go func() { done <- listener.Listen(ctx, "good", events) }()

	first := <-events
	second := <-events
	assert.Equal(t, models.EventCreated, first.Type)
	assert.Equal(t, "Aliens", second.Payload.Title)

	cancel()
	assert.NoError(t, <-done)
}

func TestWSPushListener_RejectedToken(t *testing.T) {
	srv := newPushServer(t, nil)
	defer srv.Close()

	listener, err := NewPushListener(config.ClientAdapter{HTTPAddress: srv.URL}, logger.Nop())
	require.NoError(t, err)

	err = listener.Listen(context.Background(), "bad", make(chan models.PushEvent))
	assert.ErrorIs(t, err, ErrAuthInvalid)
}

func TestWSPushListener_ServerGone(t *testing.T) {
	srv := newPushServer(t, nil)
	url := srv.URL
	srv.Close()

	listener, err := NewPushListener(config.ClientAdapter{HTTPAddress: url}, logger.Nop())
	require.NoError(t, err)

	err = listener.Listen(context.Background(), "good", make(chan models.PushEvent))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestNewPushListener_PrefersGRPC(t *testing.T) {
	listener, err := NewPushListener(config.ClientAdapter{HTTPAddress: "localhost:8080", GRPCAddress: "localhost:9090"}, logger.Nop())
	require.NoError(t, err)
	_, ok := listener.(*grpcPushListener)
	assert.True(t, ok)
}
