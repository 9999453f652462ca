// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/app"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/mock"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/models"
)

// newTestClientAuth wires a real coordinator and live merger over
// mocks.
func newTestClientAuth(t *testing.T, ctrl *gomock.Controller) (
	*clientAuthService,
	*mock.MockServerAdapter,
	*mock.MockCacheStore,
	*mock.MockPushListener,
) {
	t.Helper()

	mockAdapter := mock.NewMockServerAdapter(ctrl)
	mockStore := mock.NewMockCacheStore(ctrl)
	mockListener := mock.NewMockPushListener(ctrl)

	coordinator := NewCoordinator(mockAdapter, mockStore, 10, logger.Nop())
	live := NewLiveMerger(mockListener, coordinator, time.Millisecond, logger.Nop())
	t.Cleanup(func() {
		live.Stop()
		coordinator.Close()
	})

	svc := NewClientAuthService(mockStore, mockAdapter, coordinator, live, logger.Nop()).(*clientAuthService)
	return svc, mockAdapter, mockStore, mockListener
}

func blockUntilDone(ctx context.Context, _ string, _ chan<- models.PushEvent) error {
	<-ctx.Done()
	return nil
}

func TestClientAuthService_Login_StartsSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, mockAdapter, mockStore, mockListener := newTestClientAuth(t, ctrl)
	ctx := context.Background()

	user := models.User{Login: "neo", Password: "secret"}
	session := models.Session{UserID: 3, Login: "neo", Token: "tok"}
	cached := []models.Record{{ID: "1", Title: "Heat"}}

	listening := make(chan struct{})
	gomock.InOrder(
		mockAdapter.EXPECT().Login(ctx, user).Return(session, nil),
		mockStore.EXPECT().SaveSession(ctx, session).Return(nil),
		mockStore.EXPECT().Load(ctx, int64(3)).Return(cached),
		mockStore.EXPECT().LoadWatermark(ctx, int64(3)).Return(int64(12), true),
		mockAdapter.EXPECT().SetToken("tok"),
	)
	mockListener.EXPECT().Listen(gomock.Any(), "tok", gomock.Any()).
		DoAndReturn(func(ctx context.Context, token string, out chan<- models.PushEvent) error {
			close(listening)
			return blockUntilDone(ctx, token, out)
		})

	got, err := svc.Login(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, session, got)

	snap := svc.coordinator.Snapshot()
	assert.True(t, snap.LoggedIn)
	assert.Equal(t, "neo", snap.Login)
	assert.Len(t, snap.Records, 1)

	select {
	case <-listening:
	case <-time.After(time.Second):
		t.Fatal("push channel not opened")
	}
}

func TestClientAuthService_Login_WrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, mockAdapter, _, _ := newTestClientAuth(t, ctrl)
	ctx := context.Background()

	mockAdapter.EXPECT().Login(ctx, gomock.Any()).
		Return(models.Session{}, fmt.Errorf("%w: %s", adapter.ErrAuthInvalid, app.MsgInvalidLoginPassword))

	_, err := svc.Login(ctx, models.User{Login: "neo", Password: "nope"})
	require.ErrorIs(t, err, ErrWrongPassword)
	assert.False(t, svc.coordinator.Snapshot().LoggedIn)
}

func TestClientAuthService_Register_MapsErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{name: "login taken", err: adapter.ErrLoginTaken, wantErr: store.ErrLoginAlreadyExists},
		{name: "invalid data", err: fmt.Errorf("%w: %s", adapter.ErrBadRequest, app.MsgInvalidDataProvided), wantErr: ErrInvalidDataProvided},
		{name: "server failure", err: fmt.Errorf("%w: http 500: %s", adapter.ErrTransport, app.MsgRegistrationFailed), wantErr: ErrRegisterOnServer},
		{name: "offline", err: fmt.Errorf("%w: connection refused", adapter.ErrTransport), wantErr: ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			svc, mockAdapter, _, _ := newTestClientAuth(t, ctrl)

			mockAdapter.EXPECT().Register(gomock.Any(), gomock.Any()).Return(models.Session{}, tt.err)

			_, err := svc.Register(context.Background(), models.User{Login: "neo", Password: "secret"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClientAuthService_Register_SessionSaveFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, mockAdapter, mockStore, mockListener := newTestClientAuth(t, ctrl)
	ctx := context.Background()

	session := models.Session{UserID: 3, Login: "neo", Token: "tok"}
	mockAdapter.EXPECT().Register(ctx, gomock.Any()).Return(session, nil)
	mockStore.EXPECT().SaveSession(ctx, session).Return(errors.New("disk full"))
	mockStore.EXPECT().Load(ctx, int64(3)).Return(nil)
	mockStore.EXPECT().LoadWatermark(ctx, int64(3)).Return(int64(0), false)
	mockAdapter.EXPECT().SetToken("tok")
	mockListener.EXPECT().Listen(gomock.Any(), "tok", gomock.Any()).DoAndReturn(blockUntilDone).AnyTimes()

	_, err := svc.Register(ctx, models.User{Login: "neo", Password: "secret"})
	require.NoError(t, err)
	assert.True(t, svc.coordinator.Snapshot().LoggedIn)
}

func TestClientAuthService_Restore(t *testing.T) {
	t.Run("no stored session", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, _, mockStore, _ := newTestClientAuth(t, ctrl)

		mockStore.EXPECT().LoadSession(gomock.Any()).Return(models.Session{}, false)

		_, ok, err := svc.Restore(context.Background())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("stored session resumes", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		svc, mockAdapter, mockStore, mockListener := newTestClientAuth(t, ctrl)

		session := models.Session{UserID: 3, Login: "neo", Token: "tok"}
		mockStore.EXPECT().LoadSession(gomock.Any()).Return(session, true)
		mockStore.EXPECT().SaveSession(gomock.Any(), session).Return(nil)
		mockStore.EXPECT().Load(gomock.Any(), int64(3)).Return(nil)
		mockStore.EXPECT().LoadWatermark(gomock.Any(), int64(3)).Return(int64(0), false)
		mockAdapter.EXPECT().SetToken("tok")
		mockListener.EXPECT().Listen(gomock.Any(), "tok", gomock.Any()).DoAndReturn(blockUntilDone).AnyTimes()

		got, ok, err := svc.Restore(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, session, got)
	})
}

func TestClientAuthService_Logout(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, mockAdapter, mockStore, mockListener := newTestClientAuth(t, ctrl)
	ctx := context.Background()

	session := models.Session{UserID: 3, Login: "neo", Token: "tok"}
	mockAdapter.EXPECT().Login(ctx, gomock.Any()).Return(session, nil)
	mockStore.EXPECT().SaveSession(ctx, session).Return(nil)
	mockStore.EXPECT().Load(ctx, int64(3)).Return(nil)
	mockStore.EXPECT().LoadWatermark(ctx, int64(3)).Return(int64(0), false)
	mockAdapter.EXPECT().SetToken("tok")

	listening := make(chan struct{})
	closed := make(chan struct{})
	mockListener.EXPECT().Listen(gomock.Any(), "tok", gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ chan<- models.PushEvent) error {
			close(listening)
			<-ctx.Done()
			close(closed)
			return nil
		})

	_, err := svc.Login(ctx, models.User{Login: "neo", Password: "secret"})
	require.NoError(t, err)

	select {
	case <-listening:
	case <-time.After(time.Second):
		t.Fatal("push channel not opened after login")
	}

	gomock.InOrder(
		mockAdapter.EXPECT().SetToken(""),
		mockStore.EXPECT().ClearSession(ctx).Return(nil),
	)
	require.NoError(t, svc.Logout(ctx))

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatal("push channel still open after logout")
	}
	assert.False(t, svc.coordinator.Snapshot().LoggedIn)
}

func TestClientAuthService_RejectedTokenTearsDownSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc, mockAdapter, mockStore, mockListener := newTestClientAuth(t, ctrl)
	ctx := context.Background()

	session := models.Session{UserID: 3, Login: "neo", Token: "expired"}
	mockStore.EXPECT().LoadSession(gomock.Any()).Return(session, true)
	mockStore.EXPECT().SaveSession(gomock.Any(), session).Return(nil)
	mockStore.EXPECT().Load(gomock.Any(), int64(3)).Return(nil)
	mockStore.EXPECT().LoadWatermark(gomock.Any(), int64(3)).Return(int64(0), false)
	mockAdapter.EXPECT().SetToken("expired")
	mockListener.EXPECT().Listen(gomock.Any(), "expired", gomock.Any()).Return(adapter.ErrAuthInvalid)

	cleared := make(chan struct{})
	mockAdapter.EXPECT().SetToken("")
	mockStore.EXPECT().ClearSession(gomock.Any()).DoAndReturn(func(context.Context) error {
		close(cleared)
		return nil
	})

	_, ok, err := svc.Restore(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	select {
	case <-cleared:
	case <-time.After(time.Second):
		t.Fatal("session not torn down")
	}
	assert.Eventually(t, func() bool { return !svc.coordinator.Snapshot().LoggedIn }, time.Second, time.Millisecond)
}
