package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/mock"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/models"
)

var testAppConfig = config.App{
	TokenSignKey:  "test-sign-key",
	TokenIssuer:   "go-offline-sync-test",
	TokenDuration: time.Hour,
}

func newTestAuthService(t *testing.T) (AuthService, *mock.MockUserRepository, *mock.MockPasswordHasher) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := mock.NewMockUserRepository(ctrl)
	hasher := mock.NewMockPasswordHasher(ctrl)

	return NewAuthService(repo, hasher, testAppConfig, logger.Nop()), repo, hasher
}

// ─────────────────────────────────────────────
// RegisterUser
// ─────────────────────────────────────────────

func TestAuthService_RegisterUser_HashesPassword(t *testing.T) {
	svc, repo, hasher := newTestAuthService(t)
	ctx := context.Background()

	hasher.EXPECT().Hash("secret").Return("$argon2id$hash", nil)
	repo.EXPECT().CreateUser(ctx, models.User{Login: "neo", PasswordHash: "$argon2id$hash"}).
		Return(models.User{UserID: 9, Login: "neo", PasswordHash: "$argon2id$hash"}, nil)

	user, err := svc.RegisterUser(ctx, models.User{Login: "neo", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), user.UserID)
	assert.Empty(t, user.Password)
}

func TestAuthService_RegisterUser_Errors(t *testing.T) {
	t.Run("empty login", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t)
		_, err := svc.RegisterUser(context.Background(), models.User{Password: "secret"})
		assert.ErrorIs(t, err, ErrInvalidDataProvided)
	})

	t.Run("empty password", func(t *testing.T) {
		svc, _, _ := newTestAuthService(t)
		_, err := svc.RegisterUser(context.Background(), models.User{Login: "neo"})
		assert.ErrorIs(t, err, ErrInvalidDataProvided)
	})

	t.Run("login taken", func(t *testing.T) {
		svc, repo, hasher := newTestAuthService(t)
		hasher.EXPECT().Hash("secret").Return("h", nil)
		repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(models.User{}, store.ErrLoginAlreadyExists)

		_, err := svc.RegisterUser(context.Background(), models.User{Login: "neo", Password: "secret"})
		assert.ErrorIs(t, err, store.ErrLoginAlreadyExists)
	})

	t.Run("hash failure", func(t *testing.T) {
		svc, _, hasher := newTestAuthService(t)
		hasher.EXPECT().Hash("secret").Return("", errors.New("rng exhausted"))

		_, err := svc.RegisterUser(context.Background(), models.User{Login: "neo", Password: "secret"})
		assert.Error(t, err)
	})
}

// ─────────────────────────────────────────────
// Login
// ─────────────────────────────────────────────

func TestAuthService_Login(t *testing.T) {
	stored := models.User{UserID: 9, Login: "neo", PasswordHash: "h"}

	tests := []struct {
		name    string
		setup   func(repo *mock.MockUserRepository, hasher *mock.MockPasswordHasher)
		wantErr error
	}{
		{
			name: "success",
			setup: func(repo *mock.MockUserRepository, hasher *mock.MockPasswordHasher) {
				repo.EXPECT().FindUserByLogin(gomock.Any(), "neo").Return(stored, nil)
				hasher.EXPECT().Verify("secret", "h").Return(true, nil)
			},
		},
		{
			name: "wrong password",
			setup: func(repo *mock.MockUserRepository, hasher *mock.MockPasswordHasher) {
				repo.EXPECT().FindUserByLogin(gomock.Any(), "neo").Return(stored, nil)
				hasher.EXPECT().Verify("secret", "h").Return(false, nil)
			},
			wantErr: ErrWrongPassword,
		},
		{
			name: "unknown login looks like wrong password",
			setup: func(repo *mock.MockUserRepository, _ *mock.MockPasswordHasher) {
				repo.EXPECT().FindUserByLogin(gomock.Any(), "neo").Return(models.User{}, store.ErrNoUserWasFound)
			},
			wantErr: ErrWrongPassword,
		},
		{
			name: "repository failure",
			setup: func(repo *mock.MockUserRepository, _ *mock.MockPasswordHasher) {
				repo.EXPECT().FindUserByLogin(gomock.Any(), "neo").Return(models.User{}, store.ErrScanningRow)
			},
			wantErr: store.ErrScanningRow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, hasher := newTestAuthService(t)
			tt.setup(repo, hasher)

			user, err := svc.Login(context.Background(), models.User{Login: "neo", Password: "secret"})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, stored, user)
		})
	}
}

// ─────────────────────────────────────────────
// Tokens
// ─────────────────────────────────────────────

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	token, err := svc.CreateToken(ctx, models.User{UserID: 42})
	require.NoError(t, err)
	require.NotEmpty(t, token.SignedString)

	parsed, err := svc.ParseToken(ctx, token.SignedString)
	require.NoError(t, err)
	assert.Equal(t, int64(42), parsed.UserID)
}

func TestAuthService_ParseToken_Rejects(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.ParseToken(ctx, "not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)

	foreignCfg := testAppConfig
	foreignCfg.TokenIssuer = "someone-else"
	foreign := NewAuthService(nil, nil, foreignCfg, logger.Nop())
	token, err := foreign.CreateToken(ctx, models.User{UserID: 42})
	require.NoError(t, err)

	_, err = svc.ParseToken(ctx, token.SignedString)
	assert.ErrorIs(t, err, ErrTokenIsExpiredOrInvalid)
}

func TestAuthService_CreateToken_MisconfiguredKey(t *testing.T) {
	cfg := testAppConfig
	cfg.TokenSignKey = ""
	svc := NewAuthService(nil, nil, cfg, logger.Nop())

	_, err := svc.CreateToken(context.Background(), models.User{UserID: 1})
	assert.ErrorIs(t, err, ErrTokenCreationFailed)
}
