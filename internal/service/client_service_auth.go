package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/models"
)

type clientAuthService struct {
	cache       store.CacheStore
	adapter     adapter.ServerAdapter
	coordinator *Coordinator
	live        *LiveMerger
	logger      *logger.Logger
}

// NewClientAuthService wires session handling around the coordinator and the
// live merger. A token refused by the server on any path tears the session
// down.
func NewClientAuthService(cache store.CacheStore, serverAdapter adapter.ServerAdapter, coordinator *Coordinator, live *LiveMerger, logger *logger.Logger) ClientAuthService {
	a := &clientAuthService{
		cache:       cache,
		adapter:     serverAdapter,
		coordinator: coordinator,
		live:        live,
		logger:      logger,
	}

	expire := func() {
		ctx := logger.WithContext(context.Background())
		if err := a.Logout(ctx); err != nil {
			logger.Err(err).Str("func", "clientAuthService.expire").Msg("failed to tear down rejected session")
		}
	}
	coordinator.OnAuthInvalid(expire)
	live.OnAuthInvalid(expire)

	return a
}

func (a *clientAuthService) Register(ctx context.Context, user models.User) (models.Session, error) {
	session, err := a.adapter.Register(ctx, user)
	if err != nil {
		return models.Session{}, mapAuthError(err)
	}
	return session, a.begin(ctx, session)
}

func (a *clientAuthService) Login(ctx context.Context, user models.User) (models.Session, error) {
	session, err := a.adapter.Login(ctx, user)
	if err != nil {
		return models.Session{}, mapAuthError(err)
	}
	return session, a.begin(ctx, session)
}

func (a *clientAuthService) Restore(ctx context.Context) (models.Session, bool, error) {
	session, ok := a.cache.LoadSession(ctx)
	if !ok {
		return models.Session{}, false, nil
	}
	if err := a.begin(ctx, session); err != nil {
		return models.Session{}, false, err
	}
	return session, true, nil
}

func (a *clientAuthService) Logout(ctx context.Context) error {
	a.live.Stop()

	if err := a.coordinator.ResetSession(ctx); err != nil {
		return err
	}
	if err := a.cache.ClearSession(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	logger.FromContext(ctx).Info().Msg("logged out")
	return nil
}

func (a *clientAuthService) begin(ctx context.Context, session models.Session) error {
	if err := a.cache.SaveSession(ctx, session); err != nil {
		// the session still works for this run
		logger.FromContext(ctx).Err(err).
			Str("func", "clientAuthService.begin").
			Int64("user_id", session.UserID).
			Msg("failed to persist session")
	}

	gen, err := a.coordinator.StartSession(ctx, session)
	if err != nil {
		return err
	}
	a.live.Start(ctx, session.Token, gen)

	return nil
}
