package store

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// ClientStorages groups the client-side storage: the local cache and the
// persisted session.
type ClientStorages struct {
	CacheStore CacheStore

	db *DB
}

// NewClientStorages opens the SQLite file at cfg.DB.DSN (creating it when
// missing), applies the client migrations and builds the cache store.
//
// A file that cannot be opened or migrated is moved aside and replaced by an
// empty cache, so a damaged cache never prevents the client from starting.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Msg("creating new client storages...")

	db, err := openClientDB(ctx, cfg.DB.DSN, logger)
	if err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", cfg.DB.DSN, time.Now().Unix())
		logger.Err(err).
			Str("func", "NewClientStorages").
			Str("moved_to", aside).
			Msg("local cache unusable, starting with an empty one")

		if renameErr := os.Rename(cfg.DB.DSN, aside); renameErr != nil && !os.IsNotExist(renameErr) {
			return nil, fmt.Errorf("move aside broken cache: %w", renameErr)
		}

		db, err = openClientDB(ctx, cfg.DB.DSN, logger)
		if err != nil {
			return nil, err
		}
	}

	return &ClientStorages{
		CacheStore: NewCacheStore(db, logger),
		db:         db,
	}, nil
}

func openClientDB(ctx context.Context, path string, logger *logger.Logger) (*DB, error) {
	db, err := NewConnectSQLite(ctx, path, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	if err := db.MigrateClient(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

// Close releases the SQLite connection.
func (s *ClientStorages) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
