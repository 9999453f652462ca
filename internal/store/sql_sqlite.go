package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

// sqliteParams are the go-sqlite3 DSN options of the cache: WAL so the
// persisted snapshot never blocks reads, immediate write transactions so a
// second client process fails fast on the busy timeout instead of
// deadlocking.
var sqliteParams = url.Values{
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
	"_journal_mode": {"WAL"},
	"_txlock":       {"immediate"},
}

// NewConnectSQLite opens the client cache database at path. The directory is
// created owner-only since the cache holds the session token.
func NewConnectSQLite(ctx context.Context, path string, log *logger.Logger) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			log.Err(err).Str("func", "NewConnectSQLite").Str("dir", dir).Msg("error creating cache directory")
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", "file:"+path+"?"+sqliteParams.Encode())
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error opening cache database")
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Str("path", path).Msg("error connecting cache database (ping)")
		conn.Close()
		return nil, fmt.Errorf("ping cache database: %w", err)
	}
	log.Debug().Str("func", "NewConnectSQLite").Str("path", path).Msg("cache database ready")

	return &DB{DB: conn, logger: log}, nil
}
