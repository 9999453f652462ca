package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// cacheStore is the SQLite implementation of [CacheStore]. Records are kept
// as JSON payloads (client markers included) in cache order.
type cacheStore struct {
	db     *DB
	logger *logger.Logger
}

// NewCacheStore constructs a [CacheStore] over an opened, migrated SQLite
// database.
func NewCacheStore(db *DB, logger *logger.Logger) CacheStore {
	return &cacheStore{
		db:     db,
		logger: logger,
	}
}

// sqlite uses "?" placeholders
var sqlite = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// insertBatchSize keeps a multi-row insert below SQLite's variable limit.
const insertBatchSize = 200

// Load returns the owner's cached records in their stored order. Any read or
// decode failure is logged and yields an empty cache.
func (c *cacheStore) Load(ctx context.Context, ownerID int64) []models.Record {
	log := logger.FromContext(ctx)

	query, args, err := sqlite.Select("payload").
		From("cached_records").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("position").
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "cacheStore.Load").Msg("failed to build query")
		return []models.Record{}
	}

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "cacheStore.Load").Int64("user_id", ownerID).Msg("cache unreadable, starting empty")
		return []models.Record{}
	}
	defer rows.Close()

	records := make([]models.Record, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			log.Err(err).Str("func", "cacheStore.Load").Msg("cache row unreadable, starting empty")
			return []models.Record{}
		}

		var record models.Record
		if err := json.Unmarshal([]byte(payload), &record); err != nil {
			log.Err(err).Str("func", "cacheStore.Load").Msg("corrupt cache row, starting empty")
			return []models.Record{}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		log.Err(err).Str("func", "cacheStore.Load").Msg("cache iteration failed, starting empty")
		return []models.Record{}
	}

	return records
}

// LoadWatermark returns the persisted watermark. ok is false when none was
// stored or it cannot be read.
func (c *cacheStore) LoadWatermark(ctx context.Context, ownerID int64) (int64, bool) {
	query, args, err := sqlite.Select("watermark").
		From("sync_state").
		Where(sq.Eq{"owner_id": ownerID}).
		ToSql()
	if err != nil {
		return 0, false
	}

	var watermark sql.NullInt64
	err = c.db.QueryRowContext(ctx, query, args...).Scan(&watermark)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContext(ctx).Err(err).Str("func", "cacheStore.LoadWatermark").Msg("watermark unreadable")
		}
		return 0, false
	}

	return watermark.Int64, watermark.Valid
}

// Persist replaces the owner's cached records and watermark atomically. A
// nil watermark clears the stored one.
func (c *cacheStore) Persist(ctx context.Context, ownerID int64, records []models.Record, watermark *int64) error {
	log := logger.FromContext(ctx)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
	}
	defer tx.Rollback()

	deleteQuery, deleteArgs, err := sqlite.Delete("cached_records").Where(sq.Eq{"owner_id": ownerID}).ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))

		insert := sqlite.Insert("cached_records").Columns("owner_id", "record_id", "position", "payload")
		for position := start; position < end; position++ {
			payload, err := json.Marshal(records[position])
			if err != nil {
				return fmt.Errorf("encode record %s: %w", records[position].ID, err)
			}
			insert = insert.Values(ownerID, records[position].ID, position, string(payload))
		}

		insertQuery, insertArgs, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
			log.Err(err).Str("func", "cacheStore.Persist").Int("records", len(records)).Msg("failed to write cache")
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
	}

	var stored sql.NullInt64
	if watermark != nil {
		stored = sql.NullInt64{Int64: *watermark, Valid: true}
	}
	stateQuery, stateArgs, err := sqlite.Insert("sync_state").
		Columns("owner_id", "watermark").
		Values(ownerID, stored).
		Suffix("ON CONFLICT (owner_id) DO UPDATE SET watermark = excluded.watermark").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err := tx.ExecContext(ctx, stateQuery, stateArgs...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
	}

	return nil
}

// SaveSession stores the single signed-in session.
func (c *cacheStore) SaveSession(ctx context.Context, session models.Session) error {
	query, args, err := sqlite.Insert("session").
		Columns("id", "user_id", "login", "token").
		Values(1, session.UserID, session.Login, session.Token).
		Suffix("ON CONFLICT (id) DO UPDATE SET user_id = excluded.user_id, login = excluded.login, token = excluded.token").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return nil
}

// LoadSession returns the stored session, ok is false when none is stored.
func (c *cacheStore) LoadSession(ctx context.Context) (models.Session, bool) {
	var session models.Session
	err := c.db.QueryRowContext(ctx, `SELECT user_id, login, token FROM session WHERE id = 1`).
		Scan(&session.UserID, &session.Login, &session.Token)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			logger.FromContext(ctx).Err(err).Str("func", "cacheStore.LoadSession").Msg("session unreadable")
		}
		return models.Session{}, false
	}

	return session, session.Valid()
}

// ClearSession forgets the stored session. Cached records stay so the next
// sign-in of the same owner starts warm.
func (c *cacheStore) ClearSession(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return nil
}
