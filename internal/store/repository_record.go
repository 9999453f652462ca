// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// recordRepository is the PostgreSQL-backed implementation of
// [RecordRepository].
type recordRepository struct {
	db     *DB
	logger *logger.Logger
	now    func() time.Time
}

// NewRecordRepository constructs a [RecordRepository] backed by db.
func NewRecordRepository(db *DB, logger *logger.Logger) RecordRepository {
	logger.Debug().Msg("creating record repository")
	return &recordRepository{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
}

// ListRecords returns every record of the owner in creation order.
func (r *recordRepository) ListRecords(ctx context.Context, ownerID int64) ([]models.Record, error) {
	query, args, err := selectRecords(ownerID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.queryRecords(ctx, "recordRepository.ListRecords", query, args...)
}

// GetPage returns page (1-based) of the owner's records filtered by title
// prefix. A page past the end yields an empty slice.
func (r *recordRepository) GetPage(ctx context.Context, ownerID int64, page, pageSize int, titlePrefix string) ([]models.Record, error) {
	if page < 1 || pageSize < 1 {
		return []models.Record{}, nil
	}

	query, args, err := buildPageQuery(ownerID, page, pageSize, titlePrefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	return r.queryRecords(ctx, "recordRepository.GetPage", query, args...)
}

// GetWatermark returns the owner's watermark, 0 for an owner that never
// wrote anything.
func (r *recordRepository) GetWatermark(ctx context.Context, ownerID int64) (int64, error) {
	log := logger.FromContext(ctx)

	var watermark int64
	err := r.db.withRetry(ctx, func() error {
		return r.db.QueryRowContext(ctx, getWatermark, ownerID).Scan(&watermark)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.GetWatermark").
			Int64("user_id", ownerID).
			Msg("failed to read watermark")
		return 0, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return watermark, nil
}

// CreateRecord inserts record (ID and OwnerID must be set) and bumps the
// owner's watermark in one transaction.
func (r *recordRepository) CreateRecord(ctx context.Context, record models.Record) (models.Record, int64, error) {
	log := logger.FromContext(ctx)

	var watermark int64
	err := r.db.withRetry(ctx, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
		}
		defer tx.Rollback()

		lat, long := locationArgs(record.Location)
		_, err = tx.ExecContext(ctx, insertRecord,
			record.ID,
			record.OwnerID,
			record.Title,
			record.Director,
			record.ReleaseDate,
			record.Duration,
			record.Watched,
			record.Photo,
			lat,
			long,
			record.LastEdit,
		)
		if err != nil {
			switch postgresError(err) {
			case pgerrcode.UniqueViolation:
				return ErrRecordAlreadyExists
			case pgerrcode.ForeignKeyViolation:
				return ErrNoUserWasFound
			}
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}

		watermark, err = r.bumpWatermark(ctx, tx, record.OwnerID)
		if err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.CreateRecord").
			Int64("user_id", record.OwnerID).
			Str("record_id", record.ID).
			Msg("failed to create record")
		return models.Record{}, 0, err
	}

	log.Debug().
		Str("func", "recordRepository.CreateRecord").
		Int64("user_id", record.OwnerID).
		Str("record_id", record.ID).
		Int64("watermark", watermark).
		Msg("record created")

	return record, watermark, nil
}

// UpdateRecord overwrites the stored record only if record.LastEdit is
// strictly greater than the stored value.
//
// Returns [ErrRecordNotFound] when the owner has no such record and a
// [*StaleRecordError] holding the stored version when the update is stale.
func (r *recordRepository) UpdateRecord(ctx context.Context, record models.Record) (models.Record, int64, error) {
	log := logger.FromContext(ctx)

	var watermark int64
	err := r.db.withRetry(ctx, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
		}
		defer tx.Rollback()

		var updatedID sql.NullString
		var currentLastEdit sql.NullInt64

		lat, long := locationArgs(record.Location)
		err = tx.QueryRowContext(ctx, updateRecordIfNewer,
			record.ID,
			record.OwnerID,
			record.Title,
			record.Director,
			record.ReleaseDate,
			record.Duration,
			record.Watched,
			record.Photo,
			lat,
			long,
			record.LastEdit,
		).Scan(&updatedID, &currentLastEdit)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}

		// not found: target_record empty -> both NULL
		if !currentLastEdit.Valid {
			return ErrRecordNotFound
		}

		// found but not updated -> stored version is not older
		if !updatedID.Valid {
			current, err := r.findRecord(ctx, tx, record.OwnerID, record.ID)
			if err != nil {
				return err
			}
			return &StaleRecordError{Current: current}
		}

		watermark, err = r.bumpWatermark(ctx, tx, record.OwnerID)
		if err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleRecord) || errors.Is(err, ErrRecordNotFound) {
			log.Warn().Err(err).
				Str("func", "recordRepository.UpdateRecord").
				Int64("user_id", record.OwnerID).
				Str("record_id", record.ID).
				Int64("last_edit", record.LastEdit).
				Msg("update rejected")
		} else {
			log.Err(err).
				Str("func", "recordRepository.UpdateRecord").
				Int64("user_id", record.OwnerID).
				Str("record_id", record.ID).
				Msg("failed to update record")
		}
		return models.Record{}, 0, err
	}

	return record, watermark, nil
}

// DeleteRecord removes the owner's record. A record of another owner yields
// [ErrRecordForbidden], a missing one [ErrRecordNotFound].
func (r *recordRepository) DeleteRecord(ctx context.Context, ownerID int64, recordID string) (int64, error) {
	log := logger.FromContext(ctx)

	var watermark int64
	err := r.db.withRetry(ctx, func() error {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBeginningTransaction, err)
		}
		defer tx.Rollback()

		var storedOwner int64
		err = tx.QueryRowContext(ctx, findRecordOwner, recordID).Scan(&storedOwner)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
		if storedOwner != ownerID {
			return ErrRecordForbidden
		}

		if _, err := tx.ExecContext(ctx, deleteRecord, recordID, ownerID); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}

		watermark, err = r.bumpWatermark(ctx, tx, ownerID)
		if err != nil {
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: %w", ErrCommitingTransaction, err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).
			Str("func", "recordRepository.DeleteRecord").
			Int64("user_id", ownerID).
			Str("record_id", recordID).
			Msg("failed to delete record")
		return 0, err
	}

	return watermark, nil
}

func (r *recordRepository) bumpWatermark(ctx context.Context, tx *sql.Tx, ownerID int64) (int64, error) {
	var watermark int64
	if err := tx.QueryRowContext(ctx, bumpWatermark, ownerID, r.now().UnixMilli()).Scan(&watermark); err != nil {
		return 0, fmt.Errorf("%w: bump watermark: %w", ErrExecutingQuery, err)
	}
	return watermark, nil
}

func (r *recordRepository) findRecord(ctx context.Context, tx *sql.Tx, ownerID int64, recordID string) (models.Record, error) {
	query, args, err := buildFindRecordQuery(ownerID, recordID)
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	record, err := scanRecord(tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Record{}, ErrRecordNotFound
	}
	if err != nil {
		return models.Record{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return record, nil
}

func (r *recordRepository) queryRecords(ctx context.Context, funcName, query string, args ...any) ([]models.Record, error) {
	log := logger.FromContext(ctx)

	var records []models.Record
	err := r.db.withRetry(ctx, func() error {
		rows, err := r.db.QueryContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingQuery, err)
		}
		defer rows.Close()

		records = make([]models.Record, 0)
		for rows.Next() {
			record, err := scanRecord(rows)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrScanningRows, err)
			}
			records = append(records, record)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		return nil
	})
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to query records")
		return nil, err
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.Record, error) {
	var record models.Record
	var lat, long sql.NullFloat64

	err := row.Scan(
		&record.ID,
		&record.OwnerID,
		&record.Title,
		&record.Director,
		&record.ReleaseDate,
		&record.Duration,
		&record.Watched,
		&record.Photo,
		&lat,
		&long,
		&record.LastEdit,
	)
	if err != nil {
		return models.Record{}, err
	}

	if lat.Valid && long.Valid {
		record.Location = &models.Location{Lat: lat.Float64, Long: long.Float64}
	}
	record.ReleaseDate = record.ReleaseDate.UTC()

	return record, nil
}

func locationArgs(loc *models.Location) (sql.NullFloat64, sql.NullFloat64) {
	if loc == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: loc.Lat, Valid: true}, sql.NullFloat64{Float64: loc.Long, Valid: true}
}
