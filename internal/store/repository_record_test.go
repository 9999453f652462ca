package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

var selectRecordSQL = regexp.QuoteMeta(`SELECT record_id, owner_id, title, director, release_date, duration, watched, photo, location_lat, location_long, last_edit FROM records`)

var fixedNow = time.UnixMilli(1_700_000_000_000)

func newTestRecordRepo(t *testing.T) (*recordRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTestDB(t)
	return &recordRepository{db: db, logger: logger.Nop(), now: func() time.Time { return fixedNow }}, mock
}

func testContext() context.Context {
	l := zerolog.Nop()
	return l.WithContext(context.Background())
}

func recordRows() *sqlmock.Rows {
	return sqlmock.NewRows(recordColumns)
}

func addRecordRow(rows *sqlmock.Rows, r models.Record) *sqlmock.Rows {
	var lat, long any
	if r.Location != nil {
		lat, long = r.Location.Lat, r.Location.Long
	}
	return rows.AddRow(r.ID, r.OwnerID, r.Title, r.Director, r.ReleaseDate, r.Duration, r.Watched, r.Photo, lat, long, r.LastEdit)
}

func sampleRecord() models.Record {
	return models.Record{
		ID:          "0190a3b4-0000-7000-8000-000000000001",
		OwnerID:     42,
		Title:       "Alien",
		Director:    "Ridley Scott",
		ReleaseDate: time.Date(1979, 5, 25, 0, 0, 0, 0, time.UTC),
		Duration:    117,
		Watched:     true,
		LastEdit:    1000,
	}
}

// ── GetPage ─────────────────────────────────────────────────────────────────

func TestGetPage_FirstPageNoFilter(t *testing.T) {
	repo, mock := newTestRecordRepo(t)
	rec := sampleRecord()
	rec.Location = &models.Location{Lat: 51.5, Long: -0.12}

	mock.ExpectQuery(selectRecordSQL + ` WHERE owner_id = \$1 ORDER BY created_at, record_id LIMIT 10 OFFSET 0`).
		WithArgs(int64(42)).
		WillReturnRows(addRecordRow(recordRows(), rec))

	got, err := repo.GetPage(testContext(), 42, 1, 10, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, rec.ID, got[0].ID)
	require.NotNil(t, got[0].Location)
	assert.Equal(t, 51.5, got[0].Location.Lat)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPage_SecondPageWithPrefix(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectQuery(selectRecordSQL + ` WHERE owner_id = \$1 AND title LIKE \$2 ORDER BY created_at, record_id LIMIT 10 OFFSET 10`).
		WithArgs(int64(42), `Al\%%`).
		WillReturnRows(recordRows())

	got, err := repo.GetPage(testContext(), 42, 2, 10, "Al%")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPage_InvalidPage(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	got, err := repo.GetPage(testContext(), 42, 0, 10, "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPage_NullLocation(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectQuery(selectRecordSQL).
		WillReturnRows(addRecordRow(recordRows(), sampleRecord()))

	got, err := repo.GetPage(testContext(), 42, 1, 10, "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].Location)
}

func TestListRecords_QueryError(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectQuery(selectRecordSQL).
		WillReturnError(errors.New("boom"))

	_, err := repo.ListRecords(testContext(), 42)
	assert.ErrorIs(t, err, ErrExecutingQuery)
}

// ── GetWatermark ────────────────────────────────────────────────────────────

func TestGetWatermark_Stored(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectQuery(`SELECT watermark FROM owner_watermarks`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"watermark"}).AddRow(int64(1234)))

	wm, err := repo.GetWatermark(testContext(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1234), wm)
}

func TestGetWatermark_NoWritesYet(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectQuery(`SELECT watermark FROM owner_watermarks`).
		WithArgs(int64(42)).
		WillReturnError(sql.ErrNoRows)

	wm, err := repo.GetWatermark(testContext(), 42)
	require.NoError(t, err)
	assert.Zero(t, wm)
}

func TestGetWatermark_RetriesTransientError(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectQuery(`SELECT watermark FROM owner_watermarks`).
		WillReturnError(pgError(pgerrcode.ConnectionFailure))
	mock.ExpectQuery(`SELECT watermark FROM owner_watermarks`).
		WillReturnRows(sqlmock.NewRows([]string{"watermark"}).AddRow(int64(7)))

	wm, err := repo.GetWatermark(testContext(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(7), wm)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── CreateRecord ────────────────────────────────────────────────────────────

func TestCreateRecord_BumpsWatermark(t *testing.T) {
	repo, mock := newTestRecordRepo(t)
	rec := sampleRecord()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO records`).
		WithArgs(rec.ID, rec.OwnerID, rec.Title, rec.Director, sqlmock.AnyArg(), rec.Duration, rec.Watched, rec.Photo, nil, nil, rec.LastEdit).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO owner_watermarks`).
		WithArgs(rec.OwnerID, fixedNow.UnixMilli()).
		WillReturnRows(sqlmock.NewRows([]string{"watermark"}).AddRow(fixedNow.UnixMilli()))
	mock.ExpectCommit()

	got, wm, err := repo.CreateRecord(testContext(), rec)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, fixedNow.UnixMilli(), wm)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecord_DuplicateID(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO records`).
		WillReturnError(pgError(pgerrcode.UniqueViolation))
	mock.ExpectRollback()

	_, _, err := repo.CreateRecord(testContext(), sampleRecord())
	assert.ErrorIs(t, err, ErrRecordAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecord_UnknownOwner(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO records`).
		WillReturnError(pgError(pgerrcode.ForeignKeyViolation))
	mock.ExpectRollback()

	_, _, err := repo.CreateRecord(testContext(), sampleRecord())
	assert.ErrorIs(t, err, ErrNoUserWasFound)
}

func TestCreateRecord_RetriesSerializationFailure(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO records`).
		WillReturnError(pgError(pgerrcode.SerializationFailure))
	mock.ExpectRollback()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO records`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO owner_watermarks`).
		WillReturnRows(sqlmock.NewRows([]string{"watermark"}).AddRow(int64(99)))
	mock.ExpectCommit()

	_, wm, err := repo.CreateRecord(testContext(), sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, int64(99), wm)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRecord_BeginFails(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectBegin().WillReturnError(errors.New("no connection"))

	_, _, err := repo.CreateRecord(testContext(), sampleRecord())
	assert.ErrorIs(t, err, ErrBeginningTransaction)
}

// ── UpdateRecord ────────────────────────────────────────────────────────────

func TestUpdateRecord_NewerAccepted(t *testing.T) {
	repo, mock := newTestRecordRepo(t)
	rec := sampleRecord()
	rec.LastEdit = 2000

	mock.ExpectBegin()
	mock.ExpectQuery(`WITH target_record`).
		WithArgs(rec.ID, rec.OwnerID, rec.Title, rec.Director, sqlmock.AnyArg(), rec.Duration, rec.Watched, rec.Photo, nil, nil, rec.LastEdit).
		WillReturnRows(sqlmock.NewRows([]string{"updated_id", "current_last_edit"}).AddRow(rec.ID, int64(1000)))
	mock.ExpectQuery(`INSERT INTO owner_watermarks`).
		WillReturnRows(sqlmock.NewRows([]string{"watermark"}).AddRow(int64(5000)))
	mock.ExpectCommit()

	got, wm, err := repo.UpdateRecord(testContext(), rec)
	require.NoError(t, err)
	assert.Equal(t, int64(2000), got.LastEdit)
	assert.Equal(t, int64(5000), wm)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRecord_StaleReturnsStoredVersion(t *testing.T) {
	repo, mock := newTestRecordRepo(t)
	stored := sampleRecord()
	stored.Title = "Aliens"
	stored.LastEdit = 3000

	submitted := sampleRecord()
	submitted.LastEdit = 3000

	mock.ExpectBegin()
	mock.ExpectQuery(`WITH target_record`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_id", "current_last_edit"}).AddRow(nil, int64(3000)))
	mock.ExpectQuery(selectRecordSQL+` WHERE owner_id = \$1 AND record_id = \$2`).
		WithArgs(stored.OwnerID, stored.ID).
		WillReturnRows(addRecordRow(recordRows(), stored))
	mock.ExpectRollback()

	_, _, err := repo.UpdateRecord(testContext(), submitted)
	require.ErrorIs(t, err, ErrStaleRecord)

	var stale *StaleRecordError
	require.True(t, errors.As(err, &stale))
	assert.Equal(t, "Aliens", stale.Current.Title)
	assert.Equal(t, int64(3000), stale.Current.LastEdit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRecord_Missing(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`WITH target_record`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_id", "current_last_edit"}).AddRow(nil, nil))
	mock.ExpectRollback()

	_, _, err := repo.UpdateRecord(testContext(), sampleRecord())
	assert.ErrorIs(t, err, ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ── DeleteRecord ────────────────────────────────────────────────────────────

func TestDeleteRecord_Owner(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM records`).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(int64(42)))
	mock.ExpectExec(`DELETE FROM records`).
		WithArgs("r1", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO owner_watermarks`).
		WillReturnRows(sqlmock.NewRows([]string{"watermark"}).AddRow(int64(77)))
	mock.ExpectCommit()

	wm, err := repo.DeleteRecord(testContext(), 42, "r1")
	require.NoError(t, err)
	assert.Equal(t, int64(77), wm)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRecord_OtherOwner(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM records`).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"owner_id"}).AddRow(int64(7)))
	mock.ExpectRollback()

	_, err := repo.DeleteRecord(testContext(), 42, "r1")
	assert.ErrorIs(t, err, ErrRecordForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRecord_Missing(t *testing.T) {
	repo, mock := newTestRecordRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT owner_id FROM records`).
		WithArgs("r1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.DeleteRecord(testContext(), 42, "r1")
	assert.ErrorIs(t, err, ErrRecordNotFound)
}
