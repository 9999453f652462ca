package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

func newTestCacheStore(t *testing.T) (*cacheStore, *DB) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cache.db")
	db, err := NewConnectSQLite(context.Background(), path, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.MigrateClient())

	return &cacheStore{db: db, logger: logger.Nop()}, db
}

func cachedRecord(id, title string, lastEdit int64) models.Record {
	return models.Record{
		ID:          id,
		Title:       title,
		ReleaseDate: time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC),
		LastEdit:    lastEdit,
	}
}

func TestCacheStore_LoadEmpty(t *testing.T) {
	store, _ := newTestCacheStore(t)
	ctx := testContext()

	records := store.Load(ctx, 1)
	assert.NotNil(t, records)
	assert.Empty(t, records)

	_, ok := store.LoadWatermark(ctx, 1)
	assert.False(t, ok)
}

func TestCacheStore_PersistKeepsOrderAndMarkers(t *testing.T) {
	store, _ := newTestCacheStore(t)
	ctx := testContext()

	server := cachedRecord("s1", "Server side", 10)
	conflicted := cachedRecord("s1", "Local side", 9)
	conflicted.Dirty = true
	conflicted.Conflict = &models.Conflict{Rejected: conflicted, Server: &server, At: time.UnixMilli(5).UTC()}

	records := []models.Record{
		cachedRecord("local-1", "Unsent", 20),
		conflicted,
		cachedRecord("s2", "Clean", 3),
	}
	records[0].Dirty = true

	wm := int64(1234)
	require.NoError(t, store.Persist(ctx, 1, records, &wm))

	loaded := store.Load(ctx, 1)
	require.Len(t, loaded, 3)
	assert.Equal(t, "local-1", loaded[0].ID)
	assert.Equal(t, models.StateDirty, loaded[0].State())
	assert.Equal(t, models.StateConflict, loaded[1].State())
	require.NotNil(t, loaded[1].Conflict.Server)
	assert.Equal(t, "Server side", loaded[1].Conflict.Server.Title)
	assert.Equal(t, models.StateClean, loaded[2].State())

	got, ok := store.LoadWatermark(ctx, 1)
	require.True(t, ok)
	assert.Equal(t, int64(1234), got)
}

func TestCacheStore_PersistReplacesPreviousContent(t *testing.T) {
	store, _ := newTestCacheStore(t)
	ctx := testContext()

	wm := int64(1)
	require.NoError(t, store.Persist(ctx, 1, []models.Record{cachedRecord("a", "A", 1), cachedRecord("b", "B", 1)}, &wm))
	require.NoError(t, store.Persist(ctx, 1, []models.Record{cachedRecord("b", "B", 2)}, nil))

	loaded := store.Load(ctx, 1)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(2), loaded[0].LastEdit)

	_, ok := store.LoadWatermark(ctx, 1)
	assert.False(t, ok, "nil watermark clears the stored one")
}

func TestCacheStore_OwnersAreIsolated(t *testing.T) {
	store, _ := newTestCacheStore(t)
	ctx := testContext()

	wm := int64(50)
	require.NoError(t, store.Persist(ctx, 1, []models.Record{cachedRecord("a", "A", 1)}, &wm))
	require.NoError(t, store.Persist(ctx, 2, []models.Record{cachedRecord("b", "B", 1)}, nil))

	assert.Equal(t, "a", store.Load(ctx, 1)[0].ID)
	assert.Equal(t, "b", store.Load(ctx, 2)[0].ID)

	_, ok := store.LoadWatermark(ctx, 2)
	assert.False(t, ok)
}

func TestCacheStore_PersistLargeBatch(t *testing.T) {
	store, _ := newTestCacheStore(t)
	ctx := testContext()

	records := make([]models.Record, 0, 450)
	for i := range 450 {
		records = append(records, cachedRecord(fmt.Sprintf("r%03d", i), "T", int64(i)))
	}
	require.NoError(t, store.Persist(ctx, 1, records, nil))

	loaded := store.Load(ctx, 1)
	require.Len(t, loaded, 450)
	assert.Equal(t, int64(449), loaded[449].LastEdit)
}

func TestCacheStore_CorruptRowYieldsEmptyCache(t *testing.T) {
	store, db := newTestCacheStore(t)
	ctx := testContext()

	require.NoError(t, store.Persist(ctx, 1, []models.Record{cachedRecord("a", "A", 1)}, nil))
	_, err := db.Exec(`INSERT INTO cached_records (owner_id, record_id, position, payload) VALUES (1, 'b', 1, '{not json')`)
	require.NoError(t, err)

	loaded := store.Load(ctx, 1)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestCacheStore_Session(t *testing.T) {
	store, _ := newTestCacheStore(t)
	ctx := testContext()

	_, ok := store.LoadSession(ctx)
	assert.False(t, ok)

	require.NoError(t, store.SaveSession(ctx, models.Session{UserID: 3, Login: "ann", Token: "t1"}))
	require.NoError(t, store.SaveSession(ctx, models.Session{UserID: 3, Login: "ann", Token: "t2"}))

	session, ok := store.LoadSession(ctx)
	require.True(t, ok)
	assert.Equal(t, "t2", session.Token)
	assert.Equal(t, int64(3), session.UserID)

	wm := int64(9)
	require.NoError(t, store.Persist(ctx, 3, []models.Record{cachedRecord("a", "A", 1)}, &wm))
	require.NoError(t, store.ClearSession(ctx))

	_, ok = store.LoadSession(ctx)
	assert.False(t, ok)
	assert.Len(t, store.Load(ctx, 3), 1, "logout keeps cached records")
}

func TestNewClientStorages_MovesCorruptFileAside(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.db")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("definitely not sqlite ", 512)), 0o600))

	storages, err := NewClientStorages(context.Background(), config.ClientStorage{DB: config.ClientDB{DSN: path}}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { storages.Close() })

	assert.Empty(t, storages.CacheStore.Load(testContext(), 1))

	matches, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestNewClientStorages_CreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	storages, err := NewClientStorages(context.Background(), config.ClientStorage{DB: config.ClientDB{DSN: path}}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, storages.Close())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}
