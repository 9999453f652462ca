package store

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// UserRepository stores user accounts on the server.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByLogin(ctx context.Context, login string) (models.User, error)
}

// RecordRepository stores records and per-owner watermarks on the server.
//
// Every successful write bumps the owner's watermark inside the same
// transaction and returns the new value.
type RecordRepository interface {
	ListRecords(ctx context.Context, ownerID int64) ([]models.Record, error)
	GetPage(ctx context.Context, ownerID int64, page, pageSize int, titlePrefix string) ([]models.Record, error)
	GetWatermark(ctx context.Context, ownerID int64) (int64, error)
	CreateRecord(ctx context.Context, record models.Record) (models.Record, int64, error)
	UpdateRecord(ctx context.Context, record models.Record) (models.Record, int64, error)
	DeleteRecord(ctx context.Context, ownerID int64, recordID string) (int64, error)
}

// CacheStore is the client's durable local cache. It never touches the
// network. Reads degrade to "no local data" instead of failing.
type CacheStore interface {
	Load(ctx context.Context, ownerID int64) []models.Record
	LoadWatermark(ctx context.Context, ownerID int64) (int64, bool)
	Persist(ctx context.Context, ownerID int64, records []models.Record, watermark *int64) error

	SaveSession(ctx context.Context, session models.Session) error
	LoadSession(ctx context.Context) (models.Session, bool)
	ClearSession(ctx context.Context) error
}
