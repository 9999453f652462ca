package service

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=mock/service_mock.go -package=mock -exclude_interfaces=RecordService,PushHub
//go:generate mockgen -destination=../mock/record_service_mock.go -package=mock github.com/MKhiriev/go-offline-sync/internal/service RecordService,PushHub

// RecordService is the server-side record API. Every operation is scoped to
// ownerID, the authenticated caller.
type RecordService interface {
	ListRecords(ctx context.Context, ownerID int64) ([]models.Record, error)

	// GetPage returns req.Page of the owner's records filtered by title
	// prefix. When req.Watermark equals the owner's current watermark it
	// returns [ErrNotModified] and no records.
	GetPage(ctx context.Context, ownerID int64, req models.PageRequest) (models.Page, error)

	CreateRecord(ctx context.Context, ownerID int64, record models.Record) (models.Record, error)

	// UpdateRecord stores record under id if its lastEditTimestamp is
	// strictly newer than the stored one.
	UpdateRecord(ctx context.Context, ownerID int64, id string, record models.Record) (models.Record, error)

	DeleteRecord(ctx context.Context, ownerID int64, id string) error
}

type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, user models.User) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// AppInfoService describes the running server.
type AppInfoService interface {
	GetAppVersion(ctx context.Context) string
	GetServerInfo(ctx context.Context) models.ServerInfo
}

// PushHub fans push events out to every live connection of an owner.
type PushHub interface {
	// Subscribe registers a connection of ownerID. The returned cancel func
	// unregisters it and closes the channel; it is safe to call twice.
	Subscribe(ownerID int64) (<-chan models.PushEvent, func())

	// Publish delivers event to the owner's current subscribers without
	// blocking.
	Publish(ownerID int64, event models.PushEvent)
}

// RecordServiceWrapper defines middleware composition for RecordService.
// Implementations wrap an existing RecordService to add behavior such as
// validation.
type RecordServiceWrapper interface {
	Wrap(RecordService) RecordService
}
