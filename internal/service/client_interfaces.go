package service

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=client_interfaces.go -destination=mock/client_service_mock.go -package=mock

// SyncCoordinator is the client's view of the sync engine. [*Coordinator]
// implements it.
type SyncCoordinator interface {
	// Sync runs one cycle: reconcile dirty records, then fetch a page.
	Sync(ctx context.Context, req SyncRequest) (SyncResult, error)
	SetFilter(ctx context.Context, filter string) (SyncResult, error)
	LoadNextPage(ctx context.Context) (SyncResult, error)
	Refresh(ctx context.Context, forceFull bool) (SyncResult, error)

	// Reconcile pushes the dirty queue and reports the records that failed.
	Reconcile(ctx context.Context) ([]ReconcileFailure, error)

	// Save applies a local edit and tries to write it through.
	Save(ctx context.Context, record models.Record) (models.Record, error)
	Delete(ctx context.Context, id string) error
	ResolveConflict(ctx context.Context, id string, keepLocal bool) error

	Snapshot() Snapshot
	Updates() <-chan Snapshot
}

// ClientAuthService signs the client in and out. A started session loads the
// owner's cache, points the adapter at the token and opens the push channel.
type ClientAuthService interface {
	Register(ctx context.Context, user models.User) (models.Session, error)
	Login(ctx context.Context, user models.User) (models.Session, error)

	// Restore resumes the session persisted by a previous run. ok is false
	// when none is stored.
	Restore(ctx context.Context) (session models.Session, ok bool, err error)

	// Logout closes the push channel and forgets the session. Cached records
	// stay on disk.
	Logout(ctx context.Context) error
}

// SearchService turns type-ahead input into debounced filter changes.
type SearchService interface {
	Input(ctx context.Context, text string)
	Stop()
}

// ExportService downloads the owner's whole collection from the server.
type ExportService interface {
	// Export returns the server's records as indented JSON together with
	// their count.
	Export(ctx context.Context) (data []byte, count int, err error)
}

// ServerInfoService describes the server the client talks to.
type ServerInfoService interface {
	ServerInfo(ctx context.Context) (models.ServerInfo, error)
}
