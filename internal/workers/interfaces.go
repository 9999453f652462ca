// Package workers provides abstractions for managing and running
// background workers in the client.
// It defines the Worker interface and a Workers aggregate that allows
// starting and stopping multiple workers in a unified way.
package workers

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/internal/service"
)

// Worker is the interface that must be implemented by any background worker.
//
// Run starts the worker and returns immediately, the work itself happens on
// goroutines owned by the worker. Stop ends them and waits for them to exit.
type Worker interface {
	Run(ctx context.Context)
	Stop()
}

// Refresher runs one sync cycle of the first page.
type Refresher interface {
	Refresh(ctx context.Context, forceFull bool) (service.SyncResult, error)
}
