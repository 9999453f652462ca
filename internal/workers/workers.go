package workers

import (
	"context"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
)

type Workers struct {
	workers []Worker
}

// NewClientWorkers returns the client's background workers: the periodic
// sync cycle.
func NewClientWorkers(refresher Refresher, cfg config.ClientWorkers, logger *logger.Logger) *Workers {
	return &Workers{
		workers: []Worker{NewSyncWorker(refresher, cfg.SyncInterval, logger)},
	}
}

func (w *Workers) Run(ctx context.Context) {
	for _, worker := range w.workers {
		worker.Run(ctx)
	}
}

func (w *Workers) Stop() {
	for _, worker := range w.workers {
		worker.Stop()
	}
}

// DefaultSyncInterval is used when no interval is configured.
const DefaultSyncInterval = 5 * time.Minute
