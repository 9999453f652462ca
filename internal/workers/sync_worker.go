package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/service"
)

// SyncWorker runs the sync cycle on a ticker so dirty records are retried
// and the first page is revalidated without user action. Without a session
// each tick is a no-op.
type SyncWorker struct {
	refresher Refresher
	interval  time.Duration
	logger    *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSyncWorker creates a SyncWorker that calls refresher.Refresh on a
// ticker. The worker is idle until Run is called.
func NewSyncWorker(refresher Refresher, interval time.Duration, logger *logger.Logger) *SyncWorker {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &SyncWorker{refresher: refresher, interval: interval, logger: logger}
}

// Run stops any previously running loop, then launches a background
// goroutine that refreshes every interval. The goroutine exits when ctx is
// cancelled or Stop is called.
func (w *SyncWorker) Run(ctx context.Context) {
	w.Stop()

	w.mu.Lock()
	jobCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		t := time.NewTicker(w.interval)
		defer t.Stop()

		for {
			select {
			case <-jobCtx.Done():
				return
			case <-t.C:
				w.tick(jobCtx)
			}
		}
	}()
}

func (w *SyncWorker) tick(ctx context.Context) {
	result, err := w.refresher.Refresh(ctx, false)
	switch {
	case err == nil:
		if len(result.Failures) > 0 {
			w.logger.Info().Str("func", "SyncWorker.tick").Int("failures", len(result.Failures)).Msg("sync cycle left records queued")
		}
	case errors.Is(err, context.Canceled):
	case errors.Is(err, service.ErrAuthInvalid):
		w.logger.Warn().Str("func", "SyncWorker.tick").Msg("session rejected during background sync")
	default:
		w.logger.Debug().Err(err).Str("func", "SyncWorker.tick").Str("outcome", string(result.Outcome)).Msg("background sync failed")
	}
}

// Stop cancels the background goroutine and blocks until it has exited.
// Safe to call when the worker is not running.
func (w *SyncWorker) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	w.cancel = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	w.wg.Wait()
}
