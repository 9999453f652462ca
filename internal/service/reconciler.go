package service

import (
	"context"
	"errors"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// ReconcileFailure is a dirty record whose remote write did not succeed.
type ReconcileFailure struct {
	Record models.Record
	Err    error
}

type writeOutcome struct {
	stored  models.Record
	err     error
	refetch bool
}

// Reconcile pushes every dirty record to the server and returns the ones that
// failed. Records in conflict wait for the user. It stops early only on
// [ErrAuthInvalid]. Without a session it does nothing.
func (c *Coordinator) Reconcile(ctx context.Context) ([]ReconcileFailure, error) {
	var gen uint64
	active := false
	if err := c.do(func(s *coordinatorState) {
		active = s.token != ""
		gen = s.sessionGen
	}); err != nil {
		return nil, err
	}
	if !active {
		return nil, nil
	}

	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	failures, _, err := c.reconcile(ctx, gen)
	return failures, err
}

// reconcile drains the dirty queue once. refetch reports whether an outcome
// makes the cached pages untrustworthy.
func (c *Coordinator) reconcile(ctx context.Context, gen uint64) ([]ReconcileFailure, bool, error) {
	log := logger.FromContext(ctx)

	var queue []models.Record
	if err := c.do(func(s *coordinatorState) {
		if s.sessionGen != gen {
			return
		}
		for _, r := range s.cache.Dirty() {
			// a rejected version is not sent again until the user edits
			// or resolves it
			if s.inFlight[r.ID] || r.Conflict != nil {
				continue
			}
			s.inFlight[r.ID] = true
			queue = append(queue, r)
		}
	}); err != nil {
		return nil, false, err
	}

	if len(queue) > 0 {
		log.Debug().Int("dirty", len(queue)).Msg("reconciling dirty records")
	}

	var failures []ReconcileFailure
	refetch := false
	for i, rec := range queue {
		out := c.write(ctx, gen, rec)
		refetch = refetch || out.refetch

		if out.err == nil {
			continue
		}
		if errors.Is(out.err, ErrAuthInvalid) {
			c.release(gen, queue[i+1:])
			return failures, refetch, out.err
		}
		failures = append(failures, ReconcileFailure{Record: rec, Err: out.err})
	}

	return failures, refetch, nil
}

// write submits one dirty record, which the caller marked in flight, and
// applies the outcome to the cache.
func (c *Coordinator) write(ctx context.Context, gen uint64, rec models.Record) writeOutcome {
	log := logger.FromContext(ctx)

	submitted := rec.Submission()

	var confirmed models.Record
	var err error
	if rec.HasServerID() {
		confirmed, err = c.adapter.UpdateRecord(ctx, submitted)
	} else {
		confirmed, err = c.adapter.CreateRecord(ctx, submitted)
	}

	out := writeOutcome{err: err}
	doErr := c.do(func(s *coordinatorState) {
		if s.sessionGen != gen {
			return
		}
		delete(s.inFlight, rec.ID)

		switch {
		case err == nil:
			s.cache = s.cache.ConfirmWrite(rec.ID, submitted, confirmed)
			out.stored, _ = s.cache.Get(confirmed.ID)

		case errors.Is(err, ErrStaleWrite):
			var stale *adapter.StaleWriteError
			var server *models.Record
			if errors.As(err, &stale) {
				server = stale.Server
			}
			s.cache = s.cache.MarkConflict(rec.ID, submitted, server, c.now())
			out.stored, _ = s.cache.Get(rec.ID)
			out.refetch = true

			log.Info().Str("record_id", rec.ID).Int64("last_edit", rec.LastEdit).Msg("write rejected as stale, conflict kept")

		case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
			s.cache = s.cache.Remove(rec.ID)
			out.refetch = true

			log.Warn().Err(err).Str("record_id", rec.ID).Msg("record dropped from the dirty queue")

		case errors.Is(err, ErrAuthInvalid):
			return

		default:
			out.stored, _ = s.cache.Get(rec.ID)
			log.Warn().Err(err).Str("record_id", rec.ID).Msg("write failed, record stays queued")
			s.status = err.Error()
			c.publish(s)
			return
		}

		c.persist(ctx, s)
		c.publish(s)
	})
	if doErr != nil {
		out.err = doErr
		return out
	}

	if errors.Is(err, ErrAuthInvalid) {
		c.authInvalid(gen)
	}
	return out
}

// release clears the in-flight marks of records that were never sent.
func (c *Coordinator) release(gen uint64, records []models.Record) {
	_ = c.do(func(s *coordinatorState) {
		if s.sessionGen != gen {
			return
		}
		for _, r := range records {
			delete(s.inFlight, r.ID)
		}
	})
}
