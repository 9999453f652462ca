// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/store"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
)

// SyncOutcome tells how a sync cycle ended.
type SyncOutcome string

const (
	// OutcomeSkipped: no session, nothing was attempted.
	OutcomeSkipped SyncOutcome = "skipped"
	// OutcomeFetched: the server returned a page that was merged.
	OutcomeFetched SyncOutcome = "fetched"
	// OutcomeUnchanged: the conditional fetch found nothing new.
	OutcomeUnchanged SyncOutcome = "unchanged"
	// OutcomeOffline: the fetch failed and the view fell back to the cache.
	OutcomeOffline SyncOutcome = "offline"
	// OutcomeDiscarded: the session or the filter changed while the fetch
	// was in flight, the response was dropped.
	OutcomeDiscarded SyncOutcome = "discarded"
)

// SyncRequest selects what a sync cycle fetches. A Page <= 0 means the next
// page after the ones already loaded.
type SyncRequest struct {
	Filter    string
	Page      int
	ForceFull bool
}

// SyncResult reports one sync cycle.
type SyncResult struct {
	Outcome SyncOutcome
	Page    int
	// Count is the number of records known for Page.
	Count    int
	HasMore  bool
	Failures []ReconcileFailure
}

// Snapshot is an immutable view of the coordinator state handed to readers.
type Snapshot struct {
	Login      string
	LoggedIn   bool
	NeedsLogin bool

	Filter  string
	Records []models.Record
	Cursor  int
	HasMore bool

	Total     int
	Dirty     int
	Conflicts int

	Watermark *int64
	Status    string
}

// coordinatorState is owned by the coordinator goroutine. Only functions sent
// through the inbox touch it.
type coordinatorState struct {
	cache     Cache
	watermark *int64

	sessionGen uint64
	ownerID    int64
	login      string
	token      string
	needsLogin bool

	filter    string
	filterGen uint64
	cursor    int
	visible   int
	hasMore   bool
	status    string

	// at most one remote write per record id at a time
	inFlight map[string]bool
}

// Coordinator owns the client cache and runs the sync cycle: reconcile the
// dirty queue, fetch a page, merge. All cache mutations happen on a single
// goroutine, network calls happen on the caller's goroutine and their results
// are posted back together with the session and filter generations captured
// at request time.
type Coordinator struct {
	adapter  adapter.ServerAdapter
	store    store.CacheStore
	pageSize int
	logger   *logger.Logger

	now    func() time.Time
	tempID func() string

	inbox     chan func(*coordinatorState)
	updates   chan Snapshot
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	// serializes sync cycles so two reconcile passes never overlap
	syncMu sync.Mutex

	hookMu        sync.RWMutex
	onAuthInvalid func()
}

// NewCoordinator starts a coordinator with an empty, signed-out state.
func NewCoordinator(serverAdapter adapter.ServerAdapter, cacheStore store.CacheStore, pageSize int, logger *logger.Logger) *Coordinator {
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}

	c := &Coordinator{
		adapter:  serverAdapter,
		store:    cacheStore,
		pageSize: pageSize,
		logger:   logger,
		now:      time.Now,
		tempID:   utils.NewUUIDGenerator().TemporaryID,
		inbox:    make(chan func(*coordinatorState)),
		updates:  make(chan Snapshot, 1),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	state := &coordinatorState{cursor: 1, inFlight: make(map[string]bool)}
	go c.run(state)

	return c
}

func (c *Coordinator) run(state *coordinatorState) {
	defer close(c.done)
	for {
		select {
		case fn := <-c.inbox:
			fn(state)
		case <-c.quit:
			return
		}
	}
}

// do runs fn on the coordinator goroutine and waits for it to finish.
func (c *Coordinator) do(fn func(s *coordinatorState)) error {
	finished := make(chan struct{})
	msg := func(s *coordinatorState) {
		defer close(finished)
		fn(s)
	}

	select {
	case c.inbox <- msg:
	case <-c.quit:
		return ErrCoordinatorClosed
	}

	<-finished
	return nil
}

// Close stops the coordinator goroutine. Pending calls fail with
// [ErrCoordinatorClosed].
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() { close(c.quit) })
	<-c.done
}

// Updates delivers the latest snapshot after every change. Only the newest
// snapshot is kept when the reader falls behind.
func (c *Coordinator) Updates() <-chan Snapshot {
	return c.updates
}

// OnAuthInvalid registers fn to be called, on its own goroutine, when the
// server rejects the session token.
func (c *Coordinator) OnAuthInvalid(fn func()) {
	c.hookMu.Lock()
	c.onAuthInvalid = fn
	c.hookMu.Unlock()
}

// Snapshot returns the current state.
func (c *Coordinator) Snapshot() Snapshot {
	var snap Snapshot
	_ = c.do(func(s *coordinatorState) { snap = c.snapshot(s) })
	return snap
}

// PageSize returns the number of records per page.
func (c *Coordinator) PageSize() int {
	return c.pageSize
}

// StartSession switches the coordinator to session: the owner's persisted
// cache and watermark are loaded and the adapter starts sending the token.
// It returns the new session generation.
func (c *Coordinator) StartSession(ctx context.Context, session models.Session) (uint64, error) {
	var gen uint64
	err := c.do(func(s *coordinatorState) {
		s.sessionGen++
		gen = s.sessionGen

		s.ownerID = session.UserID
		s.login = session.Login
		s.token = session.Token
		s.needsLogin = false

		s.cache = NewCache(c.store.Load(ctx, session.UserID))
		s.watermark = nil
		if wm, ok := c.store.LoadWatermark(ctx, session.UserID); ok {
			s.watermark = &wm
		}

		s.filter = ""
		s.filterGen++
		s.cursor = 1
		s.visible = c.pageSize
		s.hasMore = s.cache.Len() > c.pageSize
		s.status = ""
		s.inFlight = make(map[string]bool)

		c.adapter.SetToken(session.Token)

		logger.FromContext(ctx).Info().
			Int64("user_id", session.UserID).
			Int("cached", s.cache.Len()).
			Msg("session started")

		c.publish(s)
	})
	return gen, err
}

// ResetSession forgets the session. In-flight responses of the old session
// are discarded. The persisted cache is kept on disk.
func (c *Coordinator) ResetSession(ctx context.Context) error {
	return c.do(func(s *coordinatorState) {
		s.sessionGen++
		s.ownerID = 0
		s.login = ""
		s.token = ""

		s.cache = Cache{}
		s.watermark = nil
		s.filter = ""
		s.filterGen++
		s.cursor = 1
		s.visible = 0
		s.hasMore = false
		s.status = ""
		s.inFlight = make(map[string]bool)

		c.adapter.SetToken("")

		logger.FromContext(ctx).Info().Msg("session reset")
		c.publish(s)
	})
}

// SessionGeneration returns the generation of the active session, 0 when
// signed out.
func (c *Coordinator) SessionGeneration() uint64 {
	var gen uint64
	_ = c.do(func(s *coordinatorState) {
		if s.token != "" {
			gen = s.sessionGen
		}
	})
	return gen
}

// ApplyPush merges a pushed record. Events of an older session are dropped.
func (c *Coordinator) ApplyPush(ctx context.Context, gen uint64, event models.PushEvent) error {
	return c.do(func(s *coordinatorState) {
		log := logger.FromContext(ctx)

		if gen != s.sessionGen || s.token == "" {
			log.Debug().Str("record_id", event.Payload.ID).Msg("push event of a closed session dropped")
			return
		}

		switch event.Type {
		case models.EventCreated, models.EventUpdated:
		default:
			log.Warn().Str("type", string(event.Type)).Msg("unknown push event ignored")
			return
		}
		if !event.Payload.HasServerID() {
			log.Warn().Str("type", string(event.Type)).Msg("push event without record id ignored")
			return
		}

		_, existed := s.cache.Get(event.Payload.ID)
		s.cache = s.cache.MergePushed(event.Payload)
		if !existed && event.Payload.MatchesFilter(s.filter) {
			s.visible++
		}

		c.persist(ctx, s)
		c.publish(s)
	})
}

// SetFilter switches the title prefix filter and loads its first page.
func (c *Coordinator) SetFilter(ctx context.Context, filter string) (SyncResult, error) {
	return c.Sync(ctx, SyncRequest{Filter: filter, Page: 1})
}

// LoadNextPage fetches the page after the ones already loaded for the active
// filter.
func (c *Coordinator) LoadNextPage(ctx context.Context) (SyncResult, error) {
	return c.sync(ctx, SyncRequest{}, true)
}

// Refresh re-runs the sync cycle for the first page of the active filter.
func (c *Coordinator) Refresh(ctx context.Context, forceFull bool) (SyncResult, error) {
	return c.sync(ctx, SyncRequest{Page: 1, ForceFull: forceFull}, true)
}

// Sync runs one sync cycle for req.
func (c *Coordinator) Sync(ctx context.Context, req SyncRequest) (SyncResult, error) {
	return c.sync(ctx, req, false)
}

type syncPlan struct {
	active     bool
	sessionGen uint64
	filterGen  uint64
	filter     string
	page       int
	forceFull  bool
}

func (c *Coordinator) sync(ctx context.Context, req SyncRequest, keepFilter bool) (SyncResult, error) {
	log := logger.FromContext(ctx)

	// a filter change takes effect at once, so a cycle still in flight for
	// the old filter finds its generation outdated
	var plan syncPlan
	if err := c.do(func(s *coordinatorState) { plan = c.beginSync(s, req, keepFilter) }); err != nil {
		return SyncResult{}, err
	}
	if !plan.active {
		return SyncResult{Outcome: OutcomeSkipped, Page: req.Page}, nil
	}

	c.syncMu.Lock()
	defer c.syncMu.Unlock()

	if _, ok := utils.GetTraceIDFromContext(ctx); !ok {
		ctx = utils.WithTraceID(ctx, uuid.NewString())
	}

	failures, refetch, err := c.reconcile(ctx, plan.sessionGen)
	result := SyncResult{Page: plan.page, Failures: failures}
	if err != nil {
		return result, err
	}

	var request models.PageRequest
	stale := false
	if err := c.do(func(s *coordinatorState) {
		if s.sessionGen != plan.sessionGen || s.filterGen != plan.filterGen {
			stale = true
			return
		}
		if plan.page <= 0 {
			plan.page = s.cursor
		}
		request = models.PageRequest{Page: plan.page, Filter: plan.filter}

		held := len(s.cache.Filtered(plan.filter))
		if !refetch && !plan.forceFull && held >= plan.page*c.pageSize && s.watermark != nil {
			wm := *s.watermark
			request.Watermark = &wm
		}
	}); err != nil {
		return result, err
	}
	result.Page = plan.page
	if stale {
		result.Outcome = OutcomeDiscarded
		return result, nil
	}

	log.Debug().
		Int("page", request.Page).
		Str("filter", request.Filter).
		Bool("conditional", request.Watermark != nil).
		Msg("fetching page")

	page, fetchErr := c.adapter.FetchPage(ctx, request)

	if err := c.do(func(s *coordinatorState) { c.applyFetch(ctx, s, plan, page, fetchErr, &result) }); err != nil {
		return result, err
	}

	if errors.Is(fetchErr, ErrAuthInvalid) && result.Outcome == OutcomeOffline {
		c.authInvalid(plan.sessionGen)
	}
	if result.Outcome == OutcomeOffline {
		return result, fetchErr
	}
	return result, nil
}

// beginSync applies a filter change and captures the generations the cycle
// runs under. The page is resolved later, once the cycle holds the lock.
func (c *Coordinator) beginSync(s *coordinatorState, req SyncRequest, keepFilter bool) syncPlan {
	if s.token == "" {
		return syncPlan{}
	}

	plan := syncPlan{
		active:     true,
		sessionGen: s.sessionGen,
		page:       req.Page,
		forceFull:  req.ForceFull,
	}

	if !keepFilter && req.Filter != s.filter {
		s.filter = req.Filter
		s.filterGen++
		s.cursor = 1
		s.visible = 0
		s.hasMore = false
		plan.page = 1
		plan.forceFull = true
		c.publish(s)
	}

	plan.filter = s.filter
	plan.filterGen = s.filterGen

	return plan
}

func (c *Coordinator) applyFetch(ctx context.Context, s *coordinatorState, plan syncPlan, page models.Page, fetchErr error, result *SyncResult) {
	log := logger.FromContext(ctx)

	if s.sessionGen != plan.sessionGen || s.filterGen != plan.filterGen {
		log.Debug().Int("page", plan.page).Msg("page response for an outdated view discarded")
		result.Outcome = OutcomeDiscarded
		return
	}

	p := plan.page
	want := p * c.pageSize
	furthest := p >= s.cursor-1

	switch {
	case fetchErr == nil:
		s.cache = s.cache.MergeFetched(page.Items)
		wm := page.Watermark
		s.watermark = &wm
		s.visible = max(s.visible, want)
		s.cursor = max(s.cursor, p+1)
		s.status = ""

		result.Outcome = OutcomeFetched
		result.Count = len(page.Items)
		result.HasMore = len(page.Items) == c.pageSize
		if furthest {
			s.hasMore = result.HasMore
		}

		c.persist(ctx, s)

	case errors.Is(fetchErr, ErrUnchanged):
		count := c.localPageCount(s, p)
		s.visible = max(s.visible, want)
		if count == c.pageSize {
			s.cursor = max(s.cursor, p+1)
		}
		s.status = ""

		result.Outcome = OutcomeUnchanged
		result.Count = count
		result.HasMore = count == c.pageSize
		if furthest {
			s.hasMore = result.HasMore
		}

	default:
		count := c.localPageCount(s, p)
		s.visible = max(s.visible, want)
		if count == c.pageSize {
			s.cursor = max(s.cursor, p+1)
		}
		if furthest {
			s.hasMore = count == c.pageSize
		}
		s.status = fetchErr.Error()
		if errors.Is(fetchErr, ErrAuthInvalid) {
			s.needsLogin = true
		}

		result.Outcome = OutcomeOffline
		result.Count = count
		result.HasMore = count == c.pageSize

		log.Warn().Err(fetchErr).Int("page", p).Msg("fetch failed, showing cached records")
	}

	c.publish(s)
}

// localPageCount returns how many cached records of the active filter fall
// on page p.
func (c *Coordinator) localPageCount(s *coordinatorState, p int) int {
	held := len(s.cache.Filtered(s.filter))
	return min(c.pageSize, max(0, held-(p-1)*c.pageSize))
}

// Save stores a user edit locally and, with a session, immediately attempts
// the remote write. A record without id gets a temporary one. The edit is
// kept queued when the write fails, the returned error tells why.
func (c *Coordinator) Save(ctx context.Context, record models.Record) (models.Record, error) {
	var saved models.Record
	var gen uint64
	send := false

	err := c.do(func(s *coordinatorState) {
		prev, existed := s.cache.Get(record.ID)
		if record.ID == "" {
			record.ID = c.tempID()
		}

		record.LastEdit = c.now().UnixMilli()
		if existed && prev.LastEdit >= record.LastEdit {
			record.LastEdit = prev.LastEdit + 1
		}

		s.cache = s.cache.ApplyLocalEdit(record)
		if !existed && record.MatchesFilter(s.filter) {
			s.visible++
		}
		saved, _ = s.cache.Get(record.ID)

		c.persist(ctx, s)
		c.publish(s)

		if s.token != "" && !s.inFlight[saved.ID] {
			s.inFlight[saved.ID] = true
			gen = s.sessionGen
			send = true
		}
	})
	if err != nil || !send {
		return saved, err
	}

	out := c.write(ctx, gen, saved)
	if out.stored.ID != "" {
		saved = out.stored
	}
	return saved, out.err
}

// ResolveConflict settles a conflict. keepLocal re-submits the local version
// with a fresh edit timestamp, otherwise the server version replaces it.
func (c *Coordinator) ResolveConflict(ctx context.Context, id string, keepLocal bool) error {
	var resolveErr error
	var pending models.Record
	var gen uint64
	send := false

	err := c.do(func(s *coordinatorState) {
		rec, ok := s.cache.Get(id)
		if !ok || rec.Conflict == nil {
			resolveErr = ErrRecordNotCached
			return
		}
		server := rec.Conflict.Server

		switch {
		case keepLocal:
			base := rec.LastEdit
			if server != nil {
				base = max(base, server.LastEdit)
			}
			rec.LastEdit = max(c.now().UnixMilli(), base+1)
			s.cache = s.cache.ApplyLocalEdit(rec)
			pending, _ = s.cache.Get(id)
			if s.token != "" && !s.inFlight[id] {
				s.inFlight[id] = true
				gen = s.sessionGen
				send = true
			}
		case server != nil:
			s.cache = s.cache.AcceptServer(id, *server)
		default:
			// the server version is unknown, the next fetch brings it
			s.cache = s.cache.Remove(id)
		}

		c.persist(ctx, s)
		c.publish(s)
	})
	if err != nil {
		return err
	}
	if resolveErr != nil || !send {
		return resolveErr
	}

	return c.write(ctx, gen, pending).err
}

// Delete removes a record. Records the server never confirmed are dropped
// locally, others are deleted on the server first.
func (c *Coordinator) Delete(ctx context.Context, id string) error {
	var found, localOnly, hasSession bool
	var gen uint64

	err := c.do(func(s *coordinatorState) {
		var rec models.Record
		rec, found = s.cache.Get(id)
		if !found {
			return
		}
		if !rec.HasServerID() {
			localOnly = true
			s.cache = s.cache.Remove(id)
			c.persist(ctx, s)
			c.publish(s)
			return
		}
		hasSession = s.token != ""
		gen = s.sessionGen
	})
	switch {
	case err != nil:
		return err
	case !found:
		return ErrRecordNotCached
	case localOnly:
		return nil
	case !hasSession:
		return ErrNoSession
	}

	deleteErr := c.adapter.DeleteRecord(ctx, id)
	if errors.Is(deleteErr, ErrAuthInvalid) {
		c.authInvalid(gen)
		return deleteErr
	}

	remove := deleteErr == nil || errors.Is(deleteErr, ErrNotFound) || errors.Is(deleteErr, ErrForbidden)
	if remove {
		if err := c.do(func(s *coordinatorState) {
			if s.sessionGen != gen {
				return
			}
			s.cache = s.cache.Remove(id)
			c.persist(ctx, s)
			c.publish(s)
		}); err != nil {
			return err
		}
	}

	if errors.Is(deleteErr, ErrNotFound) {
		return nil
	}
	return deleteErr
}

// authInvalid flags the session for re-login and runs the teardown hook.
func (c *Coordinator) authInvalid(gen uint64) {
	stale := false
	_ = c.do(func(s *coordinatorState) {
		if s.sessionGen != gen || s.token == "" {
			stale = true
			return
		}
		s.needsLogin = true
		s.status = ErrAuthInvalid.Error()
		c.publish(s)
	})
	if stale {
		return
	}

	c.hookMu.RLock()
	hook := c.onAuthInvalid
	c.hookMu.RUnlock()
	if hook != nil {
		go hook()
	}
}

func (c *Coordinator) persist(ctx context.Context, s *coordinatorState) {
	if s.token == "" {
		return
	}
	if err := c.store.Persist(ctx, s.ownerID, s.cache.Records(), s.watermark); err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "Coordinator.persist").
			Int64("user_id", s.ownerID).
			Msg("failed to persist cache")
	}
}

func (c *Coordinator) snapshot(s *coordinatorState) Snapshot {
	filtered := s.cache.Filtered(s.filter)
	visible := filtered[:min(s.visible, len(filtered))]

	snap := Snapshot{
		Login:      s.login,
		LoggedIn:   s.token != "",
		NeedsLogin: s.needsLogin,
		Filter:     s.filter,
		Records:    visible,
		Cursor:     s.cursor,
		HasMore:    s.hasMore || len(filtered) > len(visible),
		Total:      s.cache.Len(),
		Status:     s.status,
	}
	for _, r := range s.cache.Dirty() {
		snap.Dirty++
		if r.Conflict != nil {
			snap.Conflicts++
		}
	}
	if s.watermark != nil {
		wm := *s.watermark
		snap.Watermark = &wm
	}
	return snap
}

// publish replaces any unread snapshot with the current one.
func (c *Coordinator) publish(s *coordinatorState) {
	snap := c.snapshot(s)
	select {
	case <-c.updates:
	default:
	}
	select {
	case c.updates <- snap:
	default:
	}
}
