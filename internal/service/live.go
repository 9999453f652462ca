package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// DefaultReconnectInterval paces push channel reconnects.
const DefaultReconnectInterval = 3 * time.Second

const pushBuffer = 16

// PushSink receives push events tagged with the session generation they
// were received under.
type PushSink interface {
	ApplyPush(ctx context.Context, gen uint64, event models.PushEvent) error
}

// LiveMerger keeps the push channel of the active session open and feeds its
// events into the coordinator. Dropped connections are re-dialed, at most
// once per reconnect interval.
type LiveMerger struct {
	listener adapter.PushListener
	sink     PushSink
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup

	onAuthInvalid func()
}

func NewLiveMerger(listener adapter.PushListener, sink PushSink, reconnectInterval time.Duration, logger *logger.Logger) *LiveMerger {
	if reconnectInterval <= 0 {
		reconnectInterval = DefaultReconnectInterval
	}
	return &LiveMerger{
		listener: listener,
		sink:     sink,
		interval: reconnectInterval,
		logger:   logger,
	}
}

// OnAuthInvalid registers fn, called when the server refuses the token.
func (m *LiveMerger) OnAuthInvalid(fn func()) {
	m.mu.Lock()
	m.onAuthInvalid = fn
	m.mu.Unlock()
}

// Start opens the push channel for token, stopping any previous one. The
// channel outlives ctx cancellation and runs until Stop.
func (m *LiveMerger) Start(ctx context.Context, token string, gen uint64) {
	m.Stop()

	m.mu.Lock()
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.cancel = cancel
	hook := m.onAuthInvalid
	m.wg.Add(1)
	m.mu.Unlock()

	limiter := rate.NewLimiter(rate.Every(m.interval), 1)

	go func() {
		defer m.wg.Done()
		m.run(runCtx, limiter, token, gen, hook)
	}()
}

// Stop closes the push channel and waits for the listener to exit. Events
// still in flight are discarded.
func (m *LiveMerger) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()
}

func (m *LiveMerger) run(ctx context.Context, limiter *rate.Limiter, token string, gen uint64, hook func()) {
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		err := m.listenOnce(ctx, token, gen)
		switch {
		case ctx.Err() != nil:
			return
		case errors.Is(err, adapter.ErrAuthInvalid):
			m.logger.Warn().Str("func", "LiveMerger.run").Msg("push channel refused the session token")
			if hook != nil {
				go hook()
			}
			return
		case err != nil:
			m.logger.Warn().Err(err).Str("func", "LiveMerger.run").Msg("push channel dropped, reconnecting")
		}
	}
}

func (m *LiveMerger) listenOnce(ctx context.Context, token string, gen uint64) error {
	events := make(chan models.PushEvent, pushBuffer)
	listenDone := make(chan error, 1)

	go func() {
		listenDone <- m.listener.Listen(ctx, token, events)
	}()

	for {
		select {
		case event := <-events:
			m.apply(ctx, gen, event)
		case err := <-listenDone:
			for {
				select {
				case event := <-events:
					m.apply(ctx, gen, event)
				default:
					return err
				}
			}
		}
	}
}

func (m *LiveMerger) apply(ctx context.Context, gen uint64, event models.PushEvent) {
	if ctx.Err() != nil {
		return
	}
	if err := m.sink.ApplyPush(ctx, gen, event); err != nil {
		m.logger.Err(err).Str("func", "LiveMerger.apply").Str("record_id", event.Payload.ID).Msg("push event not applied")
	}
}
