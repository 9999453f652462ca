package service

import (
	"context"
	"sync"
	"time"
)

// DefaultSearchDebounce is the quiet period before a search reaches the server.
const DefaultSearchDebounce = 2 * time.Second

// Debouncer defers a call until input has been quiet for the configured
// delay. Every new call cancels the pending one, and the context of a call
// already running is cancelled too.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	return &Debouncer{delay: delay}
}

// Call schedules fn to run after the quiet period, replacing any pending call.
func (d *Debouncer) Call(ctx context.Context, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()

	callCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.timer = time.AfterFunc(d.delay, func() {
		if callCtx.Err() != nil {
			return
		}
		fn(callCtx)
	})
}

// Stop drops the pending call and cancels a running one.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
