package service

import (
	"sync"

	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/models"
)

// subscriberBuffer is how many undelivered events a connection may lag.
const subscriberBuffer = 64

type subscriber struct {
	events chan models.PushEvent
}

// Hub is the in-memory [PushHub] shared by the websocket handler and the gRPC
// push service.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int64]map[*subscriber]struct{}

	logger *logger.Logger
}

func NewHub(logger *logger.Logger) *Hub {
	return &Hub{
		subscribers: make(map[int64]map[*subscriber]struct{}),
		logger:      logger,
	}
}

func (h *Hub) Subscribe(ownerID int64) (<-chan models.PushEvent, func()) {
	sub := &subscriber{events: make(chan models.PushEvent, subscriberBuffer)}

	h.mu.Lock()
	if h.subscribers[ownerID] == nil {
		h.subscribers[ownerID] = make(map[*subscriber]struct{})
	}
	h.subscribers[ownerID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers[ownerID], sub)
			if len(h.subscribers[ownerID]) == 0 {
				delete(h.subscribers, ownerID)
			}
			close(sub.events)
			h.mu.Unlock()
		})
	}

	return sub.events, cancel
}

// Publish never blocks: an event for a subscriber whose buffer is full is
// dropped and logged.
func (h *Hub) Publish(ownerID int64, event models.PushEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subscribers[ownerID] {
		select {
		case sub.events <- event:
		default:
			h.logger.Warn().
				Str("func", "Hub.Publish").
				Int64("user_id", ownerID).
				Str("record_id", event.Payload.ID).
				Msg("push subscriber lagging, event dropped")
		}
	}
}

// Subscribers returns the number of live connections of ownerID.
func (h *Hub) Subscribers(ownerID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[ownerID])
}
