package models

// DefaultPageSize is the number of records returned by a single page fetch.
const DefaultPageSize = 10

// Page is a slice of the owner's records together with the owner's current
// sync watermark.
type Page struct {
	Items     []Record `json:"items"`
	Watermark int64    `json:"lastEdit"`
}

// PageRequest describes a page fetch. Watermark is nil for a full fetch and
// carries the last known watermark for a conditional one.
type PageRequest struct {
	Page      int
	Filter    string
	Watermark *int64
}

// EventType tags push events.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
)

// PushEvent is delivered on the push channel to every live connection of the
// record owner.
type PushEvent struct {
	Type    EventType `json:"type"`
	Payload Record    `json:"payload"`
}

// Push transports a server can offer.
const (
	PushWebsocket = "websocket"
	PushGRPC      = "grpc"
)

// ServerInfo describes what a sync server offers its clients.
type ServerInfo struct {
	Version  string   `json:"version"`
	PageSize int      `json:"pageSize"`
	Push     []string `json:"push"`
}
