// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the client's transport to the sync server.
//
// [ServerAdapter] covers the REST surface (auth, paged reads, writes) and
// [PushListener] the live push channel (websocket or gRPC stream). Both map
// transport outcomes onto the sentinel errors in errors.go so callers can use
// [errors.Is] without caring about status codes, e.g. [ErrStaleWrite] for a
// rejected update or [ErrUnchanged] for a conditional fetch answered with 304.
package adapter

import (
	"context"

	"github.com/MKhiriev/go-offline-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_adapter_mock.go -package=mock

// ServerAdapter defines communication with the sync server's REST API.
type ServerAdapter interface {
	// SetToken stores the bearer token attached to every authenticated
	// request. An empty token signs the adapter out.
	SetToken(token string)

	// Token returns the bearer token currently in use, or "".
	Token() string

	// Register creates an account and returns the session issued for it.
	// The token is stored via SetToken. A taken login yields [ErrLoginTaken].
	Register(ctx context.Context, user models.User) (models.Session, error)

	// Login authenticates and returns the issued session. The token is stored
	// via SetToken. Bad credentials yield [ErrAuthInvalid].
	Login(ctx context.Context, user models.User) (models.Session, error)

	// FetchPage requests one page of the owner's records. When req.Watermark
	// is set the request is conditional and an unchanged collection yields
	// [ErrUnchanged].
	FetchPage(ctx context.Context, req models.PageRequest) (models.Page, error)

	// ListRecords returns the owner's whole collection.
	ListRecords(ctx context.Context) ([]models.Record, error)

	// CreateRecord submits a new record and returns it with its server id.
	CreateRecord(ctx context.Context, record models.Record) (models.Record, error)

	// UpdateRecord submits a new version of an existing record. A rejected
	// write yields a [*StaleWriteError] carrying the server's version.
	UpdateRecord(ctx context.Context, record models.Record) (models.Record, error)

	// DeleteRecord removes a record by server id.
	DeleteRecord(ctx context.Context, id string) error

	// ServerInfo describes the server: version, page size and the push
	// transports it offers.
	ServerInfo(ctx context.Context) (models.ServerInfo, error)
}

// PushListener receives push events for the owner of token.
type PushListener interface {
	// Listen connects and forwards every event to events until ctx is done
	// or the connection drops. It returns nil only when ctx ended.
	Listen(ctx context.Context, token string, events chan<- models.PushEvent) error
}
