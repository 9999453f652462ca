package service

import (
	"errors"

	"github.com/MKhiriev/go-offline-sync/internal/adapter"
)

var (
	ErrInvalidDataProvided = errors.New("invalid data provided")
	ErrWrongPassword       = errors.New("wrong password")

	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")

	ErrVersionIsNotSpecified = errors.New("app version is not specified")

	ErrNotModified      = errors.New("records not modified since watermark")
	ErrRecordIDMismatch = errors.New("record id in body does not match path")
	ErrInvalidPage      = errors.New("page must be a positive integer")
)

// Client-side errors.
var (
	ErrNoSession         = errors.New("no active session")
	ErrCoordinatorClosed = errors.New("sync coordinator is closed")
	ErrRecordNotCached   = errors.New("record is not in the local cache")
	ErrRegisterOnServer  = errors.New("registration on server failed")
	ErrLoginOnServer     = errors.New("login on server failed")
)

// Sync error taxonomy as seen by the client. These alias the transport
// sentinels so callers need only this package.
var (
	ErrAuthInvalid = adapter.ErrAuthInvalid
	ErrStaleWrite  = adapter.ErrStaleWrite
	ErrNotFound    = adapter.ErrNotFound
	ErrForbidden   = adapter.ErrForbidden
	ErrTransport   = adapter.ErrTransport
	ErrUnchanged   = adapter.ErrUnchanged
	ErrBadRequest  = adapter.ErrBadRequest
)
