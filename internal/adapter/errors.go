package adapter

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-offline-sync/models"
)

var (
	// ErrAuthInvalid: token missing, expired or rejected (401).
	ErrAuthInvalid = errors.New("authentication invalid")
	// ErrStaleWrite: the server holds a version at least as new (409).
	ErrStaleWrite = errors.New("stale write")
	// ErrNotFound: the record no longer exists (404).
	ErrNotFound = errors.New("record not found")
	// ErrForbidden: the record belongs to someone else (403).
	ErrForbidden = errors.New("forbidden")
	// ErrTransport: network failure, timeout or server error (5xx).
	ErrTransport = errors.New("transport failure")
	// ErrUnchanged: a conditional fetch found nothing new (304). Not a failure.
	ErrUnchanged = errors.New("not modified")
	// ErrBadRequest: the server refused the payload (400).
	ErrBadRequest = errors.New("bad request")
	// ErrLoginTaken: registration with an existing login (409 on register).
	ErrLoginTaken = errors.New("login already taken")
)

// StaleWriteError is returned when the server rejects an update as stale.
// Server is the version the server reported, nil if it sent none.
type StaleWriteError struct {
	Server *models.Record
}

func (e *StaleWriteError) Error() string {
	if e.Server == nil {
		return ErrStaleWrite.Error()
	}
	return fmt.Sprintf("%s: server lastEditTimestamp %d", ErrStaleWrite, e.Server.LastEdit)
}

func (e *StaleWriteError) Unwrap() error {
	return ErrStaleWrite
}
