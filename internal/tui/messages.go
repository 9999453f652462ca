package tui

import (
	"github.com/MKhiriev/go-offline-sync/internal/service"
	"github.com/MKhiriev/go-offline-sync/models"
)

// NavigateTo switches the active page. Payload, when set, is delivered to the
// new page instead of calling its Init.
type NavigateTo struct {
	Page    string
	Payload any
}

const (
	pageMenu     = "menu"
	pageLogin    = "login"
	pageRegister = "register"
	pageRecords  = "records"
	pageForm     = "form"
	pageConflict = "conflict"
)

// LoginResult is produced by the login page.
type LoginResult struct {
	Session models.Session
	Err     error
}

// RegisterResult is produced by the register page. A successful registration
// is already signed in.
type RegisterResult struct {
	Session models.Session
	Err     error
}

type logoutDoneMsg struct {
	err error
}

type snapshotMsg struct {
	snapshot service.Snapshot
}

type syncDoneMsg struct {
	result service.SyncResult
	err    error
}

type reconcileDoneMsg struct {
	failures []service.ReconcileFailure
	err      error
}

type deleteDoneMsg struct {
	title string
	err   error
}

type recordSavedMsg struct {
	record models.Record
	err    error
}

type conflictResolvedMsg struct {
	keepLocal bool
	err       error
}

type copiedMsg struct {
	title string
	err   error
}

type serverInfoMsg struct {
	info models.ServerInfo
	err  error
}

type exportedMsg struct {
	count int
	err   error
}

// statusNotice is a one-line message shown by the page it is delivered to.
type statusNotice struct {
	text string
}

type newRecordMsg struct{}

type editRecordMsg struct {
	record models.Record
}

type showConflictMsg struct {
	record models.Record
}
