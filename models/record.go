// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"strings"
	"time"
)

// TempIDPrefix marks ids generated on the client for records the server has
// not confirmed yet.
const TempIDPrefix = "local-"

// RecordState is the synchronization state of a single [Record].
type RecordState string

const (
	// StateClean means the local copy equals the last confirmed server copy.
	StateClean RecordState = "clean"
	// StateDirty means the record carries local edits not yet confirmed.
	StateDirty RecordState = "dirty"
	// StateConflict means the last attempt to push local edits was rejected
	// because the server holds a newer version.
	StateConflict RecordState = "dirty+conflict"
)

// Location is an optional geographic position attached to a record.
type Location struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

// Conflict keeps both sides of a rejected write so they can be shown to the
// user side by side.
type Conflict struct {
	// Rejected is the local version the server refused.
	Rejected Record `json:"rejected"`

	// Server is the version the server reported as current when it rejected
	// the write. Nil when the server did not return it.
	Server *Record `json:"server,omitempty"`

	// At is the moment the rejection was observed.
	At time.Time `json:"at"`
}

// Record is a movie watch-list entry, the unit of synchronization between the
// client cache and the server.
//
// LastEdit is the authoritative ordering key (unix milliseconds): the server
// accepts an update only when it is strictly newer than the stored value.
// Dirty and Conflict are client-side markers and never leave the device.
type Record struct {
	ID      string `json:"id,omitempty"`
	OwnerID int64  `json:"-"`

	Title       string    `json:"title"`
	Director    string    `json:"director"`
	ReleaseDate time.Time `json:"releaseDate"`
	Duration    int       `json:"duration"`
	Watched     bool      `json:"watched"`
	Photo       string    `json:"photo,omitempty"`
	Location    *Location `json:"location,omitempty"`

	LastEdit int64 `json:"lastEditTimestamp"`

	Dirty    bool      `json:"dirty,omitempty"`
	Conflict *Conflict `json:"conflict,omitempty"`
}

// State reports which synchronization state the record is in. Exactly one
// state holds for any record.
func (r Record) State() RecordState {
	switch {
	case r.Dirty && r.Conflict != nil:
		return StateConflict
	case r.Dirty:
		return StateDirty
	default:
		return StateClean
	}
}

// HasServerID reports whether the record id was issued by the server.
func (r Record) HasServerID() bool {
	return r.ID != "" && !IsTemporaryID(r.ID)
}

// Submission returns the payload that is sent to the server: client-side
// markers are stripped and temporary ids are dropped.
func (r Record) Submission() Record {
	out := r
	out.Dirty = false
	out.Conflict = nil
	if IsTemporaryID(out.ID) {
		out.ID = ""
	}
	return out
}

// SamePayload reports whether two records carry the same user-visible data
// and edit timestamp, ignoring id and client markers.
func (r Record) SamePayload(other Record) bool {
	if r.Title != other.Title || r.Director != other.Director ||
		!r.ReleaseDate.Equal(other.ReleaseDate) || r.Duration != other.Duration ||
		r.Watched != other.Watched || r.Photo != other.Photo || r.LastEdit != other.LastEdit {
		return false
	}
	if (r.Location == nil) != (other.Location == nil) {
		return false
	}
	return r.Location == nil || *r.Location == *other.Location
}

// MatchesFilter reports whether the record title starts with prefix.
// An empty prefix matches every record.
func (r Record) MatchesFilter(prefix string) bool {
	return prefix == "" || strings.HasPrefix(r.Title, prefix)
}

// TableName returns the name of the server table holding records.
func (r Record) TableName() string {
	return "records"
}

// IsTemporaryID reports whether id was generated locally.
func IsTemporaryID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// NowMillis returns the current time as unix milliseconds, the unit used by
// [Record.LastEdit] and sync watermarks.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
