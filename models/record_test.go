// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecord_State_ExactlyOne(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want RecordState
	}{
		{name: "clean", rec: Record{ID: "1"}, want: StateClean},
		{name: "dirty", rec: Record{ID: "1", Dirty: true}, want: StateDirty},
		{name: "dirty with conflict", rec: Record{ID: "1", Dirty: true, Conflict: &Conflict{}}, want: StateConflict},
		// a conflict without pending edits is not a conflict state
		{name: "stale conflict marker", rec: Record{ID: "1", Conflict: &Conflict{}}, want: StateClean},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rec.State())
		})
	}
}

func TestRecord_Submission_StripsMarkers(t *testing.T) {
	r := Record{ID: TempIDPrefix + "abc", Title: "X", LastEdit: 100, Dirty: true, Conflict: &Conflict{}}

	got := r.Submission()

	assert.Empty(t, got.ID)
	assert.False(t, got.Dirty)
	assert.Nil(t, got.Conflict)
	assert.Equal(t, "X", got.Title)
	assert.Equal(t, int64(100), got.LastEdit)
	// original untouched
	assert.True(t, r.Dirty)
}

func TestRecord_Submission_KeepsServerID(t *testing.T) {
	r := Record{ID: "7", Dirty: true}
	assert.Equal(t, "7", r.Submission().ID)
}

func TestRecord_HasServerID(t *testing.T) {
	assert.False(t, Record{}.HasServerID())
	assert.False(t, Record{ID: TempIDPrefix + "1"}.HasServerID())
	assert.True(t, Record{ID: "0194c3"}.HasServerID())
}

func TestRecord_MatchesFilter(t *testing.T) {
	r := Record{Title: "Abyss"}

	assert.True(t, r.MatchesFilter(""))
	assert.True(t, r.MatchesFilter("Ab"))
	assert.False(t, r.MatchesFilter("ab"))
	assert.False(t, r.MatchesFilter("Alien"))
}

func TestRecord_SamePayload(t *testing.T) {
	date := time.Date(1989, 8, 9, 0, 0, 0, 0, time.UTC)
	a := Record{ID: "1", Title: "Abyss", ReleaseDate: date, LastEdit: 5, Location: &Location{Lat: 1, Long: 2}}
	b := a
	b.ID = "2"
	b.Dirty = true
	b.Location = &Location{Lat: 1, Long: 2}

	assert.True(t, a.SamePayload(b))

	b.LastEdit = 6
	assert.False(t, a.SamePayload(b))

	c := a
	c.Location = nil
	assert.False(t, a.SamePayload(c))
}

func TestAppBuildInfo_String(t *testing.T) {
	info := NewAppBuildInfo("1.0.0", "", "abc")
	assert.Equal(t, "version 1.0.0, built N/A, commit abc", info.String())
}
