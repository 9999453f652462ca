package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-offline-sync/models"
)

func rec(id, title string, lastEdit int64) models.Record {
	return models.Record{ID: id, Title: title, LastEdit: lastEdit}
}

func ids(records []models.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

// ── NewCache / accessors ────────────────────────────────────────────────────

func TestNewCache_DropsDuplicateIDs(t *testing.T) {
	c := NewCache([]models.Record{rec("1", "A", 1), rec("2", "B", 1), rec("1", "C", 2)})

	assert.Equal(t, []string{"1", "2"}, ids(c.Records()))
	got, ok := c.Get("1")
	require.True(t, ok)
	assert.Equal(t, "A", got.Title)
}

func TestCache_RecordsIsACopy(t *testing.T) {
	c := NewCache([]models.Record{rec("1", "A", 1)})

	out := c.Records()
	out[0].Title = "changed"

	got, _ := c.Get("1")
	assert.Equal(t, "A", got.Title)
}

func TestCache_GetEmptyID(t *testing.T) {
	c := NewCache([]models.Record{rec("", "A", 1)})
	_, ok := c.Get("")
	assert.False(t, ok)
}

func TestCache_DirtyAndFiltered(t *testing.T) {
	dirty := rec("2", "Abyss", 1)
	dirty.Dirty = true
	c := NewCache([]models.Record{rec("1", "Alien", 1), dirty, rec("3", "Brazil", 1)})

	assert.Equal(t, []string{"2"}, ids(c.Dirty()))
	assert.Equal(t, []string{"1", "2"}, ids(c.Filtered("A")))
	assert.Equal(t, []string{"2"}, ids(c.Filtered("Ab")))
	assert.Len(t, c.Filtered(""), 3)
}

// ── merge rule ──────────────────────────────────────────────────────────────

func TestCache_MergeFetched(t *testing.T) {
	local := rec("2", "local edit", 300)
	local.Dirty = true
	c := NewCache([]models.Record{rec("1", "old", 100), local})

	out := c.MergeFetched([]models.Record{
		rec("1", "new", 200),
		rec("2", "server", 250),
		rec("3", "fresh", 50),
	})

	assert.Equal(t, []string{"1", "2", "3"}, ids(out.Records()), "new records are appended in server order")

	one, _ := out.Get("1")
	assert.Equal(t, "new", one.Title)
	assert.Equal(t, models.StateClean, one.State())

	two, _ := out.Get("2")
	assert.Equal(t, "local edit", two.Title, "a dirty record is never overwritten")
	assert.True(t, two.Dirty)

	// receiver untouched
	orig, _ := c.Get("1")
	assert.Equal(t, "old", orig.Title)
	assert.Equal(t, 2, c.Len())
}

func TestCache_MergeFetched_StripsIncomingMarkers(t *testing.T) {
	incoming := rec("1", "A", 1)
	incoming.Dirty = true
	incoming.Conflict = &models.Conflict{}

	out := NewCache(nil).MergeFetched([]models.Record{incoming})
	got, _ := out.Get("1")
	assert.Equal(t, models.StateClean, got.State())
	assert.Nil(t, got.Conflict)
}

func TestCache_MergePushed(t *testing.T) {
	local := rec("7", "mine", 300)
	local.Dirty = true
	c := NewCache([]models.Record{rec("1", "A", 1), local})

	t.Run("new record goes first", func(t *testing.T) {
		out := c.MergePushed(rec("9", "pushed", 5))
		assert.Equal(t, []string{"9", "1", "7"}, ids(out.Records()))
	})

	t.Run("clean record replaced in place", func(t *testing.T) {
		out := c.MergePushed(rec("1", "B", 2))
		assert.Equal(t, []string{"1", "7"}, ids(out.Records()))
		got, _ := out.Get("1")
		assert.Equal(t, "B", got.Title)
	})

	t.Run("older push never beats a pending local edit", func(t *testing.T) {
		out := c.MergePushed(rec("7", "server", 100))
		got, _ := out.Get("7")
		assert.Equal(t, "mine", got.Title)
		assert.Equal(t, int64(300), got.LastEdit)
		assert.True(t, got.Dirty)
	})
}

// ── local edits and write outcomes ──────────────────────────────────────────

func TestCache_ApplyLocalEdit(t *testing.T) {
	conflicted := rec("1", "A", 1)
	conflicted.Dirty = true
	conflicted.Conflict = &models.Conflict{}
	c := NewCache([]models.Record{conflicted})

	out := c.ApplyLocalEdit(rec("1", "A2", 2))
	got, _ := out.Get("1")
	assert.Equal(t, models.StateDirty, got.State(), "editing again clears the conflict")

	out = out.ApplyLocalEdit(rec("local-x", "new", 3))
	assert.Equal(t, []string{"local-x", "1"}, ids(out.Records()))
}

func TestCache_ConfirmWrite(t *testing.T) {
	submitted := rec("", "Abyss", 100)

	t.Run("temp id swapped for server id", func(t *testing.T) {
		local := rec("local-1", "Abyss", 100)
		local.Dirty = true
		c := NewCache([]models.Record{local, rec("2", "B", 1)})

		out := c.ConfirmWrite("local-1", submitted, rec("srv-1", "Abyss", 100))

		assert.Equal(t, []string{"srv-1", "2"}, ids(out.Records()))
		got, _ := out.Get("srv-1")
		assert.Equal(t, models.StateClean, got.State())
	})

	t.Run("edit during flight keeps local version dirty", func(t *testing.T) {
		local := rec("local-1", "Abyss, director's cut", 150)
		local.Dirty = true
		c := NewCache([]models.Record{local})

		out := c.ConfirmWrite("local-1", submitted, rec("srv-1", "Abyss", 100))

		got, ok := out.Get("srv-1")
		require.True(t, ok)
		assert.Equal(t, "Abyss, director's cut", got.Title)
		assert.True(t, got.Dirty)
	})

	t.Run("push that arrived first is collapsed", func(t *testing.T) {
		local := rec("local-1", "Abyss", 100)
		local.Dirty = true
		c := NewCache([]models.Record{rec("srv-1", "Abyss", 100), local})

		out := c.ConfirmWrite("local-1", submitted, rec("srv-1", "Abyss", 100))
		assert.Equal(t, []string{"srv-1"}, ids(out.Records()))
	})

	t.Run("entry removed meanwhile", func(t *testing.T) {
		c := NewCache([]models.Record{rec("2", "B", 1)})
		out := c.ConfirmWrite("local-1", submitted, rec("srv-1", "Abyss", 100))
		assert.Equal(t, c.Records(), out.Records())
	})
}

func TestCache_MarkConflict(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	local := rec("7", "X", 100)
	local.Dirty = true
	server := rec("7", "Y", 200)
	c := NewCache([]models.Record{local})

	out := c.MarkConflict("7", local.Submission(), &server, at)
	got, _ := out.Get("7")
	assert.Equal(t, models.StateConflict, got.State())
	require.NotNil(t, got.Conflict)
	assert.Equal(t, "X", got.Conflict.Rejected.Title)
	assert.Equal(t, "Y", got.Conflict.Server.Title)
	assert.Equal(t, at, got.Conflict.At)

	// re-edited meanwhile: the new edit is not marked
	edited := c.ApplyLocalEdit(rec("7", "X2", 101))
	out = edited.MarkConflict("7", local.Submission(), &server, at)
	got, _ = out.Get("7")
	assert.Equal(t, models.StateDirty, got.State())
}

func TestCache_AcceptServerAndRemove(t *testing.T) {
	local := rec("7", "X", 100)
	local.Dirty = true
	local.Conflict = &models.Conflict{}
	c := NewCache([]models.Record{local, rec("8", "Z", 1)})

	out := c.AcceptServer("7", rec("7", "Y", 200))
	got, _ := out.Get("7")
	assert.Equal(t, "Y", got.Title)
	assert.Equal(t, models.StateClean, got.State())

	out = out.Remove("7")
	assert.Equal(t, []string{"8"}, ids(out.Records()))
	assert.Equal(t, out.Records(), out.Remove("missing").Records())
}

// Every transition leaves each record in exactly one state.
func TestCache_StatesStayExclusive(t *testing.T) {
	server := rec("1", "S", 500)
	c := NewCache(nil).
		MergeFetched([]models.Record{rec("1", "A", 1), rec("2", "B", 1)}).
		ApplyLocalEdit(rec("1", "A2", 2))
	c = c.MarkConflict("1", rec("1", "A2", 2), &server, time.Now()).
		MergePushed(rec("3", "C", 1)).
		ApplyLocalEdit(rec("local-4", "D", 1))

	for _, r := range c.Records() {
		n := 0
		for _, st := range []models.RecordState{models.StateClean, models.StateDirty, models.StateConflict} {
			if r.State() == st {
				n++
			}
		}
		assert.Equal(t, 1, n, r.ID)
	}
}
