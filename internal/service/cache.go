// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"slices"
	"time"

	"github.com/MKhiriev/go-offline-sync/models"
)

// Cache is the client's ordered, id-unique view of the owner's records.
//
// A Cache is an immutable value: every transition returns a new Cache and
// leaves the receiver untouched, so snapshots handed to readers never change
// under them.
type Cache struct {
	records []models.Record
}

// NewCache builds a cache from records, keeping the first occurrence of any
// duplicated id.
func NewCache(records []models.Record) Cache {
	seen := make(map[string]struct{}, len(records))
	out := make([]models.Record, 0, len(records))
	for _, r := range records {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return Cache{records: out}
}

// Records returns a copy of the records in cache order.
func (c Cache) Records() []models.Record {
	return slices.Clone(c.records)
}

func (c Cache) Len() int {
	return len(c.records)
}

func (c Cache) Get(id string) (models.Record, bool) {
	if i := c.index(id); i >= 0 {
		return c.records[i], true
	}
	return models.Record{}, false
}

// Dirty returns the dirty queue: every record with unconfirmed local edits,
// in cache order.
func (c Cache) Dirty() []models.Record {
	var out []models.Record
	for _, r := range c.records {
		if r.Dirty {
			out = append(out, r)
		}
	}
	return out
}

// Filtered returns the records whose title starts with prefix.
func (c Cache) Filtered(prefix string) []models.Record {
	out := make([]models.Record, 0, len(c.records))
	for _, r := range c.records {
		if r.MatchesFilter(prefix) {
			out = append(out, r)
		}
	}
	return out
}

func (c Cache) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(c.records, func(r models.Record) bool { return r.ID == id })
}

func (c Cache) replaceAt(i int, r models.Record) Cache {
	out := slices.Clone(c.records)
	out[i] = r
	return Cache{records: out}
}

func (c Cache) prepend(r models.Record) Cache {
	out := make([]models.Record, 0, len(c.records)+1)
	out = append(out, r)
	out = append(out, c.records...)
	return Cache{records: out}
}

// mergeOne applies the shared merge rule for one server-confirmed record: an
// existing dirty entry always wins, an existing clean entry is replaced in
// place and a new record is added by add.
func (c Cache) mergeOne(incoming models.Record, add func(Cache, models.Record) Cache) Cache {
	incoming.Dirty = false
	incoming.Conflict = nil

	i := c.index(incoming.ID)
	switch {
	case i < 0:
		return add(c, incoming)
	case c.records[i].Dirty:
		return c
	default:
		return c.replaceAt(i, incoming)
	}
}

// MergeFetched merges a fetched page. New records are appended in server
// order.
func (c Cache) MergeFetched(items []models.Record) Cache {
	out := c
	for _, item := range items {
		out = out.mergeOne(item, func(cc Cache, r models.Record) Cache {
			return Cache{records: append(slices.Clone(cc.records), r)}
		})
	}
	return out
}

// MergePushed merges a record delivered on the push channel. New records go
// to the front.
func (c Cache) MergePushed(record models.Record) Cache {
	return c.mergeOne(record, Cache.prepend)
}

// ApplyLocalEdit stores a user edit. The record becomes dirty and any
// previous conflict is dropped. Unknown records are inserted at the front.
func (c Cache) ApplyLocalEdit(record models.Record) Cache {
	record.Dirty = true
	record.Conflict = nil

	if i := c.index(record.ID); i >= 0 {
		return c.replaceAt(i, record)
	}
	return c.prepend(record)
}

// ConfirmWrite applies a successful remote write of submitted, the stripped
// version that was sent, answered with confirmed.
//
// If the entry still carries the submitted payload it becomes the clean
// confirmed record. If the user edited it while the write was in flight the
// entry keeps its local edits and stays dirty, adopting only the server id.
// Any other entry already holding the server id (e.g. delivered by push
// before the response) is dropped.
func (c Cache) ConfirmWrite(localID string, submitted, confirmed models.Record) Cache {
	i := c.index(localID)
	if i < 0 {
		return c
	}

	current := c.records[i]
	next := confirmed
	next.Dirty = false
	next.Conflict = nil
	if !current.SamePayload(submitted) {
		next = current
		next.ID = confirmed.ID
	}

	out := make([]models.Record, 0, len(c.records))
	for j, r := range c.records {
		switch {
		case j == i:
			out = append(out, next)
		case r.ID == confirmed.ID:
			// duplicate of the confirmed record
		default:
			out = append(out, r)
		}
	}
	return Cache{records: out}
}

// MarkConflict tags the entry as rejected by the server, keeping it dirty.
// Nothing changes if the entry was edited again after submitted was sent.
func (c Cache) MarkConflict(id string, submitted models.Record, server *models.Record, at time.Time) Cache {
	i := c.index(id)
	if i < 0 || !c.records[i].SamePayload(submitted) {
		return c
	}

	next := c.records[i]
	next.Dirty = true
	next.Conflict = &models.Conflict{Rejected: submitted, Server: server, At: at}
	return c.replaceAt(i, next)
}

// Remove drops the entry with id.
func (c Cache) Remove(id string) Cache {
	i := c.index(id)
	if i < 0 {
		return c
	}
	return Cache{records: slices.Delete(slices.Clone(c.records), i, i+1)}
}

// AcceptServer replaces the entry with the clean server version, dropping
// local edits. Used when the user settles a conflict in favour of the server.
func (c Cache) AcceptServer(id string, server models.Record) Cache {
	i := c.index(id)
	if i < 0 {
		return c
	}
	server.Dirty = false
	server.Conflict = nil
	return c.replaceAt(i, server)
}
