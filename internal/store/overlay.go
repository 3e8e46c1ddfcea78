package store

import (
	"encoding/json"
	"sort"
)

// Entity is anything addressable by a client-generated id.
type Entity interface {
	Key() string
}

// Extended decorates an entity with the transient sync fields the UI layer
// renders. The fields exist only in the pending overlay and are never
// persisted.
type Extended[T Entity] struct {
	Item     T
	Pending  bool
	Progress float64
	Err      string
}

// MarshalJSON flattens the entity fields and appends the transient flags,
// matching the shape the pages consume.
func (e Extended[T]) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(e.Item)
	if err != nil {
		return nil, err
	}
	var flat map[string]any
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, err
	}
	if e.Pending {
		flat["isPending"] = true
		flat["uploadProgress"] = e.Progress
	}
	if e.Err != "" {
		flat["error"] = e.Err
	}
	return json.Marshal(flat)
}

// overlay is the two-map state an optimistic store maintains: the canonical
// set (last subscription push, or the local snapshot) and the pending set of
// in-flight or failed mutations. An item lives in exactly one of the two as
// far as Visible is concerned; pending wins until the id shows up
// canonically.
type overlay[T Entity] struct {
	canonical    map[string]T
	order        []string // canonical insertion order, used in local mode
	pending      map[string]*Extended[T]
	pendingOrder []string
}

func newOverlay[T Entity]() *overlay[T] {
	return &overlay[T]{
		canonical: map[string]T{},
		pending:   map[string]*Extended[T]{},
	}
}

// ReplaceCanonical swaps in a full canonical set (a subscription push) and
// drops every pending entry it confirms.
func (o *overlay[T]) ReplaceCanonical(items []T) {
	o.canonical = make(map[string]T, len(items))
	o.order = o.order[:0]
	for _, item := range items {
		o.canonical[item.Key()] = item
		o.order = append(o.order, item.Key())
	}
	o.dropConfirmedPending()
}

// InsertCanonical prepends one item, local-mode style (newest first).
func (o *overlay[T]) InsertCanonical(item T) {
	id := item.Key()
	if _, exists := o.canonical[id]; !exists {
		o.order = append([]string{id}, o.order...)
	}
	o.canonical[id] = item
	o.dropConfirmedPending()
}

// AppendCanonical adds one item at the end, preserving import order.
func (o *overlay[T]) AppendCanonical(item T) {
	id := item.Key()
	if _, exists := o.canonical[id]; !exists {
		o.order = append(o.order, id)
	}
	o.canonical[id] = item
	o.dropConfirmedPending()
}

// UpdateCanonical replaces an existing item in place; unknown ids are
// ignored.
func (o *overlay[T]) UpdateCanonical(item T) bool {
	id := item.Key()
	if _, exists := o.canonical[id]; !exists {
		return false
	}
	o.canonical[id] = item
	return true
}

// RemoveCanonical drops an item from the canonical set.
func (o *overlay[T]) RemoveCanonical(id string) {
	if _, exists := o.canonical[id]; !exists {
		return
	}
	delete(o.canonical, id)
	for i, existing := range o.order {
		if existing == id {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// Canonical returns the canonical item for an id.
func (o *overlay[T]) Canonical(id string) (T, bool) {
	item, ok := o.canonical[id]
	return item, ok
}

// AddPending registers an optimistic entry for an in-flight mutation.
func (o *overlay[T]) AddPending(item T) {
	id := item.Key()
	if _, exists := o.pending[id]; !exists {
		o.pendingOrder = append([]string{id}, o.pendingOrder...)
	}
	o.pending[id] = &Extended[T]{Item: item, Pending: true}
}

// SetPendingProgress records upload progress for a pending entry.
func (o *overlay[T]) SetPendingProgress(id string, progress float64) {
	if entry, ok := o.pending[id]; ok {
		entry.Progress = progress
	}
}

// FailPending marks a pending entry as errored. It stays visible until the
// caller retries or dismisses it.
func (o *overlay[T]) FailPending(id, message string) {
	if entry, ok := o.pending[id]; ok {
		entry.Pending = false
		entry.Err = message
	}
}

// ResetPending rearms an errored entry for a retry, preserving its id.
func (o *overlay[T]) ResetPending(id string) {
	if entry, ok := o.pending[id]; ok {
		entry.Pending = true
		entry.Err = ""
		entry.Progress = 0
	}
}

// ClearPending removes an overlay entry outright.
func (o *overlay[T]) ClearPending(id string) bool {
	if _, ok := o.pending[id]; !ok {
		return false
	}
	delete(o.pending, id)
	for i, existing := range o.pendingOrder {
		if existing == id {
			o.pendingOrder = append(o.pendingOrder[:i], o.pendingOrder[i+1:]...)
			break
		}
	}
	return true
}

// PendingError returns whether the id is an errored overlay entry.
func (o *overlay[T]) PendingError(id string) bool {
	entry, ok := o.pending[id]
	return ok && entry.Err != ""
}

// Errored returns the items of every failed overlay entry, newest first.
func (o *overlay[T]) Errored() []T {
	var out []T
	for _, id := range o.pendingOrder {
		if entry := o.pending[id]; entry != nil && entry.Err != "" {
			out = append(out, entry.Item)
		}
	}
	return out
}

// Visible unions pending and canonical entries, pending first. Canonical
// order is descending by id when sortByID is set (ids embed timestamps, so
// this approximates newest-first) and insertion order otherwise.
func (o *overlay[T]) Visible(sortByID bool) []Extended[T] {
	out := make([]Extended[T], 0, len(o.pendingOrder)+len(o.order))
	for _, id := range o.pendingOrder {
		if entry := o.pending[id]; entry != nil {
			out = append(out, *entry)
		}
	}

	ids := append([]string(nil), o.order...)
	if sortByID {
		sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	}
	for _, id := range ids {
		out = append(out, Extended[T]{Item: o.canonical[id]})
	}
	return out
}

// Snapshot returns the canonical items in insertion order, for persistence.
func (o *overlay[T]) Snapshot() []T {
	out := make([]T, 0, len(o.order))
	for _, id := range o.order {
		out = append(out, o.canonical[id])
	}
	return out
}

func (o *overlay[T]) dropConfirmedPending() {
	for id := range o.pending {
		if _, confirmed := o.canonical[id]; confirmed {
			o.ClearPending(id)
		}
	}
}
