package memory

import (
	"sort"
	"sync/atomic"
)

// table holds committed rows of one entity type keyed by ID
type table[T any] struct {
	rows map[uint]T
	seq  atomic.Uint64
	id   func(*T) *uint
}

func newTable[T any](id func(*T) *uint) *table[T] {
	return &table[T]{rows: make(map[uint]T), id: id}
}

func (t *table[T]) nextID() uint {
	return uint(t.seq.Add(1))
}

// overlay buffers the writes of one transaction on top of a table. A nil
// entry marks a deleted row. Reads of the base table must happen under the
// store's read lock.
type overlay[T any] struct {
	base    *table[T]
	changes map[uint]*T
}

func newOverlay[T any](base *table[T]) *overlay[T] {
	return &overlay[T]{base: base, changes: make(map[uint]*T)}
}

func (o *overlay[T]) get(id uint) (T, bool) {
	if row, ok := o.changes[id]; ok {
		if row == nil {
			var zero T
			return zero, false
		}
		return *row, true
	}
	row, ok := o.base.rows[id]
	return row, ok
}

// insert assigns an ID when the row has none and stores it
func (o *overlay[T]) insert(row *T) {
	id := o.base.id(row)
	if *id == 0 {
		*id = o.base.nextID()
	}
	o.put(*row)
}

func (o *overlay[T]) put(row T) {
	id := *o.base.id(&row)
	o.changes[id] = &row
}

func (o *overlay[T]) remove(id uint) {
	o.changes[id] = nil
}

// list returns the merged rows matching keep, ordered by ID
func (o *overlay[T]) list(keep func(*T) bool) []T {
	out := make([]T, 0)
	for id, row := range o.base.rows {
		if _, changed := o.changes[id]; changed {
			continue
		}
		if keep(&row) {
			out = append(out, row)
		}
	}
	for _, row := range o.changes {
		if row != nil && keep(row) {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return *o.base.id(&out[i]) < *o.base.id(&out[j])
	})
	return out
}

// removeWhere deletes every merged row matching match
func (o *overlay[T]) removeWhere(match func(*T) bool) {
	for _, row := range o.list(match) {
		o.remove(*o.base.id(&row))
	}
}

// commit publishes the buffered writes; the caller holds the store write lock
func (o *overlay[T]) commit() {
	for id, row := range o.changes {
		if row == nil {
			delete(o.base.rows, id)
			continue
		}
		o.base.rows[id] = *row
	}
}
