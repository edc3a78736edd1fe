// Package store holds the in-memory record sets. Each entity type gets one
// Repository; persistence and sync hang off it as observers, so domain code
// never talks to storage directly.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("duplicate record id")
)

// Entity is anything addressable by a stable string id.
type Entity interface {
	EntityID() string
}

type Op string

const (
	OpUpsert  Op = "upsert"
	OpDelete  Op = "delete"
	OpReplace Op = "replace" // bulk load; not a user mutation
)

// Event describes one committed change to a collection.
type Event struct {
	Collection string
	Op         Op
	Rows       []Entity
	IDs        []string
	// Snapshot is the full collection ([]T) after the change, newest first.
	Snapshot any
}

// Observer is notified after every committed change. Observe runs while the
// repository lock is held and must not call back into the repository.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

type ObserverFunc func(ctx context.Context, ev Event)

func (f ObserverFunc) Observe(ctx context.Context, ev Event) { f(ctx, ev) }

// Repository is a concurrency-safe record set ordered newest first.
type Repository[T Entity] struct {
	name      string
	mu        sync.RWMutex
	items     []T
	observers []Observer
}

func NewRepository[T Entity](name string, observers ...Observer) *Repository[T] {
	return &Repository[T]{name: name, observers: observers}
}

func (r *Repository[T]) Name() string { return r.name }

// Subscribe registers an observer for subsequent changes.
func (r *Repository[T]) Subscribe(o Observer) {
	r.mu.Lock()
	r.observers = append(r.observers, o)
	r.mu.Unlock()
}

func (r *Repository[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// List returns a copy of the collection, newest first.
func (r *Repository[T]) List() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot()
}

// Filter returns the records matching keep, newest first.
func (r *Repository[T]) Filter(keep func(T) bool) []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []T
	for _, it := range r.items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

func (r *Repository[T]) Get(id string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.items[i], nil
	}
	var zero T
	return zero, fmt.Errorf("%s %q: %w", r.name, id, ErrNotFound)
}

// Create inserts items ahead of the existing records, keeping their order.
func (r *Repository[T]) Create(ctx context.Context, items ...T) error {
	_, err := r.CreateWith(ctx, func([]T) ([]T, error) { return items, nil })
	return err
}

// CreateWith runs build against the current records and inserts what it
// returns, atomically. Use it when the new records depend on the existing
// ones (numbering, uniqueness guards).
func (r *Repository[T]) CreateWith(ctx context.Context, build func(existing []T) ([]T, error)) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created, err := build(r.items)
	if err != nil {
		return nil, err
	}
	if len(created) == 0 {
		return nil, nil
	}
	seen := make(map[string]struct{}, len(created))
	for _, it := range created {
		id := it.EntityID()
		if _, dup := seen[id]; dup || r.indexOf(id) >= 0 {
			return nil, fmt.Errorf("%s %q: %w", r.name, id, ErrDuplicateID)
		}
		seen[id] = struct{}{}
	}

	next := make([]T, 0, len(created)+len(r.items))
	next = append(next, created...)
	next = append(next, r.items...)
	r.items = next

	r.notify(ctx, Event{Op: OpUpsert, Rows: entities(created)})
	return append([]T(nil), created...), nil
}

// Update applies fn to the record with id. fn reports whether it changed
// anything; unchanged records are not written and observers are not called.
func (r *Repository[T]) Update(ctx context.Context, id string, fn func(T) (T, bool, error)) (T, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		var zero T
		return zero, false, fmt.Errorf("%s %q: %w", r.name, id, ErrNotFound)
	}
	next, changed, err := fn(r.items[i])
	if err != nil {
		return r.items[i], false, err
	}
	if !changed {
		return r.items[i], false, nil
	}
	if next.EntityID() != id {
		return r.items[i], false, fmt.Errorf("%s %q: update may not change the id", r.name, id)
	}
	r.items[i] = next
	r.notify(ctx, Event{Op: OpUpsert, Rows: entities([]T{next})})
	return next, true, nil
}

// Put inserts item or replaces the record with the same id.
func (r *Repository[T]) Put(ctx context.Context, item T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(item.EntityID()); i >= 0 {
		r.items[i] = item
	} else {
		r.items = append([]T{item}, r.items...)
	}
	r.notify(ctx, Event{Op: OpUpsert, Rows: entities([]T{item})})
}

func (r *Repository[T]) Delete(ctx context.Context, id string) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		var zero T
		return zero, fmt.Errorf("%s %q: %w", r.name, id, ErrNotFound)
	}
	removed := r.items[i]
	r.items = append(r.items[:i:i], r.items[i+1:]...)
	r.notify(ctx, Event{Op: OpDelete, IDs: []string{id}})
	return removed, nil
}

// DeleteIf removes every record that remove accepts and returns them.
func (r *Repository[T]) DeleteIf(ctx context.Context, remove func(T) bool) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed []T
	kept := make([]T, 0, len(r.items))
	for _, it := range r.items {
		if remove(it) {
			removed = append(removed, it)
			continue
		}
		kept = append(kept, it)
	}
	if len(removed) == 0 {
		return nil
	}
	r.items = kept
	ids := make([]string, len(removed))
	for i, it := range removed {
		ids[i] = it.EntityID()
	}
	r.notify(ctx, Event{Op: OpDelete, IDs: ids})
	return removed
}

// Replace swaps the whole collection, as done when loading from storage.
func (r *Repository[T]) Replace(ctx context.Context, items []T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append([]T(nil), items...)
	r.notify(ctx, Event{Op: OpReplace})
}

func (r *Repository[T]) indexOf(id string) int {
	for i, it := range r.items {
		if it.EntityID() == id {
			return i
		}
	}
	return -1
}

func (r *Repository[T]) snapshot() []T {
	return append(make([]T, 0, len(r.items)), r.items...)
}

func (r *Repository[T]) notify(ctx context.Context, ev Event) {
	ev.Collection = r.name
	ev.Snapshot = r.snapshot()
	for _, o := range r.observers {
		o.Observe(ctx, ev)
	}
}

func entities[T Entity](items []T) []Entity {
	out := make([]Entity, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}
