// Package engine implements the lending and reservation engine: the
// borrow/return/reserve/cancel transactions, the per-book reservation queue
// with its 48-hour hold window, fine accrual per membership tier, and the
// notification records those transitions produce.
//
// The engine holds all five registries in memory and requests a full
// persistence checkpoint after every mutating operation. It assumes a single
// logical thread of control: operations are invoked sequentially by one
// active session and the engine performs no internal locking. Hosts that
// embed it in concurrent code must serialize every entry point externally.
//
// Expected business conditions (book unavailable, limit reached, reservation
// expired, ...) are reported as *Error values with a distinguishing Code,
// never as panics. Precondition checks are ordered and short-circuit before
// any mutation, so an operation that fails validation has no side effects.
package engine

import (
	"context"
	"log/slog"
	"sort"

	"biblio/internal/idgen"
	"biblio/internal/model"
)

// Checkpointer persists the complete entity set after a mutation. The engine
// is agnostic to encoding; it only requires that SaveAll followed by a load
// reproduces an equivalent snapshot.
type Checkpointer interface {
	SaveAll(ctx context.Context, snap model.Snapshot) error
}

// Engine owns the entity registries and sequences every mutation.
type Engine struct {
	clock      Clock
	tokens     TokenGenerator
	ids        *idgen.Generator
	checkpoint Checkpointer

	books         map[string]*model.Book
	users         map[string]*model.User
	borrows       map[string]*model.Borrow
	reservations  map[string]*model.Reservation
	notifications map[string]*model.Notification
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithClock overrides the wall clock. Tests use a fixed clock to pin due
// dates and hold-window expiry.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithTokens overrides the op token generator.
func WithTokens(g TokenGenerator) Option {
	return func(e *Engine) { e.tokens = g }
}

// New creates an empty engine. cp may be nil, in which case checkpoints are
// skipped (tests that only exercise in-memory semantics do this).
func New(cp Checkpointer, ids *idgen.Generator, opts ...Option) *Engine {
	e := &Engine{
		clock:         SystemClock{},
		tokens:        UUIDv7Generator{},
		ids:           ids,
		checkpoint:    cp,
		books:         make(map[string]*model.Book),
		users:         make(map[string]*model.User),
		borrows:       make(map[string]*model.Borrow),
		reservations:  make(map[string]*model.Reservation),
		notifications: make(map[string]*model.Notification),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Restore replaces the registries with the snapshot's contents and reseeds
// the identifier counters past the highest identifier in each category.
// Called once at session start with the result of LoadAll.
func (e *Engine) Restore(snap model.Snapshot) {
	e.books = make(map[string]*model.Book, len(snap.Books))
	for i := range snap.Books {
		b := snap.Books[i]
		e.books[b.ID] = &b
	}
	e.users = make(map[string]*model.User, len(snap.Users))
	for i := range snap.Users {
		u := snap.Users[i]
		e.users[u.ID] = &u
	}
	e.borrows = make(map[string]*model.Borrow, len(snap.Borrows))
	for i := range snap.Borrows {
		b := snap.Borrows[i]
		e.borrows[b.ID] = &b
	}
	e.reservations = make(map[string]*model.Reservation, len(snap.Reservations))
	for i := range snap.Reservations {
		r := snap.Reservations[i]
		e.reservations[r.ID] = &r
	}
	e.notifications = make(map[string]*model.Notification, len(snap.Notifications))
	for i := range snap.Notifications {
		n := snap.Notifications[i]
		e.notifications[n.ID] = &n
	}
	e.ids.Seed(snap)
}

// Snapshot copies the registries into a value snapshot, each registry sorted
// by identifier so persistence and comparisons are deterministic.
func (e *Engine) Snapshot() model.Snapshot {
	snap := model.Snapshot{
		Books:         make([]model.Book, 0, len(e.books)),
		Users:         make([]model.User, 0, len(e.users)),
		Borrows:       make([]model.Borrow, 0, len(e.borrows)),
		Reservations:  make([]model.Reservation, 0, len(e.reservations)),
		Notifications: make([]model.Notification, 0, len(e.notifications)),
	}
	for _, b := range e.books {
		snap.Books = append(snap.Books, *b)
	}
	for _, u := range e.users {
		snap.Users = append(snap.Users, *u)
	}
	for _, b := range e.borrows {
		snap.Borrows = append(snap.Borrows, *b)
	}
	for _, r := range e.reservations {
		snap.Reservations = append(snap.Reservations, *r)
	}
	for _, n := range e.notifications {
		snap.Notifications = append(snap.Notifications, *n)
	}
	sort.Slice(snap.Books, func(i, j int) bool { return snap.Books[i].ID < snap.Books[j].ID })
	sort.Slice(snap.Users, func(i, j int) bool { return snap.Users[i].ID < snap.Users[j].ID })
	sort.Slice(snap.Borrows, func(i, j int) bool { return snap.Borrows[i].ID < snap.Borrows[j].ID })
	sort.Slice(snap.Reservations, func(i, j int) bool { return snap.Reservations[i].ID < snap.Reservations[j].ID })
	sort.Slice(snap.Notifications, func(i, j int) bool { return snap.Notifications[i].ID < snap.Notifications[j].ID })
	return snap
}

// IDs exposes the identifier service for peek-before-commit UI flows.
func (e *Engine) IDs() *idgen.Generator { return e.ids }

// commit requests a full checkpoint of all five registries. On failure the
// in-memory mutation stands (the running session's state is the source of
// truth); the caller receives a CheckpointFailed error wrapping the cause so
// it can surface the degraded durability.
func (e *Engine) commit(ctx context.Context, op, token string) error {
	if e.checkpoint == nil {
		return nil
	}
	if err := e.checkpoint.SaveAll(ctx, e.Snapshot()); err != nil {
		slog.Error("checkpoint failed; in-memory state retained",
			"op", op,
			"token", token,
			"error", err,
		)
		return &Error{Code: CodeCheckpointFailed, Message: "checkpoint after " + op, Err: err}
	}
	return nil
}
