package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"biblio/internal/model"
)

// ReserveBook places a pending reservation for a book that is currently out.
//
// Reserving an available book is rejected with CodeBookAvailable: the caller
// should simply borrow it. (The raw state machine would allow the
// transition; the workflow layer overrides it.) A user who already holds an
// open borrow of the book is rejected with CodeAlreadyBorrowed.
func (e *Engine) ReserveBook(ctx context.Context, bookID, userID string) (model.Reservation, error) {
	book, ok := e.books[bookID]
	if !ok {
		return model.Reservation{}, notFound("book", bookID)
	}
	if _, ok := e.users[userID]; !ok {
		return model.Reservation{}, notFound("user", userID)
	}
	if book.Status == model.StatusAvailable {
		return model.Reservation{}, failure(CodeBookAvailable, "book is available; borrow it instead", bookID)
	}
	for _, b := range e.borrows {
		if b.BookID == bookID && b.UserID == userID && b.Open() {
			return model.Reservation{}, failure(CodeAlreadyBorrowed, "user already has this book on loan", bookID)
		}
	}

	token := e.tokens.Generate()
	res := model.Reservation{
		ID:        e.ids.NextReservationID(),
		BookID:    bookID,
		UserID:    userID,
		CreatedAt: e.clock.Now(),
		Status:    model.ReservationPending,
	}
	e.reservations[res.ID] = &res

	slog.Info("reservation placed",
		"token", token,
		"reservation", res.ID,
		"book", bookID,
		"user", userID,
	)

	result := res
	return result, e.commit(ctx, "reserve", token)
}

// CancelReservation withdraws a reservation. Legal only while it is still
// pending; a notified (or later-stage) reservation cannot be cancelled.
func (e *Engine) CancelReservation(ctx context.Context, reservationID string) error {
	res, ok := e.reservations[reservationID]
	if !ok {
		return notFound("reservation", reservationID)
	}
	if res.Status != model.ReservationPending {
		return failure(CodeNotPending,
			fmt.Sprintf("reservation is %s, only pending reservations can be cancelled", res.Status),
			reservationID)
	}

	token := e.tokens.Generate()
	res.Status = model.ReservationCancelled

	slog.Info("reservation cancelled", "token", token, "reservation", reservationID)
	return e.commit(ctx, "cancel", token)
}

// SweepExpiredReservations expires every notified reservation whose hold
// window has elapsed and advances each affected book's queue: the next
// pending reservation is notified, or the book becomes available. Returns
// the number of reservations expired. Intended to run at session start and
// periodically thereafter; borrow attempts against a reserved book perform
// the same check opportunistically.
func (e *Engine) SweepExpiredReservations(ctx context.Context) (int, error) {
	now := e.clock.Now()

	var stale []*model.Reservation
	for _, r := range e.reservations {
		if r.ExpiredBy(now) {
			stale = append(stale, r)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	// Deterministic processing order regardless of map iteration.
	sort.Slice(stale, func(i, j int) bool { return stale[i].ID < stale[j].ID })

	token := e.tokens.Generate()
	for _, r := range stale {
		r.Status = model.ReservationExpired
		book, ok := e.books[r.BookID]
		if !ok || book.Status != model.StatusReserved {
			continue
		}
		book.Status = model.StatusAvailable
		e.advanceQueue(book, now, token)
	}

	slog.Info("reservation sweep", "token", token, "expired", len(stale))
	return len(stale), e.commit(ctx, "sweep", token)
}

// advanceQueue promotes the oldest pending reservation for the book, if any:
// it becomes notified with the hold window starting now, the book moves to
// reserved, and a reservation-ready notification is recorded for its user.
// With no pending reservation the book is left available. The caller has
// already set book.Status to Available.
func (e *Engine) advanceQueue(book *model.Book, now time.Time, token string) *model.Reservation {
	next := e.nextPending(book.ID)
	if next == nil {
		return nil
	}
	notifiedAt := now
	next.Status = model.ReservationNotified
	next.NotifiedAt = &notifiedAt
	book.Status = model.StatusReserved
	e.notify(next.UserID, model.NotifyReservationReady,
		fmt.Sprintf("Your reserved book '%s' is now available. Please collect within 48 hours.", book.Title), token)

	slog.Info("reservation notified",
		"token", token,
		"reservation", next.ID,
		"book", book.ID,
		"user", next.UserID,
	)
	result := *next
	return &result
}

// nextPending selects the head of the book's logical FIFO: the pending
// reservation with the earliest creation time, ties broken by reservation
// identifier ascending (identifiers are allocated monotonically).
func (e *Engine) nextPending(bookID string) *model.Reservation {
	var head *model.Reservation
	for _, r := range e.reservations {
		if r.BookID != bookID || r.Status != model.ReservationPending {
			continue
		}
		if head == nil ||
			r.CreatedAt.Before(head.CreatedAt) ||
			(r.CreatedAt.Equal(head.CreatedAt) && r.ID < head.ID) {
			head = r
		}
	}
	return head
}

// notifiedReservation finds the user's notified reservation for the book.
func (e *Engine) notifiedReservation(bookID, userID string) *model.Reservation {
	for _, r := range e.reservations {
		if r.BookID == bookID && r.UserID == userID && r.Status == model.ReservationNotified {
			return r
		}
	}
	return nil
}
