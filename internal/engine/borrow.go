package engine

import (
	"context"
	"fmt"
	"log/slog"

	"biblio/internal/model"
)

// ReturnSummary reports what a return did: the closed borrow, the fine
// charged (zero when on time), and the reservation promoted by the queue
// advance, if any.
type ReturnSummary struct {
	Borrow      model.Borrow
	OverdueDays int64
	Fine        int64
	Promoted    *model.Reservation
}

// BorrowBook lends a book to a user and returns the new borrow record.
//
// Preconditions, checked in order: book and user exist; the user is under
// their tier's borrow limit; the user's unpaid fines are under the ceiling;
// the book is available, or reserved for this user under an unexpired
// notified reservation. A reserved-book borrow by the hold's owner marks the
// reservation fulfilled.
//
// If the caller's notified reservation has lapsed, the expiry is resolved
// first (reservation expired, queue advanced, checkpoint taken) and the call
// fails with CodeReservationExpired.
func (e *Engine) BorrowBook(ctx context.Context, bookID, userID string) (model.Borrow, error) {
	book, ok := e.books[bookID]
	if !ok {
		return model.Borrow{}, notFound("book", bookID)
	}
	user, ok := e.users[userID]
	if !ok {
		return model.Borrow{}, notFound("user", userID)
	}

	limits := model.LimitsFor(user.Tier)
	if user.CurrentBorrows >= limits.BorrowLimit {
		return model.Borrow{}, failure(CodeLimitExceeded,
			fmt.Sprintf("borrow limit of %d reached", limits.BorrowLimit), userID)
	}
	if user.UnpaidFines >= model.MaxUnpaidLimit {
		return model.Borrow{}, failure(CodeFineLimitExceeded,
			fmt.Sprintf("unpaid fines %d at or above limit %d", user.UnpaidFines, model.MaxUnpaidLimit), userID)
	}

	token := e.tokens.Generate()
	now := e.clock.Now()

	// A hold is consumed (fulfilled) only after the borrow itself succeeds.
	var hold *model.Reservation

	switch book.Status {
	case model.StatusAvailable:
		// clear to borrow
	case model.StatusReserved:
		hold = e.notifiedReservation(bookID, userID)
		if hold == nil {
			return model.Borrow{}, failure(CodeBookUnavailable, "book is reserved for another user", bookID)
		}
		if hold.ExpiredBy(now) {
			// The lapsed hold is resolved here rather than left for the
			// sweep: expire it, advance the queue, then report the failure.
			hold.Status = model.ReservationExpired
			book.Status = model.StatusAvailable
			e.advanceQueue(book, now, token)
			if err := e.commit(ctx, "borrow(expired hold)", token); err != nil {
				return model.Borrow{}, err
			}
			return model.Borrow{}, failure(CodeReservationExpired, "reservation hold window elapsed", hold.ID)
		}
	default:
		return model.Borrow{}, failure(CodeBookUnavailable, "book is already borrowed", bookID)
	}

	next, err := model.Transition(book.Status, model.EventBorrow)
	if err != nil {
		return model.Borrow{}, failure(CodeBookUnavailable, err.Error(), bookID)
	}

	borrowedOn := model.DateOnly(now)
	borrow := model.Borrow{
		ID:         e.ids.NextBorrowID(),
		BookID:     bookID,
		UserID:     userID,
		BorrowedOn: borrowedOn,
		DueOn:      borrowedOn.AddDate(0, 0, limits.LoanDays),
	}
	e.borrows[borrow.ID] = &borrow

	book.Status = next
	book.BorrowCount++
	user.CurrentBorrows++
	if hold != nil {
		hold.Status = model.ReservationFulfilled
	}

	slog.Info("book borrowed",
		"token", token,
		"borrow", borrow.ID,
		"book", bookID,
		"user", userID,
		"due", borrow.DueOn.Format("2006-01-02"),
	)

	result := borrow
	return result, e.commit(ctx, "borrow", token)
}

// ReturnBook closes a borrow: stamps the return date, charges any overdue
// fine to the user's balance (emitting an overdue alert), frees a borrow
// slot, and advances the book's reservation queue: the next pending
// reservation is notified, or the book becomes available.
func (e *Engine) ReturnBook(ctx context.Context, borrowID string) (ReturnSummary, error) {
	borrow, ok := e.borrows[borrowID]
	if !ok {
		return ReturnSummary{}, notFound("borrow", borrowID)
	}
	if !borrow.Open() {
		return ReturnSummary{}, failure(CodeAlreadyReturned, "borrow already returned", borrowID)
	}
	book, ok := e.books[borrow.BookID]
	if !ok {
		return ReturnSummary{}, notFound("book", borrow.BookID)
	}
	user, ok := e.users[borrow.UserID]
	if !ok {
		return ReturnSummary{}, notFound("user", borrow.UserID)
	}

	token := e.tokens.Generate()
	now := e.clock.Now()

	returnedOn := model.DateOnly(now)
	borrow.ReturnedOn = &returnedOn

	overdue := borrow.OverdueDays(now)
	fine := model.Fine(user.Tier, overdue)
	if fine > 0 {
		borrow.FinePaid = fine
		user.UnpaidFines += fine
		e.notify(user.ID, model.NotifyOverdueAlert,
			fmt.Sprintf("Fine of LKR %d for %d days overdue on book: %s", fine, overdue, book.Title), token)
	}

	if user.CurrentBorrows > 0 {
		user.CurrentBorrows--
	}

	book.Status = model.StatusAvailable
	promoted := e.advanceQueue(book, now, token)

	slog.Info("book returned",
		"token", token,
		"borrow", borrowID,
		"book", book.ID,
		"user", user.ID,
		"overdue_days", overdue,
		"fine", fine,
	)

	summary := ReturnSummary{Borrow: *borrow, OverdueDays: overdue, Fine: fine, Promoted: promoted}
	return summary, e.commit(ctx, "return", token)
}

// PreviewFine recomputes the would-be fine for an open borrow without
// mutating anything, for display before the actual return. Returns zero for
// returned or nonexistent borrows.
func (e *Engine) PreviewFine(borrowID string) int64 {
	borrow, ok := e.borrows[borrowID]
	if !ok || !borrow.Open() {
		return 0
	}
	user, ok := e.users[borrow.UserID]
	if !ok {
		return 0
	}
	return model.Fine(user.Tier, borrow.OverdueDays(e.clock.Now()))
}
