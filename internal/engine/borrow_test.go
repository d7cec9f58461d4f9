package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblio/internal/model"
)

func TestBorrowBook_StudentLoanPeriod(t *testing.T) {
	eng, _ := newTestEngine(t)
	book := addBook(t, eng, "The Martian", "Andy Weir")
	user := addUser(t, eng, "Amara", model.TierStudent)

	borrow, err := eng.BorrowBook(context.Background(), book.ID, user.ID)
	require.NoError(t, err)

	assert.Equal(t, "BR-0001", borrow.ID)
	assert.Equal(t, model.DateOnly(testStart), borrow.BorrowedOn)
	assert.Equal(t, model.DateOnly(testStart).AddDate(0, 0, 14), borrow.DueOn)
	assert.True(t, borrow.Open())

	got, _ := eng.GetBook(book.ID)
	assert.Equal(t, model.StatusBorrowed, got.Status)
	assert.Equal(t, 1, got.BorrowCount)

	member, _ := eng.GetUser(user.ID)
	assert.Equal(t, 1, member.CurrentBorrows)
}

func TestBorrowBook_LoanPeriodPerTier(t *testing.T) {
	tests := []struct {
		tier model.MembershipTier
		days int
	}{
		{model.TierStudent, 14},
		{model.TierFaculty, 30},
		{model.TierGuest, 7},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			eng, _ := newTestEngine(t)
			book := addBook(t, eng, "T", "A")
			user := addUser(t, eng, "U", tt.tier)

			borrow, err := eng.BorrowBook(context.Background(), book.ID, user.ID)
			require.NoError(t, err)
			assert.Equal(t, borrow.BorrowedOn.AddDate(0, 0, tt.days), borrow.DueOn)
		})
	}
}

func TestBorrowBook_NotFound(t *testing.T) {
	eng, _ := newTestEngine(t)
	book := addBook(t, eng, "T", "A")
	user := addUser(t, eng, "U", model.TierStudent)

	_, err := eng.BorrowBook(context.Background(), "BK-404", user.ID)
	assert.True(t, IsNotFound(err))

	_, err = eng.BorrowBook(context.Background(), book.ID, "STU-404")
	assert.True(t, IsNotFound(err))
}

func TestBorrowBook_GuestLimit(t *testing.T) {
	eng, _ := newTestEngine(t)
	user := addUser(t, eng, "Visitor", model.TierGuest)
	for i := 0; i < 2; i++ {
		book := addBook(t, eng, "T", "A")
		_, err := eng.BorrowBook(context.Background(), book.ID, user.ID)
		require.NoError(t, err)
	}
	third := addBook(t, eng, "T3", "A")

	_, err := eng.BorrowBook(context.Background(), third.ID, user.ID)
	assert.Equal(t, CodeLimitExceeded, CodeOf(err))

	// Nothing moved.
	got, _ := eng.GetBook(third.ID)
	assert.Equal(t, model.StatusAvailable, got.Status)
	member, _ := eng.GetUser(user.ID)
	assert.Equal(t, 2, member.CurrentBorrows)
}

func TestBorrowBook_FineCeiling(t *testing.T) {
	eng, clock := newTestEngine(t)
	user := addUser(t, eng, "Late", model.TierGuest)
	book := addBook(t, eng, "T", "A")

	// Guest at 100/day: ten days late costs exactly the 1000 ceiling.
	borrow, err := eng.BorrowBook(context.Background(), book.ID, user.ID)
	require.NoError(t, err)
	clock.Advance(17 * 24 * time.Hour)
	summary, err := eng.ReturnBook(context.Background(), borrow.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), summary.Fine)

	_, err = eng.BorrowBook(context.Background(), book.ID, user.ID)
	assert.Equal(t, CodeFineLimitExceeded, CodeOf(err))

	// Paying below the ceiling restores borrowing.
	require.NoError(t, eng.PayFine(context.Background(), user.ID, 1))
	_, err = eng.BorrowBook(context.Background(), book.ID, user.ID)
	assert.NoError(t, err)
}

func TestBorrowBook_AlreadyBorrowed(t *testing.T) {
	eng, _ := newTestEngine(t)
	book := addBook(t, eng, "T", "A")
	first := addUser(t, eng, "First", model.TierStudent)
	second := addUser(t, eng, "Second", model.TierStudent)

	_, err := eng.BorrowBook(context.Background(), book.ID, first.ID)
	require.NoError(t, err)

	_, err = eng.BorrowBook(context.Background(), book.ID, second.ID)
	assert.Equal(t, CodeBookUnavailable, CodeOf(err))
}

func TestBorrowBook_ReservedForAnotherUser(t *testing.T) {
	eng, _ := newTestEngine(t)
	book := addBook(t, eng, "T", "A")
	borrower := addUser(t, eng, "Borrower", model.TierStudent)
	waiter := addUser(t, eng, "Waiter", model.TierFaculty)
	intruder := addUser(t, eng, "Intruder", model.TierGuest)

	first, err := eng.BorrowBook(context.Background(), book.ID, borrower.ID)
	require.NoError(t, err)
	_, err = eng.ReserveBook(context.Background(), book.ID, waiter.ID)
	require.NoError(t, err)
	_, err = eng.ReturnBook(context.Background(), first.ID)
	require.NoError(t, err)

	// The book is now on hold for the waiter.
	_, err = eng.BorrowBook(context.Background(), book.ID, intruder.ID)
	assert.Equal(t, CodeBookUnavailable, CodeOf(err))

	borrow, err := eng.BorrowBook(context.Background(), book.ID, waiter.ID)
	require.NoError(t, err)
	assert.Equal(t, waiter.ID, borrow.UserID)

	reservations := eng.ListReservations(waiter.ID)
	require.Len(t, reservations, 1)
	assert.Equal(t, model.ReservationFulfilled, reservations[0].Status)
}

func TestBorrowBook_ExpiredHoldResolvedOnAttempt(t *testing.T) {
	eng, clock := newTestEngine(t)
	book := addBook(t, eng, "T", "A")
	borrower := addUser(t, eng, "Borrower", model.TierStudent)
	waiter := addUser(t, eng, "Waiter", model.TierFaculty)

	first, err := eng.BorrowBook(context.Background(), book.ID, borrower.ID)
	require.NoError(t, err)
	_, err = eng.ReserveBook(context.Background(), book.ID, waiter.ID)
	require.NoError(t, err)
	_, err = eng.ReturnBook(context.Background(), first.ID)
	require.NoError(t, err)

	clock.Advance(49 * time.Hour)

	// The holder shows up too late: the hold expires on the spot.
	_, err = eng.BorrowBook(context.Background(), book.ID, waiter.ID)
	assert.Equal(t, CodeReservationExpired, CodeOf(err))

	got, _ := eng.GetBook(book.ID)
	assert.Equal(t, model.StatusAvailable, got.Status)
	reservations := eng.ListReservations(waiter.ID)
	require.Len(t, reservations, 1)
	assert.Equal(t, model.ReservationExpired, reservations[0].Status)
}

func TestReturnBook_OnTime(t *testing.T) {
	eng, clock := newTestEngine(t)
	book := addBook(t, eng, "T", "A")
	user := addUser(t, eng, "U", model.TierStudent)
	borrow, err := eng.BorrowBook(context.Background(), book.ID, user.ID)
	require.NoError(t, err)

	clock.Advance(10 * 24 * time.Hour)
	summary, err := eng.ReturnBook(context.Background(), borrow.ID)
	require.NoError(t, err)

	assert.Zero(t, summary.Fine)
	assert.Zero(t, summary.OverdueDays)
	assert.Nil(t, summary.Promoted)
	assert.False(t, summary.Borrow.Open())

	got, _ := eng.GetBook(book.ID)
	assert.Equal(t, model.StatusAvailable, got.Status)
	member, _ := eng.GetUser(user.ID)
	assert.Zero(t, member.CurrentBorrows)
	assert.Empty(t, eng.ListNotifications(user.ID))
}

func TestReturnBook_OverdueChargesFine(t *testing.T) {
	eng, clock := newTestEngine(t)
	book := addBook(t, eng, "Clean Code", "Robert Martin")
	user := addUser(t, eng, "U", model.TierStudent)
	borrow, err := eng.BorrowBook(context.Background(), book.ID, user.ID)
	require.NoError(t, err)

	// Five days past the 14-day student period.
	clock.Advance(19 * 24 * time.Hour)
	summary, err := eng.ReturnBook(context.Background(), borrow.ID)
	require.NoError(t, err)

	assert.Equal(t, int64(5), summary.OverdueDays)
	assert.Equal(t, int64(250), summary.Fine)
	assert.Equal(t, int64(250), summary.Borrow.FinePaid)

	member, _ := eng.GetUser(user.ID)
	assert.Equal(t, int64(250), member.UnpaidFines)

	notifications := eng.ListNotifications(user.ID)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotifyOverdueAlert, notifications[0].Type)
	assert.Equal(t, "Fine of LKR 250 for 5 days overdue on book: Clean Code", notifications[0].Message)
}

func TestReturnBook_AlreadyReturned(t *testing.T) {
	eng, _ := newTestEngine(t)
	book := addBook(t, eng, "T", "A")
	user := addUser(t, eng, "U", model.TierStudent)
	borrow, err := eng.BorrowBook(context.Background(), book.ID, user.ID)
	require.NoError(t, err)
	_, err = eng.ReturnBook(context.Background(), borrow.ID)
	require.NoError(t, err)

	_, err = eng.ReturnBook(context.Background(), borrow.ID)
	assert.Equal(t, CodeAlreadyReturned, CodeOf(err))
}

func TestReturnBook_PromotesNextReservation(t *testing.T) {
	eng, clock := newTestEngine(t)
	book := addBook(t, eng, "Hyperion", "Dan Simmons")
	borrower := addUser(t, eng, "Borrower", model.TierStudent)
	waiter := addUser(t, eng, "Waiter", model.TierFaculty)

	borrow, err := eng.BorrowBook(context.Background(), book.ID, borrower.ID)
	require.NoError(t, err)
	res, err := eng.ReserveBook(context.Background(), book.ID, waiter.ID)
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	summary, err := eng.ReturnBook(context.Background(), borrow.ID)
	require.NoError(t, err)

	require.NotNil(t, summary.Promoted)
	assert.Equal(t, res.ID, summary.Promoted.ID)
	assert.Equal(t, model.ReservationNotified, summary.Promoted.Status)
	require.NotNil(t, summary.Promoted.NotifiedAt)
	assert.Equal(t, clock.Now(), *summary.Promoted.NotifiedAt)
	assert.Equal(t, clock.Now().Add(48*time.Hour), summary.Promoted.ExpiresAt())

	got, _ := eng.GetBook(book.ID)
	assert.Equal(t, model.StatusReserved, got.Status)

	notifications := eng.ListNotifications(waiter.ID)
	require.Len(t, notifications, 1)
	assert.Equal(t, model.NotifyReservationReady, notifications[0].Type)
	assert.Equal(t, "Your reserved book 'Hyperion' is now available. Please collect within 48 hours.",
		notifications[0].Message)
}

func TestPreviewFine(t *testing.T) {
	eng, clock := newTestEngine(t)
	book := addBook(t, eng, "T", "A")
	user := addUser(t, eng, "U", model.TierStudent)
	borrow, err := eng.BorrowBook(context.Background(), book.ID, user.ID)
	require.NoError(t, err)

	assert.Zero(t, eng.PreviewFine(borrow.ID), "not yet due")

	clock.Advance(16 * 24 * time.Hour)
	assert.Equal(t, int64(100), eng.PreviewFine(borrow.ID))

	// Preview never mutates.
	member, _ := eng.GetUser(user.ID)
	assert.Zero(t, member.UnpaidFines)

	_, err = eng.ReturnBook(context.Background(), borrow.ID)
	require.NoError(t, err)
	assert.Zero(t, eng.PreviewFine(borrow.ID), "returned borrows preview zero")
	assert.Zero(t, eng.PreviewFine("BR-0404"), "unknown borrows preview zero")
}
