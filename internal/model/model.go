// Package model holds the entity types of the lending ledger and the pure
// policy rules that govern them: the membership tier table, the fine policy,
// and the book availability state machine.
//
// Everything in this package is plain data and pure functions. Mutation and
// sequencing live in internal/engine.
package model

import "time"

// AvailabilityStatus is the per-book availability state.
type AvailabilityStatus string

const (
	StatusAvailable AvailabilityStatus = "AVAILABLE"
	StatusBorrowed  AvailabilityStatus = "BORROWED"
	StatusReserved  AvailabilityStatus = "RESERVED"
)

// MembershipTier is the membership category of a user. It determines the
// borrow limit, loan period, and fine rate via the tier table.
type MembershipTier string

const (
	TierStudent MembershipTier = "STUDENT"
	TierFaculty MembershipTier = "FACULTY"
	TierGuest   MembershipTier = "GUEST"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "PENDING"
	ReservationNotified  ReservationStatus = "NOTIFIED"
	ReservationCancelled ReservationStatus = "CANCELLED"
	ReservationExpired   ReservationStatus = "EXPIRED"
	ReservationFulfilled ReservationStatus = "FULFILLED"
)

// NotificationType categorizes notification records.
type NotificationType string

const (
	NotifyDueReminder      NotificationType = "DUE_REMINDER"
	NotifyOverdueAlert     NotificationType = "OVERDUE_ALERT"
	NotifyReservationReady NotificationType = "RESERVATION_READY"
	NotifyFineAlert        NotificationType = "FINE_ALERT"
	NotifyOther            NotificationType = "OTHER"
)

// HoldWindow is how long a notified reservation holds its book. A reservation
// not collected within this window expires and the queue advances.
const HoldWindow = 48 * time.Hour

// Book is a catalog entry. Status must always agree with the borrow and
// reservation registries: StatusBorrowed implies exactly one open borrow
// record for this book.
type Book struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Author      string             `json:"author"`
	Category    string             `json:"category"`
	ISBN        string             `json:"isbn"`
	Status      AvailabilityStatus `json:"status"`
	BorrowCount int                `json:"borrow_count"`
	Tags        string             `json:"tags,omitempty"`
	Edition     string             `json:"edition,omitempty"`
}

// User is a registered member. CurrentBorrows is never negative and never
// exceeds the tier's borrow limit after a successful borrow. UnpaidFines is
// in whole currency units.
type User struct {
	ID             string         `json:"id"`
	Name           string         `json:"name"`
	Email          string         `json:"email,omitempty"`
	Phone          string         `json:"phone,omitempty"`
	Tier           MembershipTier `json:"tier"`
	CurrentBorrows int            `json:"current_borrows"`
	UnpaidFines    int64          `json:"unpaid_fines"`
}

// Borrow is a lending record. It is created by a successful borrow, mutated
// exactly once by the return (ReturnedOn, FinePaid), and never deleted.
type Borrow struct {
	ID         string     `json:"id"`
	BookID     string     `json:"book_id"`
	UserID     string     `json:"user_id"`
	BorrowedOn time.Time  `json:"borrowed_on"`
	DueOn      time.Time  `json:"due_on"`
	ReturnedOn *time.Time `json:"returned_on,omitempty"`
	FinePaid   int64      `json:"fine_paid"`
}

// Open reports whether the borrow has not yet been returned.
func (b *Borrow) Open() bool { return b.ReturnedOn == nil }

// OverdueDays returns the number of whole days the borrow is past due,
// compared against the return date if returned, else against now.
// Never negative.
func (b *Borrow) OverdueDays(now time.Time) int64 {
	compare := now
	if b.ReturnedOn != nil {
		compare = *b.ReturnedOn
	}
	return OverdueDays(b.DueOn, compare)
}

// Overdue reports whether the borrow is past its due date as of now.
func (b *Borrow) Overdue(now time.Time) bool { return b.OverdueDays(now) > 0 }

// Reservation is a queue entry for a book. Queue order among Pending
// reservations is by CreatedAt, ties broken by ID ascending (IDs are
// allocated monotonically).
type Reservation struct {
	ID         string            `json:"id"`
	BookID     string            `json:"book_id"`
	UserID     string            `json:"user_id"`
	CreatedAt  time.Time         `json:"created_at"`
	NotifiedAt *time.Time        `json:"notified_at,omitempty"`
	Status     ReservationStatus `json:"status"`
}

// ExpiresAt returns the end of the hold window. Only meaningful for a
// notified reservation; returns the zero time otherwise.
func (r *Reservation) ExpiresAt() time.Time {
	if r.NotifiedAt == nil {
		return time.Time{}
	}
	return r.NotifiedAt.Add(HoldWindow)
}

// ExpiredBy reports whether the hold window has elapsed as of now.
func (r *Reservation) ExpiredBy(now time.Time) bool {
	return r.Status == ReservationNotified && r.NotifiedAt != nil && now.After(r.ExpiresAt())
}

// Notification is an append-only record describing something a user should
// see. Delivery is outside the engine; the registry is the source of truth.
type Notification struct {
	ID      string           `json:"id"`
	UserID  string           `json:"user_id"`
	Type    NotificationType `json:"type"`
	Message string           `json:"message"`
	Date    time.Time        `json:"date"`
	Read    bool             `json:"read"`
}

// Snapshot is the complete entity set, the unit of persistence. SaveAll
// writes one of these atomically; LoadAll reproduces it by value.
type Snapshot struct {
	Books         []Book
	Users         []User
	Borrows       []Borrow
	Reservations  []Reservation
	Notifications []Notification
}

// DateOnly truncates t to midnight UTC. Borrow and due dates are day
// granular; hold-window timestamps keep full resolution.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from a to b, negative when b is
// before a. Both are truncated to dates first.
func DaysBetween(a, b time.Time) int64 {
	return int64(DateOnly(b).Sub(DateOnly(a)) / (24 * time.Hour))
}

// OverdueDays is max(0, days between due and compare).
func OverdueDays(due, compare time.Time) int64 {
	d := DaysBetween(due, compare)
	if d < 0 {
		return 0
	}
	return d
}
