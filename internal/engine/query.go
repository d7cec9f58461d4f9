package engine

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"biblio/internal/model"
)

// The query surface consumed by the presentation layer. All results are
// value copies sorted by identifier (notifications newest first), so callers
// never alias engine-owned state.

// GetBook returns the book by id.
func (e *Engine) GetBook(bookID string) (model.Book, bool) {
	b, ok := e.books[bookID]
	if !ok {
		return model.Book{}, false
	}
	return *b, true
}

// ListBooks returns every book, sorted by id.
func (e *Engine) ListBooks() []model.Book {
	out := make([]model.Book, 0, len(e.books))
	for _, b := range e.books {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

var foldCaser = cases.Fold()

// searchKey normalizes text for matching: NFC normalization then Unicode
// case folding, so "Márquez" matches "márquez" regardless of how the input
// was composed.
func searchKey(s string) string {
	return foldCaser.String(norm.NFC.String(s))
}

// SearchBooks returns books whose title, author, or category contains the
// query, case- and composition-insensitively. An empty query matches
// nothing.
func (e *Engine) SearchBooks(query string) []model.Book {
	q := searchKey(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []model.Book
	for _, b := range e.books {
		if strings.Contains(searchKey(b.Title), q) ||
			strings.Contains(searchKey(b.Author), q) ||
			strings.Contains(searchKey(b.Category), q) {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetUser returns the user by id.
func (e *Engine) GetUser(userID string) (model.User, bool) {
	u, ok := e.users[userID]
	if !ok {
		return model.User{}, false
	}
	return *u, true
}

// ListUsers returns every user, sorted by id.
func (e *Engine) ListUsers() []model.User {
	out := make([]model.User, 0, len(e.users))
	for _, u := range e.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetBorrow returns the borrow record by id.
func (e *Engine) GetBorrow(borrowID string) (model.Borrow, bool) {
	b, ok := e.borrows[borrowID]
	if !ok {
		return model.Borrow{}, false
	}
	return *b, true
}

// BorrowFilter narrows ListBorrows. Zero value lists everything.
type BorrowFilter struct {
	UserID      string // only this user's borrows
	OpenOnly    bool   // only borrows without a return date
	OverdueOnly bool   // only open borrows past their due date (implies OpenOnly)
}

// ListBorrows returns borrow records matching the filter, sorted by id.
func (e *Engine) ListBorrows(f BorrowFilter) []model.Borrow {
	now := e.clock.Now()
	var out []model.Borrow
	for _, b := range e.borrows {
		if f.UserID != "" && b.UserID != f.UserID {
			continue
		}
		if (f.OpenOnly || f.OverdueOnly) && !b.Open() {
			continue
		}
		if f.OverdueOnly && !b.Overdue(now) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ListReservations returns reservations, optionally only one user's, sorted
// by id.
func (e *Engine) ListReservations(userID string) []model.Reservation {
	var out []model.Reservation
	for _, r := range e.reservations {
		if userID != "" && r.UserID != userID {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PendingQueue returns a book's pending reservations in queue order:
// creation time ascending, ties by id.
func (e *Engine) PendingQueue(bookID string) []model.Reservation {
	var out []model.Reservation
	for _, r := range e.reservations {
		if r.BookID == bookID && r.Status == model.ReservationPending {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ListNotifications returns notifications, optionally only one user's,
// newest first.
func (e *Engine) ListNotifications(userID string) []model.Notification {
	var out []model.Notification
	for _, n := range e.notifications {
		if userID != "" && n.UserID != userID {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
