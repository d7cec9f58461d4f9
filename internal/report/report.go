// Package report derives librarian-facing reports from the engine's query
// surface: most borrowed books, most active borrowers, and the overdue list.
// Results are deterministically ordered (count descending, then identifier)
// so exports are stable.
package report

import (
	"sort"
	"time"

	"biblio/internal/engine"
	"biblio/internal/model"
)

// Service computes reports against a live engine.
type Service struct {
	eng   *engine.Engine
	clock engine.Clock
}

// NewService creates a report service. clock may be nil, defaulting to the
// system clock.
func NewService(eng *engine.Engine, clock engine.Clock) *Service {
	if clock == nil {
		clock = engine.SystemClock{}
	}
	return &Service{eng: eng, clock: clock}
}

// MostBorrowed returns the topN books by cumulative borrow count.
func (s *Service) MostBorrowed(topN int) []model.Book {
	books := s.eng.ListBooks()
	sort.SliceStable(books, func(i, j int) bool {
		if books[i].BorrowCount != books[j].BorrowCount {
			return books[i].BorrowCount > books[j].BorrowCount
		}
		return books[i].ID < books[j].ID
	})
	if topN > 0 && len(books) > topN {
		books = books[:topN]
	}
	return books
}

// ActiveBorrowers returns the topN users by current open borrow count.
func (s *Service) ActiveBorrowers(topN int) []model.User {
	users := s.eng.ListUsers()
	sort.SliceStable(users, func(i, j int) bool {
		if users[i].CurrentBorrows != users[j].CurrentBorrows {
			return users[i].CurrentBorrows > users[j].CurrentBorrows
		}
		return users[i].ID < users[j].ID
	})
	if topN > 0 && len(users) > topN {
		users = users[:topN]
	}
	return users
}

// OverdueRow joins an overdue borrow with its book and borrower for display.
type OverdueRow struct {
	BorrowID    string    `json:"borrow_id"`
	BookTitle   string    `json:"book_title"`
	Borrower    string    `json:"borrower"`
	DueOn       time.Time `json:"due_on"`
	OverdueDays int64     `json:"overdue_days"`
}

// Overdue returns a row for every open borrow past its due date, sorted by
// borrow id. Borrows whose book or user record is missing are skipped.
func (s *Service) Overdue() []OverdueRow {
	now := s.clock.Now()
	var rows []OverdueRow
	for _, b := range s.eng.ListBorrows(engine.BorrowFilter{OverdueOnly: true}) {
		book, okB := s.eng.GetBook(b.BookID)
		user, okU := s.eng.GetUser(b.UserID)
		if !okB || !okU {
			continue
		}
		rows = append(rows, OverdueRow{
			BorrowID:    b.ID,
			BookTitle:   book.Title,
			Borrower:    user.Name,
			DueOn:       b.DueOn,
			OverdueDays: b.OverdueDays(now),
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].BorrowID < rows[j].BorrowID })
	return rows
}
