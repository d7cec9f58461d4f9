package store

import (
	"context"
	"fmt"
	"time"

	"biblio/internal/model"
)

// Timestamps are stored as RFC 3339 text, normalized to UTC so a round trip
// compares equal by value.
const timeLayout = time.RFC3339Nano

func encodeTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func encodeTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

// SaveAll replaces the stored snapshot with snap, atomically: every table is
// cleared and rewritten inside one transaction, so a reader never observes a
// partially applied snapshot and a crash leaves the previous one intact.
func (s *Store) SaveAll(ctx context.Context, snap model.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, table := range []string{"books", "users", "borrows", "reservations", "notifications"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("save snapshot: clear %s: %w", table, err)
		}
	}

	for _, b := range snap.Books {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO books (id, title, author, category, isbn, status, borrow_count, tags, edition)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, b.ID, b.Title, b.Author, b.Category, b.ISBN, string(b.Status), b.BorrowCount, b.Tags, b.Edition)
		if err != nil {
			return fmt.Errorf("save snapshot: book %s: %w", b.ID, err)
		}
	}

	for _, u := range snap.Users {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO users (id, name, email, phone, tier, current_borrows, unpaid_fines)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, u.ID, u.Name, u.Email, u.Phone, string(u.Tier), u.CurrentBorrows, u.UnpaidFines)
		if err != nil {
			return fmt.Errorf("save snapshot: user %s: %w", u.ID, err)
		}
	}

	for _, b := range snap.Borrows {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO borrows (id, book_id, user_id, borrowed_on, due_on, returned_on, fine_paid)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, b.ID, b.BookID, b.UserID, encodeTime(b.BorrowedOn), encodeTime(b.DueOn),
			encodeTimePtr(b.ReturnedOn), b.FinePaid)
		if err != nil {
			return fmt.Errorf("save snapshot: borrow %s: %w", b.ID, err)
		}
	}

	for _, r := range snap.Reservations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reservations (id, book_id, user_id, created_at, notified_at, status)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.ID, r.BookID, r.UserID, encodeTime(r.CreatedAt), encodeTimePtr(r.NotifiedAt), string(r.Status))
		if err != nil {
			return fmt.Errorf("save snapshot: reservation %s: %w", r.ID, err)
		}
	}

	for _, n := range snap.Notifications {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notifications (id, user_id, type, message, date, read)
			VALUES (?, ?, ?, ?, ?, ?)
		`, n.ID, n.UserID, string(n.Type), n.Message, encodeTime(n.Date), n.Read)
		if err != nil {
			return fmt.Errorf("save snapshot: notification %s: %w", n.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save snapshot: commit: %w", err)
	}
	return nil
}
