package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"biblio/internal/model"
)

func decodeTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

func decodeTimePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := decodeTime(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// LoadAll reads the stored snapshot. An empty database yields an empty
// snapshot, not an error; first run needs no seeding step.
func (s *Store) LoadAll(ctx context.Context) (model.Snapshot, error) {
	var snap model.Snapshot

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, author, category, isbn, status, borrow_count, tags, edition
		FROM books ORDER BY id
	`)
	if err != nil {
		return snap, fmt.Errorf("load books: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b model.Book
		var status string
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Category, &b.ISBN,
			&status, &b.BorrowCount, &b.Tags, &b.Edition); err != nil {
			return snap, fmt.Errorf("load books: scan: %w", err)
		}
		b.Status = model.AvailabilityStatus(status)
		snap.Books = append(snap.Books, b)
	}
	if err := rows.Err(); err != nil {
		return snap, fmt.Errorf("load books: %w", err)
	}

	urows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, tier, current_borrows, unpaid_fines
		FROM users ORDER BY id
	`)
	if err != nil {
		return snap, fmt.Errorf("load users: %w", err)
	}
	defer urows.Close()
	for urows.Next() {
		var u model.User
		var tier string
		if err := urows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &tier,
			&u.CurrentBorrows, &u.UnpaidFines); err != nil {
			return snap, fmt.Errorf("load users: scan: %w", err)
		}
		u.Tier = model.MembershipTier(tier)
		snap.Users = append(snap.Users, u)
	}
	if err := urows.Err(); err != nil {
		return snap, fmt.Errorf("load users: %w", err)
	}

	brows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, user_id, borrowed_on, due_on, returned_on, fine_paid
		FROM borrows ORDER BY id
	`)
	if err != nil {
		return snap, fmt.Errorf("load borrows: %w", err)
	}
	defer brows.Close()
	for brows.Next() {
		var b model.Borrow
		var borrowedOn, dueOn string
		var returnedOn sql.NullString
		if err := brows.Scan(&b.ID, &b.BookID, &b.UserID, &borrowedOn, &dueOn,
			&returnedOn, &b.FinePaid); err != nil {
			return snap, fmt.Errorf("load borrows: scan: %w", err)
		}
		if b.BorrowedOn, err = decodeTime(borrowedOn); err != nil {
			return snap, fmt.Errorf("load borrows: %s borrowed_on: %w", b.ID, err)
		}
		if b.DueOn, err = decodeTime(dueOn); err != nil {
			return snap, fmt.Errorf("load borrows: %s due_on: %w", b.ID, err)
		}
		if b.ReturnedOn, err = decodeTimePtr(returnedOn); err != nil {
			return snap, fmt.Errorf("load borrows: %s returned_on: %w", b.ID, err)
		}
		snap.Borrows = append(snap.Borrows, b)
	}
	if err := brows.Err(); err != nil {
		return snap, fmt.Errorf("load borrows: %w", err)
	}

	rrows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, user_id, created_at, notified_at, status
		FROM reservations ORDER BY id
	`)
	if err != nil {
		return snap, fmt.Errorf("load reservations: %w", err)
	}
	defer rrows.Close()
	for rrows.Next() {
		var r model.Reservation
		var createdAt, status string
		var notifiedAt sql.NullString
		if err := rrows.Scan(&r.ID, &r.BookID, &r.UserID, &createdAt, &notifiedAt, &status); err != nil {
			return snap, fmt.Errorf("load reservations: scan: %w", err)
		}
		if r.CreatedAt, err = decodeTime(createdAt); err != nil {
			return snap, fmt.Errorf("load reservations: %s created_at: %w", r.ID, err)
		}
		if r.NotifiedAt, err = decodeTimePtr(notifiedAt); err != nil {
			return snap, fmt.Errorf("load reservations: %s notified_at: %w", r.ID, err)
		}
		r.Status = model.ReservationStatus(status)
		snap.Reservations = append(snap.Reservations, r)
	}
	if err := rrows.Err(); err != nil {
		return snap, fmt.Errorf("load reservations: %w", err)
	}

	nrows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, message, date, read
		FROM notifications ORDER BY id
	`)
	if err != nil {
		return snap, fmt.Errorf("load notifications: %w", err)
	}
	defer nrows.Close()
	for nrows.Next() {
		var n model.Notification
		var typ, date string
		if err := nrows.Scan(&n.ID, &n.UserID, &typ, &n.Message, &date, &n.Read); err != nil {
			return snap, fmt.Errorf("load notifications: scan: %w", err)
		}
		if n.Date, err = decodeTime(date); err != nil {
			return snap, fmt.Errorf("load notifications: %s date: %w", n.ID, err)
		}
		n.Type = model.NotificationType(typ)
		snap.Notifications = append(snap.Notifications, n)
	}
	if err := nrows.Err(); err != nil {
		return snap, fmt.Errorf("load notifications: %w", err)
	}

	return snap, nil
}
