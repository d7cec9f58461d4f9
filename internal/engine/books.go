package engine

import (
	"context"
	"log/slog"
	"strings"

	"biblio/internal/model"
)

// BookParams carries the caller-supplied fields for a new book. ID is
// optional: the UI pre-fills it from PeekBookID and submits it back, in
// which case it must still be unused; left empty the engine allocates.
type BookParams struct {
	ID       string
	Title    string
	Author   string
	Category string
	ISBN     string
	Tags     string
	Edition  string
}

// AddBook registers a new book, initially available.
func (e *Engine) AddBook(ctx context.Context, p BookParams) (model.Book, error) {
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Author) == "" {
		return model.Book{}, failure(CodeInvalidInput, "title and author are required", p.ID)
	}

	id := p.ID
	if id == "" {
		id = e.ids.NextBookID()
	} else if _, exists := e.books[id]; exists {
		return model.Book{}, failure(CodeDuplicateID, "book id already in use", id)
	}

	token := e.tokens.Generate()
	book := model.Book{
		ID:       id,
		Title:    p.Title,
		Author:   p.Author,
		Category: p.Category,
		ISBN:     p.ISBN,
		Status:   model.StatusAvailable,
		Tags:     p.Tags,
		Edition:  p.Edition,
	}
	e.books[id] = &book

	slog.Info("book added", "token", token, "book", id, "title", p.Title)

	result := book
	return result, e.commit(ctx, "add book", token)
}

// UpdateBook replaces a book's descriptive fields. Availability state and
// the cumulative borrow count are owned by the lending transitions and are
// not touched here.
func (e *Engine) UpdateBook(ctx context.Context, p BookParams) (model.Book, error) {
	book, ok := e.books[p.ID]
	if !ok {
		return model.Book{}, notFound("book", p.ID)
	}
	if strings.TrimSpace(p.Title) == "" || strings.TrimSpace(p.Author) == "" {
		return model.Book{}, failure(CodeInvalidInput, "title and author are required", p.ID)
	}

	token := e.tokens.Generate()
	book.Title = p.Title
	book.Author = p.Author
	book.Category = p.Category
	book.ISBN = p.ISBN
	book.Tags = p.Tags
	book.Edition = p.Edition

	slog.Info("book updated", "token", token, "book", p.ID)

	result := *book
	return result, e.commit(ctx, "update book", token)
}

// DeleteBook removes a book from the catalog. Rejected while the book has an
// open borrow or a pending/notified reservation; closed history records for
// it are kept.
func (e *Engine) DeleteBook(ctx context.Context, bookID string) error {
	if _, ok := e.books[bookID]; !ok {
		return notFound("book", bookID)
	}
	for _, b := range e.borrows {
		if b.BookID == bookID && b.Open() {
			return failure(CodeBookInUse, "book has an open borrow", bookID)
		}
	}
	for _, r := range e.reservations {
		if r.BookID == bookID &&
			(r.Status == model.ReservationPending || r.Status == model.ReservationNotified) {
			return failure(CodeBookInUse, "book has a live reservation", bookID)
		}
	}

	token := e.tokens.Generate()
	delete(e.books, bookID)

	slog.Info("book deleted", "token", token, "book", bookID)
	return e.commit(ctx, "delete book", token)
}
