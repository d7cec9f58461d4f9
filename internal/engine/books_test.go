package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblio/internal/model"
)

func TestAddBook(t *testing.T) {
	eng, _ := newTestEngine(t)

	book, err := eng.AddBook(context.Background(), BookParams{
		Title:    "Dune",
		Author:   "Frank Herbert",
		Category: "Sci-Fi",
		ISBN:     "978-0441172719",
		Tags:     "classic,desert",
		Edition:  "1st",
	})
	require.NoError(t, err)

	assert.Equal(t, "BK-001", book.ID)
	assert.Equal(t, model.StatusAvailable, book.Status)
	assert.Zero(t, book.BorrowCount)
	assert.Equal(t, "classic,desert", book.Tags)
}

func TestAddBook_Validation(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.AddBook(context.Background(), BookParams{Title: "  ", Author: "X"})
	assert.Equal(t, CodeInvalidInput, CodeOf(err))

	_, err = eng.AddBook(context.Background(), BookParams{Title: "T", Author: ""})
	assert.Equal(t, CodeInvalidInput, CodeOf(err))
}

func TestAddBook_ExplicitID(t *testing.T) {
	eng, _ := newTestEngine(t)

	book, err := eng.AddBook(context.Background(), BookParams{ID: "BK-050", Title: "T", Author: "A"})
	require.NoError(t, err)
	assert.Equal(t, "BK-050", book.ID)

	_, err = eng.AddBook(context.Background(), BookParams{ID: "BK-050", Title: "T2", Author: "A2"})
	assert.Equal(t, CodeDuplicateID, CodeOf(err))
}

func TestUpdateBook_MetadataOnly(t *testing.T) {
	eng, _ := newTestEngine(t)
	book := addBook(t, eng, "Old Title", "Old Author")
	user := addUser(t, eng, "U", model.TierStudent)
	_, err := eng.BorrowBook(context.Background(), book.ID, user.ID)
	require.NoError(t, err)

	updated, err := eng.UpdateBook(context.Background(), BookParams{
		ID: book.ID, Title: "New Title", Author: "New Author", Category: "Drama",
	})
	require.NoError(t, err)

	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, model.StatusBorrowed, updated.Status, "update leaves lending state alone")
	assert.Equal(t, 1, updated.BorrowCount)
}

func TestUpdateBook_NotFound(t *testing.T) {
	eng, _ := newTestEngine(t)
	_, err := eng.UpdateBook(context.Background(), BookParams{ID: "BK-404", Title: "T", Author: "A"})
	assert.True(t, IsNotFound(err))
}

func TestDeleteBook(t *testing.T) {
	eng, _ := newTestEngine(t)
	book := addBook(t, eng, "T", "A")

	require.NoError(t, eng.DeleteBook(context.Background(), book.ID))
	_, ok := eng.GetBook(book.ID)
	assert.False(t, ok)

	assert.True(t, IsNotFound(eng.DeleteBook(context.Background(), book.ID)))
}

func TestDeleteBook_GuardedWhileInUse(t *testing.T) {
	eng, _ := newTestEngine(t)
	book := addBook(t, eng, "T", "A")
	borrower := addUser(t, eng, "Borrower", model.TierStudent)
	waiter := addUser(t, eng, "Waiter", model.TierFaculty)

	borrow, err := eng.BorrowBook(context.Background(), book.ID, borrower.ID)
	require.NoError(t, err)
	assert.Equal(t, CodeBookInUse, CodeOf(eng.DeleteBook(context.Background(), book.ID)))

	_, err = eng.ReserveBook(context.Background(), book.ID, waiter.ID)
	require.NoError(t, err)
	_, err = eng.ReturnBook(context.Background(), borrow.ID)
	require.NoError(t, err)

	// Returned, but the promoted hold still blocks deletion.
	assert.Equal(t, CodeBookInUse, CodeOf(eng.DeleteBook(context.Background(), book.ID)))

	// Once the hold is consumed the closed history no longer blocks.
	_, err = eng.BorrowBook(context.Background(), book.ID, waiter.ID)
	require.NoError(t, err)
	borrows := eng.ListBorrows(BorrowFilter{UserID: waiter.ID, OpenOnly: true})
	require.Len(t, borrows, 1)
	_, err = eng.ReturnBook(context.Background(), borrows[0].ID)
	require.NoError(t, err)

	require.NoError(t, eng.DeleteBook(context.Background(), book.ID))
}
