package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblio/internal/model"
)

func TestAddUser_TierPrefixedIDs(t *testing.T) {
	eng, _ := newTestEngine(t)

	student := addUser(t, eng, "Amara", model.TierStudent)
	faculty := addUser(t, eng, "Nadia", model.TierFaculty)
	guest := addUser(t, eng, "Visitor", model.TierGuest)

	assert.Equal(t, "STU-001", student.ID)
	assert.Equal(t, "FCL-001", faculty.ID)
	assert.Equal(t, "GST-001", guest.ID)
	assert.Zero(t, student.CurrentBorrows)
	assert.Zero(t, student.UnpaidFines)
}

func TestAddUser_Validation(t *testing.T) {
	eng, _ := newTestEngine(t)

	_, err := eng.AddUser(context.Background(), UserParams{Name: " ", Tier: model.TierStudent})
	assert.Equal(t, CodeInvalidInput, CodeOf(err))

	_, err = eng.AddUser(context.Background(), UserParams{Name: "X", Tier: "MEMBER"})
	assert.Equal(t, CodeInvalidInput, CodeOf(err))

	_, err = eng.AddUser(context.Background(), UserParams{ID: "STU-001", Name: "X", Tier: model.TierStudent})
	require.NoError(t, err)
	_, err = eng.AddUser(context.Background(), UserParams{ID: "STU-001", Name: "Y", Tier: model.TierStudent})
	assert.Equal(t, CodeDuplicateID, CodeOf(err))
}

func TestUpdateUser(t *testing.T) {
	eng, _ := newTestEngine(t)
	user := addUser(t, eng, "Amara", model.TierStudent)
	book := addBook(t, eng, "T", "A")
	_, err := eng.BorrowBook(context.Background(), book.ID, user.ID)
	require.NoError(t, err)

	updated, err := eng.UpdateUser(context.Background(), UserParams{
		ID: user.ID, Name: "Amara Silva", Email: "amara@example.org", Tier: model.TierFaculty,
	})
	require.NoError(t, err)

	assert.Equal(t, "Amara Silva", updated.Name)
	assert.Equal(t, model.TierFaculty, updated.Tier)
	assert.Equal(t, 1, updated.CurrentBorrows, "counters are not caller-writable")

	_, err = eng.UpdateUser(context.Background(), UserParams{ID: "STU-404", Name: "X", Tier: model.TierStudent})
	assert.True(t, IsNotFound(err))
}

func TestDeleteUser_GuardedByOpenBorrows(t *testing.T) {
	eng, _ := newTestEngine(t)
	user := addUser(t, eng, "Amara", model.TierStudent)
	book := addBook(t, eng, "T", "A")
	borrow, err := eng.BorrowBook(context.Background(), book.ID, user.ID)
	require.NoError(t, err)

	assert.Equal(t, CodeHasOpenBorrows, CodeOf(eng.DeleteUser(context.Background(), user.ID)))

	_, err = eng.ReturnBook(context.Background(), borrow.ID)
	require.NoError(t, err)
	require.NoError(t, eng.DeleteUser(context.Background(), user.ID))
	_, ok := eng.GetUser(user.ID)
	assert.False(t, ok)
}

func TestPayFine(t *testing.T) {
	eng, _ := newTestEngine(t)
	user := addUser(t, eng, "Amara", model.TierStudent)

	err := eng.PayFine(context.Background(), user.ID, 0)
	assert.Equal(t, CodeInvalidInput, CodeOf(err))
	err = eng.PayFine(context.Background(), user.ID, -50)
	assert.Equal(t, CodeInvalidInput, CodeOf(err))
	assert.True(t, IsNotFound(eng.PayFine(context.Background(), "STU-404", 10)))
}

func TestPayFine_OverpaymentSettlesAtZero(t *testing.T) {
	eng, clock := newTestEngine(t)
	user := addUser(t, eng, "Late", model.TierStudent)
	book := addBook(t, eng, "T", "A")
	borrow, err := eng.BorrowBook(context.Background(), book.ID, user.ID)
	require.NoError(t, err)

	clock.Advance(16 * 24 * time.Hour)
	_, err = eng.ReturnBook(context.Background(), borrow.ID)
	require.NoError(t, err)
	member, _ := eng.GetUser(user.ID)
	require.Equal(t, int64(100), member.UnpaidFines)

	require.NoError(t, eng.PayFine(context.Background(), user.ID, 60))
	member, _ = eng.GetUser(user.ID)
	assert.Equal(t, int64(40), member.UnpaidFines)

	require.NoError(t, eng.PayFine(context.Background(), user.ID, 500))
	member, _ = eng.GetUser(user.ID)
	assert.Zero(t, member.UnpaidFines)
}
