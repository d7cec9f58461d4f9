package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"biblio/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestOpen_AppliesPragmas(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	assert.NoError(t, st.verifyPragma(ctx, "journal_mode", "wal"))
	assert.NoError(t, st.verifyPragma(ctx, "synchronous", "1")) // NORMAL
	assert.NoError(t, st.verifyPragma(ctx, "busy_timeout", "5000"))
	assert.NoError(t, st.verifyPragma(ctx, "user_version", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	st, err := Open(path)
	require.NoError(t, err)
	snap := model.Snapshot{Books: []model.Book{{ID: "BK-001", Title: "T", Author: "A", Status: model.StatusAvailable}}}
	require.NoError(t, st.SaveAll(context.Background(), snap))
	require.NoError(t, st.Close())

	st, err = Open(path)
	require.NoError(t, err)
	defer st.Close()

	loaded, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded.Books, 1)
	assert.Equal(t, "BK-001", loaded.Books[0].ID)
}

func TestLoadAll_EmptyDatabase(t *testing.T) {
	st := openTestStore(t)

	snap, err := st.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Books)
	assert.Empty(t, snap.Users)
	assert.Empty(t, snap.Borrows)
	assert.Empty(t, snap.Reservations)
	assert.Empty(t, snap.Notifications)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	borrowed := time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC)
	returned := borrowed.AddDate(0, 0, 19)
	notified := time.Date(2026, time.February, 21, 10, 30, 15, 250000000, time.UTC)

	snap := model.Snapshot{
		Books: []model.Book{
			{ID: "BK-001", Title: "Dune", Author: "Frank Herbert", Category: "Sci-Fi",
				ISBN: "978-0441172719", Status: model.StatusReserved, BorrowCount: 3,
				Tags: "classic", Edition: "1st"},
			{ID: "BK-002", Title: "Ubik", Author: "Philip K. Dick", Status: model.StatusAvailable},
		},
		Users: []model.User{
			{ID: "FCL-001", Name: "Nadia Fernando", Email: "nadia@example.org",
				Phone: "+94 77 123 4567", Tier: model.TierFaculty, CurrentBorrows: 1},
			{ID: "STU-001", Name: "Amara Silva", Tier: model.TierStudent, UnpaidFines: 250},
		},
		Borrows: []model.Borrow{
			{ID: "BR-0001", BookID: "BK-001", UserID: "STU-001",
				BorrowedOn: borrowed, DueOn: borrowed.AddDate(0, 0, 14),
				ReturnedOn: &returned, FinePaid: 250},
			{ID: "BR-0002", BookID: "BK-002", UserID: "FCL-001",
				BorrowedOn: borrowed, DueOn: borrowed.AddDate(0, 0, 30)},
		},
		Reservations: []model.Reservation{
			{ID: "RES-0001", BookID: "BK-001", UserID: "FCL-001",
				CreatedAt: borrowed.Add(3 * time.Hour), NotifiedAt: &notified,
				Status: model.ReservationNotified},
		},
		Notifications: []model.Notification{
			{ID: "NTF-0001", UserID: "STU-001", Type: model.NotifyOverdueAlert,
				Message: "Fine of LKR 250 for 5 days overdue on book: Dune",
				Date: returned, Read: true},
			{ID: "NTF-0002", UserID: "FCL-001", Type: model.NotifyReservationReady,
				Message: "Your reserved book 'Dune' is now available. Please collect within 48 hours.",
				Date: notified},
		},
	}

	require.NoError(t, st.SaveAll(ctx, snap))
	loaded, err := st.LoadAll(ctx)
	require.NoError(t, err)

	assert.Equal(t, snap, loaded)
}

func TestSaveAll_ReplacesPreviousSnapshot(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveAll(ctx, model.Snapshot{
		Books: []model.Book{
			{ID: "BK-001", Title: "A", Author: "X", Status: model.StatusAvailable},
			{ID: "BK-002", Title: "B", Author: "Y", Status: model.StatusAvailable},
		},
	}))
	require.NoError(t, st.SaveAll(ctx, model.Snapshot{
		Books: []model.Book{
			{ID: "BK-002", Title: "B revised", Author: "Y", Status: model.StatusBorrowed, BorrowCount: 1},
		},
	}))

	loaded, err := st.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Books, 1)
	assert.Equal(t, "BK-002", loaded.Books[0].ID)
	assert.Equal(t, "B revised", loaded.Books[0].Title)
	assert.Equal(t, 1, loaded.Books[0].BorrowCount)
}

func TestSaveLoad_NonUTCTimesNormalized(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	colombo := time.FixedZone("IST", 5*3600+1800)
	local := time.Date(2026, time.March, 2, 14, 30, 0, 0, colombo)

	require.NoError(t, st.SaveAll(ctx, model.Snapshot{
		Reservations: []model.Reservation{
			{ID: "RES-0001", BookID: "BK-001", UserID: "STU-001",
				CreatedAt: local, Status: model.ReservationPending},
		},
	}))

	loaded, err := st.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded.Reservations, 1)
	got := loaded.Reservations[0].CreatedAt
	assert.Equal(t, time.UTC, got.Location())
	assert.True(t, got.Equal(local))
}
