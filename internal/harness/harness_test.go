package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestScenario(t *testing.T, name string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name+".yaml"))
	require.NoError(t, err)
	return scenario
}

func TestRun_BorrowReturnCycle(t *testing.T) {
	scenario := loadTestScenario(t, "borrow-return-cycle")

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_OverdueFine(t *testing.T) {
	scenario := loadTestScenario(t, "overdue-fine")

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_HoldExpiry(t *testing.T) {
	scenario := loadTestScenario(t, "hold-expiry")

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_ExpectedFailureCode(t *testing.T) {
	scenario := &Scenario{
		Name:        "guest-limit",
		Description: "A guest hits the two-book borrow limit on the third borrow",
		Start:       "2026-04-06T09:00:00Z",
		Steps: []Step{
			{Op: "add_book", Args: map[string]string{"title": "A", "author": "X"}},
			{Op: "add_book", Args: map[string]string{"title": "B", "author": "Y"}},
			{Op: "add_book", Args: map[string]string{"title": "C", "author": "Z"}},
			{Op: "add_user", Args: map[string]string{"name": "Visitor", "tier": "GUEST"}},
			{Op: "borrow", Args: map[string]string{"book": "BK-001", "user": "GST-001"}},
			{Op: "borrow", Args: map[string]string{"book": "BK-002", "user": "GST-001"}},
			{Op: "borrow", Args: map[string]string{"book": "BK-003", "user": "GST-001"}, Expect: "LIMIT_EXCEEDED"},
		},
		Checks: []Check{
			{Kind: CheckBookStatus, Book: "BK-003", Status: "AVAILABLE"},
			{Kind: CheckUserState, User: "GST-001", Borrows: intPtr(2)},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
	require.Len(t, result.Transcript, 7)
	assert.Equal(t, "LIMIT_EXCEEDED", result.Transcript[6].Outcome)
}

func TestRun_UnexpectedFailureFailsScenario(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing-book",
		Description: "Borrowing an unknown book fails the scenario",
		Start:       "2026-04-06T09:00:00Z",
		Steps: []Step{
			{Op: "add_user", Args: map[string]string{"name": "Visitor", "tier": "GUEST"}},
			{Op: "borrow", Args: map[string]string{"book": "BK-404", "user": "GST-001"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.NotEmpty(t, result.Errors)
	assert.Equal(t, "NOT_FOUND", result.Transcript[1].Outcome)
}

func TestRun_QueueOrderCheck(t *testing.T) {
	scenario := &Scenario{
		Name:        "fifo-queue",
		Description: "Reservations queue in arrival order",
		Start:       "2026-04-06T09:00:00Z",
		Steps: []Step{
			{Op: "add_book", Args: map[string]string{"title": "A", "author": "X"}},
			{Op: "add_user", Args: map[string]string{"name": "First", "tier": "STUDENT"}},
			{Op: "add_user", Args: map[string]string{"name": "Second", "tier": "FACULTY"}},
			{Op: "add_user", Args: map[string]string{"name": "Third", "tier": "GUEST"}},
			{Op: "borrow", Args: map[string]string{"book": "BK-001", "user": "STU-001"}},
			{Advance: "1h"},
			{Op: "reserve", Args: map[string]string{"book": "BK-001", "user": "FCL-001"}},
			{Advance: "1h"},
			{Op: "reserve", Args: map[string]string{"book": "BK-001", "user": "GST-001"}},
		},
		Checks: []Check{
			{Kind: CheckQueueOrder, Book: "BK-001", Users: []string{"FCL-001", "GST-001"}},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func intPtr(v int) *int { return &v }
