package sqlite

import (
	"context"
	"testing"
)

func TestToggleLogFlips(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ada@example.com")
	goal := createTestGoal(t, db, user.ID, "Read")

	checked, err := db.ToggleLog(ctx, user.ID, goal.ID, "2024-01-10")
	if err != nil {
		t.Fatalf("ToggleLog() error = %v", err)
	}
	if !checked {
		t.Error("first toggle returned checked=false, want true")
	}

	checked, err = db.ToggleLog(ctx, user.ID, goal.ID, "2024-01-10")
	if err != nil {
		t.Fatalf("second ToggleLog() error = %v", err)
	}
	if checked {
		t.Error("second toggle returned checked=true, want false")
	}

	count, _ := db.CountLogsForGoal(ctx, goal.ID)
	if count != 0 {
		t.Errorf("log count after double toggle = %d, want 0", count)
	}
}

func TestToggleLogPerDate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ada@example.com")
	goal := createTestGoal(t, db, user.ID, "Read")

	// Different dates are independent marks.
	if _, err := db.ToggleLog(ctx, user.ID, goal.ID, "2024-01-10"); err != nil {
		t.Fatalf("ToggleLog() error = %v", err)
	}
	if _, err := db.ToggleLog(ctx, user.ID, goal.ID, "2024-01-11"); err != nil {
		t.Fatalf("ToggleLog() error = %v", err)
	}

	count, _ := db.CountLogsForGoal(ctx, goal.ID)
	if count != 2 {
		t.Errorf("log count = %d, want 2", count)
	}
}

func TestListLogs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ada@example.com")
	other := createTestUser(t, db, "grace@example.com")

	mine := createTestGoal(t, db, user.ID, "Read")
	theirs := createTestGoal(t, db, other.ID, "Run")

	if _, err := db.ToggleLog(ctx, user.ID, mine.ID, "2024-01-11"); err != nil {
		t.Fatalf("ToggleLog() error = %v", err)
	}
	if _, err := db.ToggleLog(ctx, user.ID, mine.ID, "2024-01-10"); err != nil {
		t.Fatalf("ToggleLog() error = %v", err)
	}
	if _, err := db.ToggleLog(ctx, other.ID, theirs.ID, "2024-01-10"); err != nil {
		t.Fatalf("ToggleLog() error = %v", err)
	}

	logs, err := db.ListLogs(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListLogs() error = %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("log count = %d, want 2 (other user's logs excluded)", len(logs))
	}

	// Ordered by date ascending.
	if logs[0].CompletedAt != "2024-01-10" || logs[1].CompletedAt != "2024-01-11" {
		t.Errorf("order = %s, %s, want 2024-01-10, 2024-01-11",
			logs[0].CompletedAt, logs[1].CompletedAt)
	}
	if !logs[0].Status {
		t.Error("log status = false, want true")
	}
}

func TestListLogsEmpty(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ada@example.com")

	logs, err := db.ListLogs(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListLogs() error = %v", err)
	}
	if logs == nil {
		t.Error("ListLogs() returned nil, want empty slice (encodes as [] not null)")
	}
	if len(logs) != 0 {
		t.Errorf("log count = %d, want 0", len(logs))
	}
}
