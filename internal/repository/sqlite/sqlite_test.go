package sqlite

import (
	"context"
	"testing"

	"github.com/nhasan/journally/internal/model"
)

// newTestDB opens an in-memory database with the full schema. Each test
// gets its own isolated instance; Close is registered via t.Cleanup.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// createTestUser inserts an email/password account and fails the test on
// error. Most other tables have a foreign key on users, so nearly every
// test starts here.
func createTestUser(t *testing.T, db *DB, email string) *model.User {
	t.Helper()

	user := &model.User{
		Email:        email,
		PasswordHash: "$2a$04$fakehashfortesting",
		FirstName:    "Test",
	}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user %s: %v", email, err)
	}
	return user
}

// createTestGoal inserts a goal for the user and fails the test on error.
func createTestGoal(t *testing.T, db *DB, userID, title string) *model.Goal {
	t.Helper()

	goal := &model.Goal{UserID: userID, Title: title}
	if err := db.CreateGoal(context.Background(), goal); err != nil {
		t.Fatalf("failed to create test goal %q: %v", title, err)
	}
	return goal
}
