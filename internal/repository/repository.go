// Package repository defines the storage interfaces consumed by the service
// layer. The sqlite subpackage implements them; tests substitute in-memory
// mocks. Services depend on these interfaces, never on the concrete DB.
package repository

import (
	"context"

	"github.com/nhasan/journally/internal/model"
)

// UserRepository manages account records.
type UserRepository interface {
	// Create inserts a new user. Returns apperror.ErrConflict if the email
	// is already registered.
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	// GetByEmail returns apperror.ErrNotFound when no account matches;
	// callers translate that to an unauthorized error so login failures
	// don't reveal which emails exist.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHub inserts or updates a user keyed by GitHub ID, populating
	// user.ID with the canonical internal ID.
	UpsertGitHub(ctx context.Context, user *model.User) error
	// UpdateProfile persists first/last name and the theme preference.
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// GoalRepository manages habit records. All lookups are scoped by userID so
// one user can never read or mutate another user's goals.
type GoalRepository interface {
	CreateGoal(ctx context.Context, goal *model.Goal) error
	GetGoal(ctx context.Context, userID, id string) (*model.Goal, error)
	// ListActiveGoals returns non-deleted goals, newest first.
	ListActiveGoals(ctx context.Context, userID string) ([]model.Goal, error)
	// ListAllGoals returns every goal regardless of deletion, for history
	// and statistics views.
	ListAllGoals(ctx context.Context, userID string) ([]model.Goal, error)
	UpdateGoalTitle(ctx context.Context, userID, id, title string) error
	// SoftDeleteGoal stamps deleted_at; RestoreGoal clears it.
	SoftDeleteGoal(ctx context.Context, userID, id string) error
	RestoreGoal(ctx context.Context, userID, id string) error
	// HardDeleteGoal removes the goal and all its completion marks in one
	// transaction.
	HardDeleteGoal(ctx context.Context, userID, id string) error
}

// LogRepository manages completion marks.
type LogRepository interface {
	// ToggleLog atomically flips the mark for (goalID, date): if a mark
	// exists it is deleted (checked=false), otherwise one is inserted
	// (checked=true). Runs in a single transaction so concurrent toggles
	// cannot create duplicates.
	ToggleLog(ctx context.Context, userID, goalID, date string) (checked bool, err error)
	ListLogs(ctx context.Context, userID string) ([]model.GoalLog, error)
	CountLogsForGoal(ctx context.Context, goalID string) (int, error)
}

// GroupRepository manages circles and their memberships.
type GroupRepository interface {
	// CreateGroup inserts the group and the creator's membership in one
	// transaction. Returns apperror.ErrConflict if the join code is taken.
	CreateGroup(ctx context.Context, group *model.Group) error
	GetGroup(ctx context.Context, id string) (*model.Group, error)
	// GetGroupByCode matches the join code exactly; callers normalize case.
	GetGroupByCode(ctx context.Context, code string) (*model.Group, error)
	// ListGroupsForUser returns the circles the user belongs to, annotated
	// with member counts.
	ListGroupsForUser(ctx context.Context, userID string) ([]model.GroupSummary, error)
	// AddMember is idempotent: joining a circle twice is a no-op success.
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	// DeleteGroup removes the group and its memberships; only ownerID may
	// do so (the delete is filtered by created_by).
	DeleteGroup(ctx context.Context, id, ownerID string) error
	// ListMembersWithDailyStats returns every member with their active
	// habit count and completion count for the given date.
	ListMembersWithDailyStats(ctx context.Context, groupID, date string) ([]model.GroupMember, error)
}
