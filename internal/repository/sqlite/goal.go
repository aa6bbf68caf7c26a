package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/nhasan/journally/internal/apperror"
	"github.com/nhasan/journally/internal/model"
	"github.com/nhasan/journally/internal/repository"
)

// Compile-time check that *DB implements repository.GoalRepository.
var _ repository.GoalRepository = (*DB)(nil)

const goalColumns = `id, user_id, title, created_at, updated_at, deleted_at`

// CreateGoal inserts a new habit. The ID and timestamps are generated here;
// the caller's struct is updated in place.
func (db *DB) CreateGoal(ctx context.Context, goal *model.Goal) error {
	goal.ID = xid.New().String()

	now := time.Now()
	goal.CreatedAt = now
	goal.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO goals (id, user_id, title, created_at, updated_at, deleted_at)
		 VALUES (?, ?, ?, ?, ?, NULL)`,
		goal.ID,
		goal.UserID,
		goal.Title,
		goal.CreatedAt,
		goal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating goal: %w", err)
	}

	return nil
}

// GetGoal retrieves a single goal scoped to its owner. A goal belonging to
// a different user is indistinguishable from a missing one.
func (db *DB) GetGoal(ctx context.Context, userID, id string) (*model.Goal, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+goalColumns+` FROM goals WHERE id = ? AND user_id = ?`,
		id, userID,
	)

	goal, err := scanGoal(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("goal", id)
		}
		return nil, fmt.Errorf("sqlite: getting goal %s: %w", id, err)
	}

	return goal, nil
}

// ListActiveGoals returns the user's non-deleted goals, newest first —
// the daily checklist ordering.
func (db *DB) ListActiveGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	return db.listGoals(ctx,
		`SELECT `+goalColumns+` FROM goals
		 WHERE user_id = ? AND deleted_at IS NULL
		 ORDER BY created_at DESC`,
		userID,
	)
}

// ListAllGoals returns every goal including archived ones, for the history
// view and for statistics (archived goals keep their past contribution).
func (db *DB) ListAllGoals(ctx context.Context, userID string) ([]model.Goal, error) {
	return db.listGoals(ctx,
		`SELECT `+goalColumns+` FROM goals
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
}

func (db *DB) listGoals(ctx context.Context, query string, args ...any) ([]model.Goal, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing goals: %w", err)
	}
	defer rows.Close()

	var goals []model.Goal
	for rows.Next() {
		goal, err := scanGoal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning goal row: %w", err)
		}
		goals = append(goals, *goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating goals: %w", err)
	}

	if goals == nil {
		goals = []model.Goal{}
	}
	return goals, nil
}

// scanGoal reads one goal row, converting the nullable deleted_at column.
func scanGoal(scan func(...any) error) (*model.Goal, error) {
	var (
		g         model.Goal
		deletedAt sql.NullTime
	)
	if err := scan(&g.ID, &g.UserID, &g.Title, &g.CreatedAt, &g.UpdatedAt, &deletedAt); err != nil {
		return nil, err
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		g.DeletedAt = &t
	}
	return &g, nil
}

// UpdateGoalTitle renames a goal.
func (db *DB) UpdateGoalTitle(ctx context.Context, userID, id, title string) error {
	return db.execGoalUpdate(ctx, id,
		`UPDATE goals SET title = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		title, time.Now(), id, userID,
	)
}

// SoftDeleteGoal archives a goal by stamping deleted_at. The timestamp
// matters: statistics count the goal as active up to this moment, not as
// never having existed.
func (db *DB) SoftDeleteGoal(ctx context.Context, userID, id string) error {
	now := time.Now()
	return db.execGoalUpdate(ctx, id,
		`UPDATE goals SET deleted_at = ?, updated_at = ? WHERE id = ? AND user_id = ? AND deleted_at IS NULL`,
		now, now, id, userID,
	)
}

// RestoreGoal brings an archived goal back to the active list.
func (db *DB) RestoreGoal(ctx context.Context, userID, id string) error {
	return db.execGoalUpdate(ctx, id,
		`UPDATE goals SET deleted_at = NULL, updated_at = ? WHERE id = ? AND user_id = ?`,
		time.Now(), id, userID,
	)
}

func (db *DB) execGoalUpdate(ctx context.Context, id, query string, args ...any) error {
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: updating goal %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("goal", id)
	}

	return nil
}

// HardDeleteGoal permanently removes a goal and every completion mark it
// ever had, in one transaction. There is no undo.
func (db *DB) HardDeleteGoal(ctx context.Context, userID, id string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning hard delete: %w", err)
	}
	defer tx.Rollback()

	// Delete the logs explicitly rather than leaning on the FK cascade —
	// the ON DELETE CASCADE is a backstop, this keeps the intent visible.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM goal_logs WHERE goal_id = ?`, id,
	); err != nil {
		return fmt.Errorf("sqlite: deleting logs for goal %s: %w", id, err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM goals WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting goal %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("goal", id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing hard delete: %w", err)
	}

	return nil
}
