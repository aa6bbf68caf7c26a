package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/nhasan/journally/internal/model"
	"github.com/nhasan/journally/internal/repository"
)

// Compile-time check that *DB implements repository.LogRepository.
var _ repository.LogRepository = (*DB)(nil)

// ToggleLog atomically flips the completion mark for (goalID, date).
//
// The whole check-then-act runs inside one transaction: DELETE the mark for
// this goal and day; if nothing was deleted, INSERT one. Two toggles racing
// on the same (goal, date) serialize on SQLite's write lock, and the
// UNIQUE(goal_id, completed_at) index guarantees a duplicate can never land
// even if they didn't.
func (db *DB) ToggleLog(ctx context.Context, userID, goalID, date string) (bool, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning toggle: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM goal_logs WHERE goal_id = ? AND completed_at = ? AND user_id = ?`,
		goalID, date, userID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: toggling log (delete): %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	checked := false
	if rowsAffected == 0 {
		// No mark existed — the user is checking the habit off.
		_, err = tx.ExecContext(ctx,
			`INSERT INTO goal_logs (id, user_id, goal_id, completed_at, status, created_at)
			 VALUES (?, ?, ?, ?, 1, ?)`,
			xid.New().String(), userID, goalID, date, time.Now(),
		)
		if err != nil {
			return false, fmt.Errorf("sqlite: toggling log (insert): %w", err)
		}
		checked = true
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: committing toggle: %w", err)
	}

	return checked, nil
}

// ListLogs returns all of a user's completion marks, for statistics. The
// whole set is small (one row per habit per completed day), so no
// pagination.
func (db *DB) ListLogs(ctx context.Context, userID string) ([]model.GoalLog, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, goal_id, completed_at, status, created_at
		 FROM goal_logs
		 WHERE user_id = ?
		 ORDER BY completed_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing logs: %w", err)
	}
	defer rows.Close()

	logs := []model.GoalLog{}
	for rows.Next() {
		var l model.GoalLog
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.GoalID, &l.CompletedAt, &l.Status, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning log row: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating logs: %w", err)
	}

	return logs, nil
}

// CountLogsForGoal returns how many completion marks a goal has. Used by
// tests and the hard-delete cascade check.
func (db *DB) CountLogsForGoal(ctx context.Context, goalID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM goal_logs WHERE goal_id = ?`, goalID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting logs for goal %s: %w", goalID, err)
	}
	return count, nil
}
