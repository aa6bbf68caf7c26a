package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/nhasan/journally/internal/apperror"
	"github.com/nhasan/journally/internal/model"
	"github.com/nhasan/journally/internal/repository"
)

// Compile-time check that *DB implements repository.GroupRepository.
var _ repository.GroupRepository = (*DB)(nil)

// CreateGroup inserts the group and the creator's membership in one
// transaction, so a circle can never exist without at least its owner as a
// member. Returns apperror.ErrConflict if the join code is already taken
// (the service regenerates and retries).
func (db *DB) CreateGroup(ctx context.Context, group *model.Group) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning group create: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM groups WHERE join_code = ?`, group.JoinCode,
	).Scan(&existing)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("sqlite: checking join code: %w", err)
	}
	if existing != "" {
		return apperror.Conflict("join code", group.JoinCode)
	}

	group.ID = xid.New().String()
	group.CreatedAt = time.Now()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO groups (id, name, created_by, join_code, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		group.ID, group.Name, group.CreatedBy, group.JoinCode, group.CreatedAt,
	); err != nil {
		return fmt.Errorf("sqlite: inserting group: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)`,
		group.ID, group.CreatedBy, group.CreatedAt,
	); err != nil {
		return fmt.Errorf("sqlite: inserting creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing group create: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by ID.
func (db *DB) GetGroup(ctx context.Context, id string) (*model.Group, error) {
	return db.getGroup(ctx, `WHERE id = ?`, id)
}

// GetGroupByCode retrieves a group by its exact join code. Callers
// normalize the code to uppercase first.
func (db *DB) GetGroupByCode(ctx context.Context, code string) (*model.Group, error) {
	return db.getGroup(ctx, `WHERE join_code = ?`, code)
}

func (db *DB) getGroup(ctx context.Context, where string, arg any) (*model.Group, error) {
	var g model.Group
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_by, join_code, created_at FROM groups `+where,
		arg,
	).Scan(&g.ID, &g.Name, &g.CreatedBy, &g.JoinCode, &g.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("group", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting group %v: %w", arg, err)
	}
	return &g, nil
}

// ListGroupsForUser returns the circles the user belongs to, newest first,
// each annotated with its member count.
func (db *DB) ListGroupsForUser(ctx context.Context, userID string) ([]model.GroupSummary, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT g.id, g.name, g.created_by, g.join_code, g.created_at,
		        (SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id)
		 FROM group_members gm
		 JOIN groups g ON g.id = gm.group_id
		 WHERE gm.user_id = ?
		 ORDER BY g.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing groups: %w", err)
	}
	defer rows.Close()

	groups := []model.GroupSummary{}
	for rows.Next() {
		var s model.GroupSummary
		if err := rows.Scan(
			&s.ID, &s.Name, &s.CreatedBy, &s.JoinCode, &s.CreatedAt, &s.MemberCount,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning group row: %w", err)
		}
		s.IsOwner = s.CreatedBy == userID
		groups = append(groups, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating groups: %w", err)
	}

	return groups, nil
}

// AddMember joins a user to a group. INSERT OR IGNORE against the composite
// primary key makes rejoining idempotent: a duplicate join is a no-op
// success, never a constraint error.
func (db *DB) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO group_members (group_id, user_id, joined_at)
		 VALUES (?, ?, ?)`,
		groupID, userID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding member to group %s: %w", groupID, err)
	}
	return nil
}

// RemoveMember removes the user's own membership row.
func (db *DB) RemoveMember(ctx context.Context, groupID, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: removing member from group %s: %w", groupID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("membership", groupID)
	}

	return nil
}

// IsMember reports whether the user belongs to the group.
func (db *DB) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking membership: %w", err)
	}
	return count > 0, nil
}

// DeleteGroup removes a group. Only the creator may delete it; anyone else
// gets ErrForbidden and the group stays. Memberships go with it via the
// ON DELETE CASCADE on group_members.
func (db *DB) DeleteGroup(ctx context.Context, id, ownerID string) error {
	var createdBy string
	err := db.conn.QueryRowContext(ctx,
		`SELECT created_by FROM groups WHERE id = ?`, id,
	).Scan(&createdBy)
	if err != nil {
		if err == sql.ErrNoRows {
			return apperror.NotFound("group", id)
		}
		return fmt.Errorf("sqlite: getting group %s: %w", id, err)
	}
	if createdBy != ownerID {
		return apperror.Forbidden("only the group owner can delete it")
	}

	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM groups WHERE id = ? AND created_by = ?`, id, ownerID,
	); err != nil {
		return fmt.Errorf("sqlite: deleting group %s: %w", id, err)
	}

	return nil
}

// ListMembersWithDailyStats returns every member of a group with their
// currently-active habit count and their completion-mark count for the
// given date. The leaderboard math (ratio, ordering) lives in the service.
func (db *DB) ListMembersWithDailyStats(ctx context.Context, groupID, date string) ([]model.GroupMember, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT u.id, u.email, u.first_name, u.last_name, u.avatar_url,
		        (SELECT COUNT(*) FROM goals g
		          WHERE g.user_id = u.id AND g.deleted_at IS NULL),
		        (SELECT COUNT(*) FROM goal_logs l
		          WHERE l.user_id = u.id AND l.completed_at = ?)
		 FROM group_members gm
		 JOIN users u ON u.id = gm.user_id
		 WHERE gm.group_id = ?
		 ORDER BY gm.joined_at`,
		date, groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing group members: %w", err)
	}
	defer rows.Close()

	members := []model.GroupMember{}
	for rows.Next() {
		var (
			m                  model.GroupMember
			email, first, last string
		)
		if err := rows.Scan(
			&m.UserID, &email, &first, &last, &m.AvatarURL,
			&m.TotalHabits, &m.CompletedToday,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning member row: %w", err)
		}
		m.Name = strings.TrimSpace(first + " " + last)
		if m.Name == "" {
			m.Name = email
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating members: %w", err)
	}

	return members, nil
}
