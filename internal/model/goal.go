package model

import "time"

// DateLayout is the wire and storage format for calendar dates.
// Completion marks are keyed by calendar day, not by timestamp, so dates
// travel as plain "YYYY-MM-DD" strings end to end.
const DateLayout = "2006-01-02"

// Goal is a user-defined habit tracked per calendar day.
//
// Goals are soft-deleted: DeletedAt records WHEN the habit was archived,
// which lets historical statistics count the goal as active for the days it
// actually existed. A nil DeletedAt means the goal is active.
type Goal struct {
	ID        string     `json:"id"                  db:"id"`
	UserID    string     `json:"userId"              db:"user_id"`
	Title     string     `json:"title"               db:"title"`
	CreatedAt time.Time  `json:"createdAt"           db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt"           db:"updated_at"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}

// IsDeleted reports whether the goal has been soft-deleted (archived).
func (g *Goal) IsDeleted() bool {
	return g.DeletedAt != nil
}

// ActiveOn reports whether the goal existed and was not yet archived on the
// given calendar date. A goal deleted on day N still counts as active for
// days before N — that's the whole point of recording the deletion time.
func (g *Goal) ActiveOn(date string) bool {
	if date < g.CreatedAt.Format(DateLayout) {
		return false
	}
	if g.DeletedAt != nil && date >= g.DeletedAt.Format(DateLayout) {
		return false
	}
	return true
}

// GoalLog is a completion mark: this goal was completed on this day.
// At most one log exists per (goal, date) pair — enforced by a UNIQUE index.
// Absence of a log for a date means the habit was not completed that day.
type GoalLog struct {
	ID          string    `json:"id"          db:"id"`
	UserID      string    `json:"userId"      db:"user_id"`
	GoalID      string    `json:"goalId"      db:"goal_id"`
	CompletedAt string    `json:"completedAt" db:"completed_at"` // "YYYY-MM-DD"
	Status      bool      `json:"status"      db:"status"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}
