// Package stats derives the summary-view numbers — consistency rate,
// streak, and the 30-day heatmap — from a user's full set of goals and
// completion marks.
//
// Everything here is pure arithmetic over already-loaded records: no I/O,
// no clock reads. Callers pass "today" explicitly, which keeps every
// function deterministic and trivially testable.
package stats

import (
	"math"
	"time"

	"github.com/nhasan/journally/internal/model"
)

// ScopeAll selects every goal rather than a single one.
const ScopeAll = "all"

// HeatmapDays is the lookback window for both the heatmap and the streak.
const HeatmapDays = 30

// Day states for heatmap cells.
const (
	StateNotStarted = "not_started" // date precedes every goal in scope
	StateMissed     = "missed"      // goals existed, nothing completed
	StateCompleted  = "completed"   // single-goal scope, mark present
	StatePartial    = "partial"     // all-goals scope, some fraction completed
)

// Opacity bounds for partial heatmap cells. A day with the lowest non-zero
// completion ratio still renders visibly (0.2), a fully completed day
// renders solid (1.0).
const (
	minAlpha = 0.2
	maxAlpha = 1.0
)

// DayCell is one square of the heatmap.
type DayCell struct {
	Date  string  `json:"date"`
	State string  `json:"state"`
	Ratio float64 `json:"ratio"` // completed/active for the day, in [0, 1]
	Alpha float64 `json:"alpha"` // render opacity, 0 for non-partial states
}

// Summary bundles the three derived statistics for one scope.
type Summary struct {
	Scope           string    `json:"scope"`
	ConsistencyRate int       `json:"consistencyRate"` // percentage in [0, 100]
	Streak          int       `json:"streak"`          // consecutive days ending today
	Heatmap         []DayCell `json:"heatmap"`
}

// Compute derives the full summary for the given scope ("all" or a goal
// ID). goals must be the user's complete goal history, archived ones
// included; logs must be all of their completion marks.
func Compute(goals []model.Goal, logs []model.GoalLog, scope string, today time.Time) Summary {
	return Summary{
		Scope:           scope,
		ConsistencyRate: ConsistencyRate(goals, logs, scope, today),
		Streak:          Streak(logs, scope, today),
		Heatmap:         Heatmap(goals, logs, scope, today),
	}
}

// ConsistencyRate is the percentage of "potential" days on which the scoped
// habit(s) were completed.
//
// Potential days for a goal = calendar days from its creation date through
// today, inclusive, floored at 1 (a goal created today has potential 1, not
// 0 — no division by zero). Actual = count of marks in scope. The result is
// clamped to 100: a goal completed more often than days elapsed (a data
// anomaly) never reports over 100%.
//
// Returns 0 when no goals exist in scope.
func ConsistencyRate(goals []model.Goal, logs []model.GoalLog, scope string, today time.Time) int {
	potential := 0
	actual := 0

	for _, g := range goals {
		if scope != ScopeAll && g.ID != scope {
			continue
		}
		potential += potentialDays(g.CreatedAt, today)
	}
	if potential == 0 {
		return 0
	}

	for _, l := range logs {
		if scope == ScopeAll || l.GoalID == scope {
			actual++
		}
	}

	rate := int(math.Round(100 * float64(actual) / float64(potential)))
	if rate > 100 {
		rate = 100
	}
	return rate
}

// potentialDays counts calendar days from created through today, inclusive.
// Clock times are ignored — a goal created at 23:59 still owns its whole
// first day.
func potentialDays(created, today time.Time) int {
	c := midnight(created)
	t := midnight(today)
	if t.Before(c) {
		return 1
	}
	return int(t.Sub(c).Hours()/24) + 1
}

// Streak counts consecutive days with at least one completion mark in
// scope, walking backward from today and stopping at the first gap. The
// scan is bounded to the heatmap window; no marks at all means 0, and a
// gap on today itself means 0 — the streak must end at today.
func Streak(logs []model.GoalLog, scope string, today time.Time) int {
	marked := make(map[string]bool, len(logs))
	for _, l := range logs {
		if scope == ScopeAll || l.GoalID == scope {
			marked[l.CompletedAt] = true
		}
	}

	streak := 0
	for i := 0; i < HeatmapDays; i++ {
		date := midnight(today).AddDate(0, 0, -i).Format(model.DateLayout)
		if !marked[date] {
			break
		}
		streak++
	}
	return streak
}

// Heatmap renders the last HeatmapDays calendar days (oldest first) for the
// scope.
//
// Single-goal scope: a date before the goal's creation is "not_started"; a
// date with a mark is "completed"; otherwise "missed".
//
// All-goals scope: a date before every goal's creation is "not_started".
// Otherwise the day's ratio is completions ÷ goals active on that date —
// using each goal's creation and deletion timestamps, so archiving a habit
// today doesn't rewrite its past. Zero completions is "missed"; anything
// more is "partial" with opacity interpolated linearly between 0.2 and 1.0.
func Heatmap(goals []model.Goal, logs []model.GoalLog, scope string, today time.Time) []DayCell {
	cells := make([]DayCell, 0, HeatmapDays)

	for i := HeatmapDays - 1; i >= 0; i-- {
		date := midnight(today).AddDate(0, 0, -i).Format(model.DateLayout)

		if scope != ScopeAll {
			cells = append(cells, singleGoalCell(goals, logs, scope, date))
			continue
		}
		cells = append(cells, allGoalsCell(goals, logs, date))
	}

	return cells
}

func singleGoalCell(goals []model.Goal, logs []model.GoalLog, goalID, date string) DayCell {
	cell := DayCell{Date: date}

	var goal *model.Goal
	for i := range goals {
		if goals[i].ID == goalID {
			goal = &goals[i]
			break
		}
	}

	if goal == nil || date < goal.CreatedAt.Format(model.DateLayout) {
		cell.State = StateNotStarted
		return cell
	}

	for _, l := range logs {
		if l.GoalID == goalID && l.CompletedAt == date {
			cell.State = StateCompleted
			cell.Ratio = 1
			cell.Alpha = maxAlpha
			return cell
		}
	}

	cell.State = StateMissed
	return cell
}

func allGoalsCell(goals []model.Goal, logs []model.GoalLog, date string) DayCell {
	cell := DayCell{Date: date}

	existed := 0
	active := 0
	for i := range goals {
		if date >= goals[i].CreatedAt.Format(model.DateLayout) {
			existed++
		}
		if goals[i].ActiveOn(date) {
			active++
		}
	}

	if existed == 0 {
		cell.State = StateNotStarted
		return cell
	}

	completed := 0
	for _, l := range logs {
		if l.CompletedAt == date {
			completed++
		}
	}

	if active == 0 || completed == 0 {
		cell.State = StateMissed
		return cell
	}

	ratio := float64(completed) / float64(active)
	if ratio > 1 {
		// Marks from since-archived goals can outnumber the active
		// denominator; cap rather than render past full.
		ratio = 1
	}

	cell.State = StatePartial
	cell.Ratio = ratio
	cell.Alpha = minAlpha + ratio*(maxAlpha-minAlpha)
	return cell
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
