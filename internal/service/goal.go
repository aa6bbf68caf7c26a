package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nhasan/journally/internal/apperror"
	"github.com/nhasan/journally/internal/model"
	"github.com/nhasan/journally/internal/repository"
)

// Validation constants for goals and completion marks.
const (
	MaxGoalTitleLength = 100

	// ToggleBackdateDays bounds how far in the past a completion mark may
	// be placed. Future dates are always rejected.
	ToggleBackdateDays = 30
)

// GoalService handles the habit lifecycle: create, rename, archive,
// restore, permanent delete, and the daily completion toggle. Every
// operation is scoped to the calling user; a goal owned by someone else is
// indistinguishable from a missing one.
type GoalService struct {
	goals  repository.GoalRepository
	logs   repository.LogRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewGoalService creates a GoalService.
func NewGoalService(goals repository.GoalRepository, logs repository.LogRepository, logger *slog.Logger) *GoalService {
	return &GoalService{
		goals:  goals,
		logs:   logs,
		logger: logger,
		now:    time.Now,
	}
}

// Create validates and saves a new habit.
func (s *GoalService) Create(ctx context.Context, userID, title string) (*model.Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "goal title is required")
	}
	if len(title) > MaxGoalTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("goal title must be %d characters or less", MaxGoalTitleLength))
	}

	goal := &model.Goal{
		UserID: userID,
		Title:  title,
	}
	if err := s.goals.CreateGoal(ctx, goal); err != nil {
		s.logger.Error("failed to create goal",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating goal: %w", err)
	}

	s.logger.Info("goal created",
		slog.String("id", goal.ID),
		slog.String("userID", userID),
	)

	return goal, nil
}

// ListActive returns the user's current (non-archived) habits, newest
// first.
func (s *GoalService) ListActive(ctx context.Context, userID string) ([]model.Goal, error) {
	goals, err := s.goals.ListActiveGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}
	return goals, nil
}

// ListAll returns the user's full goal history, archived habits included.
func (s *GoalService) ListAll(ctx context.Context, userID string) ([]model.Goal, error) {
	goals, err := s.goals.ListAllGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing goal history: %w", err)
	}
	return goals, nil
}

// Rename changes a goal's title.
func (s *GoalService) Rename(ctx context.Context, userID, id, title string) (*model.Goal, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "goal title is required")
	}
	if len(title) > MaxGoalTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("goal title must be %d characters or less", MaxGoalTitleLength))
	}

	if err := s.goals.UpdateGoalTitle(ctx, userID, id, title); err != nil {
		return nil, err
	}

	return s.goals.GetGoal(ctx, userID, id)
}

// Archive soft-deletes a goal. Its completion history is kept and its past
// days still count in statistics; only the daily checklist drops it.
// Archiving an already-archived goal returns ErrNotFound.
func (s *GoalService) Archive(ctx context.Context, userID, id string) error {
	if err := s.goals.SoftDeleteGoal(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info("goal archived", slog.String("id", id), slog.String("userID", userID))
	return nil
}

// Restore brings an archived goal back to the active list.
func (s *GoalService) Restore(ctx context.Context, userID, id string) (*model.Goal, error) {
	if err := s.goals.RestoreGoal(ctx, userID, id); err != nil {
		return nil, err
	}
	s.logger.Info("goal restored", slog.String("id", id), slog.String("userID", userID))
	return s.goals.GetGoal(ctx, userID, id)
}

// Purge permanently deletes a goal and all of its completion marks.
// There is no undo, which is why the handler exposes it on a separate
// route from Archive.
func (s *GoalService) Purge(ctx context.Context, userID, id string) error {
	if err := s.goals.HardDeleteGoal(ctx, userID, id); err != nil {
		return err
	}
	s.logger.Info("goal permanently deleted", slog.String("id", id), slog.String("userID", userID))
	return nil
}

// ToggleStatus values returned by Toggle.
const (
	ToggleChecked   = "checked"
	ToggleUnchecked = "unchecked"
)

// Toggle flips the completion mark for a goal on a date and reports the
// resulting state.
//
// Rules enforced here, before the repository's atomic flip:
//   - the goal must exist, belong to the caller, and not be archived
//   - the date must parse as YYYY-MM-DD
//   - the date must not be in the future and not older than the
//     backdating window
func (s *GoalService) Toggle(ctx context.Context, userID, goalID, date string) (string, error) {
	if err := s.validateToggleDate(date); err != nil {
		return "", err
	}

	goal, err := s.goals.GetGoal(ctx, userID, goalID)
	if err != nil {
		return "", err
	}
	if goal.IsDeleted() {
		return "", apperror.ValidationFailed("goal", "archived goals cannot be toggled")
	}
	if !goal.ActiveOn(date) {
		return "", apperror.ValidationFailed("date", "date is before the goal was created")
	}

	checked, err := s.logs.ToggleLog(ctx, userID, goalID, date)
	if err != nil {
		return "", fmt.Errorf("toggling goal %s: %w", goalID, err)
	}

	status := ToggleUnchecked
	if checked {
		status = ToggleChecked
	}

	s.logger.Info("goal toggled",
		slog.String("id", goalID),
		slog.String("date", date),
		slog.String("status", status),
	)

	return status, nil
}

// ListLogs returns all of the user's completion marks.
func (s *GoalService) ListLogs(ctx context.Context, userID string) ([]model.GoalLog, error) {
	logs, err := s.logs.ListLogs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing logs: %w", err)
	}
	return logs, nil
}

func (s *GoalService) validateToggleDate(date string) error {
	parsed, err := time.Parse(model.DateLayout, date)
	if err != nil {
		return apperror.ValidationFailed("date", "date must be in YYYY-MM-DD format")
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	if parsed.After(today) {
		return apperror.ValidationFailed("date", "date must not be in the future")
	}
	if parsed.Before(today.AddDate(0, 0, -ToggleBackdateDays)) {
		return apperror.ValidationFailed("date",
			fmt.Sprintf("date must be within the last %d days", ToggleBackdateDays))
	}
	return nil
}
