package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nhasan/journally/internal/repository"
	"github.com/nhasan/journally/internal/stats"
)

// SummaryService assembles the statistics view: it loads the user's full
// goal and log history and hands them to the stats package. All the actual
// math lives in internal/stats; this layer only does scope validation and
// data loading.
type SummaryService struct {
	goals  repository.GoalRepository
	logs   repository.LogRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewSummaryService creates a SummaryService.
func NewSummaryService(goals repository.GoalRepository, logs repository.LogRepository, logger *slog.Logger) *SummaryService {
	return &SummaryService{
		goals:  goals,
		logs:   logs,
		logger: logger,
		now:    time.Now,
	}
}

// Summary computes the consistency rate, streak, and heatmap for a scope.
// Scope is either stats.ScopeAll or a goal ID; a goal ID is checked for
// ownership first, so probing other users' goal IDs returns NotFound.
//
// Archived goals are included on purpose: their past days still count
// toward potential in the consistency rate and toward past heatmap cells.
func (s *SummaryService) Summary(ctx context.Context, userID, scope string) (*stats.Summary, error) {
	if scope == "" {
		scope = stats.ScopeAll
	}

	if scope != stats.ScopeAll {
		if _, err := s.goals.GetGoal(ctx, userID, scope); err != nil {
			return nil, err
		}
	}

	goals, err := s.goals.ListAllGoals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading goals for summary: %w", err)
	}
	logs, err := s.logs.ListLogs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading logs for summary: %w", err)
	}

	summary := stats.Compute(goals, logs, scope, s.now())
	return &summary, nil
}
