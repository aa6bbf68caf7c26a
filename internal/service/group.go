package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/nhasan/journally/internal/apperror"
	"github.com/nhasan/journally/internal/model"
	"github.com/nhasan/journally/internal/repository"
)

// Validation constants for circles.
const (
	MaxGroupNameLength = 100
	JoinCodeLength     = 6

	// joinCodeRetries bounds the regenerate-on-collision loop. With a
	// 32-character alphabet and 6 positions there are over a billion codes,
	// so hitting this limit means something other than bad luck.
	joinCodeRetries = 5
)

// joinCodeAlphabet deliberately omits 0/O and 1/I, which read ambiguously
// when a code is shared out loud or handwritten.
const joinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GroupService handles circles: shared groups that friends join by code to
// see each other's daily progress.
type GroupService struct {
	groups repository.GroupRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewGroupService creates a GroupService.
func NewGroupService(groups repository.GroupRepository, logger *slog.Logger) *GroupService {
	return &GroupService{
		groups: groups,
		logger: logger,
		now:    time.Now,
	}
}

// Create makes a new circle owned by the caller, who becomes its first
// member. The join code is generated here; if it collides with an existing
// circle's code, a fresh one is generated and the insert retried.
func (s *GroupService) Create(ctx context.Context, userID, name string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "group name is required")
	}
	if len(name) > MaxGroupNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("group name must be %d characters or less", MaxGroupNameLength))
	}

	group := &model.Group{
		Name:      name,
		CreatedBy: userID,
	}

	for attempt := 0; attempt < joinCodeRetries; attempt++ {
		code, err := generateJoinCode()
		if err != nil {
			return nil, fmt.Errorf("generating join code: %w", err)
		}
		group.JoinCode = code

		err = s.groups.CreateGroup(ctx, group)
		if err == nil {
			s.logger.Info("group created",
				slog.String("id", group.ID),
				slog.String("userID", userID),
			)
			return group, nil
		}
		if !errors.Is(err, apperror.ErrConflict) {
			return nil, fmt.Errorf("creating group: %w", err)
		}

		s.logger.Warn("join code collision, regenerating", slog.String("code", code))
	}

	return nil, fmt.Errorf("creating group: join code generation kept colliding after %d attempts", joinCodeRetries)
}

// Join adds the caller to the circle matching the join code. Codes are
// case-insensitive on input. Joining a circle the caller already belongs to
// succeeds and simply returns it again.
func (s *GroupService) Join(ctx context.Context, userID, code string) (*model.Group, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != JoinCodeLength {
		return nil, apperror.ValidationFailed("code",
			fmt.Sprintf("join code must be %d characters", JoinCodeLength))
	}

	group, err := s.groups.GetGroupByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	if err := s.groups.AddMember(ctx, group.ID, userID); err != nil {
		return nil, fmt.Errorf("joining group %s: %w", group.ID, err)
	}

	s.logger.Info("user joined group",
		slog.String("groupID", group.ID),
		slog.String("userID", userID),
	)

	return group, nil
}

// List returns the circles the caller belongs to, annotated with member
// counts and ownership.
func (s *GroupService) List(ctx context.Context, userID string) ([]model.GroupSummary, error) {
	groups, err := s.groups.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	return groups, nil
}

// Leave removes the caller's own membership. The owner can leave too; the
// circle lives on without them until someone deletes it.
func (s *GroupService) Leave(ctx context.Context, userID, groupID string) error {
	if err := s.groups.RemoveMember(ctx, groupID, userID); err != nil {
		return err
	}
	s.logger.Info("user left group",
		slog.String("groupID", groupID),
		slog.String("userID", userID),
	)
	return nil
}

// Delete removes a circle entirely. Only the owner may do this; the
// repository returns ErrForbidden for anyone else.
func (s *GroupService) Delete(ctx context.Context, userID, groupID string) error {
	if err := s.groups.DeleteGroup(ctx, groupID, userID); err != nil {
		return err
	}
	s.logger.Info("group deleted",
		slog.String("groupID", groupID),
		slog.String("userID", userID),
	)
	return nil
}

// Leaderboard returns today's standings for a circle the caller belongs
// to: every member with their active habit count and completions for the
// day, sorted by completion ratio descending (ties broken by name). The
// caller's own row is flagged so the client can highlight it.
func (s *GroupService) Leaderboard(ctx context.Context, userID, groupID string) ([]model.GroupMember, error) {
	member, err := s.groups.IsMember(ctx, groupID, userID)
	if err != nil {
		return nil, fmt.Errorf("checking membership: %w", err)
	}
	if !member {
		return nil, apperror.Forbidden("you are not a member of this group")
	}

	today := s.now().Format(model.DateLayout)
	members, err := s.groups.ListMembersWithDailyStats(ctx, groupID, today)
	if err != nil {
		return nil, fmt.Errorf("listing members for group %s: %w", groupID, err)
	}

	for i := range members {
		members[i].IsViewer = members[i].UserID == userID
	}

	sort.SliceStable(members, func(i, j int) bool {
		ri, rj := completionRatio(members[i]), completionRatio(members[j])
		if ri != rj {
			return ri > rj
		}
		return members[i].Name < members[j].Name
	})

	return members, nil
}

// completionRatio is completions over active habits for the day. Members
// with no active habits rank at the bottom.
func completionRatio(m model.GroupMember) float64 {
	if m.TotalHabits == 0 {
		return -1
	}
	return float64(m.CompletedToday) / float64(m.TotalHabits)
}

// generateJoinCode produces a short random code from the unambiguous
// alphabet using crypto/rand.
func generateJoinCode() (string, error) {
	buf := make([]byte, JoinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}
