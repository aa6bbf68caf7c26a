package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nhasan/journally/internal/apperror"
	"github.com/nhasan/journally/internal/model"
)

// Hand-written in-memory mocks for the repository interfaces. They store
// copies, never the caller's pointers, so tests can't interfere with each
// other through shared state.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ---------------------------------------------------------------------------
// users

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int

	// forcedErr, when set, is returned by every method. Simulates a dead
	// database.
	forcedErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", user.Email)
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if m.forcedErr != nil {
		return nil, m.forcedErr
	}
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) UpsertGitHub(_ context.Context, user *model.User) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	for _, u := range m.users {
		if u.GitHubID == user.GitHubID {
			user.ID = u.ID
			u.FirstName = user.FirstName
			u.LastName = user.LastName
			u.AvatarURL = user.AvatarURL
			return nil
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) UpdateProfile(_ context.Context, user *model.User) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	if m.forcedErr != nil {
		return m.forcedErr
	}
	u, ok := m.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	u.PasswordHash = passwordHash
	return nil
}

// ---------------------------------------------------------------------------
// goals

type mockGoalRepo struct {
	goals  map[string]*model.Goal
	nextID int
}

func newMockGoalRepo() *mockGoalRepo {
	return &mockGoalRepo{goals: make(map[string]*model.Goal)}
}

func (m *mockGoalRepo) CreateGoal(_ context.Context, goal *model.Goal) error {
	m.nextID++
	goal.ID = fmt.Sprintf("goal-%d", m.nextID)
	now := time.Now()
	goal.CreatedAt = now
	goal.UpdatedAt = now
	stored := *goal
	m.goals[goal.ID] = &stored
	return nil
}

func (m *mockGoalRepo) GetGoal(_ context.Context, userID, id string) (*model.Goal, error) {
	g, ok := m.goals[id]
	if !ok || g.UserID != userID {
		return nil, apperror.NotFound("goal", id)
	}
	result := *g
	return &result, nil
}

func (m *mockGoalRepo) ListActiveGoals(_ context.Context, userID string) ([]model.Goal, error) {
	result := []model.Goal{}
	for _, g := range m.goals {
		if g.UserID == userID && g.DeletedAt == nil {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGoalRepo) ListAllGoals(_ context.Context, userID string) ([]model.Goal, error) {
	result := []model.Goal{}
	for _, g := range m.goals {
		if g.UserID == userID {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (m *mockGoalRepo) UpdateGoalTitle(_ context.Context, userID, id, title string) error {
	g, ok := m.goals[id]
	if !ok || g.UserID != userID {
		return apperror.NotFound("goal", id)
	}
	g.Title = title
	g.UpdatedAt = time.Now()
	return nil
}

func (m *mockGoalRepo) SoftDeleteGoal(_ context.Context, userID, id string) error {
	g, ok := m.goals[id]
	if !ok || g.UserID != userID || g.DeletedAt != nil {
		return apperror.NotFound("goal", id)
	}
	now := time.Now()
	g.DeletedAt = &now
	return nil
}

func (m *mockGoalRepo) RestoreGoal(_ context.Context, userID, id string) error {
	g, ok := m.goals[id]
	if !ok || g.UserID != userID {
		return apperror.NotFound("goal", id)
	}
	g.DeletedAt = nil
	return nil
}

func (m *mockGoalRepo) HardDeleteGoal(_ context.Context, userID, id string) error {
	g, ok := m.goals[id]
	if !ok || g.UserID != userID {
		return apperror.NotFound("goal", id)
	}
	delete(m.goals, id)
	return nil
}

// ---------------------------------------------------------------------------
// logs

type mockLogRepo struct {
	logs   map[string]*model.GoalLog // keyed goalID+"|"+date
	nextID int
}

func newMockLogRepo() *mockLogRepo {
	return &mockLogRepo{logs: make(map[string]*model.GoalLog)}
}

func (m *mockLogRepo) ToggleLog(_ context.Context, userID, goalID, date string) (bool, error) {
	key := goalID + "|" + date
	if _, ok := m.logs[key]; ok {
		delete(m.logs, key)
		return false, nil
	}
	m.nextID++
	m.logs[key] = &model.GoalLog{
		ID:          fmt.Sprintf("log-%d", m.nextID),
		UserID:      userID,
		GoalID:      goalID,
		CompletedAt: date,
		Status:      true,
		CreatedAt:   time.Now(),
	}
	return true, nil
}

func (m *mockLogRepo) ListLogs(_ context.Context, userID string) ([]model.GoalLog, error) {
	result := []model.GoalLog{}
	for _, l := range m.logs {
		if l.UserID == userID {
			result = append(result, *l)
		}
	}
	return result, nil
}

func (m *mockLogRepo) CountLogsForGoal(_ context.Context, goalID string) (int, error) {
	count := 0
	for _, l := range m.logs {
		if l.GoalID == goalID {
			count++
		}
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// groups

type mockGroupRepo struct {
	groups  map[string]*model.Group
	members map[string]map[string]bool // groupID → set of userIDs
	// stats backs ListMembersWithDailyStats, keyed by userID.
	stats  map[string]model.GroupMember
	nextID int
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{
		groups:  make(map[string]*model.Group),
		members: make(map[string]map[string]bool),
		stats:   make(map[string]model.GroupMember),
	}
}

func (m *mockGroupRepo) CreateGroup(_ context.Context, group *model.Group) error {
	for _, g := range m.groups {
		if g.JoinCode == group.JoinCode {
			return apperror.Conflict("join code", group.JoinCode)
		}
	}
	m.nextID++
	group.ID = fmt.Sprintf("group-%d", m.nextID)
	group.CreatedAt = time.Now()
	stored := *group
	m.groups[group.ID] = &stored
	m.members[group.ID] = map[string]bool{group.CreatedBy: true}
	return nil
}

func (m *mockGroupRepo) GetGroup(_ context.Context, id string) (*model.Group, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, apperror.NotFound("group", id)
	}
	result := *g
	return &result, nil
}

func (m *mockGroupRepo) GetGroupByCode(_ context.Context, code string) (*model.Group, error) {
	for _, g := range m.groups {
		if g.JoinCode == code {
			result := *g
			return &result, nil
		}
	}
	return nil, apperror.NotFound("group", code)
}

func (m *mockGroupRepo) ListGroupsForUser(_ context.Context, userID string) ([]model.GroupSummary, error) {
	result := []model.GroupSummary{}
	for id, g := range m.groups {
		if m.members[id][userID] {
			result = append(result, model.GroupSummary{
				Group:       *g,
				MemberCount: len(m.members[id]),
				IsOwner:     g.CreatedBy == userID,
			})
		}
	}
	return result, nil
}

func (m *mockGroupRepo) AddMember(_ context.Context, groupID, userID string) error {
	if m.members[groupID] == nil {
		m.members[groupID] = make(map[string]bool)
	}
	m.members[groupID][userID] = true
	return nil
}

func (m *mockGroupRepo) RemoveMember(_ context.Context, groupID, userID string) error {
	if !m.members[groupID][userID] {
		return apperror.NotFound("membership", groupID)
	}
	delete(m.members[groupID], userID)
	return nil
}

func (m *mockGroupRepo) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	return m.members[groupID][userID], nil
}

func (m *mockGroupRepo) DeleteGroup(_ context.Context, id, ownerID string) error {
	g, ok := m.groups[id]
	if !ok {
		return apperror.NotFound("group", id)
	}
	if g.CreatedBy != ownerID {
		return apperror.Forbidden("only the group owner can delete it")
	}
	delete(m.groups, id)
	delete(m.members, id)
	return nil
}

func (m *mockGroupRepo) ListMembersWithDailyStats(_ context.Context, groupID, _ string) ([]model.GroupMember, error) {
	result := []model.GroupMember{}
	for userID := range m.members[groupID] {
		if s, ok := m.stats[userID]; ok {
			result = append(result, s)
			continue
		}
		result = append(result, model.GroupMember{UserID: userID, Name: userID})
	}
	return result, nil
}
