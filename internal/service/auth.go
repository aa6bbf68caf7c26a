// Package service contains the business logic layer of the application.
//
// The layering follows the usual three-tier shape:
//
//	Handler (HTTP)     → parses requests, writes responses
//	Service (rules)    → validates, enforces ownership, orchestrates
//	Repository (data)  → reads/writes the database
//
// Services accept primitives and return domain models plus apperror
// sentinels; they never see an *http.Request and never produce an HTTP
// status code. Each service takes its repository as an interface so tests
// can substitute mocks (see the _test.go files in this package).
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/nhasan/journally/internal/apperror"
	"github.com/nhasan/journally/internal/auth"
	"github.com/nhasan/journally/internal/model"
	"github.com/nhasan/journally/internal/repository"
)

// Validation constants for account fields.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt's input limit
	MaxNameLength     = 100
	MaxEmailLength    = 254
)

// AuthService handles signup, login, sessions, and profile management.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued JWT so the handler can
// set the session cookie and respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// SignUp registers a new email/password account and logs it in.
//
// Email is normalized to lowercase so "Me@Example.com" and "me@example.com"
// are the same account. Returns apperror.ErrConflict if the email is
// already registered, apperror.ErrValidation for bad input.
func (s *AuthService) SignUp(ctx context.Context, email, password, firstName, lastName string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if len(firstName) > MaxNameLength || len(lastName) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("names must be %d characters or less", MaxNameLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user signed up", slog.String("userID", user.ID))

	return s.issueSession(user)
}

// SignIn authenticates an email/password login.
//
// A wrong email and a wrong password both return ErrUnauthorized with the
// same message — the response never reveals whether the account exists.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("service/auth: fetching user by email: %w", err)
	}

	// OAuth-only accounts have no password hash; they can't log in this way.
	if user.PasswordHash == "" || s.passwords.Verify(user.PasswordHash, password) != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	s.logger.Info("user signed in", slog.String("userID", user.ID))

	return s.issueSession(user)
}

// LoginOrRegisterGitHub handles the GitHub OAuth callback.
//
// The handler exchanges the authorization code for a GitHub profile, then
// calls this to upsert the user (GitHub IDs are stable, so upserting on
// github_id is safe) and issue a session token.
func (s *AuthService) LoginOrRegisterGitHub(ctx context.Context, ghUser *auth.GitHubUser) (*AuthResult, error) {
	if ghUser == nil {
		return nil, fmt.Errorf("service/auth: GitHub user must not be nil")
	}

	first, last := splitName(ghUser.Name)
	if first == "" {
		first = ghUser.Login
	}

	user := &model.User{
		GitHubID:  ghUser.ID,
		Email:     strings.ToLower(ghUser.Email),
		FirstName: first,
		LastName:  last,
		AvatarURL: ghUser.AvatarURL,
	}
	if err := s.users.UpsertGitHub(ctx, user); err != nil {
		return nil, fmt.Errorf("service/auth: upserting user (githubID=%d): %w", ghUser.ID, err)
	}

	s.logger.Info("user authenticated via GitHub",
		slog.String("userID", user.ID),
		slog.String("login", ghUser.Login),
	)

	return s.issueSession(user)
}

// GetProfile returns the user record for the authenticated user ID.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}
	return s.users.GetByID(ctx, userID)
}

// UpdateProfile changes the user's display name and theme preference.
// Fetch-then-update: the existing record supplies anything not changed.
func (s *AuthService) UpdateProfile(ctx context.Context, userID, firstName, lastName string, isDarkMode bool) (*model.User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if len(firstName) > MaxNameLength || len(lastName) > MaxNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("names must be %d characters or less", MaxNameLength))
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.FirstName = firstName
	user.LastName = lastName
	user.IsDarkMode = isDarkMode

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", slog.String("userID", userID))
	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
// OAuth-only accounts (no existing hash) may set a password directly.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if user.PasswordHash != "" && s.passwords.Verify(user.PasswordHash, current) != nil {
		return apperror.Unauthorized("current password is incorrect")
	}
	if err := validatePassword(next); err != nil {
		return err
	}

	hash, err := s.passwords.Hash(next)
	if err != nil {
		return fmt.Errorf("service/auth: hashing password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.logger.Info("password changed", slog.String("userID", userID))
	return nil
}

// ValidateToken validates a JWT string and returns the userID it encodes.
// Thin delegation so callers only need the service package.
func (s *AuthService) ValidateToken(tokenStr string) (string, error) {
	userID, err := s.tokens.Validate(tokenStr)
	if err != nil {
		return "", fmt.Errorf("service/auth: %w", err)
	}
	return userID, nil
}

// SessionTTL exposes the token lifetime so the handler can set a matching
// cookie Max-Age.
func (s *AuthService) SessionTTL() int {
	return int(s.tokens.TTL().Seconds())
}

func (s *AuthService) issueSession(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.Generate(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %s: %w", user.ID, err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func validateEmail(email string) error {
	if email == "" {
		return apperror.ValidationFailed("email", "email is required")
	}
	if len(email) > MaxEmailLength {
		return apperror.ValidationFailed("email",
			fmt.Sprintf("email must be %d characters or less", MaxEmailLength))
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperror.ValidationFailed("email", "email address is not valid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d characters or less", MaxPasswordLength))
	}
	return nil
}

// splitName turns a display name like "Ada Lovelace" into first/last parts.
// Single-word names become the first name with an empty last name.
func splitName(name string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	parts := strings.SplitN(name, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.TrimSpace(parts[1])
}
