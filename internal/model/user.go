// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data — similar to classes in other
// languages, but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// Email/password is the primary sign-in method; GitHub OAuth is an optional
// alternative. That's why both PasswordHash and GitHubID can be empty/zero:
// a password user has no GitHubID, an OAuth user has no PasswordHash.
//
// WHY GitHubID int64?
// GitHub user IDs are integers. Using int64 avoids overflow for large
// account numbers. The UNIQUE constraint on github_id in the DB ensures one
// GitHub account maps to exactly one app account.
//
// PasswordHash is never serialized — the `json:"-"` tag excludes it from
// every API response.
type User struct {
	ID           string    `json:"id"         db:"id"`
	Email        string    `json:"email"      db:"email"`
	PasswordHash string    `json:"-"          db:"password_hash"`
	GitHubID     int64     `json:"-"          db:"github_id"`
	FirstName    string    `json:"firstName"  db:"first_name"`
	LastName     string    `json:"lastName"   db:"last_name"`
	AvatarURL    string    `json:"avatarUrl"  db:"avatar_url"`
	IsDarkMode   bool      `json:"isDarkMode" db:"is_dark_mode"`
	CreatedAt    time.Time `json:"createdAt"  db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"  db:"updated_at"`
}
