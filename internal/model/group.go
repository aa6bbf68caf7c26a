package model

import "time"

// Group is a circle: a shared collection of users who can view each other's
// daily completion ratios. Discovery is by JoinCode, a short public token
// generated at creation time (always stored uppercase, matched
// case-insensitively).
type Group struct {
	ID        string    `json:"id"        db:"id"`
	Name      string    `json:"name"      db:"name"`
	CreatedBy string    `json:"createdBy" db:"created_by"`
	JoinCode  string    `json:"joinCode"  db:"join_code"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// GroupSummary is a group annotated with the viewer's relationship to it,
// as returned by the "my circles" listing.
type GroupSummary struct {
	Group
	MemberCount int  `json:"memberCount"`
	IsOwner     bool `json:"isOwner"`
}

// GroupMember is one row of a circle's daily leaderboard: a member together
// with their habit counts for a single day.
//
// TotalHabits counts the member's currently active goals; CompletedToday
// counts their completion marks for the leaderboard's date.
type GroupMember struct {
	UserID         string `json:"id"`
	Name           string `json:"name"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	TotalHabits    int    `json:"totalHabits"`
	CompletedToday int    `json:"completedToday"`
	IsViewer       bool   `json:"isViewer"`
}
