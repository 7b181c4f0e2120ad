// Package models defines the rows persisted by the server.
package models

import "time"

// Account is an identity record. PasswordHash is a bcrypt credential and is
// never serialized.
type Account struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	IsAdmin      bool   `json:"admin"`

	Profile

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile holds the free-form data a user keeps about their job search.
type Profile struct {
	HomeAddress             string  `json:"home_address"`
	SelfAssessment          string  `json:"self_assessment"`
	JobPrototype            string  `json:"job_prototype"`
	JobPreferences          string  `json:"job_preferences"`
	JobDislikes             string  `json:"job_dislikes"`
	DesiredCompensation     string  `json:"desired_compensation"`
	CoverLetter             string  `json:"cover_letter"`
	Resume                  string  `json:"resume"`
	DuplicateBehavior       string  `json:"duplicate_behavior"`
	TokensSpentLifetime     float64 `json:"tokens_spent_lifetime"`
	TokensSpentCurrentMonth float64 `json:"tokens_spent_current_month"`
	TokensSpentCounter      float64 `json:"tokens_spent_counter"`
}

// DefaultDuplicateBehavior is applied to new accounts.
const DefaultDuplicateBehavior = "skip_duplicates"
