package models

import "time"

// Rating links an account to a job it claimed. At most one per (job, account).
type Rating struct {
	JobID                int64     `json:"job_id"`
	AccountID            int64     `json:"user_id"`
	UserRated            bool      `json:"user_rated"`
	UserRating           *float64  `json:"user_rating,omitempty"`
	UserRatingPositives  *string   `json:"user_rating_positives,omitempty"`
	UserRatingNegatives  *string   `json:"user_rating_negatives,omitempty"`
	AIProcessed          bool      `json:"ai_processed"`
	AIRated              bool      `json:"ai_rated"`
	AIRating             *float64  `json:"ai_rating,omitempty"`
	AIShortformSummary   *string   `json:"ai_shortform_summary,omitempty"`
	AILongformSummary    *string   `json:"ai_longform_summary,omitempty"`
	AIPositives          *string   `json:"ai_positives,omitempty"`
	AINegatives          *string   `json:"ai_negatives,omitempty"`
	AICoverLetter        *string   `json:"ai_cover_letter,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// RatingPatch is what an account may change on its own rating.
type RatingPatch struct {
	UserRated           *bool    `json:"user_rated"`
	UserRating          *float64 `json:"user_rating"`
	UserRatingPositives *string  `json:"user_rating_positives"`
	UserRatingNegatives *string  `json:"user_rating_negatives"`
}

func (p *RatingPatch) Apply(r *Rating) {
	if p.UserRated != nil {
		r.UserRated = *p.UserRated
	}
	if p.UserRating != nil {
		v := *p.UserRating
		r.UserRating = &v
	}
	if p.UserRatingPositives != nil {
		v := *p.UserRatingPositives
		r.UserRatingPositives = &v
	}
	if p.UserRatingNegatives != nil {
		v := *p.UserRatingNegatives
		r.UserRatingNegatives = &v
	}
}
