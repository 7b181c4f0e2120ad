package models

import "time"

// Search is a saved, recurring scraping definition owned by one account.
type Search struct {
	ID             int64     `json:"id,omitempty"`
	AccountID      int64     `json:"user_id"`
	JobTitle       string    `json:"job_title"`
	DatePosted     string    `json:"date_posted"`
	WorkingModel   string    `json:"working_model"`
	Location       string    `json:"location"`
	ScrapingAmount int       `json:"scraping_amount"`
	Platform       string    `json:"platform"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
