package models

import "time"

// Job is a posting shared by every account that claimed it. IID is the
// external identity key used to deduplicate repeated submissions.
type Job struct {
	ID               int64     `json:"id,omitempty"`
	IID              *string   `json:"iid,omitempty"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Company          *string   `json:"company,omitempty"`
	Location         *string   `json:"location,omitempty"`
	WorkingModel     *string   `json:"working_model,omitempty"`
	Salary           *string   `json:"salary,omitempty"`
	ExperienceLevel  *string   `json:"experience_level,omitempty"`
	Industry         *string   `json:"industry,omitempty"`
	Responsibilities *string   `json:"responsibilities,omitempty"`
	Requirements     *string   `json:"requirements,omitempty"`
	Applicants       *string   `json:"applicants,omitempty"`
	PostedDate       *string   `json:"posted_date,omitempty"`
	PrettyURL        *string   `json:"pretty_url,omitempty"`
	APIURL           *string   `json:"api_url,omitempty"`
	AIEnhanced       bool      `json:"ai_enhanced"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// JobPatch lists the job fields a caller may change. Nil fields are left alone.
type JobPatch struct {
	ID               int64   `json:"id"`
	IID              *string `json:"iid"`
	Title            *string `json:"title"`
	Description      *string `json:"description"`
	Company          *string `json:"company"`
	Location         *string `json:"location"`
	WorkingModel     *string `json:"working_model"`
	Salary           *string `json:"salary"`
	ExperienceLevel  *string `json:"experience_level"`
	Industry         *string `json:"industry"`
	Responsibilities *string `json:"responsibilities"`
	Requirements     *string `json:"requirements"`
	Applicants       *string `json:"applicants"`
	PostedDate       *string `json:"posted_date"`
	PrettyURL        *string `json:"pretty_url"`
	APIURL           *string `json:"api_url"`
	AIEnhanced       *bool   `json:"ai_enhanced"`
}

// Apply copies the non-nil fields of p onto j.
func (p *JobPatch) Apply(j *Job) {
	setStr := func(dst **string, src *string) {
		if src != nil {
			v := *src
			*dst = &v
		}
	}
	if p.Title != nil {
		j.Title = *p.Title
	}
	if p.Description != nil {
		j.Description = *p.Description
	}
	if p.AIEnhanced != nil {
		j.AIEnhanced = *p.AIEnhanced
	}
	if p.IID != nil {
		// An empty iid is stored as NULL so the job stays out of dedup lookups.
		if *p.IID == "" {
			j.IID = nil
		} else {
			setStr(&j.IID, p.IID)
		}
	}
	setStr(&j.Company, p.Company)
	setStr(&j.Location, p.Location)
	setStr(&j.WorkingModel, p.WorkingModel)
	setStr(&j.Salary, p.Salary)
	setStr(&j.ExperienceLevel, p.ExperienceLevel)
	setStr(&j.Industry, p.Industry)
	setStr(&j.Responsibilities, p.Responsibilities)
	setStr(&j.Requirements, p.Requirements)
	setStr(&j.Applicants, p.Applicants)
	setStr(&j.PostedDate, p.PostedDate)
	setStr(&j.PrettyURL, p.PrettyURL)
	setStr(&j.APIURL, p.APIURL)
}
