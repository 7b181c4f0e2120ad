// Package jobs provides PostgreSQL-backed storage for job postings.
package jobs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/InfinyLoop-Nexus/Oracle/internal/dbx"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
)

// IIDConstraint is the unique constraint on the external job key.
const IIDConstraint = "jobs_iid_key"

const selectColumns = `j.id, j.iid, j.title, j.description, j.company, j.location,
	j.working_model, j.salary, j.experience_level, j.industry, j.responsibilities,
	j.requirements, j.applicants, j.posted_date, j.pretty_url, j.api_url,
	j.ai_enhanced, j.created_at, j.updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*models.Job, error) {
	j := &models.Job{}
	err := s.Scan(&j.ID, &j.IID, &j.Title, &j.Description, &j.Company, &j.Location,
		&j.WorkingModel, &j.Salary, &j.ExperienceLevel, &j.Industry, &j.Responsibilities,
		&j.Requirements, &j.Applicants, &j.PostedDate, &j.PrettyURL, &j.APIURL,
		&j.AIEnhanced, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return j, nil
}

// Create inserts the job. A duplicate iid yields common.ErrAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, job *models.Job) (*models.Job, error) {
	query :=
		`INSERT INTO jobs (iid, title, description, company, location, working_model, salary,
		     experience_level, industry, responsibilities, requirements, applicants,
		     posted_date, pretty_url, api_url, ai_enhanced)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		job.IID, job.Title, job.Description, job.Company, job.Location, job.WorkingModel, job.Salary,
		job.ExperienceLevel, job.Industry, job.Responsibilities, job.Requirements, job.Applicants,
		job.PostedDate, job.PrettyURL, job.APIURL, job.AIEnhanced,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, IIDConstraint) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return job, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*models.Job, error) {
	query := `SELECT ` + selectColumns + ` FROM jobs j WHERE ` + where

	j, err := scanJob(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return j, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Job, error) {
	return r.getOne(ctx, `j.id = $1`, id)
}

func (r *PostgresRepository) GetByIID(ctx context.Context, iid string) (*models.Job, error) {
	return r.getOne(ctx, `j.iid = $1`, iid)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Job, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM jobs j ORDER BY j.id`)
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID int64) ([]*models.Job, error) {
	return r.list(ctx,
		`SELECT `+selectColumns+` FROM jobs j
		 JOIN ratings r ON r.job_id = j.id
		 WHERE r.account_id = $1
		 ORDER BY j.id`, accountID)
}

// Update overwrites every mutable column of the job identified by job.ID.
func (r *PostgresRepository) Update(ctx context.Context, job *models.Job) error {
	query :=
		`UPDATE jobs SET iid = $2, title = $3, description = $4, company = $5, location = $6,
		     working_model = $7, salary = $8, experience_level = $9, industry = $10,
		     responsibilities = $11, requirements = $12, applicants = $13, posted_date = $14,
		     pretty_url = $15, api_url = $16, ai_enhanced = $17, updated_at = now()
		 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, job.ID,
		job.IID, job.Title, job.Description, job.Company, job.Location,
		job.WorkingModel, job.Salary, job.ExperienceLevel, job.Industry,
		job.Responsibilities, job.Requirements, job.Applicants, job.PostedDate,
		job.PrettyURL, job.APIURL, job.AIEnhanced)
	if err != nil {
		if dbx.IsUniqueViolation(err, IIDConstraint) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

// Delete removes the job and, through the cascade, every rating of it.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func expectOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
