// Package searches provides PostgreSQL-backed storage for saved searches.
package searches

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/InfinyLoop-Nexus/Oracle/internal/dbx"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
)

const selectColumns = `id, account_id, job_title, date_posted, working_model, location,
	scraping_amount, platform, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSearch(s scanner) (*models.Search, error) {
	x := &models.Search{}
	err := s.Scan(&x.ID, &x.AccountID, &x.JobTitle, &x.DatePosted, &x.WorkingModel, &x.Location,
		&x.ScrapingAmount, &x.Platform, &x.CreatedAt, &x.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return x, nil
}

func (r *PostgresRepository) Create(ctx context.Context, search *models.Search) (*models.Search, error) {
	query :=
		`INSERT INTO searches (account_id, job_title, date_posted, working_model, location, scraping_amount, platform)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		search.AccountID, search.JobTitle, search.DatePosted, search.WorkingModel,
		search.Location, search.ScrapingAmount, search.Platform,
	).Scan(&search.ID, &search.CreatedAt, &search.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return search, nil
}

// Update rewrites the search identified by search.ID, owner included.
func (r *PostgresRepository) Update(ctx context.Context, search *models.Search) (*models.Search, error) {
	query :=
		`UPDATE searches
		 SET account_id = $2, job_title = $3, date_posted = $4, working_model = $5,
		     location = $6, scraping_amount = $7, platform = $8, updated_at = now()
		 WHERE id = $1
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, search.ID,
		search.AccountID, search.JobTitle, search.DatePosted, search.WorkingModel,
		search.Location, search.ScrapingAmount, search.Platform,
	).Scan(&search.CreatedAt, &search.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return search, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Search, error) {
	x, err := scanSearch(r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM searches WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return x, nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Search, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Search{}
	for rows.Next() {
		x, err := scanSearch(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, x)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Search, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM searches ORDER BY id`)
}

func (r *PostgresRepository) ListByAccount(ctx context.Context, accountID int64) ([]*models.Search, error) {
	return r.list(ctx, `SELECT `+selectColumns+` FROM searches WHERE account_id = $1 ORDER BY id`, accountID)
}
