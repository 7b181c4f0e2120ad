// Package ratings provides PostgreSQL-backed storage for the links between
// accounts and the jobs they claimed.
package ratings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/InfinyLoop-Nexus/Oracle/internal/dbx"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
)

// PKConstraint is the (job_id, account_id) primary key.
const PKConstraint = "ratings_pkey"

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, rating *models.Rating) (*models.Rating, error) {
	query :=
		`INSERT INTO ratings (job_id, account_id)
		 VALUES ($1, $2)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, rating.JobID, rating.AccountID).
		Scan(&rating.CreatedAt, &rating.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, PKConstraint) {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rating, nil
}

func (r *PostgresRepository) Get(ctx context.Context, jobID, accountID int64) (*models.Rating, error) {
	query :=
		`SELECT job_id, account_id, user_rated, user_rating, user_rating_positives, user_rating_negatives,
		        ai_processed, ai_rated, ai_rating, ai_shortform_summary, ai_longform_summary,
		        ai_positives, ai_negatives, ai_cover_letter, created_at, updated_at
		 FROM ratings
		 WHERE job_id = $1 AND account_id = $2`

	x := &models.Rating{}
	err := r.db.QueryRowContext(ctx, query, jobID, accountID).Scan(
		&x.JobID, &x.AccountID, &x.UserRated, &x.UserRating, &x.UserRatingPositives, &x.UserRatingNegatives,
		&x.AIProcessed, &x.AIRated, &x.AIRating, &x.AIShortformSummary, &x.AILongformSummary,
		&x.AIPositives, &x.AINegatives, &x.AICoverLetter, &x.CreatedAt, &x.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return x, nil
}

// UpdateUserRating stores the fields an account controls on its own rating.
func (r *PostgresRepository) UpdateUserRating(ctx context.Context, rating *models.Rating) error {
	query :=
		`UPDATE ratings
		 SET user_rated = $3, user_rating = $4, user_rating_positives = $5, user_rating_negatives = $6,
		     updated_at = now()
		 WHERE job_id = $1 AND account_id = $2`

	res, err := r.db.ExecContext(ctx, query, rating.JobID, rating.AccountID,
		rating.UserRated, rating.UserRating, rating.UserRatingPositives, rating.UserRatingNegatives)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, jobID, accountID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE job_id = $1 AND account_id = $2`, jobID, accountID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

func (r *PostgresRepository) CountForJob(ctx context.Context, jobID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM ratings WHERE job_id = $1`, jobID).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
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
