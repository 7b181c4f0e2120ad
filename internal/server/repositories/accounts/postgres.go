// Package accounts provides PostgreSQL-backed storage for user accounts.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/InfinyLoop-Nexus/Oracle/internal/dbx"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
)

const selectColumns = `id, username, email, password_hash, is_admin,
	home_address, self_assessment, job_prototype, job_preferences, job_dislikes,
	desired_compensation, cover_letter, resume, duplicate_behavior,
	tokens_spent_lifetime, tokens_spent_current_month, tokens_spent_counter,
	created_at, updated_at`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner) (*models.Account, error) {
	a := &models.Account{}
	err := s.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.IsAdmin,
		&a.HomeAddress, &a.SelfAssessment, &a.JobPrototype, &a.JobPreferences, &a.JobDislikes,
		&a.DesiredCompensation, &a.CoverLetter, &a.Resume, &a.DuplicateBehavior,
		&a.TokensSpentLifetime, &a.TokensSpentCurrentMonth, &a.TokensSpentCounter,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts the account and fills in its id and timestamps.
// A taken username or email yields common.ErrAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	query :=
		`INSERT INTO accounts (username, email, password_hash, is_admin, duplicate_behavior)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`

	if account.DuplicateBehavior == "" {
		account.DuplicateBehavior = models.DefaultDuplicateBehavior
	}

	err := r.db.QueryRowContext(ctx, query,
		account.Username, account.Email, account.PasswordHash, account.IsAdmin, account.DuplicateBehavior,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		if dbx.IsUniqueViolation(err, "") {
			return nil, common.ErrAlreadyExists
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return account, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, where string, arg any) (*models.Account, error) {
	query := `SELECT ` + selectColumns + ` FROM accounts WHERE ` + where

	a, err := scanAccount(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return a, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Account, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.getOne(ctx, `username = $1`, username)
}

// GetByLogin prefers a username match over an email match.
func (r *PostgresRepository) GetByLogin(ctx context.Context, login string) (*models.Account, error) {
	return r.getOne(ctx, `username = $1 OR email = $1 ORDER BY (username = $1) DESC LIMIT 1`, login)
}

func (r *PostgresRepository) FindConflicts(ctx context.Context, username, email string) (bool, bool, error) {
	query :=
		`SELECT EXISTS (SELECT 1 FROM accounts WHERE username = $1),
		        EXISTS (SELECT 1 FROM accounts WHERE email = $2)`

	var usernameTaken, emailTaken bool
	if err := r.db.QueryRowContext(ctx, query, username, email).Scan(&usernameTaken, &emailTaken); err != nil {
		return false, false, fmt.Errorf("db error: %w", err)
	}
	return usernameTaken, emailTaken, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + selectColumns + ` FROM accounts ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := []*models.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}

// LockAdmins must run inside a transaction. Concurrent callers block on the
// same rows, so the returned count stays valid until commit.
func (r *PostgresRepository) LockAdmins(ctx context.Context) ([]int64, error) {
	query := `SELECT id FROM accounts WHERE is_admin ORDER BY id FOR UPDATE`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return ids, nil
}

func (r *PostgresRepository) SetAdmin(ctx context.Context, id int64, admin bool) error {
	query := `UPDATE accounts SET is_admin = $2, updated_at = now() WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, admin)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOne(res)
}

// Delete removes the account. Ratings and searches go with it (ON DELETE CASCADE).
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
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
