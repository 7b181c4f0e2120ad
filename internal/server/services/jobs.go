package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/InfinyLoop-Nexus/Oracle/internal/dbx"
	"github.com/InfinyLoop-Nexus/Oracle/internal/logging"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/ratings"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const (
	MsgJobCreated = "The Job has been created"
	MsgJobLinked  = "The Job already existed and is now linked to your account"
)

// ClaimResult tells whether Claim created the job or linked an existing one.
type ClaimResult struct {
	Job     *models.Job
	Created bool
}

func (r *ClaimResult) Message() string {
	if r.Created {
		return MsgJobCreated
	}
	return MsgJobLinked
}

type JobService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewJobService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *JobService {
	return &JobService{db: db, repomanager: m, log: log.With("module", "jobs")}
}

// Claim registers job for the caller. A job whose iid is already known is
// linked instead of created again. Two callers racing on the same new iid end
// up with one job and one link each: the loser's insert hits the iid unique
// constraint, and the retried transaction finds the winner's row.
func (s *JobService) Claim(ctx context.Context, caller *models.Account, job *models.Job) (*ClaimResult, error) {
	if job.ID != 0 {
		return nil, common.ErrIDNotAllowedForCreate
	}
	if job.Description == "" {
		return nil, common.NewValidationError("Job description is required")
	}

	candidate := *job
	fresh := false
	if candidate.IID == nil || *candidate.IID == "" {
		iid := uuid.NewString()
		candidate.IID = &iid
		fresh = true
	}

	var result *ClaimResult
	err := dbx.WithRetryTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		jobsRepo := s.repomanager.Jobs(tx)
		ratingsRepo := s.repomanager.Ratings(tx)

		if !fresh {
			existing, err := jobsRepo.GetByIID(ctx, *candidate.IID)
			switch {
			case err == nil:
				if err := s.link(ctx, ratingsRepo, existing.ID, caller.ID); err != nil {
					return err
				}
				result = &ClaimResult{Job: existing, Created: false}
				return nil
			case !errors.Is(err, common.ErrorNotFound):
				return err
			}
		}

		toCreate := candidate
		created, err := jobsRepo.Create(ctx, &toCreate)
		if err != nil {
			if errors.Is(err, common.ErrAlreadyExists) {
				fresh = false
				return dbx.ErrTxConflict
			}
			return err
		}
		if err := s.link(ctx, ratingsRepo, created.ID, caller.ID); err != nil {
			return err
		}
		result = &ClaimResult{Job: created, Created: true}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "job claimed", "job_id", result.Job.ID, "account_id", caller.ID, "created", result.Created)
	return result, nil
}

func (s *JobService) link(ctx context.Context, repo ratings.Repository, jobID, accountID int64) error {
	if _, err := repo.Get(ctx, jobID, accountID); err == nil {
		return common.ErrAlreadyLinked
	} else if !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	_, err := repo.Create(ctx, &models.Rating{JobID: jobID, AccountID: accountID})
	if errors.Is(err, common.ErrAlreadyExists) {
		return common.ErrAlreadyLinked
	}
	return err
}

func (s *JobService) ListAll(ctx context.Context) ([]*models.Job, error) {
	return s.repomanager.Jobs(s.db).List(ctx)
}

func (s *JobService) ListMine(ctx context.Context, caller *models.Account) ([]*models.Job, error) {
	return s.repomanager.Jobs(s.db).ListByAccount(ctx, caller.ID)
}

// Update applies patch to a job the caller is linked to. Admins may update any job.
func (s *JobService) Update(ctx context.Context, caller *models.Account, patch *models.JobPatch) (*models.Job, error) {
	if patch.ID == 0 {
		return nil, common.NewValidationError("Job id is required")
	}

	var updated *models.Job
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		jobsRepo := s.repomanager.Jobs(tx)

		job, err := jobsRepo.GetByID(ctx, patch.ID)
		if err != nil {
			return err
		}
		if !caller.IsAdmin {
			if err := s.requireLink(ctx, s.repomanager.Ratings(tx), job.ID, caller.ID); err != nil {
				return err
			}
		}

		patch.Apply(job)
		if err := jobsRepo.Update(ctx, job); err != nil {
			return err
		}
		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateRating changes the caller's own rating of a job.
func (s *JobService) UpdateRating(ctx context.Context, caller *models.Account, jobID int64, patch *models.RatingPatch) (*models.Rating, error) {
	var updated *models.Rating
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Ratings(tx)

		rating, err := repo.Get(ctx, jobID, caller.ID)
		if err != nil {
			return err
		}
		patch.Apply(rating)
		if err := repo.UpdateUserRating(ctx, rating); err != nil {
			return err
		}
		updated = rating
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a job for an admin. For anyone else it drops the caller's
// own link, and the job goes with the last link.
func (s *JobService) Delete(ctx context.Context, caller *models.Account, jobID int64) error {
	jobDeleted := false
	err := dbx.WithRetryTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		jobsRepo := s.repomanager.Jobs(tx)
		ratingsRepo := s.repomanager.Ratings(tx)
		jobDeleted = false

		job, err := jobsRepo.GetByID(ctx, jobID)
		if err != nil {
			return err
		}
		if caller.IsAdmin {
			jobDeleted = true
			return jobsRepo.Delete(ctx, job.ID)
		}

		if err := s.requireLink(ctx, ratingsRepo, job.ID, caller.ID); err != nil {
			return err
		}
		if err := ratingsRepo.Delete(ctx, job.ID, caller.ID); err != nil {
			return err
		}
		remaining, err := ratingsRepo.CountForJob(ctx, job.ID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			jobDeleted = true
			return jobsRepo.Delete(ctx, job.ID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "job deleted", "job_id", jobID, "account_id", caller.ID, "job_removed", jobDeleted)
	return nil
}

func (s *JobService) requireLink(ctx context.Context, repo ratings.Repository, jobID, accountID int64) error {
	_, err := repo.Get(ctx, jobID, accountID)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrForbidden
	}
	return err
}
