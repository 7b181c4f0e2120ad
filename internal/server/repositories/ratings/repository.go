package ratings

import (
	"context"

	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
)

type Repository interface {
	// Create links the account to the job. An existing link yields
	// common.ErrAlreadyExists.
	Create(ctx context.Context, rating *models.Rating) (*models.Rating, error)
	Get(ctx context.Context, jobID, accountID int64) (*models.Rating, error)
	UpdateUserRating(ctx context.Context, rating *models.Rating) error
	Delete(ctx context.Context, jobID, accountID int64) error
	CountForJob(ctx context.Context, jobID int64) (int, error)
}
