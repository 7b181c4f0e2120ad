package jobs

import (
	"context"

	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, job *models.Job) (*models.Job, error)
	GetByID(ctx context.Context, id int64) (*models.Job, error)
	GetByIID(ctx context.Context, iid string) (*models.Job, error)
	List(ctx context.Context) ([]*models.Job, error)
	// ListByAccount returns the jobs the account holds a rating for.
	ListByAccount(ctx context.Context, accountID int64) ([]*models.Job, error)
	Update(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id int64) error
}
