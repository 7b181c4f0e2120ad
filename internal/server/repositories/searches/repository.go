package searches

import (
	"context"

	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, search *models.Search) (*models.Search, error)
	Update(ctx context.Context, search *models.Search) (*models.Search, error)
	GetByID(ctx context.Context, id int64) (*models.Search, error)
	List(ctx context.Context) ([]*models.Search, error)
	ListByAccount(ctx context.Context, accountID int64) ([]*models.Search, error)
}
