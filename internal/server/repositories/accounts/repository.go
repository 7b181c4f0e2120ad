package accounts

import (
	"context"

	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	// GetByLogin matches either the username or the email.
	GetByLogin(ctx context.Context, login string) (*models.Account, error)
	FindConflicts(ctx context.Context, username, email string) (usernameTaken, emailTaken bool, err error)
	List(ctx context.Context) ([]*models.Account, error)
	// LockAdmins row-locks every administrator and returns their ids.
	LockAdmins(ctx context.Context) ([]int64, error)
	SetAdmin(ctx context.Context, id int64, admin bool) error
	Delete(ctx context.Context, id int64) error
}
