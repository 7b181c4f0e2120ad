package services

import (
	"context"
	"database/sql"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/InfinyLoop-Nexus/Oracle/internal/dbx"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/repomanager"
)

type SearchService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewSearchService(db *sql.DB, m repomanager.RepositoryManager) *SearchService {
	return &SearchService{db: db, repomanager: m}
}

func (s *SearchService) ListAll(ctx context.Context) ([]*models.Search, error) {
	return s.repomanager.Searches(s.db).List(ctx)
}

func (s *SearchService) ListMine(ctx context.Context, caller *models.Account) ([]*models.Search, error) {
	return s.repomanager.Searches(s.db).ListByAccount(ctx, caller.ID)
}

// Upsert creates a search owned by the caller, or updates an existing one the
// caller owns. Admins may update any search; the owner stays unchanged.
func (s *SearchService) Upsert(ctx context.Context, caller *models.Account, search *models.Search) (*models.Search, error) {
	if search.ID == 0 {
		search.AccountID = caller.ID
		return s.repomanager.Searches(s.db).Create(ctx, search)
	}

	var saved *models.Search
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Searches(tx)

		existing, err := repo.GetByID(ctx, search.ID)
		if err != nil {
			return err
		}
		if existing.AccountID != caller.ID && !caller.IsAdmin {
			return common.ErrForbidden
		}

		search.AccountID = existing.AccountID
		saved, err = repo.Update(ctx, search)
		return err
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}
