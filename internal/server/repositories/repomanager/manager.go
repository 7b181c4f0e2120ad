package repomanager

import (
	"context"
	"database/sql"

	"github.com/InfinyLoop-Nexus/Oracle/internal/dbx"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/accounts"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/jobs"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/ratings"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/searches"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Jobs(db dbx.DBTX) jobs.Repository
	Ratings(db dbx.DBTX) ratings.Repository
	Searches(db dbx.DBTX) searches.Repository
}
