package server

import (
	"database/sql"

	"github.com/InfinyLoop-Nexus/Oracle/internal/logging"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/auth"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/config"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/credentials"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/repomanager"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/services"
)

// Services is the set of domain services shared by the HTTP API and the
// admin tool.
type Services struct {
	Tokens   *auth.Service
	Accounts *services.AccountService
	Jobs     *services.JobService
	Searches *services.SearchService
	Guard    *services.Guard
}

// NewServices builds the services over db. revocations may be nil.
func NewServices(db *sql.DB, rm repomanager.RepositoryManager, c *config.Config, revocations auth.RevocationSet, logger logging.Logger) *Services {
	var opts []auth.Option
	if revocations != nil {
		opts = append(opts, auth.WithRevocations(revocations))
	}
	tokens := auth.NewService([]byte(c.SecretKey), c.TokenTTL, c.TokenLeeway, opts...)

	return &Services{
		Tokens:   tokens,
		Accounts: services.NewAccountService(db, rm, credentials.NewHasher(c.BcryptCost), tokens, logger),
		Jobs:     services.NewJobService(db, rm, logger),
		Searches: services.NewSearchService(db, rm),
		Guard:    services.NewGuard(db, rm, tokens),
	}
}
