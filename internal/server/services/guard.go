package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/auth"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/repomanager"
)

// Session is an authenticated caller: the account as currently stored and
// the claims of the token it presented.
type Session struct {
	Account *models.Account
	Claims  *auth.Claims
}

// Guard resolves bearer tokens to accounts. Nothing is cached between calls,
// so a demoted or deleted account loses access on its next request.
type Guard struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      TokenService
}

func NewGuard(db *sql.DB, m repomanager.RepositoryManager, tokens TokenService) *Guard {
	return &Guard{db: db, repomanager: m, tokens: tokens}
}

// RequireUser fails with common.ErrUnauthenticated for a missing, invalid,
// expired or revoked token and for a token whose account no longer exists.
func (g *Guard) RequireUser(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, common.ErrUnauthenticated
	}

	claims, err := g.tokens.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return nil, common.ErrUnauthenticated
		}
		return nil, wrapInternal(err)
	}

	id, err := claims.AccountID()
	if err != nil {
		return nil, common.ErrUnauthenticated
	}

	account, err := g.repomanager.Accounts(g.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, wrapInternal(err)
	}

	return &Session{Account: account, Claims: claims}, nil
}

// RequireAdmin is RequireUser plus common.ErrForbidden for non-admins.
func (g *Guard) RequireAdmin(ctx context.Context, token string) (*Session, error) {
	session, err := g.RequireUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if !session.Account.IsAdmin {
		return nil, common.ErrForbidden
	}
	return session, nil
}
