// Package services contains the server-side business logic: account
// management with the administrator invariant, the access guards, job
// claiming and linking, and saved searches.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/InfinyLoop-Nexus/Oracle/internal/dbx"
	"github.com/InfinyLoop-Nexus/Oracle/internal/logging"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/auth"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/repomanager"
)

// PasswordHasher is implemented by credentials.Hasher.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, credential string) bool
	VerifyDummy(plaintext string)
}

// TokenService is implemented by auth.Service.
type TokenService interface {
	Issue(accountID int64, username string, tier auth.Tier) (string, error)
	Validate(ctx context.Context, token string) (*auth.Claims, error)
	Revoke(ctx context.Context, claims *auth.Claims) error
}

type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountService registers accounts, logs them in, and manages the admin flag
// and account deletion without ever leaving the system without an admin.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenService
	log         logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenService, log logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		log:         log.With("module", "accounts"),
	}
}

// Register creates a regular account. Every policy problem is reported at once
// as a *common.ValidationError.
func (s *AccountService) Register(ctx context.Context, r Registration) (*models.Account, error) {
	return s.register(ctx, r, false)
}

// RegisterAdmin provisions an administrator. Only the admin CLI calls it.
func (s *AccountService) RegisterAdmin(ctx context.Context, r Registration) (*models.Account, error) {
	return s.register(ctx, r, true)
}

func (s *AccountService) register(ctx context.Context, r Registration, admin bool) (*models.Account, error) {
	repo := s.repomanager.Accounts(s.db)

	usernameTaken, emailTaken, err := repo.FindConflicts(ctx, r.Username, r.Email)
	if err != nil {
		return nil, err
	}

	var problems []string
	if usernameTaken {
		problems = append(problems, msgUsernameExists)
	}
	if emailTaken {
		problems = append(problems, msgEmailExists)
	}
	problems = append(problems, formatProblems(r.Username, r.Email, r.Password)...)
	if err := common.NewValidationError(problems...); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		return nil, err
	}

	account, err := repo.Create(ctx, &models.Account{
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: hash,
		IsAdmin:      admin,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "account registered", "account_id", account.ID, "admin", admin)
	return account, nil
}

// Login checks the password and issues an untrusted-tier token. An unknown
// account and a wrong password both yield common.ErrInvalidCredentials.
func (s *AccountService) Login(ctx context.Context, login, password string) (string, error) {
	account, err := s.repomanager.Accounts(s.db).GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyDummy(password)
			return "", common.ErrInvalidCredentials
		}
		return "", err
	}

	if !s.hasher.Verify(password, account.PasswordHash) {
		return "", common.ErrInvalidCredentials
	}

	return s.tokens.Issue(account.ID, account.Username, auth.TierUntrusted)
}

// IssueToken mints a token for an existing account without a password check.
// It backs the admin CLI.
func (s *AccountService) IssueToken(ctx context.Context, username string, tier auth.Tier) (string, error) {
	account, err := s.repomanager.Accounts(s.db).GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(account.ID, account.Username, tier)
}

func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	return s.tokens.Revoke(ctx, claims)
}

func (s *AccountService) List(ctx context.Context) ([]*models.Account, error) {
	return s.repomanager.Accounts(s.db).List(ctx)
}

func (s *AccountService) Promote(ctx context.Context, username string) error {
	repo := s.repomanager.Accounts(s.db)

	account, err := repo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if account.IsAdmin {
		return common.ErrAlreadyAdmin
	}
	if err := repo.SetAdmin(ctx, account.ID, true); err != nil {
		return err
	}

	s.log.Info(ctx, "account promoted", "account_id", account.ID)
	return nil
}

// Demote clears the admin flag unless the account is the last administrator.
func (s *AccountService) Demote(ctx context.Context, username string) error {
	var demoted int64
	err := dbx.WithRetryTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		admins, err := repo.LockAdmins(ctx)
		if err != nil {
			return err
		}
		target, err := repo.GetByUsername(ctx, username)
		if err != nil {
			return err
		}
		if !target.IsAdmin {
			return common.ErrNotAdmin
		}
		if !canRemoveAdmin(target, admins) {
			return common.ErrInvariantViolation
		}

		demoted = target.ID
		return repo.SetAdmin(ctx, target.ID, false)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "account demoted", "account_id", demoted)
	return nil
}

// DeleteSelf removes the caller's own account.
func (s *AccountService) DeleteSelf(ctx context.Context, caller *models.Account) error {
	return s.deleteGuarded(ctx, caller.ID, caller.ID)
}

// DeleteAccount is the delete-other entry point. Authorization is decided
// from the caller alone before the store is touched.
func (s *AccountService) DeleteAccount(ctx context.Context, caller *models.Account, targetID int64) error {
	if targetID == caller.ID {
		if caller.IsAdmin {
			return common.ErrUseSelfServiceRoute
		}
		return s.DeleteSelf(ctx, caller)
	}
	if !caller.IsAdmin {
		return common.ErrForbidden
	}
	return s.deleteGuarded(ctx, caller.ID, targetID)
}

func (s *AccountService) deleteGuarded(ctx context.Context, callerID, targetID int64) error {
	err := dbx.WithRetryTx(ctx, s.db, dbx.Serializable, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		admins, err := repo.LockAdmins(ctx)
		if err != nil {
			return err
		}
		target, err := repo.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if !canRemoveAdmin(target, admins) {
			return common.ErrInvariantViolation
		}
		return repo.Delete(ctx, target.ID)
	})
	if err != nil {
		return err
	}

	s.log.Info(ctx, "account deleted", "account_id", targetID, "by", callerID)
	return nil
}

// canRemoveAdmin reports whether target may stop being an administrator.
// lockedAdmins must come from LockAdmins in the same transaction.
func canRemoveAdmin(target *models.Account, lockedAdmins []int64) bool {
	if !target.IsAdmin {
		return true
	}
	return len(lockedAdmins) > 1
}

// wrapInternal tags unexpected failures so the boundary answers with a
// generic message.
func wrapInternal(err error) error {
	return fmt.Errorf("%w: %v", common.ErrorInternal, err)
}
