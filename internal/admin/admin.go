// Package admin implements the oracle-admin command line: provisioning the
// first administrator, promoting and demoting accounts, and issuing trusted
// tokens for first-party tooling.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/InfinyLoop-Nexus/Oracle/internal/common"
	"github.com/InfinyLoop-Nexus/Oracle/internal/logging"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/auth"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/config"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/models"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/repomanager"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// AccountOps is the part of services.AccountService the commands use.
type AccountOps interface {
	RegisterAdmin(ctx context.Context, r services.Registration) (*models.Account, error)
	Promote(ctx context.Context, username string) error
	Demote(ctx context.Context, username string) error
	IssueToken(ctx context.Context, username string, tier auth.Tier) (string, error)
}

// Opener connects to storage for one command run. The returned func releases
// whatever was opened.
type Opener func(ctx context.Context, cfg *config.Config) (AccountOps, func() error, error)

// OpenPostgres migrates the database and builds the account service over it.
func OpenPostgres(ctx context.Context, cfg *config.Config) (AccountOps, func() error, error) {
	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}

	logger := logging.NewJSON(os.Stderr, cfg.Environment)
	return server.NewServices(db, rm, cfg, nil, logger).Accounts, db.Close, nil
}

type options struct {
	configPath string
	dsn        string
	secret     string
	open       Opener
}

func NewRootCmd(open Opener) *cobra.Command {
	o := &options{open: open}

	cmd := &cobra.Command{
		Use:           "oracle-admin",
		Short:         "Administrative tasks for the Oracle server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "path to JSON config file")
	cmd.PersistentFlags().StringVar(&o.dsn, "dsn", "", "PostgreSQL DSN (overrides config)")
	cmd.PersistentFlags().StringVar(&o.secret, "secret", "", "token signing secret (overrides config)")

	cmd.AddCommand(
		createAdminCmd(o),
		promoteCmd(o),
		demoteCmd(o),
		issueTokenCmd(o),
	)
	return cmd
}

// run loads config, opens storage and calls fn with the account operations.
func (o *options) run(ctx context.Context, fn func(AccountOps) error) error {
	cfg, err := config.LoadForTool(o.configPath)
	if err != nil {
		return err
	}
	if o.dsn != "" {
		cfg.DatabaseDSN = o.dsn
	}
	if o.secret != "" {
		cfg.SecretKey = o.secret
	}
	if err := cfg.Finalize(); err != nil {
		return err
	}

	ops, closeFn, err := o.open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	return describe(fn(ops))
}

// describe flattens validation problems into one readable error.
func describe(err error) error {
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		return errors.New(strings.Join(verr.Problems, "\n"))
	}
	return err
}

func createAdminCmd(o *options) *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Long:  "Create an administrator account. The password is read from the terminal and must satisfy the registration policy.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			password, err := promptPassword(cmd.OutOrStdout())
			if err != nil {
				return err
			}

			return o.run(cmd.Context(), func(ops AccountOps) error {
				account, err := ops.RegisterAdmin(cmd.Context(), services.Registration{
					Username: username,
					Email:    email,
					Password: password,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created administrator %s (id %d)\n", account.Username, account.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func promoteCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "promote <username>",
		Short: "Grant administrator rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), func(ops AccountOps) error {
				if err := ops.Promote(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is now an administrator\n", args[0])
				return nil
			})
		},
	}
}

func demoteCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "demote <username>",
		Short: "Revoke administrator rights",
		Long:  "Revoke administrator rights. Refused when it would leave no administrator.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), func(ops AccountOps) error {
				if err := ops.Demote(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s is no longer an administrator\n", args[0])
				return nil
			})
		},
	}
}

func issueTokenCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "issue-token <username>",
		Short: "Print a trusted-tier session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.run(cmd.Context(), func(ops AccountOps) error {
				token, err := ops.IssueToken(cmd.Context(), args[0], auth.TierTrusted)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
}

func promptPassword(w io.Writer) (string, error) {
	fmt.Fprint(w, "Enter password: ")
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}
