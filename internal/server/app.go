// Package server wires configuration, storage, token handling and the HTTP
// API together and runs them until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/InfinyLoop-Nexus/Oracle/internal/logging"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/auth"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/config"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/repositories/repomanager"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/rest"
	"github.com/InfinyLoop-Nexus/Oracle/internal/server/revocation"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type runner interface {
	Run(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	server runner
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, c.Environment)

	if c.Environment == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	var (
		rc          *redis.Client
		revocations auth.RevocationSet
	)
	if c.RedisAddr != "" {
		rc, err = revocation.NewClient(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		revocations = revocation.NewStore(rc)
	} else {
		logger.Warn(ctx, "redis address not set, logout will not revoke tokens")
	}

	svc := NewServices(db, rm, c, revocations, logger)

	h := rest.NewHandler(svc.Guard, svc.Accounts, svc.Jobs, svc.Searches, logger.With("module", "rest"))
	srv := rest.NewServer(c.HTTPAddr, rest.NewRouter(h, rest.NewMetrics()), logger)

	return &App{config: c, logger: logger, db: db, redis: rc, server: srv}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run blocks until a signal arrives, ctx is cancelled or the HTTP server
// fails. Storage connections are closed before it returns.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			runErr = err
			cancelFunc()
		}
	}()

	wg.Wait()

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")

	return runErr
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Warn(ctx, "closing redis", "error", err)
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Warn(ctx, "closing database", "error", err)
		}
	}
}
