package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/yakoovad/groupmatch/internal/api"
	"github.com/yakoovad/groupmatch/internal/auth"
	"github.com/yakoovad/groupmatch/internal/config"
	"github.com/yakoovad/groupmatch/internal/db"
	"github.com/yakoovad/groupmatch/internal/repository"
	"github.com/yakoovad/groupmatch/internal/service"
	"github.com/yakoovad/groupmatch/pkg/logger"
	"go.uber.org/zap"
)

const version = "v0.1.0"

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, cfg, log); err != nil {
		log.Fatal("application stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("starting application", zap.String("version", version), zap.String("addr", cfg.HTTP.Addr))

	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return errors.Wrap(err, "failed to parse database url")
	}
	poolCfg.MaxConns = cfg.Database.MaxConnections

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer pool.Close()

	if err = pool.Ping(ctx); err != nil {
		return errors.Wrap(err, "failed to ping database")
	}

	log.Info("database connection established")

	if cfg.Database.MigrateOnStart {
		if err = db.Migrate(cfg.Database.URL, log); err != nil {
			return err
		}
	}

	tokens, err := auth.NewTokenManager(cfg.TokenSecret)
	if err != nil {
		return err
	}

	healthChecker, err := api.NewHealthChecker(version, api.PingCheck("postgres", pool.Ping))
	if err != nil {
		return err
	}

	transactor := db.NewPgxTransactor(pool)

	groupRepo := repository.NewPgxGroupRepository(pool)
	projectRepo := repository.NewPgxProjectRepository(pool)
	profileRepo := repository.NewPgxProfileRepository(pool)
	joinRequestRepo := repository.NewPgxJoinRequestRepository(pool)
	organisationRepo := repository.NewPgxOrganisationRepository(pool)

	ledger := service.NewCapacityLedger(transactor).
		WithGroupRepo(groupRepo).
		WithProjectRepo(projectRepo).
		WithProfileRepo(profileRepo)

	group := service.NewGroupService(transactor).
		WithGroupRepo(groupRepo).
		WithProjectRepo(projectRepo).
		WithProfileRepo(profileRepo).
		WithJoinRequestRepo(joinRequestRepo).
		WithCapacityLedger(ledger)

	feed := service.NewFeedService().
		WithGroupRepo(groupRepo).
		WithProjectRepo(projectRepo).
		WithProfileRepo(profileRepo).
		WithJoinRequestRepo(joinRequestRepo)

	match := service.NewMatchService(transactor).
		WithGroupRepo(groupRepo).
		WithProjectRepo(projectRepo).
		WithJoinRequestRepo(joinRequestRepo).
		WithGroupService(group).
		WithCapacityLedger(ledger).
		WithNotifier(service.Notifiers{service.LogNotifier{}})

	project := service.NewProjectService().WithProjectRepo(projectRepo)
	profile := service.NewProfileService(transactor).WithProfileRepo(profileRepo)
	organisation := service.NewOrganisationService(transactor).
		WithOrganisationRepo(organisationRepo).
		WithProjectRepo(projectRepo).
		WithProfileRepo(profileRepo).
		WithGroupRepo(groupRepo).
		WithGroupService(group)

	e := echo.New()
	e.HideBanner = true

	handler := api.NewHandler(log).
		WithHealthChecker(healthChecker).
		WithTokenManager(tokens).
		WithFeedService(feed).
		WithMatchService(match).
		WithGroupService(group).
		WithCapacityLedger(ledger).
		WithProjectService(project).
		WithProfileService(profile).
		WithOrganisationService(organisation)

	handler.RegisterRoutes(e)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := e.Start(cfg.HTTP.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err = <-serverErr:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	log.Info("shutting down", zap.Duration("timeout", cfg.HTTP.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err = e.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down server")
	}

	log.Info("server stopped")
	return nil
}
