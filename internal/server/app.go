// Package server wires the bookledger application: it opens the store,
// applies migrations, seeds the admin account, builds the services and runs
// the REST and gRPC endpoints plus the periodic availability check until
// shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/bookledger/internal/dbx"
	"github.com/dmitrijs2005/bookledger/internal/logging"
	"github.com/dmitrijs2005/bookledger/internal/server/alerts"
	"github.com/dmitrijs2005/bookledger/internal/server/auth"
	"github.com/dmitrijs2005/bookledger/internal/server/config"
	"github.com/dmitrijs2005/bookledger/internal/server/httpapi"
	"github.com/dmitrijs2005/bookledger/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bookledger/internal/server/services"

	gs "github.com/dmitrijs2005/bookledger/internal/server/grpc"
)

// Store is an open, migrated database with the repository manager for its
// driver.
type Store struct {
	DB          *sql.DB
	RepoManager repomanager.RepositoryManager
}

// OpenStore connects to the configured database and applies migrations.
func OpenStore(ctx context.Context, c *config.Config) (*Store, error) {
	rm, err := repomanager.New(c.DatabaseDriver)
	if err != nil {
		return nil, err
	}

	db, err := dbx.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &Store{DB: db, RepoManager: rm}, nil
}

// NewSink builds the operator channel. Alerts are always logged; with the
// s3 sink they are also stored in the bucket.
func NewSink(ctx context.Context, c *config.Config, logger logging.Logger) (alerts.Sink, error) {
	logSink := alerts.NewLogSink(logger)
	if c.ReportSink != config.SinkS3 {
		return logSink, nil
	}

	client, err := alerts.NewS3Client(ctx, alerts.S3Settings{
		AccessKey:    c.S3AccessKey,
		SecretKey:    c.S3SecretKey,
		Region:       c.S3Region,
		BaseEndpoint: c.S3BaseEndpoint,
	})
	if err != nil {
		return nil, err
	}
	return alerts.Fanout{logSink, alerts.NewS3Sink(client, c.S3Bucket)}, nil
}

// Services are the application services over one store.
type Services struct {
	Identity    *services.IdentityService
	Catalog     *services.CatalogService
	Circulation *services.CirculationService
	Reconciler  *services.AvailabilityReconciler
	Stats       *services.StatisticsService
}

func NewServices(s *Store, c *config.Config, sink alerts.Sink, logger logging.Logger) *Services {
	reconciler := services.NewAvailabilityReconciler(s.DB, s.RepoManager, sink, logger)
	return &Services{
		Identity:    services.NewIdentityService(s.DB, s.RepoManager, auth.NewBcryptHasher(), c, logger),
		Catalog:     services.NewCatalogService(s.DB, s.RepoManager, logger),
		Circulation: services.NewCirculationService(s.DB, s.RepoManager, reconciler, logger),
		Reconciler:  reconciler,
		Stats:       services.NewStatisticsService(s.DB, s.RepoManager),
	}
}

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    *Store
	services *Services
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	store, err := OpenStore(ctx, c)
	if err != nil {
		return nil, err
	}

	sink, err := NewSink(ctx, c, logger)
	if err != nil {
		store.DB.Close()
		return nil, fmt.Errorf("report sink: %w", err)
	}

	svc := NewServices(store, c, sink, logger)

	created, err := svc.Identity.EnsureAdmin(ctx, c.AdminName, c.AdminEmail, c.AdminPassword)
	if err != nil {
		store.DB.Close()
		return nil, fmt.Errorf("admin seed: %w", err)
	}
	if created {
		logger.Info(ctx, "admin account created", "email", c.AdminEmail)
	}

	return &App{config: c, logger: logger, store: store, services: svc}, nil
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.services.Identity, app.services.Catalog,
		app.services.Circulation, app.services.Reconciler, app.services.Stats)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewHTTPServer(app.config, app.logger, httpapi.Services{
		Identity:    app.services.Identity,
		Catalog:     app.services.Catalog,
		Circulation: app.services.Circulation,
		Reconciler:  app.services.Reconciler,
		Stats:       app.services.Stats,
	})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives, then closes the
// store.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.services.Reconciler.RunPeriodic(ctx, app.config.ReconcileInterval)
	}()

	wg.Wait()

	if err := app.store.DB.Close(); err != nil {
		app.logger.Error(context.Background(), "db close", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
