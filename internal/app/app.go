package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	pb "github.com/godilite/rating-report/api/v1"
	"github.com/godilite/rating-report/internal/config"
	handler "github.com/godilite/rating-report/internal/grpc"
	"github.com/godilite/rating-report/internal/httpapi"
	"github.com/godilite/rating-report/internal/metrics"
	"github.com/godilite/rating-report/internal/repository"
	"github.com/godilite/rating-report/internal/service"
	"github.com/godilite/rating-report/pkg/cache"
	dbbuilder "github.com/godilite/rating-report/pkg/database"
	grpcsrv "github.com/godilite/rating-report/pkg/grpc/server"
)

const (
	cacheKeyPrefix  = "rating-report:"
	shutdownTimeout = 10 * time.Second
)

type App struct {
	logger     *zap.Logger
	dbPool     *sql.DB
	cache      *cache.Cache
	grpcServer *grpcsrv.Server
	httpServer *httpapi.Server
	httpErr    chan error
}

func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	metrics.Register()

	dbPool, err := dbbuilder.New(
		dbbuilder.WithDriver(cfg.DBDriver),
		dbbuilder.WithDataSource(cfg.DBPath),
		dbbuilder.WithLogger(logger),
		dbbuilder.WithBootstrap(repository.EnsureSchema),
	)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}
	logger.Info("Database pool initialized", zap.String("path", cfg.DBPath))

	a := &App{logger: logger, dbPool: dbPool, httpErr: make(chan error, 1)}

	// An untyped nil Cacher disables caching in the handlers.
	var cacher handler.Cacher
	if cfg.CacheEnabled {
		a.cache, err = cache.New(ctx,
			cache.WithAddress(cfg.RedisAddr),
			cache.WithPassword(cfg.RedisPassword),
			cache.WithDB(cfg.RedisDB),
			cache.WithKeyPrefix(cacheKeyPrefix),
			cache.WithLogger(logger),
		)
		if err != nil {
			_ = dbPool.Close()
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		cacher = a.cache
		logger.Info("Cache client initialized", zap.String("addr", cfg.RedisAddr), zap.Duration("ttl", cfg.CacheTTL))
	} else {
		logger.Info("Cache disabled")
	}

	metaRepo := repository.NewPostMetaRepository(dbPool)
	settingsRepo := repository.NewSettingsRepository(dbPool)

	reportService := service.NewReportService(metaRepo, settingsRepo, logger)
	migrationService := service.NewMigrationService(metaRepo, cfg.MigrationBatchSize, logger)

	grpcHandlers := handler.NewGRPCHandlers(reportService, migrationService, cacher, logger, cfg.CacheTTL)

	a.grpcServer, err = grpcsrv.New(
		grpcsrv.WithPort(cfg.GRPCPort),
		grpcsrv.WithLogger(logger),
		grpcsrv.WithLogging(true),
		grpcsrv.WithReflection(cfg.GRPCReflectionEnabled),
	)
	if err != nil {
		a.closeStores()
		return nil, fmt.Errorf("failed to create gRPC server: %w", err)
	}

	a.grpcServer.RegisterServiceWithHealth(pb.ServiceName, func(s *grpc.Server) {
		pb.RegisterRatingReportServer(s, grpcHandlers)
	})

	httpHandlers := httpapi.NewHandlers(reportService, migrationService, grpcHandlers, logger)
	a.httpServer = httpapi.NewServer(cfg.HTTPPort, httpapi.NewRouter(httpHandlers, cfg.AdminToken, logger), logger)

	return a, nil
}

// Start launches both servers and returns immediately.
func (a *App) Start() {
	a.grpcServer.Start()
	go func() {
		a.httpErr <- a.httpServer.Start()
	}()
}

// Run starts the application and blocks until a shutdown signal is received
// or the HTTP server fails.
func (a *App) Run() error {
	a.logger.Info("application starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a.Start()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-a.httpErr:
		if runErr != nil {
			a.logger.Error("HTTP server stopped unexpectedly", zap.Error(runErr))
		}
	}

	a.logger.Info("application shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}

	_ = a.logger.Sync()
	return runErr
}

// Shutdown stops both servers then closes the cache and the database.
func (a *App) Shutdown(ctx context.Context) error {
	var errs []error

	if err := a.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if err := a.grpcServer.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("grpc shutdown: %w", err))
	}
	a.closeStores()

	if ctx.Err() == context.DeadlineExceeded {
		a.logger.Warn("shutdown completed but deadline exceeded")
	} else if len(errs) == 0 {
		a.logger.Info("graceful shutdown completed successfully")
	}
	return errors.Join(errs...)
}

func (a *App) closeStores() {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("cache shutdown error", zap.Error(err))
		}
	}
	if err := a.dbPool.Close(); err != nil {
		a.logger.Error("database shutdown error", zap.Error(err))
	}
}

// GRPCAddr is the address the gRPC server listens on.
func (a *App) GRPCAddr() string {
	return a.grpcServer.Addr().String()
}
