package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/promatch-inc/promatch-engine/pkg/auth"
	"github.com/promatch-inc/promatch-engine/pkg/cache"
	"github.com/promatch-inc/promatch-engine/pkg/config"
	"github.com/promatch-inc/promatch-engine/pkg/content"
	"github.com/promatch-inc/promatch-engine/pkg/database"
	"github.com/promatch-inc/promatch-engine/pkg/handlers"
	"github.com/promatch-inc/promatch-engine/pkg/logging"
	"github.com/promatch-inc/promatch-engine/pkg/middleware"
	"github.com/promatch-inc/promatch-engine/pkg/repositories"
	"github.com/promatch-inc/promatch-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	// Load configuration
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.Bool("auth_verification", cfg.Auth.EnableVerification),
		zap.String("database", logging.SanitizeConnectionString(cfg.Database.ConnectionString())),
		zap.String("redis_host", cfg.Redis.Host))

	ctx := context.Background()

	// Run migrations before the pool comes up
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open database for migrations", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = migrationDB.Close()

	// Connection pool
	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional; the listing cache degrades to pass-through without it
	rdb, err := database.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	listingCache := cache.NewProjectListCache(rdb,
		time.Duration(cfg.Platform.ListingCacheTTLSeconds)*time.Second, logger)

	// Authentication
	jwksClient, err := auth.NewJWKSClient(&auth.JWKSConfig{
		EnableVerification: cfg.Auth.EnableVerification,
		JWKSEndpoints:      cfg.Auth.JWKSEndpoints,
	})
	if err != nil {
		logger.Fatal("Failed to create JWKS client", zap.Error(err))
	}
	defer jwksClient.Close()

	authService := auth.NewAuthService(jwksClient, logger)
	authMiddleware := auth.NewMiddleware(authService, logger)

	// Repositories and services
	screener := content.NewScreener(logger)
	projectRepo := repositories.NewProjectRepository()
	proposalRepo := repositories.NewProposalRepository()
	contractRepo := repositories.NewContractRepository()
	userRepo := repositories.NewUserRepository()

	projectService := services.NewProjectService(projectRepo, proposalRepo, userRepo, screener, listingCache, logger)
	lifecycleService := services.NewLifecycleService(projectRepo, proposalRepo, contractRepo, userRepo,
		screener, listingCache, cfg.Platform.FeePercent, logger)
	contractService := services.NewContractService(contractRepo, logger)

	// HTTP surface
	mux := http.NewServeMux()
	scope := handlers.ScopeMiddleware(database.WithRequestScope(db, logger))

	healthHandler := handlers.NewHealthHandler(cfg, logger)
	healthHandler.RegisterRoutes(mux)

	projectsHandler := handlers.NewProjectsHandler(projectService, logger)
	projectsHandler.RegisterRoutes(mux, authMiddleware, scope)

	proposalsHandler := handlers.NewProposalsHandler(lifecycleService, logger)
	proposalsHandler.RegisterRoutes(mux, authMiddleware, scope)

	contractsHandler := handlers.NewContractsHandler(contractService, lifecycleService, logger)
	contractsHandler.RegisterRoutes(mux, authMiddleware, scope)

	mux.Handle("/metrics", promhttp.Handler())

	handler := middleware.RequestLogger(logger)(middleware.Metrics()(mux))

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting promatch-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
