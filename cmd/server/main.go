package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	catalogapp "github.com/rakshit782/marketplace-sync-dashboard/internal/application/catalog"
	credentialapp "github.com/rakshit782/marketplace-sync-dashboard/internal/application/credential"
	syncapp "github.com/rakshit782/marketplace-sync-dashboard/internal/application/sync"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/domain/integration"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/auth"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/cache"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/credentials"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/logger"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/marketplace"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/persistence"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/telemetry"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/interfaces/http/handler"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/interfaces/http/middleware"
	"github.com/rakshit782/marketplace-sync-dashboard/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting marketplace sync dashboard",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := meterProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	syncMetrics, err := telemetry.NewSyncMetrics(meterProvider.Meter("marketplace-sync"))
	if err != nil {
		log.Fatal("Failed to create sync metrics", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	productRepo := persistence.NewGormProductRepository(db.DB, cfg.Sync.BatchSize)
	credentialRepo := persistence.NewGormCredentialRepository(db.DB)

	var ssmClient credentials.ParameterAPI
	if cfg.Credentials.Source == config.CredentialSourceSSM {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Credentials.AWSRegion))
		if err != nil {
			log.Fatal("Failed to load AWS configuration", zap.Error(err))
		}
		ssmClient = ssm.NewFromConfig(awsCfg)
	}

	source, err := credentials.NewSource(cfg.Credentials, credentialRepo, ssmClient)
	if err != nil {
		log.Fatal("Failed to configure credential source", zap.Error(err))
	}
	credentialStore := cache.NewStore[integration.CredentialSet](cfg.Redis, "creds", log)
	resolver := credentials.NewResolver(source, credentialStore, cfg.Credentials.CacheTTL, log)
	log.Info("Credential source configured", zap.String("source", string(cfg.Credentials.Source)))

	tokenBroker := marketplace.NewTokenBroker(cfg.Amazon, cfg.Walmart, nil, log)
	registry := marketplace.NewRegistry(
		marketplace.NewAmazonAdapter(cfg.Amazon, cfg.Sync.AmazonPageSize),
		marketplace.NewWalmartAdapter(cfg.Walmart, cfg.Sync.WalmartLimit),
	)

	catalogService := catalogapp.NewService(productRepo, resolver, tokenBroker, registry, log)
	credentialService := credentialapp.NewService(credentialRepo, resolver, log)
	syncService := syncapp.NewService(cfg.Sync, resolver, tokenBroker, registry, productRepo, syncMetrics, log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	systemHandler := handler.NewSystemHandler(db)
	engine.GET("/health", systemHandler.Health)

	verifier := auth.NewVerifier(cfg.JWT)
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuth(middleware.JWTConfig{
		Verifier:  verifier,
		SkipPaths: []string{"/api/v1/health"},
		Logger:    log,
	}))
	r.Register(systemHandler).
		Register(handler.NewProductHandler(catalogService)).
		Register(handler.NewListingHandler(catalogService)).
		Register(handler.NewSyncHandler(syncService)).
		Register(handler.NewCredentialHandler(credentialService))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		// sync runs are synchronous and paced per page
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
