// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/factory"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/iam"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/platform"
	"github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/service/social"
	sdkAuth "github.com/AccelByte/accelbyte-go-sdk/services-api/pkg/utils/auth"
	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/AccelByte/extend-progression-engine/internal/bootstrap"
	"github.com/AccelByte/extend-progression-engine/internal/config"
	"github.com/AccelByte/extend-progression-engine/internal/server"
	"github.com/AccelByte/extend-progression-engine/pkg/common"
	"github.com/AccelByte/extend-progression-engine/pkg/daykey"
	"github.com/AccelByte/extend-progression-engine/pkg/handler"
	"github.com/AccelByte/extend-progression-engine/pkg/pipeline"
	"github.com/AccelByte/extend-progression-engine/pkg/service"
)

// App holds all application dependencies and manages the application lifecycle.
type App struct {
	cfg               *config.Config
	httpServer        *server.HTTPServer
	grpcServer        *server.GRPCServer
	metricsServer     *server.MetricsServer
	store             service.Store
	manager           *pipeline.Manager
	shutdownTelemetry func(context.Context) error

	// AccelByte SDK repositories (shared across all services)
	configRepo *sdkAuth.ConfigRepositoryImpl
	tokenRepo  *sdkAuth.TokenRepositoryImpl
}

// New creates and initializes a new application instance.
//
// ============================================================
// DEVELOPER: Application initialization order
// ============================================================
// Components are initialized in dependency order:
// 1. Engine config (tables, achievements, reward actions)
// 2. Store (redis, postgres or memory)
// 3. AccelByte SDK (only when rewards go to the platform)
// 4. Pipeline components (signal → rule → action → quota)
// 5. Servers (HTTP, gRPC health, metrics)
// 6. Telemetry (OpenTelemetry tracing)
//
// If you add new external dependencies, initialize them in
// step 3 before bootstrapping pipeline components.
// ============================================================
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logrus.Info("initializing application...")

	app := &App{cfg: cfg}

	// ============================================================
	// Step 1: Load engine configuration
	// ============================================================
	engineConfig, err := pipeline.LoadConfig(cfg.EngineConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load engine config from %s: %w", cfg.EngineConfigPath, err)
	}
	logrus.Infof("loaded engine configuration from %s", cfg.EngineConfigPath)

	tables, err := engineConfig.BuildTables()
	if err != nil {
		return nil, fmt.Errorf("failed to build progression tables: %w", err)
	}
	cal := daykey.NewCalendar(cfg.TimezoneOffsetHours)

	// ============================================================
	// Step 2: Initialize the store
	// ============================================================
	if err := app.initStore(ctx); err != nil {
		return nil, fmt.Errorf("failed to init %s store: %w", cfg.StoreBackend, err)
	}

	// ============================================================
	// Step 3: Initialize external services
	// ============================================================
	deps := service.NewDependencies()
	if cfg.ABEnabled {
		if err := app.initAccelByteSDKAuth(); err != nil {
			return nil, fmt.Errorf("failed to init AccelByte SDK: %w", err)
		}
		rewards := app.initPlatformRewards()
		deps = deps.
			WithGrantEntitlementService(rewards).
			WithStatUpdaterService(rewards)
	} else {
		logrus.Warn("AB_ENABLED is false: reward actions run in test mode")
	}

	var tiers service.TierLookup = app.store
	var tierCache *service.CachedTierLookup
	if cfg.TierCacheSize > 0 {
		tierCache, err = service.NewCachedTierLookup(app.store, cfg.TierCacheSize, cfg.TierCacheTTL)
		if err != nil {
			return nil, err
		}
		tiers = tierCache
	}

	// ============================================================
	// Step 4: Bootstrap pipeline components
	// ============================================================
	// Signal Processor → Rule Engine → Action Executor → Quota Tracker → Pipeline Manager
	// ============================================================
	processor := bootstrap.InitSignalProcessor(app.store, tables, cal, cfg.ABNamespace)

	ruleEngine, ruleRegistry, err := bootstrap.InitRuleEngine(engineConfig, tables)
	if err != nil {
		return nil, fmt.Errorf("failed to init rule engine: %w", err)
	}

	actionExecutor, actionRegistry, err := bootstrap.InitActionExecutor(engineConfig, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to init action executor: %w", err)
	}

	tracker := bootstrap.InitQuotaTracker(app.store, tiers, cal, engineConfig.QuotaLimits())

	app.manager = bootstrap.InitPipeline(app.store, processor, ruleEngine, actionExecutor, tracker, engineConfig).
		WithMaxClockSkew(cfg.MaxClockSkew)
	if tierCache != nil {
		app.manager.WithTierCache(tierCache)
	}

	// ============================================================
	// Validate pipeline wiring
	// ============================================================
	// This ensures every enabled rule and action in
	// config/engine.yaml made it into its registry.
	// ============================================================
	if err := pipeline.ValidateWiring(ruleRegistry, actionRegistry, engineConfig); err != nil {
		return nil, fmt.Errorf("pipeline wiring validation failed: %w", err)
	}
	logrus.Info("pipeline wiring validation passed")

	// ============================================================
	// Step 5: Setup servers
	// ============================================================
	checker := service.NewHealthChecker(app.store)

	app.httpServer = server.NewHTTPServer(cfg.HTTPPort, app.manager, checker, handler.RouterConfig{
		AllowedOrigins:     cfg.AllowedOrigins,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})
	if err := app.httpServer.Setup(cfg.Environment); err != nil {
		return nil, fmt.Errorf("failed to setup HTTP server: %w", err)
	}

	app.grpcServer = server.NewGRPCServer(cfg.GRPCPort, checker)
	if err := app.grpcServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	app.metricsServer = server.NewMetricsServer(cfg.MetricsPort, "/metrics")
	if err := app.metricsServer.Setup(); err != nil {
		return nil, fmt.Errorf("failed to setup metrics server: %w", err)
	}

	// ============================================================
	// Step 6: Setup telemetry
	// ============================================================
	shutdownTelemetry, err := server.SetupTelemetry(ctx, common.TracerConfig{
		ServiceName:    cfg.ServiceName,
		Environment:    cfg.Environment,
		ZipkinEndpoint: cfg.ZipkinEndpoint,
		SampleRatio:    cfg.TraceSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to setup telemetry: %w", err)
	}
	app.shutdownTelemetry = shutdownTelemetry

	logrus.Info("application initialized successfully")

	return app, nil
}

// initStore opens the configured backend and waits until it answers.
func (a *App) initStore(ctx context.Context) error {
	switch a.cfg.StoreBackend {
	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:         a.cfg.RedisHost + ":" + a.cfg.RedisPort,
			Password:     a.cfg.RedisPassword,
			DB:           0, // use default DB
			MaxRetries:   3,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		a.store = service.NewRedisStore(client, service.RedisStoreConfig{KeyPrefix: a.cfg.RedisKeyPrefix})

	case config.StorePostgres:
		db, err := gorm.Open(postgres.Open(a.cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		store, err := service.NewGormStore(db, service.GormStoreConfig{AutoMigrate: true})
		if err != nil {
			return err
		}
		a.store = store

	case config.StoreMemory:
		logrus.Warn("using the in-memory store: state is lost on restart")
		a.store = service.NewMemoryStore()
		return nil

	default:
		return fmt.Errorf("unknown store backend %q", a.cfg.StoreBackend)
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(a.cfg.RedisMaxRetries))
	err := backoff.Retry(
		func() error {
			if err := a.store.Ping(ctx); err != nil {
				logrus.Warnf("%s connection failed: %v, retrying...", a.cfg.StoreBackend, err)
				return err
			}
			return nil
		},
		backoff.WithContext(b, ctx),
	)
	if err != nil {
		return err
	}

	logrus.Infof("%s store initialized", a.cfg.StoreBackend)
	return nil
}

// initAccelByteSDKAuth initializes the AccelByte SDK auth by performing client login.
//
// ============================================================
// DEVELOPER: AccelByte Client Auth configuration
// ============================================================
// The Client Auth is configured via environment variables:
// - AB_BASE_URL: AccelByte platform base URL
// - AB_CLIENT_ID: OAuth2 client ID
// - AB_CLIENT_SECRET: OAuth2 client secret
// - AB_NAMESPACE: Game namespace
//
// The SDK uses automatic token refresh (RefreshRate: 0.8 = 80% of TTL).
//
// IMPORTANT: The configRepo and tokenRepo are stored in the App struct
// and must be reused by all AccelByte services to share authentication.
// ============================================================
func (a *App) initAccelByteSDKAuth() error {
	a.configRepo = sdkAuth.DefaultConfigRepositoryImpl()
	a.tokenRepo = sdkAuth.DefaultTokenRepositoryImpl()
	refreshRepo := &sdkAuth.RefreshTokenImpl{AutoRefresh: true, RefreshRate: 0.8}

	oauthService := iam.OAuth20Service{
		Client:                 factory.NewIamClient(a.configRepo),
		ConfigRepository:       a.configRepo,
		TokenRepository:        a.tokenRepo,
		RefreshTokenRepository: refreshRepo,
	}

	clientID := a.configRepo.GetClientId()
	clientSecret := a.configRepo.GetClientSecret()

	if err := oauthService.LoginClient(&clientID, &clientSecret); err != nil {
		return fmt.Errorf("unable to login using clientId and clientSecret: %w", err)
	}

	logrus.Info("AccelByte SDK initialized and authenticated")
	return nil
}

// initPlatformRewards builds the AccelByte reward clients.
//
// IMPORTANT: Reuses a.configRepo and a.tokenRepo to share the authenticated
// session from initAccelByteSDKAuth(). Do NOT create new repository instances.
func (a *App) initPlatformRewards() *service.PlatformRewards {
	fulfillment := &platform.FulfillmentService{
		Client:           factory.NewPlatformClient(a.configRepo),
		ConfigRepository: a.configRepo,
		TokenRepository:  a.tokenRepo,
	}
	userStatistic := &social.UserStatisticService{
		Client:           factory.NewSocialClient(a.configRepo),
		ConfigRepository: a.configRepo,
		TokenRepository:  a.tokenRepo,
	}

	return service.NewPlatformRewards(a.cfg.ABNamespace, fulfillment, userStatistic)
}
