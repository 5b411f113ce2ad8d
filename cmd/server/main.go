package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/assetvault/internal/adapter/custody"
	httpAdapter "github.com/iho/assetvault/internal/adapter/http"
	"github.com/iho/assetvault/internal/adapter/http/handler"
	"github.com/iho/assetvault/internal/adapter/http/middleware"
	"github.com/iho/assetvault/internal/adapter/pricefeed"
	"github.com/iho/assetvault/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/assetvault/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/assetvault/internal/adapter/repository/redis"
	"github.com/iho/assetvault/internal/adapter/stream"
	"github.com/iho/assetvault/internal/domain"
	"github.com/iho/assetvault/internal/infrastructure/auth"
	"github.com/iho/assetvault/internal/infrastructure/config"
	"github.com/iho/assetvault/internal/infrastructure/eventpublisher"
	"github.com/iho/assetvault/internal/infrastructure/logger"
	"github.com/iho/assetvault/internal/infrastructure/metrics"
	"github.com/iho/assetvault/internal/infrastructure/postgres"
	"github.com/iho/assetvault/internal/infrastructure/redis"
	"github.com/iho/assetvault/internal/infrastructure/scheduler"
	"github.com/iho/assetvault/internal/usecase"
)

const limiterMaxIdle = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run(cfg *config.Config, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer store.close()

	var checks []handler.Check
	checks = append(checks, store.checks...)

	// Redis is optional; without it requests are not deduplicated.
	var idempotency *middleware.IdempotencyMiddleware
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		idempotency = middleware.NewIdempotencyMiddleware(redisRepo.NewIdempotencyStore(redisClient), cfg.IdempotencyTTL)
		checks = append(checks, redisCheck(redisClient))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	feed, err := newPriceFeed(cfg, log)
	if err != nil {
		return err
	}

	idGen := postgresRepo.NewULIDGenerator()
	gateway := custody.NewGateway(cfg.NativeAssetID)

	governance := usecase.NewGovernanceUseCase(store.txManager, store.roles, store.vault, store.outbox, idGen, log)
	oracle := usecase.NewPriceOracle(feed, cfg.StalenessWindow).WithMetrics(m)
	registry := usecase.NewAssetRegistry(
		store.txManager, store.assets, store.vault, store.outbox,
		governance, oracle, idGen, cfg.NativeAssetID, log,
	)
	if store.retrier != nil {
		governance.WithRetrier(store.retrier)
		registry.WithRetrier(store.retrier)
	}
	history := usecase.NewHistoryUseCase(store.history)
	ledger := usecase.NewLedgerUseCase(
		store.txManager, registry, oracle, history,
		store.balances, store.vault, store.outbox,
		governance, gateway, idGen,
		usecase.LedgerConfig{
			BankCapUSD:      cfg.BankCapUSD,
			WithdrawalLimit: cfg.WithdrawalLimit,
		},
		log,
	).WithMetrics(m)
	reconciliation := usecase.NewReconciliationUseCase(store.txManager, store.assets, store.balances, store.vault, log).
		WithMetrics(m)

	if err := governance.Bootstrap(ctx, cfg.OwnerPrincipal); err != nil {
		return fmt.Errorf("failed to bootstrap owner: %w", err)
	}
	if err := bootstrapNativeAsset(ctx, registry, cfg); err != nil {
		return err
	}

	hub := stream.NewHub(log, m)
	go hub.Run(ctx)

	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: store.outbox,
		Publisher:  eventpublisher.MultiPublisher{eventpublisher.NewLogPublisher(log), hub},
		Counter:    m,
		Logger:     log,
		Interval:   cfg.EventPublishInterval,
		Retention:  cfg.EventRetention,
	})
	go func() {
		if err := publisher.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("event publisher stopped")
		}
	}()

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithHitCounter(m.RateLimitHits)
	}

	jobs := scheduler.New(log, time.Minute)
	if _, err := jobs.AddReconciliation(cfg.ReconcileSchedule, reconciliation); err != nil {
		return err
	}
	if limiter != nil {
		if _, err := jobs.AddJob("limiter-cleanup", "@every 5m", func(context.Context) error {
			removed := limiter.CleanupLimiters(limiterMaxIdle)
			log.Debug().Int("removed", removed).Msg("idle rate limiters removed")
			return nil
		}); err != nil {
			return err
		}
	}
	jobs.Start()

	routerCfg := httpAdapter.RouterConfig{
		AssetHandler:   handler.NewAssetHandler(registry),
		LedgerHandler:  handler.NewLedgerHandler(ledger, history),
		AdminHandler:   handler.NewAdminHandler(governance, reconciliation),
		CustodyHandler: handler.NewCustodyHandler(gateway, governance),
		HealthHandler:  handler.NewHealthHandler(checks...),
		Stream:         hub,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Metrics:        m,
		Idempotency:    idempotency,
		RateLimiter:    limiter,
		Logger:         log,
	}
	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
		log.Info().Msg("bearer token authentication enabled")
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := jobs.Stop(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("scheduled jobs did not finish before shutdown")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// storage bundles the repositories of one driver.
type storage struct {
	txManager usecase.TransactionManager
	assets    usecase.AssetRepository
	balances  usecase.BalanceRepository
	vault     usecase.VaultRepository
	roles     usecase.RoleRepository
	history   usecase.HistoryRepository
	outbox    usecase.OutboxRepository
	retrier   usecase.Retrier
	checks    []handler.Check
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*storage, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn().Msg("using in-memory storage, state is lost on restart")
		return newMemoryStorage(), nil
	}

	if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
	defer cancel()

	pool, err := postgres.NewPool(connectCtx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")

	return &storage{
		txManager: postgresRepo.NewTxManager(pool),
		assets:    postgresRepo.NewAssetRepository(pool),
		balances:  postgresRepo.NewBalanceRepository(pool),
		vault:     postgresRepo.NewVaultRepository(pool),
		roles:     postgresRepo.NewRoleRepository(pool),
		history:   postgresRepo.NewHistoryRepository(pool),
		outbox:    postgresRepo.NewOutboxRepository(pool),
		retrier:   postgresRepo.NewRetrier(log),
		checks:    []handler.Check{{Name: "postgres", Ping: pool.Ping}},
		close:     pool.Close,
	}, nil
}

func newMemoryStorage() *storage {
	store := memory.NewStore()
	return &storage{
		txManager: memory.NewTxManager(store),
		assets:    memory.NewAssetRepository(store),
		balances:  memory.NewBalanceRepository(store),
		vault:     memory.NewVaultRepository(store),
		roles:     memory.NewRoleRepository(store),
		history:   memory.NewHistoryRepository(store),
		outbox:    memory.NewOutboxRepository(store),
		close:     func() {},
	}
}

func redisCheck(client *goredis.Client) handler.Check {
	return handler.Check{
		Name: "redis",
		Ping: func(ctx context.Context) error { return client.Ping(ctx).Err() },
	}
}

// newPriceFeed returns the remote feed when PRICE_FEED_URL is set and the
// static feed otherwise.
func newPriceFeed(cfg *config.Config, log zerolog.Logger) (usecase.PriceFeed, error) {
	if cfg.PriceFeedURL != "" {
		log.Info().Str("url", cfg.PriceFeedURL).Msg("using remote price feed")
		return pricefeed.NewHTTPFeed(cfg.PriceFeedURL, cfg.PriceFeedTimeout, log), nil
	}

	prices, err := cfg.ParsedStaticPrices()
	if err != nil {
		return nil, err
	}
	log.Info().Int("feeds", len(prices)).Msg("using static price feed")
	return pricefeed.NewStaticFeed(prices), nil
}

// bootstrapNativeAsset registers the native asset on first start.
func bootstrapNativeAsset(ctx context.Context, registry *usecase.AssetRegistry, cfg *config.Config) error {
	if cfg.NativePriceFeed == "" {
		return nil
	}

	_, err := registry.AddAsset(ctx, usecase.AddAssetInput{
		Caller:         cfg.OwnerPrincipal,
		AssetID:        cfg.NativeAssetID,
		NativeDecimals: cfg.NativeDecimals,
		PriceFeed:      cfg.NativePriceFeed,
	})
	if err != nil && !errors.Is(err, domain.ErrAssetAlreadyExists) {
		return fmt.Errorf("failed to register native asset: %w", err)
	}
	return nil
}
