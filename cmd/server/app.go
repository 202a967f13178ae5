package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/cashledger/internal/adapter/http"
	"github.com/iho/cashledger/internal/adapter/http/handler"
	"github.com/iho/cashledger/internal/adapter/http/middleware"
	"github.com/iho/cashledger/internal/adapter/importer"
	"github.com/iho/cashledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/cashledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/cashledger/internal/adapter/repository/redis"
	sqliteRepo "github.com/iho/cashledger/internal/adapter/repository/sqlite"
	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/infrastructure/auth"
	"github.com/iho/cashledger/internal/infrastructure/config"
	"github.com/iho/cashledger/internal/infrastructure/idgen"
	"github.com/iho/cashledger/internal/infrastructure/metrics"
	"github.com/iho/cashledger/internal/infrastructure/postgres"
	"github.com/iho/cashledger/internal/infrastructure/redis"
	"github.com/iho/cashledger/internal/report"
	"github.com/iho/cashledger/internal/usecase"
)

// app is the wired server. close releases every connection it opened.
type app struct {
	handler     http.Handler
	ledger      *usecase.LedgerUseCase
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// storage is the selected state store plus the readiness checks it brings.
type storage struct {
	store  usecase.StateStore
	checks map[string]handler.CheckFunc
	redis  *goredis.Client
}

func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (a *app, err error) {
	a = &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	st, err := newStorage(ctx, cfg, logger, a)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	identityMiddleware, err := newIdentity(cfg)
	if err != nil {
		return nil, err
	}

	a.ledger = usecase.NewLedgerUseCase(
		st.store,
		middleware.ContextIdentity{},
		idgen.NewULIDGenerator(""),
		usecase.LedgerOptions{
			Policy:  domain.VaultPolicy(cfg.VaultPolicy),
			Logger:  logger.With().Str("component", "ledger").Logger(),
			Metrics: m,
		},
	)
	if err := a.ledger.Load(ctx); err != nil {
		return nil, err
	}

	query := usecase.NewQueryUseCase(a.ledger, report.Layout{Slots: cfg.ReportSlots}, cfg.RecentLimit)
	imports := usecase.NewImportUseCase(newImportParser(cfg, logger), a.ledger, m)

	var idempotencyStore usecase.IdempotencyStore
	if cfg.IdempotencyEnabled {
		client := st.redis
		if client == nil {
			client, err = redis.NewClient(ctx, cfg.RedisURL)
			if err != nil {
				return nil, fmt.Errorf("connect redis for idempotency: %w", err)
			}
			a.closers = append(a.closers, func() { client.Close() })
			st.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		}
		idempotencyStore = redisRepo.NewIdempotencyStore(client, cfg.StorageNamespace)
	}

	routerCfg := httpAdapter.RouterConfig{
		TransactionHandler: handler.NewTransactionHandler(a.ledger, query),
		VaultHandler:       handler.NewVaultHandler(a.ledger),
		CompanyHandler:     handler.NewCompanyHandler(query),
		ImportHandler:      handler.NewImportHandler(imports),
		AuthHandler:        handler.NewAuthHandler(middleware.ContextIdentity{}),
		HealthHandler:      handler.NewHealthHandler(a.ledger.Ready, st.checks),
		Identity:           identityMiddleware,
		AuthRequired:       cfg.AuthEnabled,
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		Metrics:            m,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Logger:             logger,
	}

	if cfg.RateLimitRPS > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithHitCounter(m.RateLimitHits)
		routerCfg.RateLimiter = a.rateLimiter
	}

	a.handler = httpAdapter.NewRouter(routerCfg)

	return a, nil
}

func newStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger, a *app) (*storage, error) {
	st := &storage{checks: make(map[string]handler.CheckFunc)}

	switch cfg.StorageBackend {
	case config.StorageMemory:
		logger.Warn().Msg("using in-memory storage, state is lost on restart")
		st.store = memory.NewStateStore(cfg.StorageNamespace)

	case config.StorageRedis:
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, func() { client.Close() })
		logger.Info().Msg("connected to redis")

		st.redis = client
		st.store = redisRepo.NewStateStore(client, cfg.StorageNamespace)
		st.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }

	case config.StoragePostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return nil, err
		}

		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, pool.Close)
		logger.Info().Msg("connected to postgres")

		retrier := postgresRepo.NewRetrier(logger.With().Str("component", "postgres").Logger())
		st.store = postgresRepo.NewStateStore(pool, cfg.StorageNamespace, retrier)
		st.checks["postgres"] = pool.Ping

	case config.StorageSQLite:
		store, err := sqliteRepo.NewStateStore(cfg.SQLitePath, cfg.StorageNamespace)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { store.Close() })
		logger.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite database")

		st.store = store
		st.checks["sqlite"] = store.Ping

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}

	return st, nil
}

// newIdentity picks how requests get their acting user: a verified bearer
// token, or a fixed local user when authentication is off.
func newIdentity(cfg *config.Config) (func(http.Handler) http.Handler, error) {
	if cfg.AuthEnabled {
		return middleware.AuthMiddleware(auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)), nil
	}

	user, err := defaultUser(cfg)
	if err != nil {
		return nil, err
	}
	return middleware.StaticIdentity(user), nil
}

func defaultUser(cfg *config.Config) (*domain.User, error) {
	role := domain.Role(cfg.DefaultUserRole)
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid DEFAULT_USER_ROLE %q", cfg.DefaultUserRole)
	}

	// no default user: reads stay open, mutations need an identity
	email := cfg.DefaultUserEmail
	if email == "" {
		return nil, nil
	}

	return &domain.User{ID: email, Email: email, Role: role}, nil
}

func newImportParser(cfg *config.Config, logger zerolog.Logger) usecase.ImportParser {
	if cfg.ImportParser == config.ImportParserHTTP {
		return importer.NewHTTPParser(importer.HTTPParserConfig{
			URL:        cfg.ImportParserURL,
			Timeout:    cfg.ImportParserTimeout,
			MaxRetries: cfg.ImportParserRetries,
			Logger:     logger.With().Str("component", "importer").Logger(),
		})
	}
	return importer.NewCSVParser()
}

// cleanupLimiters evicts idle rate limiter entries until ctx is done.
func cleanupLimiters(ctx context.Context, rl *middleware.RateLimiter, every time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := rl.CleanupLimiters(every); removed > 0 {
				logger.Debug().Int("removed", removed).Msg("evicted idle rate limiters")
			}
		}
	}
}

func isServerClosed(err error) bool {
	return err == nil || errors.Is(err, http.ErrServerClosed)
}
