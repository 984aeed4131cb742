package bootstrap

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baechuer/signup-service/internal/application/users"
	"github.com/baechuer/signup-service/internal/config"
	"github.com/baechuer/signup-service/internal/infrastructure/db/postgres"
	"github.com/baechuer/signup-service/internal/infrastructure/memory"
	rabbitmq_pub "github.com/baechuer/signup-service/internal/infrastructure/messaging/rabbitmq"
	"github.com/baechuer/signup-service/internal/infrastructure/redis"
	"github.com/baechuer/signup-service/internal/infrastructure/security"
	"github.com/baechuer/signup-service/internal/logger"
	http_handlers "github.com/baechuer/signup-service/internal/transport/http/handlers"
	"github.com/baechuer/signup-service/internal/transport/http/middleware"
	"github.com/baechuer/signup-service/internal/transport/http/response"
	"github.com/baechuer/signup-service/internal/transport/http/router"
)

/*
========================
 Public entry (prod)
========================
*/

func NewServer() (*http.Server, func(), error) {
	return newServer(defaultDeps())
}

// NewServerWithDeps allows injecting dependencies for testing
func NewServerWithDeps(deps Deps) (*http.Server, func(), error) {
	return newServer(deps)
}

/*
========================
 Dependency injection
========================
*/

type Deps struct {
	LoadConfig func() (*config.Config, error)

	NewPool func(ctx context.Context, dsn string, opts config.PoolOptions) (*pgxpool.Pool, error)

	RunMigrations func(ctx context.Context, db *sql.DB) error

	NewRedis func(url string) (*redis.Client, error)

	NewPublisher func(url, exchange string) (Publisher, error)

	NewRouter func(router.Deps) (http.Handler, error)
}

type Publisher interface {
	users.EventPublisher
}

const (
	migrateTimeout = time.Minute
	pingTimeout    = 2 * time.Second
	indexDocument  = "index.html"
)

/*
========================
 Core bootstrap logic
========================
*/

func newServer(deps Deps) (*http.Server, func(), error) {
	// 0) config
	cfg, err := deps.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	// .env is only read by LoadConfig, so re-apply the logging settings
	logger.Configure(os.Stdout, logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	// 1) pool; MinConns=0, so nothing dials until the first query
	pool, err := deps.NewPool(context.Background(), cfg.DatabaseURL(), cfg.PoolOptions())
	if err != nil {
		return nil, nil, err
	}
	sqlDB := config.OpenDB(pool)

	cleanupFns := []func(){
		func() { pool.Close() },
		func() { _ = sqlDB.Close() },
	}

	// 2) schema (retried in the background while the store is down)
	if cfg.DBAutoMigrate && deps.RunMigrations != nil {
		cleanupFns = append(cleanupFns, applyMigrations(deps.RunMigrations, sqlDB))
	}

	userRepo := postgres.NewUserRepo(sqlDB)

	// 3) redis (best-effort, only backs the rate limiter)
	var redisCli *redis.Client
	if cfg.RLEnabled && cfg.RedisURL != "" && deps.NewRedis != nil {
		redisCli = connectRedis(deps.NewRedis, cfg.RedisURL)
		if redisCli != nil {
			c := redisCli
			cleanupFns = append(cleanupFns, func() { _ = c.Close() })
		}
	}

	// 4) publisher
	var pub Publisher
	if cfg.RabbitURL != "" && deps.NewPublisher != nil {
		pub, err = deps.NewPublisher(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			if cfg.AppEnv != "dev" {
				runCleanup(cleanupFns)
				return nil, nil, err
			}
			logger.Logger.Warn().Err(err).Msg("rabbitmq unavailable; using noop publisher")
			pub = nil
		}
	}
	if pub == nil {
		pub = memory.NewNoopPublisher(logger.Logger)
	}
	if c, ok := pub.(interface{ Close() error }); ok {
		cleanupFns = append(cleanupFns, func() { _ = c.Close() })
	}

	// 5) service
	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	usersSvc := users.NewService(userRepo, hasher, pub).
		WithAudit(func(action string, fields map[string]string) {
			evt := logger.Logger.Info().
				Bool("audit", true).
				Str("action", action)
			for k, v := range fields {
				evt = evt.Str(k, v)
			}
			evt.Msg("audit")
		}).
		WithWarn(func(msg string, err error) {
			logger.Logger.Warn().Err(err).Msg(msg)
		})

	// 6) handlers + middleware
	healthH := http_handlers.NewHealthHandler(sqlDB)
	usersH := http_handlers.NewUsersHandler(usersSvc)
	spaH := http_handlers.NewSPAHandler(cfg.StaticDir, indexDocument)

	// 7) router
	mux, err := deps.NewRouter(router.Deps{
		Health:             healthH,
		Users:              usersH,
		SPA:                spaH,
		NotFound:           http_handlers.NotFound,
		MethodNotAllowed:   http_handlers.MethodNotAllowed,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MetricsEnabled:     cfg.MetricsEnabled,
		RLRegister:         registerLimit(cfg, redisCli),
	})
	if err != nil {
		runCleanup(cleanupFns)
		return nil, nil, err
	}

	// 8) server
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	cleanup := func() {
		runCleanup(cleanupFns)
	}

	return srv, cleanup, nil
}

func connectRedis(newRedis func(string) (*redis.Client, error), url string) *redis.Client {
	c, err := newRedis(url)
	if err != nil {
		logger.Logger.Warn().Err(err).Msg("invalid redis url; using in-memory rate limit")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		logger.Logger.Warn().Err(err).Msg("redis unavailable; using in-memory rate limit")
		_ = c.Close()
		return nil
	}

	logger.Logger.Info().Msg("redis connected")
	return c
}

// registerLimit prefers the shared Redis counter and falls back to a
// per-process limiter.
func registerLimit(cfg *config.Config, redisCli *redis.Client) func(http.Handler) http.Handler {
	if !cfg.RLEnabled {
		return nil
	}

	fw := middleware.FixedWindowConfig{
		RouteKey: "users.register",
		Limit:    cfg.RLRegisterLimit,
		Window:   cfg.RLRegisterWindow,
	}
	if redisCli != nil {
		return middleware.RateLimitFixedWindow(redis.NewFixedWindowLimiter(redisCli), fw, response.WriteError)
	}
	return middleware.RateLimitInMemory(fw, response.WriteError)
}

/*
========================
 Default deps (prod)
========================
*/

func defaultDeps() Deps {
	return Deps{
		LoadConfig:    config.Load,
		NewPool:       config.NewPool,
		RunMigrations: postgres.RunMigrations,
		NewRedis:      redis.NewFromURL,
		NewPublisher: func(url, exchange string) (Publisher, error) {
			return rabbitmq_pub.NewPublisher(url, exchange)
		},
		NewRouter: func(d router.Deps) (http.Handler, error) {
			return router.New(d)
		},
	}
}

/*
========================
 helpers
========================
*/

func runCleanup(fns []func()) {
	for i := len(fns) - 1; i >= 0; i-- {
		fns[i]()
	}
}
