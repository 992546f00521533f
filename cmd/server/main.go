package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/sailor-swift/internal/config"
	"github.com/benvon/sailor-swift/internal/database"
	"github.com/benvon/sailor-swift/internal/handlers"
	"github.com/benvon/sailor-swift/internal/logger"
	"github.com/benvon/sailor-swift/internal/middleware"
	"github.com/benvon/sailor-swift/internal/queue"
	"github.com/benvon/sailor-swift/internal/server"
	"github.com/benvon/sailor-swift/internal/services/auth"
	"github.com/benvon/sailor-swift/internal/services/oidc"
	"github.com/benvon/sailor-swift/internal/sessions"
	"github.com/benvon/sailor-swift/internal/telemetry"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	envFile := flag.String("env-file", ".env", "Environment file loaded before configuration")
	flag.Parse()

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Fatalf("Failed to load environment file: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag
	zapLogger, err := logger.New(cfg.Environment, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zapLogger); err != nil {
		zapLogger.Error("server_failed", zap.Error(err))
		_ = logger.Sync(zapLogger)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) error {
	zapLogger.Info("starting_server",
		zap.String("environment", cfg.Environment),
		zap.String("server_port", cfg.ServerPort),
		zap.Strings("cors_origins", cfg.CORSOrigins),
		zap.Bool("redis_configured", cfg.RedisURL != ""),
		zap.Bool("rabbitmq_configured", cfg.RabbitMQURL != ""),
		zap.Bool("google_configured", cfg.GoogleClientID != ""),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
		zap.Int("trusted_proxy_hops", cfg.TrustedProxyHops),
	)

	tp := telemetry.Setup(ctx, telemetry.Options{
		Enabled:        cfg.OTELEnabled,
		Endpoint:       cfg.OTELEndpoint,
		ServiceName:    telemetry.ServiceName,
		ServiceVersion: server.DefaultInfo.Version,
	}, zapLogger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
			zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
	}()

	db, err := database.New(ctx, cfg.DatabaseURL, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database")

	health := handlers.NewHealthChecker().AddCheck("database", db.HealthCheck)

	var store sessions.Store = sessions.NewMemoryStore()
	var limiterStore limiter.Store
	if cfg.RedisURL != "" {
		client, err := sessions.Connect(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		redisStore := sessions.NewRedisStore(client)
		store = redisStore
		health.AddCheck("redis", redisStore.HealthCheck)

		limiterStore, err = middleware.NewRedisLimiterStore(client)
		if err != nil {
			return err
		}
		zapLogger.Info("connected_to_redis")
	} else {
		zapLogger.Warn("redis_not_configured_using_memory_session_store")
		limiterStore = middleware.NewMemoryLimiterStore()
	}
	rateLimit := middleware.NewRateLimitReloader(limiterStore, database.NewRatelimitConfigRepository(db), cfg.RateLimitDefault, zapLogger, time.Minute)

	var publisher queue.Publisher = queue.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		eventQueue, err := connectRabbitMQ(ctx, cfg.RabbitMQURL, zapLogger)
		if err != nil {
			return err
		}
		defer func() {
			if err := eventQueue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		publisher = eventQueue
		health.AddCheck("rabbitmq", eventQueue.HealthCheck)
	}

	tokens := auth.NewTokenIssuer(
		cfg.JWTSecretKey,
		time.Duration(cfg.AccessTokenMinutes)*time.Minute,
		time.Duration(cfg.RefreshTokenDays)*24*time.Hour,
	)

	authOpts := []handlers.AuthOption{handlers.WithEventPublisher(publisher)}
	if cfg.GoogleClientID != "" {
		jwks := oidc.NewJWKSManager(&http.Client{Timeout: 10 * time.Second})
		authOpts = append(authOpts,
			handlers.WithGoogleVerifier(oidc.NewGoogleVerifier(jwks, cfg.GoogleClientID, "")),
			handlers.WithGoogleClient(oidc.NewClient(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)),
		)
	}
	authOpts = append(authOpts, handlers.WithRateLimit(rateLimit.Middleware()))
	authHandler := handlers.NewAuthHandler(database.NewUserRepository(db), tokens, store, zapLogger, authOpts...)

	app := server.New(server.DefaultInfo, server.Options{
		Environment: cfg.ReportedEnvironment(),
		CORSOrigins: cfg.CORSOrigins,
		Logger:      zapLogger,
	})

	// Registered first runs outermost.
	if tp != nil {
		app.Use(telemetry.Middleware(telemetry.ServiceName))
	}
	app.Use(
		middleware.RealIP(cfg.TrustedProxyHops),
		middleware.SecurityHeaders(cfg.EnableHSTS),
		middleware.MaxRequestSize(middleware.DefaultMaxRequestSize),
		middleware.Timeout(middleware.DefaultRequestTimeout),
		middleware.ErrorHandler(zapLogger),
		middleware.Audit(zapLogger),
		middleware.Logging(zapLogger),
	)

	app.OnStartup("create_tables", db.CreateTables)
	app.OnStartup("load_rate_limit", func(ctx context.Context) error {
		rateLimit.Load(ctx)
		go rateLimit.Start(ctx)
		return nil
	})
	app.Mount(authHandler)
	app.Mount(health)
	app.Mount(handlers.NewOpenAPIHandler())

	return app.Run(ctx, ":"+cfg.ServerPort)
}

// connectRabbitMQ retries with exponential backoff to ride out broker startup.
func connectRabbitMQ(ctx context.Context, url string, zapLogger *zap.Logger) (*queue.RabbitMQQueue, error) {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		q, err := queue.NewRabbitMQQueue(url)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q, nil
		}
		lastErr = err

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		select {
		case <-ctx.Done():
			return nil, errors.Join(ctx.Err(), lastErr)
		case <-time.After(delay):
		}
	}
	return nil, lastErr
}
