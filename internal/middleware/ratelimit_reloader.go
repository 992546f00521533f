package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/benvon/sailor-swift/internal/models"
	"github.com/benvon/sailor-swift/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	stdlibmw "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const (
	defaultRatelimitRate = "5-S"
	ratelimitKeyPrefix   = "sailor:ratelimit"
)

// RatelimitConfigRepo reads and seeds the stored rate.
type RatelimitConfigRepo interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// NewRedisLimiterStore creates the shared limiter store backed by Redis.
func NewRedisLimiterStore(client *redis.Client) (limiter.Store, error) {
	return redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix:   ratelimitKeyPrefix,
		MaxRetry: 3,
	})
}

// NewMemoryLimiterStore creates a process-local limiter store for single
// instance deployments without Redis.
func NewMemoryLimiterStore() limiter.Store {
	return memorystore.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          ratelimitKeyPrefix,
		CleanUpInterval: limiter.DefaultCleanUpInterval,
	})
}

// RateLimitReloader limits requests per client IP with ulule/limiter and
// periodically reloads the rate from the database.
type RateLimitReloader struct {
	store       limiter.Store
	repo        RatelimitConfigRepo
	defaultRate string
	log         *zap.Logger
	interval    time.Duration
	mu          sync.RWMutex
	current     *limiter.Limiter
}

// NewRateLimitReloader returns a reloader that enforces nothing until Load
// runs, so the rate table can be created first. A nil repo pins the rate to
// defaultRate.
func NewRateLimitReloader(store limiter.Store, repo RatelimitConfigRepo, defaultRate string, log *zap.Logger, reloadInterval time.Duration) *RateLimitReloader {
	if defaultRate == "" {
		defaultRate = defaultRatelimitRate
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &RateLimitReloader{
		store:       store,
		repo:        repo,
		defaultRate: defaultRate,
		log:         log,
		interval:    reloadInterval,
	}
}

// Load reads the stored rate and starts enforcing it.
func (r *RateLimitReloader) Load(ctx context.Context) {
	r.load(ctx)
}

// Middleware returns a middleware that applies the current rate to next.
// It may wrap any number of handlers; all of them share one budget per client
// address as resolved by request.ClientIP. Requests pass through when the
// store fails.
func (r *RateLimitReloader) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		opts := []stdlibmw.Option{
			stdlibmw.WithKeyGetter(request.ClientIP),
			stdlibmw.WithLimitReachedHandler(func(w http.ResponseWriter, req *http.Request) {
				RespondError(w, req, http.StatusTooManyRequests, "Too many requests, please slow down", r.log)
			}),
			stdlibmw.WithErrorHandler(func(w http.ResponseWriter, req *http.Request, err error) {
				r.log.Warn("rate_limit_store_error", zap.Error(err))
				next.ServeHTTP(w, req)
			}),
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			r.mu.RLock()
			lim := r.current
			r.mu.RUnlock()
			if lim == nil {
				next.ServeHTTP(w, req)
				return
			}
			stdlibmw.NewMiddleware(lim, opts...).Handler(next).ServeHTTP(w, req)
		})
	}
}

// Start runs the reload loop until ctx is cancelled.
func (r *RateLimitReloader) Start(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.load(ctx)
		}
	}
}

// Rate returns the rate currently enforced.
func (r *RateLimitReloader) Rate() limiter.Rate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return limiter.Rate{}
	}
	return r.current.Rate
}

func (r *RateLimitReloader) load(ctx context.Context) {
	rateStr := r.resolveRate(ctx)

	rate, err := limiter.NewRateFromFormatted(rateStr)
	if err != nil {
		r.log.Error("failed_to_parse_rate_limit_using_default",
			zap.Error(err),
			zap.String("rate_str", rateStr),
			zap.String("default_rate", r.defaultRate),
		)
		rate, err = limiter.NewRateFromFormatted(r.defaultRate)
		if err != nil {
			r.log.Error("failed_to_parse_default_rate_limit",
				zap.Error(err),
				zap.String("default_rate", r.defaultRate),
			)
			return
		}
	}

	lim := limiter.New(r.store, rate)

	r.mu.Lock()
	r.current = lim
	r.mu.Unlock()
}

func (r *RateLimitReloader) resolveRate(ctx context.Context) string {
	if r.repo == nil {
		return r.defaultRate
	}
	cfg, err := r.repo.Get(ctx)
	switch {
	case err != nil:
		r.log.Warn("failed_to_load_ratelimit_config_from_db_using_default",
			zap.Error(err),
			zap.String("default_rate", r.defaultRate),
		)
		return r.defaultRate
	case cfg != nil && cfg.Rate != "":
		return cfg.Rate
	default:
		if err := r.repo.Set(ctx, &models.RatelimitConfig{Rate: r.defaultRate}); err != nil {
			r.log.Error("failed_to_save_default_ratelimit_config",
				zap.Error(err),
				zap.String("default_rate", r.defaultRate),
			)
		}
		return r.defaultRate
	}
}
