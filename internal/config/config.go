package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultCORSOrigin is the single origin allowed when CORS_ORIGINS is unset or empty.
const DefaultCORSOrigin = "http://localhost:5173"

// Config holds application configuration
type Config struct {
	Environment        string
	EnvironmentSet     bool
	ServerPort         string
	ServerDebugMode    bool
	WorkerDebugMode    bool
	EnableHSTS         bool
	CORSOrigins        []string
	DatabaseURL        string
	JWTSecretKey       string
	AccessTokenMinutes int
	RefreshTokenDays   int
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	RedisURL           string
	RateLimitDefault   string
	TrustedProxyHops   int
	RabbitMQURL        string
	RabbitMQPrefetch   int
	OTELEnabled        bool
	OTELEndpoint       string
}

// LoadDotEnv loads variables from the given files (default ".env") into the process
// environment without overriding values that are already set. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	environment, environmentSet := os.LookupEnv("ENVIRONMENT")
	cfg := &Config{
		Environment:        environment,
		EnvironmentSet:     environmentSet,
		ServerPort:         getEnv("SERVER_PORT", "8000"),
		ServerDebugMode:    getEnvBool("SERVER_DEBUG_MODE", false),
		WorkerDebugMode:    getEnvBool("WORKER_DEBUG_MODE", false),
		EnableHSTS:         getEnvBool("ENABLE_HSTS", false),
		CORSOrigins:        ParseCORSOrigins(os.Getenv("CORS_ORIGINS")),
		JWTSecretKey:       getEnv("JWT_SECRET_KEY", ""),
		AccessTokenMinutes: getEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30),
		RefreshTokenDays:   getEnvInt("REFRESH_TOKEN_EXPIRE_DAYS", 7),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		RedisURL:           getEnv("REDIS_URL", ""),
		RateLimitDefault:   getEnv("RATE_LIMIT_DEFAULT", "5-S"),
		TrustedProxyHops:   getEnvInt("TRUSTED_PROXY_HOPS", 0),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQPrefetch:   getEnvInt("RABBITMQ_PREFETCH", 1),
		OTELEnabled:        getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	dbURL, err := databaseURLFromEnv()
	if err != nil {
		return nil, err
	}
	cfg.DatabaseURL = dbURL

	if cfg.JWTSecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if cfg.AccessTokenMinutes <= 0 {
		return nil, fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if cfg.RefreshTokenDays <= 0 {
		return nil, fmt.Errorf("REFRESH_TOKEN_EXPIRE_DAYS must be positive")
	}
	if cfg.TrustedProxyHops < 0 {
		return nil, fmt.Errorf("TRUSTED_PROXY_HOPS must not be negative")
	}

	return cfg, nil
}

// ReportedEnvironment returns ENVIRONMENT as given, or nil when it was unset.
func (c *Config) ReportedEnvironment() *string {
	if !c.EnvironmentSet {
		return nil
	}
	env := c.Environment
	return &env
}

// ParseCORSOrigins splits a comma-separated origin list, trimming whitespace and
// dropping empty entries. Order and repeats are preserved. An empty result
// yields the single DefaultCORSOrigin.
func ParseCORSOrigins(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			out = append(out, origin)
		}
	}
	if len(out) == 0 {
		return []string{DefaultCORSOrigin}
	}
	return out
}

// databaseURLFromEnv prefers DATABASE_URL and otherwise assembles a PostgreSQL URL
// from the POSTGRES_* and DB_* variables. DB_HOST defaults to the compose service name.
func databaseURLFromEnv() (string, error) {
	if dsn := getEnv("DATABASE_URL", ""); dsn != "" {
		return dsn, nil
	}

	user := os.Getenv("POSTGRES_USER")
	password := os.Getenv("POSTGRES_PASSWORD")
	name := os.Getenv("POSTGRES_DB")
	if user == "" || password == "" || name == "" {
		return "", fmt.Errorf("DATABASE_URL or POSTGRES_USER, POSTGRES_PASSWORD and POSTGRES_DB are required")
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(user, password),
		Host:     net.JoinHostPort(getEnv("DB_HOST", "database"), getEnv("DB_PORT", "5432")),
		Path:     "/" + name,
		RawQuery: url.Values{"sslmode": []string{getEnv("DB_SSLMODE", "disable")}}.Encode(),
	}
	return u.String(), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
