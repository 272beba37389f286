package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SessionMode string // Session mode (jwt, redis-token) (default: jwt)
	TokenType   string // Token type reported to clients (default: Bearer)

	JWTSecret     string        // Required in jwt mode: HS256 secret, at least 32 bytes
	JWTIssuer     string        // Issuer claim (default: backoffice)
	JWTAccessTTL  time.Duration // Access token lifetime (default: 2h)
	JWTRefreshTTL time.Duration // Refresh token lifetime (default: 7d)

	SessionAccessTTL  time.Duration // Access session lifetime in redis-token mode (default: 2h)
	SessionRefreshTTL time.Duration // Refresh session lifetime in redis-token mode (default: 7d)

	RedisURL      string // Redis URL (default: redis://localhost:6379/0)
	RedisPassword string // Optional: overrides the password in RedisURL
	RedisDB       int    // Optional: overrides the db in RedisURL (default: -1, keep URL db)
	RedisPrefix   string // Optional: prefix applied to every key

	DatabaseDriver string // Database driver (sqlite, mysql) (default: sqlite)
	DatabaseDSN    string // Required for mysql: gorm/go-sql-driver DSN
	DatabaseFile   string // Path to SQLite database file (default: ./auth.db)

	BootstrapAdminUsername string // Optional: seeds an empty database when set
	BootstrapAdminPassword string

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Online registry prune interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		SessionMode: strings.ToLower(getEnvOrDefault("SECURITY_SESSION_MODE", "jwt")),
		TokenType:   getEnvOrDefault("TOKEN_TYPE", "Bearer"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTIssuer:     getEnvOrDefault("JWT_ISSUER", "backoffice"),
		JWTAccessTTL:  getEnvSecondsOrDefault("JWT_ACCESS_TTL", 2*time.Hour),
		JWTRefreshTTL: getEnvSecondsOrDefault("JWT_REFRESH_TTL", 7*24*time.Hour),

		SessionAccessTTL:  getEnvSecondsOrDefault("REDIS_TOKEN_ACCESS_TTL", 2*time.Hour),
		SessionRefreshTTL: getEnvSecondsOrDefault("REDIS_TOKEN_REFRESH_TTL", 7*24*time.Hour),

		RedisURL:      getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", -1),
		RedisPrefix:   os.Getenv("REDIS_PREFIX"),

		DatabaseDriver: strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", "sqlite")),
		DatabaseDSN:    os.Getenv("DATABASE_DSN"),
		DatabaseFile:   getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),

		BootstrapAdminUsername: os.Getenv("BOOTSTRAP_ADMIN_USERNAME"),
		BootstrapAdminPassword: os.Getenv("BOOTSTRAP_ADMIN_PASSWORD"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

// getEnvSecondsOrDefault reads a TTL given in whole seconds, also accepting
// a Go duration string.
func getEnvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
