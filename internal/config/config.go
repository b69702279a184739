package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported DB_DRIVER values.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort  string
	Environment string

	DBDriver      string
	MySQLDSN      string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string

	RedisAddr string
	RedisDB   int
	RedisPass string

	JWTSecret  string
	JWTExpiry  time.Duration
	SessionTTL time.Duration
	BcryptCost int

	RateLimit       int
	RateLimitWindow time.Duration
	AllowedOrigins  []string
	// TrustedProxies are the CIDR ranges whose X-Forwarded-For is believed.
	// Empty means the client address is the connection's peer.
	TrustedProxies []string

	LogLevel    string
	LogFile     string
	SwaggerHost string
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is read first when present; real
// environment variables take precedence over it.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		DBDriver:        strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		MySQLDSN:        getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/storefront?charset=utf8mb4&parseTime=True&loc=UTC"),
		SQLitePath:      getEnv("SQLITE_PATH", "storefront.db"),
		MongoURI:        getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:   getEnv("MONGODB_DATABASE", "storefront"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:         getEnvInt("REDIS_DB", 0),
		RedisPass:       os.Getenv("REDIS_PASSWORD"),
		JWTSecret:       getEnv("JWT_SECRET", "change-me"),
		JWTExpiry:       getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),
		SessionTTL:      getEnvDuration("SESSION_TTL", 24*time.Hour),
		BcryptCost:      getEnvInt("BCRYPT_COST", 12),
		RateLimit:       getEnvInt("RATE_LIMIT", 10),
		RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		AllowedOrigins:  splitList(os.Getenv("ALLOWED_ORIGINS")),
		TrustedProxies:  splitList(os.Getenv("TRUSTED_PROXIES")),
		LogLevel:        os.Getenv("LOG_LEVEL"),
		LogFile:         os.Getenv("LOG_FILE"),
		SwaggerHost:     os.Getenv("SWAGGER_HOST"),
	}
}

// IsProduction reports whether the service runs with production settings
// (secure cookies, suppressed internal error messages, JSON logs).
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
