package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Supported catalogue store drivers.
const (
	StoreDriverSQLite   = "sqlite"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Remote RemoteConfig
	Sync   SyncConfig
	Logger LoggerConfig
	Auth   AuthConfig
	Seed   SeedConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// StoreConfig selects and configures the local catalogue cache.
type StoreConfig struct {
	Driver   string
	SQLite   SQLiteConfig
	Database DatabaseConfig
	Redis    RedisConfig
}

// SQLiteConfig holds the on-device cache location.
type SQLiteConfig struct {
	Path string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RemoteConfig holds configuration for the remote catalogue API.
type RemoteConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// SyncConfig holds catalogue synchroniser and reachability settings.
type SyncConfig struct {
	PageSize      int
	CheckURL      string
	CheckInterval time.Duration
	CheckTimeout  time.Duration
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	APIKey string
}

// SeedConfig locates the optional cache seed bundle.
type SeedConfig struct {
	Enabled   bool
	Path      string
	S3Enabled bool
	Bucket    string
	Region    string
	Prefix    string // Path prefix within bucket (e.g., "seeds/")
}

// Load loads configuration from environment variables. Values from a
// .env file in the working directory are applied first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "127.0.0.1"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Store: StoreConfig{
			Driver: getEnv("STORE_DRIVER", StoreDriverSQLite),
			SQLite: SQLiteConfig{
				Path: getEnv("SQLITE_PATH", "products.db"),
			},
			Database: DatabaseConfig{
				Host:            getEnv("DB_HOST", "localhost"),
				Port:            getEnvAsInt("DB_PORT", 5432),
				User:            getEnv("DB_USER", "postgres"),
				Password:        getEnv("DB_PASSWORD", ""),
				Database:        getEnv("DB_NAME", "storefront"),
				MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 10),
				MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 1),
				MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
			},
			Redis: RedisConfig{
				Addr:      getEnv("REDIS_ADDR", "localhost:6379"),
				Password:  getEnv("REDIS_PASSWORD", ""),
				DB:        getEnvAsInt("REDIS_DB", 0),
				KeyPrefix: getEnv("REDIS_KEY_PREFIX", "storefront"),
			},
		},
		Remote: RemoteConfig{
			BaseURL:           getEnv("REMOTE_BASE_URL", "https://dummyjson.com"),
			Timeout:           getEnvAsDuration("REMOTE_TIMEOUT", 10*time.Second),
			RequestsPerSecond: getEnvAsFloat("REMOTE_RPS", 5),
			Burst:             getEnvAsInt("REMOTE_BURST", 5),
		},
		Sync: SyncConfig{
			PageSize:      getEnvAsInt("SYNC_PAGE_SIZE", 20),
			CheckURL:      getEnv("SYNC_CHECK_URL", ""),
			CheckInterval: getEnvAsDuration("SYNC_CHECK_INTERVAL", 15*time.Second),
			CheckTimeout:  getEnvAsDuration("SYNC_CHECK_TIMEOUT", 3*time.Second),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			APIKey: getEnv("API_KEY", ""),
		},
		Seed: SeedConfig{
			Enabled:   getEnvAsBool("SEED_ENABLED", false),
			Path:      getEnv("SEED_PATH", "data/seed/products.jsonl.gz"),
			S3Enabled: getEnvAsBool("SEED_S3_ENABLED", false),
			Bucket:    getEnv("SEED_S3_BUCKET", ""),
			Region:    getEnv("SEED_S3_REGION", "us-east-1"),
			Prefix:    getEnv("SEED_S3_PREFIX", "seeds/"),
		},
	}

	if cfg.Sync.CheckURL == "" {
		cfg.Sync.CheckURL = cfg.Remote.BaseURL
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Store.Driver {
	case StoreDriverSQLite:
		if c.Store.SQLite.Path == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case StoreDriverPostgres:
		if err := c.Store.Database.Validate(); err != nil {
			return err
		}
	case StoreDriverRedis:
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("redis address is required")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be sqlite, postgres, or redis)", c.Store.Driver)
	}

	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote base URL is required")
	}

	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote timeout must be positive")
	}

	if c.Remote.RequestsPerSecond <= 0 {
		return fmt.Errorf("remote requests per second must be positive")
	}

	if c.Remote.Burst < 1 {
		return fmt.Errorf("remote burst must be at least 1")
	}

	if c.Sync.PageSize < 1 || c.Sync.PageSize > 100 {
		return fmt.Errorf("invalid sync page size: %d (must be between 1 and 100)", c.Sync.PageSize)
	}

	if c.Sync.CheckInterval <= 0 {
		return fmt.Errorf("sync check interval must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.Seed.S3Enabled && c.Seed.Bucket == "" {
		return fmt.Errorf("seed S3 bucket is required when seed S3 is enabled")
	}

	return nil
}

// ValidateServer checks settings that only the HTTP API needs.
func (c *Config) ValidateServer() error {
	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}
	return nil
}

// Validate validates PostgreSQL settings.
func (c *DatabaseConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Port)
	}

	if c.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.MinConnections > c.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// DSN returns the go-sqlite3 data source name for the cache file.
func (c *SQLiteConfig) DSN() string {
	return "file:" + c.Path + "?_journal_mode=WAL&_busy_timeout=5000"
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// loadDotEnv applies a .env file if one exists at path.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat retrieves an environment variable as a float or returns a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration ("5s", "1m") or returns a default value.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
