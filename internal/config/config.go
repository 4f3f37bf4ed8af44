// Package config loads server configuration from flags, environment variables and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend names.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Server   ServerConfig
	Storage  StorageConfig
	Search   SearchConfig
	Category CategoryConfig
	Jobs     JobsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
	SeedFile    string // Optional YAML seed replacing the built-in sample events
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // json, pretty, or empty for auto
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name           string
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	RateLimitRPS   float64
	RateLimitBurst int
	AdvertiseMDNS  bool
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend   string
	DataPath  string // Directory for badger, sqlite and the search index
	FilePath  string // JSON file for the file backend
	RedisURL  string
	WatchFile bool // Reload when the file backend's file changes on disk
}

// SearchConfig holds full-text search configuration.
type SearchConfig struct {
	Enabled bool
}

// CategoryConfig holds category ordering configuration.
type CategoryConfig struct {
	Locale string // BCP 47 tag used for collation
}

// JobsConfig holds scheduled job configuration.
type JobsConfig struct {
	GCSchedule string // cron spec for storage maintenance
}

// LoadConfig loads configuration from the process arguments and environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load resolves configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("eventboard", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := fs.String("log-format", "", "Log format (json, pretty)")
	seedFile := fs.String("seed-file", "", "YAML file with seed events")

	serverName := fs.String("server-name", "", "Name advertised for the server")
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := fs.String("cors-origins", "", "Comma-separated CORS origins (default: *)")
	rateLimitRPS := fs.String("rate-limit-rps", "", "Requests per second per client (default: 20)")
	rateLimitBurst := fs.String("rate-limit-burst", "", "Burst size per client (default: 40)")
	advertiseMDNS := fs.String("advertise-mdns", "", "Advertise via mDNS (default: false)")

	backend := fs.String("storage", "", "Storage backend (badger, sqlite, redis, file, memory)")
	dataPath := fs.String("data-path", "", "Directory for persistent data")
	storageFile := fs.String("storage-file", "", "JSON file for the file backend")
	redisURL := fs.String("redis-url", "", "Redis URL for the redis backend")
	watchFile := fs.String("watch-storage-file", "", "Reload when the storage file changes (default: true)")

	searchEnabled := fs.String("search", "", "Enable full-text search (default: true)")
	categoryLocale := fs.String("category-locale", "", "Locale for category ordering (default: en)")
	gcSchedule := fs.String("gc-schedule", "", "Cron spec for storage maintenance (default: @every 10m)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Missing .env files are fine; existing environment variables are never overwritten.
	_ = godotenv.Load(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
			SeedFile:    getConfigValue(*seedFile, "SEED_FILE", ""),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue(*logFormat, "LOG_FORMAT", ""),
		},
		Server: ServerConfig{
			Name:           getConfigValue(*serverName, "SERVER_NAME", "Eventboard"),
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "CORS_ALLOWED_ORIGINS", "*")),
			RateLimitRPS:   getFloatConfigValue(*rateLimitRPS, "RATE_LIMIT_RPS", 20),
			RateLimitBurst: getIntConfigValue(*rateLimitBurst, "RATE_LIMIT_BURST", 40),
			AdvertiseMDNS:  getBoolConfigValue(*advertiseMDNS, "ADVERTISE_MDNS", false),
		},
		Storage: StorageConfig{
			Backend:   strings.ToLower(getConfigValue(*backend, "STORAGE_BACKEND", BackendBadger)),
			DataPath:  getConfigValue(*dataPath, "DATA_PATH", ""),
			FilePath:  getConfigValue(*storageFile, "STORAGE_FILE", ""),
			RedisURL:  getConfigValue(*redisURL, "REDIS_URL", "redis://localhost:6379/0"),
			WatchFile: getBoolConfigValue(*watchFile, "WATCH_STORAGE_FILE", true),
		},
		Search: SearchConfig{
			Enabled: getBoolConfigValue(*searchEnabled, "SEARCH_ENABLED", true),
		},
		Category: CategoryConfig{
			Locale: getConfigValue(*categoryLocale, "CATEGORY_LOCALE", "en"),
		},
		Jobs: JobsConfig{
			GCSchedule: getConfigValue(*gcSchedule, "GC_SCHEDULE", "@every 10m"),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %q (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	switch c.Storage.Backend {
	case BackendBadger, BackendSQLite, BackendFile:
		if c.Storage.DataPath == "" {
			return errors.New("data path cannot be empty after expansion")
		}
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return errors.New("REDIS_URL is required for the redis backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid storage backend: %s", c.Storage.Backend)
	}

	if c.Storage.Backend == BackendFile && c.Storage.FilePath == "" {
		return errors.New("storage file cannot be empty for the file backend")
	}

	if c.Server.RateLimitRPS <= 0 || c.Server.RateLimitBurst <= 0 {
		return errors.New("rate limit rps and burst must be positive")
	}

	if c.Category.Locale == "" {
		return errors.New("category locale cannot be empty")
	}

	return nil
}

// expandPaths resolves the data directory and the paths derived from it.
func (c *Config) expandPaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	dataPath, err := expandPath(c.Storage.DataPath, filepath.Join(homeDir, "Eventboard", "data"))
	if err != nil {
		return fmt.Errorf("invalid data path: %w", err)
	}
	c.Storage.DataPath = dataPath

	filePath, err := expandPath(c.Storage.FilePath, filepath.Join(dataPath, "eventboard.json"))
	if err != nil {
		return fmt.Errorf("invalid storage file: %w", err)
	}
	c.Storage.FilePath = filePath

	if c.App.SeedFile != "" {
		seedFile, err := expandPath(c.App.SeedFile, "")
		if err != nil {
			return fmt.Errorf("invalid seed file: %w", err)
		}
		c.App.SeedFile = seedFile
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty, defaultPath is returned as is.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue accepts "true", "1" and "yes" (case-insensitive) as true.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
// Unparseable values fall back to the default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return defaultValue
	}
	return result
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), strValue, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
