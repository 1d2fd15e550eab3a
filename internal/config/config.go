// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the server configuration.
type Config struct {
	ListenAddr      string
	BaseURL         string
	AuthURL         string
	ClientID        string
	ClientSecret    string
	CredentialsPath string
	// DatabasePath is empty when batch history is disabled.
	DatabasePath string
	// HistoryRetention is how long persisted batches are kept; 0 keeps them forever.
	HistoryRetention time.Duration

	RequestMaxAttempts int
	PollInterval       time.Duration
	PollMaxAttempts    int
	PollTimeout        time.Duration
	HTTPTimeout        time.Duration

	RateLimitPerMinute int
	CORSAllowedOrigins []string

	LogLevel  string
	LogFormat string
}

// DashboardConfig holds the terminal dashboard configuration.
type DashboardConfig struct {
	ServerURL     string
	HTTPTimeout   time.Duration
	DesktopNotify bool
}

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		ListenAddr:         getEnvString("LISTEN_ADDR", defaultListenAddr),
		BaseURL:            strings.TrimRight(getEnvString("TOKENFLEX_BASE_URL", DefaultBaseURL), "/"),
		AuthURL:            getEnvString("APS_AUTH_URL", DefaultAuthURL),
		ClientID:           getEnvString("APS_CLIENT_ID", ""),
		ClientSecret:       getEnvString("APS_CLIENT_SECRET", ""),
		CredentialsPath:    getEnvString("CREDENTIALS_PATH", getDefaultCredentialsPath()),
		DatabasePath:       getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		HistoryRetention:   getEnvDuration("HISTORY_RETENTION", defaultHistoryRetention),
		RequestMaxAttempts: getEnvInt("REQUEST_MAX_ATTEMPTS", defaultRequestMaxAttempts),
		PollInterval:       getEnvDuration("POLL_INTERVAL", defaultPollInterval),
		PollMaxAttempts:    getEnvInt("POLL_MAX_ATTEMPTS", 0),
		PollTimeout:        getEnvDuration("POLL_TIMEOUT", 0),
		HTTPTimeout:        getEnvDuration("HTTP_TIMEOUT", defaultHTTPTimeout),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_RPM", defaultRateLimitPerMinute),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:           getEnvString("LOG_LEVEL", defaultLogLevel),
		LogFormat:          getEnvString("LOG_FORMAT", defaultLogFormat),
	}

	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("APS_CLIENT_ID and APS_CLIENT_SECRET are required")
	}

	if cfg.RequestMaxAttempts < 1 {
		return nil, fmt.Errorf("REQUEST_MAX_ATTEMPTS must be at least 1, got %d", cfg.RequestMaxAttempts)
	}
	if cfg.PollMaxAttempts < 0 {
		return nil, fmt.Errorf("POLL_MAX_ATTEMPTS must not be negative, got %d", cfg.PollMaxAttempts)
	}

	if strings.EqualFold(cfg.DatabasePath, disabledValue) {
		cfg.DatabasePath = ""
	}

	// Ensure database directory exists
	if cfg.DatabasePath != "" {
		if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
			return nil, err
		}
	}

	// Ensure credentials directory exists
	if err := ensureDir(filepath.Dir(cfg.CredentialsPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadDashboard reads the dashboard configuration. It never fails on
// missing values since every setting has a default.
func LoadDashboard() *DashboardConfig {
	loadEnvFile()

	return &DashboardConfig{
		ServerURL:     strings.TrimRight(getEnvString("DASHBOARD_SERVER_URL", DefaultServerURL), "/"),
		HTTPTimeout:   getEnvDuration("DASHBOARD_HTTP_TIMEOUT", defaultDashboardTimeout),
		DesktopNotify: getEnvBool("DASHBOARD_NOTIFY", true),
	}
}

// loadEnvFile loads the first .env file found, without overriding
// variables already present in the environment.
func loadEnvFile() {
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "tokenflex", ".env"),
			filepath.Join(home, ".tokenflex", ".env"),
		)
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tokenflex.db"
	}
	return filepath.Join(home, ".config", "tokenflex", "tokenflex.db")
}

// getDefaultCredentialsPath returns the default path for the APS credentials file.
func getDefaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "credentials.json"
	}
	return filepath.Join(home, ".config", "tokenflex", "credentials.json")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvList retrieves a comma separated list or returns the default.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
