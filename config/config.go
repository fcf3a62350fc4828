package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultGraphQLEndpoints is the ordered list of backend URLs tried when none are configured.
// The first entry is the host machine as seen from an Android emulator.
var DefaultGraphQLEndpoints = []string{
	"http://10.0.2.2:4000/graphql",
	"http://localhost:4000/graphql",
	"http://127.0.0.1:4000/graphql",
	"http://192.168.1.100:4000/graphql",
}

// DefaultPopularTickers are always kept in the trending list when the backend returns them.
var DefaultPopularTickers = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA", "AMD"}

// Config holds all application configuration
type Config struct {
	// GraphQL backend configuration
	GraphQL GraphQLConfig

	// Trending list configuration
	Trending TrendingConfig

	// Bookmark persistence
	Bookmarks BookmarkConfig

	// HTTP configuration
	HTTP HTTPConfig

	// Circuit breaker around backend calls
	CircuitBreaker CircuitBreakerConfig

	// Connection diagnostics
	Diagnostics DiagnosticsConfig

	// Encrypted settings store
	Settings SettingsConfig

	// Logging
	Log LogConfig

	// Deep link handling
	DeepLink DeepLinkConfig
}

// GraphQLConfig holds backend endpoint configuration
type GraphQLConfig struct {
	Endpoints      []string
	TimeoutSeconds int
	APIToken       string
	UseMock        bool
}

// TrendingConfig holds trending stock query configuration
type TrendingConfig struct {
	LookbackDays   int
	PopularTickers []string
}

// Bookmark store drivers
const (
	BookmarkDriverSQLite   = "sqlite"
	BookmarkDriverPostgres = "postgres"
	BookmarkDriverMemory   = "memory"
)

// BookmarkConfig holds bookmark store configuration
type BookmarkConfig struct {
	Driver      string // sqlite, postgres, or memory
	Path        string // sqlite file path
	DatabaseURL string // postgres connection string
	Namespace   string
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Addr                  string
	RequestTimeoutSeconds int
	CORSAllowedOrigins    string
}

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled            bool
	MinRequests        int
	FailureRatio       float64
	OpenTimeoutSeconds int
}

// DiagnosticsConfig holds connection diagnostics configuration
type DiagnosticsConfig struct {
	ProbeTimeoutSeconds   int
	HealthCacheTTLSeconds int
}

// SettingsConfig holds the encrypted settings store location
type SettingsConfig struct {
	Dir        string
	Passphrase string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Production bool
	Level      string
}

// DeepLinkConfig holds deep link defaults
type DeepLinkConfig struct {
	DefaultTicker string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		GraphQL: GraphQLConfig{
			Endpoints:      getEnvList("SOPHIE_GRAPHQL_ENDPOINTS", DefaultGraphQLEndpoints),
			TimeoutSeconds: getEnvInt("SOPHIE_GRAPHQL_TIMEOUT_SECONDS", 30),
			APIToken:       os.Getenv("SOPHIE_API_TOKEN"),
			UseMock:        getEnvBool("SOPHIE_USE_MOCK_API", false),
		},
		Trending: TrendingConfig{
			LookbackDays:   getEnvInt("SOPHIE_TRENDING_LOOKBACK_DAYS", 7),
			PopularTickers: getEnvList("SOPHIE_POPULAR_TICKERS", DefaultPopularTickers),
		},
		Bookmarks: BookmarkConfig{
			Driver:      getEnvString("BOOKMARK_STORE", BookmarkDriverSQLite),
			Path:        getEnvString("BOOKMARK_DB_PATH", "sophie.db"),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			Namespace:   getEnvString("BOOKMARK_NAMESPACE", "bookmarks"),
		},
		HTTP: HTTPConfig{
			Addr:                  getEnvString("HTTP_ADDR", ":8080"),
			RequestTimeoutSeconds: getEnvInt("HTTP_REQUEST_TIMEOUT_SECONDS", 60),
			CORSAllowedOrigins:    getEnvString("CORS_ALLOWED_ORIGINS", "*"),
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:            getEnvBool("CIRCUIT_BREAKER_ENABLED", true),
			MinRequests:        getEnvInt("CIRCUIT_BREAKER_MIN_REQUESTS", 5),
			FailureRatio:       getEnvFloat("CIRCUIT_BREAKER_FAILURE_RATIO", 0.5),
			OpenTimeoutSeconds: getEnvInt("CIRCUIT_BREAKER_OPEN_TIMEOUT_SECONDS", 30),
		},
		Diagnostics: DiagnosticsConfig{
			ProbeTimeoutSeconds:   getEnvInt("DIAGNOSTICS_PROBE_TIMEOUT_SECONDS", 3),
			HealthCacheTTLSeconds: getEnvInt("DIAGNOSTICS_HEALTH_CACHE_TTL_SECONDS", 30),
		},
		Settings: SettingsConfig{
			Dir:        getEnvString("SOPHIE_SETTINGS_DIR", defaultSettingsDir()),
			Passphrase: os.Getenv("SOPHIE_SETTINGS_PASSPHRASE"),
		},
		Log: LogConfig{
			Production: strings.EqualFold(os.Getenv("LOG_FORMAT"), "json"),
			Level:      getEnvString("LOG_LEVEL", "info"),
		},
		DeepLink: DeepLinkConfig{
			DefaultTicker: strings.ToUpper(getEnvString("SOPHIE_DEFAULT_TICKER", "AAPL")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if len(c.GraphQL.Endpoints) == 0 && !c.GraphQL.UseMock {
		return fmt.Errorf("SOPHIE_GRAPHQL_ENDPOINTS must list at least one endpoint")
	}
	for _, endpoint := range c.GraphQL.Endpoints {
		u, err := url.Parse(endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid GraphQL endpoint %q: must be an absolute http(s) URL", endpoint)
		}
	}

	// Validate positive integers
	if c.GraphQL.TimeoutSeconds <= 0 {
		return fmt.Errorf("SOPHIE_GRAPHQL_TIMEOUT_SECONDS must be positive, got %d", c.GraphQL.TimeoutSeconds)
	}
	if c.Trending.LookbackDays <= 0 {
		return fmt.Errorf("SOPHIE_TRENDING_LOOKBACK_DAYS must be positive, got %d", c.Trending.LookbackDays)
	}

	switch c.Bookmarks.Driver {
	case BookmarkDriverSQLite:
		if c.Bookmarks.Path == "" {
			return fmt.Errorf("BOOKMARK_DB_PATH is required for the sqlite bookmark store")
		}
	case BookmarkDriverPostgres:
		if c.Bookmarks.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres bookmark store")
		}
	case BookmarkDriverMemory:
	default:
		return fmt.Errorf("BOOKMARK_STORE must be one of sqlite, postgres, memory; got %q", c.Bookmarks.Driver)
	}
	if c.Bookmarks.Namespace == "" {
		return fmt.Errorf("BOOKMARK_NAMESPACE must not be empty")
	}

	if c.CircuitBreaker.FailureRatio <= 0 || c.CircuitBreaker.FailureRatio > 1 {
		return fmt.Errorf("CIRCUIT_BREAKER_FAILURE_RATIO must be in (0, 1], got %.2f", c.CircuitBreaker.FailureRatio)
	}

	return nil
}

// HasDatabase returns true if a postgres connection string is available
func (c *Config) HasDatabase() bool {
	return c.Bookmarks.DatabaseURL != ""
}

// HasAPIToken returns true if requests to the backend should be authenticated
func (c *Config) HasAPIToken() bool {
	return c.GraphQL.APIToken != ""
}

// HasSettingsPassphrase returns true if the encrypted settings store can be opened
func (c *Config) HasSettingsPassphrase() bool {
	return c.Settings.Passphrase != ""
}

func defaultSettingsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sophie"
	}
	return filepath.Join(home, ".sophie")
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil && parsed > 0 && parsed <= 1 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blanks. The default slice is copied.
func getEnvList(key string, defaultValue []string) []string {
	if val := os.Getenv(key); val != "" {
		var out []string
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return append([]string(nil), defaultValue...)
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		GraphQL: GraphQLConfig{
			Endpoints:      append([]string(nil), DefaultGraphQLEndpoints...),
			TimeoutSeconds: 5,
			UseMock:        false,
		},
		Trending: TrendingConfig{
			LookbackDays:   7,
			PopularTickers: append([]string(nil), DefaultPopularTickers...),
		},
		Bookmarks: BookmarkConfig{
			Driver:    BookmarkDriverMemory,
			Namespace: "bookmarks",
		},
		HTTP: HTTPConfig{
			Addr:                  ":0",
			RequestTimeoutSeconds: 60,
			CORSAllowedOrigins:    "*",
		},
		CircuitBreaker: CircuitBreakerConfig{
			Enabled:            true,
			MinRequests:        5,
			FailureRatio:       0.5,
			OpenTimeoutSeconds: 30,
		},
		Diagnostics: DiagnosticsConfig{
			ProbeTimeoutSeconds:   1,
			HealthCacheTTLSeconds: 30,
		},
		Settings: SettingsConfig{
			Dir: ".sophie",
		},
		Log: LogConfig{
			Level: "info",
		},
		DeepLink: DeepLinkConfig{
			DefaultTicker: "AAPL",
		},
	}
}
