package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"boxoffice/internal/core"
	"boxoffice/internal/merge"
	"boxoffice/internal/store"
)

type Config struct {
	// Snapshot source
	SnapshotBaseURL string
	DetailedFeed    bool
	FetchTimeout    time.Duration
	FetchWorkers    int

	// Store
	StoreBackend string
	SQLiteDBPath string

	// Aggregation window
	StartMonth     string
	Mode           string
	ForceToday     bool
	RefetchCurrent bool
	FutureBuffer   int
	RebuildAll     bool

	// Chains
	ChainStrategy   string
	ChainConfigPath string
	ApplyDiscount   bool

	// Movie catalog
	MovieListEnabled bool
	MovieListStart   string

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Sheets export (optional, enabled when the spreadsheet ID is set)
	ReportSpreadsheetID string

	// Worker schedule (IST)
	RunHour   int
	RunMinute int
}

const (
	StrategyList  = "list"
	StrategyToken = "token"
)

func Load() *Config {
	cfg := &Config{
		SnapshotBaseURL: getEnv("SNAPSHOT_BASE_URL", "https://district24.pages.dev/Daily%20Boxoffice"),
		DetailedFeed:    getEnvBool("SNAPSHOT_DETAILED_FEED", true),
		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		FetchWorkers:    getEnvInt("FETCH_WORKERS", 8),

		StoreBackend: getEnv("STORE_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/boxoffice.db"),

		StartMonth:     getEnv("START_MONTH", "2025-09"),
		Mode:           getEnv("MERGE_MODE", string(merge.ModeIncremental)),
		ForceToday:     getEnvBool("FORCE_TODAY", false),
		RefetchCurrent: getEnvBool("REFETCH_CURRENT", false),
		FutureBuffer:   getEnvInt("FUTURE_BUFFER_DAYS", 0),
		RebuildAll:     getEnvBool("REBUILD_ALL", false),

		ChainStrategy:   getEnv("CHAIN_STRATEGY", StrategyList),
		ChainConfigPath: getEnv("CHAIN_CONFIG_PATH", ""),
		ApplyDiscount:   getEnvBool("APPLY_CHAIN_DISCOUNT", false),

		MovieListEnabled: getEnvBool("MOVIELIST_ENABLED", true),
		MovieListStart:   getEnv("MOVIELIST_START", "2025-09-01"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "boxoffice"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "rollup_events"),

		ReportSpreadsheetID: getEnv("REPORT_SPREADSHEET_ID", ""),

		RunHour:   getEnvInt("RUN_HOUR", 23),
		RunMinute: getEnvInt("RUN_MINUTE", 30),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if c.SnapshotBaseURL == "" {
		errors = append(errors, "snapshot base URL cannot be empty")
	} else if parsed, err := url.Parse(c.SnapshotBaseURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid snapshot base URL '%s': %v", c.SnapshotBaseURL, err))
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid snapshot base URL scheme '%s': must be http or https", parsed.Scheme))
	}

	if c.FetchTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at least 1 second", c.FetchTimeout))
	} else if c.FetchTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid fetch timeout %v: must be at most 5 minutes", c.FetchTimeout))
	}

	if c.FetchWorkers < 1 || c.FetchWorkers > 64 {
		errors = append(errors, fmt.Sprintf("invalid fetch workers %d: must be between 1 and 64", c.FetchWorkers))
	}

	if !store.Backend(c.StoreBackend).IsValid() {
		errors = append(errors, fmt.Sprintf("invalid store backend '%s': must be one of [sqlite memory]", c.StoreBackend))
	}
	if store.Backend(c.StoreBackend) == store.SQLiteBackend && c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
	}

	if !core.ValidMonthKey(c.StartMonth) {
		errors = append(errors, fmt.Sprintf("invalid start month '%s': must be YYYY-MM", c.StartMonth))
	}

	if !merge.Mode(c.Mode).Valid() {
		errors = append(errors, fmt.Sprintf("invalid merge mode '%s': must be one of [incremental rebuild]", c.Mode))
	}

	if c.FutureBuffer < 0 || c.FutureBuffer > 14 {
		errors = append(errors, fmt.Sprintf("invalid future buffer %d: must be between 0 and 14 days", c.FutureBuffer))
	}

	if c.ChainStrategy != StrategyList && c.ChainStrategy != StrategyToken {
		errors = append(errors, fmt.Sprintf("invalid chain strategy '%s': must be one of [list token]", c.ChainStrategy))
	}

	if c.MovieListEnabled {
		if _, err := time.Parse(time.DateOnly, c.MovieListStart); err != nil {
			errors = append(errors, fmt.Sprintf("invalid movie list start date '%s': must be YYYY-MM-DD", c.MovieListStart))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RunHour < 0 || c.RunHour > 23 {
		errors = append(errors, fmt.Sprintf("invalid run hour %d: must be between 0 and 23", c.RunHour))
	}
	if c.RunMinute < 0 || c.RunMinute > 59 {
		errors = append(errors, fmt.Sprintf("invalid run minute %d: must be between 0 and 59", c.RunMinute))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
