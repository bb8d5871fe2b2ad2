package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

type Config struct {
	// HTTP Server
	Port               string
	RateLimitPerMinute int

	// Telegram
	TelegramBotToken string
	WebhookURL       string
	WebhookSecret    string

	// Database
	DataBackend    string
	SQLiteDBPath   string
	DatabaseURL    string
	DBMaxOpenConns int

	// AMQP
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Ledger
	BalancePolicy  string
	LedgerTimezone string

	// Categorizer
	Categorizer             string
	GeminiAPIKey            string
	GeminiModel             string
	ClassifyTimeout         time.Duration
	ClassificationCacheSize int
	ClassificationCacheTTL  time.Duration
	RedisURL                string

	// Google Sheets export
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleCredentialsFile string
	GoogleCredentialsJSON string
	GoogleOAuthClientJSON string
	GoogleOAuthClientFile string
	GoogleOAuthTokenJSON  string
	GoogleOAuthTokenFile  string
	// ExportBackfill re-exports the current month when the worker starts.
	ExportBackfill bool

	LogLevel        string
	ShutdownTimeout time.Duration
}

var (
	validBackends     = []string{"memory", "postgres", "sqlite"}
	validPolicies     = []string{"payment_aware", "simple"}
	validCategorizers = []string{"gemini", "keyword"}
	validLogLevels    = []string{"debug", "info", "warn", "error"}
)

func Load() *Config {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       strings.TrimRight(getEnv("WEBHOOK_URL", ""), "/"),
		WebhookSecret:    getEnv("WEBHOOK_SECRET", ""),

		DataBackend:    getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath:   getEnv("SQLITE_DB_PATH", "./data/saldo.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "saldo"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),

		BalancePolicy:  getEnv("BALANCE_POLICY", "payment_aware"),
		LedgerTimezone: getEnv("LEDGER_TIMEZONE", "America/Sao_Paulo"),

		Categorizer:             getEnv("CATEGORIZER", "gemini"),
		GeminiAPIKey:            getEnv("GEMINI_API_KEY", ""),
		GeminiModel:             getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		ClassifyTimeout:         getEnvDuration("CLASSIFY_TIMEOUT", 10*time.Second),
		ClassificationCacheSize: getEnvInt("CLASSIFICATION_CACHE_SIZE", 500),
		ClassificationCacheTTL:  getEnvDuration("CLASSIFICATION_CACHE_TTL", 24*time.Hour),
		RedisURL:                getEnv("REDIS_URL", ""),

		GoogleSpreadsheetID:   getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleSheetName:       getEnv("GOOGLE_SHEET_NAME", "Transações"),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		GoogleOAuthClientJSON: getEnv("GOOGLE_OAUTH_CLIENT_JSON", ""),
		GoogleOAuthClientFile: getEnv("GOOGLE_OAUTH_CLIENT_FILE", ""),
		GoogleOAuthTokenJSON:  getEnv("GOOGLE_OAUTH_TOKEN_JSON", ""),
		GoogleOAuthTokenFile:  getEnv("GOOGLE_OAUTH_TOKEN_FILE", ""),
		ExportBackfill:        getEnvBool("EXPORT_BACKFILL", false),

		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	return cfg
}

// Location resolves LedgerTimezone, falling back to UTC when it is invalid.
// Validate reports invalid zones.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.LedgerTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// UseWebhook reports whether updates arrive through the HTTP webhook rather
// than long polling.
func (c *Config) UseWebhook() bool {
	return c.WebhookURL != ""
}

// ExportEnabled reports whether the Google Sheets export is configured.
func (c *Config) ExportEnabled() bool {
	return c.GoogleSpreadsheetID != ""
}

// Validate validates the configuration used by the bot process and returns an
// error listing every problem found.
func (c *Config) Validate() error {
	errs := c.validateCommon()

	if c.TelegramBotToken == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}

	if c.WebhookURL != "" {
		if u, err := url.Parse(c.WebhookURL); err != nil || u.Host == "" {
			errs = append(errs, fmt.Sprintf("invalid webhook URL '%s'", c.WebhookURL))
		} else if u.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("invalid webhook URL scheme '%s': must be 'https'", u.Scheme))
		}
		if c.RateLimitPerMinute <= 0 {
			errs = append(errs, fmt.Sprintf("invalid rate limit %d: must be positive", c.RateLimitPerMinute))
		}
	}

	if !slices.Contains(validPolicies, c.BalancePolicy) {
		errs = append(errs, fmt.Sprintf("invalid balance policy '%s': must be one of %v", c.BalancePolicy, validPolicies))
	}

	if !slices.Contains(validCategorizers, c.Categorizer) {
		errs = append(errs, fmt.Sprintf("invalid categorizer '%s': must be one of %v", c.Categorizer, validCategorizers))
	} else if c.Categorizer == "gemini" && c.GeminiAPIKey == "" {
		errs = append(errs, "GEMINI_API_KEY is required when using the gemini categorizer")
	}

	if c.ClassifyTimeout < 0 {
		errs = append(errs, fmt.Sprintf("invalid classify timeout %v: must not be negative", c.ClassifyTimeout))
	}
	if c.ClassificationCacheSize < 0 {
		errs = append(errs, fmt.Sprintf("invalid classification cache size %d: must not be negative", c.ClassificationCacheSize))
	}
	if c.ClassificationCacheSize > 0 && c.ClassificationCacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid classification cache TTL %v: must be at least 1 second", c.ClassificationCacheTTL))
	}
	if c.RedisURL != "" {
		if u, err := url.Parse(c.RedisURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid Redis URL '%s': %v", c.RedisURL, err))
		} else if u.Scheme != "redis" && u.Scheme != "rediss" {
			errs = append(errs, fmt.Sprintf("invalid Redis URL scheme '%s': must be 'redis' or 'rediss'", u.Scheme))
		}
	}

	return joinErrors(errs)
}

// ValidateWorker validates the configuration used by the export worker.
func (c *Config) ValidateWorker() error {
	errs := c.validateCommon()

	if c.AMQPURL == "" {
		errs = append(errs, "AMQP_URL is required for the export worker")
	}
	if c.GoogleSpreadsheetID == "" {
		errs = append(errs, "GOOGLE_SPREADSHEET_ID is required for the export worker")
	}
	if c.GoogleSheetName == "" {
		errs = append(errs, "GOOGLE_SHEET_NAME is required for the export worker")
	}
	if c.GoogleCredentialsFile != "" {
		if _, err := os.Stat(c.GoogleCredentialsFile); os.IsNotExist(err) {
			errs = append(errs, fmt.Sprintf("Google credentials file does not exist: %s", c.GoogleCredentialsFile))
		}
	}

	return joinErrors(errs)
}

func (c *Config) validateCommon() []string {
	var errs []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	switch c.DataBackend {
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			// Check if directory exists or can be created
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	case "postgres":
		if c.DatabaseURL == "" {
			errs = append(errs, "DATABASE_URL is required when using postgres backend")
		}
		if c.DBMaxOpenConns < 1 {
			errs = append(errs, fmt.Sprintf("invalid max open connections %d: must be at least 1", c.DBMaxOpenConns))
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := time.LoadLocation(c.LedgerTimezone); err != nil {
		errs = append(errs, fmt.Sprintf("invalid ledger timezone '%s': %v", c.LedgerTimezone, err))
	}

	if !slices.Contains(validLogLevels, c.LogLevel) {
		errs = append(errs, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	return errs
}

func joinErrors(errs []string) error {
	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
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
