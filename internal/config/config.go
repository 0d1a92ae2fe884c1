package config

import (
	"fmt"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Backends selectable through DATA_BACKEND.
const (
	BackendAirtable = "airtable"
	BackendSheets   = "sheets"
	BackendSQLite   = "sqlite"
	BackendMemory   = "memory"
)

var validBackends = []string{BackendAirtable, BackendSheets, BackendSQLite, BackendMemory}

type Config struct {
	// HTTP Server
	Port     string
	LogLevel string

	// Dashboard
	WindowMonths    int
	PageSize        int
	RemoteTimeout   time.Duration
	RefreshInterval time.Duration

	// Backend selection
	DataBackend string

	// Airtable
	AirtableBaseURL           string
	AirtableToken             string
	AirtableBaseID            string
	AirtableTransactionsTable string
	AirtableCategoriesTable   string
	AirtableRateLimit         int

	// Database
	SQLiteDBPath string

	// AMQP, optional for the server
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets
	GoogleSpreadsheetID      string
	GoogleTransactionsSheet  string
	GoogleCategoriesSheet    string
	GoogleServiceAccountJSON string
	GoogleServiceAccountFile string

	// Memory backend
	MemorySeedFile string
}

func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		WindowMonths:    getEnvInt("WINDOW_MONTHS", 6),
		PageSize:        getEnvInt("PAGE_SIZE", 20),
		RemoteTimeout:   getEnvDuration("REMOTE_TIMEOUT", 10*time.Second),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", 5*time.Minute),

		DataBackend: getEnv("DATA_BACKEND", BackendMemory),

		AirtableBaseURL:           getEnv("AIRTABLE_BASE_URL", "https://api.airtable.com"),
		AirtableToken:             getEnv("AIRTABLE_TOKEN", ""),
		AirtableBaseID:            getEnv("AIRTABLE_BASE_ID", ""),
		AirtableTransactionsTable: getEnv("AIRTABLE_TRANSACTIONS_TABLE", "Transactions"),
		AirtableCategoriesTable:   getEnv("AIRTABLE_CATEGORIES_TABLE", "Categories"),
		AirtableRateLimit:         getEnvInt("AIRTABLE_RATE_LIMIT", 5),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/finboard.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "finboard"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "mutations"),

		GoogleSpreadsheetID:      getEnv("GOOGLE_SPREADSHEET_ID", ""),
		GoogleTransactionsSheet:  getEnv("GOOGLE_TRANSACTIONS_SHEET", "Transactions"),
		GoogleCategoriesSheet:    getEnv("GOOGLE_CATEGORIES_SHEET", "Categories"),
		GoogleServiceAccountJSON: getEnv("GOOGLE_SERVICE_ACCOUNT_JSON", ""),
		GoogleServiceAccountFile: getEnv("GOOGLE_SERVICE_ACCOUNT_FILE", ""),

		MemorySeedFile: getEnv("MEMORY_SEED_FILE", ""),
	}
}

// Validate checks every setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if !slices.Contains(validBackends, c.DataBackend) {
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.WindowMonths < 1 || c.WindowMonths > 60 {
		errs = append(errs, fmt.Sprintf("invalid window months %d: must be between 1 and 60", c.WindowMonths))
	}
	if c.PageSize < 1 || c.PageSize > 500 {
		errs = append(errs, fmt.Sprintf("invalid page size %d: must be between 1 and 500", c.PageSize))
	}
	if c.RemoteTimeout < 100*time.Millisecond || c.RemoteTimeout > 5*time.Minute {
		errs = append(errs, fmt.Sprintf("invalid remote timeout %v: must be between 100ms and 5m", c.RemoteTimeout))
	}
	if c.RefreshInterval != 0 && c.RefreshInterval < time.Second {
		errs = append(errs, fmt.Sprintf("invalid refresh interval %v: must be 0 (disabled) or at least 1 second", c.RefreshInterval))
	}

	switch c.DataBackend {
	case BackendAirtable:
		if c.AirtableToken == "" {
			errs = append(errs, "AIRTABLE_TOKEN is required when using airtable backend")
		}
		if c.AirtableBaseID == "" {
			errs = append(errs, "AIRTABLE_BASE_ID is required when using airtable backend")
		}
		if u, err := url.Parse(c.AirtableBaseURL); err != nil || (u.Scheme != "https" && u.Scheme != "http") {
			errs = append(errs, fmt.Sprintf("invalid Airtable base URL '%s'", c.AirtableBaseURL))
		}
		if c.AirtableRateLimit < 1 {
			errs = append(errs, fmt.Sprintf("invalid Airtable rate limit %d: must be at least 1", c.AirtableRateLimit))
		}
	case BackendSQLite:
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		}
	case BackendSheets:
		if c.GoogleSpreadsheetID == "" {
			errs = append(errs, "Google Spreadsheet ID is required when using sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			errs = append(errs, "either GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE must be provided for sheets backend")
		}
		if c.GoogleServiceAccountFile != "" {
			if _, err := os.Stat(c.GoogleServiceAccountFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("Google service account file does not exist: %s", c.GoogleServiceAccountFile))
			}
		}
	case BackendMemory:
		if c.MemorySeedFile != "" {
			if _, err := os.Stat(c.MemorySeedFile); os.IsNotExist(err) {
				errs = append(errs, fmt.Sprintf("memory seed file does not exist: %s", c.MemorySeedFile))
			}
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

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
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
