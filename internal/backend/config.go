package backend

import (
	"errors"
	"fmt"

	"finboard/internal/config"
	"finboard/internal/remote/google"
)

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// Airtable
	AirtableBaseURL           string
	AirtableToken             string
	AirtableBaseID            string
	AirtableTransactionsTable string
	AirtableCategoriesTable   string
	AirtableRateLimit         int

	// SQLite
	SQLiteDBPath string

	// Google Sheets
	Sheets google.Config

	// Seed file for the memory backend, also imported into an empty sqlite
	// database.
	SeedFile string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type: backendType,

		AirtableBaseURL:           appConfig.AirtableBaseURL,
		AirtableToken:             appConfig.AirtableToken,
		AirtableBaseID:            appConfig.AirtableBaseID,
		AirtableTransactionsTable: appConfig.AirtableTransactionsTable,
		AirtableCategoriesTable:   appConfig.AirtableCategoriesTable,
		AirtableRateLimit:         appConfig.AirtableRateLimit,

		SQLiteDBPath: appConfig.SQLiteDBPath,

		Sheets: google.Config{
			SpreadsheetID:      appConfig.GoogleSpreadsheetID,
			TransactionsSheet:  appConfig.GoogleTransactionsSheet,
			CategoriesSheet:    appConfig.GoogleCategoriesSheet,
			ServiceAccountJSON: appConfig.GoogleServiceAccountJSON,
			ServiceAccountFile: appConfig.GoogleServiceAccountFile,
		},

		SeedFile: appConfig.MemorySeedFile,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case AirtableBackend:
		if c.AirtableToken == "" || c.AirtableBaseID == "" {
			return errors.New("airtable token and base id are required for airtable backend")
		}
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("SQLite database path is required for sqlite backend")
		}
	case SheetsBackend:
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("Google Spreadsheet ID is required for sheets backend")
		}
		if c.Sheets.ServiceAccountJSON == "" && c.Sheets.ServiceAccountFile == "" {
			return errors.New("service account credentials are required for sheets backend")
		}
	}
	return nil
}

// GetBackendTypeStrings returns all valid backend type strings
func GetBackendTypeStrings() []string {
	types := []BackendType{AirtableBackend, SheetsBackend, SQLiteBackend, MemoryBackend}
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = t.String()
	}
	return out
}
