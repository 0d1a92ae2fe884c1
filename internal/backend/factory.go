package backend

import (
	"context"
	"fmt"

	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/remote/airtable"
	"finboard/internal/remote/google"
	"finboard/internal/remote/memory"
	"finboard/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
}

func NewFactory(logger *applog.Logger) Factory {
	if logger == nil {
		logger = applog.Discard()
	}
	return &DefaultFactory{logger: logger.WithComponent(applog.ComponentBackend)}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case AirtableBackend:
		return f.createAirtableBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(ctx, config)
	case SheetsBackend:
		return f.createSheetsBackend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend(config)
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createAirtableBackend(config Config) (*BackendResult, error) {
	opts := []airtable.ClientOption{
		airtable.WithTables(config.AirtableTransactionsTable, config.AirtableCategoriesTable),
		airtable.WithRateLimit(config.AirtableRateLimit),
		airtable.WithLogger(f.logger),
	}
	if config.AirtableBaseURL != "" {
		opts = append(opts, airtable.WithBaseURL(config.AirtableBaseURL))
	}
	cli := airtable.NewClient(config.AirtableToken, config.AirtableBaseID, opts...)

	f.logger.Info("Initialized Airtable backend", "base_id", config.AirtableBaseID)
	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createSQLiteBackend(ctx context.Context, config Config) (*BackendResult, error) {
	repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	if config.SeedFile != "" {
		if err := f.seedSQLite(ctx, repo, config.SeedFile); err != nil {
			repo.Close()
			return nil, err
		}
	}

	f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	return &BackendResult{Backend: repo, Cleanup: repo.Close}, nil
}

// seedSQLite imports the seed file into a database that has no rows yet.
func (f *DefaultFactory) seedSQLite(ctx context.Context, repo *storage.SQLiteRepository, path string) error {
	empty, err := repo.Empty(ctx)
	if err != nil || !empty {
		return err
	}
	seed, err := memory.NewFromFile(path)
	if err != nil {
		return fmt.Errorf("load seed: %w", err)
	}

	txns, _ := seed.ListTransactions(ctx)
	for _, r := range txns {
		if _, err := repo.CreateTransaction(ctx, r.Fields); err != nil {
			return fmt.Errorf("seed transaction: %w", err)
		}
	}
	cats, _ := seed.ListCategories(ctx)
	for i, r := range cats {
		if err := repo.SaveCategory(ctx, core.CategoryFromRecord(r), i); err != nil {
			return fmt.Errorf("seed category: %w", err)
		}
	}
	f.logger.InfoContext(ctx, "Seeded SQLite database", "transactions", len(txns), "categories", len(cats))
	return nil
}

func (f *DefaultFactory) createSheetsBackend(ctx context.Context, config Config) (*BackendResult, error) {
	cli, err := google.New(ctx, config.Sheets, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	f.logger.Info("Initialized Google Sheets backend")
	return &BackendResult{Backend: cli}, nil
}

func (f *DefaultFactory) createMemoryBackend(config Config) (*BackendResult, error) {
	store, err := memory.NewFromFile(config.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize memory backend: %w", err)
	}

	f.logger.Info("Initialized memory backend", "seed_file", config.SeedFile)
	return &BackendResult{Backend: store}, nil
}
