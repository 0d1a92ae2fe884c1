// Package storage is a backend keeping the transaction and category tables
// in a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/remote"
)

type SQLiteRepository struct {
	db     *sql.DB
	logger *applog.Logger
}

var _ remote.Store = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// single writer; also keeps ":memory:" databases on one connection
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteRepository{db: db, logger: logger.WithComponent(applog.ComponentStorage)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount, category, description FROM transactions ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var (
			id, date, category, description string
			amount                          sql.NullString
		)
		if err := rows.Scan(&id, &date, &amount, &category, &description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, transactionRecord(id, date, amount, category, description))
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Record, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, amount FROM categories ORDER BY position, rowid`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Record
	for rows.Next() {
		var id, name, amount string
		if err := rows.Scan(&id, &name, &amount); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, core.Record{ID: id, Fields: map[string]any{core.FieldName: name, core.FieldAmount: amount}})
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, fields map[string]any) (core.Record, error) {
	id := uuid.NewString()
	date, amount, category, description := transactionColumns(fields)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, date, amount, category, description) VALUES (?, ?, ?, ?, ?)`,
		id, date, amount, category, description)
	if err != nil {
		return core.Record{}, fmt.Errorf("insert transaction: %w", err)
	}
	r.logger.DebugContext(ctx, "transaction stored", applog.FieldTransactionID, id)
	return transactionRecord(id, date, amount, category, description), nil
}

// UpdateTransaction merges fields into the stored row.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id string, fields map[string]any) (core.Record, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Record{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var (
		date, category, description string
		amount                      sql.NullString
	)
	err = tx.QueryRowContext(ctx,
		`SELECT date, amount, category, description FROM transactions WHERE id = ?`, id).
		Scan(&date, &amount, &category, &description)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Record{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.Record{}, fmt.Errorf("get transaction: %w", err)
	}

	merged := transactionRecord(id, date, amount, category, description).Fields
	maps.Copy(merged, fields)
	date, amount, category, description = transactionColumns(merged)

	_, err = tx.ExecContext(ctx,
		`UPDATE transactions SET date = ?, amount = ?, category = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		date, amount, category, description, id)
	if err != nil {
		return core.Record{}, fmt.Errorf("update transaction: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return core.Record{}, fmt.Errorf("commit: %w", err)
	}
	return transactionRecord(id, date, amount, category, description), nil
}

// SaveCategory inserts or replaces a category by name. position orders the
// category list.
func (r *SQLiteRepository) SaveCategory(ctx context.Context, c core.BudgetCategory, position int) error {
	if err := c.Validate(); err != nil {
		return err
	}
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, amount, position) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET amount = excluded.amount, position = excluded.position`,
		id, c.Name, c.Allocated.String(), position)
	if err != nil {
		return fmt.Errorf("save category %s: %w", c.Name, err)
	}
	return nil
}

// Empty reports whether both tables have no rows.
func (r *SQLiteRepository) Empty(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM transactions) + (SELECT COUNT(*) FROM categories)`).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count rows: %w", err)
	}
	return n == 0, nil
}

// transactionColumns normalizes loosely typed fields into column values.
// Amounts are stored as exact decimal text; an unparseable amount is NULL.
func transactionColumns(fields map[string]any) (date string, amount sql.NullString, category, description string) {
	t := core.TransactionFromRecord(core.Record{Fields: fields})
	if t.Amount.Valid {
		amount = sql.NullString{String: t.Amount.Decimal.String(), Valid: true}
	}
	return t.Date.String(), amount, t.Category, t.Description
}

func transactionRecord(id, date string, amount sql.NullString, category, description string) core.Record {
	fields := map[string]any{
		core.FieldDate:        date,
		core.FieldCategory:    category,
		core.FieldDescription: description,
	}
	if amount.Valid {
		fields[core.FieldAmount] = amount.String
	}
	return core.Record{ID: id, Fields: fields}
}
