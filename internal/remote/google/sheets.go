// Package google is a backend over a Google Sheets spreadsheet holding one
// sheet of transactions and one of budget categories.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"finboard/internal/core"
	applog "finboard/internal/log"
	"finboard/internal/remote"
)

const (
	DefaultTransactionsSheet = "Transactions"
	DefaultCategoriesSheet   = "Categories"
)

// Transaction columns are A:E = ID, Date, Amount, Category, Description.
var transactionColumns = []string{"ID", core.FieldDate, core.FieldAmount, core.FieldCategory, core.FieldDescription}

// Category columns are A:C = ID, Name, Amount.
var categoryColumns = []string{"ID", core.FieldName, core.FieldAmount}

type Config struct {
	SpreadsheetID      string
	TransactionsSheet  string
	CategoriesSheet    string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc               *gsheet.Service
	spreadsheetID     string
	transactionsSheet string
	categoriesSheet   string
	logger            *applog.Logger
}

var _ remote.Store = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config, logger *applog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentRemote)

	creds, err := credentials(cfg)
	if err != nil {
		return nil, err
	}
	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created", "spreadsheet_id", cfg.SpreadsheetID)

	c := &Client{
		svc:               svc,
		spreadsheetID:     cfg.SpreadsheetID,
		transactionsSheet: cfg.TransactionsSheet,
		categoriesSheet:   cfg.CategoriesSheet,
		logger:            logger,
	}
	if c.transactionsSheet == "" {
		c.transactionsSheet = DefaultTransactionsSheet
	}
	if c.categoriesSheet == "" {
		c.categoriesSheet = DefaultCategoriesSheet
	}
	return c, nil
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		return []byte(cfg.ServiceAccountJSON), nil
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Record, error) {
	values, err := c.read(ctx, c.transactionsSheet, "A:E")
	if err != nil {
		return nil, err
	}
	return parseRows(values, transactionColumns), nil
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Record, error) {
	values, err := c.read(ctx, c.categoriesSheet, "A:C")
	if err != nil {
		return nil, err
	}
	return parseRows(values, categoryColumns), nil
}

// CreateTransaction appends a row with a freshly generated id.
func (c *Client) CreateTransaction(ctx context.Context, fields map[string]any) (core.Record, error) {
	rec := core.Record{ID: uuid.NewString(), Fields: fields}
	rng := fmt.Sprintf("%s!A:E", c.transactionsSheet)
	vr := &gsheet.ValueRange{Values: [][]any{toRow(rec, transactionColumns)}}
	_, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return core.Record{}, fmt.Errorf("append to %s: %w", c.transactionsSheet, err)
	}
	return rec, nil
}

// UpdateTransaction rewrites the row whose ID column matches id, merging the
// given fields into the current values.
func (c *Client) UpdateTransaction(ctx context.Context, id string, fields map[string]any) (core.Record, error) {
	values, err := c.read(ctx, c.transactionsSheet, "A:E")
	if err != nil {
		return core.Record{}, err
	}
	idx := findRow(values, id)
	if idx < 0 {
		return core.Record{}, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound)
	}
	rec := rowRecord(values[idx], transactionColumns)
	for k, v := range fields {
		rec.Fields[k] = v
	}

	rowNum := idx + 1
	rng := fmt.Sprintf("%s!A%d:E%d", c.transactionsSheet, rowNum, rowNum)
	vr := &gsheet.ValueRange{Values: [][]any{toRow(rec, transactionColumns)}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return core.Record{}, fmt.Errorf("update %s: %w", rng, err)
	}
	return rec, nil
}

func (c *Client) read(ctx context.Context, sheet, cols string) ([][]any, error) {
	rng := fmt.Sprintf("%s!%s", sheet, cols)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").DateTimeRenderOption("FORMATTED_STRING").
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	c.logger.DebugContext(ctx, "read sheet range", "range", rng, applog.FieldCount, len(resp.Values))
	return resp.Values, nil
}
