// Package airtable is a backend over the Airtable REST API.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"finboard/internal/core"
	applog "finboard/internal/log"
)

const (
	DefaultBaseURL   = "https://api.airtable.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second, Airtable's per-base limit

	DefaultTransactionsTable = "Transactions"
	DefaultCategoriesTable   = "Categories"
)

// Client implements remote.Store against one Airtable base.
type Client struct {
	baseURL      string
	token        string
	baseID       string
	transactions string
	categories   string
	httpClient   *http.Client
	limiter      *rate.Limiter
	logger       *applog.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithTables overrides the table names. Empty names keep the default.
func WithTables(transactions, categories string) ClientOption {
	return func(c *Client) {
		if transactions != "" {
			c.transactions = transactions
		}
		if categories != "" {
			c.categories = categories
		}
	}
}

func WithLogger(logger *applog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger.WithComponent(applog.ComponentRemote)
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the given base.
func NewClient(token, baseID string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      DefaultBaseURL,
		token:        token,
		baseID:       baseID,
		transactions: DefaultTransactionsTable,
		categories:   DefaultCategoriesTable,
		httpClient:   &http.Client{Timeout: DefaultTimeout},
		limiter:      rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:       applog.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError represents a non-2xx answer from Airtable.
type APIError struct {
	StatusCode int
	Status     string // reason phrase, e.g. "404 Not Found"
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable API error: %s: %s (endpoint: %s)", e.Status, e.Message, e.Endpoint)
}

type record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset"`
}

type writeRequest struct {
	Fields   map[string]any `json:"fields"`
	Typecast bool           `json:"typecast"`
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Record, error) {
	return c.list(ctx, c.transactions)
}

func (c *Client) ListCategories(ctx context.Context) ([]core.Record, error) {
	return c.list(ctx, c.categories)
}

func (c *Client) CreateTransaction(ctx context.Context, fields map[string]any) (core.Record, error) {
	var rec record
	if err := c.do(ctx, http.MethodPost, c.tablePath(c.transactions), writeRequest{Fields: fields, Typecast: true}, &rec); err != nil {
		return core.Record{}, err
	}
	return core.Record{ID: rec.ID, Fields: rec.Fields}, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, fields map[string]any) (core.Record, error) {
	var rec record
	path := c.tablePath(c.transactions) + "/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodPatch, path, writeRequest{Fields: fields, Typecast: true}, &rec); err != nil {
		return core.Record{}, err
	}
	return core.Record{ID: rec.ID, Fields: rec.Fields}, nil
}

// list follows Airtable's offset cursor until every page is read.
func (c *Client) list(ctx context.Context, table string) ([]core.Record, error) {
	var out []core.Record
	offset := ""
	for {
		path := c.tablePath(table)
		if offset != "" {
			path += "?offset=" + url.QueryEscape(offset)
		}
		var page listResponse
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		for _, r := range page.Records {
			out = append(out, core.Record{ID: r.ID, Fields: r.Fields})
		}
		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}
	c.logger.Debug("listed records", "table", table, applog.FieldCount, len(out))
	return out, nil
}

func (c *Client) tablePath(table string) string {
	return "/v0/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(table)
}

// do performs a rate-limited request and decodes the JSON answer into result.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.DebugContext(ctx, "airtable request", applog.FieldMethod, method, applog.FieldEndpoint, path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Message: strings.TrimSpace(string(msg)), Endpoint: path}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
