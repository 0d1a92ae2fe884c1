// Package http serves the finboard JSON API.
//
// This file holds the helpers that turn query strings and request bodies
// into domain values.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/core"
)

// maxBodyBytes bounds mutation request bodies.
const maxBodyBytes = 64 << 10

var errBadBody = errors.New("malformed request body")

// ParseMonthParams reads year and month from the query. Missing values
// default to the month containing now; present but invalid values are an error.
func ParseMonthParams(query url.Values, now time.Time) (core.YearMonth, error) {
	year, month := now.Year(), int(now.Month())

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.YearMonth{}, fmt.Errorf("invalid year %q", v)
		}
		year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return core.YearMonth{}, fmt.Errorf("invalid month %q", v)
		}
		month = m
	}
	return core.ParseYearMonth(year, month)
}

// ParsePage reads the page query value. Anything unparseable is page 1;
// clamping to the last page happens in the store.
func ParsePage(query url.Values) int {
	p, err := strconv.Atoi(strings.TrimSpace(query.Get("page")))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

// RequestBodyParser reads a JSON object or a form-encoded body once and
// exposes its values as trimmed strings.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	present  map[string]bool
	parsed   bool
	err      error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("%w: body exceeds %d bytes", errBadBody, maxBodyBytes)
	}
	return p
}

// Parse decodes the body. Bodies starting with '{' are JSON, anything else
// is treated as a form.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true
	if p.err != nil {
		return p.err
	}

	p.present = make(map[string]bool)
	trimmed := strings.TrimSpace(string(p.body))
	if strings.HasPrefix(trimmed, "{") {
		dec := json.NewDecoder(strings.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = fmt.Errorf("%w: %v", errBadBody, err)
			return p.err
		}
		for k := range p.jsonData {
			p.present[k] = true
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", errBadBody, p.err)
		return p.err
	}
	for k := range p.formData {
		p.present[k] = true
	}
	return nil
}

// Has reports whether key was sent at all, even with an empty value.
func (p *RequestBodyParser) Has(key string) bool {
	return p.present[key]
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		return sanitizeInput(stringValue(p.jsonData[key]))
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims whitespace and drops control characters other than
// tab and newline.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// fieldError is a validation failure tied to one input field.
type fieldError struct {
	Field string
	Err   error
}

func (e *fieldError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *fieldError) Unwrap() error { return e.Err }

// parseNewTransaction applies the add form rules: a strictly positive
// amount whose sign comes from the category, a required category, and a
// date defaulting to today.
func parseNewTransaction(p *RequestBodyParser, now time.Time) (core.Transaction, error) {
	category := p.Get("category")
	if category == "" {
		return core.Transaction{}, &fieldError{"category", core.ErrEmptyCategory}
	}
	amount, err := core.ParseFormAmount(p.Get("amount"))
	if err != nil {
		return core.Transaction{}, &fieldError{"amount", err}
	}

	date := core.NewDate(now.Year(), now.Month(), now.Day())
	if v := p.Get("date"); v != "" {
		if date, err = core.ParseDate(v); err != nil {
			return core.Transaction{}, &fieldError{"date", err}
		}
	}

	return core.Transaction{
		Date:        date,
		Amount:      decimal.NewNullDecimal(core.SignedAmount(category, amount)),
		Category:    category,
		Description: p.Get("description"),
	}, nil
}

// parsePatch reads the edit fields that were sent. Edited amounts are signed
// values taken as entered.
func parsePatch(p *RequestBodyParser) (core.TransactionPatch, error) {
	var patch core.TransactionPatch
	if p.Has("date") {
		d, err := core.ParseDate(p.Get("date"))
		if err != nil {
			return patch, &fieldError{"date", err}
		}
		patch.Date = &d
	}
	if p.Has("amount") {
		a, ok := core.ParseAmount(p.Get("amount"))
		if !ok {
			return patch, &fieldError{"amount", core.ErrInvalidAmount}
		}
		patch.Amount = &a
	}
	if p.Has("category") {
		c := p.Get("category")
		if c == "" {
			return patch, &fieldError{"category", core.ErrEmptyCategory}
		}
		patch.Category = &c
	}
	if p.Has("description") {
		d := p.Get("description")
		patch.Description = &d
	}
	return patch, nil
}
