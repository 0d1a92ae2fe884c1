package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		query     string
		wantYear  int
		wantMonth time.Month
		wantErr   bool
	}{
		{"", 2025, time.June, false},
		{"year=2024&month=12", 2024, time.December, false},
		{"month=1", 2025, time.January, false},
		{"month=0", 0, 0, true},
		{"month=13", 0, 0, true},
		{"year=abc", 0, 0, true},
	}
	for _, tt := range tests {
		q, _ := url.ParseQuery(tt.query)
		got, err := ParseMonthParams(q, now)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error", tt.query)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tt.query, err)
		}
		if got.Year != tt.wantYear || got.Month != tt.wantMonth {
			t.Fatalf("%q: got %+v", tt.query, got)
		}
	}
}

func TestParsePage(t *testing.T) {
	tests := map[string]int{"": 1, "page=3": 3, "page=-2": 1, "page=x": 1, "page= 2 ": 2}
	for query, want := range tests {
		q, _ := url.ParseQuery(query)
		if got := ParsePage(q); got != want {
			t.Errorf("ParsePage(%q) = %d, want %d", query, got, want)
		}
	}
}

func TestRequestBodyParser(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"amount": 12.5, "category": " Food\u0007 ", "note": null}`))
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Get("amount") != "12.5" {
		t.Fatalf("amount = %q", p.Get("amount"))
	}
	if p.Get("category") != "Food" {
		t.Fatalf("category = %q", p.Get("category"))
	}
	if !p.Has("note") || p.Has("date") {
		t.Fatal("Has should report sent keys only")
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("amount=3&category=Travel"))
	p = NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse form: %v", err)
	}
	if p.Get("category") != "Travel" || !p.Has("amount") {
		t.Fatalf("form values not read")
	}

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", maxBodyBytes+1)))
	if err := NewRequestBodyParser(r).Parse(); err == nil {
		t.Fatal("oversized body should fail")
	}
}

func TestParseNewTransactionSign(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		body string
		want string
	}{
		{"amount=40&category=Food", "-40"},
		{"amount=40&category=INCOME", "40"},
		{"amount=1.005&category=Food", "-1.005"},
	}
	for _, tt := range tests {
		p := NewRequestBodyParser(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body)))
		if err := p.Parse(); err != nil {
			t.Fatalf("Parse: %v", err)
		}
		tx, err := parseNewTransaction(p, now)
		if err != nil {
			t.Fatalf("%q: %v", tt.body, err)
		}
		if tx.Amount.Decimal.String() != tt.want {
			t.Fatalf("%q: amount = %s, want %s", tt.body, tx.Amount.Decimal, tt.want)
		}
		if tx.Date.String() != "2025-06-15" {
			t.Fatalf("default date = %s", tx.Date)
		}
	}
}

func TestParsePatchOnlySentFields(t *testing.T) {
	p := NewRequestBodyParser(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"description": ""}`)))
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	patch, err := parsePatch(p)
	if err != nil {
		t.Fatalf("parsePatch: %v", err)
	}
	if patch.Description == nil || *patch.Description != "" {
		t.Fatal("empty description should clear the field")
	}
	if patch.Amount != nil || patch.Date != nil || patch.Category != nil {
		t.Fatal("unsent fields must stay nil")
	}

	p = NewRequestBodyParser(httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"amount": "abc"}`)))
	_ = p.Parse()
	if _, err := parsePatch(p); err == nil {
		t.Fatal("invalid amount should fail")
	}
}
