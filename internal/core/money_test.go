package core

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  any
		out string
		ok  bool
	}{
		{1000.0, "1000", true},
		{-200.5, "-200.5", true},
		{42, "42", true},
		{int64(-7), "-7", true},
		{json.Number("12.34"), "12.34", true},
		{"12.34", "12.34", true},
		{"12,34", "12.34", true},
		{"1,234.50", "1234.5", true},
		{" $9.99 ", "9.99", true},
		{"-3", "-3", true},
		{"abc", "", false},
		{"", "", false},
		{nil, "", false},
		{math.NaN(), "", false},
		{math.Inf(1), "", false},
		{true, "", false},
	}
	for i, tc := range cases {
		got, ok := ParseAmount(tc.in)
		if ok != tc.ok {
			t.Fatalf("case %d (%v): expected ok=%v, got %v", i, tc.in, tc.ok, ok)
		}
		if tc.ok && !got.Equal(dec(tc.out)) {
			t.Fatalf("case %d (%v): expected %s, got %s", i, tc.in, tc.out, got)
		}
	}
}

func TestParseFormAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseFormAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(dec(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestSignedAmount(t *testing.T) {
	if got := SignedAmount("income", dec("25")); !got.Equal(dec("25")) {
		t.Fatalf("income should stay positive, got %s", got)
	}
	if got := SignedAmount(" Income ", dec("-25")); !got.Equal(dec("25")) {
		t.Fatalf("income should be made positive, got %s", got)
	}
	if got := SignedAmount("Food", dec("25")); !got.Equal(dec("-25")) {
		t.Fatalf("expense should be negative, got %s", got)
	}
}

func TestRound2(t *testing.T) {
	cases := map[string]string{
		"1.005":  "1.01",
		"-1.005": "-1.01",
		"2.344":  "2.34",
		"-2.345": "-2.35",
		"7":      "7",
	}
	for in, want := range cases {
		if got := Round2(dec(in)); !got.Equal(dec(want)) {
			t.Errorf("Round2(%s) = %s, want %s", in, got, want)
		}
	}
}
