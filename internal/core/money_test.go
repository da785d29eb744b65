package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{"12.344", 1234, true},
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"0.004", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"99999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMoneyString(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00",
		1:      "0.01",
		1234:   "12.34",
		100000: "1000.00",
		-250:   "-2.50",
	}
	for cents, want := range cases {
		if got := (Money{Cents: cents}).String(); got != want {
			t.Errorf("Money{%d}.String() = %q, want %q", cents, got, want)
		}
	}
}

func TestMoneyFromDecimal(t *testing.T) {
	got := MoneyFromDecimal(decimal.RequireFromString("10").Div(decimal.NewFromInt(3)))
	if got.Cents != 333 {
		t.Fatalf("expected 333 cents, got %d", got.Cents)
	}
	got = MoneyFromDecimal(decimal.RequireFromString("0.125"))
	if got.Cents != 13 {
		t.Fatalf("expected half-up to 13 cents, got %d", got.Cents)
	}
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(Money{Cents: 1599})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "15.99" {
		t.Fatalf("marshal = %s, want 15.99", b)
	}

	for _, in := range []string{`15.99`, `"15.99"`, `"15,99"`} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err != nil {
			t.Fatalf("unmarshal %s: %v", in, err)
		}
		if m.Cents != 1599 {
			t.Fatalf("unmarshal %s = %d cents, want 1599", in, m.Cents)
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`"lots"`), &m); err == nil {
		t.Fatal("expected error for non-numeric amount")
	}
}
