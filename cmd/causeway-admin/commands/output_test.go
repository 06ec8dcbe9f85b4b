package commands

import (
	"testing"
	"time"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{250, "2.50"},
		{123456, "1234.56"},
		{-1999, "-19.99"},
		{-5, "-0.05"},
	}
	for _, tt := range tests {
		if got := formatAmount(tt.cents); got != tt.want {
			t.Errorf("formatAmount(%d) = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestFormatMoney(t *testing.T) {
	if got := formatMoney(2500, "USD"); got != "USD 25.00" {
		t.Errorf("formatMoney() = %q", got)
	}
	if got := formatMoney(100, "eur"); got != "EUR 1.00" {
		t.Errorf("formatMoney() = %q", got)
	}
}

func TestFormatWhen(t *testing.T) {
	if got := formatWhen(time.Time{}); got != "-" {
		t.Errorf("zero time = %q, want -", got)
	}
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)
	if got := formatWhen(ts); got != "2026-03-14 09:26" {
		t.Errorf("formatWhen() = %q", got)
	}

	if got := formatWhenPtr(nil); got != "-" {
		t.Errorf("nil pointer = %q, want -", got)
	}
	if got := formatWhenPtr(&ts); got != "2026-03-14 09:26" {
		t.Errorf("formatWhenPtr() = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"this is far too long", 10, "this is f…"},
		{"héllo wörld ünicode", 8, "héllo w…"},
		{"", 5, ""},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
