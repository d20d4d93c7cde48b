package currency

import (
	"testing"

	"github.com/fkhayef/divvy/internal/errs"
)

func TestParseCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"50", 5000},
		{"50.1", 5010},
		{"50.10", 5010},
		{"50.00", 5000},
		{"0.05", 5},
		{"16.67", 1667},
		{" 25.50 ", 2550},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCents(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("ParseCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseCentsRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"negative", "-1"},
		{"letters", "abc"},
		{"three decimals", "10.001"},
		{"trailing dot", "10."},
		{"fraction letters", "10.x9"},
		{"overflow", "92233720368547758"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCents(tt.in)
			if _, ok := errs.AsValidation(err); !ok {
				t.Errorf("ParseCents(%q) = %v, want validation error", tt.in, err)
			}
		})
	}
}

func TestFormatCents(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0.00"},
		{5, "0.05"},
		{1667, "16.67"},
		{5000, "50.00"},
		{-50, "-0.50"},
		{-1667, "-16.67"},
	}

	for _, tt := range tests {
		if got := FormatCents(tt.in); got != tt.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAmountRoundTrip(t *testing.T) {
	a, err := Amount("USD", 1667)
	if err != nil {
		t.Fatal(err)
	}
	if got := Cents(a); got != 1667 {
		t.Errorf("Cents = %d, want 1667", got)
	}
	if got := Format(a); got != "16.67" {
		t.Errorf("Format = %q, want %q", got, "16.67")
	}
}

func TestAmountRejectsUnknownCurrency(t *testing.T) {
	if _, err := Amount("XXQ", 100); err == nil {
		t.Error("expected error for unknown currency code")
	}
}
