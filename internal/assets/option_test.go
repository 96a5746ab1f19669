package assets

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestParseOption_ValidSymbols(t *testing.T) {
	tests := []struct {
		symbol         string
		wantUnderlying string
		wantType       OptionType
		wantStrike     float64
		wantExpiration string
	}{
		{"SPY241220P00450000", "SPY", Put, 450, "2024-12-20"},
		{"SPY241220C00140000", "SPY", Call, 140, "2024-12-20"},
		{"QQQ250117C00520500", "QQQ", Call, 520.5, "2025-01-17"},
		{"spy241220p00450000", "SPY", Put, 450, "2024-12-20"},  // lowercase input normalized
		{" SPY241220P00450000 ", "SPY", Put, 450, "2024-12-20"}, // whitespace trimmed
		{"BRKB241220C05000000", "BRKB", Call, 5000, "2024-12-20"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			opt, err := ParseOption(tt.symbol)
			if err != nil {
				t.Fatalf("ParseOption(%q) error: %v", tt.symbol, err)
			}
			if opt.Underlying != tt.wantUnderlying {
				t.Fatalf("underlying = %q, want %q", opt.Underlying, tt.wantUnderlying)
			}
			if opt.Type != tt.wantType {
				t.Fatalf("type = %q, want %q", opt.Type, tt.wantType)
			}
			if math.Abs(opt.Strike-tt.wantStrike) > 1e-9 {
				t.Fatalf("strike = %v, want %v", opt.Strike, tt.wantStrike)
			}
			if got := opt.Expiration.Format("2006-01-02"); got != tt.wantExpiration {
				t.Fatalf("expiration = %s, want %s", got, tt.wantExpiration)
			}
		})
	}
}

func TestParseOption_InvalidSymbols(t *testing.T) {
	tests := []string{
		"",
		"SPY",
		"SPY241220",
		"SPY241220X00450000",     // bad type char
		"SPY241220P0045000",      // 7-digit strike
		"SPY241220P004500001",    // 9-digit strike
		"SPY241220P00450000X",    // trailing garbage
		"1234567P00450000",       // date digits run into underlying digits
		"241220P00450000",        // no underlying
	}

	for _, symbol := range tests {
		t.Run("invalid_"+symbol, func(t *testing.T) {
			if _, err := ParseOption(symbol); !errors.Is(err, ErrNotOption) {
				t.Fatalf("ParseOption(%q) = %v, want ErrNotOption", symbol, err)
			}
		})
	}
}

func TestIsOption(t *testing.T) {
	if !IsOption("SPY241220P00450000") {
		t.Fatal("expected option symbol to be recognized")
	}
	if IsOption("SPY") {
		t.Fatal("plain stock symbol misclassified as option")
	}
}

func TestIntrinsicValue(t *testing.T) {
	call := &Option{Type: Call, Strike: 150}
	put := &Option{Type: Put, Strike: 150}

	tests := []struct {
		name  string
		opt   *Option
		price float64
		want  float64
	}{
		{"ITM call", call, 162.5, 12.5},
		{"ATM call", call, 150, 0},
		{"OTM call", call, 140, 0},
		{"ITM put", put, 140, 10},
		{"ATM put", put, 150, 0},
		{"OTM put", put, 160, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opt.IntrinsicValue(tt.price); math.Abs(got-tt.want) > 1e-9 {
				t.Fatalf("IntrinsicValue(%v) = %v, want %v", tt.price, got, tt.want)
			}
		})
	}
}

func TestFormatOption_RoundTrip(t *testing.T) {
	exp := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)

	symbol := FormatOption("spy", exp, Put, 450)
	if symbol != "SPY241220P00450000" {
		t.Fatalf("FormatOption = %q, want SPY241220P00450000", symbol)
	}

	opt, err := ParseOption(symbol)
	if err != nil {
		t.Fatalf("round-trip parse failed: %v", err)
	}
	if opt.Underlying != "SPY" || opt.Type != Put || opt.Strike != 450 || !opt.Expiration.Equal(exp) {
		t.Fatalf("round-trip mismatch: %+v", opt)
	}
}

func TestFormatOption_FractionalStrikeEncoding(t *testing.T) {
	exp := time.Date(2024, 12, 20, 0, 0, 0, 0, time.UTC)
	// Strikes encode in thousandths of a dollar.
	if got := FormatOption("SPY", exp, Call, 123.4567); got != "SPY241220C00123457" {
		t.Fatalf("FormatOption = %q, want SPY241220C00123457", got)
	}
	if got := FormatOption("SPY", exp, Call, 394.995); got != "SPY241220C00394995" {
		t.Fatalf("FormatOption = %q, want SPY241220C00394995", got)
	}
}
