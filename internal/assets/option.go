// Package assets parses OSI-formatted option symbols and computes option
// intrinsic values. Symbols follow the OCC convention:
// UNDERLYING + YYMMDD + P/C + 8-digit strike in thousandths of a dollar,
// e.g. "SPY241220P00450000" is a SPY Dec 20 2024 450 put.
package assets

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrNotOption is returned when a symbol does not encode an option contract.
var ErrNotOption = errors.New("symbol is not an option")

// OptionType represents the type of option contract.
type OptionType string

const (
	// Call is a call option contract.
	Call OptionType = "call"
	// Put is a put option contract.
	Put OptionType = "put"
)

// Option is the identity of an option contract derived from its symbol.
type Option struct {
	Symbol     string
	Underlying string
	Type       OptionType
	Strike     float64
	Expiration time.Time
}

// IntrinsicValue returns the option's per-share intrinsic value at the
// given underlying price: max(0, price-strike) for calls, max(0,
// strike-price) for puts.
func (o *Option) IntrinsicValue(underlyingPrice float64) float64 {
	var v float64
	switch o.Type {
	case Call:
		v = underlyingPrice - o.Strike
	case Put:
		v = o.Strike - underlyingPrice
	}
	return math.Max(0, v)
}

// IsOption reports whether symbol parses as an OSI option symbol.
func IsOption(symbol string) bool {
	_, err := ParseOption(symbol)
	return err == nil
}

// ParseOption parses an OSI option symbol. It returns ErrNotOption for
// plain stock symbols and anything else that does not match the
// UNDERLYING+YYMMDD+P/C+8-digit pattern exactly.
func ParseOption(symbol string) (*Option, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	// Underlying is at least 1 char; 6-digit date + type char + 8-digit strike = 15.
	if len(s) < 16 {
		return nil, ErrNotOption
	}

	// Find the 6-digit expiration: the first standalone 6-digit run followed
	// by P/C and exactly 8 digits ending the symbol.
	for i := 1; i <= len(s)-15; i++ {
		if !isDigits(s[i : i+6]) {
			continue
		}
		if s[i-1] >= '0' && s[i-1] <= '9' {
			continue // part of a longer numeric run
		}
		typeChar := s[i+6]
		if typeChar != 'P' && typeChar != 'C' {
			continue
		}
		strikeStart := i + 7
		if strikeStart+8 != len(s) || !isDigits(s[strikeStart:]) {
			continue
		}

		exp, err := time.Parse("060102", s[i:i+6])
		if err != nil {
			return nil, ErrNotOption
		}
		milliStrike, err := strconv.Atoi(s[strikeStart:])
		if err != nil {
			return nil, ErrNotOption
		}

		opt := &Option{
			Symbol:     s,
			Underlying: s[:i],
			Strike:     float64(milliStrike) / 1000,
			Expiration: exp.UTC(),
		}
		if typeChar == 'C' {
			opt.Type = Call
		} else {
			opt.Type = Put
		}
		return opt, nil
	}
	return nil, ErrNotOption
}

// FormatOption builds the OSI symbol for an option contract. Strikes are
// rounded to the nearest thousandth of a dollar per the OCC encoding.
func FormatOption(underlying string, expiration time.Time, typ OptionType, strike float64) string {
	const eps = 1e-9
	typeChar := "C"
	if typ == Put {
		typeChar = "P"
	}
	milliStrike := int(math.Round(strike*1000 + eps))
	return fmt.Sprintf("%s%s%s%08d",
		strings.ToUpper(strings.TrimSpace(underlying)),
		expiration.Format("060102"), typeChar, milliStrike)
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
