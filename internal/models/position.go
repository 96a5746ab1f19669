// Package models defines the account and position data model shared by the
// expiration engine, storage, and dashboard.
package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"
)

// SharesPerContract is the standard equity option contract multiplier.
const SharesPerContract = 100

// Position is a single brokerage position row: a plain stock holding or an
// option contract holding. Quantity is signed (positive long, negative
// short). For options, AvgPrice is the per-contract premium paid/received;
// for stock it is the per-share cost basis.
type Position struct {
	Symbol       string  `json:"symbol"`
	Quantity     int     `json:"quantity"`
	AvgPrice     float64 `json:"avg_price"`
	CurrentPrice float64 `json:"current_price,omitempty"`
}

// Clone returns a copy of the position.
func (p *Position) Clone() *Position {
	cp := *p
	return &cp
}

// Account is a cash balance plus an ordered sequence of positions. Row order
// is significant: FIFO inventory draining consumes rows in list order.
type Account struct {
	ID          string      `json:"id"`
	CashBalance float64     `json:"cash_balance"`
	Positions   []*Position `json:"positions"`
}

// NewAccount creates an empty account with a fresh ID and starting cash.
func NewAccount(cash float64) *Account {
	return &Account{
		ID:          uuid.New().String(),
		CashBalance: cash,
		Positions:   make([]*Position, 0),
	}
}

// Clone returns a deep copy of the account. The expiration engine works
// exclusively on a clone so the caller's account is never mutated.
func (a *Account) Clone() *Account {
	cp := &Account{
		ID:          a.ID,
		CashBalance: a.CashBalance,
		Positions:   make([]*Position, 0, len(a.Positions)),
	}
	for _, p := range a.Positions {
		cp.Positions = append(cp.Positions, p.Clone())
	}
	return cp
}

// MalformedPositionError reports a position record that failed strict
// validation at the ingestion boundary.
type MalformedPositionError struct {
	Field  string
	Value  interface{}
	Reason string
}

func (e *MalformedPositionError) Error() string {
	return fmt.Sprintf("malformed position: field %q value %v: %s", e.Field, e.Value, e.Reason)
}

// PositionFromRecord builds a Position from a map-shaped record (e.g. a
// decoded JSON object). Validation is strict: quantity must be an integral
// number, avg_price a finite number, and symbol non-empty. Symbols are
// normalized to uppercase.
func PositionFromRecord(rec map[string]interface{}) (*Position, error) {
	rawSym, ok := rec["symbol"]
	if !ok {
		return nil, &MalformedPositionError{Field: "symbol", Value: nil, Reason: "missing"}
	}
	sym, ok := rawSym.(string)
	if !ok || strings.TrimSpace(sym) == "" {
		return nil, &MalformedPositionError{Field: "symbol", Value: rawSym, Reason: "must be a non-empty string"}
	}

	qty, err := intField(rec, "quantity")
	if err != nil {
		return nil, err
	}
	avg, err := floatField(rec, "avg_price")
	if err != nil {
		return nil, err
	}

	p := &Position{
		Symbol:   strings.ToUpper(strings.TrimSpace(sym)),
		Quantity: qty,
		AvgPrice: avg,
	}
	if raw, ok := rec["current_price"]; ok && raw != nil {
		cur, ok := toFloat(raw)
		if !ok || math.IsNaN(cur) || math.IsInf(cur, 0) {
			return nil, &MalformedPositionError{Field: "current_price", Value: raw, Reason: "must be a finite number"}
		}
		p.CurrentPrice = cur
	}
	return p, nil
}

func intField(rec map[string]interface{}, field string) (int, error) {
	raw, ok := rec[field]
	if !ok {
		return 0, &MalformedPositionError{Field: field, Value: nil, Reason: "missing"}
	}
	f, ok := toFloat(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &MalformedPositionError{Field: field, Value: raw, Reason: "must be a number"}
	}
	if f != math.Trunc(f) {
		return 0, &MalformedPositionError{Field: field, Value: raw, Reason: "must be integral"}
	}
	return int(f), nil
}

func floatField(rec map[string]interface{}, field string) (float64, error) {
	raw, ok := rec[field]
	if !ok {
		return 0, &MalformedPositionError{Field: field, Value: nil, Reason: "missing"}
	}
	f, ok := toFloat(raw)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &MalformedPositionError{Field: field, Value: raw, Reason: "must be a finite number"}
	}
	return f, nil
}

// toFloat accepts the numeric types a decoded JSON or YAML record can carry.
// Strings are deliberately rejected: quantity coercion was ruled out in
// favor of strict validation.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
