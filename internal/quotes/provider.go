// Package quotes provides market quote lookups for the expiration engine.
// A Provider is the only external capability the engine depends on; it is
// called once per distinct underlying during a sweep.
package quotes

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Quote is a market quote for a single symbol. Last is nil when the venue
// has no price for the symbol (halted, unknown, stale feed).
type Quote struct {
	Symbol string   `json:"symbol"`
	Last   *float64 `json:"last"`
	Bid    float64  `json:"bid,omitempty"`
	Ask    float64  `json:"ask,omitempty"`
}

// Price returns the last trade price and whether one is available.
// Non-positive prices are treated as unavailable.
func (q *Quote) Price() (float64, bool) {
	if q == nil || q.Last == nil || *q.Last <= 0 {
		return 0, false
	}
	return *q.Last, true
}

// Provider fetches quotes for stock symbols.
//
// Implementations must be safe for concurrent use: the engine prefetches
// quotes for distinct underlyings in parallel.
type Provider interface {
	GetQuote(ctx context.Context, symbol string) (*Quote, error)
}

// StaticProvider serves quotes from a fixed symbol->price map. It backs the
// simulated brokerage and the test suites.
type StaticProvider struct {
	mu     sync.RWMutex
	prices map[string]float64
}

// Ensure StaticProvider implements Provider at compile time.
var _ Provider = (*StaticProvider)(nil)

// NewStaticProvider creates a provider over a copy of the given price map.
func NewStaticProvider(prices map[string]float64) *StaticProvider {
	cp := make(map[string]float64, len(prices))
	for sym, px := range prices {
		cp[strings.ToUpper(sym)] = px
	}
	return &StaticProvider{prices: cp}
}

// SetPrice sets or replaces the price for a symbol.
func (p *StaticProvider) SetPrice(symbol string, price float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prices[strings.ToUpper(symbol)] = price
}

// GetQuote returns the stored quote for symbol, or an error if the symbol
// is unknown.
func (p *StaticProvider) GetQuote(_ context.Context, symbol string) (*Quote, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	sym := strings.ToUpper(symbol)
	px, ok := p.prices[sym]
	if !ok {
		return nil, fmt.Errorf("no quote available for symbol: %s", sym)
	}
	last := px
	return &Quote{Symbol: sym, Last: &last, Bid: px, Ask: px}, nil
}
