package domain

import (
	"strings"
	"sync"

	"papertrade/internal/domain/model"
)

// Board manages the latest quote for every tracked symbol. It is the only
// market-data state in the process: the scheduler writes it, valuation and
// the console read it.
type Board struct {
	mu     sync.RWMutex
	order  []string                // ordered symbol list
	quotes map[string]*model.Quote // symbol -> latest quote
}

// NewBoard creates a Board tracking the given symbols.
func NewBoard(symbols []string) *Board {
	order := make([]string, 0, len(symbols))
	quotes := make(map[string]*model.Quote, len(symbols))

	for _, s := range symbols {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" {
			continue
		}
		if _, ok := quotes[u]; ok {
			continue
		}
		order = append(order, u)
		quotes[u] = nil
	}

	return &Board{order: order, quotes: quotes}
}

// Track adds a symbol to the board if it is not tracked yet.
// Returns true when the symbol was added.
func (b *Board) Track(symbol string) bool {
	u := strings.ToUpper(strings.TrimSpace(symbol))
	if u == "" {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.quotes[u]; ok {
		return false
	}
	b.order = append(b.order, u)
	b.quotes[u] = nil
	return true
}

// Update stores a quote for its symbol, tracking the symbol if needed.
// A quote older than the cached one is discarded: in-flight fetches may
// resolve out of order and a late result must not overwrite a newer entry.
// Returns true if the cache entry changed.
func (b *Board) Update(q model.Quote) bool {
	u := strings.ToUpper(strings.TrimSpace(q.Symbol))
	if u == "" || q.Price <= 0 {
		return false
	}
	q.Symbol = u

	b.mu.Lock()
	defer b.mu.Unlock()

	prev, tracked := b.quotes[u]
	if !tracked {
		b.order = append(b.order, u)
	}
	if prev != nil && q.Timestamp < prev.Timestamp {
		return false
	}
	b.quotes[u] = &q
	return true
}

// Get returns the latest quote for a symbol, if any.
func (b *Board) Get(symbol string) (model.Quote, bool) {
	u := strings.ToUpper(strings.TrimSpace(symbol))

	b.mu.RLock()
	defer b.mu.RUnlock()

	q := b.quotes[u]
	if q == nil {
		return model.Quote{}, false
	}
	return *q, true
}

// Snapshot returns a read-only copy of the current quotes.
func (b *Board) Snapshot() map[string]model.Quote {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := make(map[string]model.Quote, len(b.quotes))
	for sym, q := range b.quotes {
		if q == nil {
			continue
		}
		snap[sym] = *q
	}
	return snap
}

// Symbols returns the ordered list of tracked symbols.
func (b *Board) Symbols() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]string, len(b.order))
	copy(result, b.order)
	return result
}
