package market

import (
	"context"
	"strings"
	"sync"

	"papertrade/internal/application/port"
	"papertrade/internal/domain/model"
	"papertrade/internal/domain/service"
)

// SimProvider serves quotes from the price generator. It remembers the last
// quote per symbol so successive calls advance the random walk instead of
// re-rolling from the base price.
type SimProvider struct {
	gen *service.Generator

	mu   sync.Mutex
	last map[string]model.Quote
}

// NewSimProvider wraps a generator as a QuoteProvider.
func NewSimProvider(gen *service.Generator) *SimProvider {
	return &SimProvider{
		gen:  gen,
		last: make(map[string]model.Quote),
	}
}

// GetQuote returns the next simulated quote for a symbol. Never fails for an
// unknown symbol; only cancellation produces an error.
func (p *SimProvider) GetQuote(ctx context.Context, symbol string) (model.Quote, error) {
	if err := ctx.Err(); err != nil {
		return model.Quote{}, err
	}
	u := strings.ToUpper(strings.TrimSpace(symbol))

	p.mu.Lock()
	defer p.mu.Unlock()

	var q model.Quote
	if prev, ok := p.last[u]; ok {
		q = p.gen.AdvanceQuote(prev)
	} else {
		q = p.gen.GenerateQuote(u)
	}
	p.last[u] = q
	return q, nil
}

// GetHistory regenerates the whole series for a timeframe, anchored to the
// last known simulated price.
func (p *SimProvider) GetHistory(ctx context.Context, symbol string, tf model.Timeframe) ([]model.HistoryPoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u := strings.ToUpper(strings.TrimSpace(symbol))

	p.mu.Lock()
	current := p.last[u].Price
	p.mu.Unlock()

	return p.gen.GenerateHistory(u, current, tf), nil
}

var _ port.QuoteProvider = (*SimProvider)(nil)
