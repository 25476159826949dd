package memory

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"papertrade/internal/application/port"
	"papertrade/internal/domain/model"
)

// Repo is the default process-lifetime store. State survives scheduler
// restarts but not the process.
type Repo struct {
	mu       sync.Mutex
	holdings []model.Holding
	cash     decimal.Decimal
	hasCash  bool
	txs      []model.Transaction
	quotes   map[string]model.Quote
}

// New creates an empty in-memory repository.
func New() *Repo {
	return &Repo{quotes: make(map[string]model.Quote)}
}

func (r *Repo) SaveHoldings(ctx context.Context, holdings []model.Holding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holdings = make([]model.Holding, len(holdings))
	copy(r.holdings, holdings)
	return nil
}

func (r *Repo) LoadHoldings(ctx context.Context) ([]model.Holding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Holding, len(r.holdings))
	copy(out, r.holdings)
	return out, nil
}

func (r *Repo) SaveBalance(ctx context.Context, cash decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cash = cash
	r.hasCash = true
	return nil
}

func (r *Repo) LoadBalance(ctx context.Context) (decimal.Decimal, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cash, r.hasCash, nil
}

func (r *Repo) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs = append(r.txs, tx)
	return nil
}

func (r *Repo) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.Transaction, len(r.txs))
	copy(out, r.txs)
	return out, nil
}

func (r *Repo) UpsertLatestQuote(ctx context.Context, q model.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.quotes[q.Symbol] = q
	return nil
}

func (r *Repo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	return nil
}

func (r *Repo) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.holdings = nil
	r.cash = decimal.Zero
	r.hasCash = false
	r.txs = nil
	r.quotes = make(map[string]model.Quote)
	return nil
}

func (r *Repo) Close() error { return nil }

var _ port.Repository = (*Repo)(nil)
