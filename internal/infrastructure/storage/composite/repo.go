package composite

import (
	"context"

	"github.com/shopspring/decimal"

	"papertrade/internal/application/port"
	"papertrade/internal/domain/model"
)

// Repo fans writes out to several repositories and reads from the first
// (the primary). Mirrors are best-effort copies; the first write error is
// reported after every repo has been attempted.
type Repo struct {
	repos []port.Repository
}

func New(repos ...port.Repository) *Repo {
	// nil repos are allowed; filter in constructor for safety
	out := make([]port.Repository, 0, len(repos))
	for _, r := range repos {
		if r != nil {
			out = append(out, r)
		}
	}
	return &Repo{repos: out}
}

func (r *Repo) SaveHoldings(ctx context.Context, holdings []model.Holding) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.SaveHoldings(ctx, holdings); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) LoadHoldings(ctx context.Context) ([]model.Holding, error) {
	if len(r.repos) == 0 {
		return nil, nil
	}
	return r.repos[0].LoadHoldings(ctx)
}

func (r *Repo) SaveBalance(ctx context.Context, cash decimal.Decimal) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.SaveBalance(ctx, cash); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) LoadBalance(ctx context.Context) (decimal.Decimal, bool, error) {
	if len(r.repos) == 0 {
		return decimal.Zero, false, nil
	}
	return r.repos[0].LoadBalance(ctx)
}

func (r *Repo) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.AppendTransaction(ctx, tx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	if len(r.repos) == 0 {
		return nil, nil
	}
	return r.repos[0].LoadTransactions(ctx)
}

func (r *Repo) UpsertLatestQuote(ctx context.Context, q model.Quote) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.UpsertLatestQuote(ctx, q); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.InsertSnapshot(ctx, ts, payload); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) Reset(ctx context.Context) error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.Reset(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (r *Repo) Close() error {
	var firstErr error
	for _, repo := range r.repos {
		if err := repo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var _ port.Repository = (*Repo)(nil)
