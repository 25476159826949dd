package port

import (
	"context"

	"github.com/shopspring/decimal"

	"papertrade/internal/domain/model"
)

// Repository persists session state. Three logical records — holdings map,
// cash balance, transaction list — are each independently loadable with a
// documented default (empty, starting cash, empty) when absent. The latest
// quotes and portfolio snapshots are archival, written best-effort.
type Repository interface {
	// Ledger record
	SaveHoldings(ctx context.Context, holdings []model.Holding) error
	LoadHoldings(ctx context.Context) ([]model.Holding, error)

	// Cash record; ok=false means nothing stored and the caller applies the default
	SaveBalance(ctx context.Context, cash decimal.Decimal) error
	LoadBalance(ctx context.Context) (cash decimal.Decimal, ok bool, err error)

	// Transaction log
	AppendTransaction(ctx context.Context, tx model.Transaction) error
	LoadTransactions(ctx context.Context) ([]model.Transaction, error)

	// Market data (best-effort archival)
	UpsertLatestQuote(ctx context.Context, q model.Quote) error
	InsertSnapshot(ctx context.Context, ts int64, payload string) error

	// Reset clears all state records back to defaults.
	Reset(ctx context.Context) error

	// Connection management
	Close() error
}
