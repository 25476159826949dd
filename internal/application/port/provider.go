package port

import (
	"context"

	"papertrade/internal/domain/model"
)

// QuoteProvider is the consumed market-data interface. Both the simulation
// and any real feed sit behind it; callers must treat it as fallible.
type QuoteProvider interface {
	GetQuote(ctx context.Context, symbol string) (model.Quote, error)
	GetHistory(ctx context.Context, symbol string, tf model.Timeframe) ([]model.HistoryPoint, error)
}

// PriceFeed streams quotes pushed by an external source.
type PriceFeed interface {
	Name() string
	Subscribe(ctx context.Context, symbols []string) (<-chan model.Quote, error)
}
