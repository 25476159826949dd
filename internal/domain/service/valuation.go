package service

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"papertrade/internal/domain"
	"papertrade/internal/domain/model"
)

// Valuator derives read-only aggregate figures from the ledger and the
// market-data board. It never mutates either; its only state is the
// previously observed market total used for the change-percent display.
type Valuator struct {
	mu        sync.Mutex
	prevTotal decimal.Decimal
	now       func() time.Time
}

// NewValuator creates a valuator with no previous total.
func NewValuator() *Valuator {
	return &Valuator{now: time.Now}
}

// Report 计算组合估值。缺少报价的持仓按 0 计入（降级但不致命）。
func (v *Valuator) Report(account *domain.Account, board *domain.Board) model.PortfolioReport {
	holdings := account.Holdings()
	cash := account.Cash()

	positions := make([]model.PositionReport, 0, len(holdings))
	marketValue := decimal.Zero

	for _, h := range holdings {
		price := 0.0
		if q, ok := board.Get(h.Symbol); ok {
			price = q.Price
		}

		qty := decimal.NewFromInt(h.Quantity)
		value := qty.Mul(decimal.NewFromFloat(price))
		costBasis := qty.Mul(h.AvgCost)
		pnl := value.Sub(costBasis)

		pct := 0.0
		if !h.AvgCost.IsZero() {
			avg, _ := h.AvgCost.Float64()
			pct = (price - avg) / avg * 100
		}

		positions = append(positions, model.PositionReport{
			Symbol:        h.Symbol,
			Quantity:      h.Quantity,
			AvgCost:       h.AvgCost,
			Price:         price,
			MarketValue:   value,
			UnrealizedPnL: pnl,
			UnrealizedPct: pct,
		})
		marketValue = marketValue.Add(value)
	}

	v.mu.Lock()
	changePct := 0.0
	if v.prevTotal.IsPositive() {
		prev, _ := v.prevTotal.Float64()
		cur, _ := marketValue.Float64()
		changePct = (cur - prev) / prev * 100
	}
	// snapshot updated opportunistically, only when the total is positive
	if marketValue.IsPositive() {
		v.prevTotal = marketValue
	}
	v.mu.Unlock()

	return model.PortfolioReport{
		Positions:     positions,
		Cash:          cash,
		MarketValue:   marketValue,
		TotalValue:    marketValue.Add(cash),
		ChangePercent: changePct,
		Timestamp:     v.now().UnixMilli(),
	}
}
