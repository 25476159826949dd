package model

import "github.com/shopspring/decimal"

// Side 交易方向
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide 解析交易方向（仅接受 "buy" / "sell"）
func ParseSide(s string) (Side, bool) {
	switch Side(s) {
	case SideBuy, SideSell:
		return Side(s), true
	}
	return "", false
}

// Holding 持仓条目。Quantity 为 0 的条目不会保留在账本中。
// AvgCost 是当前持有股份所有买入成交的数量加权平均价，卖出时不变。
type Holding struct {
	Symbol   string          `json:"symbol"`
	Quantity int64           `json:"quantity"`
	AvgCost  decimal.Decimal `json:"avg_cost"`
}

// Transaction 一笔已执行交易的不可变记录
type Transaction struct {
	ID        string          `json:"id"`
	Side      Side            `json:"side"`
	Symbol    string          `json:"symbol"`
	Quantity  int64           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Total     decimal.Decimal `json:"total"`
	Timestamp int64           `json:"ts_ms"`
}

// PositionReport is the read-only valuation view of one holding.
type PositionReport struct {
	Symbol        string          `json:"symbol"`
	Quantity      int64           `json:"quantity"`
	AvgCost       decimal.Decimal `json:"avg_cost"`
	Price         float64         `json:"price"`
	MarketValue   decimal.Decimal `json:"market_value"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
	UnrealizedPct float64         `json:"unrealized_pct"`
}

// PortfolioReport is the read-only valuation view of the whole session.
type PortfolioReport struct {
	Positions     []PositionReport `json:"positions"`
	Cash          decimal.Decimal  `json:"cash"`
	MarketValue   decimal.Decimal  `json:"market_value"` // Σ quantity × current price
	TotalValue    decimal.Decimal  `json:"total_value"`  // market value + cash
	ChangePercent float64          `json:"change_percent"`
	Timestamp     int64            `json:"ts_ms"`
}
