package domain

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"papertrade/internal/domain/model"
)

// Account holds the cash balance and the portfolio ledger for one session.
// Trades are all-or-nothing: a rejected order leaves every field untouched.
// The ledger never keeps zero-quantity entries.
type Account struct {
	mu       sync.RWMutex
	cash     decimal.Decimal
	prevCash decimal.Decimal // shadow value for the display delta only
	holdings map[string]*model.Holding
}

// NewAccount creates an account with the given starting cash.
func NewAccount(startingCash decimal.Decimal) *Account {
	return &Account{
		cash:     startingCash,
		prevCash: startingCash,
		holdings: make(map[string]*model.Holding),
	}
}

// Cash returns the current cash balance.
func (a *Account) Cash() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cash
}

// PreviousCash returns the balance as of the start of the last trade attempt.
func (a *Account) PreviousCash() decimal.Decimal {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.prevCash
}

// Holding returns the ledger entry for a symbol, if held.
func (a *Account) Holding(symbol string) (model.Holding, bool) {
	u := strings.ToUpper(strings.TrimSpace(symbol))

	a.mu.RLock()
	defer a.mu.RUnlock()

	h := a.holdings[u]
	if h == nil {
		return model.Holding{}, false
	}
	return *h, true
}

// Holdings returns a copy of all ledger entries, sorted by symbol.
func (a *Account) Holdings() []model.Holding {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]model.Holding, 0, len(a.holdings))
	for _, h := range a.holdings {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// Symbols returns the symbols currently held.
func (a *Account) Symbols() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]string, 0, len(a.holdings))
	for sym := range a.holdings {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

// Buy 执行买入：校验余额后扣减现金、更新加权平均成本、递增持仓数量。
// cost > balance 时返回 ErrInsufficientFunds，状态不变。
func (a *Account) Buy(symbol string, quantity int64, price decimal.Decimal, ts int64) (model.Transaction, error) {
	u := strings.ToUpper(strings.TrimSpace(symbol))

	a.mu.Lock()
	defer a.mu.Unlock()

	a.prevCash = a.cash

	qty := decimal.NewFromInt(quantity)
	cost := price.Mul(qty)
	if cost.GreaterThan(a.cash) {
		return model.Transaction{}, ErrInsufficientFunds
	}

	a.cash = a.cash.Sub(cost)

	h := a.holdings[u]
	if h == nil {
		a.holdings[u] = &model.Holding{Symbol: u, Quantity: quantity, AvgCost: price}
	} else {
		// avgCost = (oldAvg*oldQty + price*qty) / (oldQty + qty)
		oldQty := decimal.NewFromInt(h.Quantity)
		newQty := oldQty.Add(qty)
		h.AvgCost = h.AvgCost.Mul(oldQty).Add(cost).Div(newQty)
		h.Quantity += quantity
	}

	return model.Transaction{
		ID:        uuid.NewString(),
		Side:      model.SideBuy,
		Symbol:    u,
		Quantity:  quantity,
		Price:     price,
		Total:     cost,
		Timestamp: ts,
	}, nil
}

// Sell 执行卖出：校验持仓后增加现金、递减数量，数量归零时删除账本条目。
// 返回本次成交的已实现盈亏 (price - avgCost) × quantity（仅供展示，不入账）。
func (a *Account) Sell(symbol string, quantity int64, price decimal.Decimal, ts int64) (model.Transaction, decimal.Decimal, error) {
	u := strings.ToUpper(strings.TrimSpace(symbol))

	a.mu.Lock()
	defer a.mu.Unlock()

	a.prevCash = a.cash

	h := a.holdings[u]
	held := int64(0)
	if h != nil {
		held = h.Quantity
	}
	if held < quantity {
		return model.Transaction{}, decimal.Zero, ErrInsufficientShares
	}

	qty := decimal.NewFromInt(quantity)
	proceeds := price.Mul(qty)
	realized := price.Sub(h.AvgCost).Mul(qty)

	a.cash = a.cash.Add(proceeds)
	h.Quantity -= quantity
	if h.Quantity == 0 {
		delete(a.holdings, u)
	}

	return model.Transaction{
		ID:        uuid.NewString(),
		Side:      model.SideSell,
		Symbol:    u,
		Quantity:  quantity,
		Price:     price,
		Total:     proceeds,
		Timestamp: ts,
	}, realized, nil
}

// Restore replaces the account state with values loaded from storage.
// Zero-quantity entries are dropped on the way in.
func (a *Account) Restore(cash decimal.Decimal, holdings []model.Holding) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cash = cash
	a.prevCash = cash
	a.holdings = make(map[string]*model.Holding, len(holdings))
	for _, h := range holdings {
		if h.Quantity <= 0 {
			continue
		}
		u := strings.ToUpper(strings.TrimSpace(h.Symbol))
		if u == "" {
			continue
		}
		entry := h
		entry.Symbol = u
		a.holdings[u] = &entry
	}
}

// Reset clears the ledger and restores the starting cash.
func (a *Account) Reset(startingCash decimal.Decimal) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cash = startingCash
	a.prevCash = startingCash
	a.holdings = make(map[string]*model.Holding)
}
