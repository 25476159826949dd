package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"papertrade/internal/application/port"
	"papertrade/internal/domain"
	"papertrade/internal/domain/model"
)

// TradeResult reports one executed order back to the caller.
type TradeResult struct {
	Transaction model.Transaction
	Realized    decimal.Decimal // sells only; informational, not stored
	CashAfter   decimal.Decimal
	CashDelta   decimal.Decimal
}

// TradeService validates and applies orders against the session account.
// Orders are serialized by a mutex to preserve the all-or-nothing contract
// when callers arrive from more than one goroutine.
type TradeService struct {
	mu       sync.Mutex
	account  *domain.Account
	journal  *domain.Journal
	board    *domain.Board
	provider port.QuoteProvider
	repo     port.Repository
}

// NewTradeService creates a trade service bound to one session.
func NewTradeService(account *domain.Account, journal *domain.Journal, board *domain.Board, provider port.QuoteProvider, repo port.Repository) *TradeService {
	return &TradeService{
		account:  account,
		journal:  journal,
		board:    board,
		provider: provider,
		repo:     repo,
	}
}

// Execute 校验并执行一笔订单。拒绝的订单不会改变任何状态。
//
// 价格取自行情缓存；缓存未命中时先尝试一次新的拉取，仍失败则返回
// ErrQuoteUnavailable。成交价按分(两位小数)取整入账。
func (t *TradeService) Execute(ctx context.Context, symbol string, side model.Side, quantity int64) (TradeResult, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return TradeResult{}, fmt.Errorf("%w: empty symbol", domain.ErrInvalidInput)
	}
	if quantity <= 0 {
		return TradeResult{}, fmt.Errorf("%w: quantity must be a positive integer", domain.ErrInvalidInput)
	}
	if side != model.SideBuy && side != model.SideSell {
		return TradeResult{}, fmt.Errorf("%w: side must be buy or sell", domain.ErrInvalidInput)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	quote, ok := t.board.Get(symbol)
	if !ok {
		q, err := t.provider.GetQuote(ctx, symbol)
		if err != nil {
			return TradeResult{}, fmt.Errorf("%w: %s: %v", domain.ErrQuoteUnavailable, symbol, err)
		}
		t.board.Update(q)
		quote = q
	}

	price := decimal.NewFromFloat(quote.Price).Round(2)
	ts := time.Now().UnixMilli()

	var (
		tx       model.Transaction
		realized decimal.Decimal
		err      error
	)
	if side == model.SideBuy {
		tx, err = t.account.Buy(symbol, quantity, price, ts)
	} else {
		tx, realized, err = t.account.Sell(symbol, quantity, price, ts)
	}
	if err != nil {
		return TradeResult{}, err
	}

	t.journal.Append(tx)
	t.persist(ctx, tx)

	cash := t.account.Cash()
	return TradeResult{
		Transaction: tx,
		Realized:    realized,
		CashAfter:   cash,
		CashDelta:   cash.Sub(t.account.PreviousCash()),
	}, nil
}

// History fetches a chart series for a symbol.
func (t *TradeService) History(ctx context.Context, symbol string, tf model.Timeframe) ([]model.HistoryPoint, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", domain.ErrInvalidInput)
	}
	return t.provider.GetHistory(ctx, symbol, tf)
}

// persist writes the mutated records through. Storage failures degrade
// durability, not the trade: the in-memory state is authoritative.
func (t *TradeService) persist(ctx context.Context, tx model.Transaction) {
	if err := t.repo.SaveHoldings(ctx, t.account.Holdings()); err != nil {
		log.Warn().Err(err).Msg("persist holdings failed")
	}
	if err := t.repo.SaveBalance(ctx, t.account.Cash()); err != nil {
		log.Warn().Err(err).Msg("persist balance failed")
	}
	if err := t.repo.AppendTransaction(ctx, tx); err != nil {
		log.Warn().Err(err).Str("tx", tx.ID).Msg("persist transaction failed")
	}
}
