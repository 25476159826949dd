package service

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"papertrade/internal/application/port"
	"papertrade/internal/domain"
)

// Session bundles the process-wide mutable state: the account, the market
// board and the journal, together with the repository they are restored
// from. There are no ambient globals; everything reaches this state through
// the session.
type Session struct {
	Account *domain.Account
	Board   *domain.Board
	Journal *domain.Journal

	startingCash decimal.Decimal
	repo         port.Repository
}

// NewSession creates an unloaded session for the given watchlist.
func NewSession(startingCash decimal.Decimal, watchlist []string, repo port.Repository) *Session {
	return &Session{
		Account:      domain.NewAccount(startingCash),
		Board:        domain.NewBoard(watchlist),
		Journal:      domain.NewJournal(),
		startingCash: startingCash,
		repo:         repo,
	}
}

// Load restores the three state records from storage. Each record falls back
// to its default independently — empty ledger, the configured starting cash,
// empty log — so a missing or unreadable record never blocks startup.
func (s *Session) Load(ctx context.Context) {
	cash, ok, err := s.repo.LoadBalance(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("load balance failed, using starting cash")
		ok = false
	}
	if !ok {
		cash = s.startingCash
	}

	holdings, err := s.repo.LoadHoldings(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("load holdings failed, starting empty")
		holdings = nil
	}
	s.Account.Restore(cash, holdings)

	for _, h := range holdings {
		s.Board.Track(h.Symbol)
	}

	txs, err := s.repo.LoadTransactions(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("load transactions failed, starting empty")
		txs = nil
	}
	s.Journal.Restore(txs)

	log.Info().
		Str("cash", cash.String()).
		Int("holdings", len(holdings)).
		Int("transactions", len(txs)).
		Msg("session loaded")
}

// Reset clears storage and memory back to the documented defaults.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.repo.Reset(ctx); err != nil {
		return err
	}
	s.Account.Reset(s.startingCash)
	s.Journal.Reset()
	return nil
}
