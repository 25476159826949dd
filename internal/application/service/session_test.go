package service

import (
	"context"
	"testing"

	"papertrade/internal/domain/model"
)

func TestSessionLoadDefaults(t *testing.T) {
	repo := newStubRepo()
	s := NewSession(d("10000"), []string{"AAPL", "MSFT"}, repo)

	s.Load(context.Background())

	if !s.Account.Cash().Equal(d("10000")) {
		t.Errorf("expected starting cash on empty storage, got %s", s.Account.Cash())
	}
	if len(s.Account.Holdings()) != 0 || s.Journal.Len() != 0 {
		t.Error("expected empty ledger and journal on empty storage")
	}
	if got := s.Board.Symbols(); len(got) != 2 {
		t.Errorf("expected watchlist tracked, got %v", got)
	}
}

func TestSessionLoadRestoresStateAndTracksHeldSymbols(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	repo.SaveBalance(ctx, d("8244.80"))
	repo.SaveHoldings(ctx, []model.Holding{{Symbol: "TSLA", Quantity: 5, AvgCost: d("245.60")}})
	repo.AppendTransaction(ctx, model.Transaction{ID: "a", Side: model.SideBuy, Symbol: "TSLA", Quantity: 5, Price: d("245.60"), Total: d("1228"), Timestamp: 1000})

	s := NewSession(d("10000"), []string{"AAPL"}, repo)
	s.Load(ctx)

	if !s.Account.Cash().Equal(d("8244.80")) {
		t.Errorf("expected restored cash, got %s", s.Account.Cash())
	}
	if h, ok := s.Account.Holding("TSLA"); !ok || h.Quantity != 5 {
		t.Errorf("expected restored TSLA holding, got %+v ok=%v", h, ok)
	}
	if s.Journal.Len() != 1 {
		t.Errorf("expected 1 restored transaction, got %d", s.Journal.Len())
	}

	// held symbols join the watchlist so the scheduler refreshes them
	symbols := s.Board.Symbols()
	found := false
	for _, sym := range symbols {
		if sym == "TSLA" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected TSLA tracked on the board, got %v", symbols)
	}
}

func TestSessionReset(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepo()
	s := NewSession(d("10000"), []string{"AAPL"}, repo)
	s.Load(ctx)

	if _, err := s.Account.Buy("AAPL", 1, d("100"), 1000); err != nil {
		t.Fatalf("Buy failed: %v", err)
	}
	s.Journal.Append(model.Transaction{ID: "a"})

	if err := s.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if !s.Account.Cash().Equal(d("10000")) || len(s.Account.Holdings()) != 0 || s.Journal.Len() != 0 {
		t.Error("expected defaults after reset")
	}
}
