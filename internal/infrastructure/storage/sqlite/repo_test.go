package sqlite

import (
	"context"
	"os"
	"testing"

	"github.com/shopspring/decimal"

	"papertrade/internal/domain/model"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestRepoHoldingsRoundTrip(t *testing.T) {
	dbPath := "test_holdings.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	in := []model.Holding{
		{Symbol: "AAPL", Quantity: 10, AvgCost: d("175.52")},
		{Symbol: "MSFT", Quantity: 0, AvgCost: d("380.75")}, // dropped on save
		{Symbol: "TSLA", Quantity: 2, AvgCost: d("245.60")},
	}
	if err := repo.SaveHoldings(ctx, in); err != nil {
		t.Fatalf("SaveHoldings failed: %v", err)
	}

	out, err := repo.LoadHoldings(ctx)
	if err != nil {
		t.Fatalf("LoadHoldings failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 holdings, got %d", len(out))
	}
	if out[0].Symbol != "AAPL" || out[0].Quantity != 10 || !out[0].AvgCost.Equal(d("175.52")) {
		t.Errorf("unexpected first holding %+v", out[0])
	}

	// save replaces the whole record
	if err := repo.SaveHoldings(ctx, nil); err != nil {
		t.Fatalf("SaveHoldings(empty) failed: %v", err)
	}
	out, _ = repo.LoadHoldings(ctx)
	if len(out) != 0 {
		t.Errorf("expected empty holdings after replace, got %d", len(out))
	}
}

func TestRepoBalanceDefaultsWhenMissing(t *testing.T) {
	dbPath := "test_balance.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if _, ok, err := repo.LoadBalance(ctx); err != nil || ok {
		t.Fatalf("expected no balance on fresh db, got ok=%v err=%v", ok, err)
	}

	if err := repo.SaveBalance(ctx, d("8244.80")); err != nil {
		t.Fatalf("SaveBalance failed: %v", err)
	}
	cash, ok, err := repo.LoadBalance(ctx)
	if err != nil || !ok {
		t.Fatalf("LoadBalance failed: ok=%v err=%v", ok, err)
	}
	if !cash.Equal(d("8244.80")) {
		t.Errorf("expected 8244.80, got %s", cash)
	}
}

func TestRepoTransactionsKeepOrder(t *testing.T) {
	dbPath := "test_txs.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		tx := model.Transaction{
			ID: id, Side: model.SideBuy, Symbol: "AAPL",
			Quantity: 1, Price: d("100"), Total: d("100"), Timestamp: 1000,
		}
		if err := repo.AppendTransaction(ctx, tx); err != nil {
			t.Fatalf("AppendTransaction(%s) failed: %v", id, err)
		}
	}

	out, err := repo.LoadTransactions(ctx)
	if err != nil {
		t.Fatalf("LoadTransactions failed: %v", err)
	}
	if len(out) != 3 || out[0].ID != "a" || out[2].ID != "c" {
		t.Errorf("expected insertion order [a b c], got %v", out)
	}
	if out[0].Side != model.SideBuy || !out[0].Price.Equal(d("100")) {
		t.Errorf("unexpected first transaction %+v", out[0])
	}
}

func TestRepoUpsertLatestQuote(t *testing.T) {
	dbPath := "test_quotes.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	q := model.Quote{Symbol: "AAPL", Price: 175.52, ChangePercent: 0.5, Timestamp: 1000}
	if err := repo.UpsertLatestQuote(ctx, q); err != nil {
		t.Fatalf("UpsertLatestQuote failed: %v", err)
	}
	q.Price = 180.00
	q.Timestamp = 2000
	if err := repo.UpsertLatestQuote(ctx, q); err != nil {
		t.Fatalf("second UpsertLatestQuote failed: %v", err)
	}
}

func TestRepoInsertSnapshot(t *testing.T) {
	dbPath := "test_snapshots.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	payload := `{"total_value":"10100","cash":"9000"}`
	if err := repo.InsertSnapshot(context.Background(), 1000, payload); err != nil {
		t.Fatalf("InsertSnapshot failed: %v", err)
	}
}

func TestRepoReset(t *testing.T) {
	dbPath := "test_reset.db"
	defer os.Remove(dbPath)

	repo, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create repo: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	repo.SaveHoldings(ctx, []model.Holding{{Symbol: "AAPL", Quantity: 1, AvgCost: d("100")}})
	repo.SaveBalance(ctx, d("9900"))
	repo.AppendTransaction(ctx, model.Transaction{
		ID: "a", Side: model.SideBuy, Symbol: "AAPL",
		Quantity: 1, Price: d("100"), Total: d("100"), Timestamp: 1000,
	})

	if err := repo.Reset(ctx); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	if holdings, _ := repo.LoadHoldings(ctx); len(holdings) != 0 {
		t.Error("expected holdings cleared")
	}
	if _, ok, _ := repo.LoadBalance(ctx); ok {
		t.Error("expected balance cleared")
	}
	if txs, _ := repo.LoadTransactions(ctx); len(txs) != 0 {
		t.Error("expected transactions cleared")
	}
}
