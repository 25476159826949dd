package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"papertrade/internal/application/port"
	"papertrade/internal/domain/model"
)

// Repo persists session state in a single sqlite file. Decimal values are
// stored as their exact string form, never as floats.
type Repo struct {
	db *sql.DB
}

func New(path string) (*Repo, error) {
	// ensure directory exists
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		_ = os.MkdirAll(dir, 0o755)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	r := &Repo{db: db}
	if err := r.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

func (r *Repo) Close() error { return r.db.Close() }

func (r *Repo) migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS holdings (
  symbol TEXT PRIMARY KEY,
  quantity INTEGER NOT NULL,
  avg_cost TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS balance (
  id INTEGER PRIMARY KEY CHECK (id = 1),
  cash TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  side TEXT NOT NULL,
  symbol TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price TEXT NOT NULL,
  total TEXT NOT NULL,
  ts_ms INTEGER NOT NULL,
  seq INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_seq ON transactions(seq);
CREATE INDEX IF NOT EXISTS idx_transactions_symbol ON transactions(symbol);

CREATE TABLE IF NOT EXISTS quotes (
  symbol TEXT PRIMARY KEY,
  price REAL NOT NULL,
  change_pct REAL NOT NULL,
  ts_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quotes_ts ON quotes(ts_ms);

CREATE TABLE IF NOT EXISTS snapshots (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts_ms INTEGER NOT NULL,
  payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_ts ON snapshots(ts_ms);
`)
	return err
}

// SaveHoldings replaces the whole holdings record; the ledger is small and
// the replace keeps the zero-quantity invariant trivially true on disk.
func (r *Repo) SaveHoldings(ctx context.Context, holdings []model.Holding) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM holdings`); err != nil {
		return err
	}
	for _, h := range holdings {
		if h.Quantity <= 0 {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO holdings(symbol, quantity, avg_cost) VALUES(?, ?, ?)`,
			h.Symbol, h.Quantity, h.AvgCost.String()); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *Repo) LoadHoldings(ctx context.Context) ([]model.Holding, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT symbol, quantity, avg_cost FROM holdings ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Holding
	for rows.Next() {
		var h model.Holding
		var avg string
		if err := rows.Scan(&h.Symbol, &h.Quantity, &avg); err != nil {
			return nil, err
		}
		if h.AvgCost, err = decimal.NewFromString(avg); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *Repo) SaveBalance(ctx context.Context, cash decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO balance(id, cash) VALUES(1, ?)
		ON CONFLICT(id) DO UPDATE SET cash=excluded.cash
	`, cash.String())
	return err
}

func (r *Repo) LoadBalance(ctx context.Context) (decimal.Decimal, bool, error) {
	var s string
	err := r.db.QueryRowContext(ctx, `SELECT cash FROM balance WHERE id = 1`).Scan(&s)
	if err == sql.ErrNoRows {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, err
	}
	cash, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false, err
	}
	return cash, true, nil
}

func (r *Repo) AppendTransaction(ctx context.Context, tx model.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions(id, side, symbol, quantity, price, total, ts_ms, seq)
		VALUES(?, ?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM transactions))
	`, tx.ID, string(tx.Side), tx.Symbol, tx.Quantity, tx.Price.String(), tx.Total.String(), tx.Timestamp)
	return err
}

func (r *Repo) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, side, symbol, quantity, price, total, ts_ms FROM transactions ORDER BY seq
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Transaction
	for rows.Next() {
		var tx model.Transaction
		var side, price, total string
		if err := rows.Scan(&tx.ID, &side, &tx.Symbol, &tx.Quantity, &price, &total, &tx.Timestamp); err != nil {
			return nil, err
		}
		tx.Side = model.Side(side)
		if tx.Price, err = decimal.NewFromString(price); err != nil {
			return nil, err
		}
		if tx.Total, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (r *Repo) UpsertLatestQuote(ctx context.Context, q model.Quote) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quotes(symbol, price, change_pct, ts_ms) VALUES(?, ?, ?, ?)
		ON CONFLICT(symbol) DO UPDATE SET
		price=excluded.price, change_pct=excluded.change_pct, ts_ms=excluded.ts_ms
	`, q.Symbol, q.Price, q.ChangePercent, q.Timestamp)
	return err
}

func (r *Repo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO snapshots(ts_ms, payload) VALUES(?, ?)`, ts, payload)
	return err
}

// Reset clears the three state records back to defaults. Quote and snapshot
// archives go too; a reset session starts clean.
func (r *Repo) Reset(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM holdings;
		DELETE FROM balance;
		DELETE FROM transactions;
		DELETE FROM quotes;
		DELETE FROM snapshots;
	`)
	return err
}

var _ port.Repository = (*Repo)(nil)
