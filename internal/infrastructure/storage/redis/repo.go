package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"papertrade/internal/application/port"
	"papertrade/internal/domain/model"
)

// Repo persists session state in redis under a configurable key prefix.
// Holdings and quotes are hashes keyed by symbol, the transaction log is a
// list (RPUSH keeps chronological order), snapshots go to a stream.
type Repo struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration

	keyHoldings  string
	keyBalance   string
	keyTxs       string
	keyQuotes    string
	snapshotsKey string
}

func New(rdb *redis.Client, prefix string, ttl time.Duration) *Repo {
	return &Repo{
		rdb:          rdb,
		prefix:       prefix,
		ttl:          ttl,
		keyHoldings:  prefix + ":holdings",
		keyBalance:   prefix + ":balance",
		keyTxs:       prefix + ":transactions",
		keyQuotes:    prefix + ":quotes",
		snapshotsKey: prefix + ":snapshots",
	}
}

func (r *Repo) SaveHoldings(ctx context.Context, holdings []model.Holding) error {
	pipe := r.rdb.Pipeline()
	pipe.Del(ctx, r.keyHoldings)
	if len(holdings) > 0 {
		fields := make(map[string]any, len(holdings))
		for _, h := range holdings {
			if h.Quantity <= 0 {
				continue
			}
			b, err := json.Marshal(h)
			if err != nil {
				return err
			}
			fields[h.Symbol] = string(b)
		}
		if len(fields) > 0 {
			pipe.HSet(ctx, r.keyHoldings, fields)
		}
	}
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyHoldings, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Repo) LoadHoldings(ctx context.Context) ([]model.Holding, error) {
	vals, err := r.rdb.HGetAll(ctx, r.keyHoldings).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.Holding, 0, len(vals))
	for _, v := range vals {
		var h model.Holding
		if err := json.Unmarshal([]byte(v), &h); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (r *Repo) SaveBalance(ctx context.Context, cash decimal.Decimal) error {
	return r.rdb.Set(ctx, r.keyBalance, cash.String(), r.ttl).Err()
}

func (r *Repo) LoadBalance(ctx context.Context) (decimal.Decimal, bool, error) {
	s, err := r.rdb.Get(ctx, r.keyBalance).Result()
	if err == redis.Nil {
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
	b, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	pipe := r.rdb.Pipeline()
	pipe.RPush(ctx, r.keyTxs, string(b))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyTxs, r.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *Repo) LoadTransactions(ctx context.Context) ([]model.Transaction, error) {
	vals, err := r.rdb.LRange(ctx, r.keyTxs, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.Transaction, 0, len(vals))
	for _, v := range vals {
		var tx model.Transaction
		if err := json.Unmarshal([]byte(v), &tx); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *Repo) UpsertLatestQuote(ctx context.Context, q model.Quote) error {
	if q.Price <= 0 {
		return nil
	}
	b, err := json.Marshal(q)
	if err != nil {
		return err
	}
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, r.keyQuotes, q.Symbol, string(b))
	if r.ttl > 0 {
		pipe.Expire(ctx, r.keyQuotes, r.ttl)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *Repo) InsertSnapshot(ctx context.Context, ts int64, payload string) error {
	_, err := r.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: r.snapshotsKey,
		Values: map[string]any{
			"ts_ms":   ts,
			"payload": payload,
		},
	}).Result()
	return err
}

func (r *Repo) Reset(ctx context.Context) error {
	return r.rdb.Del(ctx, r.keyHoldings, r.keyBalance, r.keyTxs, r.keyQuotes, r.snapshotsKey).Err()
}

func (r *Repo) Close() error { return r.rdb.Close() }

var _ port.Repository = (*Repo)(nil)
