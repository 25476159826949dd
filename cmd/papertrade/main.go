package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"papertrade/internal/application/port"
	appsvc "papertrade/internal/application/service"
	"papertrade/internal/domain"
	"papertrade/internal/domain/model"
	domsvc "papertrade/internal/domain/service"
	"papertrade/internal/infrastructure/config"
	"papertrade/internal/infrastructure/feed"
	"papertrade/internal/infrastructure/logger"
	"papertrade/internal/infrastructure/market"
	"papertrade/internal/infrastructure/storage/composite"
	"papertrade/internal/infrastructure/storage/memory"
	"papertrade/internal/infrastructure/storage/postgres"
	"papertrade/internal/infrastructure/storage/redis"
	"papertrade/internal/infrastructure/storage/sqlite"
	"papertrade/internal/interfaces/console"
)

func main() {
	logger.Setup()

	// .env is optional (local development convenience)
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	reset := flag.Bool("reset", false, "clear persisted state back to defaults and continue")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := newRepository(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Storage.Backend).Msg("storage init failed")
	}
	defer repo.Close()

	session := appsvc.NewSession(cfg.StartingCash(), cfg.Symbols.List, repo)
	if *reset {
		if err := session.Reset(ctx); err != nil {
			log.Fatal().Err(err).Msg("reset failed")
		}
		log.Info().Msg("state reset to defaults")
	}
	session.Load(ctx)

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gen := domsvc.NewGenerator(domsvc.GeneratorParams{
		Volatility: cfg.Simulation.Volatility,
		Momentum:   cfg.Simulation.Momentum,
		Trend:      cfg.Simulation.Trend,
		JumpProb:   cfg.Simulation.JumpProb,
		JumpMax:    cfg.Simulation.JumpMax,
		PriceFloor: cfg.Simulation.PriceFloor,
	}, cfg.Symbols.BasePrices, seed)
	provider := market.NewSimProvider(gen)

	scheduler := appsvc.NewScheduler(appsvc.SchedulerConfig{
		TickInterval:     cfg.TickInterval(),
		WatchdogInterval: cfg.WatchdogInterval(),
		StaleAfter:       cfg.StaleAfter(),
	}, provider, session.Board, session.Account, repo)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if cfg.Feed.Enabled {
		runFeed(ctx, cfg, session.Board, repo)
	}

	trades := appsvc.NewTradeService(session.Account, session.Journal, session.Board, provider, repo)
	valuator := domsvc.NewValuator()
	sink := console.NewSink()
	renderer := console.NewRenderer()

	log.Info().
		Str("config", *configPath).
		Int("symbols", len(cfg.Symbols.List)).
		Str("backend", cfg.Storage.Backend).
		Dur("tick_interval", cfg.TickInterval()).
		Str("starting_cash", cfg.StartingCash().String()).
		Msg("papertrade started")

	// live ticker line
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				line := renderer.RenderTicker(session.Board.Symbols(), session.Board.Snapshot(), true)
				_ = sink.WriteLive(line)
			}
		}
	}()

	// periodic portfolio snapshot, rendered and archived
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.App.SnapshotEveryMin) * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rep := valuator.Report(session.Account, session.Board)
				_ = sink.WriteSnapshot(now, renderer.RenderPortfolio(rep))
				if payload, err := json.Marshal(rep); err == nil {
					_ = repo.InsertSnapshot(ctx, now.UnixMilli(), string(payload))
				}
			}
		}
	}()

	go repl(ctx, stop, session, trades, valuator, sink, renderer)

	<-ctx.Done()
	_ = sink.NewLine()
	log.Warn().Msg("exit")
}

// newRepository selects the storage backend, wrapping mirrors in a composite.
func newRepository(cfg *config.Config) (port.Repository, error) {
	primary, err := newBackend(cfg, cfg.Storage.Backend)
	if err != nil {
		return nil, err
	}
	if len(cfg.Storage.Mirrors) == 0 {
		return primary, nil
	}

	repos := []port.Repository{primary}
	for _, name := range cfg.Storage.Mirrors {
		if name == cfg.Storage.Backend {
			continue
		}
		mirror, err := newBackend(cfg, name)
		if err != nil {
			return nil, fmt.Errorf("mirror %s: %w", name, err)
		}
		repos = append(repos, mirror)
	}
	return composite.New(repos...), nil
}

func newBackend(cfg *config.Config, name string) (port.Repository, error) {
	switch name {
	case "memory":
		return memory.New(), nil
	case "sqlite":
		return sqlite.New(cfg.Storage.SqlitePath)
	case "postgres":
		dsn := os.Getenv("POSTGRES_URL")
		if dsn == "" {
			return nil, errors.New("POSTGRES_URL is required for the postgres backend")
		}
		return postgres.New(dsn)
	case "redis":
		addr := os.Getenv("REDIS_ADDR")
		if addr == "" {
			return nil, errors.New("REDIS_ADDR is required for the redis backend")
		}
		rdb := goredis.NewClient(&goredis.Options{Addr: addr})
		ttl := time.Duration(cfg.Storage.RedisTTLSec) * time.Second
		return redis.New(rdb, cfg.Storage.RedisPrefix, ttl), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", name)
	}
}

// runFeed pipes the optional remote quote stream into the board. The board's
// timestamp check drops anything arriving out of order.
func runFeed(ctx context.Context, cfg *config.Config, board *domain.Board, repo port.Repository) {
	remote := feed.NewRemoteFeed(cfg.Feed.WsURL)
	ch, err := remote.Subscribe(ctx, cfg.Symbols.List)
	if err != nil {
		log.Error().Err(err).Msg("remote feed subscribe failed")
		return
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case q, ok := <-ch:
				if !ok {
					return
				}
				if board.Update(q) {
					_ = repo.UpsertLatestQuote(ctx, q)
				}
			}
		}
	}()
	log.Info().Str("feed", remote.Name()).Msg("remote feed started")
}

// repl reads trading commands from stdin until quit or shutdown.
func repl(ctx context.Context, stop context.CancelFunc, session *appsvc.Session, trades *appsvc.TradeService, valuator *domsvc.Valuator, sink port.Sink, renderer *console.Renderer) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch strings.ToLower(fields[0]) {
		case "buy", "sell":
			if len(fields) != 3 {
				_ = sink.WriteLine("usage: buy|sell SYMBOL QUANTITY")
				continue
			}
			side, _ := model.ParseSide(strings.ToLower(fields[0]))
			qty, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				_ = sink.WriteLine(fmt.Sprintf("rejected: %v", fmt.Errorf("%w: quantity %q is not an integer", domain.ErrInvalidInput, fields[2])))
				continue
			}
			res, err := trades.Execute(ctx, fields[1], side, qty)
			if err != nil {
				_ = sink.WriteLine("rejected: " + err.Error())
				continue
			}
			_ = sink.WriteLine(renderer.RenderTrade(res.Transaction, res.Realized, res.CashAfter))

		case "portfolio", "pf":
			rep := valuator.Report(session.Account, session.Board)
			_ = sink.WriteSnapshot(time.Now(), renderer.RenderPortfolio(rep))

		case "history":
			if len(fields) != 3 {
				_ = sink.WriteLine("usage: history SYMBOL 1H|1D|1W|1M|1Y|ALL")
				continue
			}
			tf, ok := model.ParseTimeframe(fields[2])
			if !ok {
				_ = sink.WriteLine("unknown timeframe " + fields[2])
				continue
			}
			points, err := trades.History(ctx, fields[1], tf)
			if err != nil {
				_ = sink.WriteLine("history failed: " + err.Error())
				continue
			}
			_ = sink.WriteSnapshot(time.Now(), renderer.RenderHistory(strings.ToUpper(fields[1]), tf, points))

		case "log":
			txs := session.Journal.All()
			lines := make([]string, 0, len(txs))
			for _, tx := range txs {
				lines = append(lines, fmt.Sprintf("%s %s %d %s @ %s total %s",
					time.UnixMilli(tx.Timestamp).Format("15:04:05"),
					tx.Side, tx.Quantity, tx.Symbol, tx.Price.StringFixed(2), tx.Total.StringFixed(2)))
			}
			if len(lines) == 0 {
				lines = append(lines, "no trades yet")
			}
			_ = sink.WriteSnapshot(time.Now(), lines)

		case "reset":
			if err := session.Reset(ctx); err != nil {
				_ = sink.WriteLine("reset failed: " + err.Error())
				continue
			}
			_ = sink.WriteLine("state reset to defaults")

		case "quit", "exit":
			stop()
			return

		case "help":
			_ = sink.WriteLine("commands: buy SYM QTY | sell SYM QTY | portfolio | history SYM TF | log | reset | quit")

		default:
			_ = sink.WriteLine("unknown command (try: help)")
		}
	}
}
