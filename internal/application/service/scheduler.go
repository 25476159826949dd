package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"papertrade/internal/application/port"
	"papertrade/internal/domain"
)

// SchedulerState is the lifecycle state of the update loop.
type SchedulerState int32

const (
	StateIdle SchedulerState = iota
	StateRunning
	StateStalled
)

func (s SchedulerState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateStalled:
		return "stalled"
	default:
		return "idle"
	}
}

// SchedulerConfig 更新循环参数。周期是配置项而非固定常量。
type SchedulerConfig struct {
	TickInterval     time.Duration // main refresh period
	WatchdogInterval time.Duration // how often the watchdog checks
	StaleAfter       time.Duration // no completed tick for this long => stalled
}

// DefaultSchedulerConfig returns the canonical timing set.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		TickInterval:     2 * time.Second,
		WatchdogInterval: time.Second,
		StaleAfter:       6 * time.Second,
	}
}

// Scheduler keeps the market board fresh: every tick it refreshes the quote
// for each tracked symbol (watchlist plus currently held), best-effort per
// symbol. A supervising watchdog owns the restart logic: if no tick has
// completed within StaleAfter it cancels the loop and starts a new one,
// so a wedged provider degrades freshness instead of silently halting
// updates forever.
type Scheduler struct {
	cfg      SchedulerConfig
	provider port.QuoteProvider
	board    *domain.Board
	account  *domain.Account
	repo     port.Repository

	mu          sync.Mutex
	loopCancel  context.CancelFunc
	watchCancel context.CancelFunc

	state    atomic.Int32
	lastTick atomic.Int64 // unix ms of the last completed tick
	restarts atomic.Int64
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(cfg SchedulerConfig, provider port.QuoteProvider, board *domain.Board, account *domain.Account, repo port.Repository) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		provider: provider,
		board:    board,
		account:  account,
		repo:     repo,
	}
}

// Start launches the update loop and the watchdog. Calling Start on a
// running scheduler replaces the previous loop; it never leaves two loops
// ticking concurrently.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.startLoopLocked(ctx)

	// the watchdog follows the latest Start context, like the loop does
	if s.watchCancel != nil {
		s.watchCancel()
	}
	wctx, cancel := context.WithCancel(ctx)
	s.watchCancel = cancel
	go s.watchdog(ctx, wctx)
}

// Stop cancels both timers. Safe to call at any time, including mid-tick;
// in-flight fetches that resolve later are dropped by their canceled context
// and by the board's timestamp check.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loopCancel != nil {
		s.loopCancel()
		s.loopCancel = nil
	}
	if s.watchCancel != nil {
		s.watchCancel()
		s.watchCancel = nil
	}
	s.state.Store(int32(StateIdle))
}

// State returns the current lifecycle state.
func (s *Scheduler) State() SchedulerState {
	return SchedulerState(s.state.Load())
}

// Restarts returns how many times the watchdog has restarted the loop.
func (s *Scheduler) Restarts() int64 {
	return s.restarts.Load()
}

// startLoopLocked replaces the running loop. Caller holds s.mu.
func (s *Scheduler) startLoopLocked(parent context.Context) {
	if s.loopCancel != nil {
		s.loopCancel()
	}
	lctx, cancel := context.WithCancel(parent)
	s.loopCancel = cancel

	s.lastTick.Store(time.Now().UnixMilli())
	s.state.Store(int32(StateRunning))

	go s.loop(lctx)
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.tick(ctx) {
				s.lastTick.Store(time.Now().UnixMilli())
			}
		}
	}
}

// tick refreshes every tracked symbol. One symbol failing never aborts the
// others; its cache entry is simply left stale. Returns false only when the
// whole tick was cut short by cancellation.
func (s *Scheduler) tick(ctx context.Context) (completed bool) {
	defer func() {
		// a panic inside one tick must not kill the loop goroutine silently;
		// the watchdog notices the missing tick timestamp and restarts
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("tick panicked")
			completed = false
		}
	}()

	symbols := s.symbols()
	for _, sym := range symbols {
		if ctx.Err() != nil {
			return false
		}

		qctx, cancel := context.WithTimeout(ctx, s.cfg.TickInterval)
		q, err := s.provider.GetQuote(qctx, sym)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("symbol", sym).Msg("quote refresh failed")
			continue
		}

		if s.board.Update(q) {
			_ = s.repo.UpsertLatestQuote(ctx, q)
		}
	}
	return ctx.Err() == nil
}

// symbols 返回需要刷新的标的：默认观察列表 ∪ 当前持仓
func (s *Scheduler) symbols() []string {
	out := s.board.Symbols()
	seen := make(map[string]struct{}, len(out))
	for _, sym := range out {
		seen[sym] = struct{}{}
	}
	for _, sym := range s.account.Symbols() {
		if _, ok := seen[sym]; ok {
			continue
		}
		out = append(out, sym)
	}
	return out
}

// watchdog restarts the loop when ticks stop completing. parent is the
// context new loops are derived from; wctx stops the watchdog itself.
func (s *Scheduler) watchdog(parent, wctx context.Context) {
	ticker := time.NewTicker(s.cfg.WatchdogInterval)
	defer ticker.Stop()

	for {
		select {
		case <-wctx.Done():
			return
		case <-ticker.C:
			if SchedulerState(s.state.Load()) != StateRunning {
				continue
			}
			idle := time.Now().UnixMilli() - s.lastTick.Load()
			if idle < s.cfg.StaleAfter.Milliseconds() {
				continue
			}

			s.mu.Lock()
			// Stop (or a newer Start) may have won the race since the
			// state check; a stopped scheduler must stay stopped
			if wctx.Err() != nil || s.watchCancel == nil {
				s.mu.Unlock()
				return
			}
			s.state.Store(int32(StateStalled))
			s.restarts.Add(1)
			s.startLoopLocked(parent)
			s.mu.Unlock()

			log.Warn().
				Int64("idle_ms", idle).
				Int64("restarts", s.restarts.Load()).
				Msg("update loop stalled, restarting")
		}
	}
}
