package feed

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"papertrade/internal/application/port"
	"papertrade/internal/domain"
	"papertrade/internal/domain/model"
)

// RemoteFeed streams quotes from a generic websocket endpoint. It is the
// optional real-feed variant of the quote pipeline: ticks flow into the
// market board, where the timestamp check rejects anything that arrives
// late after a reconnect.
type RemoteFeed struct {
	wsURL string
}

// NewRemoteFeed creates a feed client for the given websocket URL.
func NewRemoteFeed(wsURL string) *RemoteFeed {
	return &RemoteFeed{wsURL: strings.TrimSpace(wsURL)}
}

func (f *RemoteFeed) Name() string { return "remote" }

// wire message: {"symbol":"AAPL","price":175.52,"change_percent":0.4,"ts_ms":...}
// an overloaded server sends {"error":"rate_limited","retry_ms":5000} instead
type feedMsg struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	ChangePercent float64 `json:"change_percent"`
	Ts            int64   `json:"ts_ms"`
	Error         string  `json:"error,omitempty"`
	RetryMs       int64   `json:"retry_ms,omitempty"`
}

// Subscribe opens the stream and reconnects with exponential backoff until
// the context is canceled. The returned channel closes on cancellation.
func (f *RemoteFeed) Subscribe(ctx context.Context, symbols []string) (<-chan model.Quote, error) {
	if f.wsURL == "" {
		return nil, domain.ErrQuoteUnavailable
	}

	out := make(chan model.Quote, 1024)
	go f.run(ctx, symbols, out)
	return out, nil
}

func (f *RemoteFeed) run(ctx context.Context, symbols []string, out chan<- model.Quote) {
	defer close(out)

	wanted := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		wanted[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}

	backoff := 500 * time.Millisecond
	maxBackoff := 10 * time.Second

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		log.Warn().Str("feed", f.Name()).Str("url", f.wsURL).Msg("ws connecting")
		cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		conn, _, err := websocket.DefaultDialer.DialContext(cctx, f.wsURL, nil)
		cancel()
		if err != nil {
			log.Error().Str("feed", f.Name()).Err(err).Msg("ws dial failed")
			if !sleepCtx(ctx, backoff) {
				return
			}
			backoff = minDur(backoff*2, maxBackoff)
			continue
		}

		backoff = 500 * time.Millisecond
		log.Info().Str("feed", f.Name()).Int("symbols", len(wanted)).Msg("ws connected")

		if err := subscribeSymbols(conn, symbols); err != nil {
			log.Error().Str("feed", f.Name()).Err(err).Msg("subscribe failed")
			_ = conn.Close()
			continue
		}

		err = readLoop(ctx, conn, func(b []byte) {
			var msg feedMsg
			if e := json.Unmarshal(b, &msg); e != nil {
				log.Error().Str("feed", f.Name()).Err(e).Msg("json unmarshal failed")
				return
			}
			if msg.Error != "" {
				if msg.Error == "rate_limited" {
					log.Warn().Err(domain.ErrRateLimited).Int64("retry_ms", msg.RetryMs).Msg("feed throttled")
				} else {
					log.Warn().Str("feed_error", msg.Error).Msg("feed error message")
				}
				return
			}

			sym := strings.ToUpper(strings.TrimSpace(msg.Symbol))
			if sym == "" || msg.Price <= 0 {
				return
			}
			if _, ok := wanted[sym]; !ok {
				return
			}
			ts := msg.Ts
			if ts == 0 {
				ts = time.Now().UnixMilli()
			}
			// the consumer may be gone; never block past cancellation
			select {
			case out <- model.Quote{
				Symbol:        sym,
				Price:         msg.Price,
				ChangePercent: msg.ChangePercent,
				Timestamp:     ts,
			}:
			case <-ctx.Done():
			}
		})

		if ctx.Err() != nil {
			return
		}

		log.Warn().Str("feed", f.Name()).Err(err).Msg("ws disconnected, reconnecting")
		if !sleepCtx(ctx, backoff) {
			return
		}
		backoff = minDur(backoff*2, maxBackoff)
	}
}

func subscribeSymbols(conn *websocket.Conn, symbols []string) error {
	req := struct {
		Op      string   `json:"op"`
		Symbols []string `json:"symbols"`
	}{Op: "subscribe", Symbols: symbols}
	return conn.WriteJSON(req)
}

func readLoop(ctx context.Context, conn *websocket.Conn, onMsg func([]byte)) error {
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	pingTicker := time.NewTicker(25 * time.Second)
	defer pingTicker.Stop()

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		for {
			_, b, err := conn.ReadMessage()
			if err == nil {
				_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			}
			if err != nil {
				errCh <- err
				return
			}
			onMsg(b)
		}
	}()

	var result error
loop:
	for {
		select {
		case <-ctx.Done():
			result = ctx.Err()
			break loop
		case err := <-errCh:
			result = err
			break loop
		case <-pingTicker.C:
			_ = conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second))
		}
	}

	// unblock the reader and wait for it to exit: the caller closes the
	// quote channel right after this returns
	_ = conn.Close()
	for range errCh {
	}
	return result
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func minDur(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}

var _ port.PriceFeed = (*RemoteFeed)(nil)
