package feed

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{}

// tickServer upgrades the connection, reads the subscribe request and then
// streams n ticks for AAPL before holding the connection open.
func tickServer(t *testing.T, n int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		for i := 0; i < n; i++ {
			msg := fmt.Sprintf(`{"symbol":"AAPL","price":%d,"change_percent":0.1,"ts_ms":%d}`, 100+i, i+1)
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestSubscribeRequiresURL(t *testing.T) {
	f := NewRemoteFeed("  ")
	if _, err := f.Subscribe(context.Background(), []string{"AAPL"}); err == nil {
		t.Fatal("expected error for empty url")
	}
}

func TestSubscribeReceivesTicks(t *testing.T) {
	srv := tickServer(t, 3)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := NewRemoteFeed(wsURL(srv)).Subscribe(ctx, []string{"aapl"})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	select {
	case q := <-ch:
		if q.Symbol != "AAPL" || q.Price != 100 || q.Timestamp != 1 {
			t.Errorf("unexpected first tick %+v", q)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no tick received")
	}
}

func TestCancelWithUndrainedSubscriberClosesStream(t *testing.T) {
	// more ticks than the channel buffers, with nobody reading
	srv := tickServer(t, 3000)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())

	ch, err := NewRemoteFeed(wsURL(srv)).Subscribe(ctx, []string{"AAPL"})
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	// let the sender fill the buffer and block
	time.Sleep(200 * time.Millisecond)
	cancel()

	// the stream must drain and close cleanly, not panic on a blocked send
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("quote channel never closed after cancel")
		}
	}
}
