package binance

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/mvoloshin/exchange-bot/internal/domain"
)

func newTestClient(serverURL string) *Client {
	return NewClient(serverURL, time.Second, 3, zap.NewNop())
}

func TestGetPriceRetriesThenSucceeds(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/api/v3/ticker/price" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("symbol") != "BTCUSDT" {
			t.Fatalf("unexpected symbol: %s", r.URL.Query().Get("symbol"))
		}
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"symbol":"BTCUSDT","price":"50000.00"}`)
	}))
	defer server.Close()

	price, err := newTestClient(server.URL).GetPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("GetPrice failed: %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	if price.String() != "50000" {
		t.Fatalf("unexpected price: %s", price)
	}
}

func TestGetPriceAllAttemptsFail(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetPrice(context.Background(), "BTCUSDT")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrQuoteUnavailable) {
		t.Fatalf("expected ErrQuoteUnavailable, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestGetPriceMalformedPayloadNoRetry(t *testing.T) {
	for name, body := range map[string]string{
		"missing price": `{"symbol":"BTCUSDT"}`,
		"garbage price": `{"symbol":"BTCUSDT","price":"not-a-number"}`,
		"zero price":    `{"symbol":"BTCUSDT","price":"0"}`,
		"not json":      `<html>oops</html>`,
	} {
		t.Run(name, func(t *testing.T) {
			calls := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				fmt.Fprint(w, body)
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).GetPrice(context.Background(), "BTCUSDT")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, domain.ErrQuoteUnavailable) {
				t.Fatalf("expected ErrQuoteUnavailable, got %v", err)
			}
			if calls != 1 {
				t.Fatalf("expected 1 call (no retry on data errors), got %d", calls)
			}
		})
	}
}

func TestGetPriceTimeoutIsRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(100 * time.Millisecond)
		fmt.Fprint(w, `{"symbol":"BTCUSDT","price":"50000.00"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 10*time.Millisecond, 3, zap.NewNop())
	_, err := client.GetPrice(context.Background(), "BTCUSDT")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, domain.ErrQuoteUnavailable) {
		t.Fatalf("expected ErrQuoteUnavailable, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}
