// Package binance fetches spot prices from the Binance public API.
package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mvoloshin/exchange-bot/internal/domain"
)

// errBadPayload marks a response that came back 2xx but carried no usable
// price. Retrying cannot fix it.
var errBadPayload = errors.New("malformed price payload")

// Client is the Binance ticker client. Every call hits the API fresh;
// there is no caching.
type Client struct {
	baseURL    string
	retries    int
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates a new Binance client. The timeout applies to each
// attempt separately.
func NewClient(baseURL string, timeout time.Duration, retries int, log *zap.Logger) *Client {
	if retries < 1 {
		retries = 1
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		retries: retries,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type tickerResponse struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// GetPrice fetches the current price for symbol. Network failures and
// non-2xx statuses are retried up to the configured attempt count; a
// malformed payload aborts immediately. The returned price is strictly
// positive on success.
func (c *Client) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var lastErr error
	for attempt := 1; attempt <= c.retries; attempt++ {
		price, err := c.fetch(ctx, symbol)
		if err == nil {
			return price, nil
		}
		lastErr = err
		if errors.Is(err, errBadPayload) {
			c.log.Error("binance data error",
				zap.String("symbol", symbol),
				zap.Error(err))
			break
		}
		c.log.Warn("binance request failed, retrying",
			zap.String("symbol", symbol),
			zap.Int("attempt", attempt),
			zap.Error(err))
	}
	return decimal.Decimal{}, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, lastErr)
}

func (c *Client) fetch(ctx context.Context, symbol string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", c.baseURL, symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decimal.Decimal{}, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var ticker tickerResponse
	if err := json.NewDecoder(resp.Body).Decode(&ticker); err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: decode: %v", errBadPayload, err)
	}
	if ticker.Price == "" {
		return decimal.Decimal{}, fmt.Errorf("%w: missing price field", errBadPayload)
	}
	price, err := decimal.NewFromString(ticker.Price)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: parse price %q: %v", errBadPayload, ticker.Price, err)
	}
	if price.Sign() <= 0 {
		return decimal.Decimal{}, fmt.Errorf("%w: non-positive price %q", errBadPayload, ticker.Price)
	}
	return price, nil
}
