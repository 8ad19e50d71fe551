package binance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// ErrUnavailable marks a reference-data lookup that failed on transport,
// status, or parsing. Callers degrade (keep the prior value or the zero
// sentinel) instead of treating it as fatal.
var ErrUnavailable = errors.New("binance: reference data unavailable")

type RESTClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	return &RESTClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *RESTClient) HTTPClient() *http.Client {
	return c.httpClient
}

// LastPrice fetches the latest traded price for a symbol.
func (c *RESTClient) LastPrice(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v3/ticker/price?symbol=%s", c.baseURL, symbol)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return 0, err
	}

	var ticker TickerPrice
	if err := json.Unmarshal(body, &ticker); err != nil {
		return 0, fmt.Errorf("decode ticker: %v: %w", err, ErrUnavailable)
	}

	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ticker price %q: %w", ticker.Price, ErrUnavailable)
	}

	return price, nil
}

// PrevClose fetches the close of the most recent completed daily candle:
// the second-to-last entry of the last two daily klines.
func (c *RESTClient) PrevClose(ctx context.Context, symbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/api/v3/klines?symbol=%s&interval=1d&limit=2", c.baseURL, symbol)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return 0, err
	}

	var rows KlineRows
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0, fmt.Errorf("decode klines: %v: %w", err, ErrUnavailable)
	}

	if len(rows) < 2 {
		return 0, fmt.Errorf("want 2 daily klines, got %d: %w", len(rows), ErrUnavailable)
	}
	prev := rows[len(rows)-2]
	if len(prev) <= klineCloseIndex {
		return 0, fmt.Errorf("short kline row (%d cells): %w", len(prev), ErrUnavailable)
	}

	var closeStr string
	if err := json.Unmarshal(prev[klineCloseIndex], &closeStr); err != nil {
		return 0, fmt.Errorf("decode kline close: %v: %w", err, ErrUnavailable)
	}

	closePrice, err := strconv.ParseFloat(closeStr, 64)
	if err != nil {
		return 0, fmt.Errorf("parse kline close %q: %w", closeStr, ErrUnavailable)
	}

	return closePrice, nil
}

func (c *RESTClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	// Construct the GET request with context for timeout/cancel support
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	// Execute the HTTP request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("making request: %v: %w", err, ErrUnavailable)
	}
	defer resp.Body.Close()

	// Check HTTP status code
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("binance status %d: %s: %w", resp.StatusCode, body, ErrUnavailable)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %v: %w", err, ErrUnavailable)
	}

	return body, nil
}
