package binance

import (
	"context"
	"strings"
	"sync"
	"time"

	"breadthwatch/internal/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// StreamClient maintains a combined trade-stream subscription for the
// configured symbol set. It redials with a fixed delay on any connect or
// read failure and keeps going until the context is cancelled. The
// aggregation state lives elsewhere; a reconnect only recreates the
// transport.
type StreamClient struct {
	baseURL string
	delay   time.Duration
	handler func([]byte)
	logger  *zap.Logger

	mu      sync.Mutex
	symbols []string
	gen     uint64 // bumped on every Resubscribe
	conn    *websocket.Conn
}

func NewStreamClient(baseURL string, delay time.Duration, symbols []string, logger *zap.Logger) *StreamClient {
	return &StreamClient{
		baseURL: baseURL,
		delay:   delay,
		symbols: append([]string(nil), symbols...),
		logger:  logger,
	}
}

// SetMessageHandler sets the function to handle incoming raw messages.
func (c *StreamClient) SetMessageHandler(h func([]byte)) {
	c.handler = h
}

// Resubscribe swaps the symbol set and tears down the live connection,
// forcing the run loop to redial with a subscription built from the new
// set. The generation bump also catches a dial that is still in flight:
// when it completes, the run loop sees the stale generation and redials
// instead of keeping the old subscription. Counters owned by the engine
// are untouched.
func (c *StreamClient) Resubscribe(symbols []string) {
	c.mu.Lock()
	c.symbols = append([]string(nil), symbols...)
	c.gen++
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}

// Run dials and reads until ctx is cancelled. Connect and read failures
// wait the fixed delay and retry indefinitely; a teardown caused by
// Resubscribe redials immediately so a watchlist change does not pay the
// failure backoff.
func (c *StreamClient) Run(ctx context.Context) {
	for {
		conn, gen, err := c.connect()
		if err != nil {
			c.logger.Warn("trade stream connect failed", zap.Error(err))
			metrics.ReconnectsTotal.Inc()
			if !c.wait(ctx) {
				return
			}
			continue
		}

		// The symbol set may have changed while the dial was in
		// flight; this subscription is already stale, replace it.
		if gen != c.currentGen() {
			_ = conn.Close()
			continue
		}

		// Unblock ReadMessage on shutdown by closing the connection.
		connDone := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-connDone:
			}
		}()

		c.readLoop(ctx, conn)
		close(connDone)

		if ctx.Err() != nil {
			return
		}

		// Deliberate teardown: redial with the new set right away.
		if gen != c.currentGen() {
			continue
		}

		metrics.ReconnectsTotal.Inc()
		if !c.wait(ctx) {
			return
		}
	}
}

// connect dials the combined-streams URL for the current symbol set and
// returns the generation the subscription was built from.
func (c *StreamClient) connect() (*websocket.Conn, uint64, error) {
	url, gen := c.streamURL()

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, gen, err
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.logger.Info("trade stream connected", zap.String("url", url))
	return conn, gen, nil
}

func (c *StreamClient) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.Warn("trade stream read error", zap.Error(err))
			}
			return
		}

		if c.handler != nil {
			c.handler(msg)
		}
	}
}

// streamURL builds the combined-streams URL for the current symbol set,
// e.g. wss://host/stream?streams=btcusdt@trade/ethusdt@trade, along with
// the generation it reflects.
func (c *StreamClient) streamURL() (string, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	topics := make([]string, 0, len(c.symbols))
	for _, s := range c.symbols {
		topics = append(topics, strings.ToLower(s)+"@trade")
	}
	return c.baseURL + "/stream?streams=" + strings.Join(topics, "/"), c.gen
}

func (c *StreamClient) currentGen() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *StreamClient) wait(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(c.delay):
		return true
	}
}
