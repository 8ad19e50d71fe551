// Package collector wires the trade stream, the breadth engine, and the
// schedule trackers into one long-running worker. The worker goroutine
// is the only writer: trade application, daily resets, arrow recomputes,
// and reconfiguration are all serialized through its loop, so readers
// can never observe a half-applied day transition.
package collector

import (
	"context"
	"time"

	"breadthwatch/internal/breadth/engine"
	"breadthwatch/internal/breadth/schedule"
	"breadthwatch/internal/breadth/stream"
	"breadthwatch/internal/metrics"

	"go.uber.org/zap"
)

// StreamTransport is the restartable trade subscription the collector
// consumes. pkg/binance.StreamClient implements it.
type StreamTransport interface {
	SetMessageHandler(func([]byte))
	Run(ctx context.Context)
	Resubscribe(symbols []string)
}

type Collector struct {
	engine    *engine.Engine
	transport StreamTransport
	logger    *zap.Logger

	zone          *time.Location
	arrowInterval time.Duration
	pollInterval  time.Duration
	now           func() time.Time

	events   chan engine.TradeEvent
	reconfig chan []string
}

func New(eng *engine.Engine, transport StreamTransport, zone *time.Location,
	arrowInterval time.Duration, logger *zap.Logger) *Collector {
	return &Collector{
		engine:        eng,
		transport:     transport,
		logger:        logger,
		zone:          zone,
		arrowInterval: arrowInterval,
		pollInterval:  time.Second,
		now:           time.Now,
		events:        make(chan engine.TradeEvent, 1024),
		reconfig:      make(chan []string),
	}
}

// Run blocks until ctx is cancelled. It seeds the reference closes,
// starts the stream transport, and then drives the engine from trade
// events, the one-second schedule poll, and reconfigure commands.
func (c *Collector) Run(ctx context.Context) {
	// Seed prev closes and reference prices before the first trade.
	c.engine.DailyReset(ctx)
	c.engine.SeedLastPrices(ctx)

	c.transport.SetMessageHandler(stream.MakeMessageHandler(c.logger, c.events))
	go c.transport.Run(ctx)

	days := schedule.NewDayTracker(c.zone, c.now())
	arrows := schedule.NewBucketTracker(c.arrowInterval, c.now())

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev := <-c.events:
			// Boundary checks come first so a trade arriving after
			// midnight never lands in the previous day's counters.
			c.evaluate(ctx, days, arrows)
			c.engine.ApplyTrade(ev)

			side := "buy"
			if ev.SellerInitiated {
				side = "sell"
			}
			metrics.TradesTotal.WithLabelValues(ev.Symbol, side).Inc()

		case <-ticker.C:
			c.evaluate(ctx, days, arrows)

		case symbols := <-c.reconfig:
			c.engine.Reconfigure(ctx, symbols)
			c.transport.Resubscribe(symbols)
			c.logger.Info("watchlist reconfigured", zap.Strings("symbols", symbols))
		}
	}
}

// Reconfigure hands a new symbol set to the worker loop. The swap is
// applied between trades, never in the middle of one.
func (c *Collector) Reconfigure(ctx context.Context, symbols []string) error {
	select {
	case c.reconfig <- symbols:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Collector) evaluate(ctx context.Context, days *schedule.DayTracker, arrows *schedule.BucketTracker) {
	now := c.now()

	if days.Crossed(now) {
		c.logger.Info("daily reset", zap.String("local_day", now.In(c.zone).Format("2006-01-02")))
		c.engine.DailyReset(ctx)
		metrics.DailyResetsTotal.Inc()
	}

	if arrows.Crossed(now) {
		c.engine.RecomputeTickArrow()
	}
}
