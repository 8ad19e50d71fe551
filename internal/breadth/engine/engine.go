package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Fetcher looks up reference prices for a symbol. Errors mean
// "unavailable right now"; the engine degrades instead of failing.
type Fetcher interface {
	LastPrice(ctx context.Context, symbol string) (float64, error)
	PrevClose(ctx context.Context, symbol string) (float64, error)
}

// Engine owns every breadth counter. All mutations come from a single
// logical writer (the collector loop); readers take a consistent copy
// under the read lock. Reference-price fetches happen outside the lock
// so a slow network call never stalls the read path.
type Engine struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu          sync.RWMutex
	symbols     []string // configured order; symbols[0] is the delta-color reference
	instruments map[string]*instrumentState
	addCounter  int
	tickCounter int
	arrow       Arrow
}

func New(fetcher Fetcher, symbols []string, logger *zap.Logger) *Engine {
	e := &Engine{
		fetcher:     fetcher,
		logger:      logger,
		symbols:     append([]string(nil), symbols...),
		instruments: make(map[string]*instrumentState, len(symbols)),
		arrow:       ArrowFlat,
	}
	for _, sym := range e.symbols {
		e.instruments[sym] = &instrumentState{}
	}
	return e
}

// ApplyTrade folds one trade into the counters. Trades for symbols
// outside the configured set are ignored. It never fails outward.
func (e *Engine) ApplyTrade(ev TradeEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.instruments[ev.Symbol]
	if !ok {
		return
	}

	if ev.SellerInitiated {
		st.sellVolume += ev.Quantity
	} else {
		st.buyVolume += ev.Quantity
	}

	// ADD: strictly above prev close counts up, a tie counts down.
	if ev.Price > st.prevClose {
		e.addCounter++
	} else {
		e.addCounter--
	}

	// TICK: first observation only seeds the baseline.
	if st.lastTickPrice != 0 {
		if ev.Price > st.lastTickPrice {
			e.tickCounter++
		} else if ev.Price < st.lastTickPrice {
			e.tickCounter--
		}
	}
	st.lastTickPrice = ev.Price
	st.lastPrice = ev.Price
}

// DailyReset zeroes all volumes and counters, resets the arrow, and
// refreshes each instrument's prev close. A failed fetch keeps the prior
// value (a fresh zero would make every later price look like a gain) and
// never aborts the reset of the other instruments.
func (e *Engine) DailyReset(ctx context.Context) {
	closes := e.fetchCloses(ctx, e.Symbols())

	e.mu.Lock()
	defer e.mu.Unlock()

	e.addCounter = 0
	e.tickCounter = 0
	e.arrow = ArrowFlat
	for sym, st := range e.instruments {
		st.buyVolume = 0
		st.sellVolume = 0
		if pc, ok := closes[sym]; ok {
			st.prevClose = pc
		}
	}
}

// SeedLastPrices fetches the latest traded price for every configured
// instrument so the snapshot has a reference price before the first
// trade arrives. Failures keep the 0 sentinel. The TICK baseline is not
// touched: the first streamed trade still seeds it.
func (e *Engine) SeedLastPrices(ctx context.Context) {
	symbols := e.Symbols()
	prices := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		p, err := e.fetcher.LastPrice(ctx, sym)
		if err != nil {
			e.logger.Warn("last price seed failed", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		prices[sym] = p
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for sym, p := range prices {
		if st, ok := e.instruments[sym]; ok {
			st.lastPrice = p
		}
	}
}

// RecomputeTickArrow sets the arrow from the sign of the TICK counter.
// The counter itself is untouched, so the call is idempotent.
func (e *Engine) RecomputeTickArrow() {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case e.tickCounter > 0:
		e.arrow = ArrowUp
	case e.tickCounter < 0:
		e.arrow = ArrowDown
	default:
		e.arrow = ArrowFlat
	}
}

// Reconfigure replaces the instrument set: removed symbols are dropped
// entirely, added symbols start zeroed with a freshly fetched prev
// close, and every derived counter is reset as on a day rollover.
func (e *Engine) Reconfigure(ctx context.Context, symbols []string) {
	closes := e.fetchCloses(ctx, symbols)

	e.mu.Lock()
	defer e.mu.Unlock()

	next := make(map[string]*instrumentState, len(symbols))
	for _, sym := range symbols {
		st, ok := e.instruments[sym]
		if !ok {
			st = &instrumentState{}
		}
		st.buyVolume = 0
		st.sellVolume = 0
		if pc, ok := closes[sym]; ok {
			st.prevClose = pc
		}
		next[sym] = st
	}

	e.symbols = append([]string(nil), symbols...)
	e.instruments = next
	e.addCounter = 0
	e.tickCounter = 0
	e.arrow = ArrowFlat
}

// Symbols returns the configured symbols in order.
func (e *Engine) Symbols() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.symbols...)
}

// InstrumentView returns a copy of one instrument's state.
func (e *Engine) InstrumentView(symbol string) (InstrumentView, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	st, ok := e.instruments[symbol]
	if !ok {
		return InstrumentView{}, false
	}
	return InstrumentView{
		Symbol:        symbol,
		BuyVolume:     st.buyVolume,
		SellVolume:    st.sellVolume,
		LastPrice:     st.lastPrice,
		PrevClose:     st.prevClose,
		LastTickPrice: st.lastTickPrice,
	}, true
}

// fetchCloses resolves prev closes for the given symbols without holding
// the state lock. Failures are logged and simply absent from the result.
func (e *Engine) fetchCloses(ctx context.Context, symbols []string) map[string]float64 {
	closes := make(map[string]float64, len(symbols))
	for _, sym := range symbols {
		pc, err := e.fetcher.PrevClose(ctx, sym)
		if err != nil {
			e.logger.Warn("prev close refresh failed, keeping prior value",
				zap.String("symbol", sym), zap.Error(err))
			continue
		}
		closes[sym] = pc
	}
	return closes
}
