package engine

// TradeEvent is one normalized trade from the stream.
type TradeEvent struct {
	Symbol          string
	Price           float64
	Quantity        float64
	SellerInitiated bool // true when the sell side initiated (buyer was maker)
}

// Arrow is the debounced TICK direction glyph. It only changes when the
// scheduler asks for a recompute, never per trade.
type Arrow string

const (
	ArrowUp   Arrow = "↑"
	ArrowDown Arrow = "↓"
	ArrowFlat Arrow = "→"
)

// instrumentState holds the per-symbol accumulators. A price of 0 is the
// "not observed yet" sentinel, both for lastTickPrice (skip the first
// TICK comparison) and prevClose (fetch never succeeded).
type instrumentState struct {
	buyVolume     float64
	sellVolume    float64
	lastPrice     float64
	prevClose     float64
	lastTickPrice float64
}

// InstrumentView is a read-only copy of one instrument's state.
type InstrumentView struct {
	Symbol        string  `json:"symbol"`
	BuyVolume     float64 `json:"buy_volume"`
	SellVolume    float64 `json:"sell_volume"`
	LastPrice     float64 `json:"last_price"`
	PrevClose     float64 `json:"prev_close"`
	LastTickPrice float64 `json:"last_tick_price"`
}
