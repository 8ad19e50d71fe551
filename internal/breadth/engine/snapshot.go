package engine

import (
	"fmt"
	"time"
)

// Snapshot is the consistent point-in-time view handed to the display
// surface. Field names follow the JSON the frontend polls.
type Snapshot struct {
	DeltaRatio string  `json:"delta_ratio"`
	DeltaColor string  `json:"delta_color"`
	BuyVolume  float64 `json:"buy_volume"`
	SellVolume float64 `json:"sell_volume"`
	Add        int     `json:"add"`
	Tick       int     `json:"tick"`
	TickArrow  string  `json:"tick_arrow"`
	Time       string  `json:"time"`
}

// Snapshot copies the current counters under the read lock and derives
// the display values. The timestamp is rendered in the given zone.
func (e *Engine) Snapshot(now time.Time, zone *time.Location) Snapshot {
	e.mu.RLock()

	var totalBuy, totalSell float64
	for _, st := range e.instruments {
		totalBuy += st.buyVolume
		totalSell += st.sellVolume
	}

	var refPrice, refClose float64
	if len(e.symbols) > 0 {
		if ref, ok := e.instruments[e.symbols[0]]; ok {
			refPrice = ref.lastPrice
			refClose = ref.prevClose
		}
	}

	add := e.addCounter
	tick := e.tickCounter
	arrow := e.arrow

	e.mu.RUnlock()

	color := "red"
	if refPrice > refClose {
		color = "green"
	}

	return Snapshot{
		DeltaRatio: formatDeltaRatio(totalBuy, totalSell),
		DeltaColor: color,
		BuyVolume:  totalBuy,
		SellVolume: totalSell,
		Add:        add,
		Tick:       tick,
		TickArrow:  string(arrow),
		Time:       now.In(zone).Format("2006-01-02 15:04:05"),
	}
}

// formatDeltaRatio renders cumulative buy vs sell volume as a signed
// "X.XX:1" ratio. When the sell side is zero the raw buy volume stands
// in for the ratio, and a tie reads as sell-weighted.
func formatDeltaRatio(buy, sell float64) string {
	ratio := buy
	if sell != 0 {
		ratio = buy / sell
	}
	if buy > sell {
		return fmt.Sprintf("+%.2f:1", ratio)
	}
	return fmt.Sprintf("-%.2f:1", ratio)
}
