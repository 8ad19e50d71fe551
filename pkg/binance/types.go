package binance

import "encoding/json"

// TickerPrice is the response of GET /api/v3/ticker/price for one symbol.
type TickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"` // decimal string, e.g. "43250.10000000"
}

// KlineRows is the response of GET /api/v3/klines. Each row is a
// heterogeneous array (open time as number, prices as strings, ...),
// so the cells stay raw until the caller picks the ones it needs.
//
//	[0] open time, [1] open, [2] high, [3] low, [4] close, [5] volume, ...
type KlineRows [][]json.RawMessage

const klineCloseIndex = 4
