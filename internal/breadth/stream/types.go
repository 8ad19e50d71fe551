package stream

import "encoding/json"

// Envelope is a combined-streams frame: the stream name plus an opaque
// payload that is only decoded once the frame passes the trade filter.
type Envelope struct {
	Stream string          `json:"stream"` // e.g. "btcusdt@trade"
	Data   json.RawMessage `json:"data"`
}

// TradeData is the trade-event payload of a combined-streams frame.
// Prices and quantities arrive as decimal strings.
type TradeData struct {
	EventType  string `json:"e"` // "trade"
	Symbol     string `json:"s"` // e.g. "BTCUSDT"
	Price      string `json:"p"`
	Quantity   string `json:"q"`
	BuyerMaker bool   `json:"m"` // buyer was maker: the sell side initiated
}
