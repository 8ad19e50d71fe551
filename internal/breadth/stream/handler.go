package stream

import (
	"encoding/json"
	"strconv"
	"strings"

	"breadthwatch/internal/breadth/engine"
	"breadthwatch/internal/metrics"

	"go.uber.org/zap"
)

// MakeMessageHandler returns a function that decodes raw combined-stream
// frames into trade events and forwards them to the collector. Malformed
// frames are dropped with a diagnostic; they never stop the stream.
func MakeMessageHandler(logger *zap.Logger, events chan<- engine.TradeEvent) func(msg []byte) {
	return func(msg []byte) {
		// Step 1: decode the envelope and filter for trade streams early
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			metrics.DroppedMessagesTotal.Inc()
			logger.Warn("failed to decode stream envelope", zap.Error(err))
			return
		}
		if !isTradeStream(env.Stream) {
			return // subscription acks, pings, other stream kinds
		}

		// Step 2: fully parse the trade payload
		var data TradeData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			metrics.DroppedMessagesTotal.Inc()
			logger.Warn("failed to decode trade payload", zap.Error(err))
			return
		}

		ev, err := toTradeEvent(data)
		if err != nil {
			metrics.DroppedMessagesTotal.Inc()
			logger.Warn("dropping malformed trade",
				zap.String("symbol", data.Symbol), zap.Error(err))
			return
		}

		events <- ev
	}
}

func toTradeEvent(data TradeData) (engine.TradeEvent, error) {
	price, err := strconv.ParseFloat(data.Price, 64)
	if err != nil {
		return engine.TradeEvent{}, err
	}
	qty, err := strconv.ParseFloat(data.Quantity, 64)
	if err != nil {
		return engine.TradeEvent{}, err
	}

	return engine.TradeEvent{
		Symbol:          data.Symbol,
		Price:           price,
		Quantity:        qty,
		SellerInitiated: data.BuyerMaker,
	}, nil
}

// isTradeStream returns true for stream names like "btcusdt@trade".
func isTradeStream(stream string) bool {
	return strings.HasSuffix(stream, "@trade")
}
