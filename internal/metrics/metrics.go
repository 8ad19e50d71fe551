package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	TradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "breadth_trades_total", Help: "Trade events applied to the engine"},
		[]string{"symbol", "side"},
	)
	DroppedMessagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "breadth_dropped_messages_total", Help: "Stream messages dropped as malformed"},
	)
	ReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "breadth_stream_reconnects_total", Help: "Trade stream reconnect attempts"},
	)
	DailyResetsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "breadth_daily_resets_total", Help: "Daily resets applied"},
	)
)

func init() {
	prometheus.MustRegister(TradesTotal, DroppedMessagesTotal, ReconnectsTotal, DailyResetsTotal)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
