package binance

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// go test -v --run TestLastPrice
func TestLastPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/ticker/price" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "BTCUSDT" {
			t.Errorf("symbol = %q", got)
		}
		w.Write([]byte(`{"symbol":"BTCUSDT","price":"43250.10000000"}`))
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, 5*time.Second)

	price, err := client.LastPrice(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 43250.10 {
		t.Errorf("price = %v, want 43250.10", price)
	}
}

// go test -v --run TestPrevClose
func TestPrevClose(t *testing.T) {
	// Two daily candles: the completed one (close 105.5) and the
	// still-running one. Rows mix numbers and strings like the real API.
	body := `[
		[1709164800000,"100.0","110.0","95.0","105.5","1234.5",1709251199999,"130000.0",4521,"600.1","63000.0","0"],
		[1709251200000,"105.5","108.0","104.0","107.2","321.0",1709337599999,"34000.0",1201,"150.2","16000.0","0"]
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v3/klines" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("interval") != "1d" || q.Get("limit") != "2" {
			t.Errorf("query = %q, want interval=1d&limit=2", r.URL.RawQuery)
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, 5*time.Second)

	closePrice, err := client.PrevClose(context.Background(), "BTCUSDT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if closePrice != 105.5 {
		t.Errorf("prev close = %v, want 105.5 (second-to-last candle)", closePrice)
	}
}

// go test -v --run TestUnavailableOnBadStatus
func TestUnavailableOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":-1121,"msg":"Invalid symbol."}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewRESTClient(srv.URL, 5*time.Second)

	if _, err := client.LastPrice(context.Background(), "NOPE"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("LastPrice error = %v, want ErrUnavailable", err)
	}
	if _, err := client.PrevClose(context.Background(), "NOPE"); !errors.Is(err, ErrUnavailable) {
		t.Errorf("PrevClose error = %v, want ErrUnavailable", err)
	}
}

// go test -v --run TestUnavailableOnMalformedBody
func TestUnavailableOnMalformedBody(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `<html>maintenance</html>`},
		{"single candle", `[[1709164800000,"100.0","110.0","95.0","105.5"]]`},
		{"short row", `[[1],[2]]`},
		{"numeric close cell", `[[1,"a","b","c",105.5],[2,"a","b","c","107.2"]]`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			client := NewRESTClient(srv.URL, 5*time.Second)
			if _, err := client.PrevClose(context.Background(), "BTCUSDT"); !errors.Is(err, ErrUnavailable) {
				t.Errorf("error = %v, want ErrUnavailable", err)
			}
		})
	}
}

// go test -v --run TestUnavailableOnTimeout
func TestUnavailableOnTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	// The client timeout bounds the call; a hung reference fetch must
	// not stall a daily reset.
	client := NewRESTClient(srv.URL, 50*time.Millisecond)

	start := time.Now()
	_, err := client.LastPrice(context.Background(), "BTCUSDT")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("call took %v, timeout not enforced", elapsed)
	}
}
