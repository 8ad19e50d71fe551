package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"breadthwatch/internal/breadth/engine"

	"go.uber.org/zap"
)

type fakeEngine struct {
	snap    engine.Snapshot
	symbols []string
}

func (f *fakeEngine) Snapshot(_ time.Time, _ *time.Location) engine.Snapshot { return f.snap }
func (f *fakeEngine) Symbols() []string                                      { return f.symbols }

type fakeWorker struct {
	applied [][]string
	err     error
}

func (f *fakeWorker) Reconfigure(_ context.Context, symbols []string) error {
	if f.err != nil {
		return f.err
	}
	f.applied = append(f.applied, symbols)
	return nil
}

type fakeStore struct {
	replaced [][]string
	err      error
	healthy  bool
}

func (f *fakeStore) ReplaceWatchlist(_ context.Context, symbols []string) error {
	if f.err != nil {
		return f.err
	}
	f.replaced = append(f.replaced, symbols)
	return nil
}

func (f *fakeStore) IsHealthy(_ context.Context) bool { return f.healthy }

func newTestServer(eng *fakeEngine, worker *fakeWorker, store *fakeStore) *Server {
	return NewServer(eng, worker, store, time.UTC, zap.NewNop())
}

// go test -v --run TestBreadthEndpoint
func TestBreadthEndpoint(t *testing.T) {
	eng := &fakeEngine{snap: engine.Snapshot{
		DeltaRatio: "+2.50:1",
		DeltaColor: "green",
		Add:        5,
		Tick:       -2,
		TickArrow:  "↓",
		Time:       "2024-03-01 12:00:00",
	}}
	srv := newTestServer(eng, &fakeWorker{}, &fakeStore{healthy: true})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/breadth", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got engine.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.DeltaRatio != "+2.50:1" || got.Add != 5 || got.TickArrow != "↓" {
		t.Errorf("snapshot = %+v", got)
	}
}

// go test -v --run TestPutWatchlist
func TestPutWatchlist(t *testing.T) {
	eng := &fakeEngine{symbols: []string{"BTCUSDT"}}
	worker := &fakeWorker{}
	store := &fakeStore{healthy: true}
	srv := newTestServer(eng, worker, store)

	body := `{"symbols":[" btcusdt", "SOLUSDT", "btcusdt "]}`
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/watchlist", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	want := []string{"BTCUSDT", "SOLUSDT"}
	if len(store.replaced) != 1 || !reflect.DeepEqual(store.replaced[0], want) {
		t.Errorf("persisted %v, want %v", store.replaced, want)
	}
	if len(worker.applied) != 1 || !reflect.DeepEqual(worker.applied[0], want) {
		t.Errorf("applied %v, want %v", worker.applied, want)
	}
}

// go test -v --run TestPutWatchlistRejectsBadInput
func TestPutWatchlistRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"empty list", `{"symbols":[]}`},
		{"blank symbols only", `{"symbols":["  ",""]}`},
		{"injection-ish symbol", `{"symbols":["BTC;DROP TABLE"]}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			worker := &fakeWorker{}
			store := &fakeStore{healthy: true}
			srv := newTestServer(&fakeEngine{}, worker, store)

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/watchlist", strings.NewReader(tc.body)))

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if len(store.replaced) != 0 || len(worker.applied) != 0 {
				t.Error("rejected input still reached store or worker")
			}
		})
	}
}

// go test -v --run TestPutWatchlistStoreFailure
func TestPutWatchlistStoreFailure(t *testing.T) {
	worker := &fakeWorker{}
	store := &fakeStore{err: errors.New("db down")}
	srv := newTestServer(&fakeEngine{}, worker, store)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/watchlist",
		strings.NewReader(`{"symbols":["BTCUSDT"]}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if len(worker.applied) != 0 {
		t.Error("engine reconfigured although persistence failed")
	}
}

// go test -v --run TestGetWatchlist
func TestGetWatchlist(t *testing.T) {
	eng := &fakeEngine{symbols: []string{"SOLUSDT", "BTCUSDT"}}
	srv := newTestServer(eng, &fakeWorker{}, &fakeStore{healthy: true})

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/watchlist", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got struct {
		Symbols []string `json:"symbols"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got.Symbols, eng.symbols) {
		t.Errorf("symbols = %v", got.Symbols)
	}
}

// go test -v --run TestHealthEndpoint
func TestHealthEndpoint(t *testing.T) {
	cases := []struct {
		name    string
		healthy bool
		want    int
	}{
		{"db reachable", true, http.StatusOK},
		{"db down", false, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(&fakeEngine{}, &fakeWorker{}, &fakeStore{healthy: tc.healthy})

			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
			var got struct {
				DB bool `json:"db"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.DB != tc.healthy {
				t.Errorf("db = %v, want %v", got.DB, tc.healthy)
			}
		})
	}
}

// go test -v --run TestNormalizeSymbols
func TestNormalizeSymbols(t *testing.T) {
	got, err := NormalizeSymbols([]string{"solusdt", " BTCUSDT ", "SOLUSDT", "ethusdt"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"SOLUSDT", "BTCUSDT", "ETHUSDT"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("normalized = %v, want %v", got, want)
	}

	if _, err := NormalizeSymbols(nil); err == nil {
		t.Error("empty input accepted")
	}
	if _, err := NormalizeSymbols([]string{"btc-usdt"}); err == nil {
		t.Error("symbol with punctuation accepted")
	}
}
