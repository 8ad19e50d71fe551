package engine

import (
	"context"
	"testing"
	"time"
)

// go test -v --run TestFormatDeltaRatio
func TestFormatDeltaRatio(t *testing.T) {
	cases := []struct {
		name      string
		buy, sell float64
		want      string
	}{
		{"buy weighted", 30, 10, "+3.00:1"},
		{"sell weighted", 10, 20, "-0.50:1"},
		{"tie reads sell weighted", 10, 10, "-1.00:1"},
		{"zero sell side uses raw buy volume", 12.5, 0, "+12.50:1"},
		{"nothing traded", 0, 0, "-0.00:1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatDeltaRatio(tc.buy, tc.sell); got != tc.want {
				t.Errorf("formatDeltaRatio(%v, %v) = %q, want %q", tc.buy, tc.sell, got, tc.want)
			}
		})
	}
}

// go test -v --run TestSnapshotDeltaColor
func TestSnapshotDeltaColor(t *testing.T) {
	e, _ := newTestEngine(t, []string{"REF", "OTH"}, map[string]float64{"REF": 100, "OTH": 10})

	// No trade seen yet: reference price 0 is not above its close.
	if snap := e.Snapshot(time.Now(), time.UTC); snap.DeltaColor != "red" {
		t.Errorf("delta color = %q, want red before any trade", snap.DeltaColor)
	}

	e.ApplyTrade(TradeEvent{Symbol: "REF", Price: 101, Quantity: 1})
	if snap := e.Snapshot(time.Now(), time.UTC); snap.DeltaColor != "green" {
		t.Errorf("delta color = %q, want green above prev close", snap.DeltaColor)
	}

	// Only the first configured symbol drives the color.
	e.ApplyTrade(TradeEvent{Symbol: "OTH", Price: 5, Quantity: 1, SellerInitiated: true})
	if snap := e.Snapshot(time.Now(), time.UTC); snap.DeltaColor != "green" {
		t.Errorf("delta color = %q, want green; non-reference symbol must not matter", snap.DeltaColor)
	}

	e.ApplyTrade(TradeEvent{Symbol: "REF", Price: 100, Quantity: 1})
	if snap := e.Snapshot(time.Now(), time.UTC); snap.DeltaColor != "red" {
		t.Errorf("delta color = %q, want red at prev close", snap.DeltaColor)
	}
}

// go test -v --run TestSnapshotTimeZone
func TestSnapshotTimeZone(t *testing.T) {
	e, _ := newTestEngine(t, []string{"A"}, map[string]float64{"A": 1})

	lagos, err := time.LoadLocation("Africa/Lagos")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}

	// 2024-03-01 23:30 UTC is already March 2nd, 00:30 in Lagos (UTC+1).
	now := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	snap := e.Snapshot(now, lagos)
	if snap.Time != "2024-03-02 00:30:00" {
		t.Errorf("snapshot time = %q, want display-zone rendering", snap.Time)
	}
}

// go test -v --run TestSnapshotDegenerateEmptyBasket
func TestSnapshotDegenerateEmptyBasket(t *testing.T) {
	e, _ := newTestEngine(t, nil, nil)

	snap := e.Snapshot(time.Now(), time.UTC)
	if snap.DeltaRatio != "-0.00:1" || snap.DeltaColor != "red" {
		t.Errorf("empty basket snapshot = %+v", snap)
	}

	// And it can still be reconfigured into a live basket.
	e.Reconfigure(context.Background(), []string{"A"})
	if got := e.Symbols(); len(got) != 1 || got[0] != "A" {
		t.Errorf("symbols after reconfigure = %v", got)
	}
}
