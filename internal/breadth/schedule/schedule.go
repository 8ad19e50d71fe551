// Package schedule provides transition trackers for the collector's two
// time-based side effects: the once-per-day reset and the tick-arrow
// recompute cadence. Both fire exactly once per boundary crossing no
// matter how often (or how irregularly) they are evaluated, unlike a
// modulo-on-instant test.
package schedule

import "time"

// DayTracker detects local calendar-day transitions in a fixed zone.
type DayTracker struct {
	zone             *time.Location
	year, month, day int
}

func NewDayTracker(zone *time.Location, now time.Time) *DayTracker {
	t := &DayTracker{zone: zone}
	t.year, t.month, t.day = date(now, zone)
	return t
}

// Crossed reports whether now falls on a different local calendar day
// than the last observation, and records the new day when it does.
func (t *DayTracker) Crossed(now time.Time) bool {
	y, m, d := date(now, t.zone)
	if y == t.year && m == t.month && d == t.day {
		return false
	}
	t.year, t.month, t.day = y, m, d
	return true
}

func date(now time.Time, zone *time.Location) (int, int, int) {
	y, m, d := now.In(zone).Date()
	return y, int(m), d
}

// BucketTracker detects transitions between fixed wall-clock intervals,
// e.g. the 15-minute tick-arrow cadence.
type BucketTracker struct {
	interval time.Duration
	bucket   int64
}

func NewBucketTracker(interval time.Duration, now time.Time) *BucketTracker {
	return &BucketTracker{
		interval: interval,
		bucket:   now.UnixNano() / int64(interval),
	}
}

// Crossed reports whether now is in a later interval bucket than the
// last observation, and records the new bucket when it is.
func (t *BucketTracker) Crossed(now time.Time) bool {
	bucket := now.UnixNano() / int64(t.interval)
	if bucket == t.bucket {
		return false
	}
	t.bucket = bucket
	return true
}
