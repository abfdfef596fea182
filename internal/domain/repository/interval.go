package repository

// Interval is a supported candle interval.
type Interval string

const (
	IV1m  Interval = "1m"
	IV5m  Interval = "5m"
	IV15m Interval = "15m"
	IV1h  Interval = "1h"
	IV4h  Interval = "4h"
	IV1d  Interval = "1d"
)

var intervalMinutes = map[Interval]int{
	IV1m:  1,
	IV5m:  5,
	IV15m: 15,
	IV1h:  60,
	IV4h:  240,
	IV1d:  1440,
}

// IsValidInterval returns true if iv is a supported interval.
func IsValidInterval(iv Interval) bool {
	_, ok := intervalMinutes[iv]
	return ok
}

// IntervalMinutes returns the width of iv in minutes, or 0 for an
// unsupported interval.
func IntervalMinutes(iv Interval) int {
	return intervalMinutes[iv]
}

// DefaultInterval returns the default candle interval.
func DefaultInterval() Interval { return IV1h }

// NormalizeInterval converts a raw string to a valid interval (or default).
func NormalizeInterval(s string) Interval {
	if s == "" {
		return DefaultInterval()
	}
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}
