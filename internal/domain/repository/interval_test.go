package repository

import "testing"

func TestNormalizeInterval(t *testing.T) {
	cases := []struct {
		in   string
		want Interval
	}{
		{"", IV1h},
		{"1m", IV1m},
		{"5m", IV5m},
		{"15m", IV15m},
		{"1h", IV1h},
		{"4h", IV4h},
		{"1d", IV1d},
		{"2h", IV1h},
		{"bogus", IV1h},
	}
	for _, tc := range cases {
		if got := NormalizeInterval(tc.in); got != tc.want {
			t.Fatalf("NormalizeInterval(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestIntervalMinutes(t *testing.T) {
	if m := IntervalMinutes(IV4h); m != 240 {
		t.Fatalf("expected 240 minutes for 4h, got %d", m)
	}
	if m := IntervalMinutes(Interval("3h")); m != 0 {
		t.Fatalf("expected 0 for unsupported interval, got %d", m)
	}
	if IsValidInterval("3h") {
		t.Fatalf("3h should not be valid")
	}
}
