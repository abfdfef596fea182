package sentiment

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	"github.com/katheedev/crypto-sentiment/pkg/util"
)

// Aggregate buckets scored posts into fixed windows of intervalMinutes.
// Bucket starts are left-aligned epoch floors; only non-empty buckets are
// emitted, sorted ascending. Callers must treat gaps as "no data", not zero
// sentiment. Posts whose timestamp cannot be resolved are skipped.
func Aggregate(posts []models.ScoredPost, intervalMinutes int) []models.SentimentBucket {
	return aggregateAt(posts, intervalMinutes, time.Now)
}

func aggregateAt(posts []models.ScoredPost, intervalMinutes int, now func() time.Time) []models.SentimentBucket {
	if intervalMinutes <= 0 || len(posts) == 0 {
		return nil
	}
	width := int64(intervalMinutes) * 60

	sums := make(map[int64]float64)
	counts := make(map[int64]int)
	for _, p := range posts {
		epoch, ok := resolveEpoch(p.CreatedAt, now)
		if !ok {
			continue
		}
		bucket := epoch - mod(epoch, width)
		sums[bucket] += p.Score
		counts[bucket]++
	}

	out := make([]models.SentimentBucket, 0, len(counts))
	for b, c := range counts {
		out = append(out, models.SentimentBucket{
			BucketStart: b,
			Sentiment:   sums[b] / float64(c),
			Count:       c,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BucketStart < out[j].BucketStart })
	return out
}

// resolveEpoch turns a post timestamp into epoch seconds: RFC3339 strings
// parse as UTC, numbers are used as-is, and a missing timestamp means now.
func resolveEpoch(v any, now func() time.Time) (int64, bool) {
	switch ts := v.(type) {
	case nil:
		return now().UTC().Unix(), true
	case string:
		if t, ok := util.ParseTime(ts); ok {
			return t.UTC().Unix(), true
		}
		return 0, false
	case float64:
		return int64(ts), true
	case int64:
		return ts, true
	case int:
		return int64(ts), true
	case json.Number:
		if f, err := ts.Float64(); err == nil {
			return int64(f), true
		}
		return 0, false
	default:
		return 0, false
	}
}

// mod is a floor modulus that stays non-negative for pre-epoch timestamps.
func mod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// Signal is the scalar sentiment signal: the mean across all buckets, or 0
// when there are none. Substituting the neutral default is the caller's job,
// not the aggregator's; this helper lives here for the compositor's use.
func Signal(buckets []models.SentimentBucket) float64 {
	if len(buckets) == 0 {
		return 0
	}
	var sum float64
	for _, b := range buckets {
		sum += b.Sentiment
	}
	return sum / float64(len(buckets))
}
