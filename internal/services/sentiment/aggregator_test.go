package sentiment

import (
	"testing"
	"time"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
)

func TestAggregateBucketsTwoPostsInOneWindow(t *testing.T) {
	posts := []models.Post{
		{Text: "bullish move", CreatedAt: "2024-01-01T00:00:00Z"},
		{Text: "very bad crash", CreatedAt: "2024-01-01T00:03:00Z"},
	}
	scored := NewVaderScorer().Score(posts)
	buckets := Aggregate(scored, 5)
	if len(buckets) != 1 {
		t.Fatalf("expected one bucket, got %d", len(buckets))
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Unix()
	if buckets[0].BucketStart != want {
		t.Fatalf("expected bucket start %d, got %d", want, buckets[0].BucketStart)
	}
	if buckets[0].Count != 2 {
		t.Fatalf("expected count 2, got %d", buckets[0].Count)
	}
}

func TestAggregateBucketAlignmentAndCounts(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 34, 56, 0, time.UTC)
	posts := []models.ScoredPost{
		{Post: models.Post{CreatedAt: "2024-06-01T00:00:30Z"}, Score: 1},
		{Post: models.Post{CreatedAt: float64(now.Unix())}, Score: -1},
		{Post: models.Post{CreatedAt: nil}, Score: 0.5},           // absent -> now
		{Post: models.Post{CreatedAt: "not-a-timestamp"}, Score: 1}, // unresolvable -> skipped
	}
	buckets := aggregateAt(posts, 15, func() time.Time { return now })

	width := int64(15 * 60)
	total := 0
	for _, b := range buckets {
		if b.BucketStart%width != 0 {
			t.Fatalf("bucket %d not aligned to %ds", b.BucketStart, width)
		}
		total += b.Count
	}
	if total != 3 {
		t.Fatalf("expected 3 resolvable posts, got %d", total)
	}
	for i := 1; i < len(buckets); i++ {
		if buckets[i].BucketStart <= buckets[i-1].BucketStart {
			t.Fatalf("buckets not sorted ascending")
		}
	}
}

func TestAggregateMeanScore(t *testing.T) {
	posts := []models.ScoredPost{
		{Post: models.Post{CreatedAt: int64(1000)}, Score: 0.4},
		{Post: models.Post{CreatedAt: int64(1100)}, Score: -0.2},
	}
	buckets := aggregateAt(posts, 30, time.Now)
	if len(buckets) != 1 {
		t.Fatalf("expected one bucket, got %d", len(buckets))
	}
	if got := buckets[0].Sentiment; got < 0.0999 || got > 0.1001 {
		t.Fatalf("expected mean 0.1, got %v", got)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	if got := Aggregate(nil, 5); len(got) != 0 {
		t.Fatalf("expected empty bucket list")
	}
	if got := Signal(nil); got != 0 {
		t.Fatalf("expected neutral signal 0, got %v", got)
	}
}

func TestScorerDirection(t *testing.T) {
	scored := NewVaderScorer().Score([]models.Post{
		{Text: "amazing rally, great gains"},
		{Text: "terrible crash, horrible losses"},
	})
	if scored[0].Score <= 0 {
		t.Fatalf("expected positive score, got %v", scored[0].Score)
	}
	if scored[1].Score >= 0 {
		t.Fatalf("expected negative score, got %v", scored[1].Score)
	}
	for _, s := range scored {
		if s.Score < -1 || s.Score > 1 {
			t.Fatalf("score out of range: %v", s.Score)
		}
	}
}

func TestKeywords(t *testing.T) {
	got := Keywords("BTCUSDT", []string{"bitcoin", "BTC", ""})
	want := []string{"BTCUSDT", "BTC", "bitcoin"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}
