package models

// Candle is one OHLCV record for a fixed interval. Ordered ascending by
// OpenTime and immutable once produced by a market source.
type Candle struct {
	OpenTime  int64   `json:"open_time"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
	CloseTime int64   `json:"close_time"`
}

// StreamCandle is a closed candle from a live multi-symbol stream.
type StreamCandle struct {
	Symbol string `json:"symbol"`
	Candle
}

// Post is a raw social-media post. CreatedAt is whatever the source produced:
// an RFC3339 string, an epoch number, or nil when the source had no timestamp.
type Post struct {
	Text      string `json:"text"`
	CreatedAt any    `json:"created_at"`
}

// ScoredPost is a post annotated with a compound polarity score in [-1, 1].
type ScoredPost struct {
	Post
	Score float64 `json:"score"`
}

// SentimentBucket aggregates scored posts inside one fixed time window.
// BucketStart is epoch seconds, always a multiple of the bucket width.
type SentimentBucket struct {
	BucketStart int64   `json:"bucket"`
	Sentiment   float64 `json:"sentiment"`
	Count       int     `json:"count"`
}
