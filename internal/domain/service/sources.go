package service

import (
	"context"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
)

// MarketDataSource provides symbol discovery and historical candles.
// The analytic core depends only on this interface, never on a concrete
// HTTP client.
type MarketDataSource interface {
	SearchSymbols(ctx context.Context, query string) ([]string, error)
	GetOHLCV(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
}

// SocialSource fetches recent posts matching a keyword set. Sources without
// credentials return an empty list, not an error.
type SocialSource interface {
	FetchPosts(ctx context.Context, keywords []string, limit int) ([]models.Post, error)
}

// PostScorer maps post text to a compound polarity score in [-1, 1].
type PostScorer interface {
	Score(posts []models.Post) []models.ScoredPost
}
