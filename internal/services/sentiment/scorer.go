package sentiment

import (
	"github.com/jonreiter/govader"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	domsvc "github.com/katheedev/crypto-sentiment/internal/domain/service"
)

// VaderScorer scores post text with the VADER lexicon. The compound score is
// already normalized to [-1, 1].
type VaderScorer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderScorer() *VaderScorer {
	return &VaderScorer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (s *VaderScorer) Score(posts []models.Post) []models.ScoredPost {
	scored := make([]models.ScoredPost, 0, len(posts))
	for _, p := range posts {
		c := s.analyzer.PolarityScores(p.Text).Compound
		scored = append(scored, models.ScoredPost{Post: p, Score: c})
	}
	return scored
}

var _ domsvc.PostScorer = (*VaderScorer)(nil)
