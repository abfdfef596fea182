package model

import (
	"bytes"
	"sync"
	"testing"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
)

// memStore is an in-memory ModelStore for tests.
type memStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func newMemStore() *memStore { return &memStore{m: make(map[string][]byte)} }

func (s *memStore) Save(symbol string, iv domrepo.Interval, artifact []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[symbol+"_"+string(iv)] = artifact
	return nil
}

func (s *memStore) Load(symbol string, iv domrepo.Interval) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.m[symbol+"_"+string(iv)]
	return b, ok, nil
}

// trendFrame builds a frame where rising closes coincide with positive
// returns so the forest has signal to pick up.
func trendFrame(n int) []models.IndicatorRow {
	rows := make([]models.IndicatorRow, n)
	price := 100.0
	for i := range rows {
		delta := 1.0
		if i%3 == 2 {
			delta = -0.5
		}
		price += delta
		rows[i].Close = price
		rows[i].Returns = delta / price
		rows[i].RSI = 50 + 10*delta
		rows[i].MACD = delta
		rows[i].Volatility = 0.01
	}
	return rows
}

func TestTrainDropsUnlabeledRows(t *testing.T) {
	p := NewPipeline(newMemStore(), ForestConfig{NumTrees: 5, MaxDepth: 4, Seed: 42})
	frame := trendFrame(50)
	report, err := p.Train(frame, "BTCUSDT", domrepo.IV1h, 3)
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if report.Rows != 47 {
		t.Fatalf("expected 47 labeled rows, got %d", report.Rows)
	}
	if len(report.Features) != 9 {
		t.Fatalf("expected 9 features, got %d", len(report.Features))
	}
}

func TestTrainTooShortErrors(t *testing.T) {
	p := NewPipeline(newMemStore(), ForestConfig{NumTrees: 3, MaxDepth: 3, Seed: 42})
	if _, err := p.Train(trendFrame(2), "BTCUSDT", domrepo.IV1h, 5); err == nil {
		t.Fatalf("expected error for frame shorter than horizon")
	}
}

func TestTrainIsDeterministic(t *testing.T) {
	frame := trendFrame(60)
	s1, s2 := newMemStore(), newMemStore()
	cfg := ForestConfig{NumTrees: 10, MaxDepth: 5, Seed: 42}

	if _, err := NewPipeline(s1, cfg).Train(frame, "ETHUSDT", domrepo.IV1h, 1); err != nil {
		t.Fatalf("train 1: %v", err)
	}
	if _, err := NewPipeline(s2, cfg).Train(frame, "ETHUSDT", domrepo.IV1h, 1); err != nil {
		t.Fatalf("train 2: %v", err)
	}
	b1, _, _ := s1.Load("ETHUSDT", domrepo.IV1h)
	b2, _, _ := s2.Load("ETHUSDT", domrepo.IV1h)
	if !bytes.Equal(b1, b2) {
		t.Fatalf("expected identical artifacts from identical inputs")
	}
}

func TestPredictLazyBootstrap(t *testing.T) {
	store := newMemStore()
	p := NewPipeline(store, ForestConfig{NumTrees: 10, MaxDepth: 5, Seed: 42})
	frame := trendFrame(60)

	pred, err := p.Predict(frame, "BTCUSDT", domrepo.IV1h, 1)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}
	if pred.Direction != "up" && pred.Direction != "down" {
		t.Fatalf("unexpected direction %q", pred.Direction)
	}
	if pred.Confidence < 0.5 || pred.Confidence > 1 {
		t.Fatalf("confidence outside [0.5,1]: %v", pred.Confidence)
	}
	if len(pred.TopFeatures) == 0 || len(pred.TopFeatures) > 5 {
		t.Fatalf("expected up to 5 top features, got %d", len(pred.TopFeatures))
	}
	if _, ok, _ := store.Load("BTCUSDT", domrepo.IV1h); !ok {
		t.Fatalf("expected bootstrap training to persist an artifact")
	}
	for i := 1; i < len(pred.TopFeatures); i++ {
		if pred.TopFeatures[i].Importance > pred.TopFeatures[i-1].Importance {
			t.Fatalf("top features not sorted by importance")
		}
	}
}

func TestPredictEmptyFrameErrors(t *testing.T) {
	p := NewPipeline(newMemStore(), ForestConfig{NumTrees: 3, MaxDepth: 3, Seed: 42})
	if _, err := p.Predict(nil, "BTCUSDT", domrepo.IV1h, 1); err == nil {
		t.Fatalf("expected error for empty frame")
	}
}

func TestForestSeparatesObviousClasses(t *testing.T) {
	// Label is 1 exactly when the first feature is positive.
	var x [][]float64
	var y []int
	for i := 0; i < 40; i++ {
		v := float64(i%2)*2 - 1 // -1 or +1
		row := make([]float64, 9)
		row[0] = v
		x = append(x, row)
		if v > 0 {
			y = append(y, 1)
		} else {
			y = append(y, 0)
		}
	}
	f := FitForest(x, y, ForestConfig{NumTrees: 20, MaxDepth: 4, Seed: 42})

	up := make([]float64, 9)
	up[0] = 1
	down := make([]float64, 9)
	down[0] = -1
	if f.PredictProba(up) < 0.9 {
		t.Fatalf("expected high up probability, got %v", f.PredictProba(up))
	}
	if f.PredictProba(down) > 0.1 {
		t.Fatalf("expected low up probability, got %v", f.PredictProba(down))
	}
	if f.Importances[0] < 0.9 {
		t.Fatalf("expected feature 0 to dominate importance, got %v", f.Importances[0])
	}
}
