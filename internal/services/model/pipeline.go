package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
)

// Artifact is the persisted form of a trained classifier.
type Artifact struct {
	Symbol   string   `json:"symbol"`
	Interval string   `json:"interval"`
	Features []string `json:"features"`
	Horizon  int      `json:"horizon"`
	Forest   *Forest  `json:"forest"`
}

// Pipeline trains and evaluates the next-bar direction classifier. Loading
// and saving artifacts goes through the store at explicit boundaries; no I/O
// hides inside the math.
type Pipeline struct {
	store domrepo.ModelStore
	cfg   ForestConfig
}

func NewPipeline(store domrepo.ModelStore, cfg ForestConfig) *Pipeline {
	return &Pipeline{store: store, cfg: cfg}
}

// Train labels each row 1 when the close shifted forward by horizon bars
// exceeds the current close, drops the final horizon rows that lack a future
// label, fits the forest, and persists the artifact keyed by
// (symbol, interval).
func (p *Pipeline) Train(frame []models.IndicatorRow, symbol string, iv domrepo.Interval, horizon int) (models.TrainReport, error) {
	if horizon <= 0 {
		return models.TrainReport{}, fmt.Errorf("train: horizon must be positive, got %d", horizon)
	}
	if len(frame) <= horizon {
		return models.TrainReport{}, fmt.Errorf("train: need more than %d rows, got %d", horizon, len(frame))
	}

	n := len(frame) - horizon
	x := make([][]float64, 0, n)
	y := make([]int, 0, n)
	for i := 0; i < n; i++ {
		x = append(x, Vector(frame[i]))
		label := 0
		if frame[i+horizon].Close > frame[i].Close {
			label = 1
		}
		y = append(y, label)
	}

	forest := FitForest(x, y, p.cfg)
	artifact := Artifact{
		Symbol:   symbol,
		Interval: string(iv),
		Features: FeatureColumns,
		Horizon:  horizon,
		Forest:   forest,
	}
	b, err := json.Marshal(artifact)
	if err != nil {
		return models.TrainReport{}, fmt.Errorf("marshal artifact: %w", err)
	}
	if err := p.store.Save(symbol, iv, b); err != nil {
		return models.TrainReport{}, fmt.Errorf("save artifact: %w", err)
	}
	return models.TrainReport{Rows: n, Features: FeatureColumns}, nil
}

// Predict evaluates the persisted model on the latest feature row. A missing
// artifact triggers a lazy bootstrap train on the given frame rather than a
// not-found error.
func (p *Pipeline) Predict(frame []models.IndicatorRow, symbol string, iv domrepo.Interval, horizon int) (models.Prediction, error) {
	if len(frame) == 0 {
		return models.Prediction{}, fmt.Errorf("predict: empty indicator frame")
	}

	b, ok, err := p.store.Load(symbol, iv)
	if err != nil {
		return models.Prediction{}, fmt.Errorf("load artifact: %w", err)
	}
	if !ok {
		if _, err := p.Train(frame, symbol, iv, horizon); err != nil {
			return models.Prediction{}, fmt.Errorf("bootstrap train: %w", err)
		}
		b, ok, err = p.store.Load(symbol, iv)
		if err != nil || !ok {
			return models.Prediction{}, fmt.Errorf("load artifact after bootstrap: %w", err)
		}
	}

	var artifact Artifact
	if err := json.Unmarshal(b, &artifact); err != nil {
		return models.Prediction{}, fmt.Errorf("decode artifact: %w", err)
	}
	if artifact.Forest == nil {
		return models.Prediction{}, fmt.Errorf("artifact for %s/%s has no forest", symbol, iv)
	}

	probUp := artifact.Forest.PredictProba(Vector(frame[len(frame)-1]))
	direction := "down"
	confidence := 1 - probUp
	if probUp >= 0.5 {
		direction = "up"
		confidence = probUp
	}

	return models.Prediction{
		Direction:   direction,
		Confidence:  confidence,
		TopFeatures: topFeatures(artifact.Forest.Importances, 5),
	}, nil
}

// topFeatures ranks features by global importance and keeps the first k.
func topFeatures(importances []float64, k int) []models.FeatureImportance {
	ranked := make([]models.FeatureImportance, 0, len(importances))
	for i, v := range importances {
		if i >= len(FeatureColumns) {
			break
		}
		ranked = append(ranked, models.FeatureImportance{Feature: FeatureColumns[i], Importance: v})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Importance > ranked[j].Importance })
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
