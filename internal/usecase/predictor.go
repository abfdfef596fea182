package usecase

import (
	"context"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
	"github.com/katheedev/crypto-sentiment/internal/services/model"
	applogger "github.com/katheedev/crypto-sentiment/pkg/logger"
	"github.com/katheedev/crypto-sentiment/pkg/queue"
)

// TrainMessageType routes queued training jobs.
const TrainMessageType = "model.train"

// Predictor trains and evaluates the direction classifier on top of the
// analyzer's feature frames.
type Predictor struct {
	analyzer *Analyzer
	store    domrepo.ModelStore
	jobs     queue.QueueService // optional, enables async training
	l        *applogger.Logger
}

func NewPredictor(analyzer *Analyzer, store domrepo.ModelStore, jobs queue.QueueService, l *applogger.Logger) *Predictor {
	return &Predictor{analyzer: analyzer, store: store, jobs: jobs, l: l}
}

// Train fits and persists a model for (symbol, interval).
func (p *Predictor) Train(ctx context.Context, req models.TrainRequest) (*models.TrainReport, error) {
	iv := domrepo.NormalizeInterval(req.Interval)
	limit := req.Limit
	if limit <= 0 {
		limit = 500
	}

	frame, settings, err := p.analyzer.Frame(ctx, req.Symbol, iv, limit)
	if err != nil {
		return nil, err
	}

	pipeline := p.pipeline(settings)
	report, err := pipeline.Train(frame, req.Symbol, iv, settings.Model.Horizon)
	if err != nil {
		return nil, err
	}

	p.l.Info("model trained",
		applogger.String("symbol", req.Symbol),
		applogger.String("interval", string(iv)),
		applogger.Int("rows", report.Rows),
	)
	return &report, nil
}

// EnqueueTrain schedules training on the job queue. Returns false when no
// queue is configured; the caller should fall back to synchronous Train.
func (p *Predictor) EnqueueTrain(ctx context.Context, req models.TrainRequest) (bool, error) {
	if p.jobs == nil {
		return false, nil
	}
	if err := p.jobs.PublishMessage(ctx, TrainMessageType, req); err != nil {
		return false, err
	}
	return true, nil
}

// Predict evaluates the stored model on the latest bar, bootstrapping a model
// when none exists yet.
func (p *Predictor) Predict(ctx context.Context, req models.PredictRequest) (*models.Prediction, error) {
	iv := domrepo.NormalizeInterval(req.Interval)

	frame, settings, err := p.analyzer.Frame(ctx, req.Symbol, iv, 500)
	if err != nil {
		return nil, err
	}

	pipeline := p.pipeline(settings)
	pred, err := pipeline.Predict(frame, req.Symbol, iv, settings.Model.Horizon)
	if err != nil {
		return nil, err
	}
	return &pred, nil
}

func (p *Predictor) pipeline(settings Settings) *model.Pipeline {
	return model.NewPipeline(p.store, model.ForestConfig{
		NumTrees: settings.Model.NumTrees,
		MaxDepth: settings.Model.MaxDepth,
		Seed:     settings.Model.Seed,
	})
}
