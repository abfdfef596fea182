package usecase

import (
	"context"
	"fmt"

	"github.com/katheedev/crypto-sentiment/internal/domain/models"
	"github.com/katheedev/crypto-sentiment/pkg/queue"
)

// TrainJob consumes queued training requests.
type TrainJob struct {
	predictor *Predictor
}

func NewTrainJob(predictor *Predictor) *TrainJob {
	return &TrainJob{predictor: predictor}
}

func (j *TrainJob) Name() string { return "train-model" }

func (j *TrainJob) Type() string { return TrainMessageType }

func (j *TrainJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[models.TrainRequest](payload)
	if err != nil {
		return fmt.Errorf("parse train payload: %w", err)
	}
	if _, err := j.predictor.Train(ctx, *req); err != nil {
		return fmt.Errorf("train %s/%s: %w", req.Symbol, req.Interval, err)
	}
	return nil
}

var _ queue.Job = (*TrainJob)(nil)
