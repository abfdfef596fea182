package repository

import (
	"context"

	domrepo "github.com/katheedev/crypto-sentiment/internal/domain/repository"
	pkgkafka "github.com/katheedev/crypto-sentiment/pkg/kafka"
)

// KafkaRunPublisher emits analysis run events keyed by symbol so consumers
// see per-symbol ordering.
type KafkaRunPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaRunPublisher(producer *pkgkafka.Producer, topic string) *KafkaRunPublisher {
	return &KafkaRunPublisher{producer: producer, topic: topic}
}

func (p *KafkaRunPublisher) PublishRun(ctx context.Context, run domrepo.Run) error {
	return p.producer.Publish(ctx, p.topic, []byte(run.Symbol), map[string]interface{}{
		"symbol":   run.Symbol,
		"interval": run.Interval,
		"summary":  run.Summary,
		"at":       run.CreatedAt.Unix(),
	})
}

func (p *KafkaRunPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ domrepo.RunPublisher = (*KafkaRunPublisher)(nil)
