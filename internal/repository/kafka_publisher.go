package repository

import (
	"context"

	"MacroPulse/internal/domain/models"
	"MacroPulse/internal/domain/repository"
	pkgkafka "MacroPulse/pkg/kafka"
)

// KafkaPublisher implements Publisher for Kafka. Events are keyed by
// currency so one currency's updates stay ordered on a partition.
type KafkaPublisher struct {
	producer    *pkgkafka.Producer
	eventsTopic string
	runsTopic   string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, eventsTopic, runsTopic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, eventsTopic: eventsTopic, runsTopic: runsTopic}
}

func (p *KafkaPublisher) PublishEvent(ctx context.Context, e *models.EconomicEvent) error {
	if p.eventsTopic == "" {
		return nil
	}
	return p.producer.Publish(ctx, p.eventsTopic, []byte(e.CurrencyCode), e)
}

func (p *KafkaPublisher) PublishJobRun(ctx context.Context, run *models.JobRun) error {
	if p.runsTopic == "" {
		return nil
	}
	return p.producer.Publish(ctx, p.runsTopic, []byte(run.Job), run)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
