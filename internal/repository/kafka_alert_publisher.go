package repository

import (
	"context"

	"CryptoHunter/internal/domain/models"
	"CryptoHunter/internal/domain/repository"
	pkgkafka "CryptoHunter/pkg/kafka"
)

// KafkaAlertPublisher implements AlertPublisher for Kafka, so downstream
// consumers (archival, dashboards) get every emitted alert as an event.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertPublisher creates a Kafka alert publisher.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) repository.AlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) Publish(ctx context.Context, a *models.Alert) error {
	return p.producer.Publish(ctx, p.topic, []byte(a.Symbol), a)
}

func (p *KafkaAlertPublisher) PublishBatch(ctx context.Context, alerts []*models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(alerts))
	for i, a := range alerts {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(a.Symbol),
			Value: a,
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
