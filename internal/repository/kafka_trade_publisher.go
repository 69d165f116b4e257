package repository

import (
	"context"

	"TradeSim/internal/domain/models"
	domrepo "TradeSim/internal/domain/repository"
	pkgkafka "TradeSim/pkg/kafka"
)

// KafkaTradePublisher emits executed trade actions to a Kafka topic, keyed by
// asset so per-asset ordering survives partitioning.
type KafkaTradePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaTradePublisher(producer *pkgkafka.Producer, topic string) domrepo.TradePublisher {
	return &KafkaTradePublisher{producer: producer, topic: topic}
}

func (p *KafkaTradePublisher) Publish(ctx context.Context, t *models.TradeAction) error {
	return p.producer.Publish(ctx, p.topic, []byte(t.Asset), map[string]interface{}{
		"asset":    t.Asset,
		"t":        t.Timestamp,
		"action":   string(t.Action),
		"quantity": t.Quantity,
		"price":    t.Price,
	})
}

func (p *KafkaTradePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
