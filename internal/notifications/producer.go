package notifications

import (
	"context"
	"fmt"
	"time"

	"busline/internal/shared/config"
	"busline/pkg/logger"

	"github.com/IBM/sarama"
)

// Publisher emits booking lifecycle events. Publishing never fails the
// caller's flow; errors are logged.
type Publisher interface {
	Publish(ctx context.Context, event Event)
	Close() error
}

// KafkaPublisher writes events to one topic with a sarama SyncProducer
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewPublisher returns a Kafka publisher, or a no-op one when publishing
// is disabled
func NewPublisher(cfg config.KafkaConfig) (Publisher, error) {
	if !cfg.Enabled {
		return NoopPublisher{}, nil
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Timeout = 10 * time.Second
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	// same owner, same partition
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.GetDefault().Info("Kafka booking event publisher created", "topic", cfg.Topic)
	return NewKafkaPublisher(producer, cfg.Topic), nil
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	if err := p.send(event); err != nil {
		logger.GetDefault().ErrorWithContext(ctx, "Failed to publish booking event", err, map[string]interface{}{
			"event_type": string(event.Type),
			"owner_id":   event.OwnerID,
		})
	}
}

func (p *KafkaPublisher) send(event Event) error {
	payload, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.PartitionKey()),
		Value:     sarama.ByteEncoder(payload),
		Headers:   createHeaders(event),
		Timestamp: event.OccurredAt,
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send event to Kafka: %w", err)
	}

	logger.GetDefault().Debug("Booking event published",
		"type", string(event.Type),
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
	)
	return nil
}

func createHeaders(event Event) []sarama.RecordHeader {
	headers := []sarama.RecordHeader{
		{Key: []byte("event_id"), Value: []byte(event.ID.String())},
		{Key: []byte("event_type"), Value: []byte(event.Type)},
		{Key: []byte("owner_id"), Value: []byte(event.OwnerID)},
		{Key: []byte("producer"), Value: []byte("busline-gateway")},
		{Key: []byte("occurred_at"), Value: []byte(event.OccurredAt.Format(time.RFC3339))},
	}
	if event.BookingID != "" {
		headers = append(headers, sarama.RecordHeader{Key: []byte("booking_id"), Value: []byte(event.BookingID)})
	}
	if event.PaymentIntentID != "" {
		headers = append(headers, sarama.RecordHeader{Key: []byte("payment_intent_id"), Value: []byte(event.PaymentIntentID)})
	}
	return headers
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka producer: %w", err)
	}
	return nil
}

// NoopPublisher drops every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) {}

func (NoopPublisher) Close() error { return nil }
