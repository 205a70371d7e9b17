package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"voice-bridge/internal/observability"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const producerName = "voice-bridge"

// messageWriter is the part of kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes call lifecycle events to a single topic
type Producer struct {
	writer messageWriter
	topic  string
	logger *observability.Logger
	now    func() time.Time
}

// ProducerConfig holds configuration for the Kafka producer
type ProducerConfig struct {
	Brokers []string
	Topic   string
	// Compression can be: none, gzip, snappy, lz4, zstd
	Compression string
	// BatchTimeout is the max time to wait before sending a batch
	BatchTimeout time.Duration
	// RequiredAcks determines the durability guarantee
	// -1 = all replicas must acknowledge
	//  1 = only leader must acknowledge
	RequiredAcks int
}

// NewProducer creates a new Kafka producer
func NewProducer(config ProducerConfig, logger *observability.Logger) *Producer {
	compression := kafka.Compression(0)
	switch config.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "snappy":
		compression = kafka.Snappy
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	}

	batchTimeout := config.BatchTimeout
	if batchTimeout == 0 {
		batchTimeout = 10 * time.Millisecond
	}

	requiredAcks := config.RequiredAcks
	if requiredAcks == 0 {
		requiredAcks = -1
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{}, // events of one call stay ordered on one partition
		Compression:  compression,
		BatchTimeout: batchTimeout,
		RequiredAcks: kafka.RequiredAcks(requiredAcks),
	}

	return newProducer(writer, config.Topic, logger)
}

func newProducer(w messageWriter, topic string, logger *observability.Logger) *Producer {
	return &Producer{writer: w, topic: topic, logger: logger, now: time.Now}
}

// Publish sends one lifecycle event keyed by its session id.
func (p *Producer) Publish(ctx context.Context, event CallEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}

	now := p.now()
	msg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: value,
		Time:  now,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "message_id", Value: []byte(uuid.New().String())},
			{Key: "produced_at", Value: []byte(now.Format(time.RFC3339))},
			{Key: "producer", Value: []byte(producerName)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write %s event to topic %s: %w", event.Type, p.topic, err)
	}

	p.logger.Debug(ctx, fmt.Sprintf("produced %s event to topic %s", event.Type, p.topic))
	return nil
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
