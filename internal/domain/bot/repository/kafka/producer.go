// Package kafka contains Kafka repository implementations
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/Conte777/linkbot/config"
	"github.com/Conte777/linkbot/internal/domain/bot/entities"
)

// AuditProducer publishes audit events to a Kafka topic. Implements deps.AuditSink.
type AuditProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   zerolog.Logger
}

// NewAuditProducer creates a sync producer for the audit topic
func NewAuditProducer(cfg *config.KafkaConfig, logger zerolog.Logger) (*AuditProducer, error) {
	brokers := cfg.Brokers
	if len(brokers) == 0 {
		brokers = []string{"localhost:9093"}
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info().
		Strs("brokers", brokers).
		Str("topic", cfg.AuditTopic).
		Msg("Kafka audit producer initialized successfully")

	return NewAuditProducerWith(producer, cfg.AuditTopic, logger), nil
}

// NewAuditProducerWith wraps an existing sarama producer
func NewAuditProducerWith(producer sarama.SyncProducer, topic string, logger zerolog.Logger) *AuditProducer {
	return &AuditProducer{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Name implements deps.AuditSink
func (p *AuditProducer) Name() string { return "kafka" }

// Publish sends the event keyed by user id so one user's events stay ordered
func (p *AuditProducer) Publish(_ context.Context, event *entities.AuditEvent) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal audit event to JSON: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(event.UserID, 10)),
		Value: sarama.ByteEncoder(jsonData),
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", p.topic).Msg("Failed to send Kafka message")
		return fmt.Errorf("failed to publish audit event: %w", err)
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Str("event_id", event.ID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Audit event published")

	return nil
}

// Close closes the Kafka producer
func (p *AuditProducer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Failed to close Kafka producer")
		return err
	}
	p.logger.Info().Msg("Kafka producer closed successfully")
	return nil
}
