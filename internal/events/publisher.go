// Package events streams transcript entries to Kafka.
package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/leonardotrapani/captrans/internal/logging"
	"github.com/leonardotrapani/captrans/internal/metrics"
	"github.com/leonardotrapani/captrans/internal/transcript"
)

// Config holds Kafka publisher configuration.
type Config struct {
	Enabled   bool
	Brokers   []string
	Topic     string
	Principal string
}

// TranscriptEvent is the message value published for each logged entry.
type TranscriptEvent struct {
	SessionID string `json:"session_id"`
	transcript.Entry
	Engine string `json:"engine,omitempty"`
}

// Publisher publishes transcript events. When Kafka is disabled it only logs.
type Publisher struct {
	writer    *kafka.Writer
	topic     string
	principal string
	enabled   bool
	metrics   *metrics.Metrics
	logger    zerolog.Logger
}

func New(cfg *Config) *Publisher {
	logger := logging.WithComponent("events")
	m := metrics.DefaultMetrics

	if cfg == nil {
		logger.Info().Msg("Kafka disabled (nil config), using log-only mode")
		return &Publisher{metrics: m, logger: logger}
	}

	if !cfg.Enabled || len(cfg.Brokers) == 0 {
		logger.Info().Msg("Kafka disabled, using log-only mode")
		return &Publisher{
			topic:     cfg.Topic,
			principal: cfg.Principal,
			metrics:   m,
			logger:    logger,
		}
	}

	dialer := &kafka.Dialer{
		Timeout:   10 * time.Second,
		DualStack: true,
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
		Transport:    &kafka.Transport{Dial: dialer.DialFunc},
	}

	logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("principal", cfg.Principal).
		Msg("Kafka publisher initialized")

	return &Publisher{
		writer:    writer,
		topic:     cfg.Topic,
		principal: cfg.Principal,
		enabled:   true,
		metrics:   m,
		logger:    logger,
	}
}

// Enabled reports whether events go to Kafka.
func (p *Publisher) Enabled() bool {
	return p.enabled
}

// Publish sends one event keyed by session so a session's entries stay
// ordered within a partition.
func (p *Publisher) Publish(ctx context.Context, event TranscriptEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Str("topic", p.topic).Msg("Failed to marshal event")
		return err
	}

	p.logger.Debug().
		Str("topic", p.topic).
		Str("session", event.SessionID).
		Int("entry", event.EntryID).
		RawJSON("payload", payload).
		Msg("Publishing event")

	if !p.enabled || p.writer == nil {
		return nil
	}

	msg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "eventType", Value: []byte("transcript.entry")},
			{Key: "principal", Value: []byte(p.principal)},
			{Key: "windowId", Value: []byte(strconv.Itoa(event.WindowID))},
		},
	}

	err = p.writer.WriteMessages(ctx, msg)
	p.metrics.RecordKafkaPublish(p.topic, err)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("topic", p.topic).
			Int("entry", event.EntryID).
			Msg("Failed to write to Kafka")
		return err
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	if err := p.writer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Error closing Kafka writer")
		return err
	}
	return nil
}
