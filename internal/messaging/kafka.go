package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storefront/internal/config"
	"github.com/temcen/storefront/pkg/models"
)

const (
	DefaultInteractionsTopic = "user-interactions"
	EventSource              = "storefront"
)

// InteractionMessage is the payload published for every recorded interaction.
type InteractionMessage struct {
	Event     models.InteractionEvent `json:"event"`
	Source    string                  `json:"source"`
	Published time.Time               `json:"published_at"`
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// InteractionPublisher streams interaction events to Kafka, keyed by user so one user's
// events land on one partition.
type InteractionPublisher struct {
	writer MessageWriter
	topic  string
	logger *logrus.Logger
}

func NewInteractionPublisher(cfg *config.Config, logger *logrus.Logger) *InteractionPublisher {
	topic := cfg.Kafka.Topics.UserInteractions
	if topic == "" {
		topic = DefaultInteractionsTopic
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Kafka.Brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		Async:        false,
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	return NewInteractionPublisherWithWriter(writer, topic, logger)
}

func NewInteractionPublisherWithWriter(writer MessageWriter, topic string, logger *logrus.Logger) *InteractionPublisher {
	return &InteractionPublisher{
		writer: writer,
		topic:  topic,
		logger: logger,
	}
}

// BuildMessage encodes an event as a Kafka message.
func BuildMessage(event models.InteractionEvent, now time.Time) (kafka.Message, error) {
	payload := InteractionMessage{
		Event:     event,
		Source:    EventSource,
		Published: models.EventTimestamp(now),
	}

	value, err := json.Marshal(payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to marshal message: %w", err)
	}

	userKey := strconv.FormatInt(event.UserID, 10)
	return kafka.Message{
		Key:   []byte(userKey),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.ID.String())},
			{Key: "interaction_type", Value: []byte(event.InteractionType)},
			{Key: "timestamp", Value: []byte(event.Timestamp.Format(time.RFC3339))},
		},
	}, nil
}

// Append publishes one event. It satisfies the recorder sink contract.
func (p *InteractionPublisher) Append(ctx context.Context, event models.InteractionEvent) error {
	message, err := BuildMessage(event, time.Now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		p.logger.WithError(err).WithField("event_id", event.ID).Error("Failed to publish interaction to Kafka")
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.logger.WithFields(logrus.Fields{
		"event_id":         event.ID,
		"interaction_type": event.InteractionType,
		"topic":            p.topic,
	}).Debug("Interaction published to Kafka")

	return nil
}

func (p *InteractionPublisher) Close() error {
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	return nil
}
