package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/storefront/pkg/models"
)

// NamedSink pairs a sink with the name used in logs and error messages.
type NamedSink struct {
	Name string
	Sink Sink
}

// MultiSink appends each event once to every sink and joins their failures.
type MultiSink struct {
	sinks []NamedSink
}

func NewMultiSink(sinks ...NamedSink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) Append(ctx context.Context, event models.InteractionEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Sink.Append(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s sink: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Len() int {
	return len(m.sinks)
}

// LogSink writes events as structured log lines.
type LogSink struct {
	logger *logrus.Logger
}

func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Append(_ context.Context, event models.InteractionEvent) error {
	s.logger.WithFields(logrus.Fields{
		"event_id":              event.ID,
		"interaction_timestamp": event.Timestamp.Format(time.RFC3339),
		"interaction_type":      event.InteractionType,
		"product_id":            event.ProductID,
		"user_id":               event.UserID,
	}).Info("User interaction")
	return nil
}
