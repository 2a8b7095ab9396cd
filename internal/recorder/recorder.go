package recorder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/storefront/pkg/models"
)

// Sink is an append-only interaction log.
type Sink interface {
	Append(ctx context.Context, event models.InteractionEvent) error
}

// Interface is what callers reacting to a state transition depend on.
type Interface interface {
	Record(ctx context.Context, user models.UserIdentity, productID int64, interactionType models.InteractionType) error
}

// Error is a non-fatal failure to record an interaction.
type Error struct {
	User      models.UserIdentity
	ProductID int64
	Type      models.InteractionType
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("failed to record %s interaction for user %s on product %d: %v",
		e.Type, e.User, e.ProductID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var ErrUnknownInteractionType = errors.New("unknown interaction type")

// Recorder turns (user, product, type) triples into events and appends them to a sink.
// Anonymous users are never recorded. Each call appends at most once and never retries.
type Recorder struct {
	sink   Sink
	logger *logrus.Logger
	now    func() time.Time
}

func New(sink Sink, logger *logrus.Logger) *Recorder {
	return &Recorder{
		sink:   sink,
		logger: logger,
		now:    time.Now,
	}
}

func (r *Recorder) Record(ctx context.Context, user models.UserIdentity, productID int64, interactionType models.InteractionType) error {
	event, ok, err := r.newEvent(user, productID, interactionType)
	if !ok {
		return err
	}
	return r.append(ctx, event)
}

// newEvent stamps an event with the recorder's clock. ok is false when nothing should be
// recorded, either because the user is anonymous or because err is set.
func (r *Recorder) newEvent(user models.UserIdentity, productID int64, interactionType models.InteractionType) (models.InteractionEvent, bool, error) {
	if !user.IsKnown() {
		return models.InteractionEvent{}, false, nil
	}
	if !interactionType.Valid() {
		return models.InteractionEvent{}, false, &Error{User: user, ProductID: productID, Type: interactionType, Err: ErrUnknownInteractionType}
	}
	return models.NewInteractionEvent(user, productID, interactionType, r.now()), true, nil
}

func (r *Recorder) append(ctx context.Context, event models.InteractionEvent) error {
	if err := r.sink.Append(ctx, event); err != nil {
		return &Error{User: models.UserIdentity(event.UserID), ProductID: event.ProductID, Type: event.InteractionType, Err: err}
	}

	r.logger.WithFields(logrus.Fields{
		"event_id":         event.ID,
		"user_id":          event.UserID,
		"product_id":       event.ProductID,
		"interaction_type": event.InteractionType,
	}).Debug("Recorded interaction")

	return nil
}
