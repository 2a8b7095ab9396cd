package recorder

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/temcen/storefront/pkg/models"
)

var (
	ErrQueueFull = errors.New("interaction queue full")
	ErrStopped   = errors.New("interaction recorder stopped")
)

// AsyncRecorder hands interactions to a background worker so the caller never waits on
// the sink. Events are stamped when Record is called, not when they reach the sink.
// A full queue drops the interaction.
type AsyncRecorder struct {
	recorder *Recorder
	logger   *logrus.Logger
	queue    chan models.InteractionEvent
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once

	// mu orders enqueues against Stop so nothing is queued after the final drain.
	mu      sync.RWMutex
	stopped bool
}

func NewAsync(recorder *Recorder, bufferSize int, logger *logrus.Logger) *AsyncRecorder {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	a := &AsyncRecorder{
		recorder: recorder,
		logger:   logger,
		queue:    make(chan models.InteractionEvent, bufferSize),
		stopChan: make(chan struct{}),
	}

	a.wg.Add(1)
	go a.worker()

	return a
}

func (a *AsyncRecorder) Record(_ context.Context, user models.UserIdentity, productID int64, interactionType models.InteractionType) error {
	event, ok, err := a.recorder.newEvent(user, productID, interactionType)
	if !ok {
		return err
	}

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.stopped {
		return &Error{User: user, ProductID: productID, Type: interactionType, Err: ErrStopped}
	}

	select {
	case a.queue <- event:
		return nil
	default:
		a.logger.WithFields(logrus.Fields{
			"user_id":          user,
			"product_id":       productID,
			"interaction_type": interactionType,
		}).Warn("Interaction queue full, dropping event")
		return &Error{User: user, ProductID: productID, Type: interactionType, Err: ErrQueueFull}
	}
}

func (a *AsyncRecorder) worker() {
	defer a.wg.Done()

	for {
		select {
		case event := <-a.queue:
			a.deliver(event)

		case <-a.stopChan:
			// Drain what is already queued before stopping
			for {
				select {
				case event := <-a.queue:
					a.deliver(event)
				default:
					return
				}
			}
		}
	}
}

func (a *AsyncRecorder) deliver(event models.InteractionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.recorder.append(ctx, event); err != nil {
		a.logger.WithError(err).Warn("Failed to record interaction")
	}
}

// Stop flushes queued interactions and stops the worker. Later calls to Record fail with
// ErrStopped.
func (a *AsyncRecorder) Stop() {
	a.once.Do(func() {
		a.mu.Lock()
		a.stopped = true
		a.mu.Unlock()

		close(a.stopChan)
		a.wg.Wait()
	})
}
