package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storefront/internal/recorder"
	"github.com/temcen/storefront/internal/search"
	"github.com/temcen/storefront/internal/session"
	"github.com/temcen/storefront/pkg/models"
)

var ErrCorruptSession = errors.New("stored session is corrupt")

// Searcher is the part of the search orchestrator the storefront depends on.
type Searcher interface {
	Run(ctx context.Context, query string, user models.UserIdentity) (search.Result, error)
}

// Outcome is what the shopper sees after an action.
type Outcome struct {
	Session     *Session              `json:"session"`
	Added       bool                  `json:"added"`
	Notice      string                `json:"notice,omitempty"`
	Recorded    *session.RecordIntent `json:"-"`
	RecordError string                `json:"record_error,omitempty"`
}

// StorefrontService drives sessions: it loads a session, applies one action to its state,
// persists the result and then attempts the interaction record the transition asked for.
type StorefrontService struct {
	store    SessionStore
	searcher Searcher
	recorder recorder.Interface
	metrics  *Metrics
	locks    *sessionLocks
	logger   *logrus.Logger
	now      func() time.Time
}

func NewStorefrontService(store SessionStore, searcher Searcher, rec recorder.Interface, metrics *Metrics, logger *logrus.Logger) *StorefrontService {
	return &StorefrontService{
		store:    store,
		searcher: searcher,
		recorder: rec,
		metrics:  metrics,
		locks:    newSessionLocks(),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *StorefrontService) CreateSession(ctx context.Context) (*Session, error) {
	now := s.now().UTC()
	sess := &Session{
		ID:        uuid.New(),
		State:     session.NewState().GetState(),
		Listing:   []models.Product{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.metrics.ObserveSessionCreated()
	s.logger.WithField("session_id", sess.ID).Info("Session started")
	return sess, nil
}

func (s *StorefrontService) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.store.Get(ctx, id)
}

// SetIdentity adopts userID for the session. Non-positive ids leave the identity as it was.
func (s *StorefrontService) SetIdentity(ctx context.Context, id uuid.UUID, userID int64) (*Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	state.SetUserIdentity(userID)
	if err := s.save(ctx, sess, state); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": id,
		"user_id":    sess.State.UserID,
	}).Info("Session identity set")
	return sess, nil
}

// Search fetches a listing for the session and keeps it as the session's current
// listing. A failed search leaves the session untouched.
func (s *StorefrontService) Search(ctx context.Context, id uuid.UUID, query string) (*Session, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	started := s.now()
	result, err := s.searcher.Run(ctx, query, state.User())
	s.metrics.ObserveSearch(result.Source, started, err)
	if err != nil {
		return nil, err
	}

	sess.Query = query
	sess.Listing = result.Products
	if err := s.save(ctx, sess, state); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"session_id": id,
		"query":      query,
		"source":     result.Source,
		"fallback":   result.Fallback,
		"results":    len(result.Products),
	}).Debug("Listing updated")
	return sess, nil
}

// Dispatch applies one action to the session. productID names the card the action was
// made on and is resolved against the current listing.
func (s *StorefrontService) Dispatch(ctx context.Context, id uuid.UUID, kind session.ActionKind, productID *int64) (*Outcome, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	sess, state, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	action := session.Action{Kind: kind}
	if productID != nil && usesCard(kind, state.Page()) {
		product, ok := sess.FindProduct(*productID)
		if !ok {
			err := fmt.Errorf("product %d is not in the current listing: %w", *productID, session.ErrInvalidTransition)
			s.metrics.ObserveTransition(string(kind), err)
			return nil, err
		}
		action.Product = product
	}

	transition, err := session.Apply(state, action)
	s.metrics.ObserveTransition(string(kind), err)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"session_id": id,
			"action":     kind,
			"page":       transition.From,
		}).WithError(err).Info("Action rejected")
		return nil, err
	}

	if err := s.save(ctx, sess, state); err != nil {
		return nil, err
	}

	outcome := &Outcome{
		Session:  sess,
		Added:    transition.Added,
		Notice:   transition.Notice,
		Recorded: transition.Record,
	}

	if intent := transition.Record; intent != nil && intent.User.IsKnown() {
		err := s.recorder.Record(ctx, intent.User, intent.ProductID, intent.Type)
		s.metrics.ObserveInteraction(intent.Type, err)
		if err != nil {
			outcome.RecordError = err.Error()
			s.logger.WithFields(logrus.Fields{
				"session_id":       id,
				"user_id":          intent.User,
				"product_id":       intent.ProductID,
				"interaction_type": intent.Type,
			}).WithError(err).Warn("Failed to record interaction")
		}
	}

	return outcome, nil
}

func (s *StorefrontService) load(ctx context.Context, id uuid.UUID) (*Session, *session.State, error) {
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	state, err := session.Restore(sess.State)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: session %s: %v", ErrCorruptSession, id, err)
	}
	return sess, state, nil
}

func (s *StorefrontService) save(ctx context.Context, sess *Session, state *session.State) error {
	sess.State = state.GetState()
	sess.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, sess); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sess.ID, err)
	}
	return nil
}

// usesCard reports whether kind acts on a product card of the listing rather than on
// the product already open.
func usesCard(kind session.ActionKind, page session.Page) bool {
	switch kind {
	case session.ActionViewDetails:
		return true
	case session.ActionAddToCart:
		return page == session.PageHome
	default:
		return false
	}
}
