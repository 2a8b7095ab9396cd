package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UserIdentity is the numeric token a shopper types in. Zero means anonymous.
type UserIdentity int64

// Anonymous is the identity of a session whose user has not identified themselves.
const Anonymous UserIdentity = 0

// IsKnown reports whether the identity refers to a concrete user.
func (u UserIdentity) IsKnown() bool {
	return u > 0
}

func (u UserIdentity) String() string {
	if !u.IsKnown() {
		return "anonymous"
	}
	return fmt.Sprintf("%d", int64(u))
}

type InteractionType string

const (
	InteractionView      InteractionType = "view"
	InteractionAddToCart InteractionType = "add_to_cart"
	InteractionPurchase  InteractionType = "purchase"
)

// Valid reports whether t is one of the recorded interaction types.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionView, InteractionAddToCart, InteractionPurchase:
		return true
	default:
		return false
	}
}

// InteractionEvent is a write-once fact appended to the interaction log.
// Events always carry a known user.
type InteractionEvent struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	Timestamp       time.Time       `json:"interaction_timestamp" db:"interaction_timestamp"`
	InteractionType InteractionType `json:"interaction_type" db:"interaction_type"`
	ProductID       int64           `json:"product_id" db:"product_id"`
	UserID          int64           `json:"user_id" db:"user_id"`
}

// NewInteractionEvent stamps an event with the given instant, normalized to UTC at
// second precision.
func NewInteractionEvent(user UserIdentity, productID int64, interactionType InteractionType, at time.Time) InteractionEvent {
	return InteractionEvent{
		ID:              uuid.New(),
		Timestamp:       EventTimestamp(at),
		InteractionType: interactionType,
		ProductID:       productID,
		UserID:          int64(user),
	}
}

// EventTimestamp normalizes t to the precision and zone used for every recorded event.
func EventTimestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
