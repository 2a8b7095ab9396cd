package recorder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/temcen/storefront/pkg/models"
)

func TestRelationshipType(t *testing.T) {
	tests := map[models.InteractionType]string{
		models.InteractionView:      "VIEWED",
		models.InteractionAddToCart: "ADDED_TO_CART",
		models.InteractionPurchase:  "PURCHASED",
		"other":                     "INTERACTED_WITH",
	}

	for interactionType, expected := range tests {
		t.Run(string(interactionType), func(t *testing.T) {
			assert.Equal(t, expected, relationshipType(interactionType))
		})
	}
}

func TestGraphStatement(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	event := models.NewInteractionEvent(7, 1004, models.InteractionPurchase, at)

	query, params := graphStatement(event)

	assert.Contains(t, query, "CREATE (u)-[:PURCHASED")
	assert.Contains(t, query, "MERGE (u:User {id: $user_id})")
	assert.Equal(t, int64(7), params["user_id"])
	assert.Equal(t, int64(1004), params["product_id"])
	assert.Equal(t, event.ID.String(), params["event_id"])
	assert.Equal(t, at.Unix(), params["timestamp"])
}
