package recorder

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/temcen/storefront/pkg/models"
)

// GraphSink projects events onto a user-product graph. Each event becomes its own
// relationship so repeated purchases stay distinct.
type GraphSink struct {
	driver neo4j.DriverWithContext
}

func NewGraphSink(driver neo4j.DriverWithContext) *GraphSink {
	return &GraphSink{driver: driver}
}

// relationshipType maps interaction types to relationship labels.
func relationshipType(t models.InteractionType) string {
	switch t {
	case models.InteractionView:
		return "VIEWED"
	case models.InteractionAddToCart:
		return "ADDED_TO_CART"
	case models.InteractionPurchase:
		return "PURCHASED"
	default:
		return "INTERACTED_WITH"
	}
}

func graphStatement(event models.InteractionEvent) (string, map[string]any) {
	query := fmt.Sprintf(`
		MERGE (u:User {id: $user_id})
		MERGE (p:Product {id: $product_id})
		CREATE (u)-[:%s {event_id: $event_id, timestamp: $timestamp}]->(p)`,
		relationshipType(event.InteractionType))

	params := map[string]any{
		"user_id":    event.UserID,
		"product_id": event.ProductID,
		"event_id":   event.ID.String(),
		"timestamp":  event.Timestamp.Unix(),
	}
	return query, params
}

func (s *GraphSink) Append(ctx context.Context, event models.InteractionEvent) error {
	query, params := graphStatement(event)

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to write interaction relationship: %w", err)
	}
	return nil
}
