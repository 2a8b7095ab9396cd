// Package ranking provides the product ranking service used for search and for the
// trending fallback.
package ranking

import (
	"context"

	"github.com/temcen/storefront/pkg/models"
)

// Ranker returns products for a query, best first. An empty query asks for a default
// selection. userID is always a concrete identity.
type Ranker interface {
	Rank(ctx context.Context, query string, userID int64) ([]models.Product, error)
}
