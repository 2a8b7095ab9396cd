package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storefront/pkg/models"
)

// Store is the read-only product catalog.
type Store interface {
	FetchTrending(ctx context.Context, limit int) ([]models.Product, error)
}

// DatabaseQuerier interface for database operations
type DatabaseQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

var ErrInvalidLimit = errors.New("limit must be positive")

// PostgresStore reads products from the catalog table.
type PostgresStore struct {
	db     DatabaseQuerier
	query  string
	logger *logrus.Logger
}

func NewPostgresStore(db DatabaseQuerier, table string, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{
		db: db,
		query: fmt.Sprintf(`
		SELECT
			product_id, category_1, category_2, category_3, title,
			product_rating, seller_name, seller_rating, description,
			COALESCE(highlights, ''), COALESCE(image_links, ''),
			mrp::text, selling_price::text
		FROM %s
		LIMIT $1`, table),
		logger: logger,
	}
}

// FetchTrending returns up to limit products in the order the store yields them.
func (s *PostgresStore) FetchTrending(ctx context.Context, limit int) ([]models.Product, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := s.db.Query(ctx, s.query, limit)
	if err != nil {
		return nil, fmt.Errorf("trending query failed: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0, limit)
	for rows.Next() {
		product, err := s.scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trending rows: %w", err)
	}

	return products, nil
}

func (s *PostgresStore) scanProduct(rows pgx.Rows) (models.Product, error) {
	var (
		p                  models.Product
		highlights, images string
		mrp, sellingPrice  string
	)

	err := rows.Scan(
		&p.ID, &p.Category1, &p.Category2, &p.Category3, &p.Title,
		&p.ProductRating, &p.SellerName, &p.SellerRating, &p.Description,
		&highlights, &images,
		&mrp, &sellingPrice,
	)
	if err != nil {
		return models.Product{}, fmt.Errorf("failed to scan product: %w", err)
	}

	p.Highlights = s.decodeList(p.ID, "highlights", highlights)
	p.ImageLinks = s.decodeList(p.ID, "image_links", images)

	if p.MRP, err = decimal.NewFromString(mrp); err != nil {
		return models.Product{}, fmt.Errorf("invalid mrp for product %d: %w", p.ID, err)
	}
	if p.SellingPrice, err = decimal.NewFromString(sellingPrice); err != nil {
		return models.Product{}, fmt.Errorf("invalid selling price for product %d: %w", p.ID, err)
	}

	return p, nil
}

func (s *PostgresStore) decodeList(productID int64, field, raw string) models.StringList {
	values, err := models.DecodeStringList(raw)
	if err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"product_id": productID,
			"field":      field,
		}).Warn("Malformed product field, treating as empty")
	}
	return values
}
