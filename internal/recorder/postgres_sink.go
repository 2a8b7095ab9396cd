package recorder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/temcen/storefront/pkg/models"
)

// Execer is the subset of a pgx pool the sink needs.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

// PostgresSink inserts events into the interaction table.
type PostgresSink struct {
	db    Execer
	query string
}

func NewPostgresSink(db Execer, table string) *PostgresSink {
	return &PostgresSink{
		db: db,
		query: fmt.Sprintf(`
		INSERT INTO %s (id, interaction_timestamp, interaction_type, product_id, user_id)
		VALUES ($1, $2, $3, $4, $5)`, table),
	}
}

func (s *PostgresSink) Append(ctx context.Context, event models.InteractionEvent) error {
	_, err := s.db.Exec(ctx, s.query,
		event.ID,
		event.Timestamp,
		string(event.InteractionType),
		event.ProductID,
		event.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert interaction: %w", err)
	}
	return nil
}
