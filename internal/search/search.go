// Package search turns a search box submission into a product listing. A non-empty query
// is ranked for the user; an empty one browses the trending slice of the catalog and
// falls back to an empty-query ranking when the catalog cannot answer.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/temcen/storefront/internal/catalog"
	"github.com/temcen/storefront/internal/ranking"
	"github.com/temcen/storefront/pkg/models"
)

// Source names the upstream a listing came from.
type Source string

const (
	SourceRanking Source = "ranking"
	SourceCatalog Source = "catalog"
)

// Error is a failed search. The session that asked keeps its state.
type Error struct {
	Query  string
	Source Source
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("search %q via %s failed: %v", e.Query, e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Result is an ordered listing together with the source that produced it.
type Result struct {
	Products []models.Product
	Source   Source
	Fallback bool
}

type Orchestrator struct {
	ranker        ranking.Ranker
	catalog       catalog.Store
	trendingLimit int
	defaultUserID int64
	logger        *logrus.Logger
}

// NewOrchestrator wires the ranker and an optional catalog store. With a nil catalog every
// browse goes straight to the ranker.
func NewOrchestrator(ranker ranking.Ranker, store catalog.Store, trendingLimit int, defaultUserID int64, logger *logrus.Logger) *Orchestrator {
	return &Orchestrator{
		ranker:        ranker,
		catalog:       store,
		trendingLimit: trendingLimit,
		defaultUserID: defaultUserID,
		logger:        logger,
	}
}

// Search returns the listing for query in upstream order. Each call fetches again.
func (o *Orchestrator) Search(ctx context.Context, query string, user models.UserIdentity) ([]models.Product, error) {
	result, err := o.Run(ctx, query, user)
	if err != nil {
		return nil, err
	}
	return result.Products, nil
}

// Run is Search with the provenance of the listing.
func (o *Orchestrator) Run(ctx context.Context, query string, user models.UserIdentity) (Result, error) {
	query = strings.TrimSpace(query)
	if query != "" {
		return o.rank(ctx, query, user, false)
	}

	if o.catalog != nil {
		products, err := o.catalog.FetchTrending(ctx, o.trendingLimit)
		if err == nil {
			return Result{Products: nonNil(products), Source: SourceCatalog}, nil
		}
		o.logger.WithError(err).WithField("limit", o.trendingLimit).Warn("Trending fetch failed, falling back to ranking")
	}

	return o.rank(ctx, "", user, true)
}

func (o *Orchestrator) rank(ctx context.Context, query string, user models.UserIdentity, fallback bool) (Result, error) {
	userID := o.EffectiveUserID(user)

	products, err := o.ranker.Rank(ctx, query, userID)
	if err != nil {
		o.logger.WithFields(logrus.Fields{
			"query":   query,
			"user_id": userID,
			"source":  SourceRanking,
			"error":   err,
		}).Error("Search failed")
		return Result{Source: SourceRanking, Fallback: fallback}, &Error{Query: query, Source: SourceRanking, Err: err}
	}

	return Result{Products: nonNil(products), Source: SourceRanking, Fallback: fallback}, nil
}

// EffectiveUserID is the id sent to the ranker: the session's user, or the configured
// default when the session is anonymous.
func (o *Orchestrator) EffectiveUserID(user models.UserIdentity) int64 {
	if user.IsKnown() {
		return int64(user)
	}
	return o.defaultUserID
}

func nonNil(products []models.Product) []models.Product {
	if products == nil {
		return []models.Product{}
	}
	return products
}
