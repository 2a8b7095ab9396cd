package ranking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/temcen/storefront/internal/config"
	"github.com/temcen/storefront/internal/validation"
	"github.com/temcen/storefront/pkg/models"
)

var ErrInvalidResponse = errors.New("invalid ranking response")

type rankRequest struct {
	Query  string `json:"query"`
	UserID int64  `json:"user_id"`
	Limit  int    `json:"limit"`
}

type rankResponse struct {
	Products []models.Product `json:"products"`
}

// Client calls a remote ranking service over HTTP. Consecutive failures open a circuit
// breaker so a dead service fails fast.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	schemas    *validation.SchemaValidator
	maxResults int
	logger     *logrus.Logger
}

func NewClient(cfg config.RankingConfig, logger *logrus.Logger) (*Client, error) {
	schemas, err := validation.NewSchemaValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to load ranking response schema: %w", err)
	}

	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "ranking",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Ranking circuit breaker changed state")
		},
	})

	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		schemas:    schemas,
		maxResults: cfg.MaxResults,
		logger:     logger,
	}, nil
}

func (c *Client) Rank(ctx context.Context, query string, userID int64) ([]models.Product, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.rank(ctx, query, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Product), nil
}

func (c *Client) rank(ctx context.Context, query string, userID int64) ([]models.Product, error) {
	body, err := json.Marshal(rankRequest{Query: query, UserID: userID, Limit: c.maxResults})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ranking request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rank", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build ranking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ranking request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ranking service returned status %d", resp.StatusCode)
	}

	products, err := c.decode(payload)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"query":   query,
		"user_id": userID,
		"results": len(products),
	}).Debug("Ranking service responded")

	return products, nil
}

func (c *Client) decode(payload []byte) ([]models.Product, error) {
	if err := c.schemas.Validate(validation.RankingResponse, payload).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	var decoded rankResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	products := decoded.Products
	if products == nil {
		products = []models.Product{}
	}
	if c.maxResults > 0 && len(products) > c.maxResults {
		products = products[:c.maxResults]
	}
	c.reportMalformed(payload, products)
	return products, nil
}

var listFields = []string{"highlights", "image_links"}

// reportMalformed logs list fields of the returned products that decoded to an empty list
// because their content was malformed.
func (c *Client) reportMalformed(payload []byte, products []models.Product) {
	var raw struct {
		Products []map[string]json.RawMessage `json:"products"`
	}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return
	}

	for i := range products {
		if i >= len(raw.Products) {
			return
		}
		for _, field := range listFields {
			value, ok := raw.Products[i][field]
			if !ok {
				continue
			}
			if err := models.CheckStringList(value); err != nil {
				c.logger.WithError(err).WithFields(logrus.Fields{
					"product_id": products[i].ID,
					"field":      field,
				}).Warn("Malformed product field from ranking service, treating as empty")
			}
		}
	}
}

// State reports the circuit breaker state for health checks.
func (c *Client) State() string {
	return c.breaker.State().String()
}
