package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/temcen/storefront/internal/catalog"
	"github.com/temcen/storefront/internal/config"
	"github.com/temcen/storefront/internal/database"
	"github.com/temcen/storefront/internal/messaging"
	"github.com/temcen/storefront/internal/ranking"
	"github.com/temcen/storefront/internal/recorder"
	"github.com/temcen/storefront/internal/search"
)

type Services struct {
	Storefront *StorefrontService
	Health     *HealthService
	Search     *search.Orchestrator
	Metrics    *Metrics
	Recorder   recorder.Interface

	async     *recorder.AsyncRecorder
	publisher *messaging.InteractionPublisher
	logger    *logrus.Logger
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database, registerer prometheus.Registerer) (*Services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	checkers := make(map[string]Checker)

	// Ranking: remote service when configured, the sample catalog otherwise
	var ranker ranking.Ranker = ranking.NewSampleRanker()
	if cfg.Ranking.URL != "" {
		client, err := ranking.NewClient(cfg.Ranking, logger)
		if err != nil {
			return nil, err
		}
		ranker = client
		checkers["ranking"] = func(context.Context) error {
			if client.State() == "open" {
				return errors.New("ranking circuit breaker is open")
			}
			return nil
		}
	}

	var store catalog.Store
	if db.PG != nil {
		store = catalog.NewPostgresStore(db.PG, cfg.Database.CatalogTable, logger)
		checkers["postgresql"] = func(ctx context.Context) error { return db.PG.Ping(ctx) }
	}
	if db.Sessions != nil {
		checkers["redis"] = func(ctx context.Context) error { return db.Sessions.Ping(ctx).Err() }
	}
	if db.Neo4j != nil {
		checkers["neo4j"] = func(ctx context.Context) error { return db.Neo4j.VerifyConnectivity(ctx) }
	}

	orchestrator := search.NewOrchestrator(ranker, store, cfg.Storefront.TrendingLimit, cfg.Storefront.DefaultUserID, logger)

	svc := &Services{
		Search: orchestrator,
		logger: logger,
	}

	sinks, err := svc.buildSinks(cfg, db)
	if err != nil {
		return nil, err
	}

	base := recorder.New(sinks, logger)
	svc.Recorder = base
	if cfg.Recorder.Async {
		svc.async = recorder.NewAsync(base, cfg.Recorder.BufferSize, logger)
		svc.Recorder = svc.async
	}

	var sessions SessionStore = NewMemorySessionStore(cfg.Redis.Sessions.TTL)
	if db.Sessions != nil {
		sessions = NewRedisSessionStore(db.Sessions, cfg.Redis.Sessions.TTL)
	}

	svc.Metrics = NewMetrics(registerer, logger)
	svc.Health = NewHealthService(checkers, registerer, logger)
	svc.Storefront = NewStorefrontService(sessions, orchestrator, svc.Recorder, svc.Metrics, logger)

	return svc, nil
}

// buildSinks assembles the interaction log from the configured sink names. A sink whose
// backend is not available is skipped with a warning.
func (s *Services) buildSinks(cfg *config.Config, db *database.Database) (*recorder.MultiSink, error) {
	var sinks []recorder.NamedSink

	for _, raw := range cfg.Recorder.Sinks {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch name {
		case "log":
			sinks = append(sinks, recorder.NamedSink{Name: name, Sink: recorder.NewLogSink(s.logger)})
		case "postgres":
			if db.PG == nil {
				s.logger.Warn("Postgres interaction sink configured without a database, skipping")
				continue
			}
			sinks = append(sinks, recorder.NamedSink{Name: name, Sink: recorder.NewPostgresSink(db.PG, cfg.Recorder.Table)})
		case "kafka":
			if len(cfg.Kafka.Brokers) == 0 {
				s.logger.Warn("Kafka interaction sink configured without brokers, skipping")
				continue
			}
			s.publisher = messaging.NewInteractionPublisher(cfg, s.logger)
			sinks = append(sinks, recorder.NamedSink{Name: name, Sink: s.publisher})
		case "graph":
			if db.Neo4j == nil {
				s.logger.Warn("Graph interaction sink configured without Neo4j, skipping")
				continue
			}
			sinks = append(sinks, recorder.NamedSink{Name: name, Sink: recorder.NewGraphSink(db.Neo4j)})
		default:
			return nil, fmt.Errorf("unknown interaction sink %q", raw)
		}
	}

	multi := recorder.NewMultiSink(sinks...)
	s.logger.WithField("sinks", multi.Len()).Info("Interaction recorder configured")
	return multi, nil
}

// Close drains the asynchronous recorder and closes the Kafka writer.
func (s *Services) Close() error {
	if s.async != nil {
		s.async.Stop()
	}
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("failed to close interaction publisher: %w", err)
		}
	}
	return nil
}
