package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"catchup-registry/internal/config"
	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/event"
	"catchup-registry/internal/infra/adapter/persistence/postgres"
	"catchup-registry/internal/infra/adapter/persistence/sqlite"
	"catchup-registry/internal/infra/db"
	"catchup-registry/internal/infra/messaging/kafka"
	"catchup-registry/internal/infra/messaging/memory"
	"catchup-registry/internal/infra/messaging/redis"
	"catchup-registry/internal/messaging"
	"catchup-registry/internal/registrar"
	"catchup-registry/internal/resilience/circuitbreaker"
	"catchup-registry/internal/usecase/registry"
)

// app holds the wired process dependencies.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	db        *sql.DB
	breaker   *circuitbreaker.DBCircuitBreaker
	transport messaging.Transport
	service   *registry.Service
}

// newApp opens the store, bootstraps its schema, connects the transport and builds
// the registration service.
func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	dialect, err := db.ParseDialect(cfg.Database.Driver)
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(ctx, dialect, cfg.Database.URL, db.ConnectionConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		PingTimeout:     cfg.Database.PingTimeout,
	})
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger, db: conn}

	classifier := newClassifier(dialect)
	var querier registrar.Querier = conn
	var execer db.Execer = conn
	if cfg.Database.CircuitBreaker {
		bcfg := circuitbreaker.DBConfig()
		bcfg.IsSuccessful = func(err error) bool {
			// constraint violations and collisions mean the store answered
			return err == nil || classifier.Classify(entity.KindSource, err) != registrar.ClassTransport
		}
		a.breaker = circuitbreaker.NewDBCircuitBreakerWithConfig(conn, bcfg)
		querier, execer = a.breaker, a.breaker
	}

	if err := db.MigrateUp(ctx, execer, dialect); err != nil {
		_ = conn.Close()
		return nil, err
	}

	a.transport, err = newTransport(ctx, cfg, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	publisher := event.NewPublisher(a.transport,
		event.WithPublishTimeout(cfg.PublishTimeout),
		event.WithPublisherLogger(logger),
		event.WithBreaker(circuitbreaker.New(circuitbreaker.PublisherConfig())),
	)

	a.service = &registry.Service{
		Publisher:       publisher,
		RegisterTimeout: cfg.RegisterTimeout,
		Logger:          logger,
	}
	switch dialect {
	case db.Postgres:
		r := postgres.NewRepositories(querier)
		a.service.SourceTypes, a.service.Sources, a.service.Feeds = r.SourceTypes, r.Sources, r.Feeds
		a.service.NewsItems, a.service.Companies = r.NewsItems, r.Companies
	case db.SQLite:
		r := sqlite.NewRepositories(querier)
		a.service.SourceTypes, a.service.Sources, a.service.Feeds = r.SourceTypes, r.Sources, r.Feeds
		a.service.NewsItems, a.service.Companies = r.NewsItems, r.Companies
	}

	logger.Info("registry wired",
		slog.String("driver", string(dialect)),
		slog.String("transport", cfg.Transport),
		slog.Bool("db_circuit_breaker", cfg.Database.CircuitBreaker))
	return a, nil
}

func newClassifier(dialect db.Dialect) registrar.Classifier {
	if dialect == db.Postgres {
		return postgres.NewClassifier()
	}
	return sqlite.NewClassifier()
}

func newTransport(ctx context.Context, cfg *config.Config, logger *slog.Logger) (messaging.Transport, error) {
	switch cfg.Transport {
	case config.TransportKafka:
		t, err := kafka.New(kafka.Config{
			Brokers:       cfg.Kafka.Brokers,
			ConsumerGroup: cfg.Kafka.ConsumerGroup,
		}, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Kafka.CreateTopics {
			if err := t.EnsureTopics(ctx, event.TopicCompanyCreated); err != nil {
				_ = t.Close()
				return nil, err
			}
		}
		return t, nil
	case config.TransportRedis:
		return redis.Dial(ctx, cfg.Redis.URL)
	case config.TransportMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}

// pinger is implemented by the network transports.
type pinger interface {
	Ping(ctx context.Context) error
}

// pingDatabase goes through the breaker when one guards the pool.
func (a *app) pingDatabase(ctx context.Context) error {
	if a.breaker != nil {
		return a.breaker.PingContext(ctx)
	}
	return a.db.PingContext(ctx)
}

func (a *app) pingTransport(ctx context.Context) error {
	if p, ok := a.transport.(pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (a *app) Close() error {
	return errors.Join(a.transport.Close(), a.db.Close())
}
