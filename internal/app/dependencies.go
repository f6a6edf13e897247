package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/ecocart/internal/health"
	"github.com/vladislavdragonenkov/ecocart/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/ecocart/internal/metrics"
	"github.com/vladislavdragonenkov/ecocart/internal/notify"
	"github.com/vladislavdragonenkov/ecocart/internal/service/cart"
	"github.com/vladislavdragonenkov/ecocart/internal/service/catalog"
	"github.com/vladislavdragonenkov/ecocart/internal/service/checkout"
	"github.com/vladislavdragonenkov/ecocart/internal/service/httpapi"
	"github.com/vladislavdragonenkov/ecocart/internal/storage/memory"
	"github.com/vladislavdragonenkov/ecocart/internal/version"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Carts    *cart.Registry
	Catalog  *catalog.Service
	Checkout *checkout.Service
	Feed     *notify.Feed
	Health   *healthcheck.Handler
	Metrics  *metrics.CartMetrics
	Logger   *log.Entry

	storage       *storageDependencies
	kafkaProducer *kafka.Producer
	kafkaSink     *kafka.Sink
}

// NewDependencies открывает хранилище, подключает Kafka и собирает сервисы.
// При registerer == nil метрики регистрируются в DefaultRegisterer.
func NewDependencies(ctx context.Context, cfg Config, registerer prometheus.Registerer, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	storage, err := initStorage(ctx, cfg, logger.WithField("layer", "storage"))
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Feed:    notify.NewFeed(cfg.FeedSize, notify.WithMaxSessions(cfg.FeedMaxSessions)),
		Metrics: metrics.NewCartMetricsWithRegisterer(registerer),
		Logger:  logger,
		storage: storage,
	}

	sinks := []domain.NotificationSink{
		deps.Feed,
		notify.NewLogSink(logger.WithField("layer", "notify")),
	}
	// Без Kafka сервис работает полностью, ошибка подключения только логируется.
	if producer, err := initKafkaProducer(cfg.KafkaBrokers, logger.WithField("layer", "kafka")); err == nil && producer != nil {
		deps.kafkaProducer = producer
		deps.kafkaSink = kafka.NewSink(producer, cfg.KafkaBuffer, logger.WithField("layer", "kafka-sink"))
		sinks = append(sinks, deps.kafkaSink)
	}
	sink := notify.NewFanout(sinks...)

	deps.Carts = cart.NewRegistry(storage.kv,
		cart.WithLogger(logger.WithField("layer", "cart")),
		cart.WithSink(sink),
		cart.WithMetrics(deps.Metrics),
		cart.WithNotifyOnNoopRemove(cfg.NotifyOnNoopRemove),
		cart.WithSessionIdleTTL(cfg.SessionIdleTTL),
	)
	deps.Catalog = catalog.NewService(
		memory.NewProductCatalog(nil),
		logger.WithField("layer", "catalog"),
	)
	deps.Checkout = checkout.NewService(deps.Carts, memory.NewPharmacyDirectory(nil), storage.orders,
		checkout.WithLogger(logger.WithField("layer", "checkout")),
		checkout.WithSink(sink),
		checkout.WithMetrics(deps.Metrics),
		checkout.WithTaxRate(cfg.TaxRateBP),
		checkout.WithProcessingDelay(cfg.OrderProcessingDelay),
	)

	deps.Health = healthcheck.NewHandler(version.GetVersion())
	deps.Health.RegisterChecker("storage", healthcheck.NewPingChecker("storage", storage.kv))
	deps.Health.RegisterChecker("storage-breaker", healthcheck.NewFuncChecker("storage-breaker", func(context.Context) error {
		if state := storage.breaker.State(); state != gobreaker.StateClosed {
			return fmt.Errorf("circuit breaker is %s", state)
		}
		return nil
	}).Degraded())

	return deps, nil
}

// HTTPHandler собирает HTTP API поверх зависимостей.
func (d *Dependencies) HTTPHandler(cfg Config) *httpapi.Handler {
	return httpapi.NewHandler(httpapi.Dependencies{
		Carts:          d.Carts,
		Catalog:        d.Catalog,
		Checkout:       d.Checkout,
		Feed:           d.Feed,
		Logger:         d.Logger.WithField("layer", "http"),
		RequestTimeout: cfg.RequestTimeout,
	})
}

// Close останавливает публикацию событий и закрывает хранилище.
func (d *Dependencies) Close() error {
	if d == nil {
		return nil
	}
	closeKafka(d.kafkaSink, d.kafkaProducer, d.Logger)

	var errs []error
	if d.storage != nil && d.storage.close != nil {
		if err := d.storage.close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
