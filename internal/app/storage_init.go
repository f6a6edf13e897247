package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
	"github.com/vladislavdragonenkov/ecocart/internal/storage/breaker"
	"github.com/vladislavdragonenkov/ecocart/internal/storage/memory"
	"github.com/vladislavdragonenkov/ecocart/internal/storage/postgres"
	"github.com/vladislavdragonenkov/ecocart/internal/storage/redis"
)

// pingKVStore — key-value хранилище, которое умеет проверять подключение.
type pingKVStore interface {
	domain.KVStore
	domain.Pinger
}

// storageDependencies — хранилища, выбранные по StorageDriver.
type storageDependencies struct {
	kv      pingKVStore
	orders  domain.OrderRepository
	breaker *breaker.KVStore
	close   func() error
}

// initStorage открывает хранилище корзин и заказов. Запись корзин идёт через breaker.
func initStorage(ctx context.Context, cfg Config, logger *log.Entry) (*storageDependencies, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	if driver == "" {
		driver = StorageDriverMemory
	}

	var deps *storageDependencies
	switch driver {
	case StorageDriverMemory:
		deps = &storageDependencies{
			kv:     memory.NewKVStore(),
			orders: memory.NewOrderRepository(),
			close:  func() error { return nil },
		}
	case StorageDriverRedis:
		kv, err := redis.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		// Redis хранит только корзины, заказы живут в памяти процесса.
		deps = &storageDependencies{
			kv:     kv,
			orders: memory.NewOrderRepository(),
			close:  kv.Close,
		}
	case StorageDriverPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return nil, errors.New("postgres storage requires PostgresDSN")
		}
		store, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.MigrateUp(ctx, 0); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("migrate postgres: %w", err)
			}
		}
		deps = &storageDependencies{
			kv:     postgres.NewKVStore(store),
			orders: postgres.NewOrderRepository(store),
			close:  store.Close,
		}
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	deps.breaker = breaker.New(deps.kv,
		breaker.WithName("cart-"+driver),
		breaker.WithMaxFailures(cfg.BreakerMaxFailures),
		breaker.WithOpenTimeout(cfg.BreakerOpenTimeout),
		breaker.WithLogger(logger.WithField("layer", "breaker")),
	)
	deps.kv = deps.breaker
	logger.WithField("driver", driver).Info("storage initialized")
	return deps, nil
}
