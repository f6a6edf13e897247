package app

import "time"

// Драйверы хранилища корзин и заказов.
const (
	StorageDriverMemory   = "memory"
	StorageDriverRedis    = "redis"
	StorageDriverPostgres = "postgres"
)

// Config описывает параметры запуска сервиса корзины.
type Config struct {
	HTTPAddr    string
	GRPCAddr    string
	MetricsAddr string

	StorageDriver       string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	PostgresDSN         string
	PostgresAutoMigrate bool

	// KafkaBrokers: брокеры через запятую. Пустая строка отключает Kafka.
	KafkaBrokers string
	KafkaBuffer  int

	TaxRateBP            int64
	OrderProcessingDelay time.Duration
	NotifyOnNoopRemove   bool
	FeedSize             int
	FeedMaxSessions      int
	SessionIdleTTL       time.Duration

	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration

	RequestTimeout time.Duration
	LogLevel       string
}

// DefaultConfig возвращает конфигурацию для локального запуска без внешних зависимостей.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:             ":8080",
		GRPCAddr:             ":50051",
		MetricsAddr:          ":9090",
		StorageDriver:        StorageDriverMemory,
		RedisAddr:            "localhost:6379",
		PostgresAutoMigrate:  true,
		KafkaBuffer:          256,
		TaxRateBP:            800,
		OrderProcessingDelay: 2 * time.Second,
		NotifyOnNoopRemove:   true,
		FeedSize:             20,
		FeedMaxSessions:      10000,
		SessionIdleTTL:       30 * time.Minute,
		BreakerMaxFailures:   5,
		BreakerOpenTimeout:   30 * time.Second,
		RequestTimeout:       10 * time.Second,
		LogLevel:             "info",
	}
}
