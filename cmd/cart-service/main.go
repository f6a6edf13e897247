package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecocart/internal/app"
	"github.com/vladislavdragonenkov/ecocart/internal/domain"
	"github.com/vladislavdragonenkov/ecocart/internal/version"
)

const (
	envHTTPAddr             = "ECOCART_HTTP_ADDR"
	envGRPCAddr             = "ECOCART_GRPC_ADDR"
	envMetricsAddr          = "ECOCART_METRICS_ADDR"
	envStorageDriver        = "ECOCART_STORAGE_DRIVER"
	envRedisAddr            = "ECOCART_REDIS_ADDR"
	envRedisPassword        = "ECOCART_REDIS_PASSWORD"
	envRedisDB              = "ECOCART_REDIS_DB"
	envPostgresDSN          = "ECOCART_POSTGRES_DSN"
	envPostgresAutoMigrate  = "ECOCART_POSTGRES_AUTO_MIGRATE"
	envKafkaBrokers         = "ECOCART_KAFKA_BROKERS"
	envKafkaBuffer          = "ECOCART_KAFKA_BUFFER"
	envTaxRateBP            = "ECOCART_TAX_RATE_BP"
	envOrderProcessingDelay = "ECOCART_ORDER_PROCESSING_DELAY"
	envNotifyOnNoopRemove   = "ECOCART_NOTIFY_ON_NOOP_REMOVE"
	envFeedSize             = "ECOCART_FEED_SIZE"
	envFeedMaxSessions      = "ECOCART_FEED_MAX_SESSIONS"
	envSessionIdleTTL       = "ECOCART_SESSION_IDLE_TTL"
	envBreakerMaxFailures   = "ECOCART_BREAKER_MAX_FAILURES"
	envBreakerOpenTimeout   = "ECOCART_BREAKER_OPEN_TIMEOUT"
	envRequestTimeout       = "ECOCART_REQUEST_TIMEOUT"
	envLogLevel             = "ECOCART_LOG_LEVEL"
)

// envLookup совместима с os.LookupEnv и подменяется в тестах.
type envLookup func(key string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	parsed, err := log.ParseLevel(level)
	if err != nil {
		log.WithError(err).Warn("unknown log level, using info")
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}

// readConfigFromEnv формирует конфигурацию поверх значений по умолчанию.
// Некорректные значения не роняют сервис: остаётся значение по умолчанию, а причина
// возвращается в warnings.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string
	warn := func(key, value string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s=%q: %v", key, value, err))
	}

	strVars := map[string]*string{
		envHTTPAddr:      &cfg.HTTPAddr,
		envGRPCAddr:      &cfg.GRPCAddr,
		envMetricsAddr:   &cfg.MetricsAddr,
		envRedisAddr:     &cfg.RedisAddr,
		envRedisPassword: &cfg.RedisPassword,
		envPostgresDSN:   &cfg.PostgresDSN,
		envKafkaBrokers:  &cfg.KafkaBrokers,
	}
	for key, target := range strVars {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		driver := strings.ToLower(strings.TrimSpace(v))
		switch driver {
		case app.StorageDriverMemory, app.StorageDriverRedis, app.StorageDriverPostgres:
			cfg.StorageDriver = driver
		default:
			warn(envStorageDriver, v, errors.New("must be memory, redis or postgres"))
		}
	}
	if v, ok := lookup(envLogLevel); ok && strings.TrimSpace(v) != "" {
		if _, err := log.ParseLevel(strings.TrimSpace(v)); err != nil {
			warn(envLogLevel, v, err)
		} else {
			cfg.LogLevel = strings.ToLower(strings.TrimSpace(v))
		}
	}

	boolVars := map[string]*bool{
		envPostgresAutoMigrate: &cfg.PostgresAutoMigrate,
		envNotifyOnNoopRemove:  &cfg.NotifyOnNoopRemove,
	}
	for key, target := range boolVars {
		if v, ok := lookup(key); ok {
			parsed, err := parseBool(v)
			if err != nil {
				warn(key, v, err)
				continue
			}
			*target = parsed
		}
	}

	nonNegative := func(v int) bool { return v >= 0 }
	positive := func(v int) bool { return v > 0 }
	intVars := []struct {
		key    string
		target *int
		valid  func(int) bool
		rule   string
	}{
		{envRedisDB, &cfg.RedisDB, nonNegative, "must be >= 0"},
		{envKafkaBuffer, &cfg.KafkaBuffer, positive, "must be > 0"},
		{envFeedSize, &cfg.FeedSize, positive, "must be > 0"},
		{envFeedMaxSessions, &cfg.FeedMaxSessions, positive, "must be > 0"},
	}
	for _, item := range intVars {
		if v, ok := lookup(item.key); ok {
			parsed, err := parseInt(v, item.valid, item.rule)
			if err != nil {
				warn(item.key, v, err)
				continue
			}
			*item.target = parsed
		}
	}

	if v, ok := lookup(envTaxRateBP); ok {
		taxRate := func(v int) bool { return v >= 0 && v <= domain.MaxTaxRateBP }
		parsed, err := parseInt(v, taxRate, "must be in 0..10000")
		if err != nil {
			warn(envTaxRateBP, v, err)
		} else {
			cfg.TaxRateBP = int64(parsed)
		}
	}
	if v, ok := lookup(envBreakerMaxFailures); ok {
		parsed, err := parseInt(v, positive, "must be > 0")
		if err != nil {
			warn(envBreakerMaxFailures, v, err)
		} else {
			cfg.BreakerMaxFailures = uint32(parsed)
		}
	}

	durationVars := []struct {
		key    string
		target *time.Duration
		valid  func(time.Duration) bool
		rule   string
	}{
		{envOrderProcessingDelay, &cfg.OrderProcessingDelay, func(v time.Duration) bool { return v >= 0 }, "must be >= 0"},
		{envBreakerOpenTimeout, &cfg.BreakerOpenTimeout, func(v time.Duration) bool { return v > 0 }, "must be > 0"},
		{envRequestTimeout, &cfg.RequestTimeout, func(v time.Duration) bool { return v > 0 }, "must be > 0"},
		{envSessionIdleTTL, &cfg.SessionIdleTTL, func(v time.Duration) bool { return v >= 0 }, "must be >= 0"},
	}
	for _, item := range durationVars {
		if v, ok := lookup(item.key); ok {
			parsed, err := parseDuration(v, item.valid, item.rule)
			if err != nil {
				warn(item.key, v, err)
				continue
			}
			*item.target = parsed
		}
	}

	return cfg, warnings
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, errors.New("invalid bool value")
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(value) {
		return 0, errors.New(rule)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if !valid(value) {
		return 0, errors.New(rule)
	}
	return value, nil
}

func main() {
	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	setupLogger(cfg.LogLevel)
	for _, warning := range warnings {
		log.WithField("env", warning).Warn("invalid environment value, using default")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"version":        version.String(),
		"http_addr":      cfg.HTTPAddr,
		"grpc_addr":      cfg.GRPCAddr,
		"metrics_addr":   cfg.MetricsAddr,
		"storage_driver": cfg.StorageDriver,
	}).Info("запускаем cart-service")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("cart-service остановлен")
}
