package kafka

import (
	"errors"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

// RetryConfig задаёт повторы публикации с экспоненциальной задержкой.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 1
	}
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	if c.BackoffFactor < 1 {
		c.BackoffFactor = 1
	}
	if c.MaxDelay < c.InitialDelay {
		c.MaxDelay = c.InitialDelay
	}
	return c
}

// publishWithRetry повторяет fn, пока ошибка временная и попытки не исчерпаны.
// Возвращает последнюю ошибку и число выполненных попыток.
func publishWithRetry(cfg RetryConfig, logger *log.Entry, fn func() error) (int, error) {
	cfg = cfg.normalized()
	delay := cfg.InitialDelay

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				logger.WithField("attempt", attempt).Info("публикация прошла после повтора")
			}
			return attempt, nil
		}
		if !shouldRetry(lastErr) {
			return attempt, lastErr
		}
		if attempt < cfg.MaxAttempts {
			logger.WithError(lastErr).WithFields(log.Fields{
				"attempt": attempt,
				"delay":   delay,
			}).Debug("публикация не удалась, повторяем")
			time.Sleep(delay)

			delay = time.Duration(float64(delay) * cfg.BackoffFactor)
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}
	}
	return cfg.MaxAttempts, lastErr
}

// shouldRetry отсекает ошибки, которые повтор не исправит.
func shouldRetry(err error) bool {
	return !errors.Is(err, ErrMarshal) &&
		!errors.Is(err, sarama.ErrMessageSizeTooLarge) &&
		!errors.Is(err, sarama.ErrInvalidMessage) &&
		!errors.Is(err, sarama.ErrClosedClient)
}
