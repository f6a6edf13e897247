package kafka

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

const defaultSinkBuffer = 256

// Sink публикует уведомления корзины в Kafka из фоновой горутины,
// чтобы мутации корзины не ждали брокера. При переполнении буфера
// событие отбрасывается с предупреждением в логе.
type Sink struct {
	publisher Publisher
	logger    *log.Entry
	retry     RetryConfig

	events chan domain.Event
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// SinkOption настраивает Sink.
type SinkOption func(*Sink)

// WithRetry задаёт повторы публикации. По умолчанию DefaultRetryConfig.
func WithRetry(cfg RetryConfig) SinkOption {
	return func(s *Sink) {
		s.retry = cfg
	}
}

// NewSink запускает фоновую публикацию. При buffer<=0 берётся размер по умолчанию.
func NewSink(publisher Publisher, buffer int, logger *log.Entry, options ...SinkOption) *Sink {
	if buffer <= 0 {
		buffer = defaultSinkBuffer
	}
	if logger == nil {
		logger = log.WithField("component", "kafka-sink")
	}

	s := &Sink{
		publisher: publisher,
		logger:    logger,
		retry:     DefaultRetryConfig(),
		events:    make(chan domain.Event, buffer),
	}
	for _, option := range options {
		option(s)
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Notify ставит событие в очередь на публикацию.
func (s *Sink) Notify(event domain.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}
	select {
	case s.events <- event:
	default:
		s.logger.WithField("kind", event.Kind).Warn("kafka sink buffer is full, event dropped")
	}
}

// Close дожидается публикации уже поставленных в очередь событий.
func (s *Sink) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Sink) run() {
	defer s.wg.Done()
	for event := range s.events {
		msg := NewCartEvent(event)
		logger := s.logger.WithField("kind", event.Kind)
		attempts, err := publishWithRetry(s.retry, logger, func() error {
			return s.publisher.PublishEvent(TopicFor(event.Kind), msg.Key(), msg)
		})
		if err != nil {
			logger.WithError(err).WithField("attempts", attempts).Warn("не удалось опубликовать событие корзины")
		}
	}
}

var _ domain.NotificationSink = (*Sink)(nil)
