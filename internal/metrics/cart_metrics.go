package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Операции корзины для label "operation".
const (
	OperationAdd            = "add"
	OperationUpdateQuantity = "update_quantity"
	OperationRemove         = "remove"
	OperationClear          = "clear"
)

// Результаты восстановления корзины для label "result".
const (
	RestoreLoaded    = "loaded"
	RestoreEmpty     = "empty"
	RestoreMalformed = "malformed"
	RestoreFailed    = "failed"
)

// CartMetrics содержит метрики корзины и оформления заказов.
// Все методы безопасны для nil-получателя, чтобы метрики можно было не подключать в тестах.
type CartMetrics struct {
	// Счётчики операций
	operations *prometheus.CounterVec
	restores   *prometheus.CounterVec

	// Ошибки и время записи в хранилище
	persistFailures prometheus.Counter
	persistDuration prometheus.Histogram

	// Оформление заказов
	ordersPlaced prometheus.Counter
	orderValue   prometheus.Histogram

	// Gauge для загруженных в память корзин
	activeCarts prometheus.Gauge
}

// NewCartMetrics создаёт метрики в DefaultRegisterer.
func NewCartMetrics() *CartMetrics {
	return NewCartMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCartMetricsWithRegisterer позволяет тестам использовать изолированный registry.
func NewCartMetricsWithRegisterer(registerer prometheus.Registerer) *CartMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CartMetrics{
		operations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "ecocart_cart_operations_total",
			Help: "Total number of cart mutations grouped by operation.",
		}, []string{"operation"}),
		restores: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "ecocart_cart_restores_total",
			Help: "Total number of cart restores from durable storage grouped by result.",
		}, []string{"result"}),
		persistFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ecocart_cart_persist_failures_total",
			Help: "Total number of failed cart writes to durable storage.",
		}),
		persistDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "ecocart_cart_persist_duration_seconds",
			Help:    "Duration of cart writes to durable storage in seconds.",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "ecocart_orders_placed_total",
			Help: "Total number of pickup orders placed.",
		}),
		orderValue: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "ecocart_order_grand_total",
			Help:    "Grand total of placed orders in major currency units.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500},
		}),
		activeCarts: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "ecocart_active_carts",
			Help: "Number of carts currently loaded in memory.",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOperation увеличивает счётчик мутаций корзины.
func (m *CartMetrics) RecordOperation(operation string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(operation).Inc()
}

// RecordRestore фиксирует результат восстановления корзины.
func (m *CartMetrics) RecordRestore(result string) {
	if m == nil {
		return
	}
	m.restores.WithLabelValues(result).Inc()
}

// RecordPersist записывает время записи и, при ошибке, счётчик неудач.
func (m *CartMetrics) RecordPersist(duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.persistDuration.Observe(duration.Seconds())
	if err != nil {
		m.persistFailures.Inc()
	}
}

// RecordOrderPlaced учитывает оформленный заказ и его сумму в центах.
func (m *CartMetrics) RecordOrderPlaced(grandTotalMinor int64) {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
	m.orderValue.Observe(float64(grandTotalMinor) / 100)
}

// RecordCartLoaded увеличивает количество корзин в памяти.
func (m *CartMetrics) RecordCartLoaded() {
	if m == nil {
		return
	}
	m.activeCarts.Inc()
}
