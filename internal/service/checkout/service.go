// Package checkout считает итог заказа и оформляет самовывоз из аптеки.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
	"github.com/vladislavdragonenkov/ecocart/internal/metrics"
	"github.com/vladislavdragonenkov/ecocart/internal/service/cart"
)

// DefaultProcessingDelay — имитация обработки заказа аптекой.
const DefaultProcessingDelay = 2 * time.Second

// Options задаёт параметры Service.
type Options struct {
	Logger          *log.Entry
	Sink            domain.NotificationSink
	Metrics         *metrics.CartMetrics
	TaxRateBP       int64
	ProcessingDelay time.Duration
	NewID           func() string
	Now             func() time.Time
}

// Option настраивает Service.
type Option func(*Options)

// WithLogger задаёт logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) { opts.Logger = logger }
}

// WithSink задаёт получателя уведомления OrderPlaced.
func WithSink(sink domain.NotificationSink) Option {
	return func(opts *Options) { opts.Sink = sink }
}

// WithMetrics подключает метрики.
func WithMetrics(m *metrics.CartMetrics) Option {
	return func(opts *Options) { opts.Metrics = m }
}

// WithTaxRate задаёт ставку налога в базисных пунктах (800 = 8%).
func WithTaxRate(bp int64) Option {
	return func(opts *Options) { opts.TaxRateBP = bp }
}

// WithProcessingDelay задаёт задержку оформления, 0 отключает её.
func WithProcessingDelay(d time.Duration) Option {
	return func(opts *Options) { opts.ProcessingDelay = d }
}

// WithIDGenerator подменяет генератор идентификаторов заказов.
func WithIDGenerator(newID func() string) Option {
	return func(opts *Options) { opts.NewID = newID }
}

// WithClock подменяет источник времени.
func WithClock(now func() time.Time) Option {
	return func(opts *Options) { opts.Now = now }
}

// Service оформляет заказы из корзин реестра.
type Service struct {
	carts      *cart.Registry
	pharmacies domain.PharmacyDirectory
	orders     domain.OrderRepository

	logger    *log.Entry
	sink      domain.NotificationSink
	metrics   *metrics.CartMetrics
	taxRateBP int64
	delay     time.Duration
	newID     func() string
	now       func() time.Time
}

// NewService создаёт сервис оформления.
func NewService(carts *cart.Registry, pharmacies domain.PharmacyDirectory, orders domain.OrderRepository, options ...Option) *Service {
	opts := Options{
		TaxRateBP:       domain.DefaultTaxRateBP,
		ProcessingDelay: DefaultProcessingDelay,
	}
	for _, option := range options {
		option(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = log.WithField("component", "checkout")
	}
	if opts.TaxRateBP < 0 {
		opts.TaxRateBP = domain.DefaultTaxRateBP
	}
	if opts.ProcessingDelay < 0 {
		opts.ProcessingDelay = 0
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}

	return &Service{
		carts:      carts,
		pharmacies: pharmacies,
		orders:     orders,
		logger:     opts.Logger,
		sink:       opts.Sink,
		metrics:    opts.Metrics,
		taxRateBP:  opts.TaxRateBP,
		delay:      opts.ProcessingDelay,
		newID:      opts.NewID,
		now:        opts.Now,
	}
}

// Summary считает итог текущей корзины сессии.
func (s *Service) Summary(ctx context.Context, session string) domain.OrderSummary {
	return s.Summarize(s.carts.Get(ctx, session).TotalPrice())
}

// Summarize считает итог для суммы корзины по настроенной ставке налога.
func (s *Service) Summarize(subtotal domain.Money) domain.OrderSummary {
	return domain.CalculateSummary(subtotal, s.taxRateBP)
}

// Pharmacies возвращает пункты самовывоза.
func (s *Service) Pharmacies(ctx context.Context) ([]domain.Pharmacy, error) {
	return s.pharmacies.List(ctx)
}

// GetOrder возвращает оформленный заказ.
func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.orders.Get(ctx, id)
}

// ListOrders возвращает последние заказы сессии.
func (s *Service) ListOrders(ctx context.Context, session string, limit int) ([]domain.Order, error) {
	return s.orders.ListBySession(ctx, session, limit)
}

// PlaceOrder оформляет заказ на самовывоз: проверяет аптеку и корзину, ждёт
// обработку, сохраняет заказ и убирает оформленные позиции из корзины. Заказ
// фиксирует состав корзины на момент окончания обработки; товары, добавленные
// пока заказ сохранялся, остаются в корзине.
func (s *Service) PlaceOrder(ctx context.Context, session, pharmacyID string) (domain.Order, error) {
	session = cart.NormalizeSession(session)
	pharmacyID = strings.TrimSpace(pharmacyID)
	if pharmacyID == "" {
		return domain.Order{}, domain.ErrPharmacyRequired
	}

	store := s.carts.Get(ctx, session)
	if !store.Restored() {
		return domain.Order{}, fmt.Errorf("load cart: %w", domain.ErrStorageUnavailable)
	}
	if store.TotalItems() == 0 {
		return domain.Order{}, domain.ErrCartEmpty
	}

	pharmacy, err := s.pharmacies.Get(ctx, pharmacyID)
	if err != nil {
		return domain.Order{}, err
	}

	if err := s.wait(ctx); err != nil {
		return domain.Order{}, err
	}

	snapshot, version := store.SnapshotWithVersion()
	if snapshot.IsEmpty() {
		return domain.Order{}, domain.ErrCartEmpty
	}

	order := domain.Order{
		ID:        s.newID(),
		Session:   session,
		Items:     snapshot.Items,
		Summary:   s.Summarize(snapshot.TotalPrice()),
		Pharmacy:  pharmacy,
		Status:    domain.OrderStatusConfirmed,
		CreatedAt: s.now(),
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		return domain.Order{}, fmt.Errorf("build order: %w", errors.Join(errs...))
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("save order: %w", err)
	}

	store.SettleOrder(ctx, order.Items, version)
	s.metrics.RecordOrderPlaced(order.Summary.GrandTotal.Minor())

	s.logger.WithFields(log.Fields{
		"order_id":    order.ID,
		"session":     session,
		"pharmacy_id": pharmacy.ID,
		"grand_total": order.Summary.GrandTotal.String(),
	}).Info("заказ оформлен")

	if s.sink != nil {
		s.sink.Notify(domain.Event{
			Kind:    domain.EventOrderPlaced,
			Session: session,
			OrderID: order.ID,
			Total:   order.Summary.GrandTotal,
			At:      order.CreatedAt,
		})
	}
	return order, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
