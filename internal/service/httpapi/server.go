// Package httpapi реализует JSON HTTP API корзины, каталога и оформления заказа.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecocart/internal/notify"
	"github.com/vladislavdragonenkov/ecocart/internal/service/cart"
	"github.com/vladislavdragonenkov/ecocart/internal/service/catalog"
	"github.com/vladislavdragonenkov/ecocart/internal/service/checkout"
)

const defaultRequestTimeout = 10 * time.Second

// Dependencies — сервисы, которые обслуживает API.
type Dependencies struct {
	Carts    *cart.Registry
	Catalog  *catalog.Service
	Checkout *checkout.Service
	Feed     *notify.Feed
	Logger   *log.Entry
	// RequestTimeout ограничивает обработку запроса; оформление заказа ждёт
	// задержку обработки, поэтому таймаут должен быть больше неё.
	RequestTimeout time.Duration
}

// Handler реализует HTTP API.
type Handler struct {
	carts    *cart.Registry
	catalog  *catalog.Service
	checkout *checkout.Service
	feed     *notify.Feed
	logger   *log.Entry
	timeout  time.Duration
}

// NewHandler создаёт обработчик API.
func NewHandler(deps Dependencies) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = log.WithField("component", "http-api")
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Handler{
		carts:    deps.Carts,
		catalog:  deps.Catalog,
		checkout: deps.Checkout,
		feed:     deps.Feed,
		logger:   logger,
		timeout:  timeout,
	}
}

// Routes собирает chi-router со всеми маршрутами /api/v1.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(h.timeout))
	r.Use(sessionMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Get("/{productID}", h.getProduct)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Get("/summary", h.getSummary)
			r.Post("/items", h.addItem)
			r.Put("/items/{productID}", h.updateQuantity)
			r.Delete("/items/{productID}", h.removeItem)
		})
		r.Get("/pharmacies", h.listPharmacies)
		r.Post("/checkout", h.placeOrder)
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{orderID}", h.getOrder)
		r.Get("/notifications", h.listNotifications)
	})

	return r
}
