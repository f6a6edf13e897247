package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
	"github.com/vladislavdragonenkov/ecocart/internal/service/cart"
	"github.com/vladislavdragonenkov/ecocart/internal/service/catalog"
)

const (
	maxBodyBytes      = 1 << 16
	defaultOrderLimit = 20
)

type addItemRequest struct {
	ProductID string `json:"product_id"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

type checkoutRequest struct {
	PharmacyID string `json:"pharmacy_id"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return false
	}
	return true
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.catalog.List(r.Context(), catalog.Query{
		Type: domain.ProductType(strings.TrimSpace(q.Get("type"))),
		Text: q.Get("q"),
		Sort: catalog.SortOrder(strings.TrimSpace(q.Get("sort"))),
	})
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductViews(products))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(r.Context(), chi.URLParam(r, "productID"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, newProductView(product))
}

// writeCart отдаёт состояние того же Store, который обработал запрос.
func (h *Handler) writeCart(w http.ResponseWriter, r *http.Request, store *cart.Store, status int) {
	snapshot := store.Snapshot()
	respondJSON(w, status, newCartView(sessionFrom(r.Context()), snapshot, h.checkout.Summarize(snapshot.TotalPrice())))
}

func (h *Handler) storeFor(r *http.Request) *cart.Store {
	return h.carts.Get(r.Context(), sessionFrom(r.Context()))
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	h.writeCart(w, r, h.storeFor(r), http.StatusOK)
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, newSummaryView(h.checkout.Summary(r.Context(), sessionFrom(r.Context()))))
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ProductID) == "" {
		h.respondDomainError(w, domain.ErrProductIDRequired)
		return
	}

	product, err := h.catalog.Get(r.Context(), req.ProductID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	// Кнопка "в корзину" недоступна для отсутствующего товара; сама корзина наличие не проверяет.
	if !product.InStock {
		h.respondDomainError(w, domain.ErrProductOutOfStock)
		return
	}

	store := h.storeFor(r)
	if err := store.AddToCart(r.Context(), product); err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.writeCart(w, r, store, http.StatusCreated)
}

func (h *Handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}

	store := h.storeFor(r)
	if err := store.UpdateQuantity(r.Context(), chi.URLParam(r, "productID"), *req.Quantity); err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.writeCart(w, r, store, http.StatusOK)
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	store := h.storeFor(r)
	store.RemoveFromCart(r.Context(), chi.URLParam(r, "productID"))
	h.writeCart(w, r, store, http.StatusOK)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	store := h.storeFor(r)
	store.ClearCart(r.Context())
	h.writeCart(w, r, store, http.StatusOK)
}

func (h *Handler) listPharmacies(w http.ResponseWriter, r *http.Request) {
	pharmacies, err := h.checkout.Pharmacies(r.Context())
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, pharmacies)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeBody(w, r, &req) {
		return
	}

	order, err := h.checkout.PlaceOrder(r.Context(), sessionFrom(r.Context()), req.PharmacyID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, newOrderView(order))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.checkout.GetOrder(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	// Чужой заказ выглядит как отсутствующий.
	if order.Session != sessionFrom(r.Context()) {
		h.respondDomainError(w, domain.ErrOrderNotFound)
		return
	}
	respondJSON(w, http.StatusOK, newOrderView(order))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	limit := defaultOrderLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	orders, err := h.checkout.ListOrders(r.Context(), sessionFrom(r.Context()), limit)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, newOrderView(o))
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		respondJSON(w, http.StatusOK, []any{})
		return
	}
	respondJSON(w, http.StatusOK, h.feed.Recent(sessionFrom(r.Context())))
}
