package httpapi

import (
	"time"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

// Суммы в ответах отдаются десятичными строками "25.50".

type productView struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Type        domain.ProductType `json:"type"`
	Brand       string             `json:"brand"`
	Price       string             `json:"price"`
	Description string             `json:"description,omitempty"`
	Image       string             `json:"image,omitempty"`
	Capacity    string             `json:"capacity,omitempty"`
	Material    string             `json:"material,omitempty"`
	Lifespan    string             `json:"lifespan,omitempty"`
	InStock     bool               `json:"in_stock"`
	Rating      float64            `json:"rating,omitempty"`
	ReviewCount int                `json:"review_count,omitempty"`
}

func newProductView(p domain.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Type:        p.Type,
		Brand:       p.Brand,
		Price:       p.Price.String(),
		Description: p.Description,
		Image:       p.Image,
		Capacity:    p.Capacity,
		Material:    p.Material,
		Lifespan:    p.Lifespan,
		InStock:     p.InStock,
		Rating:      p.Rating,
		ReviewCount: p.ReviewCount,
	}
}

func newProductViews(products []domain.Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, newProductView(p))
	}
	return out
}

type lineView struct {
	ID       string      `json:"id"`
	Product  productView `json:"product"`
	Quantity int         `json:"quantity"`
	Subtotal string      `json:"subtotal"`
}

func newLineViews(items []domain.LineItem) []lineView {
	out := make([]lineView, 0, len(items))
	for _, item := range items {
		out = append(out, lineView{
			ID:       item.ID,
			Product:  newProductView(item.Product),
			Quantity: item.Quantity,
			Subtotal: item.Subtotal().String(),
		})
	}
	return out
}

type summaryView struct {
	Subtotal   string `json:"subtotal"`
	Shipping   string `json:"shipping"`
	Tax        string `json:"tax"`
	GrandTotal string `json:"grand_total"`
}

func newSummaryView(s domain.OrderSummary) summaryView {
	return summaryView{
		Subtotal:   s.Subtotal.String(),
		Shipping:   s.Shipping.String(),
		Tax:        s.Tax.String(),
		GrandTotal: s.GrandTotal.String(),
	}
}

type cartView struct {
	Session    string      `json:"session"`
	Items      []lineView  `json:"items"`
	TotalItems int         `json:"total_items"`
	TotalPrice string      `json:"total_price"`
	Summary    summaryView `json:"summary"`
}

func newCartView(session string, snapshot domain.Cart, summary domain.OrderSummary) cartView {
	return cartView{
		Session:    session,
		Items:      newLineViews(snapshot.Items),
		TotalItems: snapshot.TotalItems(),
		TotalPrice: snapshot.TotalPrice().String(),
		Summary:    newSummaryView(summary),
	}
}

type orderView struct {
	ID        string             `json:"id"`
	Session   string             `json:"session"`
	Status    domain.OrderStatus `json:"status"`
	Items     []lineView         `json:"items"`
	Summary   summaryView        `json:"summary"`
	Pharmacy  domain.Pharmacy    `json:"pharmacy"`
	CreatedAt time.Time          `json:"created_at"`
}

func newOrderView(o domain.Order) orderView {
	return orderView{
		ID:        o.ID,
		Session:   o.Session,
		Status:    o.Status,
		Items:     newLineViews(o.Items),
		Summary:   newSummaryView(o.Summary),
		Pharmacy:  o.Pharmacy,
		CreatedAt: o.CreatedAt,
	}
}
