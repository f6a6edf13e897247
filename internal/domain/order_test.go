package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

// helper для создания базового заказа с одной позицией.
func makeOrder() domain.Order {
	return domain.Order{
		ID:      "order-1",
		Session: "default",
		Items: []domain.LineItem{
			{
				ID:       "line-1",
				Product:  domain.Product{ID: "p1", Name: "Cup", Price: domain.MustParseMoney("12.00")},
				Quantity: 2,
			},
		},
		Summary:   domain.CalculateSummary(domain.MustParseMoney("24.00"), domain.DefaultTaxRateBP),
		Pharmacy:  domain.Pharmacy{ID: "ph-1", Name: "Green Pharmacy"},
		Status:    domain.OrderStatusConfirmed,
		CreatedAt: time.Now().UTC(),
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
		want error
	}{
		{
			name: "no items",
			mut: func(o *domain.Order) {
				o.Items = nil
				o.Summary = domain.CalculateSummary(0, domain.DefaultTaxRateBP)
			},
			want: domain.ErrCartEmpty,
		},
		{
			name: "no pharmacy",
			mut: func(o *domain.Order) {
				o.Pharmacy = domain.Pharmacy{}
			},
			want: domain.ErrPharmacyRequired,
		},
		{
			name: "zero qty",
			mut: func(o *domain.Order) {
				o.Items[0].Quantity = 0
			},
			want: domain.ErrItemQtyInvalid,
		},
		{
			name: "subtotal mismatch",
			mut: func(o *domain.Order) {
				o.Summary.Subtotal++
			},
			want: domain.ErrSubtotalMismatch,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			tc.mut(&order)
			errs := order.ValidateInvariants()
			if len(errs) == 0 {
				t.Fatalf("expected validation errors")
			}
			found := false
			for _, err := range errs {
				if errors.Is(err, tc.want) {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %v in %v", tc.want, errs)
			}
		})
	}
}
