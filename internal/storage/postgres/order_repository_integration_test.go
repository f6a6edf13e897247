package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

func sampleOrder(id, session string, createdAt time.Time) domain.Order {
	items := []domain.LineItem{
		{ID: id + "-l1", Product: domain.Product{ID: "p1", Name: "Bloom Cup", Type: domain.ProductTypeCup, Price: 1200, InStock: true}, Quantity: 2},
		{ID: id + "-l2", Product: domain.Product{ID: "p2", Name: "Cotton Pads", Type: domain.ProductTypePad, Price: 350, InStock: true}, Quantity: 1},
	}
	return domain.Order{
		ID:      id,
		Session: session,
		Items:   items,
		Summary: domain.CalculateSummary(2750, domain.DefaultTaxRateBP),
		Pharmacy: domain.Pharmacy{
			ID: "ph-1", Name: "Green Leaf Pharmacy", City: "Bengaluru", Verified: true,
			Location: domain.Location{Lat: 12.97, Lng: 77.59},
		},
		Status:    domain.OrderStatusConfirmed,
		CreatedAt: createdAt,
	}
}

func TestOrderRepository_PostgresCreateGetList(t *testing.T) {
	store := openPostgresStoreForIntegrationTest(t)
	repo := NewOrderRepository(store)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now().UTC().Round(time.Microsecond)
	order1 := sampleOrder("order-1", "session-1", now.Add(-2*time.Minute))
	order2 := sampleOrder("order-2", "session-1", now.Add(-time.Minute))

	if err := repo.Create(ctx, order1); err != nil {
		t.Fatalf("create order1: %v", err)
	}
	if err := repo.Create(ctx, order2); err != nil {
		t.Fatalf("create order2: %v", err)
	}
	if err := repo.Create(ctx, order1); !errors.Is(err, domain.ErrOrderAlreadyExists) {
		t.Fatalf("expected ErrOrderAlreadyExists, got %v", err)
	}

	got, err := repo.Get(ctx, order1.ID)
	if err != nil {
		t.Fatalf("get order1: %v", err)
	}
	if got.Session != order1.Session || got.Status != order1.Status || got.Pharmacy.Name != order1.Pharmacy.Name {
		t.Fatalf("unexpected order payload: %+v", got)
	}
	if got.Summary != order1.Summary {
		t.Fatalf("unexpected summary: %+v", got.Summary)
	}
	if len(got.Items) != 2 || got.Items[0].Product.Price != 1200 || got.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if errs := got.ValidateInvariants(); len(errs) > 0 {
		t.Fatalf("restored order violates invariants: %v", errs)
	}

	listed, err := repo.ListBySession(ctx, "session-1", 1)
	if err != nil {
		t.Fatalf("list with limit: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != order2.ID {
		t.Fatalf("unexpected list result with limit: %+v", listed)
	}

	all, err := repo.ListBySession(ctx, "session-1", 0)
	if err != nil {
		t.Fatalf("list without limit: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(all))
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
