package memory

import (
	"context"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

// DefaultProducts — демонстрационный каталог эко-товаров.
var DefaultProducts = []domain.Product{
	{
		ID: "p1", Name: "Bloom Menstrual Cup", Type: domain.ProductTypeCup, Brand: "EcoBloom",
		Price: 1299, Description: "Medical-grade silicone cup for up to 12 hours of protection.",
		Capacity: "25ml", Material: "Medical-grade silicone", Lifespan: "10 years",
		InStock: true, Rating: 4.8, ReviewCount: 342,
	},
	{
		ID: "p2", Name: "Organic Cotton Pads", Type: domain.ProductTypePad, Brand: "PureCycle",
		Price: 350, Description: "Pack of biodegradable organic cotton pads.",
		Material: "Organic cotton", Lifespan: "Single use",
		InStock: true, Rating: 4.5, ReviewCount: 128,
	},
	{
		ID: "p3", Name: "Reusable Cloth Pads", Type: domain.ProductTypePad, Brand: "Saathi",
		Price: 1850, Description: "Set of three washable bamboo-charcoal pads.",
		Material: "Bamboo fibre", Lifespan: "2 years",
		InStock: true, Rating: 4.6, ReviewCount: 87,
	},
	{
		ID: "p4", Name: "Applicator-free Tampons", Type: domain.ProductTypeTampon, Brand: "Natracare",
		Price: 575, Description: "Plastic-free organic cotton tampons.",
		Material: "Organic cotton", Lifespan: "Single use",
		InStock: false, Rating: 4.2, ReviewCount: 64,
	},
	{
		ID: "p5", Name: "Period Underwear Classic", Type: domain.ProductTypeUnderwear, Brand: "Thinx",
		Price: 2400, Description: "Absorbent period underwear, holds up to two tampons' worth.",
		Capacity: "Medium flow", Material: "Cotton blend", Lifespan: "2 years",
		InStock: true, Rating: 4.4, ReviewCount: 211,
	},
	{
		ID: "p6", Name: "Soft Cup Mini", Type: domain.ProductTypeCup, Brand: "Sirona",
		Price: 899, Description: "Smaller cup for first-time users.",
		Capacity: "18ml", Material: "Medical-grade silicone", Lifespan: "5 years",
		InStock: true, Rating: 4.7, ReviewCount: 156,
	},
}

// productCatalogInMemory — каталог только для чтения.
type productCatalogInMemory struct {
	products []domain.Product
}

// NewProductCatalog создаёт каталог; пустой список заменяется DefaultProducts.
func NewProductCatalog(products []domain.Product) domain.ProductCatalog {
	if len(products) == 0 {
		products = DefaultProducts
	}
	return &productCatalogInMemory{products: append([]domain.Product(nil), products...)}
}

func (c *productCatalogInMemory) List(context.Context) ([]domain.Product, error) {
	return append([]domain.Product(nil), c.products...), nil
}

func (c *productCatalogInMemory) Get(_ context.Context, id string) (domain.Product, error) {
	for _, p := range c.products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

var _ domain.ProductCatalog = (*productCatalogInMemory)(nil)
