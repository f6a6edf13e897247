// Package catalog отдаёт каталог товаров с фильтром, поиском и сортировкой.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

// SortOrder — порядок выдачи каталога.
type SortOrder string

const (
	SortByName      SortOrder = "name"
	SortByPriceLow  SortOrder = "price-low"
	SortByPriceHigh SortOrder = "price-high"
	SortByRating    SortOrder = "rating"
)

// ErrUnknownSort — неподдерживаемый порядок сортировки.
var ErrUnknownSort = errors.New("unknown sort order")

// Query — параметры выборки. Пустые поля не ограничивают результат.
type Query struct {
	Type domain.ProductType
	// Text ищется без учёта регистра в названии, бренде и типе.
	Text string
	Sort SortOrder
}

// Service — чтение каталога.
type Service struct {
	products domain.ProductCatalog
	logger   *log.Entry
}

// NewService создаёт сервис каталога.
func NewService(products domain.ProductCatalog, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.WithField("component", "catalog")
	}
	return &Service{products: products, logger: logger}
}

// List возвращает товары, подходящие под запрос.
func (s *Service) List(ctx context.Context, q Query) ([]domain.Product, error) {
	less, err := lessFor(q.Sort)
	if err != nil {
		return nil, err
	}

	all, err := s.products.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	text := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if q.Type != "" && p.Type != q.Type {
			continue
		}
		if text != "" && !matches(p, text) {
			continue
		}
		out = append(out, p)
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out, nil
}

// Get возвращает товар по идентификатору.
func (s *Service) Get(ctx context.Context, id string) (domain.Product, error) {
	return s.products.Get(ctx, id)
}

func matches(p domain.Product, text string) bool {
	return strings.Contains(strings.ToLower(p.Name), text) ||
		strings.Contains(strings.ToLower(p.Brand), text) ||
		strings.Contains(strings.ToLower(string(p.Type)), text)
}

func lessFor(order SortOrder) (func(a, b domain.Product) bool, error) {
	switch order {
	case "", SortByName:
		return func(a, b domain.Product) bool { return a.Name < b.Name }, nil
	case SortByPriceLow:
		return func(a, b domain.Product) bool { return a.Price < b.Price }, nil
	case SortByPriceHigh:
		return func(a, b domain.Product) bool { return a.Price > b.Price }, nil
	case SortByRating:
		return func(a, b domain.Product) bool { return a.Rating > b.Rating }, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSort, order)
	}
}
