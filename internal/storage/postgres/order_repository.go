package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/ecocart/internal/domain"
)

const orderColumns = `id, session, status, pharmacy, subtotal_minor, shipping_minor, tax_minor, grand_total_minor, created_at`

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
// Снимки товара и аптеки хранятся в JSONB, суммы хранятся в центах.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

func (r *orderRepository) Create(ctx context.Context, order domain.Order) (err error) {
	ctx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()

	pharmacy, err := json.Marshal(order.Pharmacy)
	if err != nil {
		return fmt.Errorf("marshal pharmacy: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		order.ID, order.Session, string(order.Status), pharmacy,
		order.Summary.Subtotal.Minor(), order.Summary.Shipping.Minor(),
		order.Summary.Tax.Minor(), order.Summary.GrandTotal.Minor(),
		order.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrOrderAlreadyExists
		}
		return fmt.Errorf("insert order: %w", err)
	}

	for position, item := range order.Items {
		product, marshalErr := json.Marshal(item.Product)
		if marshalErr != nil {
			err = fmt.Errorf("marshal product %s: %w", item.Product.ID, marshalErr)
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO order_lines (id, order_id, position, product, quantity)
			VALUES ($1,$2,$3,$4,$5)
		`, item.ID, order.ID, position, product, item.Quantity); err != nil {
			return fmt.Errorf("insert order line: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create order: %w", err)
	}
	return nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()

	order, err := scanOrder(r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}

	if order.Items, err = r.loadLines(ctx, order.ID); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (r *orderRepository) ListBySession(ctx context.Context, session string, limit int) ([]domain.Order, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultOpTimeout)
	defer cancel()

	query := `SELECT ` + orderColumns + ` FROM orders WHERE session = $1 ORDER BY created_at DESC, id DESC`
	args := []any{session}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}

	for i := range orders {
		if orders[i].Items, err = r.loadLines(ctx, orders[i].ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		order                               domain.Order
		status                              string
		pharmacy                            []byte
		subtotal, shipping, tax, grandTotal int64
	)
	if err := row.Scan(
		&order.ID, &order.Session, &status, &pharmacy,
		&subtotal, &shipping, &tax, &grandTotal, &order.CreatedAt,
	); err != nil {
		return domain.Order{}, err
	}
	if err := json.Unmarshal(pharmacy, &order.Pharmacy); err != nil {
		return domain.Order{}, fmt.Errorf("unmarshal pharmacy: %w", err)
	}
	order.Status = domain.OrderStatus(status)
	order.Summary = domain.OrderSummary{
		Subtotal:   domain.Money(subtotal),
		Shipping:   domain.Money(shipping),
		Tax:        domain.Money(tax),
		GrandTotal: domain.Money(grandTotal),
	}
	order.CreatedAt = order.CreatedAt.UTC()
	return order, nil
}

func (r *orderRepository) loadLines(ctx context.Context, orderID string) ([]domain.LineItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product, quantity
		FROM order_lines
		WHERE order_id = $1
		ORDER BY position ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	defer rows.Close()

	items := make([]domain.LineItem, 0)
	for rows.Next() {
		var (
			item    domain.LineItem
			product []byte
		)
		if err := rows.Scan(&item.ID, &product, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		if err := json.Unmarshal(product, &item.Product); err != nil {
			return nil, fmt.Errorf("unmarshal order line product: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order lines: %w", err)
	}
	return items, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

var _ domain.OrderRepository = (*orderRepository)(nil)
