package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/service"
	"github.com/fairyhunter13/storefront/pkg/database"
)

// OrderRepository provides data access for orders and their lines using pgx.
type OrderRepository struct {
	pool PoolInterface
}

// NewOrderRepository creates a new OrderRepository with the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// NewOrderRepositoryWithPool creates a new OrderRepository with a custom pool interface.
// This is primarily used for testing.
func NewOrderRepositoryWithPool(pool PoolInterface) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order and fills in its generated id and creation time.
func (r *OrderRepository) Create(ctx context.Context, tx database.TxQuerier, order *model.Order) error {
	err := tx.QueryRow(ctx,
		`INSERT INTO orders (user_id, status, total_price) VALUES ($1, $2, $3) RETURNING id, created_at`,
		order.UserID, string(order.Status), order.TotalPrice,
	).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// InsertLine stores a frozen order line.
// Returns service.ErrProductNotFound if the product no longer exists.
func (r *OrderRepository) InsertLine(ctx context.Context, tx database.TxQuerier, line model.OrderLine) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO order_items (order_id, product_id, price, quantity) VALUES ($1, $2, $3, $4)`,
		line.OrderID, line.ProductID, line.Price, line.Quantity)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return service.ErrProductNotFound
		}
		return fmt.Errorf("insert order line: %w", err)
	}
	return nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, status, total_price, created_at FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list orders for user %d: %w", userID, err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &status, &o.TotalPrice, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		o.Status = model.OrderStatus(status)
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, nil
}

// ListLines returns the frozen lines of the given orders with current product names.
func (r *OrderRepository) ListLines(ctx context.Context, orderIDs []int64) ([]model.OrderLine, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT oi.order_id, oi.product_id, p.name, p.image_url, oi.price, oi.quantity
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = ANY($1)
		ORDER BY oi.order_id DESC, oi.id`,
		orderIDs)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()

	lines := []model.OrderLine{}
	for rows.Next() {
		var l model.OrderLine
		if err := rows.Scan(&l.OrderID, &l.ProductID, &l.Name, &l.ImageURL, &l.Price, &l.Quantity); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order line rows: %w", err)
	}
	return lines, nil
}

// LifetimeSpend sums the totals of the user's orders in an eligible status.
// A nil q reads through the pool.
func (r *OrderRepository) LifetimeSpend(ctx context.Context, q database.TxQuerier, userID int64) (int64, error) {
	if q == nil {
		q = r.pool
	}

	statuses := make([]string, len(model.EligibleOrderStatuses))
	for i, s := range model.EligibleOrderStatuses {
		statuses[i] = string(s)
	}

	var total int64
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_price), 0)::bigint FROM orders WHERE user_id = $1 AND status = ANY($2)`,
		userID, statuses).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("lifetime spend for user %d: %w", userID, err)
	}
	return total, nil
}
