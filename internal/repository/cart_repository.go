package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/service"
	"github.com/fairyhunter13/storefront/pkg/database"
)

const cartLineQuery = `SELECT c.product_id, c.quantity,
		p.id, p.name, p.price, p.sale_price, p.sale_ends_at, p.stock, p.shipping_fee, p.image_url
	FROM cart_items c
	JOIN products p ON p.id = c.product_id
	WHERE c.user_id = $1
	ORDER BY c.product_id`

// CartRepository provides data access for cart lines using pgx.
type CartRepository struct {
	pool PoolInterface
}

// NewCartRepository creates a new CartRepository with the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// NewCartRepositoryWithPool creates a new CartRepository with a custom pool interface.
// This is primarily used for testing.
func NewCartRepositoryWithPool(pool PoolInterface) *CartRepository {
	return &CartRepository{pool: pool}
}

// GetLines reads the cart joined with live product state without locking.
func (r *CartRepository) GetLines(ctx context.Context, userID int64) ([]model.CartLine, error) {
	rows, err := r.pool.Query(ctx, cartLineQuery, userID)
	if err != nil {
		return nil, fmt.Errorf("get cart lines for user %d: %w", userID, err)
	}
	return collectCartLines(rows)
}

// GetLinesForUpdate reads the cart and locks both the cart rows and their products in product id order.
func (r *CartRepository) GetLinesForUpdate(ctx context.Context, tx database.TxQuerier, userID int64) ([]model.CartLine, error) {
	rows, err := tx.Query(ctx, cartLineQuery+` FOR UPDATE OF c, p`, userID)
	if err != nil {
		return nil, fmt.Errorf("lock cart lines for user %d: %w", userID, err)
	}
	return collectCartLines(rows)
}

// Upsert adds quantity to the line, creating it if needed. The stored quantity never exceeds maxQuantity.
// Returns service.ErrProductNotFound if the product does not exist.
func (r *CartRepository) Upsert(ctx context.Context, tx database.TxQuerier, userID, productID int64, quantity, maxQuantity int) error {
	query := `INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, LEAST($3::int, $4::int))
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = LEAST(cart_items.quantity + EXCLUDED.quantity, $4::int)`

	_, err := tx.Exec(ctx, query, userID, productID, quantity, maxQuantity)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return service.ErrProductNotFound
		}
		return fmt.Errorf("upsert cart line: %w", err)
	}
	return nil
}

// SetQuantity replaces the line quantity, creating the line if needed.
func (r *CartRepository) SetQuantity(ctx context.Context, userID, productID int64, quantity int) error {
	query := `INSERT INTO cart_items (user_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = EXCLUDED.quantity`

	_, err := r.pool.Exec(ctx, query, userID, productID, quantity)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return service.ErrProductNotFound
		}
		return fmt.Errorf("set cart quantity: %w", err)
	}
	return nil
}

// Remove deletes one cart line.
func (r *CartRepository) Remove(ctx context.Context, userID, productID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("remove cart line: %w", err)
	}
	return nil
}

// Clear deletes every line of the user's cart within a transaction.
func (r *CartRepository) Clear(ctx context.Context, tx database.TxQuerier, userID int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("clear cart for user %d: %w", userID, err)
	}
	return nil
}

func collectCartLines(rows pgx.Rows) ([]model.CartLine, error) {
	defer rows.Close()

	lines := []model.CartLine{}
	for rows.Next() {
		var l model.CartLine
		err := rows.Scan(
			&l.ProductID,
			&l.Quantity,
			&l.Product.ID,
			&l.Product.Name,
			&l.Product.Price,
			&l.Product.SalePrice,
			&l.Product.SaleEndsAt,
			&l.Product.Stock,
			&l.Product.ShippingFee,
			&l.Product.ImageURL,
		)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		l.Name = l.Product.Name
		lines = append(lines, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart rows: %w", err)
	}
	return lines, nil
}
