package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/storefront/internal/model"
	"github.com/fairyhunter13/storefront/internal/service"
	"github.com/fairyhunter13/storefront/pkg/database"
)

const productColumns = `id, name, price, sale_price, sale_ends_at, stock, shipping_fee, image_url`

// ProductRepository provides data access for products using pgx.
type ProductRepository struct {
	pool PoolInterface
}

// NewProductRepository creates a new ProductRepository with the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// NewProductRepositoryWithPool creates a new ProductRepository with a custom pool interface.
// This is primarily used for testing.
func NewProductRepositoryWithPool(pool PoolInterface) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns products whose name contains query (case-insensitive), ordered by id.
// On success, returns an empty slice (not nil) when nothing matches.
func (r *ProductRepository) List(ctx context.Context, query string, limit, offset int) ([]model.Product, error) {
	sql := `SELECT ` + productColumns + ` FROM products
		WHERE $1::text = '' OR name ILIKE '%' || $1::text || '%'
		ORDER BY id
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, sql, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collectProducts(rows)
}

// GetByID retrieves a product by id.
// Returns nil, nil if the product is not found (service layer handles this).
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

// GetForUpdate retrieves a product with a row lock (SELECT FOR UPDATE).
// Returns service.ErrProductNotFound if the product doesn't exist.
func (r *ProductRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id int64) (*model.Product, error) {
	p, err := scanProduct(tx.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product for update %d: %w", id, err)
	}
	return p, nil
}

// ListForUpdate locks the given products in id order. Missing ids are simply absent from the result.
func (r *ProductRepository) ListForUpdate(ctx context.Context, tx database.TxQuerier, ids []int64) ([]model.Product, error) {
	sql := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`

	rows, err := tx.Query(ctx, sql, ids)
	if err != nil {
		return nil, fmt.Errorf("lock products: %w", err)
	}
	return collectProducts(rows)
}

// DecrementStock subtracts quantity from stock only if enough stock remains.
// Returns service.ErrOutOfStock when no row qualifies.
func (r *ProductRepository) DecrementStock(ctx context.Context, tx database.TxQuerier, id int64, quantity int) error {
	tag, err := tx.Exec(ctx,
		`UPDATE products SET stock = stock - $1 WHERE id = $2 AND stock >= $1`,
		quantity, id)
	if err != nil {
		if pgCode(err) == pgCheckViolation {
			return service.ErrOutOfStock
		}
		return fmt.Errorf("decrement stock for product %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %d", service.ErrOutOfStock, id)
	}
	return nil
}

func scanProduct(row scanner) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.SalePrice,
		&p.SaleEndsAt,
		&p.Stock,
		&p.ShippingFee,
		&p.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}
