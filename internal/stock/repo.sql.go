package stock

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Count returns the number of stock rows matching the search term.
func (r *Repository) Count(ctx context.Context, search string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*)
FROM stocks s
JOIN products p ON p.id = s.product_id
JOIN warehouses w ON w.id = s.warehouse_id
WHERE ($1 = '' OR p.name ILIKE '%' || $1 || '%' OR w.name ILIKE '%' || $1 || '%')`, search).Scan(&total)
	return total, err
}

// List returns one page of stock levels ordered by product name.
func (r *Repository) List(ctx context.Context, search string, limit, offset int) ([]Level, error) {
	rows, err := r.pool.Query(ctx, `SELECT s.warehouse_id, s.product_id, s.quantity, p.name, p.sku, w.name
FROM stocks s
JOIN products p ON p.id = s.product_id
JOIN warehouses w ON w.id = s.warehouse_id
WHERE ($1 = '' OR p.name ILIKE '%' || $1 || '%' OR w.name ILIKE '%' || $1 || '%')
ORDER BY p.name ASC, s.warehouse_id ASC
LIMIT $2 OFFSET $3`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var levels []Level
	for rows.Next() {
		var lv Level
		if err := rows.Scan(&lv.WarehouseID, &lv.ProductID, &lv.Quantity, &lv.ProductName, &lv.ProductSKU, &lv.WarehouseName); err != nil {
			return nil, err
		}
		levels = append(levels, lv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return levels, nil
}
