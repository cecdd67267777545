package purchase

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gudangku/gudangku/internal/platform/db"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	CreateRequest(ctx context.Context, pr PurchaseRequest) (int64, error)
	InsertItem(ctx context.Context, item Item) (int64, error)
	DeleteItems(ctx context.Context, requestID int64) error
	UpdateRequest(ctx context.Context, id int64, reference string, status Status) error
	DeleteRequest(ctx context.Context, id int64) error
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx wraps callback in a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// Get returns request header by id.
func (r *Repository) Get(ctx context.Context, id int64) (PurchaseRequest, error) {
	var pr PurchaseRequest
	err := r.pool.QueryRow(ctx, `SELECT id, reference, warehouse_id, status, created_at FROM purchase_requests WHERE id=$1`, id).
		Scan(&pr.ID, &pr.Reference, &pr.WarehouseID, &pr.Status, &pr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PurchaseRequest{}, ErrNotFound
		}
		return PurchaseRequest{}, err
	}
	return pr, nil
}

// GetDetail returns request header with item lines joined to products.
func (r *Repository) GetDetail(ctx context.Context, id int64) (PurchaseRequest, []ItemResponse, error) {
	pr, err := r.Get(ctx, id)
	if err != nil {
		return PurchaseRequest{}, nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT i.id, i.product_id, p.name, p.sku, i.quantity
		FROM purchase_request_items i
		JOIN products p ON p.id = i.product_id
		WHERE i.request_id = $1
		ORDER BY i.id`, id)
	if err != nil {
		return PurchaseRequest{}, nil, err
	}
	defer rows.Close()
	var items []ItemResponse
	for rows.Next() {
		var item ItemResponse
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.ProductSKU, &item.Quantity); err != nil {
			return PurchaseRequest{}, nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return PurchaseRequest{}, nil, err
	}
	return pr, items, nil
}

// Items returns raw item lines for a request.
func (r *Repository) Items(ctx context.Context, requestID int64) ([]Item, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, request_id, product_id, quantity FROM purchase_request_items WHERE request_id=$1 ORDER BY id`, requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.RequestID, &item.ProductID, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Count returns total requests matching search.
func (r *Repository) Count(ctx context.Context, search string) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM purchase_requests pr
		WHERE ($1 = '' OR pr.reference ILIKE '%' || $1 || '%' OR pr.status ILIKE '%' || $1 || '%')`, search).
		Scan(&total)
	return total, err
}

// List returns a page of requests with warehouse name and quantity totals.
func (r *Repository) List(ctx context.Context, search string, limit, offset int) ([]ListItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pr.id, pr.reference, pr.warehouse_id, w.name, pr.status,
			COALESCE(SUM(i.quantity), 0) AS qty_total, pr.created_at
		FROM purchase_requests pr
		JOIN warehouses w ON w.id = pr.warehouse_id
		LEFT JOIN purchase_request_items i ON i.request_id = pr.id
		WHERE ($1 = '' OR pr.reference ILIKE '%' || $1 || '%' OR pr.status ILIKE '%' || $1 || '%')
		GROUP BY pr.id, w.name
		ORDER BY pr.id DESC
		LIMIT $2 OFFSET $3`, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []ListItem
	for rows.Next() {
		var row ListItem
		if err := rows.Scan(&row.ID, &row.Reference, &row.WarehouseID, &row.WarehouseName, &row.Status, &row.QtyTotal, &row.RequestDate); err != nil {
			return nil, err
		}
		list = append(list, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// GetWarehouse returns warehouse by id.
func (r *Repository) GetWarehouse(ctx context.Context, id int64) (Warehouse, error) {
	var w Warehouse
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM warehouses WHERE id=$1`, id).Scan(&w.ID, &w.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Warehouse{}, ErrNotFound
		}
		return Warehouse{}, err
	}
	return w, nil
}

// ListWarehouses returns all warehouses ordered by name.
func (r *Repository) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM warehouses ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Warehouse
	for rows.Next() {
		var w Warehouse
		if err := rows.Scan(&w.ID, &w.Name); err != nil {
			return nil, err
		}
		list = append(list, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// ProductsByIDs resolves product identity for the given ids.
func (r *Repository) ProductsByIDs(ctx context.Context, ids []int64) (map[int64]ProductRef, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, sku FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	refs := make(map[int64]ProductRef, len(ids))
	for rows.Next() {
		var ref ProductRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.SKU); err != nil {
			return nil, err
		}
		refs[ref.ID] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

// ListStalePending returns requests still PENDING past the cutoff age.
func (r *Repository) ListStalePending(ctx context.Context, olderThan time.Duration) ([]PurchaseRequest, error) {
	cutoff := time.Now().Add(-olderThan)
	rows, err := r.pool.Query(ctx, `
		SELECT id, reference, warehouse_id, status, created_at
		FROM purchase_requests
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at`, StatusPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []PurchaseRequest
	for rows.Next() {
		var pr PurchaseRequest
		if err := rows.Scan(&pr.ID, &pr.Reference, &pr.WarehouseID, &pr.Status, &pr.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

// CountByStatus aggregates request counts per lifecycle status.
func (r *Repository) CountByStatus(ctx context.Context) (map[Status]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM purchase_requests GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[Status]int)
	for rows.Next() {
		var status Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

func translateConstraint(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrDuplicateReference
		case "23503":
			return ErrValidation
		}
	}
	return err
}

func (t *txRepo) CreateRequest(ctx context.Context, pr PurchaseRequest) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO purchase_requests (reference, warehouse_id, status)
		VALUES ($1, $2, $3) RETURNING id`, pr.Reference, pr.WarehouseID, pr.Status).Scan(&id)
	if err != nil {
		return 0, translateConstraint(err)
	}
	return id, nil
}

func (t *txRepo) InsertItem(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `
		INSERT INTO purchase_request_items (request_id, product_id, quantity)
		VALUES ($1, $2, $3) RETURNING id`, item.RequestID, item.ProductID, item.Quantity).Scan(&id)
	if err != nil {
		return 0, translateConstraint(err)
	}
	return id, nil
}

func (t *txRepo) DeleteItems(ctx context.Context, requestID int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM purchase_request_items WHERE request_id=$1`, requestID)
	return err
}

func (t *txRepo) UpdateRequest(ctx context.Context, id int64, reference string, status Status) error {
	tag, err := t.tx.Exec(ctx, `UPDATE purchase_requests SET reference=$2, status=$3 WHERE id=$1`, id, reference, status)
	if err != nil {
		return translateConstraint(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *txRepo) DeleteRequest(ctx context.Context, id int64) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM purchase_requests WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
