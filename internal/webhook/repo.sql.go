package webhook

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gudangku/gudangku/internal/platform/db"
	"github.com/gudangku/gudangku/internal/purchase"
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
	GetProductBySKU(ctx context.Context, sku string) (purchase.ProductRef, error)
	UpsertStock(ctx context.Context, warehouseID, productID int64, qty int) error
	MarkCompleted(ctx context.Context, requestID int64) error
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

// GetRequestByReference looks up a purchase request by its reference.
func (r *Repository) GetRequestByReference(ctx context.Context, reference string) (purchase.PurchaseRequest, error) {
	var pr purchase.PurchaseRequest
	err := r.pool.QueryRow(ctx, `SELECT id, reference, warehouse_id, status, created_at FROM purchase_requests WHERE reference=$1`, reference).
		Scan(&pr.ID, &pr.Reference, &pr.WarehouseID, &pr.Status, &pr.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return purchase.PurchaseRequest{}, ErrNotFound
		}
		return purchase.PurchaseRequest{}, err
	}
	return pr, nil
}

func (t *txRepo) GetProductBySKU(ctx context.Context, sku string) (purchase.ProductRef, error) {
	var ref purchase.ProductRef
	err := t.tx.QueryRow(ctx, `SELECT id, name, sku FROM products WHERE sku=$1`, sku).Scan(&ref.ID, &ref.Name, &ref.SKU)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return purchase.ProductRef{}, ErrValidation
		}
		return purchase.ProductRef{}, err
	}
	return ref, nil
}

func (t *txRepo) UpsertStock(ctx context.Context, warehouseID, productID int64, qty int) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO stocks (warehouse_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (warehouse_id, product_id)
		DO UPDATE SET quantity = stocks.quantity + EXCLUDED.quantity`, warehouseID, productID, qty)
	return err
}

func (t *txRepo) MarkCompleted(ctx context.Context, requestID int64) error {
	tag, err := t.tx.Exec(ctx, `UPDATE purchase_requests SET status=$2 WHERE id=$1`, requestID, purchase.StatusCompleted)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
