package webhook

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gudangku/gudangku/internal/platform/httpx"
	"github.com/gudangku/gudangku/internal/purchase"
)

type stockKey struct {
	warehouseID int64
	productID   int64
}

type memoryWebhookRepo struct {
	requests map[string]purchase.PurchaseRequest
	products map[string]purchase.ProductRef
	stocks   map[stockKey]int
}

func newMemoryWebhookRepo() *memoryWebhookRepo {
	return &memoryWebhookRepo{
		requests: make(map[string]purchase.PurchaseRequest),
		products: make(map[string]purchase.ProductRef),
		stocks:   make(map[stockKey]int),
	}
}

// memoryWebhookTx stages writes and applies them only when the callback
// succeeds, mirroring transactional rollback.
type memoryWebhookTx struct {
	repo      *memoryWebhookRepo
	stocks    map[stockKey]int
	completed []int64
}

func (r *memoryWebhookRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	tx := &memoryWebhookTx{repo: r, stocks: make(map[stockKey]int)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for key, qty := range tx.stocks {
		r.stocks[key] += qty
	}
	for _, id := range tx.completed {
		for ref, pr := range r.requests {
			if pr.ID == id {
				pr.Status = purchase.StatusCompleted
				r.requests[ref] = pr
			}
		}
	}
	return nil
}

func (r *memoryWebhookRepo) GetRequestByReference(_ context.Context, reference string) (purchase.PurchaseRequest, error) {
	pr, ok := r.requests[reference]
	if !ok {
		return purchase.PurchaseRequest{}, ErrNotFound
	}
	return pr, nil
}

func (tx *memoryWebhookTx) GetProductBySKU(_ context.Context, sku string) (purchase.ProductRef, error) {
	ref, ok := tx.repo.products[sku]
	if !ok {
		return purchase.ProductRef{}, ErrValidation
	}
	return ref, nil
}

func (tx *memoryWebhookTx) UpsertStock(_ context.Context, warehouseID, productID int64, qty int) error {
	tx.stocks[stockKey{warehouseID: warehouseID, productID: productID}] += qty
	return nil
}

func (tx *memoryWebhookTx) MarkCompleted(_ context.Context, requestID int64) error {
	tx.completed = append(tx.completed, requestID)
	return nil
}

func seedWebhookRepo() *memoryWebhookRepo {
	repo := newMemoryWebhookRepo()
	repo.requests["PR-001"] = purchase.PurchaseRequest{ID: 1, Reference: "PR-001", WarehouseID: 3, Status: purchase.StatusPending}
	repo.products["SKU-1001"] = purchase.ProductRef{ID: 10, Name: "Product 1", SKU: "SKU-1001"}
	repo.products["SKU-1002"] = purchase.ProductRef{ID: 11, Name: "Product 2", SKU: "SKU-1002"}
	return repo
}

func TestReceiveStockUpsertsAndCompletes(t *testing.T) {
	repo := seedWebhookRepo()
	repo.stocks[stockKey{warehouseID: 3, productID: 10}] = 2
	svc := NewService(repo, nil)

	result, err := svc.ReceiveStock(context.Background(), ReceiveStockRequest{
		Reference: "PR-001",
		Details: []DetailInput{
			{SKUBarcode: "SKU-1001", Qty: 5},
			{SKUBarcode: "SKU-1002", Qty: 3},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Stock received successfully", result.Message)
	require.Equal(t, "COMPLETED", result.Status)
	require.Equal(t, 7, repo.stocks[stockKey{warehouseID: 3, productID: 10}])
	require.Equal(t, 3, repo.stocks[stockKey{warehouseID: 3, productID: 11}])
	require.Equal(t, purchase.StatusCompleted, repo.requests["PR-001"].Status)
}

func TestReceiveStockUnknownReference(t *testing.T) {
	repo := seedWebhookRepo()
	svc := NewService(repo, nil)

	_, err := svc.ReceiveStock(context.Background(), ReceiveStockRequest{
		Reference: "PR-404",
		Details:   []DetailInput{{SKUBarcode: "SKU-1001", Qty: 5}},
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestReceiveStockReplayIsNoop(t *testing.T) {
	repo := seedWebhookRepo()
	repo.requests["PR-001"] = purchase.PurchaseRequest{ID: 1, Reference: "PR-001", WarehouseID: 3, Status: purchase.StatusCompleted}
	svc := NewService(repo, nil)

	result, err := svc.ReceiveStock(context.Background(), ReceiveStockRequest{
		Reference: "PR-001",
		Details:   []DetailInput{{SKUBarcode: "SKU-1001", Qty: 5}},
	})
	require.NoError(t, err)
	require.Equal(t, "Stock already processed", result.Message)
	require.Equal(t, "COMPLETED", result.Status)
	require.Empty(t, repo.stocks)
}

func TestReceiveStockUnknownSKURollsBack(t *testing.T) {
	repo := seedWebhookRepo()
	svc := NewService(repo, nil)

	_, err := svc.ReceiveStock(context.Background(), ReceiveStockRequest{
		Reference: "PR-001",
		Details: []DetailInput{
			{SKUBarcode: "SKU-1001", Qty: 5},
			{SKUBarcode: "SKU-9999", Qty: 1},
		},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.stocks)
	require.Equal(t, purchase.StatusPending, repo.requests["PR-001"].Status)
}
