package webhook

import (
	"context"
	"fmt"

	"github.com/gudangku/gudangku/internal/platform/cache"
	"github.com/gudangku/gudangku/internal/purchase"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetRequestByReference(ctx context.Context, reference string) (purchase.PurchaseRequest, error)
}

// Service applies inbound stock confirmations from the vendor hub.
type Service struct {
	repo  RepositoryPort
	cache *cache.Cache
}

// NewService constructs webhook service.
func NewService(repo RepositoryPort, c *cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

// ReceiveStock ingests a stock confirmation. Replays for an already
// completed request are acknowledged without touching stock levels.
// Stock upserts and the status flip commit in one transaction.
func (s *Service) ReceiveStock(ctx context.Context, input ReceiveStockRequest) (Result, error) {
	pr, err := s.repo.GetRequestByReference(ctx, input.Reference)
	if err != nil {
		return Result{}, err
	}
	if pr.Status == purchase.StatusCompleted {
		return Result{Message: "Stock already processed", Status: string(purchase.StatusCompleted)}, nil
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for _, detail := range input.Details {
			ref, err := tx.GetProductBySKU(ctx, detail.SKUBarcode)
			if err != nil {
				return fmt.Errorf("sku %s: %w", detail.SKUBarcode, err)
			}
			if err := tx.UpsertStock(ctx, pr.WarehouseID, ref.ID, detail.Qty); err != nil {
				return err
			}
		}
		return tx.MarkCompleted(ctx, pr.ID)
	})
	if err != nil {
		return Result{}, err
	}
	_ = s.cache.Invalidate(ctx, "purchase:stats")
	return Result{Message: "Stock received successfully", Status: string(purchase.StatusCompleted)}, nil
}
