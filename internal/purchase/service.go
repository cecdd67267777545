package purchase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gudangku/gudangku/internal/platform/cache"
	"github.com/gudangku/gudangku/internal/purchase/hub"
	"github.com/gudangku/gudangku/internal/shared"
)

const statsCacheKey = "purchase:stats"

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (PurchaseRequest, error)
	GetDetail(ctx context.Context, id int64) (PurchaseRequest, []ItemResponse, error)
	Items(ctx context.Context, requestID int64) ([]Item, error)
	Count(ctx context.Context, search string) (int, error)
	List(ctx context.Context, search string, limit, offset int) ([]ListItem, error)
	GetWarehouse(ctx context.Context, id int64) (Warehouse, error)
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	ProductsByIDs(ctx context.Context, ids []int64) (map[int64]ProductRef, error)
	CountByStatus(ctx context.Context) (map[Status]int, error)
}

// NotifierPort sends vendor notifications when a request enters PENDING.
type NotifierPort interface {
	NotifyPurchase(ctx context.Context, payload hub.PurchasePayload) error
}

// Service orchestrates the purchase request lifecycle.
type Service struct {
	repo     RepositoryPort
	notifier NotifierPort
	cache    *cache.Cache
}

// NewService constructs purchase service.
func NewService(repo RepositoryPort, notifier NotifierPort, c *cache.Cache) *Service {
	return &Service{repo: repo, notifier: notifier, cache: c}
}

// Create persists a new request in DRAFT together with its items.
func (s *Service) Create(ctx context.Context, input CreateRequest) (RequestResponse, error) {
	if _, err := s.repo.GetWarehouse(ctx, input.WarehouseID); err != nil {
		return RequestResponse{}, err
	}
	pr := PurchaseRequest{Reference: input.Reference, WarehouseID: input.WarehouseID, Status: StatusDraft}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.CreateRequest(ctx, pr)
		if err != nil {
			return err
		}
		for _, line := range input.Items {
			if _, err := tx.InsertItem(ctx, Item{RequestID: id, ProductID: line.ProductID, Quantity: line.Quantity}); err != nil {
				return err
			}
		}
		pr.ID = id
		return nil
	})
	if err != nil {
		return RequestResponse{}, err
	}
	return s.Get(ctx, pr.ID)
}

// Get returns one request with its item lines.
func (s *Service) Get(ctx context.Context, id int64) (RequestResponse, error) {
	pr, items, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}
	if items == nil {
		items = []ItemResponse{}
	}
	return RequestResponse{
		ID:          pr.ID,
		Reference:   pr.Reference,
		WarehouseID: pr.WarehouseID,
		Status:      pr.Status,
		RequestDate: pr.CreatedAt,
		Items:       items,
	}, nil
}

// List returns a paginated page of requests.
func (s *Service) List(ctx context.Context, params shared.ListParams) (ListResult, error) {
	params = params.Normalize()

	var (
		total int
		rows  []ListItem
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, params.Search)
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.repo.List(gctx, params.Search, params.Limit, params.Offset())
		return err
	})
	if err := g.Wait(); err != nil {
		return ListResult{}, err
	}
	if rows == nil {
		rows = []ListItem{}
	}
	return ListResult{Data: rows, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

// Update mutates a DRAFT request. Moving it to PENDING notifies the
// vendor hub first; nothing is persisted when the hub call fails.
func (s *Service) Update(ctx context.Context, id int64, input UpdateRequest) (RequestResponse, error) {
	pr, err := s.repo.Get(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}
	if pr.Status != StatusDraft {
		return RequestResponse{}, ErrInvalidState
	}

	reference := pr.Reference
	if input.Reference != nil {
		reference = *input.Reference
	}
	status := pr.Status
	if input.Status != nil {
		status = *input.Status
	}

	var effective []Item
	if input.Items != nil {
		for _, line := range *input.Items {
			effective = append(effective, Item{RequestID: id, ProductID: line.ProductID, Quantity: line.Quantity})
		}
	} else {
		effective, err = s.repo.Items(ctx, id)
		if err != nil {
			return RequestResponse{}, err
		}
	}

	if status == StatusPending {
		if len(effective) == 0 {
			return RequestResponse{}, fmt.Errorf("%w: cannot submit without items", ErrInvalidState)
		}
		payload, err := s.buildPayload(ctx, reference, effective)
		if err != nil {
			return RequestResponse{}, err
		}
		if err := s.notifier.NotifyPurchase(ctx, payload); err != nil {
			return RequestResponse{}, fmt.Errorf("%w: %v", ErrVendorUnavailable, err)
		}
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if input.Items != nil {
			if err := tx.DeleteItems(ctx, id); err != nil {
				return err
			}
			for _, line := range effective {
				if _, err := tx.InsertItem(ctx, line); err != nil {
					return err
				}
			}
		}
		return tx.UpdateRequest(ctx, id, reference, status)
	})
	if err != nil {
		return RequestResponse{}, err
	}
	s.invalidateStats(ctx)
	return s.Get(ctx, id)
}

// Delete removes a DRAFT request with its items.
func (s *Service) Delete(ctx context.Context, id int64) error {
	pr, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if pr.Status != StatusDraft {
		return ErrInvalidState
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.DeleteItems(ctx, id); err != nil {
			return err
		}
		return tx.DeleteRequest(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidateStats(ctx)
	return nil
}

// Warehouses lists warehouses available for requests.
func (s *Service) Warehouses(ctx context.Context) ([]Warehouse, error) {
	list, err := s.repo.ListWarehouses(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []Warehouse{}
	}
	return list, nil
}

// Stats returns per-status request counts, cached briefly.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.cache.FetchJSON(ctx, statsCacheKey, &stats, func(ctx context.Context) (any, error) {
		return s.loadStats(ctx)
	})
	return stats, err
}

// RefreshStats recomputes counts and replaces the cached value.
func (s *Service) RefreshStats(ctx context.Context) error {
	s.invalidateStats(ctx)
	_, err := s.Stats(ctx)
	return err
}

func (s *Service) loadStats(ctx context.Context) (Stats, error) {
	counts, err := s.repo.CountByStatus(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{
		Draft:     counts[StatusDraft],
		Pending:   counts[StatusPending],
		Completed: counts[StatusCompleted],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func (s *Service) invalidateStats(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, statsCacheKey)
}

func (s *Service) buildPayload(ctx context.Context, reference string, items []Item) (hub.PurchasePayload, error) {
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	refs, err := s.repo.ProductsByIDs(ctx, ids)
	if err != nil {
		return hub.PurchasePayload{}, err
	}
	payload := hub.PurchasePayload{Vendor: hub.VendorName, Reference: reference, Details: make([]hub.PayloadDetail, 0, len(items))}
	for _, item := range items {
		ref, ok := refs[item.ProductID]
		if !ok {
			return hub.PurchasePayload{}, fmt.Errorf("%w: product %d", ErrNotFound, item.ProductID)
		}
		payload.QtyTotal += item.Quantity
		payload.Details = append(payload.Details, hub.PayloadDetail{
			ProductName: ref.Name,
			SKUBarcode:  ref.SKU,
			Qty:         item.Quantity,
		})
	}
	return payload, nil
}
