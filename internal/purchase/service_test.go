package purchase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gudangku/gudangku/internal/platform/httpx"
	"github.com/gudangku/gudangku/internal/purchase/hub"
	"github.com/gudangku/gudangku/internal/shared"
)

type memoryPurchaseRepo struct {
	requests   map[int64]PurchaseRequest
	items      map[int64][]Item
	warehouses map[int64]Warehouse
	products   map[int64]ProductRef
	nextID     int64
}

type memoryPurchaseTx struct {
	repo *memoryPurchaseRepo
}

func newMemoryPurchaseRepo() *memoryPurchaseRepo {
	return &memoryPurchaseRepo{
		requests:   make(map[int64]PurchaseRequest),
		items:      make(map[int64][]Item),
		warehouses: make(map[int64]Warehouse),
		products:   make(map[int64]ProductRef),
	}
}

func (r *memoryPurchaseRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryPurchaseTx{repo: r})
}

func (r *memoryPurchaseRepo) Get(_ context.Context, id int64) (PurchaseRequest, error) {
	pr, ok := r.requests[id]
	if !ok {
		return PurchaseRequest{}, ErrNotFound
	}
	return pr, nil
}

func (r *memoryPurchaseRepo) GetDetail(ctx context.Context, id int64) (PurchaseRequest, []ItemResponse, error) {
	pr, err := r.Get(ctx, id)
	if err != nil {
		return PurchaseRequest{}, nil, err
	}
	var lines []ItemResponse
	for _, item := range r.items[id] {
		ref := r.products[item.ProductID]
		lines = append(lines, ItemResponse{ID: item.ID, ProductID: item.ProductID, ProductName: ref.Name, ProductSKU: ref.SKU, Quantity: item.Quantity})
	}
	return pr, lines, nil
}

func (r *memoryPurchaseRepo) Items(_ context.Context, requestID int64) ([]Item, error) {
	return append([]Item(nil), r.items[requestID]...), nil
}

func (r *memoryPurchaseRepo) Count(_ context.Context, _ string) (int, error) {
	return len(r.requests), nil
}

func (r *memoryPurchaseRepo) List(_ context.Context, _ string, limit, offset int) ([]ListItem, error) {
	var list []ListItem
	for _, pr := range r.requests {
		total := 0
		for _, item := range r.items[pr.ID] {
			total += item.Quantity
		}
		list = append(list, ListItem{ID: pr.ID, Reference: pr.Reference, WarehouseID: pr.WarehouseID, WarehouseName: r.warehouses[pr.WarehouseID].Name, Status: pr.Status, QtyTotal: total, RequestDate: pr.CreatedAt})
	}
	return list, nil
}

func (r *memoryPurchaseRepo) GetWarehouse(_ context.Context, id int64) (Warehouse, error) {
	w, ok := r.warehouses[id]
	if !ok {
		return Warehouse{}, ErrNotFound
	}
	return w, nil
}

func (r *memoryPurchaseRepo) ListWarehouses(_ context.Context) ([]Warehouse, error) {
	var list []Warehouse
	for _, w := range r.warehouses {
		list = append(list, w)
	}
	return list, nil
}

func (r *memoryPurchaseRepo) ProductsByIDs(_ context.Context, ids []int64) (map[int64]ProductRef, error) {
	refs := make(map[int64]ProductRef)
	for _, id := range ids {
		if ref, ok := r.products[id]; ok {
			refs[id] = ref
		}
	}
	return refs, nil
}

func (r *memoryPurchaseRepo) CountByStatus(_ context.Context) (map[Status]int, error) {
	counts := make(map[Status]int)
	for _, pr := range r.requests {
		counts[pr.Status]++
	}
	return counts, nil
}

func (tx *memoryPurchaseTx) id() int64 {
	tx.repo.nextID++
	return tx.repo.nextID
}

func (tx *memoryPurchaseTx) CreateRequest(_ context.Context, pr PurchaseRequest) (int64, error) {
	for _, existing := range tx.repo.requests {
		if existing.Reference == pr.Reference {
			return 0, ErrDuplicateReference
		}
	}
	pr.ID = tx.id()
	pr.CreatedAt = time.Now()
	tx.repo.requests[pr.ID] = pr
	return pr.ID, nil
}

func (tx *memoryPurchaseTx) InsertItem(_ context.Context, item Item) (int64, error) {
	item.ID = tx.id()
	tx.repo.items[item.RequestID] = append(tx.repo.items[item.RequestID], item)
	return item.ID, nil
}

func (tx *memoryPurchaseTx) DeleteItems(_ context.Context, requestID int64) error {
	delete(tx.repo.items, requestID)
	return nil
}

func (tx *memoryPurchaseTx) UpdateRequest(_ context.Context, id int64, reference string, status Status) error {
	pr, ok := tx.repo.requests[id]
	if !ok {
		return ErrNotFound
	}
	pr.Reference = reference
	pr.Status = status
	tx.repo.requests[id] = pr
	return nil
}

func (tx *memoryPurchaseTx) DeleteRequest(_ context.Context, id int64) error {
	delete(tx.repo.requests, id)
	return nil
}

type fakeNotifier struct {
	calls []hub.PurchasePayload
	err   error
}

func (n *fakeNotifier) NotifyPurchase(_ context.Context, payload hub.PurchasePayload) error {
	n.calls = append(n.calls, payload)
	return n.err
}

func seedPurchaseRepo() *memoryPurchaseRepo {
	repo := newMemoryPurchaseRepo()
	repo.warehouses[1] = Warehouse{ID: 1, Name: "Warehouse A"}
	repo.products[10] = ProductRef{ID: 10, Name: "Product 1", SKU: "SKU-1001"}
	repo.products[11] = ProductRef{ID: 11, Name: "Product 2", SKU: "SKU-1002"}
	return repo
}

func TestCreateStartsInDraft(t *testing.T) {
	repo := seedPurchaseRepo()
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil)

	created, err := svc.Create(context.Background(), CreateRequest{
		Reference:   "PR-001",
		WarehouseID: 1,
		Items:       []ItemInput{{ProductID: 10, Quantity: 5}},
	})
	require.NoError(t, err)
	require.Equal(t, StatusDraft, created.Status)
	require.Len(t, created.Items, 1)
	require.Equal(t, "SKU-1001", created.Items[0].ProductSKU)
	require.Empty(t, notifier.calls)
}

func TestCreateUnknownWarehouseWritesNothing(t *testing.T) {
	repo := seedPurchaseRepo()
	svc := NewService(repo, &fakeNotifier{}, nil)

	_, err := svc.Create(context.Background(), CreateRequest{
		Reference:   "PR-001",
		WarehouseID: 99,
		Items:       []ItemInput{{ProductID: 10, Quantity: 5}},
	})
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.Empty(t, repo.requests)
	require.Empty(t, repo.items)
}

func TestCreateDuplicateReference(t *testing.T) {
	repo := seedPurchaseRepo()
	svc := NewService(repo, &fakeNotifier{}, nil)

	input := CreateRequest{Reference: "PR-001", WarehouseID: 1, Items: []ItemInput{{ProductID: 10, Quantity: 5}}}
	_, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input)
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestUpdateNonDraftRejected(t *testing.T) {
	repo := seedPurchaseRepo()
	repo.requests[1] = PurchaseRequest{ID: 1, Reference: "PR-001", WarehouseID: 1, Status: StatusPending}
	svc := NewService(repo, &fakeNotifier{}, nil)

	status := StatusDraft
	_, err := svc.Update(context.Background(), 1, UpdateRequest{Status: &status})
	require.ErrorIs(t, err, httpx.ErrInvalidState)
}

func TestUpdateToPendingNotifiesVendorFirst(t *testing.T) {
	repo := seedPurchaseRepo()
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil)

	created, err := svc.Create(context.Background(), CreateRequest{
		Reference:   "PR-001",
		WarehouseID: 1,
		Items:       []ItemInput{{ProductID: 10, Quantity: 5}, {ProductID: 11, Quantity: 3}},
	})
	require.NoError(t, err)

	status := StatusPending
	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{Status: &status})
	require.NoError(t, err)
	require.Equal(t, StatusPending, updated.Status)

	require.Len(t, notifier.calls, 1)
	payload := notifier.calls[0]
	require.Equal(t, hub.VendorName, payload.Vendor)
	require.Equal(t, "PR-001", payload.Reference)
	require.Equal(t, 8, payload.QtyTotal)
	require.Len(t, payload.Details, 2)
	require.Equal(t, "SKU-1001", payload.Details[0].SKUBarcode)
}

func TestUpdateToPendingWithoutItemsSkipsVendor(t *testing.T) {
	repo := seedPurchaseRepo()
	repo.requests[1] = PurchaseRequest{ID: 1, Reference: "PR-001", WarehouseID: 1, Status: StatusDraft}
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil)

	status := StatusPending
	_, err := svc.Update(context.Background(), 1, UpdateRequest{Status: &status})
	require.ErrorIs(t, err, httpx.ErrInvalidState)
	require.Empty(t, notifier.calls)
	require.Equal(t, StatusDraft, repo.requests[1].Status)
}

func TestUpdateVendorFailureLeavesDraft(t *testing.T) {
	repo := seedPurchaseRepo()
	notifier := &fakeNotifier{err: errors.New("hub returned status 503")}
	svc := NewService(repo, notifier, nil)

	created, err := svc.Create(context.Background(), CreateRequest{
		Reference:   "PR-001",
		WarehouseID: 1,
		Items:       []ItemInput{{ProductID: 10, Quantity: 5}},
	})
	require.NoError(t, err)

	status := StatusPending
	_, err = svc.Update(context.Background(), created.ID, UpdateRequest{Status: &status})
	require.ErrorIs(t, err, httpx.ErrUpstream)
	require.Equal(t, StatusDraft, repo.requests[created.ID].Status)
}

func TestUpdateUnknownProductRejectedBeforeVendor(t *testing.T) {
	repo := seedPurchaseRepo()
	repo.requests[1] = PurchaseRequest{ID: 1, Reference: "PR-001", WarehouseID: 1, Status: StatusDraft}
	repo.items[1] = []Item{{ID: 1, RequestID: 1, ProductID: 99, Quantity: 2}}
	notifier := &fakeNotifier{}
	svc := NewService(repo, notifier, nil)

	status := StatusPending
	_, err := svc.Update(context.Background(), 1, UpdateRequest{Status: &status})
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.Empty(t, notifier.calls)
}

func TestUpdateReplacesItems(t *testing.T) {
	repo := seedPurchaseRepo()
	svc := NewService(repo, &fakeNotifier{}, nil)

	created, err := svc.Create(context.Background(), CreateRequest{
		Reference:   "PR-001",
		WarehouseID: 1,
		Items:       []ItemInput{{ProductID: 10, Quantity: 5}},
	})
	require.NoError(t, err)

	items := []ItemInput{{ProductID: 11, Quantity: 7}}
	updated, err := svc.Update(context.Background(), created.ID, UpdateRequest{Items: &items})
	require.NoError(t, err)
	require.Len(t, updated.Items, 1)
	require.Equal(t, int64(11), updated.Items[0].ProductID)
	require.Equal(t, 7, updated.Items[0].Quantity)
}

func TestDeleteDraftOnly(t *testing.T) {
	repo := seedPurchaseRepo()
	repo.requests[1] = PurchaseRequest{ID: 1, Reference: "PR-001", WarehouseID: 1, Status: StatusPending}
	repo.requests[2] = PurchaseRequest{ID: 2, Reference: "PR-002", WarehouseID: 1, Status: StatusDraft}
	repo.items[2] = []Item{{ID: 1, RequestID: 2, ProductID: 10, Quantity: 3}}
	svc := NewService(repo, &fakeNotifier{}, nil)

	err := svc.Delete(context.Background(), 1)
	require.ErrorIs(t, err, httpx.ErrInvalidState)

	err = svc.Delete(context.Background(), 2)
	require.NoError(t, err)
	require.NotContains(t, repo.requests, int64(2))
	require.Empty(t, repo.items[2])
}

func TestListIncludesQtyTotals(t *testing.T) {
	repo := seedPurchaseRepo()
	svc := NewService(repo, &fakeNotifier{}, nil)

	_, err := svc.Create(context.Background(), CreateRequest{
		Reference:   "PR-001",
		WarehouseID: 1,
		Items:       []ItemInput{{ProductID: 10, Quantity: 5}, {ProductID: 11, Quantity: 3}},
	})
	require.NoError(t, err)

	result, err := svc.List(context.Background(), shared.ListParams{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	require.Len(t, result.Data, 1)
	require.Equal(t, 8, result.Data[0].QtyTotal)
	require.Equal(t, "Warehouse A", result.Data[0].WarehouseName)
}

func TestStatsCountsByStatus(t *testing.T) {
	repo := seedPurchaseRepo()
	repo.requests[1] = PurchaseRequest{ID: 1, Reference: "PR-001", WarehouseID: 1, Status: StatusDraft}
	repo.requests[2] = PurchaseRequest{ID: 2, Reference: "PR-002", WarehouseID: 1, Status: StatusPending}
	repo.requests[3] = PurchaseRequest{ID: 3, Reference: "PR-003", WarehouseID: 1, Status: StatusCompleted}
	svc := NewService(repo, &fakeNotifier{}, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, stats.Draft)
	require.Equal(t, 1, stats.Pending)
	require.Equal(t, 1, stats.Completed)
	require.Equal(t, 3, stats.Total)
}
