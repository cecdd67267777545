package purchase

import (
	"fmt"
	"time"

	"github.com/gudangku/gudangku/internal/platform/httpx"
)

// Purchase request lifecycle statuses.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCompleted Status = "COMPLETED"
)

// Package sentinels mapped onto transport errors.
var (
	ErrNotFound           = fmt.Errorf("purchase: %w", httpx.ErrNotFound)
	ErrInvalidState       = fmt.Errorf("purchase: %w", httpx.ErrInvalidState)
	ErrValidation         = fmt.Errorf("purchase: %w", httpx.ErrValidation)
	ErrDuplicateReference = fmt.Errorf("purchase: duplicate reference: %w", httpx.ErrDuplicate)
	ErrVendorUnavailable  = fmt.Errorf("purchase: vendor notification failed: %w", httpx.ErrUpstream)
)

// PurchaseRequest domain model.
type PurchaseRequest struct {
	ID          int64
	Reference   string
	WarehouseID int64
	Status      Status
	CreatedAt   time.Time
}

// Item represents one requested product line.
type Item struct {
	ID        int64
	RequestID int64
	ProductID int64
	Quantity  int
}

// Warehouse master record.
type Warehouse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListItem is the listing projection with aggregates joined in.
type ListItem struct {
	ID            int64     `json:"id"`
	Reference     string    `json:"reference"`
	WarehouseID   int64     `json:"warehouseId"`
	WarehouseName string    `json:"warehouseName"`
	Status        Status    `json:"status"`
	QtyTotal      int       `json:"qtyTotal"`
	RequestDate   time.Time `json:"requestDate"`
}

// ListResult wraps a page of purchase requests.
type ListResult struct {
	Data  []ListItem `json:"data"`
	Total int        `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// ProductRef carries product identity needed for the vendor payload.
type ProductRef struct {
	ID   int64
	Name string
	SKU  string
}

// Stats aggregates request counts per status.
type Stats struct {
	Draft     int `json:"draft"`
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
	Total     int `json:"total"`
}
