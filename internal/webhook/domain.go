package webhook

import (
	"fmt"

	"github.com/gudangku/gudangku/internal/platform/httpx"
)

// Package sentinels mapped onto transport errors.
var (
	ErrNotFound   = fmt.Errorf("webhook: %w", httpx.ErrNotFound)
	ErrValidation = fmt.Errorf("webhook: %w", httpx.ErrValidation)
)

// DetailInput is one stock line of the inbound payload.
type DetailInput struct {
	SKUBarcode string `json:"sku_barcode" validate:"required"`
	Qty        int    `json:"qty" validate:"required,gt=0"`
}

// ReceiveStockRequest is the inbound webhook payload keyed by purchase reference.
type ReceiveStockRequest struct {
	Reference string        `json:"reference" validate:"required"`
	Details   []DetailInput `json:"details" validate:"required,min=1,dive"`
}

// Result is the acknowledgement returned to the hub.
type Result struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}
