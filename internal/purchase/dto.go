package purchase

import "time"

type ItemInput struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int   `json:"quantity" validate:"required,gt=0"`
}

type CreateRequest struct {
	Reference   string      `json:"reference" validate:"required,max=100"`
	WarehouseID int64       `json:"warehouseId" validate:"required,gt=0"`
	Items       []ItemInput `json:"items" validate:"required,min=1,dive"`
}

type UpdateRequest struct {
	Reference *string      `json:"reference,omitempty" validate:"omitempty,max=100"`
	Status    *Status      `json:"status,omitempty" validate:"omitempty,oneof=DRAFT PENDING"`
	Items     *[]ItemInput `json:"items,omitempty" validate:"omitempty,dive"`
}

type ItemResponse struct {
	ID          int64  `json:"id"`
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	ProductSKU  string `json:"productSku"`
	Quantity    int    `json:"quantity"`
}

type RequestResponse struct {
	ID          int64          `json:"id"`
	Reference   string         `json:"reference"`
	WarehouseID int64          `json:"warehouseId"`
	Status      Status         `json:"status"`
	RequestDate time.Time      `json:"requestDate"`
	Items       []ItemResponse `json:"items"`
}
