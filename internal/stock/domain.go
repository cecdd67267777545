// Package stock serves per-warehouse stock level queries.
package stock

// Level is the quantity of a product held at a warehouse, joined with the
// product and warehouse names for listing.
type Level struct {
	WarehouseID   int64  `json:"warehouseId"`
	ProductID     int64  `json:"productId"`
	Quantity      int64  `json:"quantity"`
	ProductName   string `json:"productName"`
	ProductSKU    string `json:"productSku"`
	WarehouseName string `json:"warehouseName"`
}

// ListResult is the paginated listing response.
type ListResult struct {
	Data  []Level `json:"data"`
	Total int     `json:"total"`
	Page  int     `json:"page"`
	Limit int     `json:"limit"`
}
