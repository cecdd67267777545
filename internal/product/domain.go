// Package product serves the read-only product catalogue.
package product

// Product is a catalogue entry. Products are immutable once seeded; the SKU
// is the join key used by the external vendor.
type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	SKU  string `json:"sku"`
}

// ListResult is the paginated listing response.
type ListResult struct {
	Data  []Product `json:"data"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}
