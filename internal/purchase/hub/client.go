package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// VendorName identifies this system to the procurement hub.
const VendorName = "PT FOOM LAB GLOBAL"

// PayloadDetail is one item line of the vendor payload.
type PayloadDetail struct {
	ProductName string `json:"product_name"`
	SKUBarcode  string `json:"sku_barcode"`
	Qty         int    `json:"qty"`
}

// PurchasePayload is the body posted to the hub when a request enters PENDING.
type PurchasePayload struct {
	Vendor    string          `json:"vendor"`
	Reference string          `json:"reference"`
	QtyTotal  int             `json:"qty_total"`
	Details   []PayloadDetail `json:"details"`
}

// Client wraps interactions with the procurement hub API.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient constructs a new client.
func NewClient(baseURL, secretKey string) *Client {
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NotifyPurchase posts the purchase payload to the hub. Any transport
// failure or non-2xx response is returned as an error.
func (c *Client) NotifyPurchase(ctx context.Context, payload PurchasePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/api/request/purchase", c.baseURL), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("secret-key", c.secretKey)
	req.Header.Set("X-Request-ID", uuid.NewSHA1(uuid.Nil, []byte(payload.Reference)).String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("hub returned status %d: %s", resp.StatusCode, detail)
	}
	return nil
}
