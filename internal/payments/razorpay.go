package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"
)

// Gateway creates orders against the payment provider.
type Gateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (Order, error)
}

// RazorpayClient talks to the Razorpay Orders API over HTTPS with basic auth.
type RazorpayClient struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	HTTP      *http.Client
}

// NewRazorpayClient builds a gateway client. baseURL defaults to the public
// Razorpay API.
func NewRazorpayClient(keyID, keySecret, baseURL string) *RazorpayClient {
	if baseURL == "" {
		baseURL = "https://api.razorpay.com/v1"
	}
	return &RazorpayClient{
		KeyID:     keyID,
		KeySecret: keySecret,
		BaseURL:   strings.TrimRight(baseURL, "/"),
		HTTP:      &http.Client{Timeout: 15 * time.Second},
	}
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt,omitempty"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

// CreateOrder creates a gateway order for the given amount in paise.
func (c *RazorpayClient) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (Order, error) {
	if c.KeyID == "" || c.KeySecret == "" {
		return Order{}, fmt.Errorf("razorpay credentials not configured")
	}

	payload, err := json.Marshal(razorpayOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return Order{}, fmt.Errorf("encode order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return Order{}, fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.KeyID, c.KeySecret)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("razorpay create order: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Order{}, fmt.Errorf("razorpay create order: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Order{}, fmt.Errorf("razorpay create order: status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var decoded razorpayOrderResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return Order{}, fmt.Errorf("razorpay create order: decode response: %w", err)
	}
	if decoded.ID == "" {
		return Order{}, fmt.Errorf("razorpay create order: missing order id")
	}

	return Order{ID: decoded.ID, Amount: decoded.Amount, Currency: decoded.Currency}, nil
}

// VerifySignature checks the checkout callback signature:
// hex(HMAC-SHA256(order_id + "|" + payment_id, key_secret)). The comparison is
// constant-time.
func VerifySignature(orderID, paymentID, signature, keySecret string) bool {
	if orderID == "" || paymentID == "" || signature == "" || keySecret == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature))))
}

// PlaceholderGateway issues deterministic local orders when no Razorpay
// credentials are configured, mirroring how dev environments run without
// external providers.
type PlaceholderGateway struct {
	seq atomic.Int64
}

func (g *PlaceholderGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}
	n := g.seq.Add(1)
	return Order{
		ID:       fmt.Sprintf("order_local_%d", n),
		Amount:   amount,
		Currency: currency,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var (
	_ Gateway = (*RazorpayClient)(nil)
	_ Gateway = (*PlaceholderGateway)(nil)
)
