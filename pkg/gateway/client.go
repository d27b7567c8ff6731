// Package gateway talks to the external payment provider: intent creation
// over its REST API and HMAC verification of its payment callbacks.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mvmart/go-api/pkg/global"
)

type Client struct {
	keyID      string
	keySecret  string
	baseURL    string
	currency   string
	httpClient *http.Client
}

func NewClientFromEnv() *Client {
	return &Client{
		keyID:     global.GetEnvOrDefault("RAZORPAY_KEY_ID", ""),
		keySecret: global.GetEnvOrDefault("RAZORPAY_KEY_SECRET", ""),
		baseURL:   global.GetEnvOrDefault("RAZORPAY_BASE_URL", "https://api.razorpay.com/v1"),
		currency:  global.GetEnvOrDefault("PAYMENT_CURRENCY", "INR"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (c *Client) KeyID() string {
	return c.keyID
}

type createIntentRequest struct {
	Amount   int64  `json:"amount"` // minor currency units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createIntentResponse struct {
	ID string `json:"id"`
}

// CreateIntent registers a payment of amount minor units with the provider,
// tagged with the order's receipt, and returns the provider's order id.
func (c *Client) CreateIntent(ctx context.Context, amount int64, receipt string) (string, error) {
	body, err := json.Marshal(createIntentRequest{
		Amount:   amount,
		Currency: c.currency,
		Receipt:  receipt,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var intent createIntentResponse
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}
	if intent.ID == "" {
		return "", fmt.Errorf("gateway response missing order id")
	}

	return intent.ID, nil
}
