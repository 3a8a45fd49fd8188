package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Message is one outbound notification handed to the messaging gateway.
type Message struct {
	RecipientID string  `json:"recipient_id"`
	Text        string  `json:"text"`
	Attachment  *string `json:"attachment,omitempty"`
}

// Courier delivers messages to participants through the external transport.
// Delivery is best-effort: a failed delivery never rolls back the state
// transition that produced it.
type Courier interface {
	Deliver(ctx context.Context, msg Message) error
}

// CourierFunc allows using plain functions as couriers.
type CourierFunc func(ctx context.Context, msg Message) error

// Deliver implements Courier.
func (f CourierFunc) Deliver(ctx context.Context, msg Message) error {
	return f(ctx, msg)
}

// WebhookCourier posts messages to the messaging gateway webhook.
type WebhookCourier struct {
	url       string
	authToken string
	client    *http.Client
}

// NewWebhookCourier constructs a courier targeting the gateway URL.
func NewWebhookCourier(url, authToken string, timeout time.Duration) *WebhookCourier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookCourier{
		url:       url,
		authToken: authToken,
		client:    &http.Client{Timeout: timeout},
	}
}

// Deliver posts the message and treats any non-2xx response as a failure.
func (c *WebhookCourier) Deliver(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver message: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("gateway rejected message: status %d", resp.StatusCode)
	}
	return nil
}
