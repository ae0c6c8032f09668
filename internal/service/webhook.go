package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const webhookTimeout = 10 * time.Second

type WebhookClient struct {
	client *http.Client
}

type WebhookResponse struct {
	StatusCode int
	Body       []byte
}

func NewWebhookClient() *WebhookClient {
	return &WebhookClient{
		client: &http.Client{Timeout: webhookTimeout},
	}
}

func (r WebhookResponse) Successful() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Message prefers the "message" field of a JSON body over the raw body.
func (r WebhookResponse) Message() string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.Body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if len(r.Body) > 0 {
		return string(r.Body)
	}
	return "Unknown error"
}

// Post sends payload as JSON. The request is detached from ctx cancellation
// and bounded by the client timeout only.
func (c *WebhookClient) Post(ctx context.Context, url string, payload any, idempotencyKey string) (WebhookResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return WebhookResponse{}, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return WebhookResponse{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return WebhookResponse{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return WebhookResponse{StatusCode: resp.StatusCode}, fmt.Errorf("read response: %w", err)
	}

	return WebhookResponse{StatusCode: resp.StatusCode, Body: data}, nil
}
