package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrDeclined is returned when the provider refuses the charge (HTTP 402).
var ErrDeclined = errors.New("charge declined")

// ChargeRequest is the provider payload for a one-shot capture.
type ChargeRequest struct {
	Reference  string `json:"reference"`
	CustomerID string `json:"customerId"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
}

// ChargeResponse is returned for accepted charges.
type ChargeResponse struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

// Error is the provider error body.
type Error struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Client calls the payment provider's charges endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithAPIKey sends the key as a bearer token on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.apiKey = strings.TrimSpace(key)
	}
}

// ChargeOption configures Charge behavior.
type ChargeOption func(*chargeOptions)

type chargeOptions struct {
	idempotencyKey string
}

// WithIdempotencyKey sets the Idempotency-Key header for the request.
func WithIdempotencyKey(key string) ChargeOption {
	return func(opts *chargeOptions) {
		opts.idempotencyKey = strings.TrimSpace(key)
	}
}

// NewClient instantiates the payment client. A nil httpClient gets a traced default.
func NewClient(baseURL string, httpClient *http.Client, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("payment provider base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	c := &Client{baseURL: baseURL, httpClient: httpClient}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// Charge captures the amount. Replays with the same idempotency key return the original charge.
func (c *Client) Charge(ctx context.Context, payload ChargeRequest, optFns ...ChargeOption) (*ChargeResponse, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("payment client not configured")
	}
	if strings.TrimSpace(payload.Reference) == "" {
		return nil, errors.New("charge reference is required")
	}
	var opts chargeOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode charge: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if opts.idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", opts.idempotencyKey)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call payment provider: %w", err)
	}
	defer resp.Body.Close()

	switch status := resp.StatusCode; {
	case status == http.StatusOK || status == http.StatusCreated:
		var out ChargeResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, fmt.Errorf("decode charge response: %w", err)
		}
		return &out, nil
	case status == http.StatusPaymentRequired:
		return nil, fmt.Errorf("%w: %s", ErrDeclined, errorMessage(resp))
	case status == http.StatusConflict:
		return nil, fmt.Errorf("payment provider idempotency conflict: %s", errorMessage(resp))
	case status >= http.StatusBadRequest:
		return nil, fmt.Errorf("payment provider error: %s", errorMessage(resp))
	default:
		return nil, fmt.Errorf("payment provider unexpected status: %s", resp.Status)
	}
}

func errorMessage(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return resp.Status
	}
	var body Error
	if err := json.Unmarshal(raw, &body); err != nil {
		return resp.Status
	}
	if msg := strings.TrimSpace(body.Message); msg != "" {
		return msg
	}
	if code := strings.TrimSpace(body.Code); code != "" {
		return code
	}
	return resp.Status
}
