package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	paymentsclient "github.com/Apurer/go-gin-storefront/internal/clients/http/payments"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
)

// Gateway implements the outbound payment port over the provider HTTP client.
type Gateway struct {
	client   *paymentsclient.Client
	currency string
}

// NewGateway wires a payment client into the gateway adapter.
func NewGateway(client *paymentsclient.Client, currency string) *Gateway {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = "USD"
	}
	return &Gateway{client: client, currency: currency}
}

// Capture charges the order total. The order id is the idempotency key so retries of the
// same order never charge twice.
func (g *Gateway) Capture(ctx context.Context, req ports.CaptureRequest) (*ports.CaptureReceipt, error) {
	if g == nil || g.client == nil {
		return nil, ports.ErrPaymentUnavailable
	}
	resp, err := g.client.Charge(ctx, ToChargeRequest(req, g.currency), paymentsclient.WithIdempotencyKey(req.OrderID))
	if err != nil {
		if errors.Is(err, paymentsclient.ErrDeclined) {
			return nil, fmt.Errorf("%w: %w", ports.ErrPaymentDeclined, err)
		}
		return nil, fmt.Errorf("%w: %w", ports.ErrPaymentUnavailable, err)
	}
	return &ports.CaptureReceipt{TransactionID: resp.TransactionID}, nil
}

// ToChargeRequest converts a capture into the provider payload shape.
func ToChargeRequest(req ports.CaptureRequest, currency string) paymentsclient.ChargeRequest {
	return paymentsclient.ChargeRequest{
		Reference:  req.OrderID,
		CustomerID: req.UserID,
		Amount:     req.Amount.StringFixed(2),
		Currency:   currency,
	}
}

var _ ports.PaymentGateway = (*Gateway)(nil)
