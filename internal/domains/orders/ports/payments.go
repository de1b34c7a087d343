package ports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrPaymentDeclined means the gateway refused the charge; retrying will not help.
	ErrPaymentDeclined = errors.New("payment declined")
	// ErrPaymentUnavailable means no gateway is configured or it could not be reached.
	ErrPaymentUnavailable = errors.New("online payments unavailable")
)

// CaptureRequest asks the gateway to charge an order total. OrderID doubles as idempotency key.
type CaptureRequest struct {
	OrderID string
	UserID  string
	Amount  decimal.Decimal
}

// CaptureReceipt identifies a successful charge.
type CaptureReceipt struct {
	TransactionID string
}

// PaymentGateway is the outbound port for capturing ONLINE payments.
type PaymentGateway interface {
	Capture(ctx context.Context, req CaptureRequest) (*CaptureReceipt, error)
}
