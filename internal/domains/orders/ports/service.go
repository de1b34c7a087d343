package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
)

// PlaceOrderInput is the checkout command. UserID comes from the authenticated identity.
// IdempotencyKey deduplicates checkouts started with the same key. OrderID is optional;
// durable orchestration fixes it up front so a retried reserve finds its own order.
type PlaceOrderInput struct {
	UserID         string
	Address        string
	PaymentMode    string
	IdempotencyKey string
	OrderID        string
}

// UpdateStatusInput is the admin status transition command.
type UpdateStatusInput struct {
	OrderID string
	Status  string
}

// GetOrderInput scopes a lookup to a caller; admins may read any order.
type GetOrderInput struct {
	OrderID string
	UserID  string
	IsAdmin bool
}

// CapturePaymentInput carries what the capture step needs from a reserved order.
type CapturePaymentInput struct {
	OrderID string
	UserID  string
	Total   decimal.Decimal
}

// ConfirmPaymentInput records a successful capture.
type ConfirmPaymentInput struct {
	OrderID       string
	TransactionID string
}

// Service exposes the order workflow to adapters (inbound port).
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	GetOrder(ctx context.Context, input GetOrderInput) (*domain.Order, error)
	UpdateStatus(ctx context.Context, input UpdateStatusInput) (*domain.Order, error)

	// Steps of the ONLINE checkout, used by durable orchestration.
	ReserveOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
	CapturePayment(ctx context.Context, input CapturePaymentInput) (*CaptureReceipt, error)
	ConfirmPayment(ctx context.Context, input ConfirmPaymentInput) (*domain.Order, error)
	ReleaseOrder(ctx context.Context, orderID string) (*domain.Order, error)
}
