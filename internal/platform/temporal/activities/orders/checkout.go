package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
)

const (
	// ReserveOrderActivityName runs the checkout transaction with payment pending.
	ReserveOrderActivityName = "orders.activities.ReserveOrder"
	// CapturePaymentActivityName charges the reserved total through the gateway.
	CapturePaymentActivityName = "orders.activities.CapturePayment"
	// ConfirmPaymentActivityName marks a reserved order as paid.
	ConfirmPaymentActivityName = "orders.activities.ConfirmPayment"
	// ReleaseOrderActivityName restores stock and cart lines after a failed capture.
	ReleaseOrderActivityName = "orders.activities.ReleaseOrder"
)

// Activities groups the ONLINE checkout steps of the orders bounded context.
type Activities struct {
	service ports.Service
}

// NewActivities wires the orders service into the Temporal activities bundle.
func NewActivities(service ports.Service) *Activities {
	return &Activities{service: service}
}

func (a *Activities) ReserveOrder(ctx context.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if err := a.ensure(); err != nil {
		logger.Error("reserve activity not initialized", "userId", input.UserID)
		return nil, err
	}
	logger.Info("ReserveOrder activity started", "userId", input.UserID)
	order, err := a.service.ReserveOrder(ctx, input)
	if err != nil {
		logger.Error("ReserveOrder activity failed", "userId", input.UserID, "error", err)
		return nil, ToApplicationError(err)
	}
	logger.Info("ReserveOrder activity completed", "orderId", order.ID, "total", order.Total.StringFixed(2))
	return order, nil
}

func (a *Activities) CapturePayment(ctx context.Context, input ports.CapturePaymentInput) (*ports.CaptureReceipt, error) {
	logger := activity.GetLogger(ctx)
	if err := a.ensure(); err != nil {
		logger.Error("capture activity not initialized", "orderId", input.OrderID)
		return nil, err
	}
	logger.Info("CapturePayment activity started", "orderId", input.OrderID, "attempt", activity.GetInfo(ctx).Attempt)
	receipt, err := a.service.CapturePayment(ctx, input)
	if err != nil {
		logger.Error("CapturePayment activity failed", "orderId", input.OrderID, "error", err)
		return nil, ToApplicationError(err)
	}
	logger.Info("CapturePayment activity completed", "orderId", input.OrderID, "transactionId", receipt.TransactionID)
	return receipt, nil
}

func (a *Activities) ConfirmPayment(ctx context.Context, input ports.ConfirmPaymentInput) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if err := a.ensure(); err != nil {
		return nil, err
	}
	order, err := a.service.ConfirmPayment(ctx, input)
	if err != nil {
		logger.Error("ConfirmPayment activity failed", "orderId", input.OrderID, "error", err)
		return nil, ToApplicationError(err)
	}
	logger.Info("ConfirmPayment activity completed", "orderId", order.ID)
	return order, nil
}

func (a *Activities) ReleaseOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	logger := activity.GetLogger(ctx)
	if err := a.ensure(); err != nil {
		return nil, err
	}
	logger.Info("ReleaseOrder activity started", "orderId", orderID)
	order, err := a.service.ReleaseOrder(ctx, orderID)
	if err != nil {
		logger.Error("ReleaseOrder activity failed", "orderId", orderID, "error", err)
		return nil, ToApplicationError(err)
	}
	logger.Info("ReleaseOrder activity completed", "orderId", orderID)
	return order, nil
}

func (a *Activities) ensure() error {
	if a == nil || a.service == nil {
		return errors.New("orders activities not initialized")
	}
	return nil
}
