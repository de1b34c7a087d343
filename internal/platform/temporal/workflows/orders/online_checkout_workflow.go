package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/temporal/sequences"
)

const (
	// OnlineCheckoutWorkflowName is the public identifier for registering the workflow.
	OnlineCheckoutWorkflowName = "orders.workflows.OnlineCheckout"
	// OnlineCheckoutTaskQueue is the queue consumed by the worker processing checkout workflows.
	OnlineCheckoutTaskQueue = "ONLINE_CHECKOUT"
)

// OnlineCheckoutWorkflowInput captures the checkout command plus the caller's trace.
type OnlineCheckoutWorkflowInput struct {
	Command ports.PlaceOrderInput
	TraceID string
}

// OnlineCheckoutWorkflow places an ONLINE order durably.
func OnlineCheckoutWorkflow(ctx workflow.Context, input OnlineCheckoutWorkflowInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("OnlineCheckoutWorkflow started", withTraceID(input.TraceID, "userId", input.Command.UserID)...)
	order, err := sequences.RunOnlineCheckoutSequence(ctx, input.Command)
	if err != nil {
		logger.Error("OnlineCheckoutWorkflow failed", withTraceID(input.TraceID, "userId", input.Command.UserID, "error", err)...)
		return nil, err
	}
	logger.Info("OnlineCheckoutWorkflow completed", withTraceID(input.TraceID, "orderId", order.ID)...)
	return order, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
