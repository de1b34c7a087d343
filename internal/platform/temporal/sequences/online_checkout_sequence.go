package sequences

import (
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	orderactivities "github.com/Apurer/go-gin-storefront/internal/platform/temporal/activities/orders"
)

// RunOnlineCheckoutSequence reserves the cart, captures the payment, and confirms the
// order. A failed capture releases the reservation before the error is returned.
// The order ID is fixed before the first reserve attempt, so a retried reserve returns
// the order an earlier attempt already committed.
func RunOnlineCheckoutSequence(ctx workflow.Context, input ports.PlaceOrderInput) (*domain.Order, error) {
	logger := workflow.GetLogger(ctx)
	if input.OrderID == "" {
		if err := workflow.SideEffect(ctx, func(workflow.Context) interface{} {
			return uuid.NewString()
		}).Get(&input.OrderID); err != nil {
			return nil, err
		}
	}
	logger.Info("online checkout sequence started", "userId", input.UserID, "orderId", input.OrderID)
	reserveOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        10 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{orderactivities.ErrTypePaymentUnavailable, orderactivities.ErrTypeOrderIDConflict},
		},
	}
	captureOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 20 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    3,
		},
	}
	settleOptions := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    10,
		},
	}

	var reserved domain.Order
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, reserveOptions), orderactivities.ReserveOrderActivityName, input).Get(ctx, &reserved)
	if err != nil {
		logger.Error("online checkout reserve failed", "userId", input.UserID, "error", err)
		return nil, err
	}
	logger.Info("online checkout reserved", "orderId", reserved.ID)

	var receipt ports.CaptureReceipt
	captureInput := ports.CapturePaymentInput{OrderID: reserved.ID, UserID: reserved.UserID, Total: reserved.Total}
	err = workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, captureOptions), orderactivities.CapturePaymentActivityName, captureInput).Get(ctx, &receipt)
	if err != nil {
		logger.Error("online checkout capture failed, releasing reservation", "orderId", reserved.ID, "error", err)
		releaseCtx, _ := workflow.NewDisconnectedContext(ctx)
		releaseCtx = workflow.WithActivityOptions(releaseCtx, settleOptions)
		if releaseErr := workflow.ExecuteActivity(releaseCtx, orderactivities.ReleaseOrderActivityName, reserved.ID).Get(releaseCtx, nil); releaseErr != nil {
			logger.Error("online checkout release failed", "orderId", reserved.ID, "error", releaseErr)
		}
		return nil, err
	}

	var confirmed domain.Order
	confirmInput := ports.ConfirmPaymentInput{OrderID: reserved.ID, TransactionID: receipt.TransactionID}
	err = workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, settleOptions), orderactivities.ConfirmPaymentActivityName, confirmInput).Get(ctx, &confirmed)
	if err != nil {
		logger.Error("online checkout confirm failed", "orderId", reserved.ID, "error", err)
		return nil, err
	}
	logger.Info("online checkout sequence completed", "orderId", confirmed.ID, "transactionId", receipt.TransactionID)
	return &confirmed, nil
}
