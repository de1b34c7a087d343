package ports

import (
	"context"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
)

// WorkflowOrchestrator runs the multi-step ONLINE checkout.
type WorkflowOrchestrator interface {
	PlaceOnlineOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error)
}
