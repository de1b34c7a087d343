package ports

import (
	"context"

	"github.com/Apurer/go-gin-storefront/internal/domains/cart/domain"
)

// AddItemInput adds a product to the caller's cart.
type AddItemInput struct {
	UserID    string
	ProductID string
	Quantity  int
}

// Service exposes cart use cases (inbound port).
type Service interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, input AddItemInput) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID, productID string) error
}
