package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-storefront/internal/domains/cart/domain"
)

var (
	ErrLineNotFound    = errors.New("cart item not found")
	ErrProductNotFound = errors.New("product not found")
)

// Repository persists cart lines.
type Repository interface {
	// AddLine adds quantity to the user's line for the product, creating it when absent.
	AddLine(ctx context.Context, userID, productID string, quantity int) error
	RemoveLine(ctx context.Context, userID, productID string) error
	// Get returns the cart with current product data, lines in insertion order.
	Get(ctx context.Context, userID string) (*domain.Cart, error)
}
