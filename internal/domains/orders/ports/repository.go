package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrOrderIDConflict reports a preassigned order ID already used by another user.
	ErrOrderIDConflict = errors.New("order id already taken")
)

// CheckoutFunc builds the order from the cart lines read inside the checkout transaction.
// Returning an error aborts the transaction before anything is written.
type CheckoutFunc func(lines []domain.CartLine) (*domain.Order, error)

// MutateFunc changes a loaded order in place. Returning an error aborts the update.
type MutateFunc func(order *domain.Order) error

// Repository persists orders and owns the transactional boundary of checkout.
type Repository interface {
	// Checkout locks the user's cart, prices it at current product prices, and persists the
	// order built by fn together with its items, the stock decrements, and the cart deletion.
	// When orderID is set and already stored, that order is returned and nothing is written,
	// which makes a retried checkout with a preassigned ID a no-op. Cart lines whose product
	// no longer exists are skipped.
	Checkout(ctx context.Context, userID, orderID string, fn CheckoutFunc) (*domain.Order, error)
	// Update loads the order under a row lock, applies fn, and persists the mutable fields.
	Update(ctx context.Context, orderID string, fn MutateFunc) (*domain.Order, error)
	// Release returns the order's quantities to stock and to the owner's cart, then applies fn,
	// all in one transaction.
	Release(ctx context.Context, orderID string, fn MutateFunc) (*domain.Order, error)
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	// ListByUser returns the user's orders newest first, with items and product summaries.
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
}
