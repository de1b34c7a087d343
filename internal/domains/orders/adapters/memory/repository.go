package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/memorydb"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order persistence adapter sharing tables with the cart and catalog adapters.
type Repository struct {
	db *memorydb.DB
}

func NewRepository(db *memorydb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Checkout(ctx context.Context, userID, orderID string, fn ports.CheckoutFunc) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err := r.db.Transaction(func(t *memorydb.Tables) error {
		if orderID != "" {
			if existing, ok := t.Orders[orderID]; ok {
				return existingOrder(existing.UserID, userID, orderID)
			}
		}
		cart := t.SortedCartLines(userID)
		lines := make([]domain.CartLine, 0, len(cart))
		for _, line := range cart {
			// Lines of deleted products are dropped, as the SQL join does.
			product, ok := t.Products[line.ProductID]
			if !ok {
				continue
			}
			lines = append(lines, domain.CartLine{ProductID: line.ProductID, Quantity: line.Quantity, UnitPrice: product.Price})
		}
		order, err := fn(lines)
		if err != nil {
			return err
		}
		now := r.db.Now()
		for _, item := range order.Items {
			product := t.Products[item.ProductID]
			if product.Stock < item.Quantity {
				return fmt.Errorf("%w: product %s", ports.ErrInsufficientStock, item.ProductID)
			}
			product.Stock -= item.Quantity
			product.UpdatedAt = now
			t.Products[item.ProductID] = product
		}
		t.Orders[order.ID] = toRow(order)
		delete(t.CartLines, userID)
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

// existingOrder accepts a stored order only when it belongs to the caller.
func existingOrder(ownerID, userID, orderID string) error {
	if ownerID != userID {
		return fmt.Errorf("%w: order %s", ports.ErrOrderIDConflict, orderID)
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, orderID string, fn ports.MutateFunc) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err := r.db.Transaction(func(t *memorydb.Tables) error {
		row, ok := t.Orders[orderID]
		if !ok {
			return ports.ErrNotFound
		}
		order := toDomain(row, t.Products)
		if err := fn(order); err != nil {
			return err
		}
		t.Orders[orderID] = applyMutable(row, order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

func (r *Repository) Release(ctx context.Context, orderID string, fn ports.MutateFunc) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err := r.db.Transaction(func(t *memorydb.Tables) error {
		row, ok := t.Orders[orderID]
		if !ok {
			return ports.ErrNotFound
		}
		order := toDomain(row, t.Products)
		if err := fn(order); err != nil {
			return err
		}
		now := r.db.Now()
		for _, item := range row.Items {
			if product, ok := t.Products[item.ProductID]; ok {
				product.Stock += item.Quantity
				product.UpdatedAt = now
				t.Products[item.ProductID] = product
			}
			restoreCartLine(t, row.UserID, item, now)
		}
		t.Orders[orderID] = applyMutable(row, order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, orderID)
}

func (r *Repository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var order *domain.Order
	err := r.db.Read(func(t *memorydb.Tables) error {
		row, ok := t.Orders[orderID]
		if !ok {
			return ports.ErrNotFound
		}
		order = toDomain(row, t.Products)
		return nil
	})
	return order, err
}

func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	orders := []*domain.Order{}
	err := r.db.Read(func(t *memorydb.Tables) error {
		for _, row := range t.Orders {
			if row.UserID == userID {
				orders = append(orders, toDomain(row, t.Products))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].ID > orders[j].ID
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}
