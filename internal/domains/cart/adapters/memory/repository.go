package memory

import (
	"context"

	"github.com/Apurer/go-gin-storefront/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/cart/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/memorydb"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps cart lines in the shared in-memory tables.
type Repository struct {
	db *memorydb.DB
}

func NewRepository(db *memorydb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) AddLine(ctx context.Context, userID, productID string, quantity int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Transaction(func(t *memorydb.Tables) error {
		if _, ok := t.Products[productID]; !ok {
			return ports.ErrProductNotFound
		}
		now := r.db.Now()
		lines := t.CartLines[userID]
		for i := range lines {
			if lines[i].ProductID == productID {
				lines[i].Quantity += quantity
				lines[i].UpdatedAt = now
				t.CartLines[userID] = lines
				return nil
			}
		}
		t.CartLines[userID] = append(lines, memorydb.CartLine{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			CreatedAt: now,
			UpdatedAt: now,
		})
		return nil
	})
}

func (r *Repository) RemoveLine(ctx context.Context, userID, productID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Transaction(func(t *memorydb.Tables) error {
		lines := t.CartLines[userID]
		for i := range lines {
			if lines[i].ProductID != productID {
				continue
			}
			lines = append(lines[:i], lines[i+1:]...)
			if len(lines) == 0 {
				delete(t.CartLines, userID)
			} else {
				t.CartLines[userID] = lines
			}
			return nil
		}
		return ports.ErrLineNotFound
	})
}

func (r *Repository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cart := &domain.Cart{UserID: userID, Lines: []domain.Line{}}
	err := r.db.Read(func(t *memorydb.Tables) error {
		for _, line := range t.SortedCartLines(userID) {
			view := domain.ProductView{}
			if product, ok := t.Products[line.ProductID]; ok {
				view = domain.ProductView{Name: product.Name, Price: product.Price, Stock: product.Stock}
				if len(product.ImageURLs) > 0 {
					view.ImageURL = product.ImageURLs[0]
				}
			}
			cart.Lines = append(cart.Lines, domain.Line{ProductID: line.ProductID, Quantity: line.Quantity, Product: view})
		}
		return nil
	})
	return cart, err
}
