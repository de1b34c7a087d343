package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-storefront/internal/shared/projection"
)

var (
	ErrNotFound         = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// ProductProjection is a product plus persistence metadata.
type ProductProjection = projection.Projection[*domain.Product]

// CategoryProjection is a category plus persistence metadata.
type CategoryProjection = projection.Projection[*domain.Category]

// ListFilter narrows product listings. Empty fields match everything.
type ListFilter struct {
	CategoryID string
}

// Repository persists catalog products and categories.
type Repository interface {
	Upsert(ctx context.Context, product *domain.Product) (*ProductProjection, error)
	GetByID(ctx context.Context, id string) (*ProductProjection, error)
	// List returns products ordered by name.
	List(ctx context.Context, filter ListFilter) ([]*ProductProjection, error)

	UpsertCategory(ctx context.Context, category *domain.Category) (*CategoryProjection, error)
	GetCategory(ctx context.Context, id string) (*CategoryProjection, error)
	// ListCategories returns categories ordered by name.
	ListCategories(ctx context.Context) ([]*CategoryProjection, error)
}
