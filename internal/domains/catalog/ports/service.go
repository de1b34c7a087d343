package ports

import (
	"context"

	"github.com/shopspring/decimal"
)

// UpsertProductInput creates or replaces a product.
type UpsertProductInput struct {
	ID          string
	Name        string
	Description string
	CategoryID  string
	Price       decimal.Decimal
	Stock       int
	ImageURLs   []string
}

// UpsertCategoryInput creates or replaces a category.
type UpsertCategoryInput struct {
	ID    string
	Name  string
	Image string
}

// Service exposes catalog use cases (inbound port).
type Service interface {
	ListProducts(ctx context.Context, filter ListFilter) ([]*ProductProjection, error)
	GetProduct(ctx context.Context, id string) (*ProductProjection, error)
	UpsertProduct(ctx context.Context, input UpsertProductInput) (*ProductProjection, error)

	ListCategories(ctx context.Context) ([]*CategoryProjection, error)
	// ListCategoryProducts returns the products of an existing category, ordered by name.
	ListCategoryProducts(ctx context.Context, categoryID string) ([]*ProductProjection, error)
	UpsertCategory(ctx context.Context, input UpsertCategoryInput) (*CategoryProjection, error)
}
