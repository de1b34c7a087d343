package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/ports"
)

// UpsertProductRequest is the PUT /products/:id payload. Price accepts a JSON number or string.
type UpsertProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	CategoryID  string          `json:"categoryId"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURLs   []string        `json:"imageUrls"`
}

// Product is the HTTP representation of a catalog product.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CategoryID  string    `json:"categoryId,omitempty"`
	Price       string    `json:"price"`
	Stock       int       `json:"stock"`
	ImageURLs   []string  `json:"imageUrls"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func ToUpsertInput(id string, req UpsertProductRequest) ports.UpsertProductInput {
	return ports.UpsertProductInput{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Stock:       req.Stock,
		ImageURLs:   req.ImageURLs,
	}
}

func FromProjection(p *ports.ProductProjection) Product {
	if p == nil || p.Entity == nil {
		return Product{}
	}
	urls := p.Entity.ImageURLs
	if urls == nil {
		urls = []string{}
	}
	return Product{
		ID:          p.Entity.ID,
		Name:        p.Entity.Name,
		Description: p.Entity.Description,
		CategoryID:  p.Entity.CategoryID,
		Price:       p.Entity.Price.StringFixed(2),
		Stock:       p.Entity.Stock,
		ImageURLs:   urls,
		CreatedAt:   p.Metadata.CreatedAt,
		UpdatedAt:   p.Metadata.UpdatedAt,
	}
}

func FromProjectionList(list []*ports.ProductProjection) []Product {
	result := make([]Product, 0, len(list))
	for _, p := range list {
		result = append(result, FromProjection(p))
	}
	return result
}
