package memory

import (
	"context"
	"sort"

	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/ports"
	"github.com/Apurer/go-gin-storefront/internal/platform/memorydb"
	"github.com/Apurer/go-gin-storefront/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps products in the shared in-memory tables.
type Repository struct {
	db *memorydb.DB
}

func NewRepository(db *memorydb.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Upsert(ctx context.Context, product *domain.Product) (*ports.ProductProjection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err := r.db.Transaction(func(t *memorydb.Tables) error {
		now := r.db.Now()
		row := memorydb.Product{
			ID:          product.ID,
			Name:        product.Name,
			Description: product.Description,
			CategoryID:  product.CategoryID,
			Price:       product.Price,
			Stock:       product.Stock,
			ImageURLs:   append([]string(nil), product.ImageURLs...),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if existing, ok := t.Products[product.ID]; ok {
			row.CreatedAt = existing.CreatedAt
		}
		t.Products[product.ID] = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, product.ID)
}

func (r *Repository) GetByID(ctx context.Context, id string) (*ports.ProductProjection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *ports.ProductProjection
	err := r.db.Read(func(t *memorydb.Tables) error {
		row, ok := t.Products[id]
		if !ok {
			return ports.ErrNotFound
		}
		out = toProjection(row)
		return nil
	})
	return out, err
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]*ports.ProductProjection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []*ports.ProductProjection{}
	err := r.db.Read(func(t *memorydb.Tables) error {
		for _, row := range t.Products {
			if filter.CategoryID != "" && row.CategoryID != filter.CategoryID {
				continue
			}
			out = append(out, toProjection(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Entity.Name == out[j].Entity.Name {
			return out[i].Entity.ID < out[j].Entity.ID
		}
		return out[i].Entity.Name < out[j].Entity.Name
	})
	return out, nil
}

func (r *Repository) UpsertCategory(ctx context.Context, category *domain.Category) (*ports.CategoryProjection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	err := r.db.Transaction(func(t *memorydb.Tables) error {
		now := r.db.Now()
		row := memorydb.Category{ID: category.ID, Name: category.Name, Image: category.Image, CreatedAt: now, UpdatedAt: now}
		if existing, ok := t.Categories[category.ID]; ok {
			row.CreatedAt = existing.CreatedAt
		}
		t.Categories[category.ID] = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetCategory(ctx, category.ID)
}

func (r *Repository) GetCategory(ctx context.Context, id string) (*ports.CategoryProjection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out *ports.CategoryProjection
	err := r.db.Read(func(t *memorydb.Tables) error {
		row, ok := t.Categories[id]
		if !ok {
			return ports.ErrCategoryNotFound
		}
		out = toCategoryProjection(row)
		return nil
	})
	return out, err
}

func (r *Repository) ListCategories(ctx context.Context) ([]*ports.CategoryProjection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := []*ports.CategoryProjection{}
	err := r.db.Read(func(t *memorydb.Tables) error {
		for _, row := range t.Categories {
			out = append(out, toCategoryProjection(row))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Entity.Name == out[j].Entity.Name {
			return out[i].Entity.ID < out[j].Entity.ID
		}
		return out[i].Entity.Name < out[j].Entity.Name
	})
	return out, nil
}

func toCategoryProjection(row memorydb.Category) *ports.CategoryProjection {
	return &ports.CategoryProjection{
		Entity:   &domain.Category{ID: row.ID, Name: row.Name, Image: row.Image},
		Metadata: projection.Metadata{CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
	}
}

func toProjection(row memorydb.Product) *ports.ProductProjection {
	return &ports.ProductProjection{
		Entity: &domain.Product{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			CategoryID:  row.CategoryID,
			Price:       row.Price,
			Stock:       row.Stock,
			ImageURLs:   append([]string(nil), row.ImageURLs...),
		},
		Metadata: projection.Metadata{CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt},
	}
}
