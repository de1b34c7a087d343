package application

import (
	"context"
	"strings"

	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/ports"
)

// Service orchestrates catalog use cases.
type Service struct {
	repo ports.Repository
}

// NewService wires the catalog service with its repository.
func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListProducts(ctx context.Context, filter ports.ListFilter) ([]*ports.ProductProjection, error) {
	filter.CategoryID = strings.TrimSpace(filter.CategoryID)
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, mapError(err)
	}
	return products, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (*ports.ProductProjection, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ports.ErrNotFound
	}
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return product, nil
}

func (s *Service) UpsertProduct(ctx context.Context, input ports.UpsertProductInput) (*ports.ProductProjection, error) {
	product, err := domain.NewProduct(input.ID, input.Name, input.Description, input.CategoryID, input.Price, input.Stock, input.ImageURLs)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Upsert(ctx, product)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]*ports.CategoryProjection, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return categories, nil
}

func (s *Service) ListCategoryProducts(ctx context.Context, categoryID string) ([]*ports.ProductProjection, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return nil, ports.ErrCategoryNotFound
	}
	if _, err := s.repo.GetCategory(ctx, categoryID); err != nil {
		return nil, mapError(err)
	}
	return s.ListProducts(ctx, ports.ListFilter{CategoryID: categoryID})
}

func (s *Service) UpsertCategory(ctx context.Context, input ports.UpsertCategoryInput) (*ports.CategoryProjection, error) {
	category, err := domain.NewCategory(input.ID, input.Name, input.Image)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.UpsertCategory(ctx, category)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

var _ ports.Service = (*Service)(nil)
