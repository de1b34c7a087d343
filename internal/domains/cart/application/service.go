package application

import (
	"context"
	"strings"

	"github.com/Apurer/go-gin-storefront/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/cart/ports"
)

// Service orchestrates cart use cases.
type Service struct {
	repo ports.Repository
}

// NewService wires the cart service with its repository.
func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthorized
	}
	cart, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return cart, nil
}

func (s *Service) AddItem(ctx context.Context, input ports.AddItemInput) (*domain.Cart, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, ErrUnauthorized
	}
	productID, err := domain.ValidateLine(input.ProductID, input.Quantity)
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.repo.AddLine(ctx, input.UserID, productID, input.Quantity); err != nil {
		return nil, mapError(err)
	}
	return s.GetCart(ctx, input.UserID)
}

func (s *Service) RemoveItem(ctx context.Context, userID, productID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUnauthorized
	}
	return mapError(s.repo.RemoveLine(ctx, userID, strings.TrimSpace(productID)))
}

var _ ports.Service = (*Service)(nil)
