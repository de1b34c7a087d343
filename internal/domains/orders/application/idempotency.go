package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
)

type normalizedPlaceOrder struct {
	UserID      string `json:"userId"`
	Address     string `json:"address"`
	PaymentMode string `json:"paymentMode"`
}

// FingerprintPlaceOrder builds a deterministic hash of the checkout payload (excluding the idempotency key).
func FingerprintPlaceOrder(input ports.PlaceOrderInput) (string, error) {
	payload, err := json.Marshal(normalizedPlaceOrder{
		UserID:      input.UserID,
		Address:     strings.TrimSpace(input.Address),
		PaymentMode: input.PaymentMode,
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// fingerprintOrder hashes the placed order the same way as the request that made it.
func fingerprintOrder(order *domain.Order) (string, error) {
	return FingerprintPlaceOrder(ports.PlaceOrderInput{
		UserID:      order.UserID,
		Address:     order.Address,
		PaymentMode: string(order.PaymentMode),
	})
}

// idempotencyScope keeps keys from different callers apart.
func idempotencyScope(userID, key string) string {
	return userID + ":" + key
}

// replay returns the order previously placed under the key, or nil when the key is new.
func (s *Service) replay(ctx context.Context, input ports.PlaceOrderInput, hash string) (*domain.Order, error) {
	record, err := s.idempotency.Get(ctx, idempotencyScope(input.UserID, input.IdempotencyKey))
	if err != nil {
		return nil, mapError(err)
	}
	if record == nil {
		return nil, nil
	}
	if record.RequestHash != hash {
		return nil, ports.ErrIdempotencyConflict
	}
	order, err := s.repo.GetByID(ctx, record.OrderID)
	if err != nil {
		return nil, mapError(err)
	}
	return order, nil
}

func (s *Service) remember(ctx context.Context, input ports.PlaceOrderInput, hash string, order *domain.Order) error {
	_, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
		Key:         idempotencyScope(input.UserID, input.IdempotencyKey),
		RequestHash: hash,
		OrderID:     order.ID,
	})
	return mapError(err)
}
