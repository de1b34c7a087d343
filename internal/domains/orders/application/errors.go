package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
)

var (
	// ErrInvalidInput signals a malformed request field.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrUnauthorized signals that no caller identity was supplied.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPersistence wraps storage failures that are not part of the workflow contract.
	ErrPersistence = errors.New("order persistence failure")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, domain.ErrInvalidPaymentMode),
		errors.Is(err, domain.ErrEmptyAddress),
		errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidOrderID):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrPersistence),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidTotal),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrPaymentSettled),
		errors.Is(err, domain.ErrPaymentNotSettled),
		errors.Is(err, ports.ErrOrderIDConflict),
		errors.Is(err, ports.ErrNotFound),
		errors.Is(err, ports.ErrInsufficientStock),
		errors.Is(err, ports.ErrPaymentDeclined),
		errors.Is(err, ports.ErrPaymentUnavailable),
		errors.Is(err, ports.ErrIdempotencyConflict),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
}
