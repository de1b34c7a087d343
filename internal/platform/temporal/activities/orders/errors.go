package orders

import (
	"errors"
	"fmt"

	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
)

// Application error types carried across the Temporal boundary.
const (
	ErrTypeInvalidPaymentMode = "InvalidPaymentMode"
	ErrTypeInvalidAddress     = "InvalidAddress"
	ErrTypeInvalidInput       = "InvalidInput"
	ErrTypeUnauthorized       = "Unauthorized"
	ErrTypeEmptyCart          = "EmptyCart"
	ErrTypeInvalidTotal       = "InvalidTotal"
	ErrTypeInsufficientStock  = "InsufficientStock"
	ErrTypeNotFound           = "NotFound"
	ErrTypePaymentDeclined    = "PaymentDeclined"
	ErrTypePaymentSettled     = "PaymentSettled"
	ErrTypePaymentUnavailable = "PaymentUnavailable"
	ErrTypePersistence        = "Persistence"
	ErrTypeOrderIDConflict    = "OrderIDConflict"
)

type errorKind struct {
	name      string
	match     error
	rebuild   error
	retryable bool
}

// Most specific kinds first.
var errorKinds = []errorKind{
	{ErrTypeInvalidPaymentMode, domain.ErrInvalidPaymentMode, fmt.Errorf("%w: %w", application.ErrInvalidInput, domain.ErrInvalidPaymentMode), false},
	{ErrTypeInvalidAddress, domain.ErrEmptyAddress, fmt.Errorf("%w: %w", application.ErrInvalidInput, domain.ErrEmptyAddress), false},
	{ErrTypeInvalidInput, application.ErrInvalidInput, application.ErrInvalidInput, false},
	{ErrTypeUnauthorized, application.ErrUnauthorized, application.ErrUnauthorized, false},
	{ErrTypeEmptyCart, domain.ErrEmptyCart, domain.ErrEmptyCart, false},
	{ErrTypeInvalidTotal, domain.ErrInvalidTotal, domain.ErrInvalidTotal, false},
	{ErrTypeInsufficientStock, ports.ErrInsufficientStock, ports.ErrInsufficientStock, false},
	{ErrTypeNotFound, ports.ErrNotFound, ports.ErrNotFound, false},
	{ErrTypePaymentDeclined, ports.ErrPaymentDeclined, ports.ErrPaymentDeclined, false},
	{ErrTypePaymentSettled, domain.ErrPaymentSettled, domain.ErrPaymentSettled, false},
	{ErrTypeOrderIDConflict, ports.ErrOrderIDConflict, ports.ErrOrderIDConflict, false},
	{ErrTypePaymentUnavailable, ports.ErrPaymentUnavailable, ports.ErrPaymentUnavailable, true},
	{ErrTypePersistence, application.ErrPersistence, application.ErrPersistence, true},
}

// ToApplicationError converts a service error into a typed Temporal application error.
// Business rejections are non-retryable; transport and storage failures stay retryable.
func ToApplicationError(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range errorKinds {
		if !errors.Is(err, kind.match) {
			continue
		}
		if kind.retryable {
			return temporal.NewApplicationError(err.Error(), kind.name)
		}
		return temporal.NewNonRetryableApplicationError(err.Error(), kind.name, nil)
	}
	return err
}

// FromWorkflowError maps a workflow failure back onto the orders error sentinels.
// Errors without a known application type are returned unchanged.
func FromWorkflowError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	for _, kind := range errorKinds {
		if kind.name == appErr.Type() {
			return fmt.Errorf("%w: %s", kind.rebuild, appErr.Message())
		}
	}
	return err
}
