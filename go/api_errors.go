package storefrontserver

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	cartapp "github.com/Apurer/go-gin-storefront/internal/domains/cart/application"
	cartports "github.com/Apurer/go-gin-storefront/internal/domains/cart/ports"
	catalogapp "github.com/Apurer/go-gin-storefront/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-gin-storefront/internal/domains/catalog/ports"
	ordersapp "github.com/Apurer/go-gin-storefront/internal/domains/orders/application"
	ordersdomain "github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
	apierrors "github.com/Apurer/go-gin-storefront/internal/shared/errors"
)

var responder = apierrors.NewResponder("", mapOrderError, mapCartError, mapCatalogError, mapTimeoutError)

// respondError maps service errors onto RFC 7807 responses.
func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

// respondLookupError names the missing resource when err is a not-found sentinel.
func respondLookupError(c *gin.Context, err error, resourceType, id string) {
	if isNotFound(err) {
		responder.NotFound(c, resourceType, id)
		return
	}
	respondError(c, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, ordersports.ErrNotFound) ||
		errors.Is(err, catalogports.ErrNotFound) ||
		errors.Is(err, catalogports.ErrCategoryNotFound) ||
		errors.Is(err, cartports.ErrLineNotFound)
}

func mapOrderError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersapp.ErrUnauthorized):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrInvalidInput),
		errors.Is(err, ordersdomain.ErrEmptyCart),
		errors.Is(err, ordersdomain.ErrInvalidTotal),
		errors.Is(err, ordersdomain.ErrInvalidTransition):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrInsufficientStock),
		errors.Is(err, ordersdomain.ErrPaymentSettled),
		errors.Is(err, ordersdomain.ErrPaymentNotSettled),
		errors.Is(err, ordersports.ErrOrderIDConflict),
		errors.Is(err, ordersports.ErrIdempotencyConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrPaymentDeclined):
		return apierrors.ErrPaymentDeclined.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrPaymentUnavailable):
		return apierrors.ErrServiceUnavailable.WithDetail("payment service unavailable"), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapCartError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, cartapp.ErrUnauthorized):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, cartapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, cartports.ErrLineNotFound),
		errors.Is(err, cartports.ErrProductNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapCatalogError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, catalogapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, catalogports.ErrNotFound),
		errors.Is(err, catalogports.ErrCategoryNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func mapTimeoutError(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, context.DeadlineExceeded) {
		return apierrors.ErrServiceUnavailable.WithDetail("request timed out"), true
	}
	return apierrors.ProblemDetail{}, false
}
