package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/domain"
)

// ErrInvalidInput signals a malformed product or category definition.
var ErrInvalidInput = errors.New("invalid product input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrMissingID) ||
		errors.Is(err, domain.ErrMissingName) ||
		errors.Is(err, domain.ErrNegativePrice) ||
		errors.Is(err, domain.ErrNegativeStock) ||
		errors.Is(err, domain.ErrMissingCategoryID) ||
		errors.Is(err, domain.ErrMissingCategoryName) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
