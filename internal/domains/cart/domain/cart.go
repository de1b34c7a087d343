package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingProduct  = errors.New("productId is required")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

// ProductView is the catalog data shown next to a cart line.
type ProductView struct {
	Name     string
	Price    decimal.Decimal
	ImageURL string
	Stock    int
}

// Line is one product in a cart. Quantities of the same product are merged.
type Line struct {
	ProductID string
	Quantity  int
	Product   ProductView
}

// Subtotal prices the line at the current product price.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the caller's pending selection.
type Cart struct {
	UserID string
	Lines  []Line
}

// Total sums the line subtotals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ValidateLine checks an add-to-cart request.
func ValidateLine(productID string, quantity int) (string, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return "", ErrMissingProduct
	}
	if quantity <= 0 {
		return "", ErrInvalidQuantity
	}
	return productID, nil
}
