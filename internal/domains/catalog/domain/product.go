package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrMissingID     = errors.New("product id is required")
	ErrMissingName   = errors.New("product name is required")
	ErrNegativePrice = errors.New("price must not be negative")
	ErrNegativeStock = errors.New("stock must not be negative")
)

// Product is a sellable catalog entry.
type Product struct {
	ID          string
	Name        string
	Description string
	CategoryID  string
	Price       decimal.Decimal
	Stock       int
	ImageURLs   []string
}

// NewProduct validates and normalizes a product definition.
func NewProduct(id, name, description, categoryID string, price decimal.Decimal, stock int, imageURLs []string) (*Product, error) {
	p := &Product{
		ID:          strings.TrimSpace(id),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		CategoryID:  strings.TrimSpace(categoryID),
		Price:       price,
		Stock:       stock,
		ImageURLs:   cleanURLs(imageURLs),
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) Validate() error {
	switch {
	case p.ID == "":
		return ErrMissingID
	case p.Name == "":
		return ErrMissingName
	case p.Price.IsNegative():
		return ErrNegativePrice
	case p.Stock < 0:
		return ErrNegativeStock
	}
	return nil
}

// InStock reports whether at least qty units are available.
func (p *Product) InStock(qty int) bool {
	return qty > 0 && p.Stock >= qty
}

// PrimaryImage returns the first image URL, if any.
func (p *Product) PrimaryImage() string {
	if len(p.ImageURLs) == 0 {
		return ""
	}
	return p.ImageURLs[0]
}

func cleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}
