package domain

import (
	"errors"
	"strings"
)

var (
	ErrMissingCategoryID   = errors.New("category id is required")
	ErrMissingCategoryName = errors.New("category name is required")
)

// Category groups products for browsing.
type Category struct {
	ID    string
	Name  string
	Image string
}

// NewCategory trims the fields and requires an id and a name.
func NewCategory(id, name, image string) (*Category, error) {
	c := &Category{
		ID:    strings.TrimSpace(id),
		Name:  strings.TrimSpace(name),
		Image: strings.TrimSpace(image),
	}
	switch {
	case c.ID == "":
		return nil, ErrMissingCategoryID
	case c.Name == "":
		return nil, ErrMissingCategoryName
	}
	return c, nil
}
