package mapper

import (
	"time"

	"github.com/Apurer/go-gin-storefront/internal/domains/catalog/ports"
)

// UpsertCategoryRequest is the PUT /categories/:id payload.
type UpsertCategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Image string `json:"image"`
}

// Category is the HTTP representation of a catalog category.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func ToUpsertCategoryInput(id string, req UpsertCategoryRequest) ports.UpsertCategoryInput {
	return ports.UpsertCategoryInput{ID: id, Name: req.Name, Image: req.Image}
}

func FromCategoryProjection(p *ports.CategoryProjection) Category {
	if p == nil || p.Entity == nil {
		return Category{}
	}
	return Category{
		ID:        p.Entity.ID,
		Name:      p.Entity.Name,
		Image:     p.Entity.Image,
		CreatedAt: p.Metadata.CreatedAt,
		UpdatedAt: p.Metadata.UpdatedAt,
	}
}

func FromCategoryProjectionList(list []*ports.CategoryProjection) []Category {
	result := make([]Category, 0, len(list))
	for _, p := range list {
		result = append(result, FromCategoryProjection(p))
	}
	return result
}
