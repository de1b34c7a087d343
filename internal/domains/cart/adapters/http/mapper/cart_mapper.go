package mapper

import (
	"github.com/Apurer/go-gin-storefront/internal/domains/cart/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/cart/ports"
)

// AddItemRequest is the POST /cart/items payload.
type AddItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type Product struct {
	Name     string `json:"name"`
	Price    string `json:"price"`
	ImageURL string `json:"imageUrl,omitempty"`
	Stock    int    `json:"stock"`
}

type Line struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Subtotal  string  `json:"subtotal"`
	Product   Product `json:"product"`
}

// Cart is the HTTP representation of the caller's cart.
type Cart struct {
	Items []Line `json:"items"`
	Total string `json:"total"`
}

func ToAddItemInput(userID string, req AddItemRequest) ports.AddItemInput {
	return ports.AddItemInput{UserID: userID, ProductID: req.ProductID, Quantity: req.Quantity}
}

func FromDomainCart(cart *domain.Cart) Cart {
	out := Cart{Items: []Line{}}
	if cart == nil {
		out.Total = "0.00"
		return out
	}
	for _, line := range cart.Lines {
		out.Items = append(out.Items, Line{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Subtotal:  line.Subtotal().StringFixed(2),
			Product: Product{
				Name:     line.Product.Name,
				Price:    line.Product.Price.StringFixed(2),
				ImageURL: line.Product.ImageURL,
				Stock:    line.Product.Stock,
			},
		})
	}
	out.Total = cart.Total().StringFixed(2)
	return out
}
