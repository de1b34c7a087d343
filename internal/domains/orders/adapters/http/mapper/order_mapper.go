package mapper

import (
	"time"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
)

// PlaceOrderRequest is the POST /orders payload.
type PlaceOrderRequest struct {
	Address     string `json:"address"`
	PaymentMode string `json:"paymentMode"`
}

// UpdateStatusRequest is the PUT /orders/:id/status payload.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// Product is the product summary shown next to an order item.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// OrderItem is the HTTP representation of an order line.
type OrderItem struct {
	ID        string   `json:"id"`
	ProductID string   `json:"productId"`
	Quantity  int      `json:"quantity"`
	Price     string   `json:"price"`
	Product   *Product `json:"product,omitempty"`
}

// Order is the HTTP representation of an order.
type Order struct {
	ID               string      `json:"id"`
	UserID           string      `json:"userId"`
	Address          string      `json:"address"`
	Total            string      `json:"total"`
	PaymentMode      string      `json:"paymentMode"`
	PaymentStatus    string      `json:"paymentStatus"`
	PaymentReference string      `json:"paymentReference,omitempty"`
	Status           string      `json:"status"`
	Items            []OrderItem `json:"items"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

// OrderEnvelope wraps mutations with a human-readable message.
type OrderEnvelope struct {
	Message string `json:"message"`
	Order   Order  `json:"order"`
}

// ToPlaceOrderInput binds the payload to the authenticated caller.
func ToPlaceOrderInput(userID, idempotencyKey string, req PlaceOrderRequest) ports.PlaceOrderInput {
	return ports.PlaceOrderInput{
		UserID:         userID,
		Address:        req.Address,
		PaymentMode:    req.PaymentMode,
		IdempotencyKey: idempotencyKey,
	}
}

func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		ID:               order.ID,
		UserID:           order.UserID,
		Address:          order.Address,
		Total:            order.Total.StringFixed(2),
		PaymentMode:      string(order.PaymentMode),
		PaymentStatus:    string(order.PaymentStatus),
		PaymentReference: order.PaymentReference,
		Status:           string(order.Status),
		Items:            make([]OrderItem, 0, len(order.Items)),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
	for _, item := range order.Items {
		line := OrderItem{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price.StringFixed(2),
		}
		if item.Product != nil {
			line.Product = &Product{
				ID:       item.Product.ID,
				Name:     item.Product.Name,
				Price:    item.Product.Price.StringFixed(2),
				ImageURL: item.Product.ImageURL,
			}
		}
		out.Items = append(out.Items, line)
	}
	return out
}

func FromDomainOrders(orders []*domain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}
