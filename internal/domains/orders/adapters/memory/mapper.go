package memory

import (
	"time"

	"github.com/Apurer/go-gin-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-gin-storefront/internal/platform/memorydb"
)

func toRow(order *domain.Order) memorydb.Order {
	row := memorydb.Order{
		ID:               order.ID,
		UserID:           order.UserID,
		Address:          order.Address,
		Total:            order.Total,
		PaymentMode:      string(order.PaymentMode),
		PaymentStatus:    string(order.PaymentStatus),
		PaymentReference: order.PaymentReference,
		Status:           string(order.Status),
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
		Items:            make([]memorydb.OrderItem, 0, len(order.Items)),
	}
	for _, item := range order.Items {
		row.Items = append(row.Items, memorydb.OrderItem{
			ID:        item.ID,
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return row
}

// applyMutable copies the fields an order may change after creation.
func applyMutable(row memorydb.Order, order *domain.Order) memorydb.Order {
	row.Status = string(order.Status)
	row.PaymentStatus = string(order.PaymentStatus)
	row.PaymentReference = order.PaymentReference
	row.UpdatedAt = order.UpdatedAt
	return row
}

func toDomain(row memorydb.Order, products map[string]memorydb.Product) *domain.Order {
	order := &domain.Order{
		ID:               row.ID,
		UserID:           row.UserID,
		Address:          row.Address,
		Total:            row.Total,
		PaymentMode:      domain.PaymentMode(row.PaymentMode),
		PaymentStatus:    domain.PaymentStatus(row.PaymentStatus),
		PaymentReference: row.PaymentReference,
		Status:           domain.Status(row.Status),
		CreatedAt:        row.CreatedAt,
		UpdatedAt:        row.UpdatedAt,
		Items:            make([]domain.Item, 0, len(row.Items)),
	}
	for _, item := range row.Items {
		di := domain.Item{
			ID:        item.ID,
			OrderID:   item.OrderID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		if product, ok := products[item.ProductID]; ok {
			summary := &domain.ProductSummary{ID: product.ID, Name: product.Name, Price: product.Price}
			if len(product.ImageURLs) > 0 {
				summary.ImageURL = product.ImageURLs[0]
			}
			di.Product = summary
		}
		order.Items = append(order.Items, di)
	}
	return order
}

func restoreCartLine(t *memorydb.Tables, userID string, item memorydb.OrderItem, now time.Time) {
	lines := t.CartLines[userID]
	for i := range lines {
		if lines[i].ProductID == item.ProductID {
			lines[i].Quantity += item.Quantity
			lines[i].UpdatedAt = now
			t.CartLines[userID] = lines
			return
		}
	}
	t.CartLines[userID] = append(lines, memorydb.CartLine{
		UserID:    userID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
