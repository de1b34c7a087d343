package storefrontserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	orderhttpmapper "github.com/Apurer/go-gin-storefront/internal/domains/orders/adapters/http/mapper"
	ordersports "github.com/Apurer/go-gin-storefront/internal/domains/orders/ports"
)

// IdempotencyKeyHeader lets clients retry POST /orders without placing a second order.
const IdempotencyKeyHeader = "Idempotency-Key"

// OrdersAPI wires HTTP transport with the orders service.
type OrdersAPI struct {
	service ordersports.Service
}

// NewOrdersAPI creates an OrdersAPI.
func NewOrdersAPI(service ordersports.Service) OrdersAPI {
	return OrdersAPI{service: service}
}

// Post /orders
// Place an order from the caller's cart
func (api *OrdersAPI) PlaceOrder(c *gin.Context) {
	principal, _ := principalFrom(c)
	var payload orderhttpmapper.PlaceOrderRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.ValidationFailed(c, err)
		return
	}
	input := orderhttpmapper.ToPlaceOrderInput(principal.UserID, strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)), payload)
	order, err := api.service.PlaceOrder(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, orderhttpmapper.OrderEnvelope{
		Message: "Order Placed Successfully",
		Order:   orderhttpmapper.FromDomainOrder(order),
	})
}

// Get /orders
// List the caller's orders, newest first
func (api *OrdersAPI) ListOrders(c *gin.Context) {
	principal, _ := principalFrom(c)
	orders, err := api.service.ListOrders(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrders(orders))
}

// Get /orders/:orderId
// Find one of the caller's orders
func (api *OrdersAPI) GetOrder(c *gin.Context) {
	principal, _ := principalFrom(c)
	id := c.Param("orderId")
	order, err := api.service.GetOrder(c.Request.Context(), ordersports.GetOrderInput{
		OrderID: id,
		UserID:  principal.UserID,
		IsAdmin: principal.IsAdmin(),
	})
	if err != nil {
		respondLookupError(c, err, "order", id)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.FromDomainOrder(order))
}

// Put /orders/:orderId/status
// Advance an order's fulfillment status (admin)
func (api *OrdersAPI) UpdateOrderStatus(c *gin.Context) {
	var payload orderhttpmapper.UpdateStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.ValidationFailed(c, err)
		return
	}
	id := c.Param("orderId")
	order, err := api.service.UpdateStatus(c.Request.Context(), ordersports.UpdateStatusInput{
		OrderID: id,
		Status:  payload.Status,
	})
	if err != nil {
		respondLookupError(c, err, "order", id)
		return
	}
	c.JSON(http.StatusOK, orderhttpmapper.OrderEnvelope{
		Message: "Order status updated",
		Order:   orderhttpmapper.FromDomainOrder(order),
	})
}
