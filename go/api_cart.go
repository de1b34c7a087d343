package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	carthttpmapper "github.com/Apurer/go-gin-storefront/internal/domains/cart/adapters/http/mapper"
	cartports "github.com/Apurer/go-gin-storefront/internal/domains/cart/ports"
)

// CartAPI wires HTTP transport with the cart service.
type CartAPI struct {
	service cartports.Service
}

func NewCartAPI(service cartports.Service) CartAPI {
	return CartAPI{service: service}
}

// Get /cart
func (api *CartAPI) GetCart(c *gin.Context) {
	principal, _ := principalFrom(c)
	cart, err := api.service.GetCart(c.Request.Context(), principal.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainCart(cart))
}

// Post /cart/items
func (api *CartAPI) AddItem(c *gin.Context) {
	principal, _ := principalFrom(c)
	var payload carthttpmapper.AddItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.ValidationFailed(c, err)
		return
	}
	cart, err := api.service.AddItem(c.Request.Context(), carthttpmapper.ToAddItemInput(principal.UserID, payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carthttpmapper.FromDomainCart(cart))
}

// Delete /cart/items/:productId
func (api *CartAPI) RemoveItem(c *gin.Context) {
	principal, _ := principalFrom(c)
	productID := c.Param("productId")
	if err := api.service.RemoveItem(c.Request.Context(), principal.UserID, productID); err != nil {
		respondLookupError(c, err, "cart item", productID)
		return
	}
	c.Status(http.StatusNoContent)
}
