package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identityports "github.com/Apurer/go-gin-storefront/internal/domains/identity/ports"
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// Access selects the middleware guarding the route.
	Access Access
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// Access levels for routes.
type Access int

const (
	Public Access = iota
	Authenticated
	AdminOnly
)

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	OrdersAPI  OrdersAPI
	CartAPI    CartAPI
	CatalogAPI CatalogAPI
	// Authenticator resolves bearer tokens for guarded routes.
	Authenticator identityports.Authenticator
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	auth := RequireAuth(handleFunctions.Authenticator)
	admin := RequireAdmin()
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		handlers := []gin.HandlerFunc{}
		switch route.Access {
		case Authenticated:
			handlers = append(handlers, auth)
		case AdminOnly:
			handlers = append(handlers, auth, admin)
		}
		handlers = append(handlers, route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, handlers...)
	}
	return router
}

// DefaultHandleFunc answers routes whose handler is not wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"Healthz", http.MethodGet, "/healthz", Public, healthz},
		{"ListOrders", http.MethodGet, "/orders", Authenticated, handleFunctions.OrdersAPI.ListOrders},
		{"GetOrder", http.MethodGet, "/orders/:orderId", Authenticated, handleFunctions.OrdersAPI.GetOrder},
		{"PlaceOrder", http.MethodPost, "/orders", Authenticated, handleFunctions.OrdersAPI.PlaceOrder},
		{"UpdateOrderStatus", http.MethodPut, "/orders/:orderId/status", AdminOnly, handleFunctions.OrdersAPI.UpdateOrderStatus},
		{"ListProducts", http.MethodGet, "/products", Public, handleFunctions.CatalogAPI.ListProducts},
		{"GetProduct", http.MethodGet, "/products/:productId", Public, handleFunctions.CatalogAPI.GetProduct},
		{"UpsertProduct", http.MethodPut, "/products/:productId", AdminOnly, handleFunctions.CatalogAPI.UpsertProduct},
		{"ListCategories", http.MethodGet, "/categories", Public, handleFunctions.CatalogAPI.ListCategories},
		{"ListCategoryProducts", http.MethodGet, "/categories/:categoryId/products", Public, handleFunctions.CatalogAPI.ListCategoryProducts},
		{"UpsertCategory", http.MethodPut, "/categories/:categoryId", AdminOnly, handleFunctions.CatalogAPI.UpsertCategory},
		{"GetCart", http.MethodGet, "/cart", Authenticated, handleFunctions.CartAPI.GetCart},
		{"AddCartItem", http.MethodPost, "/cart/items", Authenticated, handleFunctions.CartAPI.AddItem},
		{"RemoveCartItem", http.MethodDelete, "/cart/items/:productId", Authenticated, handleFunctions.CartAPI.RemoveItem},
	}
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
