package storefrontserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cataloghttpmapper "github.com/Apurer/go-gin-storefront/internal/domains/catalog/adapters/http/mapper"
	catalogports "github.com/Apurer/go-gin-storefront/internal/domains/catalog/ports"
)

// CatalogAPI wires HTTP transport with the catalog service.
type CatalogAPI struct {
	service catalogports.Service
}

func NewCatalogAPI(service catalogports.Service) CatalogAPI {
	return CatalogAPI{service: service}
}

// Get /products
// List products, optionally by category
func (api *CatalogAPI) ListProducts(c *gin.Context) {
	products, err := api.service.ListProducts(c.Request.Context(), catalogports.ListFilter{CategoryID: c.Query("categoryId")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromProjectionList(products))
}

// Get /products/:productId
func (api *CatalogAPI) GetProduct(c *gin.Context) {
	id := c.Param("productId")
	product, err := api.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, err, "product", id)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromProjection(product))
}

// Put /products/:productId
// Create or replace a product (admin)
func (api *CatalogAPI) UpsertProduct(c *gin.Context) {
	var payload cataloghttpmapper.UpsertProductRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.ValidationFailed(c, err)
		return
	}
	product, err := api.service.UpsertProduct(c.Request.Context(), cataloghttpmapper.ToUpsertInput(c.Param("productId"), payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromProjection(product))
}

// Get /categories
func (api *CatalogAPI) ListCategories(c *gin.Context) {
	categories, err := api.service.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromCategoryProjectionList(categories))
}

// Get /categories/:categoryId/products
func (api *CatalogAPI) ListCategoryProducts(c *gin.Context) {
	id := c.Param("categoryId")
	products, err := api.service.ListCategoryProducts(c.Request.Context(), id)
	if err != nil {
		respondLookupError(c, err, "category", id)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromProjectionList(products))
}

// Put /categories/:categoryId
// Create or replace a category (admin)
func (api *CatalogAPI) UpsertCategory(c *gin.Context) {
	var payload cataloghttpmapper.UpsertCategoryRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		responder.ValidationFailed(c, err)
		return
	}
	category, err := api.service.UpsertCategory(c.Request.Context(), cataloghttpmapper.ToUpsertCategoryInput(c.Param("categoryId"), payload))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cataloghttpmapper.FromCategoryProjection(category))
}
