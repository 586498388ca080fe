// internal/interfaces/http/handlers/product.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// ProductHandler handles catalog endpoints
type ProductHandler struct {
	products *product.Service
}

// NewProductHandler creates a new product handler
func NewProductHandler(products *product.Service) *ProductHandler {
	return &ProductHandler{products: products}
}

// List handles GET /products
func (h *ProductHandler) List(c *gin.Context) {
	categoryID, _ := strconv.ParseUint(c.Query("category_id"), 10, 32)
	minPrice, _ := strconv.ParseInt(c.Query("min_price"), 10, 64)
	maxPrice, _ := strconv.ParseInt(c.Query("max_price"), 10, 64)

	filter := &product.ListFilter{
		Query:      c.Query("q"),
		CategoryID: uint(categoryID),
		Brand:      c.Query("brand"),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		InStock:    c.Query("in_stock") == "true",
		Featured:   c.Query("featured") == "true",
		SortBy:     c.Query("sort"),
		Page:       intQuery(c, "page", 1),
		Limit:      intQuery(c, "limit", 20),
	}

	resp, err := h.products.List(filter)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Products retrieved", resp)
}

// GetBySlug handles GET /products/:slug
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	p, err := h.products.GetBySlug(c.Param("slug"))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Product retrieved", p)
}

// Create handles POST /admin/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req product.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid product payload: "+err.Error())
		return
	}

	p, err := h.products.Create(&req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "Product created", p)
}

// Update handles PUT /admin/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req product.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid product payload")
		return
	}

	p, err := h.products.Update(id, &req)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Product updated", p)
}

// Delete handles DELETE /admin/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(id); err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Product deleted", nil)
}
