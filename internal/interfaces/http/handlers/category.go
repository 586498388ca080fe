// internal/interfaces/http/handlers/category.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CategoryHandler handles category endpoints
type CategoryHandler struct {
	categories *product.CategoryService
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(categories *product.CategoryService) *CategoryHandler {
	return &CategoryHandler{categories: categories}
}

// List handles GET /categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categories.List()
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Categories retrieved", categories)
}

// Get handles GET /categories/:id
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	category, err := h.categories.GetByID(id)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Category retrieved", category)
}

// Create handles POST /admin/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req product.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid category payload: "+err.Error())
		return
	}

	category, err := h.categories.Create(&req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "Category created", category)
}

// Delete handles DELETE /admin/categories/:id
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.categories.Delete(id); err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Category deleted", nil)
}
