// internal/interfaces/http/handlers/discount.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// DiscountHandler handles automatic discount rule endpoints
type DiscountHandler struct {
	promotions *promotion.Service
	engine     *promotion.Engine
	carts      *cart.Service
}

// NewDiscountHandler creates a new discount handler
func NewDiscountHandler(promotions *promotion.Service, engine *promotion.Engine, carts *cart.Service) *DiscountHandler {
	return &DiscountHandler{
		promotions: promotions,
		engine:     engine,
		carts:      carts,
	}
}

// Preview handles GET /discounts/preview, evaluating the rules
// against the caller's cart without placing an order. The preview
// ignores order history, so first-time and usage-capped rules may
// still be withheld at checkout.
func (h *DiscountHandler) Preview(c *gin.Context) {
	userID := middleware.UserID(c)
	crt, err := h.carts.GetCart(userID)
	if err != nil {
		Fail(c, err)
		return
	}

	result, err := h.engine.Calculate(&promotion.Context{
		Cart:   crt,
		UserID: userID,
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Discounts evaluated", result)
}

// List handles GET /admin/discounts
func (h *DiscountHandler) List(c *gin.Context) {
	discounts, total, err := h.promotions.List(intQuery(c, "page", 1), intQuery(c, "limit", 20))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Discounts retrieved", gin.H{
		"discounts": discounts,
		"total":     total,
	})
}

// Get handles GET /admin/discounts/:id
func (h *DiscountHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	found, err := h.promotions.GetByID(id)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Discount retrieved", found)
}

// Create handles POST /admin/discounts
func (h *DiscountHandler) Create(c *gin.Context) {
	var req promotion.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid discount payload: "+err.Error())
		return
	}

	created, err := h.promotions.Create(&req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "Discount created", created)
}

// Update handles PUT /admin/discounts/:id
func (h *DiscountHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req promotion.UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid discount payload")
		return
	}

	updated, err := h.promotions.Update(id, &req)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Discount updated", updated)
}

// Delete handles DELETE /admin/discounts/:id
func (h *DiscountHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.promotions.Delete(id); err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Discount deleted", nil)
}
