// internal/interfaces/http/handlers/coupon.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CouponHandler handles coupon endpoints
type CouponHandler struct {
	coupons *coupon.Service
	carts   *cart.Service
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(coupons *coupon.Service, carts *cart.Service) *CouponHandler {
	return &CouponHandler{
		coupons: coupons,
		carts:   carts,
	}
}

// Validate handles POST /coupons/validate, quoting a coupon against
// the caller's current cart without consuming it.
func (h *CouponHandler) Validate(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Coupon code required")
		return
	}

	userID := middleware.UserID(c)
	crt, err := h.carts.GetCart(userID)
	if err != nil {
		Fail(c, err)
		return
	}

	quote, err := h.coupons.Validate(userID, req.Code, crt)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Coupon is valid", quote)
}

// Apply handles POST /coupons/apply. It quotes the coupon the same way
// Validate does and additionally reports the cart total after discount.
// The coupon is only consumed at checkout.
func (h *CouponHandler) Apply(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Coupon code required")
		return
	}

	userID := middleware.UserID(c)
	crt, err := h.carts.GetCart(userID)
	if err != nil {
		Fail(c, err)
		return
	}

	quote, err := h.coupons.Validate(userID, req.Code, crt)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Coupon applied", gin.H{
		"coupon":          quote,
		"discount_amount": quote.DiscountAmount,
		"final_total":     crt.Subtotal - quote.DiscountAmount,
	})
}

// List handles GET /admin/coupons
func (h *CouponHandler) List(c *gin.Context) {
	coupons, total, err := h.coupons.List(intQuery(c, "page", 1), intQuery(c, "limit", 20))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Coupons retrieved", gin.H{
		"coupons": coupons,
		"total":   total,
	})
}

// Create handles POST /admin/coupons
func (h *CouponHandler) Create(c *gin.Context) {
	var req coupon.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid coupon payload: "+err.Error())
		return
	}

	created, err := h.coupons.Create(&req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "Coupon created", created)
}

// Get handles GET /admin/coupons/:code
func (h *CouponHandler) Get(c *gin.Context) {
	found, err := h.coupons.GetByCode(c.Param("code"))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Coupon retrieved", found)
}

// Update handles PUT /admin/coupons/:code
func (h *CouponHandler) Update(c *gin.Context) {
	var req coupon.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid coupon payload")
		return
	}

	updated, err := h.coupons.Update(c.Param("code"), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Coupon updated", updated)
}

// Delete handles DELETE /admin/coupons/:code
func (h *CouponHandler) Delete(c *gin.Context) {
	if err := h.coupons.Delete(c.Param("code")); err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Coupon deleted", nil)
}
