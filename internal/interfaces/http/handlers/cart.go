// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints. Authenticated carts live in the
// database; guest carts are addressed by the X-Session-ID header.
type CartHandler struct {
	carts *cart.Service
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

// Get handles GET /cart
func (h *CartHandler) Get(c *gin.Context) {
	crt, err := h.carts.GetCart(middleware.UserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Cart retrieved", crt)
}

// AddItem handles POST /cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid cart payload: "+err.Error())
		return
	}

	crt, err := h.carts.AddItem(middleware.UserID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Item added to cart", crt)
}

// UpdateItem handles PUT /cart/items/:productId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, ok := uintParam(c, "productId")
	if !ok {
		return
	}

	var req cart.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid quantity payload")
		return
	}

	crt, err := h.carts.UpdateItem(middleware.UserID(c), productID, c.Query("variant"), req.Quantity)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Cart updated", crt)
}

// RemoveItem handles DELETE /cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := uintParam(c, "productId")
	if !ok {
		return
	}

	crt, err := h.carts.RemoveItem(middleware.UserID(c), productID, c.Query("variant"))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Item removed from cart", crt)
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.carts.Clear(middleware.UserID(c)); err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Cart cleared", nil)
}

// GetGuest handles GET /cart/guest
func (h *CartHandler) GetGuest(c *gin.Context) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		BadRequest(c, "X-Session-ID header required")
		return
	}

	crt, err := h.carts.GetGuestCart(c.Request.Context(), sessionID)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Cart retrieved", crt)
}

// AddGuestItem handles POST /cart/guest/items
func (h *CartHandler) AddGuestItem(c *gin.Context) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		BadRequest(c, "X-Session-ID header required")
		return
	}

	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid cart payload: "+err.Error())
		return
	}

	crt, err := h.carts.AddGuestItem(c.Request.Context(), sessionID, &req)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Item added to cart", crt)
}

// Merge handles POST /cart/merge, moving a guest cart into the
// authenticated user's cart after login.
func (h *CartHandler) Merge(c *gin.Context) {
	sessionID := c.GetHeader("X-Session-ID")
	if sessionID == "" {
		BadRequest(c, "X-Session-ID header required")
		return
	}

	crt, err := h.carts.MergeGuestCart(c.Request.Context(), sessionID, middleware.UserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Cart merged", crt)
}
