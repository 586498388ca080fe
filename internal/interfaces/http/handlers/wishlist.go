// internal/interfaces/http/handlers/wishlist.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// WishlistHandler handles wishlist endpoints
type WishlistHandler struct {
	wishlists *wishlist.Service
}

// NewWishlistHandler creates a new wishlist handler
func NewWishlistHandler(wishlists *wishlist.Service) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists}
}

// List handles GET /wishlist
func (h *WishlistHandler) List(c *gin.Context) {
	items, err := h.wishlists.List(middleware.UserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Wishlist retrieved", items)
}

// Add handles POST /wishlist/:productId
func (h *WishlistHandler) Add(c *gin.Context) {
	productID, ok := uintParam(c, "productId")
	if !ok {
		return
	}
	if err := h.wishlists.Add(middleware.UserID(c), productID); err != nil {
		Fail(c, err)
		return
	}
	Created(c, "Product added to wishlist", nil)
}

// Remove handles DELETE /wishlist/:productId
func (h *WishlistHandler) Remove(c *gin.Context) {
	productID, ok := uintParam(c, "productId")
	if !ok {
		return
	}
	if err := h.wishlists.Remove(middleware.UserID(c), productID); err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Product removed from wishlist", nil)
}
