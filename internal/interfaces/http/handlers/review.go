// internal/interfaces/http/handlers/review.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// ReviewHandler handles product review endpoints
type ReviewHandler struct {
	reviews *review.Service
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviews *review.Service) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// ListByProduct handles GET /products/:id/reviews
func (h *ReviewHandler) ListByProduct(c *gin.Context) {
	productID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	reviews, total, err := h.reviews.ListByProduct(productID, intQuery(c, "page", 1), intQuery(c, "limit", 20))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Reviews retrieved", gin.H{
		"reviews": reviews,
		"total":   total,
	})
}

// Create handles POST /reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req review.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid review payload: "+err.Error())
		return
	}

	created, err := h.reviews.Create(middleware.UserID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "Review submitted", created)
}

// Delete handles DELETE /reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}
	if err := h.reviews.Delete(id, middleware.UserID(c), middleware.IsAdmin(c)); err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Review deleted", nil)
}
