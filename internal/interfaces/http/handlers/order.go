// internal/interfaces/http/handlers/order.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// OrderHandler handles order endpoints
type OrderHandler struct {
	orders *order.Service
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create handles POST /orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req order.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid order payload: "+err.Error())
		return
	}

	ord, err := h.orders.Create(middleware.UserID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "Order placed", ord)
}

// List handles GET /orders
func (h *OrderHandler) List(c *gin.Context) {
	resp, err := h.orders.List(&order.ListFilter{
		UserID: middleware.UserID(c),
		Status: c.Query("status"),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 20),
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Orders retrieved", resp)
}

// Get handles GET /orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	ord, err := h.orders.GetByID(id, middleware.UserID(c), middleware.IsAdmin(c))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Order retrieved", ord)
}

// Cancel handles POST /orders/:id/cancel
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	ord, err := h.orders.Cancel(id, middleware.UserID(c), middleware.IsAdmin(c), req.Reason)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Order cancelled", ord)
}

// ListAll handles GET /admin/orders
func (h *OrderHandler) ListAll(c *gin.Context) {
	resp, err := h.orders.List(&order.ListFilter{
		Status: c.Query("status"),
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 20),
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Orders retrieved", resp)
}

// UpdateStatus handles PUT /admin/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req order.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid status payload: "+err.Error())
		return
	}

	ord, err := h.orders.UpdateStatus(id, middleware.UserID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Order status updated", ord)
}
