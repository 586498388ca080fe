// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// InventoryHandler handles inventory endpoints
type InventoryHandler struct {
	inventory *inventory.Service
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inv *inventory.Service) *InventoryHandler {
	return &InventoryHandler{inventory: inv}
}

// Adjust handles POST /admin/inventory/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req inventory.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid adjustment payload: "+err.Error())
		return
	}

	log, err := h.inventory.Adjust(middleware.UserID(c), &req)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, "Stock adjusted", log)
}

// Logs handles GET /admin/inventory/logs
func (h *InventoryHandler) Logs(c *gin.Context) {
	productID, _ := strconv.ParseUint(c.Query("product_id"), 10, 32)

	logs, total, err := h.inventory.GetLogs(&inventory.LogFilter{
		ProductID: uint(productID),
		Type:      c.Query("type"),
		Page:      intQuery(c, "page", 1),
		Limit:     intQuery(c, "limit", 50),
	})
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Inventory logs retrieved", gin.H{
		"logs":  logs,
		"total": total,
	})
}

// LowStock handles GET /admin/inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	products, err := h.inventory.LowStock()
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Low stock products retrieved", products)
}

// Stats handles GET /admin/inventory/stats
func (h *InventoryHandler) Stats(c *gin.Context) {
	stats, err := h.inventory.GetStats()
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Inventory stats retrieved", stats)
}
