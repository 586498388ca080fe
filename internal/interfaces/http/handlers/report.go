// internal/interfaces/http/handlers/report.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/storefront-backend/internal/domain/report"
)

// ReportHandler handles admin reporting endpoints
type ReportHandler struct {
	reports *report.Service
}

// NewReportHandler creates a new report handler
func NewReportHandler(reports *report.Service) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Sales handles GET /admin/reports/sales
func (h *ReportHandler) Sales(c *gin.Context) {
	from, to, ok := h.period(c)
	if !ok {
		return
	}

	summary, err := h.reports.Sales(c.Request.Context(), from, to)
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Sales report generated", summary)
}

// TopProducts handles GET /admin/reports/top-products
func (h *ReportHandler) TopProducts(c *gin.Context) {
	from, to, ok := h.period(c)
	if !ok {
		return
	}

	rows, err := h.reports.TopProducts(c.Request.Context(), from, to, intQuery(c, "limit", 10))
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Top products report generated", rows)
}

// Coupons handles GET /admin/reports/coupons
func (h *ReportHandler) Coupons(c *gin.Context) {
	rows, err := h.reports.Coupons(c.Request.Context())
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, "Coupon report generated", rows)
}

// period parses the from/to query parameters, defaulting to the last
// 30 days.
func (h *ReportHandler) period(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		to = parsed.AddDate(0, 0, 1)
	}

	return from, to, true
}
