// internal/domain/report/service.go
package report

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	redisdb "github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
)

const cacheTTL = 5 * time.Minute

// SalesSummary aggregates orders over a period
type SalesSummary struct {
	From              time.Time `json:"from"`
	To                time.Time `json:"to"`
	OrderCount        int64     `json:"order_count"`
	Revenue           int64     `json:"revenue"`
	DiscountGiven     int64     `json:"discount_given"`
	AverageOrderValue int64     `json:"average_order_value"`
}

// ProductSales is one row of the top products report
type ProductSales struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitsSold   int64  `json:"units_sold"`
	Revenue     int64  `json:"revenue"`
}

// CouponPerformance is one row of the coupon report
type CouponPerformance struct {
	Code          string `json:"code"`
	Redemptions   int64  `json:"redemptions"`
	TotalDiscount int64  `json:"total_discount"`
}

// Service builds read-only reports from order data. Results are
// cached in Redis so heavy aggregations stay off the write path.
type Service struct {
	db    *gorm.DB
	redis *redisdb.Client
}

// NewService creates a new report service
func NewService(db *gorm.DB, redisClient *redisdb.Client) *Service {
	return &Service{
		db:    db,
		redis: redisClient,
	}
}

// Sales returns the sales summary for a period. Cancelled orders are
// excluded.
func (s *Service) Sales(ctx context.Context, from, to time.Time) (*SalesSummary, error) {
	key := fmt.Sprintf("report:sales:%d:%d", from.Unix(), to.Unix())
	var cached SalesSummary
	if err := s.redis.GetJSON(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	var agg struct {
		Count    int64
		Revenue  int64
		Discount int64
	}
	err := s.db.Model(&order.Order{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS revenue, COALESCE(SUM(discount_total), 0) AS discount").
		Where("status <> ? AND created_at >= ? AND created_at < ?", order.StatusCancelled, from, to).
		Scan(&agg).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate sales: %w", err)
	}

	summary := &SalesSummary{
		From:          from,
		To:            to,
		OrderCount:    agg.Count,
		Revenue:       agg.Revenue,
		DiscountGiven: agg.Discount,
	}
	if agg.Count > 0 {
		summary.AverageOrderValue = agg.Revenue / agg.Count
	}

	// A failed cache write is not worth failing the report over
	_ = s.redis.SetJSON(ctx, key, summary, cacheTTL)
	return summary, nil
}

// TopProducts returns the best selling products for a period
func (s *Service) TopProducts(ctx context.Context, from, to time.Time, limit int) ([]ProductSales, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var rows []ProductSales
	err := s.db.Model(&order.OrderItem{}).
		Select("order_items.product_id, order_items.product_name, SUM(order_items.quantity) AS units_sold, SUM(order_items.total_price) AS revenue").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ? AND orders.created_at >= ? AND orders.created_at < ?", order.StatusCancelled, from, to).
		Group("order_items.product_id, order_items.product_name").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top products: %w", err)
	}
	return rows, nil
}

// Coupons returns redemption counts and discount totals per coupon
func (s *Service) Coupons(ctx context.Context) ([]CouponPerformance, error) {
	var rows []CouponPerformance
	err := s.db.Model(&coupon.CouponUsage{}).
		Select("coupons.code, COUNT(*) AS redemptions, COALESCE(SUM(coupon_usages.amount), 0) AS total_discount").
		Joins("JOIN coupons ON coupons.id = coupon_usages.coupon_id").
		Group("coupons.code").
		Order("redemptions DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate coupon performance: %w", err)
	}
	return rows, nil
}
