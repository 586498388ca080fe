// internal/domain/promotion/entity.go
package promotion

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Discount types
const (
	TypePercentage   = "percentage"
	TypeFixedAmount  = "fixed_amount"
	TypeBuyXGetY     = "buy_x_get_y"
	TypeFreeShipping = "free_shipping"
)

// Customer segments
const (
	SegmentNewCustomer       = "new_customer"
	SegmentReturningCustomer = "returning_customer"
	SegmentVIPCustomer       = "vip_customer"
	SegmentBulkBuyer         = "bulk_buyer"
)

// Discount represents an automatic promotion rule. Unlike coupons,
// discounts apply without a code whenever their conditions match.
type Discount struct {
	ID                  uint           `json:"id" gorm:"primaryKey"`
	Name                string         `json:"name" gorm:"not null"`
	Description         string         `json:"description"`
	Type                string         `json:"type" gorm:"not null"`
	Value               float64        `json:"value"`
	Priority            int            `json:"priority" gorm:"default:0"`
	Stackable           bool           `json:"stackable" gorm:"default:false"`
	MinimumAmount       int64          `json:"minimum_amount" gorm:"default:0"`
	MaximumAmount       int64          `json:"maximum_amount" gorm:"default:0"` // 0 = no upper bound
	FirstTimeOnly       bool           `json:"first_time_only" gorm:"default:false"`
	MaxUsage            int            `json:"max_usage" gorm:"default:0"` // 0 = unlimited
	UsageCount          int            `json:"usage_count" gorm:"default:0"`
	MaxUsagePerCustomer int            `json:"max_usage_per_customer" gorm:"default:0"`
	CustomerSegments    string         `json:"customer_segments"` // comma separated
	BuyQuantity         int            `json:"buy_quantity" gorm:"default:0"`
	GetQuantity         int            `json:"get_quantity" gorm:"default:0"`
	StartsAt            time.Time      `json:"starts_at"`
	ExpiresAt           time.Time      `json:"expires_at"`
	IsActive            bool           `json:"is_active" gorm:"default:true"`
	CreatedAt           time.Time      `json:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at"`
	DeletedAt           gorm.DeletedAt `json:"-" gorm:"index"`

	ApplicableProducts   []product.Product  `json:"applicable_products,omitempty" gorm:"many2many:discount_products"`
	ApplicableCategories []product.Category `json:"applicable_categories,omitempty" gorm:"many2many:discount_categories"`
}

// Redemption records a discount applied to a placed order. The order
// service writes one row per applied rule inside the order creation
// transaction, which is what MaxUsagePerCustomer counts against.
type Redemption struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"not null;index"`
	DiscountID uint      `json:"discount_id" gorm:"not null;index"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	Name       string    `json:"name"`
	Amount     int64     `json:"amount" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the table name for Discount
func (Discount) TableName() string {
	return "discounts"
}

// TableName returns the table name for Redemption
func (Redemption) TableName() string {
	return "order_discounts"
}

// IsWithinWindow reports whether now falls inside the rule's
// validity window.
func (d *Discount) IsWithinWindow(now time.Time) bool {
	if !d.StartsAt.IsZero() && now.Before(d.StartsAt) {
		return false
	}
	if !d.ExpiresAt.IsZero() && now.After(d.ExpiresAt) {
		return false
	}
	return true
}

// HasGlobalHeadroom reports whether the global usage cap still allows
// another redemption.
func (d *Discount) HasGlobalHeadroom() bool {
	return d.MaxUsage == 0 || d.UsageCount < d.MaxUsage
}

// SegmentList splits the comma-separated segments field
func (d *Discount) SegmentList() []string {
	if d.CustomerSegments == "" {
		return nil
	}
	parts := strings.Split(d.CustomerSegments, ",")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// AppliedDiscount is one rule's contribution in an evaluation result
type AppliedDiscount struct {
	DiscountID uint   `json:"discount_id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Amount     int64  `json:"amount"`
}

// Result is the outcome of evaluating all rules against a cart
type Result struct {
	Applied       []AppliedDiscount `json:"applied"`
	TotalDiscount int64             `json:"total_discount"`
	FinalTotal    int64             `json:"final_total"`
	FreeShipping  bool              `json:"free_shipping"`
}

// CreateDiscountRequest represents a discount creation request
type CreateDiscountRequest struct {
	Name                string    `json:"name" binding:"required"`
	Description         string    `json:"description"`
	Type                string    `json:"type" binding:"required,oneof=percentage fixed_amount buy_x_get_y free_shipping"`
	Value               float64   `json:"value"`
	Priority            int       `json:"priority"`
	Stackable           bool      `json:"stackable"`
	MinimumAmount       int64     `json:"minimum_amount"`
	MaximumAmount       int64     `json:"maximum_amount"`
	FirstTimeOnly       bool      `json:"first_time_only"`
	MaxUsage            int       `json:"max_usage"`
	MaxUsagePerCustomer int       `json:"max_usage_per_customer"`
	CustomerSegments    []string  `json:"customer_segments"`
	BuyQuantity         int       `json:"buy_quantity"`
	GetQuantity         int       `json:"get_quantity"`
	StartsAt            time.Time `json:"starts_at"`
	ExpiresAt           time.Time `json:"expires_at"`
	ProductIDs          []uint    `json:"product_ids"`
	CategoryIDs         []uint    `json:"category_ids"`
}

// UpdateDiscountRequest represents a discount update request
type UpdateDiscountRequest struct {
	Name                *string    `json:"name"`
	Description         *string    `json:"description"`
	Value               *float64   `json:"value"`
	Priority            *int       `json:"priority"`
	Stackable           *bool      `json:"stackable"`
	MinimumAmount       *int64     `json:"minimum_amount"`
	MaximumAmount       *int64     `json:"maximum_amount"`
	FirstTimeOnly       *bool      `json:"first_time_only"`
	MaxUsage            *int       `json:"max_usage"`
	MaxUsagePerCustomer *int       `json:"max_usage_per_customer"`
	CustomerSegments    []string   `json:"customer_segments"`
	StartsAt            *time.Time `json:"starts_at"`
	ExpiresAt           *time.Time `json:"expires_at"`
	IsActive            *bool      `json:"is_active"`
}
