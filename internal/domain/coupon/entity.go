// internal/domain/coupon/entity.go
package coupon

import (
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Coupon types
const (
	TypePercentage = "percentage"
	TypeFixed      = "fixed"
)

// Coupon represents a redeemable discount code. For percentage coupons
// Value is the percent off; for fixed coupons it is an amount in cents.
type Coupon struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Code              string         `json:"code" gorm:"uniqueIndex;not null"`
	Description       string         `json:"description"`
	Type              string         `json:"type" gorm:"not null"`
	Value             float64        `json:"value" gorm:"not null"`
	MinimumAmount     int64          `json:"minimum_amount" gorm:"default:0"`
	MaximumDiscount   int64          `json:"maximum_discount" gorm:"default:0"` // cap for percentage coupons, 0 = no cap
	UsageLimit        int            `json:"usage_limit" gorm:"default:0"`         // 0 = unlimited
	UsageLimitPerUser int            `json:"usage_limit_per_user" gorm:"default:1"` // 0 = unlimited
	UsedCount         int            `json:"used_count" gorm:"default:0"`
	StartsAt          time.Time      `json:"starts_at"`
	ExpiresAt         time.Time      `json:"expires_at"`
	IsActive          bool           `json:"is_active" gorm:"default:true"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`

	ApplicableProducts   []product.Product  `json:"applicable_products,omitempty" gorm:"many2many:coupon_products"`
	ExcludedProducts     []product.Product  `json:"excluded_products,omitempty" gorm:"many2many:coupon_excluded_products"`
	ApplicableCategories []product.Category `json:"applicable_categories,omitempty" gorm:"many2many:coupon_categories"`
}

// CouponUsage is the redemption ledger. One row is written per order
// that consumed the coupon.
type CouponUsage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CouponID  uint      `json:"coupon_id" gorm:"not null;index"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	OrderID   uint      `json:"order_id" gorm:"not null"`
	Amount    int64     `json:"amount" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for Coupon
func (Coupon) TableName() string {
	return "coupons"
}

// TableName returns the table name for CouponUsage
func (CouponUsage) TableName() string {
	return "coupon_usages"
}

// IsWithinWindow reports whether now falls inside the coupon's
// validity window.
func (c *Coupon) IsWithinWindow(now time.Time) bool {
	if !c.StartsAt.IsZero() && now.Before(c.StartsAt) {
		return false
	}
	if !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt) {
		return false
	}
	return true
}

// HasGlobalHeadroom reports whether the global usage limit still
// allows another redemption.
func (c *Coupon) HasGlobalHeadroom() bool {
	return c.UsageLimit == 0 || c.UsedCount < c.UsageLimit
}

// Quote is the result of validating a coupon against a cart
type Quote struct {
	CouponID        uint    `json:"coupon_id"`
	Code            string  `json:"code"`
	Type            string  `json:"type"`
	Value           float64 `json:"value"`
	ApplicableTotal int64   `json:"applicable_total"`
	DiscountAmount  int64   `json:"discount_amount"`
}

// CreateCouponRequest represents a coupon creation request
type CreateCouponRequest struct {
	Code               string    `json:"code" binding:"required"`
	Description        string    `json:"description"`
	Type               string    `json:"type" binding:"required,oneof=percentage fixed"`
	Value              float64   `json:"value" binding:"required,gt=0"`
	MinimumAmount      int64     `json:"minimum_amount"`
	MaximumDiscount    int64     `json:"maximum_discount"`
	UsageLimit         int       `json:"usage_limit"`
	UsageLimitPerUser  *int      `json:"usage_limit_per_user"` // omitted = 1, explicit 0 = unlimited
	StartsAt           time.Time `json:"starts_at"`
	ExpiresAt          time.Time `json:"expires_at"`
	ProductIDs         []uint    `json:"product_ids"`
	ExcludedProductIDs []uint    `json:"excluded_product_ids"`
	CategoryIDs        []uint    `json:"category_ids"`
}

// UpdateCouponRequest represents a coupon update request
type UpdateCouponRequest struct {
	Description       *string    `json:"description"`
	Value             *float64   `json:"value"`
	MinimumAmount     *int64     `json:"minimum_amount"`
	MaximumDiscount   *int64     `json:"maximum_discount"`
	UsageLimit        *int       `json:"usage_limit"`
	UsageLimitPerUser *int       `json:"usage_limit_per_user"`
	StartsAt          *time.Time `json:"starts_at"`
	ExpiresAt         *time.Time `json:"expires_at"`
	IsActive          *bool      `json:"is_active"`
}
