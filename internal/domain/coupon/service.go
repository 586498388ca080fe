// internal/domain/coupon/service.go
package coupon

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Service handles coupon business logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new coupon service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// Create creates a new coupon. Codes are stored uppercase.
func (s *Service) Create(req *CreateCouponRequest) (*Coupon, error) {
	code := NormalizeCode(req.Code)
	if code == "" {
		return nil, errs.Validationf("coupon code is required")
	}
	if req.Type == TypePercentage && req.Value > 100 {
		return nil, errs.Validationf("percentage value cannot exceed 100")
	}

	var count int64
	if err := s.db.Model(&Coupon{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing coupon: %w", err)
	}
	if count > 0 {
		return nil, errs.Validationf("coupon code %s already exists", code)
	}

	perUserLimit := 1
	if req.UsageLimitPerUser != nil {
		perUserLimit = *req.UsageLimitPerUser
	}

	c := &Coupon{
		Code:              code,
		Description:       req.Description,
		Type:              req.Type,
		Value:             req.Value,
		MinimumAmount:     req.MinimumAmount,
		MaximumDiscount:   req.MaximumDiscount,
		UsageLimit:        req.UsageLimit,
		UsageLimitPerUser: perUserLimit,
		StartsAt:          req.StartsAt,
		ExpiresAt:         req.ExpiresAt,
		IsActive:          true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(c).Error; err != nil {
			return fmt.Errorf("failed to create coupon: %w", err)
		}
		if perUserLimit == 0 {
			// The column defaults to 1, so an explicit unlimited needs its
			// own write: gorm skips zero values on insert for defaulted
			// columns.
			if err := tx.Model(c).UpdateColumn("usage_limit_per_user", 0).Error; err != nil {
				return fmt.Errorf("failed to clear per-user limit: %w", err)
			}
		}
		if len(req.ProductIDs) > 0 {
			var products []product.Product
			if err := tx.Find(&products, req.ProductIDs).Error; err != nil {
				return fmt.Errorf("failed to load applicable products: %w", err)
			}
			if err := tx.Model(c).Association("ApplicableProducts").Replace(products); err != nil {
				return fmt.Errorf("failed to set applicable products: %w", err)
			}
		}
		if len(req.ExcludedProductIDs) > 0 {
			var products []product.Product
			if err := tx.Find(&products, req.ExcludedProductIDs).Error; err != nil {
				return fmt.Errorf("failed to load excluded products: %w", err)
			}
			if err := tx.Model(c).Association("ExcludedProducts").Replace(products); err != nil {
				return fmt.Errorf("failed to set excluded products: %w", err)
			}
		}
		if len(req.CategoryIDs) > 0 {
			var categories []product.Category
			if err := tx.Find(&categories, req.CategoryIDs).Error; err != nil {
				return fmt.Errorf("failed to load applicable categories: %w", err)
			}
			if err := tx.Model(c).Association("ApplicableCategories").Replace(categories); err != nil {
				return fmt.Errorf("failed to set applicable categories: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByCode(code)
}

// GetByCode returns a coupon by its code
func (s *Service) GetByCode(code string) (*Coupon, error) {
	var c Coupon
	err := s.db.Preload("ApplicableProducts").Preload("ExcludedProducts").Preload("ApplicableCategories").
		Where("code = ?", NormalizeCode(code)).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("coupon %s", NormalizeCode(code))
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return &c, nil
}

// List returns coupons ordered by creation time
func (s *Service) List(page, limit int) ([]Coupon, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := s.db.Model(&Coupon{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	var coupons []Coupon
	err := s.db.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&coupons).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	return coupons, total, nil
}

// Update updates coupon fields
func (s *Service) Update(code string, req *UpdateCouponRequest) (*Coupon, error) {
	c, err := s.GetByCode(code)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Value != nil {
		if c.Type == TypePercentage && *req.Value > 100 {
			return nil, errs.Validationf("percentage value cannot exceed 100")
		}
		updates["value"] = *req.Value
	}
	if req.MinimumAmount != nil {
		updates["minimum_amount"] = *req.MinimumAmount
	}
	if req.MaximumDiscount != nil {
		updates["maximum_discount"] = *req.MaximumDiscount
	}
	if req.UsageLimit != nil {
		updates["usage_limit"] = *req.UsageLimit
	}
	if req.UsageLimitPerUser != nil {
		updates["usage_limit_per_user"] = *req.UsageLimitPerUser
	}
	if req.StartsAt != nil {
		updates["starts_at"] = *req.StartsAt
	}
	if req.ExpiresAt != nil {
		updates["expires_at"] = *req.ExpiresAt
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) > 0 {
		if err := s.db.Model(c).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update coupon: %w", err)
		}
	}
	return s.GetByCode(code)
}

// Delete soft deletes a coupon
func (s *Service) Delete(code string) error {
	result := s.db.Where("code = ?", NormalizeCode(code)).Delete(&Coupon{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NotFoundf("coupon %s", NormalizeCode(code))
	}
	return nil
}

// Validate checks a coupon against a cart and returns a discount
// quote. The minimum amount is checked against the full cart subtotal;
// the discount itself is computed over eligible lines only.
func (s *Service) Validate(userID uint, code string, c *cart.Cart) (*Quote, error) {
	coupon, err := s.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if !coupon.IsActive {
		return nil, fmt.Errorf("coupon %s is disabled: %w", coupon.Code, errs.ErrExpired)
	}
	if !coupon.IsWithinWindow(time.Now().UTC()) {
		return nil, fmt.Errorf("coupon %s is outside its validity window: %w", coupon.Code, errs.ErrExpired)
	}
	if !coupon.HasGlobalHeadroom() {
		return nil, fmt.Errorf("coupon %s usage limit reached: %w", coupon.Code, errs.ErrLimitExceeded)
	}

	if coupon.UsageLimitPerUser > 0 {
		used, err := s.userUsageCount(s.db, coupon.ID, userID)
		if err != nil {
			return nil, err
		}
		if used >= int64(coupon.UsageLimitPerUser) {
			return nil, fmt.Errorf("coupon %s already used the maximum number of times: %w", coupon.Code, errs.ErrLimitExceeded)
		}
	}

	if c.Subtotal < coupon.MinimumAmount {
		return nil, errs.Validationf("order minimum of %d cents not met for coupon %s", coupon.MinimumAmount, coupon.Code)
	}

	applicableTotal := applicableTotal(coupon, c)
	if applicableTotal == 0 {
		return nil, errs.Validationf("coupon %s does not apply to any cart item", coupon.Code)
	}

	return &Quote{
		CouponID:        coupon.ID,
		Code:            coupon.Code,
		Type:            coupon.Type,
		Value:           coupon.Value,
		ApplicableTotal: applicableTotal,
		DiscountAmount:  discountAmount(coupon, applicableTotal),
	}, nil
}

// Redeem consumes one use of the coupon inside the caller's
// transaction. The usage counter increment is conditional on limit
// headroom so concurrent redemptions cannot overshoot the limit.
func (s *Service) Redeem(tx *gorm.DB, userID uint, quote *Quote, orderID uint) error {
	var coupon Coupon
	if err := tx.First(&coupon, quote.CouponID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("coupon %d", quote.CouponID)
		}
		return fmt.Errorf("failed to load coupon: %w", err)
	}

	result := tx.Model(&Coupon{}).
		Where("id = ? AND is_active = ? AND (usage_limit = 0 OR used_count < usage_limit)", coupon.ID, true).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if result.Error != nil {
		return fmt.Errorf("failed to consume coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("coupon %s usage limit reached: %w", coupon.Code, errs.ErrLimitExceeded)
	}

	// The per-user count runs after the conditional update so this
	// transaction holds the coupon row lock: a concurrent redemption by
	// the same user has either committed its ledger row already or is
	// blocked behind us.
	if coupon.UsageLimitPerUser > 0 {
		used, err := s.userUsageCount(tx, coupon.ID, userID)
		if err != nil {
			return err
		}
		if used >= int64(coupon.UsageLimitPerUser) {
			return fmt.Errorf("coupon %s already used the maximum number of times: %w", coupon.Code, errs.ErrLimitExceeded)
		}
	}

	usage := &CouponUsage{
		CouponID: coupon.ID,
		UserID:   userID,
		OrderID:  orderID,
		Amount:   quote.DiscountAmount,
	}
	if err := tx.Create(usage).Error; err != nil {
		return fmt.Errorf("failed to record coupon usage: %w", err)
	}
	return nil
}

func (s *Service) userUsageCount(db *gorm.DB, couponID, userID uint) (int64, error) {
	var used int64
	err := db.Model(&CouponUsage{}).
		Where("coupon_id = ? AND user_id = ?", couponID, userID).
		Count(&used).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count coupon usage: %w", err)
	}
	return used, nil
}

// applicableTotal sums the cart lines the coupon can discount. An
// empty allow list means every line is eligible; exclusions always
// win over inclusions.
func applicableTotal(c *Coupon, crt *cart.Cart) int64 {
	excluded := make(map[uint]bool, len(c.ExcludedProducts))
	for _, p := range c.ExcludedProducts {
		excluded[p.ID] = true
	}
	allowedProducts := make(map[uint]bool, len(c.ApplicableProducts))
	for _, p := range c.ApplicableProducts {
		allowedProducts[p.ID] = true
	}
	allowedCategories := make(map[uint]bool, len(c.ApplicableCategories))
	for _, cat := range c.ApplicableCategories {
		allowedCategories[cat.ID] = true
	}
	restricted := len(allowedProducts) > 0 || len(allowedCategories) > 0

	var total int64
	for _, line := range crt.Items {
		if excluded[line.ProductID] {
			continue
		}
		if restricted && !allowedProducts[line.ProductID] && !allowedCategories[line.CategoryID] {
			continue
		}
		total += line.LineTotal
	}
	return total
}

// discountAmount computes the discount over the applicable total.
// Percentage discounts are capped at MaximumDiscount when set; fixed
// discounts never exceed the applicable total.
func discountAmount(c *Coupon, applicableTotal int64) int64 {
	var discount int64
	switch c.Type {
	case TypePercentage:
		discount = int64(math.Round(float64(applicableTotal) * c.Value / 100))
		if c.MaximumDiscount > 0 && discount > c.MaximumDiscount {
			discount = c.MaximumDiscount
		}
	case TypeFixed:
		discount = int64(math.Round(c.Value))
		if discount > applicableTotal {
			discount = applicableTotal
		}
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}

// NormalizeCode uppercases and trims a coupon code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
