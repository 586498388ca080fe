// internal/domain/promotion/service.go
package promotion

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Service handles discount rule administration
type Service struct {
	db *gorm.DB
}

// NewService creates a new promotion service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create creates a new discount rule
func (s *Service) Create(req *CreateDiscountRequest) (*Discount, error) {
	if req.Type == TypeBuyXGetY && (req.BuyQuantity <= 0 || req.GetQuantity <= 0) {
		return nil, errs.Validationf("buy_x_get_y rules require buy_quantity and get_quantity")
	}
	if req.Type == TypePercentage && req.Value > 100 {
		return nil, errs.Validationf("percentage value cannot exceed 100")
	}

	d := &Discount{
		Name:                req.Name,
		Description:         req.Description,
		Type:                req.Type,
		Value:               req.Value,
		Priority:            req.Priority,
		Stackable:           req.Stackable,
		MinimumAmount:       req.MinimumAmount,
		MaximumAmount:       req.MaximumAmount,
		FirstTimeOnly:       req.FirstTimeOnly,
		MaxUsage:            req.MaxUsage,
		MaxUsagePerCustomer: req.MaxUsagePerCustomer,
		CustomerSegments:    strings.Join(req.CustomerSegments, ","),
		BuyQuantity:         req.BuyQuantity,
		GetQuantity:         req.GetQuantity,
		StartsAt:            req.StartsAt,
		ExpiresAt:           req.ExpiresAt,
		IsActive:            true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(d).Error; err != nil {
			return fmt.Errorf("failed to create discount: %w", err)
		}
		if len(req.ProductIDs) > 0 {
			var products []product.Product
			if err := tx.Find(&products, req.ProductIDs).Error; err != nil {
				return fmt.Errorf("failed to load applicable products: %w", err)
			}
			if err := tx.Model(d).Association("ApplicableProducts").Replace(products); err != nil {
				return fmt.Errorf("failed to set applicable products: %w", err)
			}
		}
		if len(req.CategoryIDs) > 0 {
			var categories []product.Category
			if err := tx.Find(&categories, req.CategoryIDs).Error; err != nil {
				return fmt.Errorf("failed to load applicable categories: %w", err)
			}
			if err := tx.Model(d).Association("ApplicableCategories").Replace(categories); err != nil {
				return fmt.Errorf("failed to set applicable categories: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(d.ID)
}

// GetByID returns a discount rule by ID
func (s *Service) GetByID(id uint) (*Discount, error) {
	var d Discount
	err := s.db.Preload("ApplicableProducts").Preload("ApplicableCategories").
		First(&d, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("discount %d", id)
		}
		return nil, fmt.Errorf("failed to get discount: %w", err)
	}
	return &d, nil
}

// List returns discount rules ordered by priority
func (s *Service) List(page, limit int) ([]Discount, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := s.db.Model(&Discount{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count discounts: %w", err)
	}

	var discounts []Discount
	err := s.db.Order("priority DESC, value DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&discounts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list discounts: %w", err)
	}
	return discounts, total, nil
}

// Update updates a discount rule
func (s *Service) Update(id uint, req *UpdateDiscountRequest) (*Discount, error) {
	d, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Value != nil {
		if d.Type == TypePercentage && *req.Value > 100 {
			return nil, errs.Validationf("percentage value cannot exceed 100")
		}
		updates["value"] = *req.Value
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}
	if req.Stackable != nil {
		updates["stackable"] = *req.Stackable
	}
	if req.MinimumAmount != nil {
		updates["minimum_amount"] = *req.MinimumAmount
	}
	if req.MaximumAmount != nil {
		updates["maximum_amount"] = *req.MaximumAmount
	}
	if req.FirstTimeOnly != nil {
		updates["first_time_only"] = *req.FirstTimeOnly
	}
	if req.MaxUsage != nil {
		updates["max_usage"] = *req.MaxUsage
	}
	if req.MaxUsagePerCustomer != nil {
		updates["max_usage_per_customer"] = *req.MaxUsagePerCustomer
	}
	if req.CustomerSegments != nil {
		updates["customer_segments"] = strings.Join(req.CustomerSegments, ",")
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
		if err := s.db.Model(d).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update discount: %w", err)
		}
	}
	return s.GetByID(id)
}

// Delete soft deletes a discount rule
func (s *Service) Delete(id uint) error {
	result := s.db.Delete(&Discount{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete discount: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NotFoundf("discount %d", id)
	}
	return nil
}
