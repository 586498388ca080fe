// internal/domain/wishlist/service.go
package wishlist

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Service handles wishlist business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new wishlist service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Add saves a product to the user's wishlist. Adding the same product
// twice is a no-op.
func (s *Service) Add(userID, productID uint) error {
	var p product.Product
	if err := s.db.Where("id = ? AND is_active = ?", productID, true).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("product %d", productID)
		}
		return fmt.Errorf("failed to look up product: %w", err)
	}

	item := Item{UserID: userID, ProductID: productID}
	err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

// Remove deletes a product from the user's wishlist
func (s *Service) Remove(userID, productID uint) error {
	result := s.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&Item{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NotFoundf("wishlist item for product %d", productID)
	}
	return nil
}

// List returns the user's wishlist with product details
func (s *Service) List(userID uint) ([]Item, error) {
	var items []Item
	err := s.db.Preload("Product").Preload("Product.Images").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return items, nil
}
