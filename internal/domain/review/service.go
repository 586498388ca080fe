// internal/domain/review/service.go
package review

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Service handles review business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new review service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Create submits a review. A user gets one review per product; the
// verified purchase flag is set when the user has a delivered order
// containing the product.
func (s *Service) Create(userID uint, req *CreateReviewRequest) (*Review, error) {
	var p product.Product
	if err := s.db.Where("id = ? AND is_active = ?", req.ProductID, true).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("product %d", req.ProductID)
		}
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}

	var existing int64
	err := s.db.Model(&Review{}).
		Where("product_id = ? AND user_id = ?", req.ProductID, userID).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}
	if existing > 0 {
		return nil, errs.Validationf("product %d already reviewed", req.ProductID)
	}

	verified, err := s.hasDeliveredPurchase(userID, req.ProductID)
	if err != nil {
		return nil, err
	}

	rev := &Review{
		ProductID:          req.ProductID,
		UserID:             userID,
		Rating:             req.Rating,
		Title:              req.Title,
		Comment:            req.Comment,
		IsVerifiedPurchase: verified,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rev).Error; err != nil {
			return fmt.Errorf("failed to create review: %w", err)
		}
		return s.refreshProductRating(tx, req.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

// ListByProduct returns reviews for a product, newest first
func (s *Service) ListByProduct(productID uint, page, limit int) ([]Review, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := s.db.Model(&Review{}).Where("product_id = ?", productID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []Review
	err := s.db.Where("product_id = ?", productID).
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

// Delete removes a review. Only the author or an admin may delete.
func (s *Service) Delete(reviewID, requesterID uint, isAdmin bool) error {
	var rev Review
	if err := s.db.First(&rev, reviewID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NotFoundf("review %d", reviewID)
		}
		return fmt.Errorf("failed to get review: %w", err)
	}
	if !isAdmin && rev.UserID != requesterID {
		return errs.Forbiddenf("review %d belongs to another user", reviewID)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&rev).Error; err != nil {
			return fmt.Errorf("failed to delete review: %w", err)
		}
		return s.refreshProductRating(tx, rev.ProductID)
	})
}

func (s *Service) hasDeliveredPurchase(userID, productID uint) (bool, error) {
	var count int64
	err := s.db.Model(&order.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND order_items.product_id = ?",
			userID, order.StatusDelivered, productID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check purchase history: %w", err)
	}
	return count > 0, nil
}

// refreshProductRating recomputes the denormalized rating fields on
// the product from the surviving reviews.
func (s *Service) refreshProductRating(tx *gorm.DB, productID uint) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := tx.Model(&Review{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	err = tx.Model(&product.Product{}).Where("id = ?", productID).
		Updates(map[string]interface{}{
			"rating_average": agg.Avg,
			"rating_count":   agg.Count,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update product rating: %w", err)
	}
	return nil
}
