// internal/domain/review/entity.go
package review

import (
	"time"

	"gorm.io/gorm"
)

// Review represents a product review. One review per user per
// product.
type Review struct {
	ID                 uint           `json:"id" gorm:"primaryKey"`
	ProductID          uint           `json:"product_id" gorm:"not null;index:idx_review_product_user,unique"`
	UserID             uint           `json:"user_id" gorm:"not null;index:idx_review_product_user,unique"`
	Rating             int            `json:"rating" gorm:"not null"`
	Title              string         `json:"title"`
	Comment            string         `json:"comment" gorm:"type:text"`
	IsVerifiedPurchase bool           `json:"is_verified_purchase" gorm:"default:false"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for Review
func (Review) TableName() string {
	return "reviews"
}

// CreateReviewRequest represents a review submission
type CreateReviewRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Rating    int    `json:"rating" binding:"required,min=1,max=5"`
	Title     string `json:"title"`
	Comment   string `json:"comment"`
}
