// internal/domain/wishlist/entity.go
package wishlist

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Item represents one product saved to a user's wishlist
type Item struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_wishlist_user_product,unique"`
	ProductID uint      `json:"product_id" gorm:"not null;index:idx_wishlist_user_product,unique"`
	CreatedAt time.Time `json:"created_at"`

	Product *product.Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for Item
func (Item) TableName() string {
	return "wishlist_items"
}
