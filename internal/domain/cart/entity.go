// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// CartItem represents an item in a user's persistent cart
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_cart_user_product,unique"`
	ProductID uint      `json:"product_id" gorm:"not null;index:idx_cart_user_product,unique"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Variant   string    `json:"variant" gorm:"index:idx_cart_user_product,unique"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Product *product.Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for CartItem
func (CartItem) TableName() string {
	return "cart_items"
}

// GuestCartItem is a cart line stored in Redis for anonymous sessions
type GuestCartItem struct {
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Variant   string `json:"variant"`
}

// Line is a priced cart line returned to callers
type Line struct {
	ProductID     uint    `json:"product_id"`
	ProductName   string  `json:"product_name"`
	SKU           string  `json:"sku"`
	ImageURL      string  `json:"image_url"`
	UnitPrice     int64   `json:"unit_price"`
	Quantity      int     `json:"quantity"`
	Variant       string  `json:"variant,omitempty"`
	LineTotal     int64   `json:"line_total"`
	CategoryID    uint    `json:"category_id"`
	Weight        float64 `json:"weight"`
	TrackQuantity bool    `json:"track_quantity"`
	InStock       bool    `json:"in_stock"`
}

// Cart is a fully priced view of a cart
type Cart struct {
	Items     []Line   `json:"items"`
	ItemCount int      `json:"item_count"`
	Subtotal  int64    `json:"subtotal"`
	Removed   []string `json:"removed,omitempty"` // names of items pruned during pricing
}

// AddItemRequest represents an add-to-cart request
type AddItemRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Variant   string `json:"variant"`
}

// UpdateItemRequest represents a cart quantity update
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gte=0"`
}
