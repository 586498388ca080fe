// internal/domain/inventory/entity.go
package inventory

import (
	"time"

	"github.com/your-org/storefront-backend/internal/domain/product"
)

// Log types
const (
	TypeStockIn    = "stock_in"
	TypeStockOut   = "stock_out"
	TypeSold       = "sold"
	TypeReturned   = "returned"
	TypeAdjustment = "adjustment"
)

// Log is an append-only record of a stock level change. Quantity is
// the signed delta; PreviousQuantity and NewQuantity snapshot the
// stock level around the change.
type Log struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	ProductID        uint      `json:"product_id" gorm:"not null;index"`
	Type             string    `json:"type" gorm:"not null;index"`
	Quantity         int       `json:"quantity" gorm:"not null"`
	PreviousQuantity int       `json:"previous_quantity" gorm:"not null"`
	NewQuantity      int       `json:"new_quantity" gorm:"not null"`
	Reason           string    `json:"reason"`
	Reference        string    `json:"reference" gorm:"index"` // order number or external document
	CreatedBy        uint      `json:"created_by"`
	CreatedAt        time.Time `json:"created_at"`

	Product *product.Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for Log
func (Log) TableName() string {
	return "inventory_logs"
}

// AdjustRequest represents a manual stock adjustment
type AdjustRequest struct {
	ProductID uint   `json:"product_id" binding:"required"`
	Change    int    `json:"change" binding:"required"`
	Type      string `json:"type" binding:"required,oneof=stock_in stock_out adjustment"`
	Reason    string `json:"reason"`
	Reference string `json:"reference"`
}

// LogFilter holds inventory log listing filters
type LogFilter struct {
	ProductID uint
	Type      string
	Page      int
	Limit     int
}

// Stats summarizes current inventory health
type Stats struct {
	TotalProducts   int64 `json:"total_products"`
	OutOfStock      int64 `json:"out_of_stock"`
	LowStock        int64 `json:"low_stock"`
	TotalStockValue int64 `json:"total_stock_value"` // cents at current price
}
