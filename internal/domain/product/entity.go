// internal/domain/product/entity.go
package product

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a product in the catalog. All monetary amounts
// are stored in cents.
type Product struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Name              string         `json:"name" gorm:"not null;index"`
	Slug              string         `json:"slug" gorm:"uniqueIndex;not null"`
	Description       string         `json:"description" gorm:"type:text"`
	SKU               string         `json:"sku" gorm:"uniqueIndex;not null"`
	Price             int64          `json:"price" gorm:"not null"`
	ComparePrice      int64          `json:"compare_price"`
	CostPrice         int64          `json:"cost_price"`
	TrackQuantity     bool           `json:"track_quantity" gorm:"default:true"`
	StockQuantity     int            `json:"stock_quantity" gorm:"default:0"`
	LowStockThreshold int            `json:"low_stock_threshold" gorm:"default:5"`
	Weight            float64        `json:"weight"` // in kilograms, used for shipping tiers
	CategoryID        uint           `json:"category_id" gorm:"index"`
	Category          *Category      `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Brand             string         `json:"brand"`
	Tags              string         `json:"tags"` // comma separated
	IsActive          bool           `json:"is_active" gorm:"default:true"`
	IsFeatured        bool           `json:"is_featured" gorm:"default:false"`
	RatingAverage     float64        `json:"rating_average" gorm:"default:0"`
	RatingCount       int            `json:"rating_count" gorm:"default:0"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`

	Images []ProductImage `json:"images,omitempty" gorm:"foreignKey:ProductID"`
}

// ProductImage represents a product image
type ProductImage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID uint      `json:"product_id" gorm:"not null;index"`
	URL       string    `json:"url" gorm:"not null"`
	AltText   string    `json:"alt_text"`
	SortOrder int       `json:"sort_order" gorm:"default:0"`
	IsPrimary bool      `json:"is_primary" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// Category represents a product category
type Category struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"not null"`
	Slug        string         `json:"slug" gorm:"uniqueIndex;not null"`
	Description string         `json:"description"`
	ParentID    *uint          `json:"parent_id" gorm:"index"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	SortOrder   int            `json:"sort_order" gorm:"default:0"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Children []Category `json:"children,omitempty" gorm:"foreignKey:ParentID"`
}

// TableName returns the table name for Product
func (Product) TableName() string {
	return "products"
}

// TableName returns the table name for ProductImage
func (ProductImage) TableName() string {
	return "product_images"
}

// TableName returns the table name for Category
func (Category) TableName() string {
	return "categories"
}

// IsInStock reports whether the product can be sold. Products that do
// not track quantity (digital goods) are always sellable.
func (p *Product) IsInStock() bool {
	return !p.TrackQuantity || p.StockQuantity > 0
}

// IsLowStock reports whether the stock is at or below the threshold
func (p *Product) IsLowStock() bool {
	return p.TrackQuantity && p.StockQuantity <= p.LowStockThreshold
}

// PrimaryImageURL returns the primary image URL, or the first image if
// none is marked primary.
func (p *Product) PrimaryImageURL() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// CreateProductRequest represents a product creation request
type CreateProductRequest struct {
	Name              string   `json:"name" binding:"required"`
	Description       string   `json:"description"`
	SKU               string   `json:"sku" binding:"required"`
	Price             int64    `json:"price" binding:"required,gt=0"`
	ComparePrice      int64    `json:"compare_price"`
	CostPrice         int64    `json:"cost_price"`
	TrackQuantity     *bool    `json:"track_quantity"`
	StockQuantity     int      `json:"stock_quantity" binding:"gte=0"`
	LowStockThreshold int      `json:"low_stock_threshold"`
	Weight            float64  `json:"weight"`
	CategoryID        uint     `json:"category_id"`
	Brand             string   `json:"brand"`
	Tags              []string `json:"tags"`
	IsActive          *bool    `json:"is_active"`
	IsFeatured        bool     `json:"is_featured"`
	ImageURLs         []string `json:"image_urls"`
}

// UpdateProductRequest represents a product update request
type UpdateProductRequest struct {
	Name              *string  `json:"name"`
	Description       *string  `json:"description"`
	Price             *int64   `json:"price"`
	TrackQuantity     *bool    `json:"track_quantity"`
	ComparePrice      *int64   `json:"compare_price"`
	CostPrice         *int64   `json:"cost_price"`
	LowStockThreshold *int     `json:"low_stock_threshold"`
	Weight            *float64 `json:"weight"`
	CategoryID        *uint    `json:"category_id"`
	Brand             *string  `json:"brand"`
	Tags              []string `json:"tags"`
	IsActive          *bool    `json:"is_active"`
	IsFeatured        *bool    `json:"is_featured"`
}

// ListFilter holds catalog listing filters
type ListFilter struct {
	Query      string
	CategoryID uint
	Brand      string
	MinPrice   int64
	MaxPrice   int64
	InStock    bool
	Featured   bool
	SortBy     string // price_asc, price_desc, newest, rating, name
	Page       int
	Limit      int
}

// Pagination holds pagination metadata
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ListResponse is a paginated product listing
type ListResponse struct {
	Products   []Product  `json:"products"`
	Pagination Pagination `json:"pagination"`
}
