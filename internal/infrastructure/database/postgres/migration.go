// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
)

// Models returns every model the schema is built from, in dependency
// order.
func Models() []interface{} {
	return []interface{}{
		&user.User{},
		&user.Address{},
		&product.Category{},
		&product.Product{},
		&product.ProductImage{},
		&cart.CartItem{},
		&coupon.Coupon{},
		&coupon.CouponUsage{},
		&promotion.Discount{},
		&promotion.Redemption{},
		&order.Order{},
		&order.OrderItem{},
		&order.StatusHistory{},
		&inventory.Log{},
		&review.Review{},
		&wishlist.Item{},
	}
}

// RunMigrations applies the schema
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
