// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/report"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/domain/wishlist"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
)

// Services bundles everything the route table depends on
type Services struct {
	Users      *user.Service
	Products   *product.Service
	Categories *product.CategoryService
	Carts      *cart.Service
	Coupons    *coupon.Service
	Promotions *promotion.Service
	Engine     *promotion.Engine
	Orders     *order.Service
	Inventory  *inventory.Service
	Reviews    *review.Service
	Wishlists  *wishlist.Service
	Reports    *report.Service
}

// Setup wires every endpoint onto the router
func Setup(router *gin.Engine, cfg *config.Config, logger *logrus.Logger, svc *Services) {
	jwtManager := auth.NewJWTManager(cfg)

	authHandler := handlers.NewAuthHandler(svc.Users)
	productHandler := handlers.NewProductHandler(svc.Products)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories)
	cartHandler := handlers.NewCartHandler(svc.Carts)
	couponHandler := handlers.NewCouponHandler(svc.Coupons, svc.Carts)
	discountHandler := handlers.NewDiscountHandler(svc.Promotions, svc.Engine, svc.Carts)
	orderHandler := handlers.NewOrderHandler(svc.Orders)
	inventoryHandler := handlers.NewInventoryHandler(svc.Inventory)
	reviewHandler := handlers.NewReviewHandler(svc.Reviews)
	wishlistHandler := handlers.NewWishlistHandler(svc.Wishlists)
	reportHandler := handlers.NewReportHandler(svc.Reports)

	v1 := router.Group("/api/v1")

	// Public routes
	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	v1.GET("/products", productHandler.List)
	v1.GET("/products/:slug", productHandler.GetBySlug)
	v1.GET("/categories", categoryHandler.List)
	v1.GET("/categories/:id", categoryHandler.Get)
	v1.GET("/reviews/product/:id", reviewHandler.ListByProduct)

	guestCart := v1.Group("/cart/guest")
	{
		guestCart.GET("", cartHandler.GetGuest)
		guestCart.POST("/items", cartHandler.AddGuestItem)
	}

	// Authenticated routes
	authed := v1.Group("")
	authed.Use(middleware.AuthRequired(jwtManager))
	{
		authed.GET("/auth/profile", authHandler.Profile)
		authed.PUT("/auth/profile", authHandler.UpdateProfile)
		authed.POST("/auth/addresses", authHandler.AddAddress)
		authed.DELETE("/auth/addresses/:id", authHandler.DeleteAddress)

		authed.GET("/cart", cartHandler.Get)
		authed.DELETE("/cart", cartHandler.Clear)
		authed.POST("/cart/items", cartHandler.AddItem)
		authed.PUT("/cart/items/:productId", cartHandler.UpdateItem)
		authed.DELETE("/cart/items/:productId", cartHandler.RemoveItem)
		authed.POST("/cart/merge", cartHandler.Merge)

		authed.POST("/coupons/validate", couponHandler.Validate)
		authed.POST("/coupons/apply", couponHandler.Apply)
		authed.GET("/discounts/preview", discountHandler.Preview)

		authed.POST("/orders", orderHandler.Create)
		authed.GET("/orders", orderHandler.List)
		authed.GET("/orders/:id", orderHandler.Get)
		authed.PUT("/orders/:id/cancel", orderHandler.Cancel)
		authed.PUT("/orders/:id/status", middleware.AdminRequired(), orderHandler.UpdateStatus)

		authed.POST("/reviews", reviewHandler.Create)
		authed.DELETE("/reviews/:id", reviewHandler.Delete)

		authed.GET("/wishlist", wishlistHandler.List)
		authed.POST("/wishlist/:productId", wishlistHandler.Add)
		authed.DELETE("/wishlist/:productId", wishlistHandler.Remove)
	}

	// Admin routes
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthRequired(jwtManager), middleware.AdminRequired())
	{
		admin.POST("/products", productHandler.Create)
		admin.PUT("/products/:id", productHandler.Update)
		admin.DELETE("/products/:id", productHandler.Delete)

		admin.POST("/categories", categoryHandler.Create)
		admin.DELETE("/categories/:id", categoryHandler.Delete)

		admin.GET("/coupons", couponHandler.List)
		admin.POST("/coupons", couponHandler.Create)
		admin.GET("/coupons/:code", couponHandler.Get)
		admin.PUT("/coupons/:code", couponHandler.Update)
		admin.DELETE("/coupons/:code", couponHandler.Delete)

		admin.GET("/discounts", discountHandler.List)
		admin.POST("/discounts", discountHandler.Create)
		admin.GET("/discounts/:id", discountHandler.Get)
		admin.PUT("/discounts/:id", discountHandler.Update)
		admin.DELETE("/discounts/:id", discountHandler.Delete)

		admin.GET("/orders", orderHandler.ListAll)

		admin.POST("/inventory/adjust", inventoryHandler.Adjust)
		admin.GET("/inventory/logs", inventoryHandler.Logs)
		admin.GET("/inventory/low-stock", inventoryHandler.LowStock)
		admin.GET("/inventory/stats", inventoryHandler.Stats)

		admin.GET("/reports/sales", reportHandler.Sales)
		admin.GET("/reports/top-products", reportHandler.TopProducts)
		admin.GET("/reports/coupons", reportHandler.Coupons)
	}
}
