// cmd/api/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

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
	"github.com/your-org/storefront-backend/internal/infrastructure/database/postgres"
	redisdb "github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	httpserver "github.com/your-org/storefront-backend/internal/interfaces/http"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/email"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}

	logger := newLogger(cfg)

	db, err := postgres.NewConnection(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := postgres.RunMigrations(db.GetDB()); err != nil {
		logger.WithError(err).Fatal("Failed to run migrations")
	}

	redisClient, err := redisdb.NewConnection(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to redis")
	}
	defer redisClient.Close()

	gormDB := db.GetDB()
	emailService := email.NewService(cfg, logger)
	cartService := cart.NewService(gormDB, redisClient, cfg)
	couponService := coupon.NewService(gormDB, cfg)
	engine := promotion.NewEngine(gormDB, cfg)

	services := &routes.Services{
		Users:      user.NewService(gormDB, cfg),
		Products:   product.NewService(gormDB, cfg),
		Categories: product.NewCategoryService(gormDB),
		Carts:      cartService,
		Coupons:    couponService,
		Promotions: promotion.NewService(gormDB),
		Engine:     engine,
		Orders:     order.NewService(gormDB, cfg, cartService, couponService, engine, emailService, logger),
		Inventory:  inventory.NewService(gormDB),
		Reviews:    review.NewService(gormDB),
		Wishlists:  wishlist.NewService(gormDB),
		Reports:    report.NewService(gormDB, redisClient),
	}

	server := httpserver.NewServer(cfg, logger, db, redisClient, services)

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
	logger.Info("Server stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
