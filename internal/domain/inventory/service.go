// internal/domain/inventory/service.go
package inventory

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Service handles inventory business logic
type Service struct {
	db *gorm.DB
}

// NewService creates a new inventory service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Adjust applies a manual stock change and records it in the log.
// Decrements are conditional on sufficient stock so concurrent
// adjustments cannot drive the quantity negative.
func (s *Service) Adjust(actorID uint, req *AdjustRequest) (*Log, error) {
	change := req.Change
	if req.Type == TypeStockOut && change > 0 {
		change = -change
	}
	if req.Type == TypeStockIn && change < 0 {
		return nil, errs.Validationf("stock_in change must be positive")
	}
	if change == 0 {
		return nil, errs.Validationf("change cannot be zero")
	}

	var log *Log
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		log, err = ApplyChange(tx, req.ProductID, change, req.Type, req.Reason, req.Reference, actorID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return log, nil
}

// ApplyChange mutates a product's stock inside the caller's
// transaction and appends the matching log row. Negative deltas use a
// conditional update and fail with ErrInsufficientStock when the
// product does not have enough stock left.
func ApplyChange(tx *gorm.DB, productID uint, change int, logType, reason, reference string, actorID uint) (*Log, error) {
	var p product.Product
	if err := tx.First(&p, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("product %d", productID)
		}
		return nil, fmt.Errorf("failed to load product: %w", err)
	}

	query := tx.Model(&product.Product{}).Where("id = ?", productID)
	if change < 0 {
		query = query.Where("stock_quantity >= ?", -change)
	}
	result := query.UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", change))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("product %s has only %d in stock: %w", p.Name, p.StockQuantity, errs.ErrInsufficientStock)
	}

	var updated product.Product
	if err := tx.Select("stock_quantity").First(&updated, productID).Error; err != nil {
		return nil, fmt.Errorf("failed to reload stock: %w", err)
	}

	log := &Log{
		ProductID:        productID,
		Type:             logType,
		Quantity:         change,
		PreviousQuantity: updated.StockQuantity - change,
		NewQuantity:      updated.StockQuantity,
		Reason:           reason,
		Reference:        reference,
		CreatedBy:        actorID,
	}
	if err := tx.Create(log).Error; err != nil {
		return nil, fmt.Errorf("failed to write inventory log: %w", err)
	}
	return log, nil
}

// GetLogs returns the inventory ledger, newest first
func (s *Service) GetLogs(filter *LogFilter) ([]Log, int64, error) {
	query := s.db.Model(&Log{})
	if filter.ProductID > 0 {
		query = query.Where("product_id = ?", filter.ProductID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count inventory logs: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var logs []Log
	err := query.Preload("Product").
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list inventory logs: %w", err)
	}
	return logs, total, nil
}

// LowStock returns active products at or below their low stock
// threshold.
func (s *Service) LowStock() ([]product.Product, error) {
	var products []product.Product
	err := s.db.Where("is_active = ? AND stock_quantity <= low_stock_threshold", true).
		Order("stock_quantity ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock products: %w", err)
	}
	return products, nil
}

// GetStats summarizes inventory health across active products
func (s *Service) GetStats() (*Stats, error) {
	stats := &Stats{}

	if err := s.db.Model(&product.Product{}).Where("is_active = ?", true).
		Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := s.db.Model(&product.Product{}).
		Where("is_active = ? AND stock_quantity = 0", true).
		Count(&stats.OutOfStock).Error; err != nil {
		return nil, fmt.Errorf("failed to count out of stock products: %w", err)
	}
	if err := s.db.Model(&product.Product{}).
		Where("is_active = ? AND stock_quantity > 0 AND stock_quantity <= low_stock_threshold", true).
		Count(&stats.LowStock).Error; err != nil {
		return nil, fmt.Errorf("failed to count low stock products: %w", err)
	}

	var value struct{ Total int64 }
	err := s.db.Model(&product.Product{}).
		Select("COALESCE(SUM(price * stock_quantity), 0) AS total").
		Where("is_active = ?", true).
		Scan(&value).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute stock value: %w", err)
	}
	stats.TotalStockValue = value.Total

	return stats, nil
}
