// internal/domain/inventory/service_test.go
package inventory

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

func setupInventoryTest(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&product.Category{}, &product.Product{}, &product.ProductImage{},
		&Log{},
	))

	return db, NewService(db)
}

func seedProduct(t *testing.T, db *gorm.DB, stock int) *product.Product {
	t.Helper()
	id := uuid.NewString()[:8]
	p := &product.Product{
		Name:              "Product " + id,
		Slug:              "product-" + id,
		SKU:               "SKU-" + id,
		Price:             1000,
		StockQuantity:     stock,
		LowStockThreshold: 5,
		IsActive:          true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestAdjustStockIn(t *testing.T) {
	db, svc := setupInventoryTest(t)
	p := seedProduct(t, db, 10)

	log, err := svc.Adjust(1, &AdjustRequest{
		ProductID: p.ID,
		Change:    5,
		Type:      TypeStockIn,
		Reason:    "restock delivery",
	})
	require.NoError(t, err)

	assert.Equal(t, 10, log.PreviousQuantity)
	assert.Equal(t, 15, log.NewQuantity)
	assert.Equal(t, 5, log.Quantity)

	var reloaded product.Product
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, 15, reloaded.StockQuantity)
}

func TestAdjustStockOutNeverGoesNegative(t *testing.T) {
	db, svc := setupInventoryTest(t)
	p := seedProduct(t, db, 3)

	_, err := svc.Adjust(1, &AdjustRequest{
		ProductID: p.ID,
		Change:    5,
		Type:      TypeStockOut,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInsufficientStock)

	var reloaded product.Product
	require.NoError(t, db.First(&reloaded, p.ID).Error)
	assert.Equal(t, 3, reloaded.StockQuantity)

	// The failed attempt leaves no ledger row
	var count int64
	require.NoError(t, db.Model(&Log{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestAdjustRejectsZeroChange(t *testing.T) {
	db, svc := setupInventoryTest(t)
	p := seedProduct(t, db, 3)

	_, err := svc.Adjust(1, &AdjustRequest{
		ProductID: p.ID,
		Change:    0,
		Type:      TypeAdjustment,
	})
	assert.ErrorIs(t, err, errs.ErrValidationFailed)
}

func TestGetLogsFilters(t *testing.T) {
	db, svc := setupInventoryTest(t)
	p1 := seedProduct(t, db, 10)
	p2 := seedProduct(t, db, 10)

	_, err := svc.Adjust(1, &AdjustRequest{ProductID: p1.ID, Change: 5, Type: TypeStockIn})
	require.NoError(t, err)
	_, err = svc.Adjust(1, &AdjustRequest{ProductID: p2.ID, Change: 2, Type: TypeStockOut})
	require.NoError(t, err)

	logs, total, err := svc.GetLogs(&LogFilter{ProductID: p1.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, TypeStockIn, logs[0].Type)

	logs, total, err = svc.GetLogs(&LogFilter{Type: TypeStockOut})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, -2, logs[0].Quantity)
}

func TestLowStockAndStats(t *testing.T) {
	db, svc := setupInventoryTest(t)
	seedProduct(t, db, 100)
	low := seedProduct(t, db, 2)
	out := seedProduct(t, db, 0)

	products, err := svc.LowStock()
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, out.ID, products[0].ID)
	assert.Equal(t, low.ID, products[1].ID)

	stats, err := svc.GetStats()
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalProducts)
	assert.Equal(t, int64(1), stats.OutOfStock)
	assert.Equal(t, int64(1), stats.LowStock)
	assert.Equal(t, int64(102000), stats.TotalStockValue)
}
