// internal/domain/promotion/engine_test.go
package promotion

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

func setupEngineTest(t *testing.T) (*gorm.DB, *Engine) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&product.Category{}, &product.Product{}, &product.ProductImage{},
		&Discount{}, &Redemption{},
	))

	cfg := &config.Config{}
	cfg.Pricing.VIPSpendThreshold = 100000
	cfg.Pricing.BulkOrderQuantity = 10

	return db, NewEngine(db, cfg)
}

func activeRule(name, typ string, value float64) *Discount {
	return &Discount{
		Name:      name,
		Type:      typ,
		Value:     value,
		IsActive:  true,
		StartsAt:  time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func engineCart(lines ...cart.Line) *cart.Cart {
	c := &cart.Cart{Items: lines}
	for _, l := range lines {
		c.Subtotal += l.LineTotal
		c.ItemCount += l.Quantity
	}
	return c
}

func cartLine(productID, categoryID uint, unitPrice int64, qty int) cart.Line {
	return cart.Line{
		ProductID:  productID,
		CategoryID: categoryID,
		UnitPrice:  unitPrice,
		Quantity:   qty,
		LineTotal:  unitPrice * int64(qty),
	}
}

func TestCalculatePercentageRule(t *testing.T) {
	db, engine := setupEngineTest(t)
	require.NoError(t, db.Create(activeRule("10% off", TypePercentage, 10)).Error)

	result, err := engine.Calculate(&Context{
		Cart:   engineCart(cartLine(1, 0, 10000, 1)),
		UserID: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1000), result.TotalDiscount)
	assert.Equal(t, int64(9000), result.FinalTotal)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "10% off", result.Applied[0].Name)
}

func TestCalculateBuyXGetYAllocatesCheapestFirst(t *testing.T) {
	db, engine := setupEngineTest(t)
	rule := activeRule("buy 2 get 1", TypeBuyXGetY, 0)
	rule.BuyQuantity = 2
	rule.GetQuantity = 1
	require.NoError(t, db.Create(rule).Error)

	// 3 units at $10 and 3 units at $5: 6 eligible units, 3 free,
	// all three allocated to the $5 item.
	result, err := engine.Calculate(&Context{
		Cart: engineCart(
			cartLine(1, 0, 1000, 3),
			cartLine(2, 0, 500, 3),
		),
		UserID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), result.TotalDiscount)
}

func TestCalculateStackedBeatsBestSingle(t *testing.T) {
	db, engine := setupEngineTest(t)

	s1 := activeRule("stack a", TypePercentage, 5)
	s1.Stackable = true
	s2 := activeRule("stack b", TypeFixedAmount, 300)
	s2.Stackable = true
	single := activeRule("solo", TypePercentage, 7)
	require.NoError(t, db.Create(s1).Error)
	require.NoError(t, db.Create(s2).Error)
	require.NoError(t, db.Create(single).Error)

	// Stacked: 5% of 10000 + 300 = 800. Best single: 700.
	result, err := engine.Calculate(&Context{
		Cart:   engineCart(cartLine(1, 0, 10000, 1)),
		UserID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(800), result.TotalDiscount)
	assert.Len(t, result.Applied, 2)
}

func TestCalculateBestSingleBeatsStacked(t *testing.T) {
	db, engine := setupEngineTest(t)

	s1 := activeRule("stack a", TypePercentage, 2)
	s1.Stackable = true
	single := activeRule("solo", TypePercentage, 15)
	require.NoError(t, db.Create(s1).Error)
	require.NoError(t, db.Create(single).Error)

	result, err := engine.Calculate(&Context{
		Cart:   engineCart(cartLine(1, 0, 10000, 1)),
		UserID: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1500), result.TotalDiscount)
	require.Len(t, result.Applied, 1)
	assert.Equal(t, "solo", result.Applied[0].Name)
}

func TestCalculateFreeShipping(t *testing.T) {
	db, engine := setupEngineTest(t)
	require.NoError(t, db.Create(activeRule("free shipping", TypeFreeShipping, 0)).Error)

	result, err := engine.Calculate(&Context{
		Cart:         engineCart(cartLine(1, 0, 10000, 1)),
		UserID:       1,
		ShippingCost: 599,
	})
	require.NoError(t, err)
	assert.True(t, result.FreeShipping)
	assert.Equal(t, int64(599), result.TotalDiscount)
}

func TestCalculateMinimumAmountGate(t *testing.T) {
	db, engine := setupEngineTest(t)
	rule := activeRule("big spender", TypePercentage, 10)
	rule.MinimumAmount = 50000
	require.NoError(t, db.Create(rule).Error)

	result, err := engine.Calculate(&Context{
		Cart:   engineCart(cartLine(1, 0, 10000, 1)),
		UserID: 1,
	})
	require.NoError(t, err)
	assert.Zero(t, result.TotalDiscount)
	assert.Empty(t, result.Applied)
}

func TestCalculateFirstTimeOnly(t *testing.T) {
	db, engine := setupEngineTest(t)
	rule := activeRule("welcome", TypePercentage, 10)
	rule.FirstTimeOnly = true
	require.NoError(t, db.Create(rule).Error)

	crt := engineCart(cartLine(1, 0, 10000, 1))

	result, err := engine.Calculate(&Context{Cart: crt, UserID: 1, OrderCount: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.TotalDiscount)

	result, err = engine.Calculate(&Context{Cart: crt, UserID: 1, OrderCount: 3})
	require.NoError(t, err)
	assert.Zero(t, result.TotalDiscount)
}

func TestCalculateCustomerSegments(t *testing.T) {
	db, engine := setupEngineTest(t)
	rule := activeRule("vip perk", TypePercentage, 10)
	rule.CustomerSegments = SegmentVIPCustomer
	require.NoError(t, db.Create(rule).Error)

	crt := engineCart(cartLine(1, 0, 10000, 1))

	result, err := engine.Calculate(&Context{Cart: crt, UserID: 1, OrderCount: 5, LifetimeSpend: 50000})
	require.NoError(t, err)
	assert.Zero(t, result.TotalDiscount)

	result, err = engine.Calculate(&Context{Cart: crt, UserID: 1, OrderCount: 5, LifetimeSpend: 150000})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.TotalDiscount)
}

func TestCalculateMaxUsagePerCustomer(t *testing.T) {
	db, engine := setupEngineTest(t)
	rule := activeRule("limited", TypePercentage, 10)
	rule.MaxUsagePerCustomer = 1
	require.NoError(t, db.Create(rule).Error)

	crt := engineCart(cartLine(1, 0, 10000, 1))

	result, err := engine.Calculate(&Context{Cart: crt, UserID: 9, OrderCount: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.TotalDiscount)

	require.NoError(t, db.Create(&Redemption{
		OrderID:    1,
		DiscountID: rule.ID,
		UserID:     9,
		Amount:     1000,
	}).Error)

	result, err = engine.Calculate(&Context{Cart: crt, UserID: 9, OrderCount: 1})
	require.NoError(t, err)
	assert.Zero(t, result.TotalDiscount)
}

func TestCalculateSkipsExhaustedRule(t *testing.T) {
	db, engine := setupEngineTest(t)
	rule := activeRule("capped", TypePercentage, 10)
	rule.MaxUsage = 2
	require.NoError(t, db.Create(rule).Error)

	crt := engineCart(cartLine(1, 0, 10000, 1))

	result, err := engine.Calculate(&Context{Cart: crt, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), result.TotalDiscount)

	require.NoError(t, db.Model(rule).UpdateColumn("usage_count", 2).Error)

	result, err = engine.Calculate(&Context{Cart: crt, UserID: 1})
	require.NoError(t, err)
	assert.Zero(t, result.TotalDiscount)
	assert.Empty(t, result.Applied)
}

func TestRedeemBumpsGlobalUsage(t *testing.T) {
	db, engine := setupEngineTest(t)
	rule := activeRule("scarce", TypePercentage, 10)
	rule.MaxUsage = 1
	require.NoError(t, db.Create(rule).Error)

	applied := []AppliedDiscount{{DiscountID: rule.ID, Name: rule.Name, Amount: 1000}}
	require.NoError(t, engine.Redeem(db, 1, 1, applied))

	var reloaded Discount
	require.NoError(t, db.First(&reloaded, rule.ID).Error)
	assert.Equal(t, 1, reloaded.UsageCount)

	var redemptions int64
	require.NoError(t, db.Model(&Redemption{}).Where("discount_id = ?", rule.ID).Count(&redemptions).Error)
	assert.Equal(t, int64(1), redemptions)

	// The cap is spent, a second redemption must not slip through
	assert.ErrorIs(t, engine.Redeem(db, 2, 2, applied), errs.ErrLimitExceeded)
}

func TestCalculateProductScopedRule(t *testing.T) {
	db, engine := setupEngineTest(t)

	p := &product.Product{Name: "A", Slug: "a", SKU: "A-1", Price: 1000, IsActive: true}
	require.NoError(t, db.Create(p).Error)

	rule := activeRule("only a", TypePercentage, 50)
	rule.ApplicableProducts = []product.Product{*p}
	require.NoError(t, db.Create(rule).Error)

	result, err := engine.Calculate(&Context{
		Cart: engineCart(
			cartLine(p.ID, 0, 1000, 1),
			cartLine(999, 0, 5000, 1),
		),
		UserID: 1,
	})
	require.NoError(t, err)

	// Only the scoped line contributes to the discount base
	assert.Equal(t, int64(500), result.TotalDiscount)
}

func TestCalculateFinalTotalNeverNegative(t *testing.T) {
	db, engine := setupEngineTest(t)
	require.NoError(t, db.Create(activeRule("too generous", TypeFixedAmount, 99999)).Error)

	result, err := engine.Calculate(&Context{
		Cart:   engineCart(cartLine(1, 0, 500, 1)),
		UserID: 1,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.FinalTotal, int64(0))
}

func TestCalculateExpiredRuleIgnored(t *testing.T) {
	db, engine := setupEngineTest(t)
	rule := activeRule("over", TypePercentage, 10)
	rule.StartsAt = time.Now().Add(-48 * time.Hour)
	rule.ExpiresAt = time.Now().Add(-24 * time.Hour)
	require.NoError(t, db.Create(rule).Error)

	result, err := engine.Calculate(&Context{
		Cart:   engineCart(cartLine(1, 0, 10000, 1)),
		UserID: 1,
	})
	require.NoError(t, err)
	assert.Zero(t, result.TotalDiscount)
}
