// internal/domain/coupon/service_test.go
package coupon

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

func setupCouponTest(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&product.Category{}, &product.Product{}, &product.ProductImage{},
		&Coupon{}, &CouponUsage{},
	))

	return db, NewService(db, &config.Config{})
}

func testCart(lines ...cart.Line) *cart.Cart {
	c := &cart.Cart{Items: lines}
	for _, l := range lines {
		c.Subtotal += l.LineTotal
		c.ItemCount += l.Quantity
	}
	return c
}

func line(productID, categoryID uint, unitPrice int64, qty int) cart.Line {
	return cart.Line{
		ProductID:  productID,
		CategoryID: categoryID,
		UnitPrice:  unitPrice,
		Quantity:   qty,
		LineTotal:  unitPrice * int64(qty),
	}
}

func activeCoupon(code, typ string, value float64) *Coupon {
	return &Coupon{
		Code:      code,
		Type:      typ,
		Value:     value,
		IsActive:  true,
		StartsAt:  time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestValidatePercentage(t *testing.T) {
	db, svc := setupCouponTest(t)
	require.NoError(t, db.Create(activeCoupon("SAVE10", TypePercentage, 10)).Error)

	quote, err := svc.Validate(1, "save10", testCart(line(1, 0, 10000, 1)))
	require.NoError(t, err)

	assert.Equal(t, "SAVE10", quote.Code)
	assert.Equal(t, int64(1000), quote.DiscountAmount)
}

func TestValidatePercentageCappedAtMaximumDiscount(t *testing.T) {
	db, svc := setupCouponTest(t)
	c := activeCoupon("BIG20", TypePercentage, 20)
	c.MaximumDiscount = 5000
	require.NoError(t, db.Create(c).Error)

	// 20% of 100000 would be 20000, the cap wins
	quote, err := svc.Validate(1, "BIG20", testCart(line(1, 0, 100000, 1)))
	require.NoError(t, err)
	assert.Equal(t, int64(5000), quote.DiscountAmount)
}

func TestValidateFixedNeverExceedsApplicableTotal(t *testing.T) {
	db, svc := setupCouponTest(t)
	require.NoError(t, db.Create(activeCoupon("FLAT50", TypeFixed, 5000)).Error)

	quote, err := svc.Validate(1, "FLAT50", testCart(line(1, 0, 2000, 1)))
	require.NoError(t, err)
	assert.Equal(t, int64(2000), quote.DiscountAmount)
}

func TestValidateMinimumCheckedAgainstFullCart(t *testing.T) {
	db, svc := setupCouponTest(t)
	c := activeCoupon("MIN100", TypePercentage, 10)
	c.MinimumAmount = 10000
	require.NoError(t, db.Create(c).Error)

	_, err := svc.Validate(1, "MIN100", testCart(line(1, 0, 5000, 1)))
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrValidationFailed)

	_, err = svc.Validate(1, "MIN100", testCart(line(1, 0, 5000, 2)))
	assert.NoError(t, err)
}

func TestValidateOutsideWindow(t *testing.T) {
	db, svc := setupCouponTest(t)
	c := activeCoupon("GONE", TypePercentage, 10)
	c.StartsAt = time.Now().Add(-48 * time.Hour)
	c.ExpiresAt = time.Now().Add(-24 * time.Hour)
	require.NoError(t, db.Create(c).Error)

	_, err := svc.Validate(1, "GONE", testCart(line(1, 0, 10000, 1)))
	assert.ErrorIs(t, err, errs.ErrExpired)
}

func TestValidateUnknownCode(t *testing.T) {
	_, svc := setupCouponTest(t)

	_, err := svc.Validate(1, "NOPE", testCart(line(1, 0, 10000, 1)))
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestValidateExclusionsWinOverInclusions(t *testing.T) {
	db, svc := setupCouponTest(t)

	p1 := &product.Product{Name: "A", Slug: "a", SKU: "A-1", Price: 1000, IsActive: true}
	p2 := &product.Product{Name: "B", Slug: "b", SKU: "B-1", Price: 2000, IsActive: true}
	require.NoError(t, db.Create(p1).Error)
	require.NoError(t, db.Create(p2).Error)

	c := activeCoupon("PICKY", TypePercentage, 50)
	c.ExcludedProducts = []product.Product{*p2}
	require.NoError(t, db.Create(c).Error)

	quote, err := svc.Validate(1, "PICKY", testCart(
		line(p1.ID, 0, 1000, 1),
		line(p2.ID, 0, 2000, 1),
	))
	require.NoError(t, err)

	// Only the non-excluded line is discounted
	assert.Equal(t, int64(1000), quote.ApplicableTotal)
	assert.Equal(t, int64(500), quote.DiscountAmount)
}

func TestValidateNoEligibleItems(t *testing.T) {
	db, svc := setupCouponTest(t)

	p := &product.Product{Name: "A", Slug: "a", SKU: "A-1", Price: 1000, IsActive: true}
	require.NoError(t, db.Create(p).Error)

	c := activeCoupon("NARROW", TypePercentage, 10)
	c.ApplicableProducts = []product.Product{*p}
	require.NoError(t, db.Create(c).Error)

	_, err := svc.Validate(1, "NARROW", testCart(line(9999, 0, 1000, 1)))
	assert.ErrorIs(t, err, errs.ErrValidationFailed)
}

func TestRedeemEnforcesPerUserLimit(t *testing.T) {
	db, svc := setupCouponTest(t)
	c := activeCoupon("ONCE", TypePercentage, 10)
	c.UsageLimitPerUser = 1
	require.NoError(t, db.Create(c).Error)

	crt := testCart(line(1, 0, 10000, 1))
	quote, err := svc.Validate(7, "ONCE", crt)
	require.NoError(t, err)
	require.NoError(t, svc.Redeem(db, 7, quote, 100))

	// The same user cannot validate or redeem a second time
	_, err = svc.Validate(7, "ONCE", crt)
	assert.ErrorIs(t, err, errs.ErrLimitExceeded)
	assert.ErrorIs(t, svc.Redeem(db, 7, quote, 101), errs.ErrLimitExceeded)

	// A different user still can
	_, err = svc.Validate(8, "ONCE", crt)
	assert.NoError(t, err)
}

func TestRedeemEnforcesGlobalLimit(t *testing.T) {
	db, svc := setupCouponTest(t)
	c := activeCoupon("SCARCE", TypePercentage, 10)
	c.UsageLimit = 2
	require.NoError(t, db.Create(c).Error)

	crt := testCart(line(1, 0, 10000, 1))
	quote, err := svc.Validate(1, "SCARCE", crt)
	require.NoError(t, err)

	require.NoError(t, svc.Redeem(db, 1, quote, 1))
	require.NoError(t, svc.Redeem(db, 2, quote, 2))
	assert.ErrorIs(t, svc.Redeem(db, 3, quote, 3), errs.ErrLimitExceeded)

	var reloaded Coupon
	require.NoError(t, db.First(&reloaded, c.ID).Error)
	assert.Equal(t, 2, reloaded.UsedCount)
}

func TestRedeemWritesUsageLedger(t *testing.T) {
	db, svc := setupCouponTest(t)
	require.NoError(t, db.Create(activeCoupon("LEDGER", TypeFixed, 500)).Error)

	quote, err := svc.Validate(4, "LEDGER", testCart(line(1, 0, 10000, 1)))
	require.NoError(t, err)
	require.NoError(t, svc.Redeem(db, 4, quote, 42))

	var usage CouponUsage
	require.NoError(t, db.First(&usage).Error)
	assert.Equal(t, uint(4), usage.UserID)
	assert.Equal(t, uint(42), usage.OrderID)
	assert.Equal(t, int64(500), usage.Amount)
}

func TestRedeemRechecksLedgerAfterCounterUpdate(t *testing.T) {
	db, svc := setupCouponTest(t)
	c := activeCoupon("RACY", TypePercentage, 10)
	c.UsageLimitPerUser = 1
	require.NoError(t, db.Create(c).Error)

	quote, err := svc.Validate(5, "RACY", testCart(line(1, 0, 10000, 1)))
	require.NoError(t, err)

	// A redemption by the same user lands between validation and this
	// redeem attempt. The ledger recheck runs after the counter update
	// and must still catch it.
	require.NoError(t, db.Create(&CouponUsage{
		CouponID: c.ID,
		UserID:   5,
		OrderID:  99,
		Amount:   1000,
	}).Error)

	assert.ErrorIs(t, svc.Redeem(db, 5, quote, 100), errs.ErrLimitExceeded)
}

func TestCreateDefaultsPerUserLimitToOne(t *testing.T) {
	_, svc := setupCouponTest(t)

	created, err := svc.Create(&CreateCouponRequest{
		Code:  "DEFAULT1",
		Type:  TypePercentage,
		Value: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created.UsageLimitPerUser)

	unlimited := 0
	created, err = svc.Create(&CreateCouponRequest{
		Code:              "FREEFORALL",
		Type:              TypePercentage,
		Value:             10,
		UsageLimitPerUser: &unlimited,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created.UsageLimitPerUser)
}

func TestCreateNormalizesCode(t *testing.T) {
	_, svc := setupCouponTest(t)

	created, err := svc.Create(&CreateCouponRequest{
		Code:      "  welcome10 ",
		Type:      TypePercentage,
		Value:     10,
		StartsAt:  time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", created.Code)

	_, err = svc.Create(&CreateCouponRequest{
		Code:  "WELCOME10",
		Type:  TypePercentage,
		Value: 5,
	})
	assert.ErrorIs(t, err, errs.ErrValidationFailed)
}
