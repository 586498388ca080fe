// internal/domain/order/service_test.go
package order

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

type orderTestEnv struct {
	db     *gorm.DB
	cfg    *config.Config
	orders *Service
}

func setupOrderTest(t *testing.T) *orderTestEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&user.User{}, &user.Address{},
		&product.Category{}, &product.Product{}, &product.ProductImage{},
		&cart.CartItem{},
		&coupon.Coupon{}, &coupon.CouponUsage{},
		&promotion.Discount{}, &promotion.Redemption{},
		&Order{}, &OrderItem{}, &StatusHistory{},
		&inventory.Log{},
	))

	cfg := &config.Config{}
	cfg.Email.FromName = "Test"

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	carts := cart.NewService(db, nil, cfg)
	coupons := coupon.NewService(db, cfg)
	engine := promotion.NewEngine(db, cfg)
	emails := email.NewService(cfg, log)

	return &orderTestEnv{
		db:     db,
		cfg:    cfg,
		orders: NewService(db, cfg, carts, coupons, engine, emails, log),
	}
}

func (e *orderTestEnv) createUser(t *testing.T) *user.User {
	t.Helper()
	u := &user.User{
		Email:        fmt.Sprintf("%s@example.com", uuid.NewString()),
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "Shopper",
		IsActive:     true,
	}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *orderTestEnv) createProduct(t *testing.T, price int64, stock int, weight float64) *product.Product {
	t.Helper()
	id := uuid.NewString()[:8]
	p := &product.Product{
		Name:          "Product " + id,
		Slug:          "product-" + id,
		SKU:           "SKU-" + id,
		Price:         price,
		StockQuantity: stock,
		Weight:        weight,
		IsActive:      true,
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *orderTestEnv) addToCart(t *testing.T, userID, productID uint, qty int) {
	t.Helper()
	require.NoError(t, e.db.Create(&cart.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  qty,
	}).Error)
}

func testAddress() Address {
	return Address{
		FirstName:  "Test",
		LastName:   "Shopper",
		Street:     "1 Main St",
		City:       "Springfield",
		PostalCode: "12345",
		Country:    "US",
	}
}

func createRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		ShippingAddress: testAddress(),
		PaymentMethod:   "card",
	}
}

func (e *orderTestEnv) stockOf(t *testing.T, productID uint) int {
	t.Helper()
	var p product.Product
	require.NoError(t, e.db.First(&p, productID).Error)
	return p.StockQuantity
}

func TestCreateOrderSnapshotsAndDecrementsStock(t *testing.T) {
	env := setupOrderTest(t)
	u := env.createUser(t)
	p := env.createProduct(t, 2500, 10, 0)
	env.addToCart(t, u.ID, p.ID, 2)

	ord, err := env.orders.Create(u.ID, createRequest())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, ord.Status)
	assert.Equal(t, int64(5000), ord.Subtotal)
	require.Len(t, ord.Items, 1)
	assert.Equal(t, p.Name, ord.Items[0].ProductName)
	assert.Equal(t, p.SKU, ord.Items[0].SKU)
	assert.Equal(t, int64(2500), ord.Items[0].UnitPrice)

	assert.Equal(t, 8, env.stockOf(t, p.ID))

	var cartCount int64
	require.NoError(t, env.db.Model(&cart.CartItem{}).Where("user_id = ?", u.ID).Count(&cartCount).Error)
	assert.Zero(t, cartCount)

	var log inventory.Log
	require.NoError(t, env.db.Where("product_id = ?", p.ID).First(&log).Error)
	assert.Equal(t, inventory.TypeSold, log.Type)
	assert.Equal(t, 10, log.PreviousQuantity)
	assert.Equal(t, 8, log.NewQuantity)
	assert.Equal(t, ord.OrderNumber, log.Reference)

	require.Len(t, ord.StatusHistory, 1)
	assert.Equal(t, StatusPending, ord.StatusHistory[0].ToStatus)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	env := setupOrderTest(t)
	u := env.createUser(t)

	_, err := env.orders.Create(u.ID, createRequest())
	assert.ErrorIs(t, err, errs.ErrValidationFailed)
}

func TestCreateOrderWithCoupon(t *testing.T) {
	env := setupOrderTest(t)
	u := env.createUser(t)
	p := env.createProduct(t, 10000, 5, 0)
	env.addToCart(t, u.ID, p.ID, 1)

	c := &coupon.Coupon{
		Code:      "SAVE10",
		Type:      coupon.TypePercentage,
		Value:     10,
		IsActive:  true,
		StartsAt:  time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.NoError(t, env.db.Create(c).Error)

	req := createRequest()
	req.CouponCode = "SAVE10"
	ord, err := env.orders.Create(u.ID, req)
	require.NoError(t, err)

	assert.Equal(t, int64(10000), ord.Subtotal)
	assert.Equal(t, int64(1000), ord.DiscountTotal)
	assert.Equal(t, int64(9000), ord.Total)
	assert.Equal(t, "SAVE10", ord.CouponCode)

	var reloaded coupon.Coupon
	require.NoError(t, env.db.First(&reloaded, c.ID).Error)
	assert.Equal(t, 1, reloaded.UsedCount)

	var usage coupon.CouponUsage
	require.NoError(t, env.db.First(&usage).Error)
	assert.Equal(t, ord.ID, usage.OrderID)
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	env := setupOrderTest(t)
	u := env.createUser(t)
	p1 := env.createProduct(t, 1000, 10, 0)
	p2 := env.createProduct(t, 2000, 3, 0)
	env.addToCart(t, u.ID, p1.ID, 2)

	// Two variants of p2 each fit the stock on their own, but together
	// they oversell it: pricing passes, the second transactional
	// decrement must fail.
	require.NoError(t, env.db.Create(&cart.CartItem{
		UserID: u.ID, ProductID: p2.ID, Quantity: 2, Variant: "red",
	}).Error)
	require.NoError(t, env.db.Create(&cart.CartItem{
		UserID: u.ID, ProductID: p2.ID, Quantity: 2, Variant: "blue",
	}).Error)

	_, err := env.orders.Create(u.ID, createRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrInsufficientStock)

	// Nothing committed: no orders, both products untouched
	var orderCount int64
	require.NoError(t, env.db.Model(&Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount)
	assert.Equal(t, 10, env.stockOf(t, p1.ID))
	assert.Equal(t, 3, env.stockOf(t, p2.ID))
}

func TestCreateOrderUntrackedProductIgnoresStock(t *testing.T) {
	env := setupOrderTest(t)
	u := env.createUser(t)
	digital := env.createProduct(t, 5000, 0, 0)
	require.NoError(t, env.db.Model(&product.Product{}).Where("id = ?", digital.ID).
		UpdateColumn("track_quantity", false).Error)
	env.addToCart(t, u.ID, digital.ID, 2)

	ord, err := env.orders.Create(u.ID, createRequest())
	require.NoError(t, err)

	require.Len(t, ord.Items, 1)
	assert.Equal(t, 2, ord.Items[0].Quantity)
	assert.False(t, ord.Items[0].TrackQuantity)
	assert.Equal(t, 0, env.stockOf(t, digital.ID))

	// No stock movement in either direction
	var logs int64
	require.NoError(t, env.db.Model(&inventory.Log{}).Where("product_id = ?", digital.ID).Count(&logs).Error)
	assert.Zero(t, logs)

	_, err = env.orders.Cancel(ord.ID, u.ID, false, "refund")
	require.NoError(t, err)
	assert.Equal(t, 0, env.stockOf(t, digital.ID))
	require.NoError(t, env.db.Model(&inventory.Log{}).Where("product_id = ?", digital.ID).Count(&logs).Error)
	assert.Zero(t, logs)
}

func TestCreateOrderLargerDiscountWins(t *testing.T) {
	env := setupOrderTest(t)
	u := env.createUser(t)
	p := env.createProduct(t, 10000, 5, 0)
	env.addToCart(t, u.ID, p.ID, 1)

	require.NoError(t, env.db.Create(&coupon.Coupon{
		Code:      "SAVE10",
		Type:      coupon.TypePercentage,
		Value:     10,
		IsActive:  true,
		StartsAt:  time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error)
	require.NoError(t, env.db.Create(&promotion.Discount{
		Name:      "big auto",
		Type:      promotion.TypePercentage,
		Value:     20,
		IsActive:  true,
		StartsAt:  time.Now().Add(-time.Hour),
		ExpiresAt: time.Now().Add(time.Hour),
	}).Error)

	req := createRequest()
	req.CouponCode = "SAVE10"
	ord, err := env.orders.Create(u.ID, req)
	require.NoError(t, err)

	// The 20% automatic rule beats the 10% coupon; the coupon stays
	// unconsumed.
	assert.Equal(t, int64(2000), ord.DiscountTotal)
	assert.Empty(t, ord.CouponCode)
	require.Len(t, ord.Discounts, 1)
	assert.Equal(t, "big auto", ord.Discounts[0].Name)

	var rule promotion.Discount
	require.NoError(t, env.db.Where("name = ?", "big auto").First(&rule).Error)
	assert.Equal(t, 1, rule.UsageCount)

	var reloaded coupon.Coupon
	require.NoError(t, env.db.Where("code = ?", "SAVE10").First(&reloaded).Error)
	assert.Zero(t, reloaded.UsedCount)
}

func TestCreateOrderTaxAndShipping(t *testing.T) {
	env := setupOrderTest(t)
	env.cfg.Pricing.TaxRate = 0.08
	env.cfg.Pricing.ShippingBaseRate = 599

	u := env.createUser(t)
	p := env.createProduct(t, 10000, 5, 1)
	env.addToCart(t, u.ID, p.ID, 1)

	ord, err := env.orders.Create(u.ID, createRequest())
	require.NoError(t, err)

	assert.Equal(t, int64(800), ord.TaxAmount)
	assert.Equal(t, int64(599), ord.ShippingCost)
	assert.Equal(t, int64(11399), ord.Total)
}

func TestCreateOrderShippingWeightTiers(t *testing.T) {
	env := setupOrderTest(t)
	env.cfg.Pricing.ShippingBaseRate = 599

	u := env.createUser(t)
	heavy := env.createProduct(t, 1000, 20, 6)
	env.addToCart(t, u.ID, heavy.ID, 1)

	ord, err := env.orders.Create(u.ID, createRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(899), ord.ShippingCost)

	u2 := env.createUser(t)
	env.addToCart(t, u2.ID, heavy.ID, 2)

	ord2, err := env.orders.Create(u2.ID, createRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1198), ord2.ShippingCost)
}

func TestCancelRestoresStock(t *testing.T) {
	env := setupOrderTest(t)
	u := env.createUser(t)
	p := env.createProduct(t, 1000, 10, 0)
	env.addToCart(t, u.ID, p.ID, 4)

	ord, err := env.orders.Create(u.ID, createRequest())
	require.NoError(t, err)
	require.Equal(t, 6, env.stockOf(t, p.ID))

	cancelled, err := env.orders.Cancel(ord.ID, u.ID, false, "changed my mind")
	require.NoError(t, err)

	assert.Equal(t, StatusCancelled, cancelled.Status)
	assert.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, 10, env.stockOf(t, p.ID))

	var restock inventory.Log
	require.NoError(t, env.db.Where("product_id = ? AND type = ?", p.ID, inventory.TypeReturned).
		First(&restock).Error)
	assert.Equal(t, 4, restock.Quantity)

	// A second cancel is rejected
	_, err = env.orders.Cancel(ord.ID, u.ID, false, "again")
	assert.ErrorIs(t, err, errs.ErrInvalidState)
}

func TestCancelForbiddenForOtherUser(t *testing.T) {
	env := setupOrderTest(t)
	owner := env.createUser(t)
	stranger := env.createUser(t)
	p := env.createProduct(t, 1000, 10, 0)
	env.addToCart(t, owner.ID, p.ID, 1)

	ord, err := env.orders.Create(owner.ID, createRequest())
	require.NoError(t, err)

	_, err = env.orders.Cancel(ord.ID, stranger.ID, false, "")
	assert.ErrorIs(t, err, errs.ErrForbidden)

	// An admin can
	_, err = env.orders.Cancel(ord.ID, stranger.ID, true, "fraud review")
	assert.NoError(t, err)
}

func TestCancelAfterShipRejected(t *testing.T) {
	env := setupOrderTest(t)
	u := env.createUser(t)
	p := env.createProduct(t, 1000, 10, 0)
	env.addToCart(t, u.ID, p.ID, 1)

	ord, err := env.orders.Create(u.ID, createRequest())
	require.NoError(t, err)

	admin := env.createUser(t)
	for _, status := range []string{StatusConfirmed, StatusProcessing, StatusShipped} {
		_, err = env.orders.UpdateStatus(ord.ID, admin.ID, &UpdateStatusRequest{Status: status})
		require.NoError(t, err)
	}

	_, err = env.orders.Cancel(ord.ID, u.ID, false, "too late")
	assert.ErrorIs(t, err, errs.ErrInvalidState)
	assert.Equal(t, 9, env.stockOf(t, p.ID))
}

func TestUpdateStatusLifecycle(t *testing.T) {
	env := setupOrderTest(t)
	u := env.createUser(t)
	admin := env.createUser(t)
	p := env.createProduct(t, 1000, 10, 0)
	env.addToCart(t, u.ID, p.ID, 1)

	ord, err := env.orders.Create(u.ID, createRequest())
	require.NoError(t, err)

	// Skipping straight to shipped is not allowed
	_, err = env.orders.UpdateStatus(ord.ID, admin.ID, &UpdateStatusRequest{Status: StatusShipped})
	assert.ErrorIs(t, err, errs.ErrInvalidState)

	for _, status := range []string{StatusConfirmed, StatusProcessing} {
		ord, err = env.orders.UpdateStatus(ord.ID, admin.ID, &UpdateStatusRequest{Status: status})
		require.NoError(t, err)
		assert.Equal(t, status, ord.Status)
	}

	ord, err = env.orders.UpdateStatus(ord.ID, admin.ID, &UpdateStatusRequest{Status: StatusShipped})
	require.NoError(t, err)
	assert.NotNil(t, ord.ShippedAt)

	ord, err = env.orders.UpdateStatus(ord.ID, admin.ID, &UpdateStatusRequest{Status: StatusDelivered})
	require.NoError(t, err)
	assert.NotNil(t, ord.DeliveredAt)
	assert.Equal(t, PaymentPaid, ord.Payment.Status)
	assert.NotNil(t, ord.Payment.PaidAt)

	// The full trail is recorded
	assert.Len(t, ord.StatusHistory, 5)
}

func TestNewOrderNumberCollisionFree(t *testing.T) {
	const n = 50

	var mu sync.Mutex
	seen := make(map[string]bool, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			num := NewOrderNumber()
			mu.Lock()
			seen[num] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n)
	for num := range seen {
		assert.Regexp(t, `^ORD-[0-9A-F]{16}$`, num)
	}
}
