// internal/domain/product/service_test.go
package product

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

func setupProductTest(t *testing.T) (*gorm.DB, *Service) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&Category{}, &Product{}, &ProductImage{}))

	return db, NewService(db, &config.Config{})
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Plain Name":           "plain-name",
		"  Trimmed  ":          "trimmed",
		"Special & Chars 2.0!": "special-chars-2-0",
		"UPPER":                "upper",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input %q", in)
	}
}

func TestCreateProduct(t *testing.T) {
	_, svc := setupProductTest(t)

	p, err := svc.Create(&CreateProductRequest{
		Name:          "Walnut Desk",
		SKU:           "wd-001",
		Price:         45000,
		StockQuantity: 3,
		Tags:          []string{"wood", "office"},
		ImageURLs:     []string{"https://cdn.example.com/desk.jpg"},
	})
	require.NoError(t, err)

	assert.Equal(t, "walnut-desk", p.Slug)
	assert.Equal(t, "WD-001", p.SKU)
	assert.Equal(t, "wood,office", p.Tags)
	require.Len(t, p.Images, 1)
	assert.True(t, p.Images[0].IsPrimary)

	// Duplicate SKU is rejected
	_, err = svc.Create(&CreateProductRequest{
		Name:  "Another Desk",
		SKU:   "WD-001",
		Price: 100,
	})
	assert.ErrorIs(t, err, errs.ErrValidationFailed)
}

func TestListFilters(t *testing.T) {
	db, svc := setupProductTest(t)

	cat := &Category{Name: "Desks", Slug: "desks", IsActive: true}
	require.NoError(t, db.Create(cat).Error)

	seed := []Product{
		{Name: "Cheap Desk", Slug: "cheap-desk", SKU: "C-1", Price: 5000, StockQuantity: 5, CategoryID: cat.ID, IsActive: true},
		{Name: "Fancy Desk", Slug: "fancy-desk", SKU: "F-1", Price: 90000, StockQuantity: 0, CategoryID: cat.ID, IsActive: true},
		{Name: "Hidden Desk", Slug: "hidden-desk", SKU: "H-1", Price: 1000, StockQuantity: 5, IsActive: false},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	// Inactive products never appear
	resp, err := svc.List(&ListFilter{})
	require.NoError(t, err)
	assert.Len(t, resp.Products, 2)
	assert.Equal(t, int64(2), resp.Pagination.Total)

	// In-stock filter drops the sold-out one
	resp, err = svc.List(&ListFilter{InStock: true})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Cheap Desk", resp.Products[0].Name)

	// Price sort
	resp, err = svc.List(&ListFilter{SortBy: "price_desc"})
	require.NoError(t, err)
	require.Len(t, resp.Products, 2)
	assert.Equal(t, "Fancy Desk", resp.Products[0].Name)

	// Text search matches names case-insensitively
	resp, err = svc.List(&ListFilter{Query: "fancy"})
	require.NoError(t, err)
	require.Len(t, resp.Products, 1)
	assert.Equal(t, "Fancy Desk", resp.Products[0].Name)
}

func TestGetBySlugOnlyReturnsActive(t *testing.T) {
	db, svc := setupProductTest(t)

	p := &Product{Name: "Ghost", Slug: "ghost", SKU: "G-1", Price: 1000, IsActive: false}
	require.NoError(t, db.Create(p).Error)

	_, err := svc.GetBySlug("ghost")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestUpdateProductValidatesPrice(t *testing.T) {
	_, svc := setupProductTest(t)

	p, err := svc.Create(&CreateProductRequest{Name: "Lamp", SKU: "L-1", Price: 2000})
	require.NoError(t, err)

	bad := int64(-5)
	_, err = svc.Update(p.ID, &UpdateProductRequest{Price: &bad})
	assert.ErrorIs(t, err, errs.ErrValidationFailed)

	good := int64(2500)
	updated, err := svc.Update(p.ID, &UpdateProductRequest{Price: &good})
	require.NoError(t, err)
	assert.Equal(t, int64(2500), updated.Price)
}
