// internal/domain/product/category_service.go
package product

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// CategoryService handles category business logic
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

// CreateCategoryRequest represents a category creation request
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ParentID    *uint  `json:"parent_id"`
	SortOrder   int    `json:"sort_order"`
}

// Create creates a new category
func (s *CategoryService) Create(req *CreateCategoryRequest) (*Category, error) {
	slug := Slugify(req.Name)

	var count int64
	if err := s.db.Model(&Category{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check existing category: %w", err)
	}
	if count > 0 {
		return nil, errs.Validationf("category %q already exists", req.Name)
	}

	if req.ParentID != nil {
		var parent Category
		if err := s.db.First(&parent, *req.ParentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errs.NotFoundf("parent category %d", *req.ParentID)
			}
			return nil, fmt.Errorf("failed to look up parent category: %w", err)
		}
	}

	category := &Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		ParentID:    req.ParentID,
		IsActive:    true,
		SortOrder:   req.SortOrder,
	}
	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

// GetByID returns a category with its children
func (s *CategoryService) GetByID(id uint) (*Category, error) {
	var category Category
	if err := s.db.Preload("Children").First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("category %d", id)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// List returns all active root categories with their children
func (s *CategoryService) List() ([]Category, error) {
	var categories []Category
	err := s.db.Preload("Children", "is_active = ?", true).
		Where("parent_id IS NULL AND is_active = ?", true).
		Order("sort_order ASC, name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// Delete soft deletes a category. Categories with products are refused.
func (s *CategoryService) Delete(id uint) error {
	var productCount int64
	if err := s.db.Model(&Product{}).Where("category_id = ?", id).Count(&productCount).Error; err != nil {
		return fmt.Errorf("failed to count category products: %w", err)
	}
	if productCount > 0 {
		return errs.Validationf("category %d still has %d products", id, productCount)
	}

	result := s.db.Delete(&Category{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete category: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errs.NotFoundf("category %d", id)
	}
	return nil
}
