// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/product"
	redisdb "github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

const guestCartTTL = 7 * 24 * time.Hour

// Service handles cart business logic. Registered users get a
// database-backed cart, guests get a Redis-backed one keyed by
// session ID.
type Service struct {
	db     *gorm.DB
	redis  *redisdb.Client
	config *config.Config
}

// NewService creates a new cart service
func NewService(db *gorm.DB, redisClient *redisdb.Client, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		redis:  redisClient,
		config: cfg,
	}
}

// AddItem adds a product to the user's cart, merging quantities when
// the same product and variant is already present.
func (s *Service) AddItem(userID uint, req *AddItemRequest) (*Cart, error) {
	p, err := s.sellableProduct(req.ProductID)
	if err != nil {
		return nil, err
	}

	var existing CartItem
	err = s.db.Where("user_id = ? AND product_id = ? AND variant = ?", userID, req.ProductID, req.Variant).
		First(&existing).Error

	newQty := req.Quantity
	if err == nil {
		newQty += existing.Quantity
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up cart item: %w", err)
	}

	if p.TrackQuantity && newQty > p.StockQuantity {
		return nil, fmt.Errorf("only %d of %s available: %w", p.StockQuantity, p.Name, errs.ErrInsufficientStock)
	}

	item := CartItem{
		UserID:    userID,
		ProductID: req.ProductID,
		Quantity:  newQty,
		Variant:   req.Variant,
	}
	err = s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}, {Name: "variant"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save cart item: %w", err)
	}

	return s.GetCart(userID)
}

// UpdateItem sets the quantity of a cart line. Quantity zero removes
// the line.
func (s *Service) UpdateItem(userID, productID uint, variant string, quantity int) (*Cart, error) {
	if quantity == 0 {
		return s.RemoveItem(userID, productID, variant)
	}

	p, err := s.sellableProduct(productID)
	if err != nil {
		return nil, err
	}
	if p.TrackQuantity && quantity > p.StockQuantity {
		return nil, fmt.Errorf("only %d of %s available: %w", p.StockQuantity, p.Name, errs.ErrInsufficientStock)
	}

	result := s.db.Model(&CartItem{}).
		Where("user_id = ? AND product_id = ? AND variant = ?", userID, productID, variant).
		UpdateColumn("quantity", quantity)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update cart item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errs.NotFoundf("cart item for product %d", productID)
	}

	return s.GetCart(userID)
}

// RemoveItem removes a cart line
func (s *Service) RemoveItem(userID, productID uint, variant string) (*Cart, error) {
	err := s.db.Where("user_id = ? AND product_id = ? AND variant = ?", userID, productID, variant).
		Delete(&CartItem{}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}
	return s.GetCart(userID)
}

// Clear removes every item from the user's cart
func (s *Service) Clear(userID uint) error {
	if err := s.db.Where("user_id = ?", userID).Delete(&CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// GetCart returns the priced cart. Lines whose product has become
// inactive or deleted are pruned; lines exceeding current stock are
// clamped. Pruned item names are reported in Removed.
func (s *Service) GetCart(userID uint) (*Cart, error) {
	var items []CartItem
	err := s.db.Preload("Product").Preload("Product.Images").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	cart := &Cart{Items: []Line{}}
	for _, item := range items {
		p := item.Product
		if p == nil || !p.IsActive {
			name := fmt.Sprintf("product %d", item.ProductID)
			if p != nil {
				name = p.Name
			}
			cart.Removed = append(cart.Removed, name)
			if err := s.db.Delete(&CartItem{}, item.ID).Error; err != nil {
				return nil, fmt.Errorf("failed to prune cart item: %w", err)
			}
			continue
		}

		qty := item.Quantity
		if p.TrackQuantity && qty > p.StockQuantity {
			qty = p.StockQuantity
			if qty == 0 {
				cart.Removed = append(cart.Removed, p.Name)
				if err := s.db.Delete(&CartItem{}, item.ID).Error; err != nil {
					return nil, fmt.Errorf("failed to prune cart item: %w", err)
				}
				continue
			}
			if err := s.db.Model(&CartItem{}).Where("id = ?", item.ID).
				UpdateColumn("quantity", qty).Error; err != nil {
				return nil, fmt.Errorf("failed to clamp cart quantity: %w", err)
			}
		}

		cart.Items = append(cart.Items, Line{
			ProductID:     p.ID,
			ProductName:   p.Name,
			SKU:           p.SKU,
			ImageURL:      p.PrimaryImageURL(),
			UnitPrice:     p.Price,
			Quantity:      qty,
			Variant:       item.Variant,
			LineTotal:     p.Price * int64(qty),
			CategoryID:    p.CategoryID,
			Weight:        p.Weight,
			TrackQuantity: p.TrackQuantity,
			InStock:       p.IsInStock(),
		})
		cart.ItemCount += qty
		cart.Subtotal += p.Price * int64(qty)
	}

	return cart, nil
}

// AddGuestItem adds a product to a Redis-backed guest cart
func (s *Service) AddGuestItem(ctx context.Context, sessionID string, req *AddItemRequest) (*Cart, error) {
	p, err := s.sellableProduct(req.ProductID)
	if err != nil {
		return nil, err
	}

	items, err := s.loadGuestItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == req.ProductID && items[i].Variant == req.Variant {
			items[i].Quantity += req.Quantity
			if p.TrackQuantity && items[i].Quantity > p.StockQuantity {
				return nil, fmt.Errorf("only %d of %s available: %w", p.StockQuantity, p.Name, errs.ErrInsufficientStock)
			}
			found = true
			break
		}
	}
	if !found {
		if p.TrackQuantity && req.Quantity > p.StockQuantity {
			return nil, fmt.Errorf("only %d of %s available: %w", p.StockQuantity, p.Name, errs.ErrInsufficientStock)
		}
		items = append(items, GuestCartItem{
			ProductID: req.ProductID,
			Quantity:  req.Quantity,
			Variant:   req.Variant,
		})
	}

	if err := s.redis.SetJSON(ctx, guestCartKey(sessionID), items, guestCartTTL); err != nil {
		return nil, fmt.Errorf("failed to save guest cart: %w", err)
	}

	return s.priceGuestItems(items)
}

// GetGuestCart returns the priced guest cart for a session
func (s *Service) GetGuestCart(ctx context.Context, sessionID string) (*Cart, error) {
	items, err := s.loadGuestItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.priceGuestItems(items)
}

// MergeGuestCart moves a guest cart into the user's persistent cart,
// typically right after login. The Redis cart is deleted afterwards.
func (s *Service) MergeGuestCart(ctx context.Context, sessionID string, userID uint) (*Cart, error) {
	items, err := s.loadGuestItems(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		_, err := s.AddItem(userID, &AddItemRequest{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Variant:   item.Variant,
		})
		if err != nil && !errors.Is(err, errs.ErrInsufficientStock) && !errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("failed to merge guest cart item: %w", err)
		}
	}

	if err := s.redis.Delete(ctx, guestCartKey(sessionID)); err != nil {
		return nil, fmt.Errorf("failed to clear guest cart: %w", err)
	}

	return s.GetCart(userID)
}

func (s *Service) sellableProduct(productID uint) (*product.Product, error) {
	var p product.Product
	err := s.db.Where("id = ? AND is_active = ?", productID, true).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("product %d", productID)
		}
		return nil, fmt.Errorf("failed to look up product: %w", err)
	}
	return &p, nil
}

func (s *Service) loadGuestItems(ctx context.Context, sessionID string) ([]GuestCartItem, error) {
	var items []GuestCartItem
	err := s.redis.GetJSON(ctx, guestCartKey(sessionID), &items)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return []GuestCartItem{}, nil
		}
		return nil, fmt.Errorf("failed to load guest cart: %w", err)
	}
	return items, nil
}

func (s *Service) priceGuestItems(items []GuestCartItem) (*Cart, error) {
	cart := &Cart{Items: []Line{}}
	for _, item := range items {
		p, err := s.sellableProduct(item.ProductID)
		if err != nil {
			if errors.Is(err, errs.ErrNotFound) {
				cart.Removed = append(cart.Removed, fmt.Sprintf("product %d", item.ProductID))
				continue
			}
			return nil, err
		}

		qty := item.Quantity
		if p.TrackQuantity && qty > p.StockQuantity {
			qty = p.StockQuantity
		}
		if qty == 0 {
			cart.Removed = append(cart.Removed, p.Name)
			continue
		}

		cart.Items = append(cart.Items, Line{
			ProductID:     p.ID,
			ProductName:   p.Name,
			SKU:           p.SKU,
			UnitPrice:     p.Price,
			Quantity:      qty,
			Variant:       item.Variant,
			LineTotal:     p.Price * int64(qty),
			CategoryID:    p.CategoryID,
			Weight:        p.Weight,
			TrackQuantity: p.TrackQuantity,
			InStock:       p.IsInStock(),
		})
		cart.ItemCount += qty
		cart.Subtotal += p.Price * int64(qty)
	}
	return cart, nil
}

func guestCartKey(sessionID string) string {
	return "cart:guest:" + sessionID
}
