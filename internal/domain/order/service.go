// internal/domain/order/service.go
package order

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Service handles order business logic
type Service struct {
	db      *gorm.DB
	config  *config.Config
	carts   *cart.Service
	coupons *coupon.Service
	engine  *promotion.Engine
	emails  *email.Service
	logger  *logrus.Logger
}

// NewService creates a new order service
func NewService(db *gorm.DB, cfg *config.Config, carts *cart.Service, coupons *coupon.Service, engine *promotion.Engine, emails *email.Service, logger *logrus.Logger) *Service {
	return &Service{
		db:      db,
		config:  cfg,
		carts:   carts,
		coupons: coupons,
		engine:  engine,
		emails:  emails,
		logger:  logger,
	}
}

// Create assembles an order from the user's cart. Pricing, stock
// decrements, discount redemption, and the cart wipe all happen in a
// single transaction: either the whole order exists or none of it
// does.
func (s *Service) Create(userID uint, req *CreateOrderRequest) (*Order, error) {
	crt, err := s.carts.GetCart(userID)
	if err != nil {
		return nil, err
	}
	if len(crt.Items) == 0 {
		return nil, errs.Validationf("cart is empty")
	}

	orderCount, lifetimeSpend, err := s.customerHistory(userID)
	if err != nil {
		return nil, err
	}

	shippingCost := s.shippingCost(crt)

	// A coupon code and automatic discounts never combine: whichever
	// yields the larger discount wins.
	var quote *coupon.Quote
	if req.CouponCode != "" {
		quote, err = s.coupons.Validate(userID, req.CouponCode, crt)
		if err != nil {
			return nil, err
		}
	}

	promoResult, err := s.engine.Calculate(&promotion.Context{
		Cart:          crt,
		UserID:        userID,
		OrderCount:    orderCount,
		LifetimeSpend: lifetimeSpend,
		ShippingCost:  shippingCost,
	})
	if err != nil {
		return nil, err
	}

	useCoupon := quote != nil && quote.DiscountAmount >= promoResult.TotalDiscount

	var discountTotal int64
	if useCoupon {
		discountTotal = quote.DiscountAmount
	} else {
		discountTotal = promoResult.TotalDiscount
		if promoResult.FreeShipping {
			// Free shipping is realized by zeroing the shipping line,
			// not by discounting the subtotal.
			shippingCost = 0
			discountTotal = 0
			for _, a := range promoResult.Applied {
				if a.Type != promotion.TypeFreeShipping {
					discountTotal += a.Amount
				}
			}
		}
	}
	if discountTotal > crt.Subtotal {
		discountTotal = crt.Subtotal
	}

	taxAmount := int64(math.Round(float64(crt.Subtotal-discountTotal) * s.config.Pricing.TaxRate))
	total := crt.Subtotal - discountTotal + taxAmount + shippingCost

	billing := req.ShippingAddress
	if req.BillingAddress != nil {
		billing = *req.BillingAddress
	}

	ord := &Order{
		OrderNumber:     NewOrderNumber(),
		UserID:          userID,
		Status:          StatusPending,
		Subtotal:        crt.Subtotal,
		DiscountTotal:   discountTotal,
		TaxAmount:       taxAmount,
		ShippingCost:    shippingCost,
		Total:           total,
		Notes:           req.Notes,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  billing,
		Payment: PaymentInfo{
			Method: req.PaymentMethod,
			Status: PaymentPending,
		},
	}
	if useCoupon {
		ord.CouponCode = quote.Code
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(ord).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, line := range crt.Items {
			item := OrderItem{
				OrderID:       ord.ID,
				ProductID:     line.ProductID,
				ProductName:   line.ProductName,
				SKU:           line.SKU,
				ImageURL:      line.ImageURL,
				Variant:       line.Variant,
				UnitPrice:     line.UnitPrice,
				Quantity:      line.Quantity,
				TotalPrice:    line.LineTotal,
				TrackQuantity: line.TrackQuantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}

			// Untracked products (digital goods) carry no stock to decrement.
			if !line.TrackQuantity {
				continue
			}
			_, err := inventory.ApplyChange(tx, line.ProductID, -line.Quantity,
				inventory.TypeSold, "order placed", ord.OrderNumber, userID)
			if err != nil {
				return err
			}
		}

		if useCoupon {
			if err := s.coupons.Redeem(tx, userID, quote, ord.ID); err != nil {
				return err
			}
		} else {
			if err := s.engine.Redeem(tx, userID, ord.ID, promoResult.Applied); err != nil {
				return err
			}
		}

		history := StatusHistory{
			OrderID:   ord.ID,
			ToStatus:  StatusPending,
			Note:      "order placed",
			ChangedBy: userID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}

		if err := tx.Where("user_id = ?", userID).Delete(&cart.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(userID, func(u *user.User) {
		s.emails.SendOrderConfirmation(u.Email, u.FirstName, ord.OrderNumber, ord.Total)
	})

	return s.GetByID(ord.ID, userID, false)
}

// GetByID returns an order. Non-admin callers only see their own
// orders.
func (s *Service) GetByID(orderID, requesterID uint, isAdmin bool) (*Order, error) {
	var ord Order
	err := s.db.Preload("Items").Preload("StatusHistory").Preload("Discounts").
		First(&ord, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("order %d", orderID)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if !isAdmin && ord.UserID != requesterID {
		return nil, errs.Forbiddenf("order %d belongs to another user", orderID)
	}
	return &ord, nil
}

// GetByNumber returns an order by its order number
func (s *Service) GetByNumber(orderNumber string, requesterID uint, isAdmin bool) (*Order, error) {
	var ord Order
	err := s.db.Preload("Items").Preload("StatusHistory").Preload("Discounts").
		Where("order_number = ?", orderNumber).
		First(&ord).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFoundf("order %s", orderNumber)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if !isAdmin && ord.UserID != requesterID {
		return nil, errs.Forbiddenf("order %s belongs to another user", orderNumber)
	}
	return &ord, nil
}

// List returns a paginated order listing, newest first
func (s *Service) List(filter *ListFilter) (*ListResponse, error) {
	query := s.db.Model(&Order{})
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var orders []Order
	err := query.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ListResponse{
		Orders: orders,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}, nil
}

// Cancel cancels an order and restores its stock. Only the owner or
// an admin may cancel, and only before the order ships.
func (s *Service) Cancel(orderID, requesterID uint, isAdmin bool, reason string) (*Order, error) {
	ord, err := s.GetByID(orderID, requesterID, isAdmin)
	if err != nil {
		return nil, err
	}

	if !ord.IsCancellable() {
		return nil, fmt.Errorf("order %s cannot be cancelled in status %s: %w",
			ord.OrderNumber, ord.Status, errs.ErrInvalidState)
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range ord.Items {
			if !item.TrackQuantity {
				continue
			}
			_, err := inventory.ApplyChange(tx, item.ProductID, item.Quantity,
				inventory.TypeReturned, "order cancelled", ord.OrderNumber, requesterID)
			if err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"status":       StatusCancelled,
			"cancelled_at": now,
		}
		if ord.Payment.Status == PaymentPaid {
			updates["payment_status"] = PaymentRefunded
		}
		if err := tx.Model(&Order{}).Where("id = ?", ord.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to cancel order: %w", err)
		}

		history := StatusHistory{
			OrderID:    ord.ID,
			FromStatus: ord.Status,
			ToStatus:   StatusCancelled,
			Note:       reason,
			ChangedBy:  requesterID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ord.UserID, func(u *user.User) {
		s.emails.SendOrderStatusUpdate(u.Email, u.FirstName, ord.OrderNumber, StatusCancelled)
	})

	return s.GetByID(orderID, requesterID, isAdmin)
}

// UpdateStatus moves an order through its lifecycle. Transitions not
// in the allowed table are rejected. Shipping stamps ShippedAt;
// delivery stamps DeliveredAt and settles a pending payment.
func (s *Service) UpdateStatus(orderID, actorID uint, req *UpdateStatusRequest) (*Order, error) {
	ord, err := s.GetByID(orderID, actorID, true)
	if err != nil {
		return nil, err
	}

	newStatus := strings.ToLower(strings.TrimSpace(req.Status))
	if newStatus == StatusCancelled {
		return s.Cancel(orderID, actorID, true, req.Note)
	}
	if !CanTransition(ord.Status, newStatus) {
		return nil, fmt.Errorf("cannot move order %s from %s to %s: %w",
			ord.OrderNumber, ord.Status, newStatus, errs.ErrInvalidState)
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{"status": newStatus}
	switch newStatus {
	case StatusShipped:
		updates["shipped_at"] = now
		if req.TransactionID != "" {
			updates["payment_transaction_id"] = req.TransactionID
		}
	case StatusDelivered:
		updates["delivered_at"] = now
		if ord.Payment.Status == PaymentPending {
			updates["payment_status"] = PaymentPaid
			updates["payment_paid_at"] = now
		}
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&Order{}).Where("id = ?", ord.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		history := StatusHistory{
			OrderID:    ord.ID,
			FromStatus: ord.Status,
			ToStatus:   newStatus,
			Note:       req.Note,
			ChangedBy:  actorID,
		}
		if err := tx.Create(&history).Error; err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(ord.UserID, func(u *user.User) {
		s.emails.SendOrderStatusUpdate(u.Email, u.FirstName, ord.OrderNumber, newStatus)
	})

	return s.GetByID(orderID, actorID, true)
}

// customerHistory returns the customer's prior order count and
// lifetime spend, excluding cancelled orders.
func (s *Service) customerHistory(userID uint) (int64, int64, error) {
	var count int64
	err := s.db.Model(&Order{}).
		Where("user_id = ? AND status <> ?", userID, StatusCancelled).
		Count(&count).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	var spend struct{ Total int64 }
	err = s.db.Model(&Order{}).
		Select("COALESCE(SUM(total), 0) AS total").
		Where("user_id = ? AND status <> ?", userID, StatusCancelled).
		Scan(&spend).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to sum order totals: %w", err)
	}
	return count, spend.Total, nil
}

// shippingCost prices shipping from the cart's total weight: the base
// rate, times 1.5 above 5kg, times 2 above 10kg. A free shipping
// threshold on the subtotal zeroes it.
func (s *Service) shippingCost(crt *cart.Cart) int64 {
	threshold := s.config.Pricing.FreeShippingThreshold
	if threshold > 0 && crt.Subtotal >= threshold {
		return 0
	}

	var weight float64
	for _, line := range crt.Items {
		weight += line.Weight * float64(line.Quantity)
	}

	base := float64(s.config.Pricing.ShippingBaseRate)
	switch {
	case weight > 10:
		return int64(math.Round(base * 2))
	case weight > 5:
		return int64(math.Round(base * 1.5))
	default:
		return int64(math.Round(base))
	}
}

func (s *Service) notify(userID uint, send func(*user.User)) {
	var u user.User
	if err := s.db.First(&u, userID).Error; err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Failed to load user for notification")
		return
	}
	send(&u)
}

// NewOrderNumber returns a globally unique order number. Random
// UUID-derived identifiers cannot collide under concurrent creation
// the way timestamp-based schemes can.
func NewOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))
	return "ORD-" + id[:16]
}
