// internal/domain/order/entity.go
package order

import (
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/domain/promotion"
)

// Order statuses
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
	StatusReturned   = "returned"
)

// Payment statuses
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// transitions is the allowed status transition table. Any transition
// not listed is rejected.
var transitions = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusReturned},
}

// CanTransition reports whether an order may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Address is a postal address snapshot embedded in an order
type Address struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// PaymentInfo is the payment state embedded in an order
type PaymentInfo struct {
	Method        string     `json:"method"`
	Status        string     `json:"status" gorm:"default:'pending'"`
	TransactionID string     `json:"transaction_id"`
	PaidAt        *time.Time `json:"paid_at"`
}

// Order represents a placed order. All item and pricing fields are
// snapshots taken at creation time; later catalog edits do not change
// them. Amounts are in cents.
type Order struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	OrderNumber     string         `json:"order_number" gorm:"uniqueIndex;not null"`
	UserID          uint           `json:"user_id" gorm:"not null;index"`
	Status          string         `json:"status" gorm:"default:'pending';index"`
	Subtotal        int64          `json:"subtotal" gorm:"not null"`
	DiscountTotal   int64          `json:"discount_total" gorm:"default:0"`
	TaxAmount       int64          `json:"tax_amount" gorm:"default:0"`
	ShippingCost    int64          `json:"shipping_cost" gorm:"default:0"`
	Total           int64          `json:"total" gorm:"not null"`
	CouponCode      string         `json:"coupon_code,omitempty"`
	Notes           string         `json:"notes"`
	ShippingAddress Address        `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`
	BillingAddress  Address        `json:"billing_address" gorm:"embedded;embeddedPrefix:billing_"`
	Payment         PaymentInfo    `json:"payment" gorm:"embedded;embeddedPrefix:payment_"`
	ShippedAt       *time.Time     `json:"shipped_at"`
	DeliveredAt     *time.Time     `json:"delivered_at"`
	CancelledAt     *time.Time     `json:"cancelled_at"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`

	Items         []OrderItem            `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	StatusHistory []StatusHistory        `json:"status_history,omitempty" gorm:"foreignKey:OrderID"`
	Discounts     []promotion.Redemption `json:"discounts,omitempty" gorm:"foreignKey:OrderID"`
}

// OrderItem is a line item snapshot
type OrderItem struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	OrderID       uint      `json:"order_id" gorm:"not null;index"`
	ProductID     uint      `json:"product_id" gorm:"not null;index"`
	ProductName   string    `json:"product_name" gorm:"not null"`
	SKU           string    `json:"sku" gorm:"not null"`
	ImageURL      string    `json:"image_url"`
	Variant       string    `json:"variant"`
	UnitPrice     int64     `json:"unit_price" gorm:"not null"`
	Quantity      int       `json:"quantity" gorm:"not null"`
	TotalPrice    int64     `json:"total_price" gorm:"not null"`
	TrackQuantity bool      `json:"track_quantity"`
	CreatedAt     time.Time `json:"created_at"`
}

// StatusHistory records one status transition
type StatusHistory struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	OrderID    uint      `json:"order_id" gorm:"not null;index"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status" gorm:"not null"`
	Note       string    `json:"note"`
	ChangedBy  uint      `json:"changed_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the table name for Order
func (Order) TableName() string {
	return "orders"
}

// TableName returns the table name for OrderItem
func (OrderItem) TableName() string {
	return "order_items"
}

// TableName returns the table name for StatusHistory
func (StatusHistory) TableName() string {
	return "order_status_history"
}

// IsCancellable reports whether the order may still be cancelled
func (o *Order) IsCancellable() bool {
	return CanTransition(o.Status, StatusCancelled)
}

// CreateOrderRequest represents an order creation request
type CreateOrderRequest struct {
	ShippingAddress Address  `json:"shipping_address" binding:"required"`
	BillingAddress  *Address `json:"billing_address"`
	PaymentMethod   string   `json:"payment_method" binding:"required"`
	CouponCode      string   `json:"coupon_code"`
	Notes           string   `json:"notes"`
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status        string `json:"status" binding:"required"`
	Note          string `json:"note"`
	TransactionID string `json:"transaction_id"`
}

// ListFilter holds order listing filters
type ListFilter struct {
	UserID uint
	Status string
	Page   int
	Limit  int
}

// Pagination holds pagination metadata
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// ListResponse is a paginated order listing
type ListResponse struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}
