// internal/domain/promotion/engine.go
package promotion

import (
	"fmt"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Context carries everything the engine needs to evaluate one cart
// for one customer.
type Context struct {
	Cart          *cart.Cart
	UserID        uint
	OrderCount    int64 // completed orders before this one
	LifetimeSpend int64 // cents spent across prior orders
	ShippingCost  int64
}

// Engine evaluates automatic discount rules against a cart
type Engine struct {
	db     *gorm.DB
	config *config.Config
}

// NewEngine creates a new discount engine
func NewEngine(db *gorm.DB, cfg *config.Config) *Engine {
	return &Engine{
		db:     db,
		config: cfg,
	}
}

// Calculate evaluates all active rules against the cart. Stackable
// rules are summed, non-stackable rules compete individually, and the
// larger of the two outcomes wins. The total never drives the cart
// total below zero.
func (e *Engine) Calculate(ctx *Context) (*Result, error) {
	rules, err := e.activeRules()
	if err != nil {
		return nil, err
	}

	segments := e.segmentsFor(ctx)

	type scored struct {
		rule   *Discount
		amount int64
	}
	var candidates []scored
	for i := range rules {
		rule := &rules[i]
		ok, err := e.isApplicable(rule, ctx, segments)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		amount := e.calculateAmount(rule, ctx)
		if amount <= 0 {
			continue
		}
		candidates = append(candidates, scored{rule: rule, amount: amount})
	}

	var (
		bestSingle   *scored
		stacked      []scored
		stackedTotal int64
	)
	for i := range candidates {
		c := candidates[i]
		if bestSingle == nil || c.amount > bestSingle.amount {
			bestSingle = &candidates[i]
		}
		if c.rule.Stackable {
			stacked = append(stacked, c)
			stackedTotal += c.amount
		}
	}

	result := &Result{Applied: []AppliedDiscount{}}
	subtotal := ctx.Cart.Subtotal

	var winners []scored
	if stackedTotal > 0 && (bestSingle == nil || stackedTotal >= bestSingle.amount) {
		winners = stacked
	} else if bestSingle != nil {
		winners = []scored{*bestSingle}
	}

	for _, w := range winners {
		result.Applied = append(result.Applied, AppliedDiscount{
			DiscountID: w.rule.ID,
			Name:       w.rule.Name,
			Type:       w.rule.Type,
			Amount:     w.amount,
		})
		result.TotalDiscount += w.amount
		if w.rule.Type == TypeFreeShipping {
			result.FreeShipping = true
		}
	}

	if result.TotalDiscount > subtotal+ctx.ShippingCost {
		result.TotalDiscount = subtotal + ctx.ShippingCost
	}
	result.FinalTotal = subtotal - result.TotalDiscount
	if result.FinalTotal < 0 {
		result.FinalTotal = 0
	}

	return result, nil
}

// activeRules loads active rules with global usage headroom inside
// their validity window, ordered by priority then value, both
// descending.
func (e *Engine) activeRules() ([]Discount, error) {
	var rules []Discount
	err := e.db.Preload("ApplicableProducts").Preload("ApplicableCategories").
		Where("is_active = ? AND (max_usage = 0 OR usage_count < max_usage)", true).
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load discount rules: %w", err)
	}

	now := time.Now().UTC()
	active := rules[:0]
	for _, r := range rules {
		if r.IsWithinWindow(now) {
			active = append(active, r)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		if active[i].Priority != active[j].Priority {
			return active[i].Priority > active[j].Priority
		}
		return active[i].Value > active[j].Value
	})
	return active, nil
}

func (e *Engine) segmentsFor(ctx *Context) map[string]bool {
	segments := map[string]bool{}
	if ctx.OrderCount == 0 {
		segments[SegmentNewCustomer] = true
	} else {
		segments[SegmentReturningCustomer] = true
	}
	if ctx.LifetimeSpend >= e.config.Pricing.VIPSpendThreshold {
		segments[SegmentVIPCustomer] = true
	}
	if ctx.Cart.ItemCount >= e.config.Pricing.BulkOrderQuantity {
		segments[SegmentBulkBuyer] = true
	}
	return segments
}

func (e *Engine) isApplicable(d *Discount, ctx *Context, segments map[string]bool) (bool, error) {
	subtotal := ctx.Cart.Subtotal
	if d.MinimumAmount > 0 && subtotal < d.MinimumAmount {
		return false, nil
	}
	if d.MaximumAmount > 0 && subtotal > d.MaximumAmount {
		return false, nil
	}
	if d.FirstTimeOnly && ctx.OrderCount > 0 {
		return false, nil
	}

	if ruleSegments := d.SegmentList(); len(ruleSegments) > 0 {
		match := false
		for _, s := range ruleSegments {
			if segments[s] {
				match = true
				break
			}
		}
		if !match {
			return false, nil
		}
	}

	if len(eligibleLines(d, ctx.Cart)) == 0 {
		return false, nil
	}

	if d.MaxUsagePerCustomer > 0 && ctx.UserID > 0 {
		var used int64
		err := e.db.Model(&Redemption{}).
			Where("discount_id = ? AND user_id = ?", d.ID, ctx.UserID).
			Count(&used).Error
		if err != nil {
			return false, fmt.Errorf("failed to count discount usage: %w", err)
		}
		if used >= int64(d.MaxUsagePerCustomer) {
			return false, nil
		}
	}

	return true, nil
}

// calculateAmount returns the discount amount in cents for one rule
func (e *Engine) calculateAmount(d *Discount, ctx *Context) int64 {
	lines := eligibleLines(d, ctx.Cart)
	var eligibleTotal int64
	for _, line := range lines {
		eligibleTotal += line.LineTotal
	}

	switch d.Type {
	case TypePercentage:
		return int64(math.Round(float64(eligibleTotal) * d.Value / 100))
	case TypeFixedAmount:
		amount := int64(math.Round(d.Value))
		if amount > eligibleTotal {
			amount = eligibleTotal
		}
		return amount
	case TypeBuyXGetY:
		return buyXGetYAmount(d, lines)
	case TypeFreeShipping:
		return ctx.ShippingCost
	}
	return 0
}

// buyXGetYAmount prices the free units of a buy-X-get-Y rule. Free
// units are allocated to the cheapest eligible units first.
func buyXGetYAmount(d *Discount, lines []cart.Line) int64 {
	if d.BuyQuantity <= 0 || d.GetQuantity <= 0 {
		return 0
	}

	var eligibleQty int
	for _, line := range lines {
		eligibleQty += line.Quantity
	}
	freeUnits := (eligibleQty / d.BuyQuantity) * d.GetQuantity
	if freeUnits == 0 {
		return 0
	}

	sorted := make([]cart.Line, len(lines))
	copy(sorted, lines)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UnitPrice < sorted[j].UnitPrice
	})

	var amount int64
	for _, line := range sorted {
		if freeUnits == 0 {
			break
		}
		take := line.Quantity
		if take > freeUnits {
			take = freeUnits
		}
		amount += line.UnitPrice * int64(take)
		freeUnits -= take
	}
	return amount
}

// Redeem records the applied rules against an order inside the
// caller's transaction. Each rule's global usage counter is bumped
// conditionally on remaining headroom so concurrent checkouts cannot
// overshoot a capped rule.
func (e *Engine) Redeem(tx *gorm.DB, userID, orderID uint, applied []AppliedDiscount) error {
	for _, a := range applied {
		result := tx.Model(&Discount{}).
			Where("id = ? AND (max_usage = 0 OR usage_count < max_usage)", a.DiscountID).
			UpdateColumn("usage_count", gorm.Expr("usage_count + 1"))
		if result.Error != nil {
			return fmt.Errorf("failed to consume discount: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("discount %s usage limit reached: %w", a.Name, errs.ErrLimitExceeded)
		}

		redemption := Redemption{
			OrderID:    orderID,
			DiscountID: a.DiscountID,
			UserID:     userID,
			Name:       a.Name,
			Amount:     a.Amount,
		}
		if err := tx.Create(&redemption).Error; err != nil {
			return fmt.Errorf("failed to record discount redemption: %w", err)
		}
	}
	return nil
}

// eligibleLines filters the cart down to lines the rule covers. An
// empty product and category list covers the whole cart.
func eligibleLines(d *Discount, crt *cart.Cart) []cart.Line {
	if len(d.ApplicableProducts) == 0 && len(d.ApplicableCategories) == 0 {
		return crt.Items
	}

	products := make(map[uint]bool, len(d.ApplicableProducts))
	for _, p := range d.ApplicableProducts {
		products[p.ID] = true
	}
	categories := make(map[uint]bool, len(d.ApplicableCategories))
	for _, c := range d.ApplicableCategories {
		categories[c.ID] = true
	}

	var lines []cart.Line
	for _, line := range crt.Items {
		if products[line.ProductID] || categories[line.CategoryID] {
			lines = append(lines, line)
		}
	}
	return lines
}
