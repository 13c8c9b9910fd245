package domain

import (
	"sync"

	catalog "github.com/dwikikusuma/resto-pos/internal/catalog/domain"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash  PaymentMethod = "Cash"
	PaymentGCash PaymentMethod = "GCash"
)

type OrderType string

const (
	OrderDineIn   OrderType = "Dine-In"
	OrderDelivery OrderType = "Delivery"
	OrderTakeout  OrderType = "Takeout"
)

// Payment is the cashier-entered payment input, not a settled payment.
type Payment struct {
	Method       PaymentMethod
	Tip          decimal.Decimal
	CashTendered decimal.Decimal
	WalletRef    string
}

// Line is one orderable row: item, at most one selected option, quantity.
// Item name and prices are copied in at add time so totals and receipts do
// not depend on catalog lookups after the fact.
type Line struct {
	ItemID      string
	Name        string
	BasePrice   decimal.Decimal
	OptionLabel string
	OptionPrice decimal.Decimal
	HasOption   bool
	Quantity    int
}

// UnitPrice is the option price when an option is selected, the base price
// otherwise. An option replaces the base price, never adds to it.
func (l Line) UnitPrice() decimal.Decimal {
	if l.HasOption {
		return l.OptionPrice
	}
	return l.BasePrice
}

func (l Line) LineTotal() decimal.Decimal {
	return l.UnitPrice().Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is the session's order under composition, mutated only through its
// methods; quantity invariants are checked against the catalog Item passed
// into each mutation so the cart itself never exceeds stock. Safe for
// concurrent use: the checkout success path clears it while display handlers
// may be reading.
type Cart struct {
	mu        sync.RWMutex
	lines     []Line
	payment   Payment
	orderType OrderType
}

func NewCart() *Cart {
	c := &Cart{}
	c.resetPayment()
	return c
}

func (c *Cart) resetPayment() {
	c.payment = Payment{
		Method:       PaymentCash,
		Tip:          decimal.Zero,
		CashTendered: decimal.Zero,
	}
	c.orderType = OrderDineIn
}

func (c *Cart) matchIndex(itemID, optionLabel string) int {
	for i, l := range c.lines {
		if l.ItemID == itemID && l.OptionLabel == optionLabel {
			return i
		}
	}
	return -1
}

// AddLine puts one unit of the item in the cart, merging into an existing
// line when item and option match. optionLabel is empty for no option.
func (c *Cart) AddLine(item catalog.Item, optionLabel string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item.Stock <= 0 {
		return ErrOutOfStock
	}
	if item.HasOptions() && optionLabel == "" {
		return ErrOptionRequired
	}

	var opt catalog.Option
	hasOpt := optionLabel != ""
	if hasOpt {
		var ok bool
		opt, ok = item.OptionByLabel(optionLabel)
		if !ok {
			return ErrUnknownOption
		}
	}

	if i := c.matchIndex(item.ID, optionLabel); i >= 0 {
		if c.lines[i].Quantity+1 > item.Stock {
			return ErrInsufficientStock
		}
		c.lines[i].Quantity++
		return nil
	}

	c.lines = append(c.lines, Line{
		ItemID:      item.ID,
		Name:        item.Name,
		BasePrice:   item.Price,
		OptionLabel: optionLabel,
		OptionPrice: opt.Price,
		HasOption:   hasOpt,
		Quantity:    1,
	})
	return nil
}

// SetQuantity replaces a line's quantity. Zero or less removes the line.
// A quantity above stock fails and leaves the line unchanged. A missing
// line is a no-op regardless of the requested quantity, mirroring
// RemoveLine's idempotence.
func (c *Cart) SetQuantity(item catalog.Item, optionLabel string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.matchIndex(item.ID, optionLabel)
	if i < 0 {
		return nil
	}
	if quantity <= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		return nil
	}
	if quantity > item.Stock {
		return ErrInsufficientStock
	}
	c.lines[i].Quantity = quantity
	return nil
}

// RemoveLine is idempotent: removing an absent line is not an error.
func (c *Cart) RemoveLine(itemID, optionLabel string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.matchIndex(itemID, optionLabel); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Clear empties the cart and resets payment inputs to their defaults.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.resetPayment()
}

func (c *Cart) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.lines) == 0
}

func (c *Cart) Lines() []Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Payment() Payment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.payment
}

func (c *Cart) SetPayment(p Payment) error {
	switch p.Method {
	case PaymentCash, PaymentGCash:
	default:
		return ErrUnknownMethod
	}
	if p.Tip.IsNegative() || p.CashTendered.IsNegative() {
		return ErrInvalidAmount
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payment = p
	return nil
}

func (c *Cart) OrderType() OrderType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.orderType
}

func (c *Cart) SetOrderType(t OrderType) error {
	switch t {
	case OrderDineIn, OrderDelivery, OrderTakeout:
	default:
		return ErrUnknownOrderType
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orderType = t
	return nil
}
