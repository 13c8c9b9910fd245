package domain

import (
	"time"

	cart "github.com/dwikikusuma/resto-pos/internal/cart/domain"
	"github.com/shopspring/decimal"
)

// State of a single checkout attempt.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateSubmitting State = "submitting"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// OrderLine is one row of the submitted order. Option is the selected option
// label, empty when none.
type OrderLine struct {
	ItemID   string
	Quantity int
	Option   string
}

// OrderRequest is the immutable snapshot sent to the backend, built once per
// attempt and never retried implicitly.
type OrderRequest struct {
	Items         []OrderLine
	PaymentMethod cart.PaymentMethod
	OrderType     cart.OrderType
	Tip           decimal.Decimal
	CashTendered  decimal.Decimal
	WalletRef     string
}

type ReceiptLine struct {
	Name        string
	OptionLabel string
	Quantity    int
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// Receipt is the flat structure handed to the printing collaborator. Totals
// are the ones locked in at submission, not recomputed. Change is nil for
// non-cash payments.
type Receipt struct {
	OrderID       string
	PlacedAt      time.Time
	OrderType     cart.OrderType
	Lines         []ReceiptLine
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Tip           decimal.Decimal
	Total         decimal.Decimal
	PaymentMethod cart.PaymentMethod
	CashTendered  decimal.Decimal
	Change        *decimal.Decimal
	WalletRef     string
}
