// Package pricing computes order totals. Everything here is a pure function
// of the cart lines and payment inputs so the same computation backs both the
// live total during entry and the final receipt.
package pricing

import (
	"fmt"

	cart "github.com/dwikikusuma/resto-pos/internal/cart/domain"
	"github.com/shopspring/decimal"
)

// TaxMode selects how VAT relates to quoted prices. The two modes produce
// different totals for the same cart; the configured mode applies everywhere,
// a cart must never be quoted in one mode and receipted in the other.
type TaxMode string

const (
	// TaxExclusive: quoted prices are pre-tax. tax = subtotal * rate,
	// total = subtotal + tax + tip.
	TaxExclusive TaxMode = "vat_exclusive"

	// TaxInclusive: quoted prices already contain VAT. The tax figure is
	// informational: tax = subtotal - subtotal/(1+rate), total = subtotal + tip.
	TaxInclusive TaxMode = "vat_inclusive"
)

func ParseMode(s string) (TaxMode, error) {
	switch TaxMode(s) {
	case TaxExclusive, TaxInclusive:
		return TaxMode(s), nil
	default:
		return "", fmt.Errorf("unknown tax mode %q", s)
	}
}

// DefaultVATRate matches the Philippine VAT the source system charges.
var DefaultVATRate = decimal.NewFromFloat(0.12)

type Params struct {
	Mode TaxMode
	Rate decimal.Decimal
	Tip  decimal.Decimal
}

type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Tip      decimal.Decimal
	Total    decimal.Decimal
}

// Compute folds the lines into totals under the given mode. Amounts keep
// full precision; round only at presentation via Rounded.
func Compute(lines []cart.Line, p Params) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}

	tip := p.Tip
	if tip.IsNegative() {
		tip = decimal.Zero
	}

	var tax, total decimal.Decimal
	switch p.Mode {
	case TaxInclusive:
		tax = subtotal.Sub(subtotal.Div(decimal.NewFromInt(1).Add(p.Rate)))
		total = subtotal.Add(tip)
	default:
		tax = subtotal.Mul(p.Rate)
		total = subtotal.Add(tax).Add(tip)
	}

	return Totals{Subtotal: subtotal, Tax: tax, Tip: tip, Total: total}
}

// ChangeDue returns the cash change, nil when the payment is not cash.
// Absence and zero mean different things on a receipt.
func ChangeDue(t Totals, method cart.PaymentMethod, tendered decimal.Decimal) *decimal.Decimal {
	if method != cart.PaymentCash {
		return nil
	}
	change := tendered.Sub(t.Total)
	if change.IsNegative() {
		change = decimal.Zero
	}
	return &change
}

// Rounded returns the totals at 2 decimal places for display and receipts.
func (t Totals) Rounded() Totals {
	return Totals{
		Subtotal: t.Subtotal.Round(2),
		Tax:      t.Tax.Round(2),
		Tip:      t.Tip.Round(2),
		Total:    t.Total.Round(2),
	}
}
