package domain

import "github.com/shopspring/decimal"

// Option is a priced variant of an item. Selecting one replaces the base
// price entirely, it is not a surcharge.
type Option struct {
	Label string
	Price decimal.Decimal
}

// Item is one sellable product as fetched from the backend. Stock is the
// local mirror of the authoritative count and may lag behind it between
// catalog loads.
type Item struct {
	ID        string
	Name      string
	Category  string
	Price     decimal.Decimal
	Stock     int
	Available bool
	Options   []Option
}

// HasOptions reports whether the item may only be sold through an option
// selection.
func (i Item) HasOptions() bool {
	return len(i.Options) > 0
}

// OptionByLabel finds the option with the given label.
func (i Item) OptionByLabel(label string) (Option, bool) {
	for _, o := range i.Options {
		if o.Label == label {
			return o, true
		}
	}
	return Option{}, false
}
