package domain

import "errors"

var (
	// ErrOutOfStock rejects adding an item whose stock mirror is empty.
	ErrOutOfStock = errors.New("out of stock")

	// ErrInsufficientStock rejects a quantity above the item's stock mirror.
	// The offending line is left unchanged.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrOptionRequired rejects adding an item that has options without
	// selecting one. The caller must prompt, never default.
	ErrOptionRequired = errors.New("option selection required")

	ErrUnknownOption    = errors.New("unknown option")
	ErrInvalidAmount    = errors.New("amount must not be negative")
	ErrUnknownMethod    = errors.New("unknown payment method")
	ErrUnknownOrderType = errors.New("unknown order type")
)
