package app

import (
	"context"

	"github.com/dwikikusuma/resto-pos/internal/shift/domain"
)

// ShiftAPI is the backend shift store. Each call returns the authoritative
// shift state, which the tracker adopts wholesale.
type ShiftAPI interface {
	// ActiveShift returns nil when the cashier has no open shift.
	ActiveShift(ctx context.Context) (*domain.Shift, error)
	StartShift(ctx context.Context) (domain.Shift, error)
	PauseShift(ctx context.Context) (domain.Shift, error)
	ResumeShift(ctx context.Context) (domain.Shift, error)
	EndShift(ctx context.Context, summary domain.Summary) (domain.Shift, error)
}
