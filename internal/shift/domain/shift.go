// Package domain models a cashier's work session: started once, paused and
// resumed any number of times, ended exactly once. All transitions are pure
// functions of an explicit now so they test without real timers.
package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	StatusEnded  Status = "ended"
)

// ErrInvalidTransition rejects an illegal lifecycle call (pause while paused,
// resume while active, anything after end) instead of ignoring it.
var ErrInvalidTransition = errors.New("invalid shift transition")

// ErrNotRunning rejects elapsed-time queries outside Active/Paused.
var ErrNotRunning = errors.New("shift not running")

// Summary closes out a shift; the fields mirror the closing report the
// cashier confirms.
type Summary struct {
	TotalSales  decimal.Decimal
	TotalOrders int
	Cash        decimal.Decimal
	GCash       decimal.Decimal
}

type Shift struct {
	ID        string
	StartedAt time.Time
	EndedAt   time.Time
	Status    Status

	// PausedAt is the start of the currently open pause interval, zero
	// unless Status is paused. TotalPaused accumulates closed intervals.
	PausedAt    time.Time
	TotalPaused time.Duration
}

func Start(id string, now time.Time) Shift {
	return Shift{ID: id, StartedAt: now, Status: StatusActive}
}

func (s Shift) Pause(now time.Time) (Shift, error) {
	if s.Status != StatusActive {
		return s, ErrInvalidTransition
	}
	s.Status = StatusPaused
	s.PausedAt = now
	return s, nil
}

func (s Shift) Resume(now time.Time) (Shift, error) {
	if s.Status != StatusPaused {
		return s, ErrInvalidTransition
	}
	s.TotalPaused += now.Sub(s.PausedAt)
	s.PausedAt = time.Time{}
	s.Status = StatusActive
	return s, nil
}

// End terminates the shift from Active or Paused. An open pause interval is
// folded into the accumulator first so the final elapsed figure is exact.
func (s Shift) End(now time.Time) (Shift, error) {
	switch s.Status {
	case StatusActive:
	case StatusPaused:
		s.TotalPaused += now.Sub(s.PausedAt)
		s.PausedAt = time.Time{}
	default:
		return s, ErrInvalidTransition
	}
	s.Status = StatusEnded
	s.EndedAt = now
	return s, nil
}

// Elapsed is the active working time: now - start - accumulated pauses,
// minus the still-open pause when currently paused. A negative result is a
// defect (clock skew or corrupted state); it is clamped to zero and reported
// so the caller can log it rather than display it.
func (s Shift) Elapsed(now time.Time) (d time.Duration, defect bool, err error) {
	switch s.Status {
	case StatusActive:
		d = now.Sub(s.StartedAt) - s.TotalPaused
	case StatusPaused:
		d = s.PausedAt.Sub(s.StartedAt) - s.TotalPaused
	default:
		return 0, false, ErrNotRunning
	}
	if d < 0 {
		return 0, true, nil
	}
	return d, false, nil
}
