package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dwikikusuma/resto-pos/internal/shift/domain"
)

var ErrNoShift = errors.New("no open shift")

// Tracker owns the session's view of the cashier's shift. Transitions are
// validated locally first (an illegal call never reaches the backend), then
// the backend's returned state is adopted as authoritative. Elapsed time is
// recomputed from the clock on every query, so a display timer can poll it
// without the tracker running any timers of its own.
type Tracker struct {
	api   ShiftAPI
	clock func() time.Time
	log   *slog.Logger

	mu      sync.Mutex
	current *domain.Shift
}

func NewTracker(api ShiftAPI, clock func() time.Time, log *slog.Logger) *Tracker {
	if clock == nil {
		clock = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Tracker{api: api, clock: clock, log: log}
}

// Init adopts the open shift if the backend has one, otherwise starts a new
// one. Called once when the cashier session begins.
func (t *Tracker) Init(ctx context.Context) (domain.Shift, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.api.ActiveShift(ctx)
	if err != nil {
		return domain.Shift{}, fmt.Errorf("fetch active shift: %w", err)
	}
	if s == nil {
		started, err := t.api.StartShift(ctx)
		if err != nil {
			return domain.Shift{}, fmt.Errorf("start shift: %w", err)
		}
		s = &started
	}
	t.current = s
	return *s, nil
}

func (t *Tracker) Current() (domain.Shift, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return domain.Shift{}, false
	}
	return *t.current, true
}

// Start opens a new shift. Legal only when no shift is open (a previous
// shift must have been ended, not merely paused).
func (t *Tracker) Start(ctx context.Context) (domain.Shift, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current != nil && t.current.Status != domain.StatusEnded {
		return domain.Shift{}, domain.ErrInvalidTransition
	}
	s, err := t.api.StartShift(ctx)
	if err != nil {
		return domain.Shift{}, fmt.Errorf("start shift: %w", err)
	}
	t.current = &s
	return s, nil
}

func (t *Tracker) Pause(ctx context.Context) (domain.Shift, error) {
	return t.transition(ctx, func(s domain.Shift) (domain.Shift, error) {
		return s.Pause(t.clock())
	}, t.api.PauseShift)
}

func (t *Tracker) Resume(ctx context.Context) (domain.Shift, error) {
	return t.transition(ctx, func(s domain.Shift) (domain.Shift, error) {
		return s.Resume(t.clock())
	}, t.api.ResumeShift)
}

func (t *Tracker) End(ctx context.Context, summary domain.Summary) (domain.Shift, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return domain.Shift{}, ErrNoShift
	}
	if _, err := t.current.End(t.clock()); err != nil {
		return domain.Shift{}, err
	}

	s, err := t.api.EndShift(ctx, summary)
	if err != nil {
		return domain.Shift{}, fmt.Errorf("end shift: %w", err)
	}
	t.current = &s
	return s, nil
}

// Elapsed is the active working time right now. Safe to poll from a display
// refresh; a negative raw value is logged as a defect and shown as zero.
func (t *Tracker) Elapsed() (time.Duration, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return 0, ErrNoShift
	}
	d, defect, err := t.current.Elapsed(t.clock())
	if err != nil {
		return 0, err
	}
	if defect {
		t.log.Error("negative shift elapsed clamped to zero",
			slog.String("shift_id", t.current.ID),
			slog.Time("started_at", t.current.StartedAt))
	}
	return d, nil
}

func (t *Tracker) transition(
	ctx context.Context,
	local func(domain.Shift) (domain.Shift, error),
	remote func(context.Context) (domain.Shift, error),
) (domain.Shift, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return domain.Shift{}, ErrNoShift
	}
	if _, err := local(*t.current); err != nil {
		return domain.Shift{}, err
	}

	s, err := remote(ctx)
	if err != nil {
		return domain.Shift{}, err
	}
	t.current = &s
	return s, nil
}
