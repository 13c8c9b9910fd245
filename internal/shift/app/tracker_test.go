package app

import (
	"context"
	"testing"
	"time"

	"github.com/dwikikusuma/resto-pos/internal/shift/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeShiftAPI mimics the backend: it applies transitions itself and returns
// the resulting state, the way the real store does.
type fakeShiftAPI struct {
	clock   func() time.Time
	shift   *domain.Shift
	nextID  int
	summary *domain.Summary
}

func (f *fakeShiftAPI) ActiveShift(ctx context.Context) (*domain.Shift, error) {
	if f.shift == nil || f.shift.Status == domain.StatusEnded {
		return nil, nil
	}
	cp := *f.shift
	return &cp, nil
}

func (f *fakeShiftAPI) StartShift(ctx context.Context) (domain.Shift, error) {
	f.nextID++
	s := domain.Start("sh"+string(rune('0'+f.nextID)), f.clock())
	f.shift = &s
	return s, nil
}

func (f *fakeShiftAPI) PauseShift(ctx context.Context) (domain.Shift, error) {
	s, err := f.shift.Pause(f.clock())
	if err != nil {
		return domain.Shift{}, err
	}
	f.shift = &s
	return s, nil
}

func (f *fakeShiftAPI) ResumeShift(ctx context.Context) (domain.Shift, error) {
	s, err := f.shift.Resume(f.clock())
	if err != nil {
		return domain.Shift{}, err
	}
	f.shift = &s
	return s, nil
}

func (f *fakeShiftAPI) EndShift(ctx context.Context, summary domain.Summary) (domain.Shift, error) {
	s, err := f.shift.End(f.clock())
	if err != nil {
		return domain.Shift{}, err
	}
	f.shift = &s
	f.summary = &summary
	return s, nil
}

type testClock struct {
	now time.Time
}

func (c *testClock) advance(d time.Duration) { c.now = c.now.Add(d) }
func (c *testClock) read() time.Time         { return c.now }

func newTrackerFixture(t *testing.T) (*Tracker, *testClock, *fakeShiftAPI) {
	t.Helper()
	clock := &testClock{now: time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)}
	api := &fakeShiftAPI{clock: clock.read}
	return NewTracker(api, clock.read, nil), clock, api
}

func TestInitStartsWhenNoActiveShift(t *testing.T) {
	tr, _, _ := newTrackerFixture(t)

	s, err := tr.Init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, s.Status)

	cur, ok := tr.Current()
	require.True(t, ok)
	assert.Equal(t, s.ID, cur.ID)
}

func TestInitAdoptsExistingShift(t *testing.T) {
	tr, clock, api := newTrackerFixture(t)

	existing := domain.Start("sh9", clock.now.Add(-time.Hour))
	api.shift = &existing

	s, err := tr.Init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sh9", s.ID)
}

func TestPauseResumeElapsed(t *testing.T) {
	tr, clock, _ := newTrackerFixture(t)
	_, err := tr.Init(context.Background())
	require.NoError(t, err)

	clock.advance(10 * time.Second)
	_, err = tr.Pause(context.Background())
	require.NoError(t, err)

	clock.advance(5 * time.Second)
	_, err = tr.Resume(context.Background())
	require.NoError(t, err)

	clock.advance(20 * time.Second)
	d, err := tr.Elapsed()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)
}

func TestIllegalTransitionSkipsBackend(t *testing.T) {
	tr, _, _ := newTrackerFixture(t)
	_, err := tr.Init(context.Background())
	require.NoError(t, err)

	_, err = tr.Resume(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = tr.Pause(context.Background())
	require.NoError(t, err)
	_, err = tr.Pause(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestEndForwardsSummaryAndIsTerminal(t *testing.T) {
	tr, clock, api := newTrackerFixture(t)
	_, err := tr.Init(context.Background())
	require.NoError(t, err)

	clock.advance(10 * time.Second)
	_, err = tr.Pause(context.Background())
	require.NoError(t, err)
	clock.advance(5 * time.Second)

	summary := domain.Summary{
		TotalSales:  decimal.NewFromInt(4200),
		TotalOrders: 17,
		Cash:        decimal.NewFromInt(3000),
		GCash:       decimal.NewFromInt(1200),
	}
	s, err := tr.End(context.Background(), summary)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEnded, s.Status)
	assert.Equal(t, 5*time.Second, s.TotalPaused, "open pause folded on end")
	require.NotNil(t, api.summary)
	assert.Equal(t, 17, api.summary.TotalOrders)

	_, err = tr.Pause(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = tr.Elapsed()
	assert.ErrorIs(t, err, domain.ErrNotRunning)

	// A new shift may be started after the old one ended.
	_, err = tr.Start(context.Background())
	require.NoError(t, err)
}

func TestStartWhileActiveRejected(t *testing.T) {
	tr, _, _ := newTrackerFixture(t)
	_, err := tr.Init(context.Background())
	require.NoError(t, err)

	_, err = tr.Start(context.Background())
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
