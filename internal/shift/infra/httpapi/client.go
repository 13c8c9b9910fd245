package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dwikikusuma/resto-pos/internal/shift/domain"
	"github.com/shopspring/decimal"
)

// Client talks to the backend shift store. The backend is authoritative; the
// tracker adopts whatever state these calls return.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: baseURL, token: token, http: hc}
}

type shiftEnvelope struct {
	Shift *shiftDTO `json:"shift"`
}

type shiftDTO struct {
	ID        string     `json:"_id"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt"`
	PausedAt  *time.Time `json:"pausedAt"`
	// Milliseconds, as the backend stores it.
	TotalPausedDuration int64 `json:"totalPausedDuration"`
}

func (d *shiftDTO) toDomain() domain.Shift {
	s := domain.Shift{
		ID:          d.ID,
		Status:      domain.Status(d.Status),
		StartedAt:   d.StartedAt,
		TotalPaused: time.Duration(d.TotalPausedDuration) * time.Millisecond,
	}
	if d.EndedAt != nil {
		s.EndedAt = *d.EndedAt
	}
	if d.PausedAt != nil {
		s.PausedAt = *d.PausedAt
	}
	return s
}

type summaryDTO struct {
	TotalSales  decimal.Decimal `json:"totalSales"`
	TotalOrders int             `json:"totalOrders"`
	Cash        decimal.Decimal `json:"cash"`
	GCash       decimal.Decimal `json:"gcash"`
}

func (c *Client) ActiveShift(ctx context.Context) (*domain.Shift, error) {
	env, err := c.call(ctx, http.MethodGet, "/shifts/active", nil)
	if err != nil {
		return nil, err
	}
	if env.Shift == nil {
		return nil, nil
	}
	s := env.Shift.toDomain()
	return &s, nil
}

func (c *Client) StartShift(ctx context.Context) (domain.Shift, error) {
	return c.transition(ctx, "/shifts/start", nil)
}

func (c *Client) PauseShift(ctx context.Context) (domain.Shift, error) {
	return c.transition(ctx, "/shifts/pause", nil)
}

func (c *Client) ResumeShift(ctx context.Context) (domain.Shift, error) {
	return c.transition(ctx, "/shifts/resume", nil)
}

func (c *Client) EndShift(ctx context.Context, summary domain.Summary) (domain.Shift, error) {
	body := summaryDTO{
		TotalSales:  summary.TotalSales,
		TotalOrders: summary.TotalOrders,
		Cash:        summary.Cash,
		GCash:       summary.GCash,
	}
	return c.transition(ctx, "/shifts/end", body)
}

func (c *Client) transition(ctx context.Context, path string, body any) (domain.Shift, error) {
	env, err := c.call(ctx, http.MethodPost, path, body)
	if err != nil {
		return domain.Shift{}, err
	}
	if env.Shift == nil {
		return domain.Shift{}, fmt.Errorf("%s: backend returned no shift", path)
	}
	return env.Shift.toDomain(), nil
}

func (c *Client) call(ctx context.Context, method, path string, body any) (shiftEnvelope, error) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return shiftEnvelope{}, err
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return shiftEnvelope{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return shiftEnvelope{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return shiftEnvelope{}, fmt.Errorf("%s %s: backend returned %s", method, path, resp.Status)
	}

	var env shiftEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return shiftEnvelope{}, fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return env, nil
}
