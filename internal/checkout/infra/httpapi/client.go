package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dwikikusuma/resto-pos/internal/checkout/app"
	"github.com/dwikikusuma/resto-pos/internal/checkout/domain"
	"github.com/shopspring/decimal"
)

// Client submits orders to the backend of record. One POST per attempt.
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

type orderItemDTO struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Option   *string `json:"option"`
}

type orderDTO struct {
	Items         []orderItemDTO  `json:"items"`
	PaymentMethod string          `json:"paymentMethod"`
	OrderType     string          `json:"orderType"`
	GCashCode     *string         `json:"gcashCode"`
	Tip           decimal.Decimal `json:"tip"`
	CashPaid      decimal.Decimal `json:"cashPaid"`
}

type orderResponseDTO struct {
	ID        string    `json:"_id"`
	OrderID   string    `json:"orderId"`
	CreatedAt time.Time `json:"createdAt"`
	Message   string    `json:"message"`
}

func (c *Client) SubmitOrder(ctx context.Context, req domain.OrderRequest) (app.OrderConfirmation, error) {
	items := make([]orderItemDTO, 0, len(req.Items))
	for _, it := range req.Items {
		dto := orderItemDTO{Product: it.ItemID, Quantity: it.Quantity}
		if it.Option != "" {
			opt := it.Option
			dto.Option = &opt
		}
		items = append(items, dto)
	}

	body := orderDTO{
		Items:         items,
		PaymentMethod: string(req.PaymentMethod),
		OrderType:     string(req.OrderType),
		Tip:           req.Tip,
		CashPaid:      req.CashTendered,
	}
	if req.WalletRef != "" {
		ref := req.WalletRef
		body.GCashCode = &ref
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return app.OrderConfirmation{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(raw))
	if err != nil {
		return app.OrderConfirmation{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return app.OrderConfirmation{}, fmt.Errorf("submit order: %w", err)
	}
	defer resp.Body.Close()

	var dto orderResponseDTO
	decodeErr := json.NewDecoder(resp.Body).Decode(&dto)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if decodeErr != nil {
			return app.OrderConfirmation{}, fmt.Errorf("submit order: decode: %w", decodeErr)
		}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// Backend-reported conflict or validation failure (stock ran out
		// server-side, bad payment). The attempt failed cleanly.
		msg := dto.Message
		if msg == "" {
			msg = resp.Status
		}
		return app.OrderConfirmation{}, fmt.Errorf("%w: %s", app.ErrBackendRejected, msg)
	default:
		return app.OrderConfirmation{}, fmt.Errorf("submit order: backend returned %s", resp.Status)
	}

	id := dto.OrderID
	if id == "" {
		id = dto.ID
	}
	placedAt := dto.CreatedAt
	if placedAt.IsZero() {
		placedAt = time.Now()
	}
	return app.OrderConfirmation{OrderID: id, PlacedAt: placedAt}, nil
}
