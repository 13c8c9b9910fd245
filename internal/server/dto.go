package server

import (
	"context"
	"net/http"

	cartdomain "github.com/dwikikusuma/resto-pos/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/resto-pos/internal/catalog/domain"
	checkoutdomain "github.com/dwikikusuma/resto-pos/internal/checkout/domain"
	"github.com/dwikikusuma/resto-pos/internal/pricing"
	shiftdomain "github.com/dwikikusuma/resto-pos/internal/shift/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type lineRequest struct {
	ItemID string `json:"itemId" binding:"required"`
	Option string `json:"option"`
}

type quantityRequest struct {
	ItemID   string `json:"itemId" binding:"required"`
	Option   string `json:"option"`
	Quantity int    `json:"quantity"`
}

type paymentRequest struct {
	Method       string          `json:"method" binding:"required"`
	Tip          decimal.Decimal `json:"tip"`
	CashTendered decimal.Decimal `json:"cashTendered"`
	WalletRef    string          `json:"walletRef"`
	OrderType    string          `json:"orderType"`
}

type endShiftRequest struct {
	TotalSales  decimal.Decimal `json:"totalSales"`
	TotalOrders int             `json:"totalOrders"`
	Cash        decimal.Decimal `json:"cash"`
	GCash       decimal.Decimal `json:"gcash"`
}

func (r endShiftRequest) toSummary() shiftdomain.Summary {
	return shiftdomain.Summary{
		TotalSales:  r.TotalSales,
		TotalOrders: r.TotalOrders,
		Cash:        r.Cash,
		GCash:       r.GCash,
	}
}

type optionDTO struct {
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

type itemDTO struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	Options  []optionDTO     `json:"options,omitempty"`
}

type catalogResponse struct {
	Items []itemDTO `json:"items"`
	Stale bool      `json:"stale"`
}

func toItemDTOs(items []catalogdomain.Item) []itemDTO {
	out := make([]itemDTO, 0, len(items))
	for _, it := range items {
		opts := make([]optionDTO, 0, len(it.Options))
		for _, o := range it.Options {
			opts = append(opts, optionDTO{Label: o.Label, Price: o.Price})
		}
		out = append(out, itemDTO{
			ID:       it.ID,
			Name:     it.Name,
			Category: it.Category,
			Price:    it.Price,
			Stock:    it.Stock,
			Options:  opts,
		})
	}
	return out
}

type lineDTO struct {
	ItemID    string          `json:"itemId"`
	Name      string          `json:"name"`
	Option    string          `json:"option,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

func toLineDTOs(lines []cartdomain.Line) []lineDTO {
	out := make([]lineDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineDTO{
			ItemID:    l.ItemID,
			Name:      l.Name,
			Option:    l.OptionLabel,
			UnitPrice: l.UnitPrice().Round(2),
			Quantity:  l.Quantity,
			LineTotal: l.LineTotal().Round(2),
		})
	}
	return out
}

type paymentDTO struct {
	Method       string          `json:"method"`
	Tip          decimal.Decimal `json:"tip"`
	CashTendered decimal.Decimal `json:"cashTendered"`
	WalletRef    string          `json:"walletRef,omitempty"`
}

type totalsDTO struct {
	Currency string          `json:"currency"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Tip      decimal.Decimal `json:"tip"`
	Total    decimal.Decimal `json:"total"`
}

func toTotalsDTO(t pricing.Totals, currency string) totalsDTO {
	return totalsDTO{
		Currency: currency,
		Subtotal: t.Subtotal,
		Tax:      t.Tax,
		Tip:      t.Tip,
		Total:    t.Total,
	}
}

type cartResponse struct {
	Lines     []lineDTO        `json:"lines"`
	OrderType string           `json:"orderType"`
	Payment   paymentDTO       `json:"payment"`
	Totals    totalsDTO        `json:"totals"`
	Change    *decimal.Decimal `json:"change,omitempty"`
}

type receiptLineDTO struct {
	Name      string          `json:"name"`
	Option    string          `json:"option,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type receiptDTO struct {
	OrderID       string           `json:"orderId"`
	PlacedAt      string           `json:"placedAt"`
	OrderType     string           `json:"orderType"`
	Currency      string           `json:"currency"`
	Lines         []receiptLineDTO `json:"lines"`
	Subtotal      decimal.Decimal  `json:"subtotal"`
	Tax           decimal.Decimal  `json:"tax"`
	Tip           decimal.Decimal  `json:"tip"`
	Total         decimal.Decimal  `json:"total"`
	PaymentMethod string           `json:"paymentMethod"`
	CashTendered  decimal.Decimal  `json:"cashTendered"`
	Change        *decimal.Decimal `json:"change,omitempty"`
	WalletRef     string           `json:"walletRef,omitempty"`
}

func toReceiptDTO(r *checkoutdomain.Receipt, currency string) receiptDTO {
	lines := make([]receiptLineDTO, 0, len(r.Lines))
	for _, l := range r.Lines {
		lines = append(lines, receiptLineDTO{
			Name:      l.Name,
			Option:    l.OptionLabel,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			LineTotal: l.LineTotal,
		})
	}
	return receiptDTO{
		OrderID:       r.OrderID,
		PlacedAt:      r.PlacedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		OrderType:     string(r.OrderType),
		Currency:      currency,
		Lines:         lines,
		Subtotal:      r.Subtotal,
		Tax:           r.Tax,
		Tip:           r.Tip,
		Total:         r.Total,
		PaymentMethod: string(r.PaymentMethod),
		CashTendered:  r.CashTendered,
		Change:        r.Change,
		WalletRef:     r.WalletRef,
	}
}

type shiftResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	ElapsedSeconds *int64 `json:"elapsedSeconds,omitempty"`
}

func (s *Server) shiftTransition(c *gin.Context, op func(context.Context) (shiftdomain.Shift, error)) {
	shift, err := op(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shiftResponse{ID: shift.ID, Status: string(shift.Status)})
}
