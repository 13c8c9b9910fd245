package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	cartdomain "github.com/dwikikusuma/resto-pos/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/resto-pos/internal/catalog/app"
	"github.com/dwikikusuma/resto-pos/internal/checkout/domain"
	"github.com/dwikikusuma/resto-pos/internal/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart               = errors.New("cart is empty")
	ErrInsufficientPayment     = errors.New("insufficient cash received")
	ErrMissingPaymentReference = errors.New("missing wallet reference")
	ErrCheckoutInProgress      = errors.New("checkout already in progress")
	ErrBackendRejected         = errors.New("order rejected by backend")

	// ErrAttemptSuperseded reports that the session was reset while the
	// submission was in flight; the response was discarded without touching
	// cart or stock.
	ErrAttemptSuperseded = errors.New("checkout attempt superseded")
)

// OrderAPI submits a composed order to the backend of record. Exactly one
// call per attempt; the engine never retries on its own because a failed
// submission may have partially succeeded server-side.
type OrderAPI interface {
	SubmitOrder(ctx context.Context, req domain.OrderRequest) (OrderConfirmation, error)
}

type OrderConfirmation struct {
	OrderID  string
	PlacedAt time.Time
}

// Service drives one checkout attempt at a time:
// Idle -> Validating -> Submitting -> Succeeded | Failed.
//
// It owns the success-path side effects: deducting the local stock mirror,
// clearing the cart, and producing the receipt from the totals locked in
// before submission.
type Service struct {
	cart     *cartdomain.Cart
	snapshot *catalogapp.Snapshot
	orders   OrderAPI
	params   pricing.Params
	log      *slog.Logger

	mu        sync.Mutex
	state     domain.State
	attemptID string
}

func NewService(cart *cartdomain.Cart, snapshot *catalogapp.Snapshot, orders OrderAPI, params pricing.Params, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cart:      cart,
		snapshot:  snapshot,
		orders:    orders,
		params:    params,
		log:       log,
		state:     domain.StateIdle,
		attemptID: uuid.NewString(),
	}
}

func (s *Service) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Totals computes the live totals for the current cart, using the exact
// computation the receipt will use.
func (s *Service) Totals() pricing.Totals {
	p := s.params
	p.Tip = s.cart.Payment().Tip
	return pricing.Compute(s.cart.Lines(), p)
}

// ChangeDue is the live change preview; nil unless paying cash. Computed from
// the same 2dp total the cashier sees, so preview and receipt always agree.
func (s *Service) ChangeDue() *decimal.Decimal {
	pay := s.cart.Payment()
	return pricing.ChangeDue(s.Totals().Rounded(), pay.Method, pay.CashTendered)
}

// Submit validates the cart and payment inputs, sends the order once, and on
// success reconciles local state and returns the receipt. On failure the cart
// is left intact for correction; a second Submit while one is in flight fails
// with ErrCheckoutInProgress.
func (s *Service) Submit(ctx context.Context) (*domain.Receipt, error) {
	s.mu.Lock()
	if s.state == domain.StateSubmitting {
		s.mu.Unlock()
		return nil, ErrCheckoutInProgress
	}

	s.state = domain.StateValidating
	lines := s.cart.Lines()
	pay := s.cart.Payment()
	orderType := s.cart.OrderType()

	p := s.params
	p.Tip = pay.Tip
	// Lock in the 2dp totals the cashier was shown; validation and the
	// receipt must agree with the displayed amount, not the raw product.
	totals := pricing.Compute(lines, p).Rounded()

	if err := validate(lines, pay, totals); err != nil {
		s.state = domain.StateFailed
		s.mu.Unlock()
		return nil, err
	}

	req := buildRequest(lines, pay, orderType)
	attempt := uuid.NewString()
	s.attemptID = attempt
	s.state = domain.StateSubmitting
	s.mu.Unlock()

	conf, submitErr := s.orders.SubmitOrder(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.attemptID != attempt {
		// The session was reset mid-flight. The backend outcome belongs to
		// the old session and must not corrupt the new one.
		s.log.Warn("discarding stale checkout response",
			slog.String("attempt_id", attempt),
			slog.Bool("succeeded", submitErr == nil))
		return nil, ErrAttemptSuperseded
	}

	if submitErr != nil {
		s.state = domain.StateFailed
		s.log.Error("order submission failed", slog.Any("err", submitErr))
		return nil, fmt.Errorf("submit order: %w", submitErr)
	}

	for _, l := range req.Items {
		s.snapshot.DeductStock(l.ItemID, l.Quantity)
	}
	receipt := buildReceipt(conf, lines, pay, orderType, totals)
	s.cart.Clear()
	s.state = domain.StateSucceeded

	s.log.Info("order placed",
		slog.String("order_id", conf.OrderID),
		slog.String("total", totals.Total.String()),
		slog.String("payment_method", string(pay.Method)))

	return receipt, nil
}

// Reset abandons any in-flight attempt and returns the machine to Idle with a
// cleared cart. A response that arrives for the abandoned attempt is dropped.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attemptID = uuid.NewString()
	s.state = domain.StateIdle
	s.cart.Clear()
}

// validate checks the attempt against the rounded totals, so cash equal to
// the displayed amount is always enough.
func validate(lines []cartdomain.Line, pay cartdomain.Payment, totals pricing.Totals) error {
	if len(lines) == 0 {
		return ErrEmptyCart
	}
	switch pay.Method {
	case cartdomain.PaymentCash:
		if pay.CashTendered.LessThan(totals.Total) {
			return ErrInsufficientPayment
		}
	case cartdomain.PaymentGCash:
		if strings.TrimSpace(pay.WalletRef) == "" {
			return ErrMissingPaymentReference
		}
	}
	return nil
}

func buildRequest(lines []cartdomain.Line, pay cartdomain.Payment, orderType cartdomain.OrderType) domain.OrderRequest {
	items := make([]domain.OrderLine, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderLine{
			ItemID:   l.ItemID,
			Quantity: l.Quantity,
			Option:   l.OptionLabel,
		})
	}

	walletRef := ""
	if pay.Method == cartdomain.PaymentGCash {
		walletRef = strings.TrimSpace(pay.WalletRef)
	}

	return domain.OrderRequest{
		Items:         items,
		PaymentMethod: pay.Method,
		OrderType:     orderType,
		Tip:           pay.Tip,
		CashTendered:  pay.CashTendered,
		WalletRef:     walletRef,
	}
}

func buildReceipt(conf OrderConfirmation, lines []cartdomain.Line, pay cartdomain.Payment, orderType cartdomain.OrderType, totals pricing.Totals) *domain.Receipt {
	rl := make([]domain.ReceiptLine, 0, len(lines))
	for _, l := range lines {
		rl = append(rl, domain.ReceiptLine{
			Name:        l.Name,
			OptionLabel: l.OptionLabel,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice().Round(2),
			LineTotal:   l.LineTotal().Round(2),
		})
	}

	return &domain.Receipt{
		OrderID:       conf.OrderID,
		PlacedAt:      conf.PlacedAt,
		OrderType:     orderType,
		Lines:         rl,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		Tip:           totals.Tip,
		Total:         totals.Total,
		PaymentMethod: pay.Method,
		CashTendered:  pay.CashTendered.Round(2),
		Change:        pricing.ChangeDue(totals, pay.Method, pay.CashTendered),
		WalletRef:     pay.WalletRef,
	}
}
