// Package server is the HTTP facade the cashier UI talks to. It owns no
// business rules: every handler resolves inputs, calls the engine, and maps
// engine errors to a stable error envelope. The facade assumes a single
// cashier client; its mutex keeps lookup-then-mutate handler sequences
// atomic, while cart and snapshot carry their own locks so the checkout
// commit can land safely against concurrent display reads.
package server

import (
	"log/slog"
	"net/http"
	"sync"

	cartdomain "github.com/dwikikusuma/resto-pos/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/resto-pos/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/resto-pos/internal/checkout/app"
	shiftapp "github.com/dwikikusuma/resto-pos/internal/shift/app"
	"github.com/gin-gonic/gin"
)

type Server struct {
	log      *slog.Logger
	snapshot *catalogapp.Snapshot
	cart     *cartdomain.Cart
	checkout *checkoutapp.Service
	shifts   *shiftapp.Tracker
	currency string

	mu sync.Mutex
}

func New(log *slog.Logger, snapshot *catalogapp.Snapshot, cart *cartdomain.Cart, checkout *checkoutapp.Service, shifts *shiftapp.Tracker, currency string) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		log:      log,
		snapshot: snapshot,
		cart:     cart,
		checkout: checkout,
		shifts:   shifts,
		currency: currency,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	r.POST("/catalog/reload", s.reloadCatalog)
	r.GET("/catalog", s.listCatalog)

	r.POST("/cart/lines", s.addLine)
	r.PATCH("/cart/lines", s.setQuantity)
	r.DELETE("/cart/lines", s.removeLine)
	r.DELETE("/cart", s.clearCart)
	r.PUT("/cart/payment", s.setPayment)
	r.GET("/cart", s.getCart)

	r.POST("/checkout", s.submitCheckout)

	r.GET("/shift", s.getShift)
	r.POST("/shift/start", s.startShift)
	r.POST("/shift/pause", s.pauseShift)
	r.POST("/shift/resume", s.resumeShift)
	r.POST("/shift/end", s.endShift)

	return r
}

func (s *Server) reloadCatalog(c *gin.Context) {
	s.mu.Lock()
	err := s.snapshot.Load(c.Request.Context())
	s.mu.Unlock()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) listCatalog(c *gin.Context) {
	s.mu.Lock()
	items := s.snapshot.Items()
	stale := s.snapshot.Stale()
	s.mu.Unlock()

	c.JSON(http.StatusOK, catalogResponse{
		Items: toItemDTOs(items),
		Stale: stale,
	})
}

func (s *Server) addLine(c *gin.Context) {
	var req lineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.snapshot.Item(req.ItemID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.cart.AddLine(item, req.Option); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) setQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item, err := s.snapshot.Item(req.ItemID)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.cart.SetQuantity(item, req.Option, req.Quantity); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) removeLine(c *gin.Context) {
	var req lineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	s.mu.Lock()
	s.cart.RemoveLine(req.ItemID, req.Option)
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}

func (s *Server) clearCart(c *gin.Context) {
	s.mu.Lock()
	s.cart.Clear()
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}

func (s *Server) setPayment(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.OrderType != "" {
		if err := s.cart.SetOrderType(cartdomain.OrderType(req.OrderType)); err != nil {
			s.fail(c, err)
			return
		}
	}
	err := s.cart.SetPayment(cartdomain.Payment{
		Method:       cartdomain.PaymentMethod(req.Method),
		Tip:          req.Tip,
		CashTendered: req.CashTendered,
		WalletRef:    req.WalletRef,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getCart(c *gin.Context) {
	s.mu.Lock()
	lines := s.cart.Lines()
	pay := s.cart.Payment()
	orderType := s.cart.OrderType()
	totals := s.checkout.Totals().Rounded()
	change := s.checkout.ChangeDue()
	s.mu.Unlock()

	c.JSON(http.StatusOK, cartResponse{
		Lines:     toLineDTOs(lines),
		OrderType: string(orderType),
		Payment: paymentDTO{
			Method:       string(pay.Method),
			Tip:          pay.Tip,
			CashTendered: pay.CashTendered,
			WalletRef:    pay.WalletRef,
		},
		Totals:   toTotalsDTO(totals, s.currency),
		Change:   change,
	})
}

// submitCheckout deliberately does not take the facade mutex for the backend
// round-trip: the checkout service owns its single-flight guard, and a
// concurrent attempt must be answered with CHECKOUT_IN_PROGRESS, not queued.
func (s *Server) submitCheckout(c *gin.Context) {
	receipt, err := s.checkout.Submit(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toReceiptDTO(receipt, s.currency))
}

func (s *Server) getShift(c *gin.Context) {
	shift, ok := s.shifts.Current()
	if !ok {
		s.fail(c, shiftapp.ErrNoShift)
		return
	}

	resp := shiftResponse{
		ID:     shift.ID,
		Status: string(shift.Status),
	}
	if d, err := s.shifts.Elapsed(); err == nil {
		secs := int64(d.Seconds())
		resp.ElapsedSeconds = &secs
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) startShift(c *gin.Context)  { s.shiftTransition(c, s.shifts.Start) }
func (s *Server) pauseShift(c *gin.Context)  { s.shiftTransition(c, s.shifts.Pause) }
func (s *Server) resumeShift(c *gin.Context) { s.shiftTransition(c, s.shifts.Resume) }

func (s *Server) endShift(c *gin.Context) {
	var req endShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	shift, err := s.shifts.End(c.Request.Context(), req.toSummary())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, shiftResponse{ID: shift.ID, Status: string(shift.Status)})
}
