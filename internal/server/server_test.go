package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	cartdomain "github.com/dwikikusuma/resto-pos/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/resto-pos/internal/catalog/app"
	catalogdomain "github.com/dwikikusuma/resto-pos/internal/catalog/domain"
	checkoutapp "github.com/dwikikusuma/resto-pos/internal/checkout/app"
	checkoutdomain "github.com/dwikikusuma/resto-pos/internal/checkout/domain"
	"github.com/dwikikusuma/resto-pos/internal/pricing"
	shiftapp "github.com/dwikikusuma/resto-pos/internal/shift/app"
	shiftdomain "github.com/dwikikusuma/resto-pos/internal/shift/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCatalogAPI struct {
	items []catalogdomain.Item
}

func (s *stubCatalogAPI) ListItems(ctx context.Context) ([]catalogdomain.Item, error) {
	return s.items, nil
}

type stubOrders struct {
	err error

	// When set, SubmitOrder signals started and blocks until release closes.
	started chan struct{}
	release chan struct{}
}

func (s *stubOrders) SubmitOrder(ctx context.Context, req checkoutdomain.OrderRequest) (checkoutapp.OrderConfirmation, error) {
	if s.started != nil {
		close(s.started)
	}
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return checkoutapp.OrderConfirmation{}, s.err
	}
	return checkoutapp.OrderConfirmation{OrderID: "ord-7", PlacedAt: time.Unix(1_700_000_000, 0)}, nil
}

type stubShiftAPI struct {
	shift *shiftdomain.Shift
}

func (s *stubShiftAPI) ActiveShift(ctx context.Context) (*shiftdomain.Shift, error) {
	return s.shift, nil
}

func (s *stubShiftAPI) StartShift(ctx context.Context) (shiftdomain.Shift, error) {
	sh := shiftdomain.Start("sh1", time.Now())
	s.shift = &sh
	return sh, nil
}

func (s *stubShiftAPI) PauseShift(ctx context.Context) (shiftdomain.Shift, error) {
	sh, err := s.shift.Pause(time.Now())
	if err == nil {
		s.shift = &sh
	}
	return sh, err
}

func (s *stubShiftAPI) ResumeShift(ctx context.Context) (shiftdomain.Shift, error) {
	sh, err := s.shift.Resume(time.Now())
	if err == nil {
		s.shift = &sh
	}
	return sh, err
}

func (s *stubShiftAPI) EndShift(ctx context.Context, summary shiftdomain.Summary) (shiftdomain.Shift, error) {
	sh, err := s.shift.End(time.Now())
	if err == nil {
		s.shift = &sh
	}
	return sh, err
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestServer(t *testing.T, orders checkoutapp.OrderAPI) (*gin.Engine, *cartdomain.Cart) {
	t.Helper()

	snap := catalogapp.NewSnapshot(&stubCatalogAPI{items: []catalogdomain.Item{
		{ID: "p1", Name: "Pork Sisig", Category: "Sisig", Price: dec("100"), Stock: 10, Available: true},
		{ID: "p2", Name: "Iced Tea", Category: "Drinks", Price: dec("35"), Stock: 20, Available: true,
			Options: []catalogdomain.Option{{Label: "Large", Price: dec("50")}}},
		{ID: "p3", Name: "Sold Out Silog", Category: "Silog", Price: dec("90"), Stock: 0, Available: true},
	}})
	require.NoError(t, snap.Load(context.Background()))

	cart := cartdomain.NewCart()
	params := pricing.Params{Mode: pricing.TaxExclusive, Rate: pricing.DefaultVATRate}
	checkoutSvc := checkoutapp.NewService(cart, snap, orders, params, nil)
	tracker := shiftapp.NewTracker(&stubShiftAPI{}, nil, nil)
	_, err := tracker.Init(context.Background())
	require.NoError(t, err)

	srv := New(nil, snap, cart, checkoutSvc, tracker, "PHP")
	return srv.Router(), cart
}

func do(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e.Error
}

func TestCartFlowOverHTTP(t *testing.T) {
	r, _ := newTestServer(t, &stubOrders{})

	// Two sisig plus a large iced tea, tip 20, paid 350 cash.
	for i := 0; i < 2; i++ {
		w := do(t, r, http.MethodPost, "/cart/lines", gin.H{"itemId": "p1"})
		require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	}
	w := do(t, r, http.MethodPost, "/cart/lines", gin.H{"itemId": "p2", "option": "Large"})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, r, http.MethodPut, "/cart/payment", gin.H{
		"method": "Cash", "tip": 20, "cashTendered": 350,
	})
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = do(t, r, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Lines  []lineDTO `json:"lines"`
		Totals totalsDTO `json:"totals"`
		Change *string   `json:"change"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Lines, 2)
	assert.True(t, resp.Totals.Subtotal.Equal(dec("250")))
	assert.True(t, resp.Totals.Tax.Equal(dec("30")))
	assert.True(t, resp.Totals.Total.Equal(dec("300")))
	require.NotNil(t, resp.Change)
	assert.Equal(t, "50", *resp.Change)
}

func TestAddLineErrors(t *testing.T) {
	r, _ := newTestServer(t, &stubOrders{})

	t.Run("out of stock", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/cart/lines", gin.H{"itemId": "p3"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "OUT_OF_STOCK", errCode(t, w))
	})

	t.Run("option required", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/cart/lines", gin.H{"itemId": "p2"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "OPTION_REQUIRED", errCode(t, w))
	})

	t.Run("unknown item", func(t *testing.T) {
		w := do(t, r, http.MethodPost, "/cart/lines", gin.H{"itemId": "nope"})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "NOT_FOUND", errCode(t, w))
	})
}

func TestCheckoutOverHTTP(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		r, _ := newTestServer(t, &stubOrders{})
		w := do(t, r, http.MethodPost, "/checkout", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "EMPTY_CART", errCode(t, w))
	})

	t.Run("success clears cart and returns receipt", func(t *testing.T) {
		r, cart := newTestServer(t, &stubOrders{})

		w := do(t, r, http.MethodPost, "/cart/lines", gin.H{"itemId": "p1"})
		require.Equal(t, http.StatusNoContent, w.Code)
		w = do(t, r, http.MethodPut, "/cart/payment", gin.H{
			"method": "Cash", "cashTendered": 200,
		})
		require.Equal(t, http.StatusNoContent, w.Code)

		w = do(t, r, http.MethodPost, "/checkout", nil)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var receipt receiptDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &receipt))
		assert.Equal(t, "ord-7", receipt.OrderID)
		assert.True(t, receipt.Total.Equal(dec("112")))
		assert.True(t, cart.IsEmpty())
	})
}

// A polling UI keeps refreshing the catalog and cart while a checkout is in
// flight; the commit on success must not race those reads. Run with -race.
func TestDisplayReadsDuringCheckout(t *testing.T) {
	orders := &stubOrders{started: make(chan struct{}), release: make(chan struct{})}
	r, cart := newTestServer(t, orders)

	w := do(t, r, http.MethodPost, "/cart/lines", gin.H{"itemId": "p1"})
	require.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, r, http.MethodPut, "/cart/payment", gin.H{
		"method": "Cash", "cashTendered": 200,
	})
	require.Equal(t, http.StatusNoContent, w.Code)

	checkoutDone := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		checkoutDone <- do(t, r, http.MethodPost, "/checkout", nil)
	}()
	<-orders.started

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/catalog", nil).Code)
				assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/cart", nil).Code)
			}
		}()
	}

	// Let the pollers overlap the submission, then the commit itself.
	time.Sleep(20 * time.Millisecond)
	close(orders.release)

	w = <-checkoutDone
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	close(stop)
	wg.Wait()
	assert.True(t, cart.IsEmpty())
}

func TestShiftOverHTTP(t *testing.T) {
	r, _ := newTestServer(t, &stubOrders{})

	w := do(t, r, http.MethodGet, "/shift", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var shift shiftResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shift))
	assert.Equal(t, "active", shift.Status)

	w = do(t, r, http.MethodPost, "/shift/resume", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "INVALID_SHIFT_TRANSITION", errCode(t, w))

	w = do(t, r, http.MethodPost, "/shift/pause", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, r, http.MethodPost, "/shift/end", gin.H{
		"totalSales": 4200, "totalOrders": 17, "cash": 3000, "gcash": 1200,
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}
