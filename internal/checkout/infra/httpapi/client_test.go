package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	cartdomain "github.com/dwikikusuma/resto-pos/internal/cart/domain"
	"github.com/dwikikusuma/resto-pos/internal/checkout/app"
	"github.com/dwikikusuma/resto-pos/internal/checkout/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() domain.OrderRequest {
	return domain.OrderRequest{
		Items: []domain.OrderLine{
			{ItemID: "p1", Quantity: 2},
			{ItemID: "p2", Quantity: 1, Option: "Large"},
		},
		PaymentMethod: cartdomain.PaymentCash,
		OrderType:     cartdomain.OrderDineIn,
		Tip:           decimal.NewFromInt(20),
		CashTendered:  decimal.NewFromInt(350),
	}
}

func TestSubmitOrder(t *testing.T) {
	var got map[string]any
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/orders", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"ord-9","createdAt":"2025-06-02T08:30:00Z"}`))
	}))
	defer backend.Close()

	c := NewClient(backend.URL, "tok", nil)
	conf, err := c.SubmitOrder(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, "ord-9", conf.OrderID)
	assert.Equal(t, "Cash", got["paymentMethod"])
	assert.Nil(t, got["gcashCode"], "no wallet ref for cash")

	items, ok := got["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Nil(t, first["option"], "no option serialized as null")
	second := items[1].(map[string]any)
	assert.Equal(t, "Large", second["option"])
}

func TestSubmitOrderConflict(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Pork Sisig is out of stock"}`))
	}))
	defer backend.Close()

	c := NewClient(backend.URL, "tok", nil)
	_, err := c.SubmitOrder(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, app.ErrBackendRejected)
	assert.Contains(t, err.Error(), "out of stock")
}
