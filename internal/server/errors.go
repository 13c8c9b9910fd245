package server

import (
	"errors"
	"log/slog"
	"net/http"

	cartdomain "github.com/dwikikusuma/resto-pos/internal/cart/domain"
	catalogapp "github.com/dwikikusuma/resto-pos/internal/catalog/app"
	checkoutapp "github.com/dwikikusuma/resto-pos/internal/checkout/app"
	shiftapp "github.com/dwikikusuma/resto-pos/internal/shift/app"
	shiftdomain "github.com/dwikikusuma/resto-pos/internal/shift/domain"
	"github.com/gin-gonic/gin"
)

// mapError turns engine sentinels into a stable (status, code) pair. Codes
// are part of the UI contract; renaming one is a breaking change.
func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, cartdomain.ErrOutOfStock):
		return http.StatusConflict, "OUT_OF_STOCK"
	case errors.Is(err, cartdomain.ErrInsufficientStock):
		return http.StatusConflict, "INSUFFICIENT_STOCK"
	case errors.Is(err, cartdomain.ErrOptionRequired):
		return http.StatusBadRequest, "OPTION_REQUIRED"
	case errors.Is(err, cartdomain.ErrUnknownOption),
		errors.Is(err, cartdomain.ErrInvalidAmount),
		errors.Is(err, cartdomain.ErrUnknownMethod),
		errors.Is(err, cartdomain.ErrUnknownOrderType):
		return http.StatusBadRequest, "INVALID_INPUT"

	case errors.Is(err, catalogapp.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE"
	case errors.Is(err, catalogapp.ErrNotLoaded):
		return http.StatusConflict, "CATALOG_NOT_LOADED"
	case errors.Is(err, catalogapp.ErrItemNotFound):
		return http.StatusNotFound, "NOT_FOUND"

	case errors.Is(err, checkoutapp.ErrEmptyCart):
		return http.StatusBadRequest, "EMPTY_CART"
	case errors.Is(err, checkoutapp.ErrInsufficientPayment):
		return http.StatusBadRequest, "INSUFFICIENT_PAYMENT"
	case errors.Is(err, checkoutapp.ErrMissingPaymentReference):
		return http.StatusBadRequest, "MISSING_PAYMENT_REFERENCE"
	case errors.Is(err, checkoutapp.ErrCheckoutInProgress):
		return http.StatusConflict, "CHECKOUT_IN_PROGRESS"
	case errors.Is(err, checkoutapp.ErrAttemptSuperseded):
		return http.StatusConflict, "ATTEMPT_SUPERSEDED"
	case errors.Is(err, checkoutapp.ErrBackendRejected):
		return http.StatusConflict, "BACKEND_REJECTED"

	case errors.Is(err, shiftdomain.ErrInvalidTransition):
		return http.StatusConflict, "INVALID_SHIFT_TRANSITION"
	case errors.Is(err, shiftdomain.ErrNotRunning):
		return http.StatusConflict, "SHIFT_NOT_RUNNING"
	case errors.Is(err, shiftapp.ErrNoShift):
		return http.StatusNotFound, "NO_SHIFT"

	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status, code := mapError(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", slog.String("path", c.FullPath()), slog.Any("err", err))
	}
	c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "INVALID_INPUT", Message: err.Error()})
}
