package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/fenanpay/commerce-bridge/internal/common"
)

// Handler exposes the storefront-facing payment endpoint.
type Handler struct {
	Svc      *Service
	Validate *validator.Validate
}

type payReq struct {
	// CartSession identifies the shopper's cart to empty once the intent
	// is created. Optional: guest flows may not carry one.
	CartSession string `json:"cartSession" validate:"omitempty,max=128"`
}

type payResp struct {
	RedirectURL string `json:"redirectUrl"`
}

// Pay creates a payment intent for the order and returns the FenanPay
// redirect URL. Shoppers only ever see a generic failure message; diagnostic
// detail lands in order notes (and logs), never in this response.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "PAYMENT_NOT_CONFIGURED", "payment handler unavailable", nil)
		return
	}
	orderID, err := strconv.ParseInt(strings.TrimSpace(chi.URLParam(r, "orderId")), 10, 64)
	if err != nil || orderID < 1 {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid orderId", nil)
		return
	}

	var req payReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body", nil)
			return
		}
	}

	redirect, err := h.Svc.CreateIntent(r.Context(), orderID, req.CartSession)
	if err != nil {
		switch {
		case errors.Is(err, ErrOrderNotFound):
			common.JSONError(w, http.StatusNotFound, "ORDER_NOT_FOUND", "order not found", nil)
		case errors.Is(err, ErrNetwork):
			common.JSONError(w, http.StatusBadGateway, "PROVIDER_UNREACHABLE", "could not contact payment provider, please try another method", nil)
		case errors.Is(err, ErrUnexpectedResponse):
			common.JSONError(w, http.StatusBadGateway, "PROVIDER_ERROR", "payment provider did not return a redirect, please try again or contact support", nil)
		default:
			common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "payment could not be started", nil)
		}
		return
	}
	common.JSON(w, http.StatusOK, payResp{RedirectURL: redirect})
}
