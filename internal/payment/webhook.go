package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fenanpay/commerce-bridge/internal/common"
	"github.com/fenanpay/commerce-bridge/internal/obs"
	"github.com/fenanpay/commerce-bridge/internal/order"
)

// SignatureHeader carries the hex HMAC-SHA256 digest of the raw body.
const SignatureHeader = "X-Fenanpay-Signature"

// Webhook reconciles FenanPay payment notifications into order state. It is
// exposed on a public, unauthenticated endpoint: every inbound payload is
// treated as hostile until the signature check passes.
//
// When Secret is empty, signature verification is skipped entirely. That is a
// deliberate deployment choice (some installations rely on network-level
// allowlisting instead) and must not be hardened away here.
type Webhook struct {
	Store  order.Store
	Secret string
	Logger zerolog.Logger
}

// Handle processes one notification. Unrecognisable order references are
// acknowledged with 200 rather than rejected: erroring would only make the
// provider retry a payload we will never be able to resolve.
func (h Webhook) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.finish(w, http.StatusBadRequest, "Invalid payload", "unreadable_body")
		return
	}

	if h.Secret != "" {
		sig := strings.TrimSpace(r.Header.Get(SignatureHeader))
		if sig == "" {
			h.finish(w, http.StatusBadRequest, "Missing signature", "missing_signature")
			return
		}
		mac := hmac.New(sha256.New, []byte(h.Secret))
		mac.Write(body)
		computed := hex.EncodeToString(mac.Sum(nil))
		if !hmac.Equal([]byte(computed), []byte(sig)) {
			h.finish(w, http.StatusForbidden, "Invalid signature", "invalid_signature")
			return
		}
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil || payload == nil {
		h.finish(w, http.StatusBadRequest, "Invalid payload", "invalid_payload")
		return
	}

	ref, _ := payload["orderId"].(string)
	orderID := ExtractOrderID(ref)
	if orderID <= 0 {
		h.finish(w, http.StatusOK, "ok", "unresolved_reference")
		return
	}

	ord, err := h.Store.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			h.finish(w, http.StatusOK, "order not found", "order_not_found")
			return
		}
		h.Logger.Error().Err(err).Int64("order_id", orderID).Msg("webhook order lookup failed")
		h.finish(w, http.StatusInternalServerError, "error", "store_error")
		return
	}

	rawStatus, _ := payload["status"].(string)
	status := strings.ToUpper(rawStatus)

	var result string
	switch status {
	case "COMPLETED", "PAID":
		err = h.Store.MarkPaymentComplete(ctx, ord.ID)
		if err == nil {
			err = h.Store.AppendNote(ctx, ord.ID, "FenanPay payment completed (webhook).")
		}
		result = "completed"
	case "FAILED", "CANCELLED":
		err = h.Store.UpdateStatus(ctx, ord.ID, order.StatusFailed, "FenanPay reported payment failure.")
		if err == nil {
			err = h.Store.AppendNote(ctx, ord.ID, "FenanPay payment failed or cancelled (webhook).")
		}
		result = "failed"
	case "PENDING":
		err = h.Store.UpdateStatus(ctx, ord.ID, order.StatusOnHold, "FenanPay reported payment pending.")
		if err == nil {
			err = h.Store.AppendNote(ctx, ord.ID, "FenanPay payment pending (webhook).")
		}
		result = "pending"
	default:
		// Unknown statuses are acknowledged without touching the order.
		result = "ignored_status"
	}
	if err != nil {
		h.Logger.Error().Err(err).Int64("order_id", ord.ID).Str("status", status).Msg("webhook transition failed")
		h.finish(w, http.StatusInternalServerError, "error", "store_error")
		return
	}

	h.finish(w, http.StatusOK, "ok", result)
}

func (h Webhook) finish(w http.ResponseWriter, status int, body, result string) {
	if obs.PaymentWebhookTotal != nil {
		obs.PaymentWebhookTotal.WithLabelValues(result).Inc()
	}
	common.Text(w, status, body)
}
