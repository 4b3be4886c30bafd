package payment

import (
	"context"
	"errors"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fenanpay/commerce-bridge/internal/obs"
	"github.com/fenanpay/commerce-bridge/internal/order"
)

// CartSession is the storefront session collaborator the intent flow needs.
type CartSession interface {
	EmptyCart(ctx context.Context, sessionID string) error
	ReturnURL(orderID int64) string
	CheckoutURL(params url.Values) string
}

// Service drives the checkout-side payment flow: it prepares the order,
// opens an intent with FenanPay and hands back the redirect target.
type Service struct {
	Store      order.Store
	Client     *Client
	Cart       CartSession
	MerchantID string
	NotifyURL  string
}

// CreateIntent opens a payment intent for the given order and returns the
// hosted payment page URL.
//
// The order moves to pending-payment before the provider is contacted, so a
// crash mid-call still leaves it visibly awaiting payment. Failures after
// that point keep the pending-payment status and record detail as order
// notes; nothing is retried here.
func (s *Service) CreateIntent(ctx context.Context, orderID int64, cartSession string) (string, error) {
	if s == nil || s.Store == nil || s.Client == nil || s.Cart == nil {
		return "", errors.New("payment service not configured")
	}
	ctx, span := otel.Tracer("payment.Service").Start(ctx, "PaymentService.CreateIntent")
	defer span.End()

	start := time.Now()
	result := "error"
	defer func() {
		span.SetAttributes(
			attribute.Int64("order.id", orderID),
			attribute.Float64("payment.intent.duration_ms", obs.DurationMillis(time.Since(start))),
			attribute.String("payment.intent.result", result),
		)
		if obs.PaymentIntentTotal != nil {
			obs.PaymentIntentTotal.WithLabelValues(result).Inc()
		}
	}()

	ord, err := s.Store.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			result = "order_not_found"
			return "", ErrOrderNotFound
		}
		return "", err
	}

	if err := s.Store.UpdateStatus(ctx, ord.ID, order.StatusPendingPayment, "Awaiting FenanPay payment."); err != nil {
		return "", err
	}

	ref, err := MakeReference(ord.ID)
	if err != nil {
		return "", err
	}

	redirect, err := s.Client.CreateIntent(ctx, IntentRequest{
		MerchantID:    s.MerchantID,
		OrderRef:      ref,
		Amount:        ord.Total(),
		Currency:      ord.Currency,
		CustomerName:  ord.Billing.Name,
		CustomerEmail: ord.Billing.Email,
		CustomerPhone: ord.Billing.Phone,
		SuccessURL:    s.Cart.ReturnURL(ord.ID),
		FailureURL:    s.Cart.CheckoutURL(url.Values{"fenanpay_failed": {"1"}}),
		NotifyURL:     s.NotifyURL,
	})
	if err != nil {
		span.RecordError(err)
		var respErr *ResponseError
		switch {
		case errors.As(err, &respErr):
			result = "unexpected_response"
			_ = s.Store.AppendNote(ctx, ord.ID, "FenanPay responded with an unexpected response: "+respErr.Body)
		case errors.Is(err, ErrNetwork):
			result = "network_error"
			_ = s.Store.AppendNote(ctx, ord.ID, "FenanPay request error: "+err.Error())
		}
		return "", err
	}

	result = "success"
	_ = s.Cart.EmptyCart(ctx, cartSession)
	return redirect, nil
}
