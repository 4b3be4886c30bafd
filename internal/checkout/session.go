package checkout

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	redis "github.com/redis/go-redis/v9"
)

// Session is the storefront checkout collaborator: cart contents live in
// Redis keyed by a session id, and the success/failure URLs shown to the
// shopper derive from the storefront's public base URL.
type Session struct {
	R             *redis.Client
	PublicBaseURL string
}

func cartKey(sessionID string) string {
	return "cart:" + sessionID
}

// EmptyCart removes the cart for the given session. Called once a payment
// intent has been created and the shopper is being redirected to the provider.
func (s Session) EmptyCart(ctx context.Context, sessionID string) error {
	id := strings.TrimSpace(sessionID)
	if id == "" || s.R == nil {
		return nil
	}
	if err := s.R.Del(ctx, cartKey(id)).Err(); err != nil {
		return fmt.Errorf("empty cart %s: %w", id, err)
	}
	return nil
}

// ReturnURL is the storefront thank-you page the provider redirects to after
// a successful payment.
func (s Session) ReturnURL(orderID int64) string {
	return s.base() + "/checkout/order-received/" + strconv.FormatInt(orderID, 10)
}

// CheckoutURL is the storefront checkout page, optionally annotated with
// extra query parameters (e.g. a payment-failed flag).
func (s Session) CheckoutURL(params url.Values) string {
	u := s.base() + "/checkout"
	if len(params) == 0 {
		return u
	}
	return u + "?" + params.Encode()
}

func (s Session) base() string {
	return strings.TrimRight(s.PublicBaseURL, "/")
}
