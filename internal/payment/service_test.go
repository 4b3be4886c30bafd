package payment_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fenanpay/commerce-bridge/internal/order"
	"github.com/fenanpay/commerce-bridge/internal/payment"
)

type fakeCart struct {
	emptied []string
}

func (c *fakeCart) EmptyCart(_ context.Context, sessionID string) error {
	c.emptied = append(c.emptied, sessionID)
	return nil
}

func (c *fakeCart) ReturnURL(orderID int64) string {
	return "https://shop.example.com/checkout/order-received/42"
}

func (c *fakeCart) CheckoutURL(params url.Values) string {
	return "https://shop.example.com/checkout?" + params.Encode()
}

func newService(t *testing.T, store order.Store, providerURL string) (*payment.Service, *fakeCart) {
	t.Helper()
	cart := &fakeCart{}
	return &payment.Service{
		Store:      store,
		Client:     &payment.Client{BaseURL: providerURL, APIKey: "key", APISecret: "secret", HTTP: &http.Client{Timeout: time.Second}},
		Cart:       cart,
		MerchantID: "merchant-1",
		NotifyURL:  "https://shop.example.com/webhooks/fenanpay",
	}, cart
}

func TestCreateIntentOrderNotFound(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	t.Cleanup(srv.Close)

	svc, cart := newService(t, order.NewMemory(), srv.URL)
	_, err := svc.CreateIntent(context.Background(), 42, "sess-1")
	require.ErrorIs(t, err, payment.ErrOrderNotFound)
	require.Zero(t, hits, "provider must not be contacted for unknown orders")
	require.Empty(t, cart.emptied)
}

func TestCreateIntentHappyPath(t *testing.T) {
	var sentBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf, _ := io.ReadAll(r.Body)
		sentBody = string(buf)
		_, _ = w.Write([]byte(`{"url":"https://pay.example/x"}`))
	}))
	t.Cleanup(srv.Close)

	store := seededStore()
	svc, cart := newService(t, store, srv.URL)

	redirect, err := svc.CreateIntent(context.Background(), 42, "sess-1")
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/x", redirect)

	o, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, order.StatusPendingPayment, o.Status)

	notes := store.Notes(42)
	require.Len(t, notes, 1)
	require.Equal(t, "Awaiting FenanPay payment.", notes[0].Text)

	require.Equal(t, []string{"sess-1"}, cart.emptied)

	// reference embeds the order id, amount is the fixed 2-decimal form
	require.Contains(t, sentBody, `"orderId":"42`)
	require.Contains(t, sentBody, `"amount":"19.99"`)
	require.Contains(t, sentBody, `"currency":"USD"`)
}

func TestCreateIntentUnexpectedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("oops"))
	}))
	t.Cleanup(srv.Close)

	store := seededStore()
	svc, cart := newService(t, store, srv.URL)

	_, err := svc.CreateIntent(context.Background(), 42, "sess-1")
	require.ErrorIs(t, err, payment.ErrUnexpectedResponse)

	o, getErr := store.Get(context.Background(), 42)
	require.NoError(t, getErr)
	require.Equal(t, order.StatusPendingPayment, o.Status, "order stays awaiting payment")

	notes := store.Notes(42)
	require.Len(t, notes, 2)
	require.True(t, strings.Contains(notes[1].Text, "oops"), "raw provider body recorded: %q", notes[1].Text)

	require.Empty(t, cart.emptied, "cart is kept when checkout fails")
}

func TestCreateIntentNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	store := seededStore()
	svc, cart := newService(t, store, srv.URL)

	_, err := svc.CreateIntent(context.Background(), 42, "sess-1")
	require.ErrorIs(t, err, payment.ErrNetwork)

	o, getErr := store.Get(context.Background(), 42)
	require.NoError(t, getErr)
	require.Equal(t, order.StatusPendingPayment, o.Status)

	notes := store.Notes(42)
	require.Len(t, notes, 2)
	require.True(t, strings.HasPrefix(notes[1].Text, "FenanPay request error:"), "note %q", notes[1].Text)

	require.Empty(t, cart.emptied)
}

func seededStore() *order.Memory {
	store := order.NewMemory()
	store.Put(order.Order{
		ID:         42,
		TotalCents: 1999,
		Currency:   "USD",
		Billing:    order.Billing{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+10000000000"},
		Status:     order.StatusPending,
	})
	return store
}
