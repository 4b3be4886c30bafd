package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fenanpay/commerce-bridge/internal/payment"
)

func intentRequest() payment.IntentRequest {
	return payment.IntentRequest{
		MerchantID:    "merchant-1",
		OrderRef:      "42deadbeef",
		Amount:        "19.99",
		Currency:      "USD",
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "+10000000000",
		SuccessURL:    "https://shop.example.com/checkout/order-received/42",
		FailureURL:    "https://shop.example.com/checkout?fenanpay_failed=1",
		NotifyURL:     "https://shop.example.com/webhooks/fenanpay",
	}
}

func TestCreateIntentSuccess(t *testing.T) {
	var got struct {
		MerchantID string `json:"merchantId"`
		OrderID    string `json:"orderId"`
		Amount     string `json:"amount"`
		Currency   string `json:"currency"`
		Customer   struct {
			Email string `json:"email"`
			Phone string `json:"phone"`
			Name  string `json:"name"`
		} `json:"customer"`
		NotifyURL string `json:"notifyUrl"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/api/v1/payment/intent", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "key", user)
		require.Equal(t, "secret", pass)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://pay.example/x"}`))
	}))
	t.Cleanup(srv.Close)

	c := &payment.Client{BaseURL: srv.URL, APIKey: "key", APISecret: "secret", HTTP: srv.Client()}
	url, err := c.CreateIntent(context.Background(), intentRequest())
	require.NoError(t, err)
	require.Equal(t, "https://pay.example/x", url)

	require.Equal(t, "merchant-1", got.MerchantID)
	require.Equal(t, "42deadbeef", got.OrderID)
	require.Equal(t, "19.99", got.Amount)
	require.Equal(t, "USD", got.Currency)
	require.Equal(t, "ada@example.com", got.Customer.Email)
	require.Equal(t, "Ada Lovelace", got.Customer.Name)
	require.Equal(t, "https://shop.example.com/webhooks/fenanpay", got.NotifyURL)
}

func TestCreateIntentServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("oops"))
	}))
	t.Cleanup(srv.Close)

	c := &payment.Client{BaseURL: srv.URL, APIKey: "key", APISecret: "secret", HTTP: srv.Client()}
	_, err := c.CreateIntent(context.Background(), intentRequest())
	require.ErrorIs(t, err, payment.ErrUnexpectedResponse)

	var respErr *payment.ResponseError
	require.ErrorAs(t, err, &respErr)
	require.Equal(t, http.StatusInternalServerError, respErr.Status)
	require.Equal(t, "oops", respErr.Body)
}

func TestCreateIntentMissingURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"created"}`))
	}))
	t.Cleanup(srv.Close)

	c := &payment.Client{BaseURL: srv.URL, APIKey: "key", APISecret: "secret", HTTP: srv.Client()}
	_, err := c.CreateIntent(context.Background(), intentRequest())
	require.ErrorIs(t, err, payment.ErrUnexpectedResponse)
}

func TestCreateIntentNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := &payment.Client{
		BaseURL:   srv.URL,
		APIKey:    "key",
		APISecret: "secret",
		HTTP:      &http.Client{Timeout: time.Second},
	}
	_, err := c.CreateIntent(context.Background(), intentRequest())
	require.ErrorIs(t, err, payment.ErrNetwork)
}
