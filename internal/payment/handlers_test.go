package payment_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/fenanpay/commerce-bridge/internal/order"
	"github.com/fenanpay/commerce-bridge/internal/payment"
)

func payRouter(store order.Store, providerURL string) *chi.Mux {
	cart := &fakeCart{}
	svc := &payment.Service{
		Store:      store,
		Client:     &payment.Client{BaseURL: providerURL, APIKey: "key", APISecret: "secret", HTTP: http.DefaultClient},
		Cart:       cart,
		MerchantID: "merchant-1",
		NotifyURL:  "https://shop.example.com/webhooks/fenanpay",
	}
	h := &payment.Handler{Svc: svc, Validate: validator.New()}
	r := chi.NewRouter()
	r.Post("/api/v1/orders/{orderId}/pay", h.Pay)
	return r
}

func postPay(t *testing.T, r http.Handler, orderID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+orderID+"/pay", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

func TestPayInvalidOrderID(t *testing.T) {
	r := payRouter(order.NewMemory(), "http://unused.invalid")
	for _, id := range []string{"abc", "0", "-5"} {
		rec := postPay(t, r, id, "")
		require.Equal(t, http.StatusBadRequest, rec.Code, "orderId %q", id)
		require.Equal(t, "BAD_REQUEST", errorCode(t, rec))
	}
}

func TestPayOrderNotFound(t *testing.T) {
	r := payRouter(order.NewMemory(), "http://unused.invalid")
	rec := postPay(t, r, "42", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "ORDER_NOT_FOUND", errorCode(t, rec))
}

func TestPayReturnsRedirect(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"url":"https://pay.example/x"}`))
	}))
	t.Cleanup(srv.Close)

	r := payRouter(seededStore(), srv.URL)
	rec := postPay(t, r, "42", `{"cartSession":"sess-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		RedirectURL string `json:"redirectUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "https://pay.example/x", resp.RedirectURL)
}

func TestPayProviderErrorsMapToBadGateway(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("oops"))
	}))
	t.Cleanup(srv.Close)

	r := payRouter(seededStore(), srv.URL)
	rec := postPay(t, r, "42", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "PROVIDER_ERROR", errorCode(t, rec))

	down := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	down.Close()

	r = payRouter(seededStore(), down.URL)
	rec = postPay(t, r, "42", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "PROVIDER_UNREACHABLE", errorCode(t, rec))
}
