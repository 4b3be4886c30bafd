package payment

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// IntentRequest captures the information sent to FenanPay when opening a
// payment intent. It is built per call and never persisted.
type IntentRequest struct {
	MerchantID    string
	OrderRef      string
	Amount        string
	Currency      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	SuccessURL    string
	FailureURL    string
	NotifyURL     string
}

// Client calls the FenanPay REST API authenticated with API key and secret
// over HTTP Basic auth. The embedded http.Client bounds every call; no
// retries are attempted because intent creation sits on the shopper's
// synchronous checkout path.
type Client struct {
	BaseURL   string
	APIKey    string
	APISecret string
	HTTP      *http.Client
}

type intentPayload struct {
	MerchantID string          `json:"merchantId"`
	OrderID    string          `json:"orderId"`
	Amount     string          `json:"amount"`
	Currency   string          `json:"currency"`
	Customer   customerPayload `json:"customer"`
	SuccessURL string          `json:"successUrl"`
	FailureURL string          `json:"failureUrl"`
	NotifyURL  string          `json:"notifyUrl"`
}

type customerPayload struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
	Name  string `json:"name"`
}

// CreateIntent posts the intent and returns the hosted payment page URL.
// Transport failures map to ErrNetwork. Non-2xx statuses and 2xx responses
// without a url field map to a ResponseError carrying the raw body.
func (c *Client) CreateIntent(ctx context.Context, req IntentRequest) (string, error) {
	body, err := json.Marshal(intentPayload{
		MerchantID: req.MerchantID,
		OrderID:    req.OrderRef,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Customer: customerPayload{
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
			Name:  req.CustomerName,
		},
		SuccessURL: req.SuccessURL,
		FailureURL: req.FailureURL,
		NotifyURL:  req.NotifyURL,
	})
	if err != nil {
		return "", fmt.Errorf("marshal intent: %w", err)
	}

	endpoint := strings.TrimRight(c.BaseURL, "/") + "/v1/api/v1/payment/intent"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build intent request: %w", err)
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.APIKey + ":" + c.APISecret))
	httpReq.Header.Set("Authorization", "Basic "+auth)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	var data struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(raw, &data)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || strings.TrimSpace(data.URL) == "" {
		return "", &ResponseError{Status: resp.StatusCode, Body: string(raw)}
	}
	return data.URL, nil
}
