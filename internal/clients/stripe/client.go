package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/shadownav-backend/internal/platform/logger"
)

// CheckoutSession is the subset of Stripe's checkout session object the
// service reads: creation returns id+url, webhook verification reads
// payment_status, client_reference_id and line item prices.
type CheckoutSession struct {
	ID                string `json:"id"`
	URL               string `json:"url"`
	PaymentStatus     string `json:"payment_status"`
	ClientReferenceID string `json:"client_reference_id"`
	LineItems         struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"line_items"`
}

// HasPrice reports whether any line item carries the given price id.
func (s *CheckoutSession) HasPrice(priceID string) bool {
	for _, item := range s.LineItems.Data {
		if item.Price.ID == priceID {
			return true
		}
	}
	return false
}

type Client interface {
	PriceID() string
	CreateCheckoutSession(ctx context.Context, memberID string) (*CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	secretKey  string
	priceID    string
	mode       string
	successURL string
	cancelURL  string
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	secretKey := os.Getenv("STRIPE_SECRET_KEY")
	if secretKey == "" {
		return nil, fmt.Errorf("missing STRIPE_SECRET_KEY")
	}
	priceID := os.Getenv("STRIPE_PRICE_ID")
	if priceID == "" {
		return nil, fmt.Errorf("missing STRIPE_PRICE_ID")
	}
	successURL := os.Getenv("CHECKOUT_SUCCESS_URL")
	if successURL == "" {
		return nil, fmt.Errorf("missing CHECKOUT_SUCCESS_URL")
	}
	cancelURL := os.Getenv("CHECKOUT_CANCEL_URL")
	if cancelURL == "" {
		return nil, fmt.Errorf("missing CHECKOUT_CANCEL_URL")
	}

	mode := strings.TrimSpace(os.Getenv("STRIPE_CHECKOUT_MODE"))
	if mode == "" {
		mode = "payment"
	}
	if mode != "payment" && mode != "subscription" {
		return nil, fmt.Errorf("invalid STRIPE_CHECKOUT_MODE %q", mode)
	}

	baseURL := strings.TrimSpace(os.Getenv("STRIPE_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.stripe.com"
	}

	timeoutMs := 10000
	if v := os.Getenv("EXTERNAL_API_TIMEOUT_MS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutMs = parsed
		}
	}

	return &client{
		log:        log.With("client", "StripeClient"),
		baseURL:    baseURL,
		secretKey:  secretKey,
		priceID:    priceID,
		mode:       mode,
		successURL: successURL,
		cancelURL:  cancelURL,
		httpClient: &http.Client{Timeout: time.Duration(timeoutMs) * time.Millisecond},
	}, nil
}

type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("stripe http %d: %s", e.StatusCode, e.Body)
}

func (c *client) PriceID() string { return c.priceID }

func (c *client) CreateCheckoutSession(ctx context.Context, memberID string) (*CheckoutSession, error) {
	params := url.Values{}
	params.Set("mode", c.mode)
	params.Set("success_url", c.successURL)
	params.Set("cancel_url", c.cancelURL)
	params.Set("line_items[0][price]", c.priceID)
	params.Set("line_items[0][quantity]", "1")
	// Webhook side resolves the payer from client_reference_id.
	params.Set("client_reference_id", memberID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions", strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	return c.decodeSession(req)
}

func (c *client) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("missing session id")
	}
	u := fmt.Sprintf("%s/v1/checkout/sessions/%s?expand[]=line_items",
		c.baseURL, url.PathEscape(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	return c.decodeSession(req)
}

func (c *client) decodeSession(req *http.Request) (*CheckoutSession, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	var session CheckoutSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("stripe decode error: %w", err)
	}
	return &session, nil
}
