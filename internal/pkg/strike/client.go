package strike

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/ivanacostarubio/strike-slack/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.strike.me"

const invoiceDescription = "Slack Tip"

// APIError carries the HTTP status and response body of a failed Strike call
// so the orchestrator can decide how to react instead of the error vanishing
// into a log line.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("strike: api error status=%d body=%s", e.StatusCode, e.Body)
}

// Client talks to the Strike REST API. Each invoice request is tagged with a
// freshly generated correlation id; Strike uses it for deduplication on its
// side, so a token is never reused across calls.
type Client struct {
	http *resty.Client
}

// NewClientFromEnv builds a client from STRIKE_API_KEY / STRIKE_API_BASE.
func NewClientFromEnv() (*Client, error) {
	apiKey := strings.TrimSpace(env.GetEnv("STRIKE_API_KEY", ""))
	if apiKey == "" {
		return nil, errors.New("STRIKE_API_KEY is not configured")
	}
	base := strings.TrimRight(env.GetEnv("STRIKE_API_BASE", defaultAPIBaseURL), "/")

	return NewClient(base, apiKey), nil
}

// NewClient builds a client against an explicit base URL. Used by tests to
// point the client at a local server.
func NewClient(baseURL, apiKey string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(apiKey).
		SetHeader("Accept", "application/json").
		SetTimeout(15 * time.Second)

	return &Client{http: http}
}

type invoiceAmount struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

type invoiceRequest struct {
	CorrelationID string        `json:"correlationId"`
	Description   string        `json:"description"`
	Amount        invoiceAmount `json:"amount"`
}

type invoiceResponse struct {
	InvoiceID string `json:"invoiceId"`
}

type quoteResponse struct {
	LnInvoice string `json:"lnInvoice"`
}

// CreateInvoice creates a USD invoice issued to the given Strike handle and
// returns the invoice id. This is not a dry run: every call creates a real
// invoice on Strike's books, paid or not.
func (c *Client) CreateInvoice(ctx context.Context, handle, amount string) (string, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return "", errors.New("strike: handle is required")
	}
	if strings.TrimSpace(amount) == "" {
		return "", errors.New("strike: amount is required")
	}

	body := invoiceRequest{
		CorrelationID: uuid.New().String(),
		Description:   invoiceDescription,
		Amount: invoiceAmount{
			Currency: "USD",
			Amount:   amount,
		},
	}

	var out invoiceResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&out).
		Post("/v1/invoices/handle/" + handle)
	if err != nil {
		return "", fmt.Errorf("strike: create invoice for %s: %w", handle, err)
	}
	if resp.IsError() {
		return "", &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	if out.InvoiceID == "" {
		return "", errors.New("strike: create invoice returned empty invoiceId")
	}

	return out.InvoiceID, nil
}

// CreateQuote exchanges an unexpired invoice id for a Lightning payment
// request. The quote's expiry is enforced by Strike, not tracked here.
func (c *Client) CreateQuote(ctx context.Context, invoiceID string) (string, error) {
	invoiceID = strings.TrimSpace(invoiceID)
	if invoiceID == "" {
		return "", errors.New("strike: invoice id is required")
	}

	var out quoteResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Length", "0").
		SetResult(&out).
		Post("/v1/invoices/" + invoiceID + "/quote")
	if err != nil {
		return "", fmt.Errorf("strike: quote invoice %s: %w", invoiceID, err)
	}
	if resp.IsError() {
		return "", &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	if out.LnInvoice == "" {
		return "", errors.New("strike: quote returned empty lnInvoice")
	}

	return out.LnInvoice, nil
}
