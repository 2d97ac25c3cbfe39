package imgur

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ivanacostarubio/strike-slack/internal/pkg/env"
)

const defaultAPIBaseURL = "https://api.imgur.com"

// APIError carries the HTTP status and body of a failed Imgur call.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("imgur: api error status=%d body=%s", e.StatusCode, e.Body)
}

// Client uploads images anonymously to Imgur using a client id credential.
type Client struct {
	http     *resty.Client
	clientID string
}

// NewClientFromEnv builds a client from IMGUR_CLIENT_ID / IMGUR_CLIENT_SECRET.
// The secret is required by Imgur's app registration but anonymous uploads
// authenticate with the client id alone.
func NewClientFromEnv() (*Client, error) {
	clientID := strings.TrimSpace(env.GetEnv("IMGUR_CLIENT_ID", ""))
	if clientID == "" {
		return nil, errors.New("IMGUR_CLIENT_ID is not configured")
	}
	if strings.TrimSpace(env.GetEnv("IMGUR_CLIENT_SECRET", "")) == "" {
		return nil, errors.New("IMGUR_CLIENT_SECRET is not configured")
	}

	return NewClient(defaultAPIBaseURL, clientID), nil
}

// NewClient builds a client against an explicit base URL. Used by tests.
func NewClient(baseURL, clientID string) *Client {
	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(30 * time.Second)

	return &Client{http: http, clientID: clientID}
}

type uploadResponse struct {
	Data struct {
		Link string `json:"link"`
	} `json:"data"`
	Success bool `json:"success"`
}

// UploadImage uploads PNG bytes and returns the public retrieval URL. Imgur
// owns the lifecycle of the hosted image; nothing is cached or cleaned up
// locally.
func (c *Client) UploadImage(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", errors.New("imgur: image is empty")
	}

	var out uploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Client-ID "+c.clientID).
		SetFormData(map[string]string{
			"image": base64.StdEncoding.EncodeToString(image),
			"type":  "base64",
		}).
		SetResult(&out).
		Post("/3/image")
	if err != nil {
		return "", fmt.Errorf("imgur: upload: %w", err)
	}
	if resp.IsError() {
		return "", &APIError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}
	if out.Data.Link == "" {
		return "", errors.New("imgur: upload returned empty link")
	}

	return out.Data.Link, nil
}
