package api

// PRINT SHOP CRM CLIENT

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// QuoteRequest is the order payload the print shop CRM expects for a
// saddle-stitched brochure job.
type QuoteRequest struct {
	UserID     int64   `json:"user_id"`
	Pages      int     `json:"pages"`
	ColorPages string  `json:"color_pages"`
	Copies     int     `json:"copies"`
	Format     string  `json:"format"`
	TotalCost  float64 `json:"total_cost"`
	Contact    string  `json:"contact"`
}

func NewClient(baseURL, token string, logger *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Enabled reports whether a CRM endpoint is configured.
func (c *Client) Enabled() bool {
	return c.baseURL != ""
}

// SubmitQuote sends a confirmed order to the CRM, retrying transient
// failures with exponential backoff.
func (c *Client) SubmitQuote(ctx context.Context, req QuoteRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	retryPolicy := backoff.NewExponentialBackOff()
	retryPolicy.MaxElapsedTime = 1 * time.Minute
	retryPolicy.MaxInterval = 10 * time.Second

	return backoff.RetryNotify(
		func() error {
			return c.postQuote(ctx, body)
		},
		backoff.WithContext(retryPolicy, ctx),
		func(err error, duration time.Duration) {
			c.logger.Warn("CRM submit failed, retrying...",
				zap.Error(err),
				zap.Duration("next_attempt_in", duration))
		},
	)
}

func (c *Client) postQuote(ctx context.Context, body []byte) error {
	httpReq, err := http.NewRequestWithContext(
		ctx,
		"POST",
		fmt.Sprintf("%s/api/quotes", c.baseURL),
		bytes.NewReader(body),
	)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("create request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}
