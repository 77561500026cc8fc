// Package gateway is the HTTP client for the remote data gateway, which owns
// all persistent state: products, users, carts and orders. Every read the
// storefront renders and every write it performs goes through this client.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/kaspervae/verdandi/internal/domain"
	"github.com/sethvargo/go-retry"
)

const (
	defaultTimeout  = 10 * time.Second
	retryBaseDelay  = 200 * time.Millisecond
	maxRetries      = 3
	maxErrorBodyLen = 512
)

// Client talks JSON over HTTP to the data gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}
}

// get performs an idempotent GET with bounded exponential backoff. Transport
// errors and 5xx responses are retried; 4xx responses are not.
func (c *Client) get(ctx context.Context, op, path string, out interface{}) error {
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(retryBaseDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := c.do(ctx, op, http.MethodGet, path, nil, out)
		if err != nil && retryable(err) {
			c.logger.Warn("gateway request failed, retrying",
				slog.String("op", op),
				slog.String("error", err.Error()))
			return retry.RetryableError(err)
		}
		return err
	})
}

// do performs one request and decodes the JSON response into out (when out is
// non-nil). Non-2xx statuses are mapped to domain error codes: 404 becomes
// ENOTFOUND, everything else ENETWORK.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return domain.Internal(err, op, "failed to marshal request body")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return domain.Internal(err, op, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Network(err, op, "gateway unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.NotFound(op, "resource", path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return &domain.Error{
			Code:    domain.ENETWORK,
			Message: fmt.Sprintf("gateway returned %d: %s", resp.StatusCode, snippet),
			Op:      op,
			Err:     &statusError{code: resp.StatusCode},
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Network(err, op, "failed to decode gateway response")
	}
	return nil
}

// statusError preserves the HTTP status behind a domain network error so the
// retry loop can tell server faults from client mistakes.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("status %d", e.code)
}

// retryable reports whether an error is worth another attempt: transport
// failures and 5xx responses. Not-found and other client errors will not
// improve on retry.
func retryable(err error) bool {
	if domain.ErrorCode(err) != domain.ENETWORK {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.code >= 500
	}
	return true
}
