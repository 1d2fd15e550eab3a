// Package upstream is the Token Flex API client. Every call goes through
// RetryingRequest, which backs off exponentially on 429 responses.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/quartz"

	"github.com/j-veylop/tokenflex-dashboard/internal/logger"
	"github.com/j-veylop/tokenflex-dashboard/internal/metrics"
	"github.com/j-veylop/tokenflex-dashboard/internal/models"
)

const (
	// DefaultMaxAttempts is the attempt budget of a single request.
	DefaultMaxAttempts = 3

	// DefaultBaseBackoff is the first 429 wait; it doubles per attempt.
	DefaultBaseBackoff = time.Second

	// NoBackoff disables 429 waits.
	NoBackoff = time.Duration(-1)

	maxResponseBytes = 10 << 20
)

// Operation names used for logging and metrics.
const (
	OpContracts = "contracts"
	OpSubmit    = "submit"
	OpPoll      = "poll"
)

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	HTTPClient  *http.Client
	Clock       quartz.Clock
	Metrics     *metrics.Metrics
	BaseURL     string
	MaxAttempts int
	BaseBackoff time.Duration
}

// Client talks to the Token Flex API.
type Client struct {
	httpClient  *http.Client
	clock       quartz.Clock
	metrics     *metrics.Metrics
	baseURL     string
	maxAttempts int
	baseBackoff time.Duration
}

// New creates a Client.
func New(opts Options) *Client {
	c := &Client{
		httpClient:  opts.HTTPClient,
		clock:       opts.Clock,
		metrics:     opts.Metrics,
		baseURL:     opts.BaseURL,
		maxAttempts: opts.MaxAttempts,
		baseBackoff: opts.BaseBackoff,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if c.clock == nil {
		c.clock = quartz.NewReal()
	}
	if c.maxAttempts <= 0 {
		c.maxAttempts = DefaultMaxAttempts
	}
	switch {
	case opts.BaseBackoff < 0:
		c.baseBackoff = 0
	case opts.BaseBackoff == 0:
		c.baseBackoff = DefaultBaseBackoff
	}
	return c
}

// Clock returns the clock used for waits.
func (c *Client) Clock() quartz.Clock {
	return c.clock
}

// Request describes one upstream call. Body is resent on every attempt.
type Request struct {
	Method    string
	URL       string
	Token     string
	Operation string
	Body      []byte
}

// RetryingRequest performs req, decoding a successful JSON body into out.
//
// A 429 response waits 2^attempt times the base backoff before the next
// attempt. A network failure is retried immediately. Any other non-2xx
// status fails at once with a *RejectedError. When the attempt budget runs
// out the error wraps ErrRetriesExhausted and the last cause.
func (c *Client) RetryingRequest(ctx context.Context, req Request, out any) error {
	log := logger.With("operation", req.Operation, "method", req.Method, "url", req.URL)

	var lastErr error
	for attempt := range c.maxAttempts {
		status, body, err := c.do(ctx, req)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			c.metrics.ObserveAttempt(req.Operation, metrics.OutcomeNetwork)
			log.Error("error in API request", "attempt", attempt+1, "error", err)
			lastErr = err
			continue

		case status >= 200 && status < 300:
			c.metrics.ObserveAttempt(req.Operation, metrics.OutcomeSuccess)
			if out == nil || len(bytes.TrimSpace(body)) == 0 {
				return nil
			}
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("failed to parse %s response: %w", req.Operation, err)
			}
			return nil

		case status == http.StatusTooManyRequests:
			c.metrics.ObserveAttempt(req.Operation, metrics.OutcomeRateLimited)
			lastErr = ErrRateLimited
			if attempt == c.maxAttempts-1 {
				continue
			}
			wait := c.backoff(attempt)
			log.Warn("rate limit hit, retrying", "attempt", attempt+1, "backoff", wait)
			if err := c.wait(ctx, wait); err != nil {
				return err
			}
			c.metrics.ObserveBackoff(wait)

		default:
			c.metrics.ObserveAttempt(req.Operation, metrics.OutcomeRejected)
			rejected := newRejectedError(status, http.StatusText(status), body)
			log.Error("API error", "status", status, "error", rejected)
			return rejected
		}
	}

	return fmt.Errorf("%w (%d attempts): %w", ErrRetriesExhausted, c.maxAttempts, lastErr)
}

// backoff returns the wait after the given zero-based attempt.
func (c *Client) backoff(attempt int) time.Duration {
	return c.baseBackoff << attempt
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	timer := c.clock.NewTimer(d, "upstream", "backoff")
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) do(ctx context.Context, req Request) (int, []byte, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// ListContracts returns the contracts visible to the token holder.
func (c *Client) ListContracts(ctx context.Context, token string) ([]models.Contract, error) {
	var contracts []models.Contract
	err := c.RetryingRequest(ctx, Request{
		Method:    http.MethodGet,
		URL:       c.baseURL + "/contract",
		Token:     token,
		Operation: OpContracts,
	}, &contracts)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	return contracts, nil
}

// submitResponse is the body of a successful query submission.
type submitResponse struct {
	ID string `json:"id"`
}

// SubmitQuery submits spec for accountID and returns the assigned query.
func (c *Client) SubmitQuery(ctx context.Context, token, accountID string, spec models.QuerySpec) (models.SubmittedQuery, error) {
	payload, err := json.Marshal(spec)
	if err != nil {
		return models.SubmittedQuery{}, fmt.Errorf("failed to encode query: %w", err)
	}

	var resp submitResponse
	err = c.RetryingRequest(ctx, Request{
		Method:    http.MethodPost,
		URL:       c.usageURL(accountID),
		Token:     token,
		Operation: OpSubmit,
		Body:      payload,
	}, &resp)
	if err != nil {
		return models.SubmittedQuery{}, err
	}
	if resp.ID == "" {
		return models.SubmittedQuery{}, errors.New("submission response carried no query id")
	}

	return models.SubmittedQuery{
		Spec:      spec.Clone(),
		AccountID: accountID,
		ID:        resp.ID,
	}, nil
}

// GetQuery fetches the current state of a submitted query.
func (c *Client) GetQuery(ctx context.Context, token string, q models.SubmittedQuery) (models.QueryResult, error) {
	var result models.QueryResult
	err := c.RetryingRequest(ctx, Request{
		Method:    http.MethodGet,
		URL:       c.usageURL(q.AccountID) + "/" + url.PathEscape(q.ID) + "?offset=0&limit=25",
		Token:     token,
		Operation: OpPoll,
	}, &result)
	if err != nil {
		return models.QueryResult{}, err
	}
	if result.ID == "" {
		result.ID = q.ID
	}
	return result, nil
}

func (c *Client) usageURL(accountID string) string {
	return c.baseURL + "/usage/" + url.PathEscape(accountID) + "/query"
}
