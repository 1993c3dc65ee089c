package cloudflare

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

	"github.com/sethvargo/go-retry"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/metrics"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

const providerName = "cloudflare"

// Client talks to the Cloudflare v4 API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	accountID  string
	httpClient *http.Client
	timeout    time.Duration
	retries    uint64
	backoff    time.Duration
}

type Option func(*Client)

// WithTimeout bounds each logical call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetries sets how many times a retryable failure is retried and the
// base delay of the exponential backoff.
func WithRetries(n int, base time.Duration) Option {
	return func(c *Client) {
		if n < 0 {
			n = 0
		}
		c.retries = uint64(n)
		c.backoff = base
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(baseURL, token, accountID string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
		accountID:  accountID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		timeout:    20 * time.Second,
		retries:    3,
		backoff:    500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// call performs one logical API call with retries, a deadline and metrics.
// A 404 is reported as model.ErrNotFound so callers can branch on absence.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, result any) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	b := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := c.once(ctx, op, method, path, query, body, result)
		if model.IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil && (errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)) {
		var pe *model.ProviderError
		if !errors.As(err, &pe) {
			err = &model.ProviderError{Provider: providerName, Op: op, Retryable: true, Err: err}
		}
	}

	metrics.ObserveProviderCall(providerName, op, start, err)
	return err
}

func (c *Client) once(ctx context.Context, op, method, path string, query url.Values, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &model.ProviderError{Provider: providerName, Op: op, Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &model.ProviderError{Provider: providerName, Op: op, StatusCode: resp.StatusCode, Retryable: true, Err: err}
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", providerName, op, model.ErrNotFound)
	}
	if resp.StatusCode >= 400 || decodeErr != nil || !env.Success {
		var cause error = env.Errors
		if decodeErr != nil || len(env.Errors) == 0 {
			cause = fmt.Errorf("%s", bytes.TrimSpace(raw))
		}
		if env.Errors.has(codeInvalidZoneID) {
			return fmt.Errorf("%s %s: %w", providerName, op, model.ErrNotFound)
		}
		return &model.ProviderError{
			Provider:   providerName,
			Op:         op,
			StatusCode: resp.StatusCode,
			Retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
			Err:        cause,
		}
	}

	if result != nil && len(env.Result) > 0 && string(env.Result) != "null" {
		if err := json.Unmarshal(env.Result, result); err != nil {
			return fmt.Errorf("decode %s result: %w", op, err)
		}
	}
	if p, ok := result.(pagedResult); ok && env.ResultInfo != nil {
		p.setResultInfo(*env.ResultInfo)
	}
	return nil
}

// Cloudflare error codes the adapter branches on.
const (
	codeZoneAlreadyExists = 1061
	codeInvalidZoneID     = 7003
)

func apiErrorsOf(err error) apiErrors {
	var ae apiErrors
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}
