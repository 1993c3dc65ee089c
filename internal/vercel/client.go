package vercel

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

const providerName = "vercel"

// ErrDomainConflict is returned by AddDomain when the domain is attached to
// a different project.
var ErrDomainConflict = fmt.Errorf("domain attached to another project: %w", model.ErrConflict)

// Client talks to the Vercel REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	teamID     string
	httpClient *http.Client
	timeout    time.Duration
	retries    uint64
	backoff    time.Duration
}

type Option func(*Client)

// WithTeam scopes every call to a team.
func WithTeam(teamID string) Option {
	return func(c *Client) { c.teamID = teamID }
}

// WithTimeout bounds each logical call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

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

func NewClient(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		token:      token,
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

func (c *Client) call(ctx context.Context, op, method, path string, body, result any) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	b := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		err := c.once(ctx, op, method, path, body, result)
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

func (c *Client) once(ctx context.Context, op, method, path string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reader)
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

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", providerName, op, model.ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		var eb errorBody
		var cause error
		if json.Unmarshal(raw, &eb) == nil && eb.Error != nil {
			cause = eb.Error
		} else {
			cause = fmt.Errorf("%s", bytes.TrimSpace(raw))
		}
		return &model.ProviderError{
			Provider:   providerName,
			Op:         op,
			StatusCode: resp.StatusCode,
			Retryable:  resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500,
			Err:        cause,
		}
	}

	if result != nil && len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, result); err != nil {
			return fmt.Errorf("decode %s response: %w", op, err)
		}
	}
	return nil
}

func (c *Client) url(path string) string {
	u := c.baseURL + path
	if c.teamID != "" {
		u += "?teamId=" + url.QueryEscape(c.teamID)
	}
	return u
}

func errorCode(err error) string {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
