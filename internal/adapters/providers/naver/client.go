package naver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/ericyum/tour-agent-backend/internal/infrastructure/observability"
	"github.com/ericyum/tour-agent-backend/pkg/circuitbreaker"
	"github.com/ericyum/tour-agent-backend/pkg/config"
	"github.com/ericyum/tour-agent-backend/pkg/retry"
)

const (
	defaultBaseURL     = "https://openapi.naver.com"
	defaultHTTPTimeout = 10 * time.Second
	maxErrorBody       = 512
)

// StatusError is a non-2xx answer from the Naver Open API.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("naver api returned status %d: %s", e.StatusCode, e.Body)
}

// Client calls one Naver Open API application. Requests are throttled,
// retried on transient failures and guarded by a circuit breaker.
type Client struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *circuitbreaker.Breaker[[]byte]
	retry      retry.Config
}

// Option customizes a Client.
type Option func(*Client)

// WithRetry overrides the per-request retry policy.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// NewClient creates a client for the application described by cfg. name
// labels the circuit breaker.
func NewClient(name string, cfg config.NaverConfig, opts ...Option) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}

	c := &Client{
		baseURL:    baseURL,
		clientID:   cfg.ClientID,
		secret:     cfg.ClientSecret,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(limit, 1),
		breaker:    circuitbreaker.New[[]byte](name, circuitbreaker.DefaultSettings()),
		retry:      retry.RequestConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	logger := observability.LoggerFromContext(ctx)
	var body []byte
	err := retry.DoWithLog(ctx, c.retry, "naver", func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return retry.Permanent(err)
		}
		data, err := c.breaker.Execute(func() ([]byte, error) {
			return c.send(ctx, method, endpoint, payload)
		})
		if err != nil {
			var se *StatusError
			if circuitbreaker.IsOpen(err) || (errors.As(err, &se) && !retryable(se.StatusCode)) {
				return retry.Permanent(err)
			}
			return err
		}
		body = data
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		logger.Debug().Err(err).Int("attempt", attempt).Dur("retry_in", nextDelay).Str("path", path).Msg("naver request failed, retrying")
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode naver response: %w", err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.secret)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet := string(data)
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet}
	}
	return data, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
