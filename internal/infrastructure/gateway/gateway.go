package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/signal-x-studio/bc-migration-sub002/internal/domain/migration"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// Rate-limit headers returned by the destination API. The reset time comes in
// milliseconds from the dedicated header or in seconds from Retry-After; both
// are normalized to a time.Duration.
const (
	headerRequestsLeft = "X-Rate-Limit-Requests-Left"
	headerTimeResetMs  = "X-Rate-Limit-Time-Reset-Ms"
	headerRetryAfter   = "Retry-After"
)

// Operation describes one HTTP call to the destination API
type Operation struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

// Response is the raw outcome of a successful operation
type Response struct {
	Status int
	Body   []byte
	Header http.Header
}

// Decorator mutates an outgoing request, typically to add auth headers
type Decorator func(*http.Request)

// Gateway wraps outbound calls to the destination API with admission control
// and retry. It owns the only mutable rate-budget state, shared by every
// migrator that writes to the same store.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	limiter    *Limiter
	policy     BackoffPolicy
	decorate   Decorator
	logger     *zap.Logger
}

// New creates a gateway for one destination store
func New(baseURL string, limiter *Limiter, policy BackoffPolicy, decorate Decorator, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		limiter:    limiter,
		policy:     policy,
		decorate:   decorate,
		logger:     logger,
	}
}

// SetHTTPClient overrides the underlying HTTP client (timeouts, transports)
func (g *Gateway) SetHTTPClient(client *http.Client) {
	if client != nil {
		g.httpClient = client
	}
}

// Execute performs the operation with admission control and retry. Retriable
// failures are retried with exponential backoff and jitter up to the attempt
// ceiling; a 429 reset hint floors the next delay. Non-retriable errors
// propagate immediately with operation context attached.
func (g *Gateway) Execute(ctx context.Context, op Operation) (*Response, error) {
	var lastErr error

	// A zero-value policy still performs one attempt, matching Delay's
	// zero-value guards.
	attempts := g.policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, &migration.ConnectionError{Op: op.Method + " " + op.Path, Err: err}
		}

		resp, err := g.do(ctx, op)
		if err == nil {
			return resp, nil
		}

		if !migration.Retriable(err) {
			return nil, err
		}
		lastErr = err
		if attempt == attempts-1 {
			break
		}

		var hint time.Duration
		var rateErr *migration.RateLimitError
		if errors.As(err, &rateErr) {
			hint = rateErr.RetryAfter
		}

		delay := g.policy.Delay(attempt, hint)
		g.logger.Warn("retrying destination call",
			zap.String("method", op.Method),
			zap.String("path", op.Path),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &migration.ConnectionError{Op: op.Method + " " + op.Path, Err: ctx.Err()}
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("%w: %s %s: %w", migration.ErrRetriesExhausted, op.Method, op.Path, lastErr)
}

// do performs a single attempt and classifies the outcome
func (g *Gateway) do(ctx context.Context, op Operation) (*Response, error) {
	reqURL := g.baseURL + op.Path
	if len(op.Query) > 0 {
		reqURL += "?" + op.Query.Encode()
	}

	var bodyReader io.Reader
	if op.Body != nil {
		payload, err := json.Marshal(op.Body)
		if err != nil {
			return nil, migration.NewValidationError("request", "body", fmt.Sprintf("marshal failed: %v", err))
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, op.Method, reqURL, bodyReader)
	if err != nil {
		return nil, migration.NewValidationError("request", "url", err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.decorate != nil {
		g.decorate(req)
	}

	httpResp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &migration.ConnectionError{Op: op.Method + " " + op.Path, Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, &migration.ConnectionError{Op: op.Method + " " + op.Path, Err: err}
	}

	// Budget state tracks every response, success or failure
	g.updateBudget(httpResp.Header)

	if httpResp.StatusCode == http.StatusTooManyRequests {
		return nil, &migration.RateLimitError{RetryAfter: resetHint(httpResp.Header)}
	}
	if httpResp.StatusCode >= 400 {
		return nil, &migration.APIError{
			Method: op.Method,
			Path:   op.Path,
			Status: httpResp.StatusCode,
			Body:   string(body),
		}
	}

	return &Response{
		Status: httpResp.StatusCode,
		Body:   body,
		Header: httpResp.Header,
	}, nil
}

func (g *Gateway) updateBudget(h http.Header) {
	remaining := -1
	if v := h.Get(headerRequestsLeft); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			remaining = n
		}
	}
	g.limiter.Update(remaining, resetHint(h))
}

// resetHint normalizes the destination's reset time headers. The dedicated
// header is milliseconds; Retry-After is either delay-seconds or an HTTP-date.
func resetHint(h http.Header) time.Duration {
	if v := h.Get(headerTimeResetMs); v != "" {
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	if v := h.Get(headerRetryAfter); v != "" {
		if sec, err := strconv.ParseInt(v, 10, 64); err == nil && sec > 0 {
			return time.Duration(sec) * time.Second
		}
		if at, err := http.ParseTime(v); err == nil {
			if d := time.Until(at); d > 0 {
				return d
			}
		}
	}
	return 0
}
