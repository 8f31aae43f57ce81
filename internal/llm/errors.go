package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrNoResponse is returned by MockProvider when its queue is empty.
var ErrNoResponse = errors.New("no queued mock response")

// RateLimitError reports an HTTP 429 from the provider.
type RateLimitError struct {
	Provider   string
	RetryAfter time.Duration
	Err        error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s: rate limited: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

// UnavailableError reports a provider that is down, unreachable or
// failing with a 5xx. StatusCode is zero for transport errors.
type UnavailableError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UnavailableError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s unavailable (HTTP %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Provider, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// RequestError reports a 4xx the provider will keep returning for the
// same request: bad credentials, unknown model, oversized prompt.
type RequestError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s rejected request (HTTP %d): %v", e.Provider, e.StatusCode, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// InvalidResponseError reports content that is not JSON or does not
// match the requested schema.
type InvalidResponseError struct {
	Content json.RawMessage
	Err     error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }

// TruncatedError reports structured output cut off at MaxTokens.
type TruncatedError struct {
	Content   json.RawMessage
	MaxTokens int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("LLM response truncated at %d max tokens", e.MaxTokens)
}

type retryClass int

const (
	retryNever retryClass = iota
	retryOnce
	retryTransient
)

// classify decides how the retry middleware treats err. Unknown errors
// are assumed transient.
func classify(err error) retryClass {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retryNever
	}
	var (
		trunc *TruncatedError
		req   *RequestError
		inv   *InvalidResponseError
	)
	switch {
	case errors.As(err, &trunc), errors.As(err, &req), errors.Is(err, ErrNoResponse):
		return retryNever
	case errors.As(err, &inv):
		return retryOnce
	}
	return retryTransient
}

// Retryable reports whether a later attempt of the same request could
// succeed.
func Retryable(err error) bool { return classify(err) != retryNever }

// statusError maps an SDK error carrying an HTTP status to the
// package's error types.
func statusError(provider string, status int, retryAfter time.Duration, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return &RateLimitError{Provider: provider, RetryAfter: retryAfter, Err: err}
	case status == http.StatusRequestTimeout, status >= 500, status == 0:
		return &UnavailableError{Provider: provider, StatusCode: status, Err: err}
	case status >= 400:
		return &RequestError{Provider: provider, StatusCode: status, Err: err}
	}
	return &UnavailableError{Provider: provider, StatusCode: status, Err: err}
}

// parseRetryAfter reads a Retry-After header given in seconds. HTTP
// dates are ignored.
func parseRetryAfter(h string) time.Duration {
	n, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
