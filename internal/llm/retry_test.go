package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

func okResponse() MockResponse {
	return MockResponse{Content: json.RawMessage(testQuizJSON)}
}

func TestRetry_RecoversFromTransientErrors(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &UnavailableError{Provider: "mock", StatusCode: 503}},
		MockResponse{Err: &RateLimitError{Provider: "mock"}},
		okResponse(),
	)
	p := WithRetry(mock, fastRetry(3), nil)

	resp, err := p.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != testQuizJSON {
		t.Errorf("content = %s", resp.Content)
	}
	if mock.CallCount() != 3 {
		t.Errorf("calls = %d, want 3", mock.CallCount())
	}
}

func TestRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: errors.New("connection reset")},
		MockResponse{Err: errors.New("connection reset")},
		okResponse(),
	)
	_, err := WithRetry(mock, fastRetry(2), nil).Generate(context.Background(), Request{})
	if err == nil || err.Error() != "connection reset" {
		t.Fatalf("expected last error, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2", mock.CallCount())
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	invalid := MockResponse{Err: &InvalidResponseError{Err: errors.New("missing title")}}
	mock := NewMockProvider(invalid, invalid, okResponse())

	_, err := WithRetry(mock, fastRetry(5), nil).Generate(context.Background(), Request{})
	var inv *InvalidResponseError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidResponseError, got %v", err)
	}
	if mock.CallCount() != 2 {
		t.Errorf("calls = %d, want 2", mock.CallCount())
	}
}

func TestRetry_PermanentErrorsNotRetried(t *testing.T) {
	for _, perm := range []error{
		&TruncatedError{MaxTokens: 10},
		&RequestError{Provider: "mock", StatusCode: 401},
		context.Canceled,
	} {
		mock := NewMockProvider(MockResponse{Err: perm}, okResponse())
		_, err := WithRetry(mock, fastRetry(3), nil).Generate(context.Background(), Request{})
		if err == nil {
			t.Errorf("%T: expected error", perm)
		}
		if mock.CallCount() != 1 {
			t.Errorf("%T: calls = %d, want 1", perm, mock.CallCount())
		}
	}
}

func TestRetry_ZeroAttemptsCallsOnce(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: errors.New("boom")}, okResponse())
	if _, err := WithRetry(mock, RetryConfig{}, nil).Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_ContextCanceledDuringWait(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: errors.New("boom")}, okResponse())
	cfg := RetryConfig{MaxAttempts: 3, InitialWait: time.Hour, MaxWait: time.Hour, Multiplier: 1}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := WithRetry(mock, cfg, nil).Generate(ctx, Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestRetry_Backoff(t *testing.T) {
	r := &RetryProvider{config: RetryConfig{InitialWait: 100 * time.Millisecond, MaxWait: time.Second, Multiplier: 2}}

	for attempt, base := range []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond, time.Second} {
		got := r.backoff(attempt, errors.New("x"))
		lo, hi := time.Duration(float64(base)*0.8), time.Duration(float64(base)*1.2)
		if got < lo || got > hi {
			t.Errorf("attempt %d: wait %s outside [%s, %s]", attempt, got, lo, hi)
		}
	}

	if got := r.backoff(0, &RateLimitError{RetryAfter: 3 * time.Second}); got != 3*time.Second {
		t.Errorf("rate limited wait = %s, want Retry-After", got)
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&RateLimitError{}, true},
		{&UnavailableError{}, true},
		{&InvalidResponseError{}, true},
		{errors.New("eof"), true},
		{&RequestError{StatusCode: 400}, false},
		{&TruncatedError{}, false},
		{context.DeadlineExceeded, false},
		{&UnavailableError{Err: ErrNoResponse}, false},
	}
	for _, tt := range tests {
		if got := Retryable(tt.err); got != tt.want {
			t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestStatusError(t *testing.T) {
	base := errors.New("upstream")
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{429, func(err error) bool { var e *RateLimitError; return errors.As(err, &e) && e.RetryAfter == time.Second }},
		{408, func(err error) bool { var e *UnavailableError; return errors.As(err, &e) }},
		{503, func(err error) bool { var e *UnavailableError; return errors.As(err, &e) && e.StatusCode == 503 }},
		{404, func(err error) bool { var e *RequestError; return errors.As(err, &e) }},
		{0, func(err error) bool { var e *UnavailableError; return errors.As(err, &e) }},
	}
	for _, tt := range tests {
		err := statusError("p", tt.status, time.Second, base)
		if !tt.check(err) || !errors.Is(err, base) {
			t.Errorf("status %d: got %T (%v)", tt.status, err, err)
		}
	}

	if parseRetryAfter(" 12 ") != 12*time.Second || parseRetryAfter("Wed, 21 Oct 2026 07:28:00 GMT") != 0 {
		t.Error("parseRetryAfter mismatch")
	}
}
