package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/amrixahmad/questionsmith/internal/logging"
	"github.com/amrixahmad/questionsmith/internal/store"
)

type recordingRepo struct {
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return r.err
}

func (r *recordingRepo) QueryLLMEvents(context.Context, store.QueryOpts) ([]store.LLMRequestEventRecord, error) {
	return nil, nil
}

func (r *recordingRepo) GetLLMEvent(context.Context, int) (*store.LLMRequestEventRecord, error) {
	return nil, store.ErrNotFound
}

func (r *recordingRepo) LLMUsageByPurpose(context.Context) ([]store.LLMUsageStat, error) {
	return nil, nil
}

func (r *recordingRepo) LLMUsageByModel(context.Context) ([]store.LLMModelUsage, error) {
	return nil, nil
}

func TestLoggingProvider_RecordsSuccess(t *testing.T) {
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(testQuizJSON),
		Usage:   Usage{InputTokens: 900, OutputTokens: 200},
	})
	repo := &recordingRepo{}
	var buf bytes.Buffer
	p := WithLogging(mock, "openai", logging.New(&buf, "text", "info"), repo)

	ctx := WithPurpose(context.Background(), "quiz-gen")
	_, err := p.Generate(ctx, Request{
		System:   "You write quizzes.",
		Messages: []Message{{Role: RoleUser, Content: "Source content: tides."}},
		Schema:   testQuizSchema(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.events) != 1 {
		t.Fatalf("events = %d, want 1", len(repo.events))
	}
	e := repo.events[0]
	if e.Provider != "openai" || e.Model != "mock" || e.Purpose != "quiz-gen" || !e.Success {
		t.Errorf("event = %+v", e)
	}
	if e.InputTokens != 900 || e.OutputTokens != 200 {
		t.Errorf("tokens = %d/%d", e.InputTokens, e.OutputTokens)
	}
	for _, want := range []string{"[system]", "[user]", "tides", "[schema: test-quiz]"} {
		if !strings.Contains(e.RequestBody, want) {
			t.Errorf("request body missing %q:\n%s", want, e.RequestBody)
		}
	}
	if e.ResponseBody != testQuizJSON {
		t.Errorf("response body = %q", e.ResponseBody)
	}
	if !strings.Contains(buf.String(), "purpose=quiz-gen") {
		t.Errorf("log output missing purpose: %s", buf.String())
	}
}

func TestLoggingProvider_RecordsFailureContent(t *testing.T) {
	bad := json.RawMessage(`{"title":""}`)
	mock := NewMockProvider(MockResponse{Err: &InvalidResponseError{Content: bad, Err: errors.New("title too short")}})
	repo := &recordingRepo{}
	p := WithLogging(mock, "anthropic", nil, repo)

	if _, err := p.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error")
	}
	e := repo.events[0]
	if e.Success || !strings.Contains(e.ErrorMessage, "title too short") {
		t.Errorf("event = %+v", e)
	}
	if e.ResponseBody != string(bad) {
		t.Errorf("response body = %q, want rejected content", e.ResponseBody)
	}
	if e.Purpose != "unknown" {
		t.Errorf("purpose = %q", e.Purpose)
	}
}

func TestLoggingProvider_RepoFailureDoesNotFailRequest(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	p := WithLogging(mock, "mock", logging.Discard(), &recordingRepo{err: errors.New("disk full")})

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestClip(t *testing.T) {
	if got := clip("short", 10); got != "short" {
		t.Errorf("clip = %q", got)
	}
	got := clip("ééé", 3)
	if !strings.HasPrefix(got, "é\n[truncated]") {
		t.Errorf("clip split a rune: %q", got)
	}
}
