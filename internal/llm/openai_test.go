package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newTestOpenAIProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := openai.DefaultConfig("test-key")
	config.BaseURL = server.URL + "/v1"
	return &OpenAIProvider{client: openai.NewClientWithConfig(config), model: "gpt-4.1-nano", name: "openai"}
}

func openaiReply(message map[string]any, finish string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		message["role"] = "assistant"
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1760000000,
			"model":   "gpt-4.1-nano-2025-04-14",
			"choices": []map[string]any{{"index": 0, "message": message, "finish_reason": finish}},
			"usage":   map[string]any{"prompt_tokens": 300, "completion_tokens": 150, "total_tokens": 450},
		})
	}
}

func TestOpenAIProvider_SendsSchemaAndSystem(t *testing.T) {
	var got struct {
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
		MaxCompletionTokens int `json:"max_completion_tokens"`
		ResponseFormat      *struct {
			Type       string `json:"type"`
			JSONSchema *struct {
				Name   string `json:"name"`
				Strict bool   `json:"strict"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	handler := func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		openaiReply(map[string]any{"content": testQuizJSON}, "stop")(w, r)
	}

	p := newTestOpenAIProvider(t, handler)
	schema := testQuizSchema()
	schema.Strict = true
	resp, err := p.Generate(context.Background(), Request{
		System:    "You write quizzes.",
		Messages:  []Message{{Role: RoleUser, Content: "Source content: photosynthesis."}},
		Schema:    schema,
		MaxTokens: 2048,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Messages) != 2 || got.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("messages = %+v, want system then user", got.Messages)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.JSONSchema == nil {
		t.Fatal("expected json_schema response format")
	}
	if got.ResponseFormat.JSONSchema.Name != "test-quiz" || !got.ResponseFormat.JSONSchema.Strict {
		t.Errorf("schema format = %+v", got.ResponseFormat.JSONSchema)
	}
	if got.MaxCompletionTokens != 2048 {
		t.Errorf("max completion tokens = %d", got.MaxCompletionTokens)
	}
	if resp.Model != "gpt-4.1-nano-2025-04-14" || resp.Usage.TotalTokens != 450 {
		t.Errorf("response = %+v", resp)
	}
}

func TestOpenAIProvider_SchemaMismatch(t *testing.T) {
	p := newTestOpenAIProvider(t, openaiReply(map[string]any{"content": `{"title":""}`}, "stop"))
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "x"}},
		Schema:   testQuizSchema(),
	})
	var inv *InvalidResponseError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidResponseError, got %T (%v)", err, err)
	}
	if string(inv.Content) != `{"title":""}` {
		t.Errorf("content not kept: %s", inv.Content)
	}
}

func TestOpenAIProvider_Refusal(t *testing.T) {
	p := newTestOpenAIProvider(t, openaiReply(map[string]any{"content": "", "refusal": "cannot help"}, "stop"))
	_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
	var inv *InvalidResponseError
	if !errors.As(err, &inv) {
		t.Fatalf("expected InvalidResponseError, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_LengthFinish(t *testing.T) {
	p := newTestOpenAIProvider(t, openaiReply(map[string]any{"content": `{"title":"Pho`}, "length"))
	_, err := p.Generate(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "x"}},
		Schema:   testQuizSchema(),
	})
	var trunc *TruncatedError
	if !errors.As(err, &trunc) {
		t.Fatalf("expected TruncatedError, got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_HTTPErrors(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusTooManyRequests, func(err error) bool { var e *RateLimitError; return errors.As(err, &e) }},
		{http.StatusBadGateway, func(err error) bool { var e *UnavailableError; return errors.As(err, &e) }},
		{http.StatusBadRequest, func(err error) bool { var e *RequestError; return errors.As(err, &e) }},
	}
	for _, tt := range tests {
		handler := func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tt.status)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"type": "error", "message": "failure"},
			})
		}
		p := newTestOpenAIProvider(t, handler)
		_, err := p.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "x"}}})
		if !tt.check(err) {
			t.Errorf("status %d: unexpected error %T (%v)", tt.status, err, err)
		}
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o"}); err == nil {
		t.Fatal("expected error without API key")
	}
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4.1-mini", BaseURL: "http://localhost:1/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4.1-mini-2025-04-14" {
		t.Errorf("model = %q, want alias resolved", p.ModelID())
	}
}
