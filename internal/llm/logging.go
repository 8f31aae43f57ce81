package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/amrixahmad/questionsmith/internal/logging"
	"github.com/amrixahmad/questionsmith/internal/store"
)

// LoggingProvider is a decorator that logs every LLM request and records
// it as an event when a repository is configured.
type LoggingProvider struct {
	inner     Provider
	provider  string
	logger    logging.Logger
	eventRepo store.EventRepo
}

// WithLogging wraps p with request logging. provider names the backend
// in events, and repo may be nil.
func WithLogging(p Provider, provider string, logger logging.Logger, repo store.EventRepo) Provider {
	if logger == nil {
		logger = logging.Discard()
	}
	return &LoggingProvider{
		inner:     p,
		provider:  provider,
		logger:    logger.With("component", "llm", "provider", provider),
		eventRepo: repo,
	}
}

// maxStoredBody caps request and response bodies kept in events. Source
// texts can be large.
const maxStoredBody = 64 << 10

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     purpose,
		LatencyMs:   latencyMs,
		Success:     err == nil,
		RequestBody: clip(serializeRequest(req), maxStoredBody),
	}

	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = clip(string(resp.Content), maxStoredBody)
	}

	if err != nil {
		data.ErrorMessage = err.Error()
		if data.ResponseBody == "" {
			data.ResponseBody = clip(string(failedContent(err)), maxStoredBody)
		}
		l.logger.WarnContext(ctx, "llm request failed",
			"purpose", purpose, "model", data.Model, "latency_ms", latencyMs, "error", err)
	} else {
		l.logger.InfoContext(ctx, "llm request",
			"purpose", purpose, "model", data.Model, "latency_ms", latencyMs,
			"input_tokens", data.InputTokens, "output_tokens", data.OutputTokens)
	}

	// Persisting the event never fails the request.
	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendLLMRequest(ctx, data); logErr != nil {
			l.logger.LogError(logErr, "failed to record LLM request event", "purpose", purpose)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n\n")
	}

	if req.Schema != nil {
		schemaDef, err := json.Marshal(req.Schema.Definition)
		if err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n", req.Schema.Name)
			b.Write(schemaDef)
			b.WriteString("\n")
		}
	}

	return b.String()
}

// failedContent returns the model output carried by a validation or
// truncation error, so bad replies stay inspectable with `llm view`.
func failedContent(err error) []byte {
	var inv *InvalidResponseError
	if errors.As(err, &inv) {
		return inv.Content
	}
	var trunc *TruncatedError
	if errors.As(err, &trunc) {
		return trunc.Content
	}
	return nil
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "\n[truncated]"
}
