package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amrixahmad/questionsmith/internal/llm"
	"github.com/amrixahmad/questionsmith/internal/quizgen"
	"github.com/amrixahmad/questionsmith/internal/service"
	"github.com/amrixahmad/questionsmith/internal/store"
)

const testSecret = "test-secret"

var quizJSON = json.RawMessage(`{
	"title": "Capitals",
	"difficulty": "medium",
	"questions": [
		{"type": "multiple_choice", "stem": "Capital of France?",
		 "options": [{"text": "Berlin"}, {"text": "Paris"}], "answer": "Paris",
		 "explanation": "Paris has been the capital since 987."},
		{"type": "true_false", "stem": "Rome is in Italy.", "answer": true}
	]
}`)

type testAPI struct {
	t    *testing.T
	srv  *httptest.Server
	auth *Authenticator
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	st, err := store.Open(store.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider(llm.MockResponse{Content: quizJSON})
	svc := service.New(st, quizgen.New(mock, quizgen.DefaultConfig()), nil, nil)
	auth := NewAuthenticator(testSecret)
	srv := httptest.NewServer(NewServer(svc, auth, nil, Options{PublicBaseURL: "https://quiz.test/"}).Handler())
	t.Cleanup(srv.Close)
	return &testAPI{t: t, srv: srv, auth: auth}
}

func (a *testAPI) do(method, path, user string, body any) (*http.Response, map[string]any) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req, err := http.NewRequest(method, a.srv.URL+path, &buf)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		tok, err := a.auth.Issue(user, time.Hour)
		require.NoError(a.t, err)
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		var raw json.RawMessage
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&raw))
		_ = json.Unmarshal(raw, &out)
	}
	return resp, out
}

func (a *testAPI) generate(user string) map[string]any {
	a.t.Helper()
	resp, body := a.do("POST", "/quizzes/generate", user, map[string]any{
		"text":          "France and Italy are European countries.",
		"questionCount": 2,
		"types":         []string{"multiple_choice", "true_false"},
	})
	require.Equal(a.t, http.StatusCreated, resp.StatusCode, body)
	return body["quiz"].(map[string]any)
}

func TestHealthAndAuth(t *testing.T) {
	a := newTestAPI(t)

	resp, body := a.do("GET", "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, body = a.do("GET", "/quizzes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, body["error"])

	req, _ := http.NewRequest("GET", a.srv.URL+"/quizzes", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	r, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	r.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, r.StatusCode)
}

func TestAuthenticator(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	tok, err := auth.Issue("u1", time.Minute)
	require.NoError(t, err)
	sub, err := auth.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", sub)

	_, err = NewAuthenticator("other").Parse(tok)
	assert.Error(t, err, "wrong secret")

	expired, err := auth.Issue("u1", -time.Minute)
	require.NoError(t, err)
	_, err = auth.Parse(expired)
	assert.Error(t, err, "expired token")
}

func TestQuizLifecycle(t *testing.T) {
	a := newTestAPI(t)
	q := a.generate("alice")
	id := q["id"].(string)
	assert.Equal(t, "draft", q["status"])

	questions := q["questions"].([]any)
	require.Len(t, questions, 2)
	first := questions[0].(map[string]any)
	assert.Equal(t, float64(1), first["answer"])
	assert.Equal(t, "B. Paris", first["answerText"])

	resp, _ := a.do("GET", "/quizzes/"+id, "bob", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "draft hidden from others")

	resp, _ = a.do("POST", "/quizzes/"+id+"/publish", "bob", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = a.do("POST", "/quizzes/"+id+"/publish", "alice", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := a.do("GET", "/quizzes/"+id, "bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, raw := range body["questions"].([]any) {
		qv := raw.(map[string]any)
		assert.NotContains(t, qv, "answer")
		assert.NotContains(t, qv, "explanation")
	}

	req, _ := http.NewRequest("GET", a.srv.URL+"/quizzes", nil)
	tok, _ := a.auth.Issue("alice", time.Hour)
	req.Header.Set("Authorization", "Bearer "+tok)
	r, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	var list []map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&list))
	r.Body.Close()
	require.Len(t, list, 1)
	assert.NotContains(t, list[0], "questions")

	resp, _ = a.do("DELETE", "/quizzes/"+id, "alice", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = a.do("GET", "/quizzes/"+id, "alice", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGenerate_BadRequests(t *testing.T) {
	a := newTestAPI(t)

	resp, body := a.do("POST", "/quizzes/generate", "alice", `{"text": `)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "malformed JSON")

	resp, body = a.do("POST", "/quizzes/generate", "alice", map[string]any{"questionCount": 3})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "text")

	resp, _ = a.do("POST", "/quizzes/generate", "alice", map[string]any{"text": "x", "difficulty": "brutal"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = a.do("POST", "/quizzes/generate", "alice", map[string]any{"text": "x", "types": []string{"essay"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAttemptFlow(t *testing.T) {
	a := newTestAPI(t)
	q := a.generate("alice")
	id := q["id"].(string)
	questions := q["questions"].([]any)
	mcID := questions[0].(map[string]any)["id"].(string)
	tfID := questions[1].(map[string]any)["id"].(string)

	resp, _ := a.do("POST", "/quizzes/"+id+"/attempts", "bob", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	a.do("POST", "/quizzes/"+id+"/publish", "alice", nil)
	resp, attempt := a.do("POST", "/quizzes/"+id+"/attempts", "bob", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	attemptID := attempt["id"].(string)

	resp, _ = a.do("POST", "/quizzes/"+id+"/attempts", "bob", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "default limit is one attempt")

	resp, _ = a.do("POST", "/attempts/"+attemptID+"/submit", "bob", map[string]any{
		"answers": []map[string]any{{"response": "b"}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "questionId is required")

	resp, card := a.do("POST", "/attempts/"+attemptID+"/submit", "bob", map[string]any{
		"answers": []map[string]any{
			{"questionId": mcID, "response": "b"},
			{"questionId": tfID, "response": "no"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, card)
	assert.Equal(t, float64(1), card["score"])
	assert.Equal(t, float64(2), card["maxScore"])

	resp, _ = a.do("POST", "/attempts/"+attemptID+"/submit", "bob", map[string]any{"answers": []any{}})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, detail := a.do("GET", "/attempts/"+attemptID, "bob", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, detail["answers"], 2)

	resp, _ = a.do("GET", "/attempts/"+attemptID, "mallory", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = a.do("PUT", "/quizzes/"+id+"/max-attempts", "alice", map[string]any{"maxAttempts": 3})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = a.do("POST", "/quizzes/"+id+"/attempts", "bob", nil)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestShareFlow(t *testing.T) {
	a := newTestAPI(t)
	q := a.generate("alice")
	id := q["id"].(string)

	resp, _ := a.do("POST", "/quizzes/"+id+"/share", "alice", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "draft cannot be shared")

	a.do("POST", "/quizzes/"+id+"/publish", "alice", nil)
	resp, link := a.do("POST", "/quizzes/"+id+"/share", "alice", map[string]any{"expiresInHours": 24})
	require.Equal(t, http.StatusOK, resp.StatusCode, link)
	token := link["token"].(string)
	assert.Equal(t, "https://quiz.test/s/"+token, link["url"])
	assert.NotEmpty(t, link["expiresAt"])

	resp, shared := a.do("GET", "/s/"+token, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, shared["id"])
	for _, raw := range shared["questions"].([]any) {
		qv := raw.(map[string]any)
		assert.NotContains(t, qv, "answer")
		assert.NotContains(t, qv, "answerText")
	}

	resp, _ = a.do("DELETE", "/quizzes/"+id+"/share", "bob", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, revoked := a.do("DELETE", "/quizzes/"+id+"/share", "alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), revoked["revoked"])

	resp, _ = a.do("GET", "/s/"+token, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("get quiz: %w", service.ErrNotFound), http.StatusNotFound},
		{service.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("%w: bad", service.ErrInvalidInput), http.StatusBadRequest},
		{service.ErrNotPublished, http.StatusConflict},
		{service.ErrAlreadySubmitted, http.StatusConflict},
		{service.ErrAttemptLimit, http.StatusConflict},
		{context.DeadlineExceeded, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}
