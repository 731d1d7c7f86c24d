package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"codetutor/ai/internal/evaluation"
	"codetutor/ai/internal/heuristic"
	"codetutor/ai/internal/lessons"
	"codetutor/ai/internal/llm"
	"codetutor/ai/internal/middleware"
	"codetutor/ai/internal/prompts"
)

type mockProvider struct {
	completeFn func(ctx context.Context, req *llm.Request) (*llm.Response, error)
	calls      int
}

func (m *mockProvider) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	m.calls++
	if m.completeFn == nil {
		return &llm.Response{Text: "mock", Metadata: llm.Metadata{Provider: "mock", Model: "mock-1"}}, nil
	}
	return m.completeFn(ctx, req)
}

func (m *mockProvider) GetProviderName() string { return "mock" }

func textProvider(text string) *mockProvider {
	return &mockProvider{
		completeFn: func(ctx context.Context, req *llm.Request) (*llm.Response, error) {
			return &llm.Response{Text: text, Metadata: llm.Metadata{Provider: "mock", Model: "mock-1"}}, nil
		},
	}
}

func failingProvider(code string) *mockProvider {
	return &mockProvider{
		completeFn: func(ctx context.Context, req *llm.Request) (*llm.Response, error) {
			return nil, &llm.ProviderError{Provider: "mock", Code: code, Message: "mock failure"}
		},
	}
}

type mockPromptManager struct {
	buildPromptFn func(mode, variant string, data map[string]string) (string, error)
	buildSystemFn func(mode string, data map[string]string) (string, error)
}

func (m *mockPromptManager) BuildPrompt(mode, variant string, data map[string]string) (string, error) {
	if m.buildPromptFn == nil {
		return "mock prompt", nil
	}
	return m.buildPromptFn(mode, variant, data)
}

func (m *mockPromptManager) BuildSystem(mode string, data map[string]string) (string, error) {
	if m.buildSystemFn == nil {
		return "mock system", nil
	}
	return m.buildSystemFn(mode, data)
}

func (m *mockPromptManager) GetTemplates() map[string]map[string]string {
	return map[string]map[string]string{"grade": {"default": "mock"}}
}

func realPrompts(t *testing.T) prompts.PromptProvider {
	t.Helper()
	pm, err := prompts.NewPromptManager()
	if err != nil {
		t.Fatalf("failed to load prompts: %v", err)
	}
	return pm
}

func realCatalog(t *testing.T) *lessons.Catalog {
	t.Helper()
	catalog, err := lessons.NewCatalog()
	if err != nil {
		t.Fatalf("failed to load catalog: %v", err)
	}
	return catalog
}

func newEvaluator(t *testing.T, provider llm.Provider) *evaluation.Evaluator {
	t.Helper()
	e := evaluation.NewEvaluator(provider, realPrompts(t), realCatalog(t), zap.NewNop())
	e.SetRetryPolicy(llm.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond})
	e.SetGeneratorFactory(func() *heuristic.Generator { return heuristic.NewSeeded(1) })
	return e
}

func fastRetry() llm.RetryPolicy {
	return llm.RetryPolicy{MaxAttempts: 1, BaseDelay: time.Millisecond}
}

// envelope mirrors the response wrapper for decoding in assertions.
type envelope struct {
	Success  bool                   `json:"success"`
	Data     json.RawMessage        `json:"data"`
	Error    string                 `json:"error"`
	Metadata map[string]interface{} `json:"metadata"`
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("failed to decode response: %v\n%s", err, rec.Body.String())
	}
	return env
}

func validated[T middleware.Validator](handlerFn http.HandlerFunc) http.Handler {
	return middleware.ValidateRequest[T]()(handlerFn)
}
