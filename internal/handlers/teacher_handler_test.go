package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"go.uber.org/zap"

	"codetutor/ai/internal/llm"
	"codetutor/ai/internal/models"
)

func teacherHandlerWith(provider llm.Provider) *TeacherHandler {
	h := NewTeacherHandler(provider, &mockPromptManager{}, zap.NewNop())
	h.SetRetryPolicy(fastRetry())
	return h
}

func TestChatHandlerSuccess(t *testing.T) {
	provider := textProvider("Loops repeat a block of code until a condition changes.")
	handler := validated[*models.ChatRequest](teacherHandlerWith(provider).ChatHandler)

	rec := postJSON(t, handler, "/api/v1/teacher/chat", `{"message": "what is a loop?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	env := decodeEnvelope(t, rec)
	var resp models.ChatResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Response == "" || resp.RequestID == "" {
		t.Fatalf("unexpected chat response: %+v", resp)
	}
}

func TestChatHandlerWithoutProvider(t *testing.T) {
	handler := validated[*models.ChatRequest](teacherHandlerWith(nil).ChatHandler)

	rec := postJSON(t, handler, "/api/v1/teacher/chat", `{"message": "help"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 without provider, got %d", rec.Code)
	}

	var errResp models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("failed to decode error: %v", err)
	}
	if errResp.Code != "ai_unavailable" {
		t.Fatalf("unexpected error code %q", errResp.Code)
	}
}

func TestChatHandlerProviderErrorMapping(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{llm.ErrCodeRateLimit, http.StatusTooManyRequests},
		{llm.ErrCodeServiceDown, http.StatusBadGateway},
		{llm.ErrCodeTimeout, http.StatusGatewayTimeout},
		{llm.ErrCodeAPIKey, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			handler := validated[*models.ChatRequest](teacherHandlerWith(failingProvider(tt.code)).ChatHandler)

			rec := postJSON(t, handler, "/api/v1/teacher/chat", `{"message": "help"}`)
			if rec.Code != tt.status {
				t.Fatalf("expected %d for %s, got %d", tt.status, tt.code, rec.Code)
			}
		})
	}
}

func TestChatHandlerPromptFailure(t *testing.T) {
	h := NewTeacherHandler(textProvider("x"), &mockPromptManager{
		buildSystemFn: func(mode string, data map[string]string) (string, error) {
			return "", errors.New("template broken")
		},
	}, zap.NewNop())
	handler := validated[*models.ChatRequest](h.ChatHandler)

	rec := postJSON(t, handler, "/api/v1/teacher/chat", `{"message": "help"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for prompt failure, got %d", rec.Code)
	}
}

func TestChatHandlerValidation(t *testing.T) {
	handler := validated[*models.ChatRequest](teacherHandlerWith(nil).ChatHandler)

	rec := postJSON(t, handler, "/api/v1/teacher/chat", `{"message": "  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank message, got %d", rec.Code)
	}
}

func TestLectureHandlerLLMPath(t *testing.T) {
	reply := `{
		"title": "Print Statements",
		"introduction": "Printing is how programs talk to you.",
		"concepts": ["print()", "strings", "newlines"],
		"examples": [{"title": "Hello", "code": "print('hi')", "explanation": "prints hi"}],
		"keyPoints": ["print needs parentheses"]
	}`
	handler := validated[*models.LectureRequest](teacherHandlerWith(textProvider(reply)).LectureHandler)

	rec := postJSON(t, handler, "/api/v1/teacher/lecture", `{"lessonTitle": "Print Statements"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	var lecture models.LectureContent
	if err := json.Unmarshal(env.Data, &lecture); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if lecture.Title != "Print Statements" || len(lecture.Concepts) != 3 {
		t.Fatalf("unexpected lecture: %+v", lecture)
	}
	if len(lecture.Examples) != 1 || lecture.Examples[0].Code != "print('hi')" {
		t.Fatalf("unexpected examples: %+v", lecture.Examples)
	}
}

func TestLectureHandlerFallsBack(t *testing.T) {
	for name, provider := range map[string]llm.Provider{
		"nil provider": nil,
		"failing":      failingProvider(llm.ErrCodeServiceDown),
		"prose output": textProvider("I cannot produce JSON today."),
	} {
		t.Run(name, func(t *testing.T) {
			var h *TeacherHandler
			if provider == nil {
				h = teacherHandlerWith(nil)
			} else {
				h = teacherHandlerWith(provider)
			}
			handler := validated[*models.LectureRequest](h.LectureHandler)

			rec := postJSON(t, handler, "/api/v1/teacher/lecture", `{"lessonTitle": "Print Statements"}`)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200 fallback, got %d", rec.Code)
			}

			env := decodeEnvelope(t, rec)
			var lecture models.LectureContent
			if err := json.Unmarshal(env.Data, &lecture); err != nil {
				t.Fatalf("failed to decode: %v", err)
			}
			if lecture.Title != "Print Statements" {
				t.Fatalf("expected lesson title in fallback, got %q", lecture.Title)
			}
			if lecture.Introduction == "" || len(lecture.Concepts) == 0 || len(lecture.KeyPoints) == 0 {
				t.Fatalf("incomplete fallback lecture: %+v", lecture)
			}
		})
	}
}

const coachBody = `{
	"keystrokes": [
		{"key": "a", "timestamp": 1000, "action": "keydown"},
		{"key": "b", "timestamp": 1100, "action": "keydown"},
		{"key": "Backspace", "timestamp": 1200, "action": "keydown"}
	]
}`

func TestCoachHandlerLLMPath(t *testing.T) {
	provider := textProvider("Nice steady pace; try narrating your approach while typing.")
	handler := validated[*models.CoachRequest](teacherHandlerWith(provider).CoachHandler)

	rec := postJSON(t, handler, "/api/v1/teacher/keystroke-coach", coachBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	var resp models.CoachResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Source != models.EvaluationSourceLLM || resp.Advice == "" {
		t.Fatalf("unexpected coach response: %+v", resp)
	}
	if resp.Metrics.TotalKeys != 3 || resp.Metrics.Backspaces != 1 {
		t.Fatalf("expected server-side metrics, got %+v", resp.Metrics)
	}
}

func TestCoachHandlerTruncatesLongAdvice(t *testing.T) {
	provider := textProvider(strings.Repeat("type slower ", 100))
	handler := validated[*models.CoachRequest](teacherHandlerWith(provider).CoachHandler)

	rec := postJSON(t, handler, "/api/v1/teacher/keystroke-coach", coachBody)
	env := decodeEnvelope(t, rec)
	var resp models.CoachResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if got := len([]rune(resp.Advice)); got > maxCoachAdviceLen+3 {
		t.Fatalf("expected advice capped at %d runes, got %d", maxCoachAdviceLen, got)
	}
	if !strings.HasSuffix(resp.Advice, "...") {
		t.Fatalf("expected truncated advice to end with ellipsis, got %q", resp.Advice[len(resp.Advice)-10:])
	}
}

func TestCoachHandlerDegradesTo200(t *testing.T) {
	handler := validated[*models.CoachRequest](teacherHandlerWith(failingProvider(llm.ErrCodeServiceDown)).CoachHandler)

	rec := postJSON(t, handler, "/api/v1/teacher/keystroke-coach", coachBody)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected degraded 200, got %d", rec.Code)
	}

	env := decodeEnvelope(t, rec)
	var resp models.CoachResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Source != models.EvaluationSourceHeuristic {
		t.Fatalf("expected fallback source, got %q", resp.Source)
	}
	if resp.Advice == "" {
		t.Fatal("expected non-empty fallback advice")
	}
}

func TestCoachHandlerValidation(t *testing.T) {
	handler := validated[*models.CoachRequest](teacherHandlerWith(nil).CoachHandler)

	rec := postJSON(t, handler, "/api/v1/teacher/keystroke-coach", `{"keystrokes": []}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty keystrokes, got %d", rec.Code)
	}
}
