package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"codetutor/ai/internal/history"
	"codetutor/ai/internal/models"
)

func seedRecord(t *testing.T, store *history.Store, requestID, submissionID, source string) {
	t.Helper()
	err := store.Save(&models.EvaluationRecord{
		RequestID:    requestID,
		SubmissionID: submissionID,
		LessonTitle:  "Print Statements",
		Prompt:       "grade this",
		Score:        80,
		IsCorrect:    true,
		Feedback:     "Nice work.",
		Source:       source,
		GradedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to seed record: %v", err)
	}
}

type historyListing struct {
	Evaluations []models.EvaluationRecord `json:"evaluations"`
	Count       int                       `json:"count"`
}

func getJSON(t *testing.T, handler http.HandlerFunc, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHistoryListHandler(t *testing.T) {
	store := testHistoryStore(t)
	h := NewHistoryHandler(store, zap.NewNop())

	for i := 0; i < 3; i++ {
		seedRecord(t, store, fmt.Sprintf("req-%d", i), "sub-1", models.EvaluationSourceLLM)
	}
	seedRecord(t, store, "req-other", "sub-2", models.EvaluationSourceHeuristic)

	rec := getJSON(t, h.ListHandler, "/api/v1/submissions/history")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var listing historyListing
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &listing); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if listing.Count != 4 || len(listing.Evaluations) != 4 {
		t.Fatalf("expected 4 evaluations, got count=%d len=%d", listing.Count, len(listing.Evaluations))
	}
}

func TestHistoryListHandlerSubmissionFilter(t *testing.T) {
	store := testHistoryStore(t)
	h := NewHistoryHandler(store, zap.NewNop())

	seedRecord(t, store, "req-a", "sub-1", models.EvaluationSourceLLM)
	seedRecord(t, store, "req-b", "sub-2", models.EvaluationSourceLLM)

	rec := getJSON(t, h.ListHandler, "/api/v1/submissions/history?submissionId=sub-2")
	var listing historyListing
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &listing); err != nil {
		t.Fatalf("failed to decode listing: %v", err)
	}
	if listing.Count != 1 || listing.Evaluations[0].SubmissionID != "sub-2" {
		t.Fatalf("expected only sub-2 records, got %+v", listing)
	}
}

func TestHistoryListHandlerLimit(t *testing.T) {
	store := testHistoryStore(t)
	h := NewHistoryHandler(store, zap.NewNop())

	for i := 0; i < 5; i++ {
		seedRecord(t, store, fmt.Sprintf("req-%d", i), "sub-1", models.EvaluationSourceLLM)
	}

	for _, tc := range []struct {
		query string
		want  int
	}{
		{"limit=2", 2},
		{"limit=0", 5},   // out of range falls back to the default
		{"limit=abc", 5}, // malformed falls back to the default
		{"limit=999", 5}, // over the cap falls back to the default
	} {
		rec := getJSON(t, h.ListHandler, "/api/v1/submissions/history?"+tc.query)
		var listing historyListing
		if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &listing); err != nil {
			t.Fatalf("%s: failed to decode listing: %v", tc.query, err)
		}
		if listing.Count != tc.want {
			t.Errorf("%s: expected %d records, got %d", tc.query, tc.want, listing.Count)
		}
	}
}

func TestHistoryStatsHandler(t *testing.T) {
	store := testHistoryStore(t)
	h := NewHistoryHandler(store, zap.NewNop())

	seedRecord(t, store, "req-a", "sub-1", models.EvaluationSourceLLM)
	seedRecord(t, store, "req-b", "sub-1", models.EvaluationSourceHeuristic)

	rec := getJSON(t, h.StatsHandler, "/api/v1/submissions/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(decodeEnvelope(t, rec).Data, &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if got := stats["total_count"].(float64); got != 2 {
		t.Errorf("expected total_count 2, got %v", got)
	}
	if got := stats["llm_count"].(float64); got != 1 {
		t.Errorf("expected llm_count 1, got %v", got)
	}
	if got := stats["fallback_count"].(float64); got != 1 {
		t.Errorf("expected fallback_count 1, got %v", got)
	}
}

func TestHistoryHandlersWithoutStore(t *testing.T) {
	h := NewHistoryHandler(nil, zap.NewNop())

	for name, handler := range map[string]http.HandlerFunc{
		"list":  h.ListHandler,
		"stats": h.StatsHandler,
	} {
		rec := getJSON(t, handler, "/api/v1/submissions/history")
		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", name, rec.Code)
		}
		var errResp models.ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
			t.Fatalf("%s: failed to decode error: %v", name, err)
		}
		if errResp.Code != "history_unavailable" {
			t.Errorf("%s: expected history_unavailable, got %q", name, errResp.Code)
		}
	}
}
