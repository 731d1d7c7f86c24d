package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"codetutor/ai/internal/evaluation"
	"codetutor/ai/internal/heuristic"
	"codetutor/ai/internal/keystroke"
	"codetutor/ai/internal/llm"
	"codetutor/ai/internal/middleware"
	"codetutor/ai/internal/models"
	"codetutor/ai/internal/prompts"
	"codetutor/ai/internal/utils"
)

// coach tips are meant to fit in a small toast, so long replies are cut
const maxCoachAdviceLen = 600

// TeacherHandler serves the conversational endpoints: chat, lecture
// generation and keystroke coaching. Chat is LLM-only and fails loudly;
// lecture and coaching degrade to local fallbacks.
type TeacherHandler struct {
	provider      llm.Provider // nil when no credential is configured
	promptManager prompts.PromptProvider
	retryPolicy   llm.RetryPolicy
	logger        *zap.Logger
}

func NewTeacherHandler(provider llm.Provider, promptManager prompts.PromptProvider, logger *zap.Logger) *TeacherHandler {
	return &TeacherHandler{
		provider:      provider,
		promptManager: promptManager,
		retryPolicy:   llm.DefaultRetryPolicy,
		logger:        logger,
	}
}

// SetRetryPolicy overrides the upstream retry policy.
func (h *TeacherHandler) SetRetryPolicy(policy llm.RetryPolicy) {
	h.retryPolicy = policy
}

func (h *TeacherHandler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.ChatRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	if h.provider == nil {
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "ai_unavailable",
			Message: "AI provider is not configured",
		})
		return
	}

	data := map[string]string{
		"Message":           req.Message,
		"LessonTitle":       orDefault(req.Context.LessonTitle, "(not in a lesson)"),
		"LessonDescription": orDefault(req.Context.LessonDescription, "(none)"),
	}

	system, err := h.promptManager.BuildSystem("chat", data)
	if err != nil {
		h.promptFailure(w, req.RequestID, err)
		return
	}
	prompt, err := h.promptManager.BuildPrompt("chat", "default", data)
	if err != nil {
		h.promptFailure(w, req.RequestID, err)
		return
	}

	response, err := h.complete(r, system, prompt, req.RequestID)
	if err != nil {
		h.logger.Error("Chat provider error", zap.Error(err), zap.String("request_id", req.RequestID))
		writeProviderError(w, err)
		return
	}

	utils.JSON(w, http.StatusOK, models.APIResponse{
		Success: true,
		Data: models.ChatResponse{
			Response:  strings.TrimSpace(response.Text),
			RequestID: req.RequestID,
		},
		Metadata: responseMetadata(req.RequestID, response.Metadata.Provider, response.Metadata.Model),
	})
}

func (h *TeacherHandler) LectureHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.LectureRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	lecture, provider, err := h.generateLecture(r, req)
	if err != nil {
		h.logger.Warn("Lecture generation unavailable, using fallback content",
			zap.String("request_id", req.RequestID),
			zap.Error(err))
		lecture = fallbackLecture(req.LessonTitle, req.LessonDescription)
		provider = "heuristic"
	}

	utils.JSON(w, http.StatusOK, models.APIResponse{
		Success:  true,
		Data:     lecture,
		Metadata: responseMetadata(req.RequestID, provider, ""),
	})
}

func (h *TeacherHandler) generateLecture(r *http.Request, req *models.LectureRequest) (*models.LectureContent, string, error) {
	if h.provider == nil {
		return nil, "", &llm.ProviderError{Code: llm.ErrCodeAPIKey, Message: "no LLM credential configured"}
	}

	data := map[string]string{
		"LessonTitle":       req.LessonTitle,
		"LessonDescription": orDefault(req.LessonDescription, "(none)"),
	}

	system, err := h.promptManager.BuildSystem("lecture", data)
	if err != nil {
		return nil, "", err
	}
	prompt, err := h.promptManager.BuildPrompt("lecture", "default", data)
	if err != nil {
		return nil, "", err
	}

	response, err := h.complete(r, system, prompt, req.RequestID)
	if err != nil {
		return nil, "", err
	}

	raw, err := evaluation.ExtractJSON(response.Text)
	if err != nil {
		return nil, "", err
	}

	return normalizeLecture(raw, req.LessonTitle), response.Metadata.Provider, nil
}

// CoachHandler turns a raw keystroke window into one actionable tip. The
// metrics are always computed locally; only the phrasing of the tip goes
// through the LLM, so this endpoint degrades to a 200 with a canned tip.
func (h *TeacherHandler) CoachHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.CoachRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	m := keystroke.Analyze(req.Keystrokes, keystroke.AnalyzerOptions{})

	advice, source, err := h.coachAdvice(r, req, m)
	if err != nil {
		h.logger.Warn("Coach provider unavailable, using local tip",
			zap.String("request_id", req.RequestID),
			zap.Error(err))
		advice = heuristic.CoachTip(m)
		source = models.EvaluationSourceHeuristic
	}

	utils.JSON(w, http.StatusOK, models.APIResponse{
		Success: true,
		Data: models.CoachResponse{
			Advice:    advice,
			Source:    source,
			Metrics:   m,
			RequestID: req.RequestID,
		},
		Metadata: responseMetadata(req.RequestID, "", ""),
	})
}

func (h *TeacherHandler) coachAdvice(r *http.Request, req *models.CoachRequest, m keystroke.Metrics) (string, string, error) {
	if h.provider == nil {
		return "", "", &llm.ProviderError{Code: llm.ErrCodeAPIKey, Message: "no LLM credential configured"}
	}

	data := map[string]string{
		"LessonTitle":       orDefault(req.Context.LessonTitle, "(not in a lesson)"),
		"LessonDescription": orDefault(req.Context.LessonDescription, "(none)"),
		"AnalysisWindow":    orDefault(req.Context.AnalysisWindow, "45s"),
		"Stats":             formatStats(m),
	}

	system, err := h.promptManager.BuildSystem("coach", data)
	if err != nil {
		return "", "", err
	}
	prompt, err := h.promptManager.BuildPrompt("coach", "default", data)
	if err != nil {
		return "", "", err
	}

	response, err := h.complete(r, system, prompt, req.RequestID)
	if err != nil {
		return "", "", err
	}

	advice := strings.TrimSpace(utils.StripFences(response.Text))
	if advice == "" {
		return "", "", &llm.ProviderError{Code: llm.ErrCodeInvalidInput, Message: "empty coach response"}
	}
	return utils.Truncate(advice, maxCoachAdviceLen), models.EvaluationSourceLLM, nil
}

func (h *TeacherHandler) complete(r *http.Request, system, prompt, requestID string) (*llm.Response, error) {
	var response *llm.Response
	err := llm.Retry(r.Context(), h.retryPolicy, func() error {
		var callErr error
		response, callErr = h.provider.Complete(r.Context(), &llm.Request{
			System:    system,
			Prompt:    prompt,
			MaxTokens: 1000,
			RequestID: requestID,
		})
		return callErr
	})
	return response, err
}

func (h *TeacherHandler) promptFailure(w http.ResponseWriter, requestID string, err error) {
	h.logger.Error("Failed to build prompt", zap.Error(err), zap.String("request_id", requestID))
	utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
		Code:    "prompt_error",
		Message: "Failed to build AI prompt",
	})
}

// formatStats renders the metrics the way the coach prompt expects them:
// one compact line of labeled numbers.
func formatStats(m keystroke.Metrics) string {
	return fmt.Sprintf("keys=%d typing=%d backspaces=%d wpm=%d errorRate=%.2f longPauses=%d rapidBursts=%d avgGapMs=%.0f",
		m.TotalKeys, m.TypingKeys, m.Backspaces, m.WPM, m.ErrorRate, m.LongPauses, m.RapidBursts, m.AverageGapMs)
}

func normalizeLecture(raw map[string]interface{}, defaultTitle string) *models.LectureContent {
	lecture := &models.LectureContent{
		Title:        strField(raw, "title", defaultTitle),
		Introduction: strField(raw, "introduction", fmt.Sprintf("Welcome to the lesson on %s.", defaultTitle)),
		Concepts:     strSlice(raw, "concepts"),
		KeyPoints:    strSlice(raw, "keyPoints"),
	}

	if items, ok := raw["examples"].([]interface{}); ok {
		for _, item := range items {
			entry, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			lecture.Examples = append(lecture.Examples, models.LectureExample{
				Title:       strField(entry, "title", "Example"),
				Code:        strField(entry, "code", ""),
				Explanation: strField(entry, "explanation", ""),
			})
		}
	}

	if len(lecture.Concepts) == 0 {
		lecture.Concepts = []string{defaultTitle}
	}
	if len(lecture.KeyPoints) == 0 {
		lecture.KeyPoints = []string{fmt.Sprintf("Practice %s until it feels natural.", defaultTitle)}
	}
	return lecture
}

// fallbackLecture is the deterministic lecture used when the LLM path is
// unavailable. It is intentionally generic: real content comes from the
// model, this just keeps the lesson page functional.
func fallbackLecture(title, description string) *models.LectureContent {
	if description == "" {
		description = fmt.Sprintf("This lesson covers %s.", title)
	}
	return &models.LectureContent{
		Title:        title,
		Introduction: fmt.Sprintf("Welcome to the lesson on %s. %s", title, description),
		Concepts: []string{
			fmt.Sprintf("What %s means in practice", title),
			"Reading the starter code before changing it",
			"Making one small change and running it",
			"Reading error messages top to bottom",
			"Checking your output against the expected output",
		},
		Examples: []models.LectureExample{
			{
				Title:       "Start from the starter code",
				Code:        "# Run the starter code first, then change one thing at a time.",
				Explanation: "Small steps make it obvious which change broke or fixed the program.",
			},
		},
		KeyPoints: []string{
			fmt.Sprintf("Focus on the core idea of %s before optimizing.", title),
			"Run your code often.",
			"Compare your output to the expected output character by character.",
			"Error messages tell you the line to look at first.",
			"Ask the teacher chat when you are stuck for more than a few minutes.",
		},
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
