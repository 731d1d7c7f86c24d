package evaluation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"codetutor/ai/internal/heuristic"
	"codetutor/ai/internal/lessons"
	"codetutor/ai/internal/llm"
	"codetutor/ai/internal/models"
	"codetutor/ai/internal/prompts"
)

// Outcome is one finished evaluation plus where it came from, for
// persistence and metrics.
type Outcome struct {
	Result *models.EvaluationResult
	Source string // models.EvaluationSourceLLM | models.EvaluationSourceHeuristic
	Prompt string
}

// Evaluator orchestrates one submission: it attempts the LLM grading path
// and transparently substitutes the heuristic generator on any expected
// failure, so callers always receive a well-formed result. Expected failure
// modes (missing credential, transport error, unparseable output, schema
// violation) never surface as errors.
type Evaluator struct {
	provider     llm.Provider // nil when no credential is configured
	prompts      prompts.PromptProvider
	catalog      *lessons.Catalog
	retryPolicy  llm.RetryPolicy
	logger       *zap.Logger
	newGenerator func() *heuristic.Generator
}

func NewEvaluator(provider llm.Provider, promptManager prompts.PromptProvider, catalog *lessons.Catalog, logger *zap.Logger) *Evaluator {
	return &Evaluator{
		provider:     provider,
		prompts:      promptManager,
		catalog:      catalog,
		retryPolicy:  llm.DefaultRetryPolicy,
		logger:       logger,
		newGenerator: heuristic.NewTimeSeeded,
	}
}

// SetGeneratorFactory overrides the fallback generator source. Tests use it
// to pin the random seed.
func (e *Evaluator) SetGeneratorFactory(factory func() *heuristic.Generator) {
	e.newGenerator = factory
}

// SetRetryPolicy overrides the upstream retry policy.
func (e *Evaluator) SetRetryPolicy(policy llm.RetryPolicy) {
	e.retryPolicy = policy
}

// Evaluate grades one submission. The returned outcome is always complete:
// every numeric field is in [0,100] and feedback is non-empty.
func (e *Evaluator) Evaluate(ctx context.Context, req *models.GradeRequest) *Outcome {
	lesson := e.lookupLesson(req)

	prompt, response, err := e.evaluateRemote(ctx, req)
	if err != nil {
		e.logger.Warn("LLM evaluation unavailable, using heuristic fallback",
			zap.String("submission_id", req.SubmissionID),
			zap.Error(err))
		return e.fallback(req, lesson, prompt)
	}

	raw, err := ExtractJSON(response.Text)
	if err != nil {
		e.logger.Warn("LLM response not parseable, using heuristic fallback",
			zap.String("submission_id", req.SubmissionID),
			zap.Error(err))
		return e.fallback(req, lesson, prompt)
	}

	result, err := normalizeResult(raw, strings.TrimSpace(req.Transcript) != "")
	if err != nil {
		e.logger.Warn("LLM response failed schema validation, using heuristic fallback",
			zap.String("submission_id", req.SubmissionID),
			zap.Error(err))
		return e.fallback(req, lesson, prompt)
	}

	e.finalize(result, req)
	return &Outcome{Result: result, Source: models.EvaluationSourceLLM, Prompt: prompt}
}

func (e *Evaluator) evaluateRemote(ctx context.Context, req *models.GradeRequest) (string, *llm.Response, error) {
	if e.provider == nil {
		return "", nil, &llm.ProviderError{
			Code:    llm.ErrCodeAPIKey,
			Message: "no LLM credential configured",
		}
	}

	data := map[string]string{
		"LessonTitle":       req.LessonTitle,
		"LessonDifficulty":  req.LessonDifficulty,
		"LessonCategory":    req.LessonCategory,
		"Code":              orPlaceholder(req.Code, "(none provided)"),
		"TranscriptSection": transcriptSection(req.Transcript),
	}

	system, err := e.prompts.BuildSystem("grade", data)
	if err != nil {
		return "", nil, err
	}
	prompt, err := e.prompts.BuildPrompt("grade", "default", data)
	if err != nil {
		return "", nil, err
	}

	var response *llm.Response
	err = llm.Retry(ctx, e.retryPolicy, func() error {
		var callErr error
		response, callErr = e.provider.Complete(ctx, &llm.Request{
			System:    system,
			Prompt:    prompt,
			MaxTokens: 1000,
			RequestID: req.RequestID,
		})
		return callErr
	})
	if err != nil {
		return prompt, nil, err
	}
	return prompt, response, nil
}

func (e *Evaluator) fallback(req *models.GradeRequest, lesson *lessons.Lesson, prompt string) *Outcome {
	result := e.newGenerator().Evaluate(heuristic.Input{
		Code:       req.Code,
		Transcript: req.Transcript,
		Lesson:     lesson,
	})
	e.finalize(result, req)
	return &Outcome{Result: result, Source: models.EvaluationSourceHeuristic, Prompt: prompt}
}

func (e *Evaluator) lookupLesson(req *models.GradeRequest) *lessons.Lesson {
	if e.catalog == nil {
		return nil
	}
	if lesson := e.catalog.ByID(req.LessonID); lesson != nil {
		return lesson
	}
	return e.catalog.ByTitle(req.LessonTitle)
}

func (e *Evaluator) finalize(result *models.EvaluationResult, req *models.GradeRequest) {
	if result.ID == "" {
		result.ID = uuid.New().String()
	}
	result.SubmissionID = req.SubmissionID
	result.CreatedAt = time.Now().UTC().Format(time.RFC3339)
}

func transcriptSection(transcript string) string {
	if strings.TrimSpace(transcript) == "" {
		return ""
	}
	return "Spoken explanation:\n" + transcript
}

func orPlaceholder(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
