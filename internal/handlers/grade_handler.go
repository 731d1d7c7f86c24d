package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"codetutor/ai/internal/evaluation"
	"codetutor/ai/internal/history"
	"codetutor/ai/internal/metrics"
	"codetutor/ai/internal/middleware"
	"codetutor/ai/internal/models"
	"codetutor/ai/internal/utils"
)

// GradeHandler serves submission grading. It always answers 200 with a
// complete evaluation: upstream failures are absorbed by the evaluator's
// fallback path, never surfaced to the client.
type GradeHandler struct {
	evaluator    *evaluation.Evaluator
	store        *history.Store   // nil when the database is unavailable
	metrics      *metrics.Manager // nil in tests
	logger       *zap.Logger
	providerName string
}

func NewGradeHandler(evaluator *evaluation.Evaluator, store *history.Store, m *metrics.Manager, logger *zap.Logger, providerName string) *GradeHandler {
	return &GradeHandler{
		evaluator:    evaluator,
		store:        store,
		metrics:      m,
		logger:       logger,
		providerName: providerName,
	}
}

func (h *GradeHandler) GradeHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.GradeRequest](r)
	req.RequestID = ensureRequestID(req.RequestID)

	outcome := h.evaluator.Evaluate(r.Context(), req)

	if h.metrics != nil {
		h.metrics.CountEvaluation(outcome.Source)
	}

	h.persist(req, outcome)

	h.logger.Info("Submission graded",
		zap.String("request_id", req.RequestID),
		zap.String("submission_id", req.SubmissionID),
		zap.String("source", outcome.Source),
		zap.Int("score", outcome.Result.Score),
		zap.Bool("is_correct", outcome.Result.IsCorrect))

	provider := "heuristic"
	if outcome.Source == models.EvaluationSourceLLM {
		provider = h.providerName
	}

	utils.JSON(w, http.StatusOK, models.APIResponse{
		Success:  true,
		Data:     outcome.Result,
		Metadata: responseMetadata(req.RequestID, provider, ""),
	})
}

// persist stores the outcome for history views and training export. A
// storage failure is logged and otherwise ignored: grading already
// succeeded from the client's point of view.
func (h *GradeHandler) persist(req *models.GradeRequest, outcome *evaluation.Outcome) {
	if h.store == nil {
		return
	}

	record := &models.EvaluationRecord{
		RequestID:        req.RequestID,
		SubmissionID:     req.SubmissionID,
		LessonTitle:      req.LessonTitle,
		LessonDifficulty: req.LessonDifficulty,
		LessonCategory:   req.LessonCategory,
		Prompt:           outcome.Prompt,
		Score:            outcome.Result.Score,
		ConfidenceScore:  outcome.Result.ConfidenceScore,
		IsCorrect:        outcome.Result.IsCorrect,
		Feedback:         outcome.Result.Feedback,
		Source:           outcome.Source,
		GradedAt:         outcome.Result.CreatedAtTime(),
	}

	if err := h.store.Save(record); err != nil {
		h.logger.Error("Failed to persist evaluation record",
			zap.String("request_id", req.RequestID),
			zap.Error(err))
	}
}
