package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"codetutor/ai/internal/history"
	"codetutor/ai/internal/models"
	"codetutor/ai/internal/utils"
)

const defaultHistoryLimit = 20

// HistoryHandler serves read access to persisted evaluations. When the
// database is down the store is nil and both endpoints answer 503.
type HistoryHandler struct {
	store  *history.Store
	logger *zap.Logger
}

func NewHistoryHandler(store *history.Store, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{store: store, logger: logger}
}

// ListHandler returns recent evaluations, optionally filtered to one
// submission via ?submissionId=.
func (h *HistoryHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.unavailable(w)
		return
	}

	var (
		records []models.EvaluationRecord
		err     error
	)
	if submissionID := r.URL.Query().Get("submissionId"); submissionID != "" {
		records, err = h.store.BySubmission(submissionID)
	} else {
		records, err = h.store.Recent(queryLimit(r))
	}
	if err != nil {
		h.logger.Error("Failed to read evaluation history", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "history_error",
			Message: "Failed to read evaluation history",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.APIResponse{
		Success: true,
		Data:    map[string]interface{}{"evaluations": records, "count": len(records)},
	})
}

func (h *HistoryHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.unavailable(w)
		return
	}

	stats, err := h.store.Stats()
	if err != nil {
		h.logger.Error("Failed to compute evaluation stats", zap.Error(err))
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "history_error",
			Message: "Failed to compute evaluation stats",
		})
		return
	}

	utils.JSON(w, http.StatusOK, models.APIResponse{
		Success: true,
		Data:    stats,
	})
}

func (h *HistoryHandler) unavailable(w http.ResponseWriter) {
	utils.JSON(w, http.StatusServiceUnavailable, models.ErrorResponse{
		Code:    "history_unavailable",
		Message: "Evaluation history storage is not available",
	})
}

func queryLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultHistoryLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 100 {
		return defaultHistoryLimit
	}
	return limit
}
