// Package handlers implements the HTTP surface of the tutoring service.
// Handlers assume their request was validated by the middleware layer and
// read it back from the request context.
package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"codetutor/ai/internal/llm"
	"codetutor/ai/internal/models"
	"codetutor/ai/internal/utils"
)

func generateRequestID() string {
	return uuid.New().String()
}

// ensureRequestID generates a request ID if one is not provided
func ensureRequestID(requestID string) string {
	if requestID == "" {
		return generateRequestID()
	}
	return requestID
}

func responseMetadata(requestID, provider, model string) models.ResponseMetadata {
	return models.ResponseMetadata{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
		Provider:  provider,
		Model:     model,
	}
}

// strField reads a string key from decoded JSON, empty or missing values
// fall back to def.
func strField(raw map[string]interface{}, key, def string) string {
	if s, ok := raw[key].(string); ok && s != "" {
		return s
	}
	return def
}

// strSlice reads a string-array key from decoded JSON, skipping entries
// that are not strings.
func strSlice(raw map[string]interface{}, key string) []string {
	items, ok := raw[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

// writeProviderError maps an upstream provider failure to a client status.
// Rate limits and upstream outages keep their own codes so clients can
// back off instead of retrying immediately.
func writeProviderError(w http.ResponseWriter, err error) {
	switch llm.ErrorCode(err) {
	case llm.ErrCodeRateLimit:
		utils.JSON(w, http.StatusTooManyRequests, models.ErrorResponse{
			Code:    "rate_limited",
			Message: "AI provider rate limit exceeded, try again shortly",
		})
	case llm.ErrCodeServiceDown:
		utils.JSON(w, http.StatusBadGateway, models.ErrorResponse{
			Code:    "upstream_unavailable",
			Message: "AI provider is temporarily unavailable",
		})
	case llm.ErrCodeTimeout:
		utils.JSON(w, http.StatusGatewayTimeout, models.ErrorResponse{
			Code:    "upstream_timeout",
			Message: "AI provider did not respond in time",
		})
	case llm.ErrCodeAPIKey:
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "ai_unavailable",
			Message: "AI provider is not configured",
		})
	default:
		utils.JSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Code:    "ai_error",
			Message: "Failed to generate AI response",
		})
	}
}
