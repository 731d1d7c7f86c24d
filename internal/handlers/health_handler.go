package handlers

import (
	"net/http"

	"codetutor/ai/internal/config"
	"codetutor/ai/internal/history"
	"codetutor/ai/internal/lessons"
	"codetutor/ai/internal/llm"
	"codetutor/ai/internal/prompts"
	"codetutor/ai/internal/utils"
)

type ReadinessCheck struct {
	Status  string `json:"status"` // "ok" | "degraded" | "failed"
	Message string `json:"message,omitempty"`
}

type ReadinessResponse struct {
	Status  string                    `json:"status"`  // "ready" | "not_ready"
	Service string                    `json:"service"` // Service name
	Checks  map[string]ReadinessCheck `json:"checks"`  // Individual check results
}

type HealthHandler struct {
	provider      llm.Provider
	promptManager prompts.PromptProvider
	catalog       *lessons.Catalog
	store         *history.Store
	config        *config.Config
}

func NewHealthHandler(provider llm.Provider, promptManager prompts.PromptProvider, catalog *lessons.Catalog, store *history.Store, cfg *config.Config) *HealthHandler {
	return &HealthHandler{
		provider:      provider,
		promptManager: promptManager,
		catalog:       catalog,
		store:         store,
		config:        cfg,
	}
}

func (handler *HealthHandler) HealthzHandler(writer http.ResponseWriter, request *http.Request) {
	utils.JSON(writer, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "ai-tutor",
		"version": "1.0.0",
	})
}

// ReadyzHandler reports readiness. The LLM provider and the database are
// degraded checks, not failing ones: grading falls back to the heuristic
// path without a provider, and history endpoints alone go dark without
// the database.
func (handler *HealthHandler) ReadyzHandler(writer http.ResponseWriter, request *http.Request) {
	checks := make(map[string]ReadinessCheck)
	allChecksPass := true

	if handler.provider == nil {
		checks["provider"] = ReadinessCheck{
			Status:  "degraded",
			Message: "No LLM credential configured, heuristic fallback active",
		}
	} else {
		checks["provider"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify prompt manager has templates loaded
	if handler.promptManager == nil {
		checks["prompt_manager"] = ReadinessCheck{
			Status:  "failed",
			Message: "Prompt manager not initialized",
		}
		allChecksPass = false
	} else {
		templates := handler.promptManager.GetTemplates()
		if len(templates) == 0 {
			checks["prompt_manager"] = ReadinessCheck{
				Status:  "failed",
				Message: "No prompt templates loaded",
			}
			allChecksPass = false
		} else {
			checks["prompt_manager"] = ReadinessCheck{
				Status: "ok",
			}
		}
	}

	// verify lesson catalog is loaded
	if handler.catalog == nil || len(handler.catalog.All()) == 0 {
		checks["lesson_catalog"] = ReadinessCheck{
			Status:  "failed",
			Message: "No lessons loaded",
		}
		allChecksPass = false
	} else {
		checks["lesson_catalog"] = ReadinessCheck{
			Status: "ok",
		}
	}

	if handler.store == nil {
		checks["database"] = ReadinessCheck{
			Status:  "degraded",
			Message: "Database unavailable, history endpoints disabled",
		}
	} else {
		checks["database"] = ReadinessCheck{
			Status: "ok",
		}
	}

	// verify configuration is valid
	if handler.config == nil {
		checks["configuration"] = ReadinessCheck{
			Status:  "failed",
			Message: "Configuration not loaded",
		}
		allChecksPass = false
	} else {
		checks["configuration"] = ReadinessCheck{
			Status: "ok",
		}
	}

	response := ReadinessResponse{
		Service: "ai-tutor",
		Checks:  checks,
	}

	if allChecksPass {
		response.Status = "ready"
		utils.JSON(writer, http.StatusOK, response)
	} else {
		response.Status = "not_ready"
		utils.JSON(writer, http.StatusServiceUnavailable, response)
	}
}
