package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"codetutor/ai/internal/keystroke"
	"codetutor/ai/internal/middleware"
	"codetutor/ai/internal/models"
	"codetutor/ai/internal/utils"
)

// SessionHandler manages server-side keystroke recording sessions. Each
// session is identified by the client-chosen ID in the URL; recorders are
// created lazily and expire from the registry after a TTL.
type SessionHandler struct {
	registry *keystroke.Registry
	logger   *zap.Logger
}

func NewSessionHandler(registry *keystroke.Registry, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{registry: registry, logger: logger}
}

func sessionID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// IngestHandler appends a batch of events to the session's recorder.
// Events arriving while the session is not tracking are dropped; the
// response reports the tracking flag so clients can tell. The accepted
// count is what the recorder actually kept, which can be less than the
// batch when events are filtered or the buffer rolls over.
func (h *SessionHandler) IngestHandler(w http.ResponseWriter, r *http.Request) {
	req := middleware.GetValidatedRequest[*models.IngestRequest](r)

	id := sessionID(r)
	rec := h.registry.Get(id)

	accepted := rec.Append(req.Events...)

	utils.JSON(w, http.StatusOK, models.APIResponse{
		Success: true,
		Data: models.SessionStatus{
			SessionID: id,
			Tracking:  rec.Tracking(),
			Buffered:  len(rec.Events()),
			Accepted:  accepted,
		},
	})
}

func (h *SessionHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	rec := h.registry.Get(id)
	rec.Start()

	h.logger.Info("Keystroke session started", zap.String("session_id", id))
	h.writeStatus(w, id, rec)
}

func (h *SessionHandler) StopHandler(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	rec := h.registry.Get(id)
	rec.Stop()

	h.logger.Info("Keystroke session stopped", zap.String("session_id", id))
	h.writeStatus(w, id, rec)
}

func (h *SessionHandler) ClearHandler(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	rec := h.registry.Get(id)
	rec.Clear()

	h.writeStatus(w, id, rec)
}

// MetricsHandler analyzes the session's current buffer.
func (h *SessionHandler) MetricsHandler(w http.ResponseWriter, r *http.Request) {
	id := sessionID(r)
	rec := h.registry.Get(id)

	utils.JSON(w, http.StatusOK, models.APIResponse{
		Success: true,
		Data:    rec.Metrics(keystroke.AnalyzerOptions{}),
	})
}

func (h *SessionHandler) writeStatus(w http.ResponseWriter, id string, rec *keystroke.Recorder) {
	utils.JSON(w, http.StatusOK, models.APIResponse{
		Success: true,
		Data: models.SessionStatus{
			SessionID: id,
			Tracking:  rec.Tracking(),
			Buffered:  len(rec.Events()),
		},
	})
}
