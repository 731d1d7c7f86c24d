package routers

import (
	"codetutor/ai/internal/handlers"
	"codetutor/ai/internal/middleware"
	"codetutor/ai/internal/models"

	"github.com/go-chi/chi/v5"
)

// AIRoutes mounts the grading, teaching and question-generation surface.
// History reads live under the same /submissions subtree, so they are
// registered here too.
func AIRoutes(router *chi.Mux, gradeHandler *handlers.GradeHandler, teacherHandler *handlers.TeacherHandler, questionHandler *handlers.QuestionHandler, historyHandler *handlers.HistoryHandler) {
	router.Route("/api/v1/submissions", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.GradeRequest]()).Post("/grade", gradeHandler.GradeHandler)
		r.Get("/history", historyHandler.ListHandler)
		r.Get("/stats", historyHandler.StatsHandler)
	})

	router.Route("/api/v1/teacher", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.ChatRequest]()).Post("/chat", teacherHandler.ChatHandler)
		r.With(middleware.ValidateRequest[*models.LectureRequest]()).Post("/lecture", teacherHandler.LectureHandler)
		r.With(middleware.ValidateRequest[*models.CoachRequest]()).Post("/keystroke-coach", teacherHandler.CoachHandler)
	})

	router.Route("/api/v1/questions", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.QuestionGenRequest]()).Post("/generate", questionHandler.GenerateHandler)
	})
}

// SessionRoutes mounts the keystroke recording session surface.
func SessionRoutes(router *chi.Mux, sessionHandler *handlers.SessionHandler) {
	router.Route("/api/v1/sessions/{id}/keystrokes", func(r chi.Router) {
		r.With(middleware.ValidateRequest[*models.IngestRequest]()).Post("/", sessionHandler.IngestHandler)
		r.Post("/start", sessionHandler.StartHandler)
		r.Post("/stop", sessionHandler.StopHandler)
		r.Post("/clear", sessionHandler.ClearHandler)
		r.Get("/metrics", sessionHandler.MetricsHandler)
	})
}
