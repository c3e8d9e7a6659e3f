package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/provaia/knowledge-backend/app"
	"github.com/provaia/knowledge-backend/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	questionHandler := handlers.NewQuestionHandler(deps.QA, deps.Index, deps.Logger)
	chatHandler := handlers.NewChatHandler(deps.QA, deps.Logger)
	documentHandler := handlers.NewDocumentHandler(deps.Store, deps.Index, deps.Logger)
	faqHandler := handlers.NewFAQHandler(deps.FAQ, deps.Logger)
	quizHandler := handlers.NewQuizHandler(deps.Quiz, deps.Logger)
	usageHandler := handlers.NewUsageHandler(deps.UsageRepo, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.Logger)

	// Health check endpoints
	r.Get("/healthz", healthHandler.HandleHealth)
	r.Get("/readyz", healthHandler.HandleReadiness)

	// Streaming holds the connection open for the lifetime of the answer,
	// so it stays outside the request timeout group.
	r.Post("/api/chat/message/stream", chatHandler.HandleStream)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		// Question answering
		r.Post("/question", questionHandler.HandleQuestion)
		r.Get("/refresh-knowledge", questionHandler.HandleRefreshKnowledge)

		// Chat sessions
		r.Route("/api/chat", func(r chi.Router) {
			r.Post("/message", chatHandler.HandleMessage)
			r.Get("/history/{session_id}", chatHandler.HandleHistory)
		})

		// Knowledge base documents
		r.Route("/documents", func(r chi.Router) {
			r.Get("/", documentHandler.HandleList)
			r.Post("/", documentHandler.HandleCreate)
			r.Delete("/{filename}", documentHandler.HandleDelete)
		})

		// FAQ generation
		r.Route("/api/faq", func(r chi.Router) {
			r.Post("/", faqHandler.HandleGenerate)
			r.Get("/", faqHandler.HandleList)
			r.Delete("/", faqHandler.HandleDeleteAll)
			r.Delete("/{id}", faqHandler.HandleDelete)
		})

		// Quiz generation and answering
		r.Route("/api/quiz", func(r chi.Router) {
			r.Post("/", quizHandler.HandleGenerate)
			r.Get("/", quizHandler.HandleList)
			r.Get("/topic/{topic}", quizHandler.HandleListByTopic)
			r.Post("/answer", quizHandler.HandleAnswer)
		})

		// Usage analytics
		r.Get("/api/usage/stats", usageHandler.HandleStats)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}
