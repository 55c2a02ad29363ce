package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"classpulse-backend/internal/handlers"
	"classpulse-backend/internal/middleware"
	"classpulse-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	classroomHandler *handlers.ClassroomHandler,
	sessionHandler *handlers.SessionHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})

		// ──── Classroom Routes ────
		r.Route("/classrooms", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/subjects", classroomHandler.ListSubjects)
			r.Post("/subjects", classroomHandler.CreateSubject)
			r.Get("/sections", classroomHandler.ListSections)
			r.Post("/sections", classroomHandler.CreateSection)
		})

		// ──── Session Routes ────
		r.Route("/sessions", func(r chi.Router) {
			// Sample ingestion is open to the detector script; a valid active
			// session id is the trust boundary.
			r.Post("/{id}/log", sessionHandler.Log)

			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/start", sessionHandler.Start)
				r.Get("/active", sessionHandler.Active)
				r.Post("/{id}/stop", sessionHandler.Stop)
				r.Delete("/{id}", sessionHandler.Delete)
				r.Get("/{id}/metrics", sessionHandler.Metrics)
				r.Put("/alerts/{id}/read", sessionHandler.MarkAlertRead)
			})
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
