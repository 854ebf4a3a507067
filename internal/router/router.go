package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"aiguard-backend/internal/handlers"
	"aiguard-backend/internal/middleware"
	"aiguard-backend/internal/websocket"
)

type Handlers struct {
	Config *handlers.ConfigHandler
	Models *handlers.ModelsHandler
	Chat   *handlers.ChatHandler
	Scan   *handlers.ScanHandler
	Health *handlers.HealthHandler
	Index  http.HandlerFunc
}

func New(jwtAuth *middleware.JWTAuth, h Handlers, wsHub *websocket.Hub, frontendURL string) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	r.Get("/", h.Index)
	r.Get("/healthz", h.Health.Health)

	r.Route("/api", func(r chi.Router) {

		// ──── Settings ────
		r.Get("/config", h.Config.Get)
		r.With(jwtAuth.RequireAdmin).Post("/config", h.Config.Update)

		r.Get("/ollama/models", h.Models.List)

		// ──── Mediation ────
		r.Post("/chat", h.Chat.Chat)
		r.Post("/scan/file", h.Scan.Upload)

		// ──── Fixed samples ────
		r.Route("/test", func(r chi.Router) {
			r.Post("/hello", h.Scan.Hello)
			r.Post("/eicar", h.Scan.EICAR)
			r.Post("/injection", h.Scan.Injection)
		})

		// ──── Activity feed ────
		r.With(jwtAuth.RequireAdmin).Get("/events", wsHub.HandleWebSocket)
	})

	return r
}
