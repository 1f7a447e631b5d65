// Package router wires the HTTP surface of the scheduling assistant.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bookwise-ai/bookwise/internal/http/handlers"
	httpmiddleware "github.com/bookwise-ai/bookwise/internal/http/middleware"
	"github.com/bookwise-ai/bookwise/internal/webchat"
	"github.com/bookwise-ai/bookwise/pkg/logging"
)

// Config holds router configuration. Chat, Book and Health are required;
// the rest are optional surfaces.
type Config struct {
	Logger             *logging.Logger
	Chat               *handlers.ChatHandler
	Book               *handlers.BookHandler
	Health             *handlers.HealthHandler
	WebChat            *webchat.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// Chat rate limiting; disabled when RateLimitPerSec <= 0.
	RateLimitPerSec float64
	RateLimitBurst  int
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/", cfg.Health.HandleRoot)
	r.Get("/health", cfg.Health.HandleHealth)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.RateLimitPerSec > 0 {
			api.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSec, cfg.RateLimitBurst))
		}
		api.Post("/chat", cfg.Chat.HandleChat)
		api.Get("/chat/history", cfg.Chat.HandleHistory)
		api.Post("/book", cfg.Book.HandleBook)
		api.Get("/bookings", cfg.Book.HandleRecentBookings)
	})

	if cfg.WebChat != nil {
		r.Get("/ws", cfg.WebChat.HandleWebSocket)
	}

	return r
}
