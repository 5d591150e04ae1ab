package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/labease/labease-platform/internal/booking"
	"github.com/labease/labease-platform/internal/contact"
	"github.com/labease/labease-platform/internal/dialogue"
	httpmiddleware "github.com/labease/labease-platform/internal/http/middleware"
	"github.com/labease/labease-platform/internal/webchat"
	"github.com/labease/labease-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger         *logging.Logger
	BookingHandler *booking.Handler
	ChatHandler    *dialogue.Handler
	ContactHandler *contact.Handler
	WebChatHandler *webchat.Handler
	MetricsHandler http.Handler

	CORSAllowedOrigins []string
	PortalJWTSecret    string

	// ChatRateLimit throttles the chat endpoints per client IP.
	// Zero disables it.
	ChatRateLimit float64
	ChatRateBurst int
}

// New creates a new Chi router with all routes configured
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

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api", func(api chi.Router) {
		if cfg.ChatHandler != nil {
			api.Group(func(chat chi.Router) {
				if cfg.ChatRateLimit > 0 {
					chat.Use(httpmiddleware.RateLimit(cfg.ChatRateLimit, cfg.ChatRateBurst))
				}
				chat.Post("/chat", cfg.ChatHandler.Chat)
				chat.Get("/chat/history", cfg.ChatHandler.History)
				chat.Post("/recommendations", cfg.ChatHandler.Recommendations)
			})
		}

		if cfg.BookingHandler != nil {
			api.Route("/bookings", func(b chi.Router) {
				b.Post("/", cfg.BookingHandler.Create)
				b.Get("/status", cfg.BookingHandler.GetStatus)
				b.Patch("/{code}", cfg.BookingHandler.Update)
				b.Post("/{code}/cancel", cfg.BookingHandler.Cancel)
			})
		}

		if cfg.ContactHandler != nil {
			api.Post("/contact", cfg.ContactHandler.Submit)
		}
	})

	if cfg.WebChatHandler != nil {
		r.Get("/ws/chat", cfg.WebChatHandler.HandleWebSocket)
	}

	// Lab portal, scoped to the authenticated lab.
	if cfg.PortalJWTSecret != "" {
		r.Route("/portal", func(portal chi.Router) {
			portal.Use(httpmiddleware.LabJWT(cfg.PortalJWTSecret))
			if cfg.BookingHandler != nil {
				portal.Get("/bookings", cfg.BookingHandler.ListForLab)
				portal.Post("/bookings/{code}/status", cfg.BookingHandler.SetStatus)
			}
			if cfg.ContactHandler != nil {
				portal.Get("/messages", cfg.ContactHandler.ListForLab)
				portal.Delete("/messages/{id}", cfg.ContactHandler.DeleteForLab)
			}
		})
	}

	return r
}
