package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/V4T54L/yapli/internal/adapter/api/handler"
	"github.com/V4T54L/yapli/internal/adapter/api/middleware"
	"github.com/V4T54L/yapli/internal/adapter/metrics"
	"github.com/V4T54L/yapli/internal/domain"
	"github.com/V4T54L/yapli/internal/pkg/config"
)

// Services are the use cases the API router dispatches to.
type Services struct {
	Names      handler.RoomNameChecker
	Rooms      handler.RoomService
	Messages   handler.MessageService
	Auth       handler.Authenticator
	Subscriber domain.MessageSubscriber
}

// NewRouter creates and configures the main HTTP router for the chat API.
func NewRouter(cfg *config.Config, logger *slog.Logger, m *metrics.Metrics, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger, m))
	r.Use(chimw.Recoverer)

	roomHandler := handler.NewRoomHandler(svc.Names, svc.Rooms, logger, m, cfg.MaxBodyBytes)
	messageHandler := handler.NewMessageHandler(svc.Messages, logger, m, cfg.MaxBodyBytes)
	authHandler := handler.NewAuthHandler(svc.Auth, logger, m, cfg.MaxBodyBytes, cfg.JWTExpiry)
	stream := handler.NewRoomStream(svc.Rooms, svc.Subscriber, logger, m, cfg.SSEHeartbeat)
	health := handler.NewHealthHandler(nil, time.Second, logger)

	authMiddleware := middleware.Auth(cfg.JWTSecret, logger)
	checkNameLimit := middleware.RateLimit(middleware.NewRateLimiter(cfg.CheckNameRPS, cfg.CheckNameBurst), logger, m)

	r.Get("/health", health.Live)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	r.Route("/api/rooms", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.With(checkNameLimit).Post("/check-name", roomHandler.CheckName)
			r.Post("/", roomHandler.Create)
			r.Get("/", roomHandler.List)
			r.Delete("/{roomURL}", roomHandler.Delete)
		})

		r.Get("/{roomURL}", roomHandler.Get)
		r.Get("/{roomURL}/messages", messageHandler.List)
		r.Post("/{roomURL}/messages", messageHandler.Post)
		r.Get("/{roomURL}/events", stream.ServeHTTP)
	})

	// Short path used by clients that predate the /api prefix.
	r.With(authMiddleware, checkNameLimit).Post("/check-name", roomHandler.CheckName)

	return r
}
