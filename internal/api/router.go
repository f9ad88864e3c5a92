package api

import (
	"database/sql"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/edgechat/backend/internal/api/handler"
	"github.com/edgechat/backend/internal/api/middleware"
	"github.com/edgechat/backend/internal/core/ports"
	"github.com/edgechat/backend/internal/core/token"
)

// Dependencies carries everything the router needs, injected explicitly —
// no ambient globals.
type Dependencies struct {
	Logger zerolog.Logger

	Postgres *sql.DB
	Mongo    *mongo.Database
	Redis    *redis.Client

	Codec   *token.Codec
	Counter ports.CounterStore

	AuthService  ports.AuthService
	ChatService  ports.ChatService
	UsageService ports.UsageService
	LLM          ports.LLMClient

	UsageRecorder ports.UsageRecorder

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// NewRouter builds and returns the Echo instance with all routes registered.
//
// Middleware order is load-bearing: RequestID must wrap everything so the
// id header is on every response; CORS and Recover sit inside it; the rate
// limiter must reject before dispatch so over-limit requests never reach
// handlers or accrue usage; the usage logger wraps dispatch so accounting
// reflects exactly the requests that ran.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(middleware.RequestID())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("edgechat"))
	e.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Store:    deps.Counter,
		Requests: deps.RateLimitRequests,
		Window:   deps.RateLimitWindow,
		Logger:   deps.Logger,
	}))
	e.Use(middleware.UsageLog(deps.Codec, deps.UsageRecorder))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.AuthService)
	chatHandler := handler.NewChatHandler(deps.ChatService)
	aiHandler := handler.NewAIHandler(deps.LLM)
	usageHandler := handler.NewUsageHandler(deps.UsageService)

	guard := middleware.Auth(deps.Codec, deps.AuthService)

	// --- API routes ---
	v1 := e.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", authHandler.Me, guard)

	chat := v1.Group("/chat", guard)
	chat.POST("/conversations", chatHandler.CreateConversation)
	chat.GET("/conversations", chatHandler.ListConversations)
	chat.POST("/conversations/:id/messages", chatHandler.SendMessage)
	chat.GET("/conversations/:id/messages", chatHandler.GetMessages)
	chat.DELETE("/conversations/:id", chatHandler.DeleteConversation)

	v1.POST("/ai/complete", aiHandler.Complete)
	v1.GET("/usage/me", usageHandler.Me, guard)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Postgres, deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
