package http

import (
	"financial-news-ai/internal/dashboard/service"
	"financial-news-ai/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Services groups what the HTTP layer needs.
type Services struct {
	Auth     service.AuthService
	Feed     service.FeedService
	Analysis service.AnalysisService
	Cards    service.CardService
}

// NewRouter builds the echo instance with every API route under /api/v1.
func NewRouter(svc Services, cookieName string, checks map[string]HealthCheck, log *logger.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(RequestLogger(log))

	e.GET("/health", NewHealthHandler(checks, log).Health)

	apiV1 := e.Group("/api/v1")
	requireSession := SessionMiddleware(svc.Auth, cookieName, log)

	authHandler := NewAuthHandler(svc.Auth, cookieName, log)
	authGroup := apiV1.Group("/auth")
	authHandler.RegisterRoutes(authGroup)
	authHandler.RegisterSessionRoutes(apiV1.Group("/auth", requireSession))

	newsHandler := NewNewsHandler(svc.Feed, svc.Analysis, log)
	newsHandler.RegisterRoutes(apiV1.Group("/news", requireSession))

	cardHandler := NewCardHandler(svc.Cards, log)
	cardHandler.RegisterRoutes(apiV1.Group("/cards", requireSession))
	cardHandler.RegisterFavoriteRoutes(apiV1.Group("/favorites", requireSession))

	return e
}
