package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/internal/dashboard/service"
	"financial-news-ai/internal/entity"
	"financial-news-ai/pkg/common"
	"financial-news-ai/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// SessionMiddleware rejects requests without a live session with 401 and a redirect to the entry page.
func SessionMiddleware(authService service.AuthService, cookieName string, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromRequest(c, cookieName)
			session, err := authService.Authenticate(c.Request().Context(), token)
			if err != nil {
				if !errors.Is(err, service.ErrUnauthenticated) {
					log.Error("Failed to authenticate session", logger.ErrorField(err))
				}
				return c.JSON(http.StatusUnauthorized, dto.UnauthorizedResponse{
					Error:    "Not logged in",
					Redirect: common.EntryPagePath,
				})
			}

			c.Set(common.ContextKeySession, session)
			c.Set(common.ContextKeySessionToken, token)
			return next(c)
		}
	}
}

// tokenFromRequest reads a bearer token, falling back to the session cookie.
func tokenFromRequest(c echo.Context, cookieName string) string {
	const prefix = "Bearer "
	if authz := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(authz, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(authz, prefix))
	}
	if cookieName == "" {
		return ""
	}
	if cookie, err := c.Cookie(cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func sessionFrom(c echo.Context) *entity.Session {
	session, _ := c.Get(common.ContextKeySession).(*entity.Session)
	return session
}

// RequestLogger logs every request through zap.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				logger.StringField("method", v.Method),
				logger.StringField("uri", v.URI),
				logger.IntField("status", v.Status),
				logger.DurationField("latency", v.Latency.Round(time.Microsecond)),
				logger.StringField("request_id", v.RequestID),
			}
			if v.Error != nil {
				fields = append(fields, logger.ErrorField(v.Error))
				log.Error("Request failed", fields...)
				return nil
			}
			log.Info("Request handled", fields...)
			return nil
		},
	})
}
