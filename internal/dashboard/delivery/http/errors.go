package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/internal/dashboard/service"
	"financial-news-ai/pkg/logger"

	"github.com/labstack/echo/v4"
)

const passwordMismatchMessage = "Passwords do not match"

// respondError maps service errors to status codes. Unknown errors are logged and hidden.
func respondError(c echo.Context, log *logger.Logger, err error) error {
	switch {
	case errors.Is(err, service.ErrPasswordMismatch):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: passwordMismatchMessage})
	case errors.Is(err, service.ErrInvalidForm):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: formMessage(err)})
	case errors.Is(err, service.ErrInvalidCategory):
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrNewsNotFound), errors.Is(err, service.ErrTickerNotFound):
		return c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Not logged in"})
	case errors.Is(err, context.Canceled):
		return c.NoContent(http.StatusRequestTimeout)
	default:
		log.Error("Request failed", logger.ErrorField(err), logger.StringField("path", c.Path()))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
	}
}

// formMessage turns "invalid form: email is required" into "Email is required".
func formMessage(err error) string {
	_, detail, ok := strings.Cut(err.Error(), ": ")
	if !ok || detail == "" {
		return "Please fill in all fields"
	}
	return strings.ToUpper(detail[:1]) + detail[1:]
}
