package http

import (
	"net/http"
	"time"

	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/internal/dashboard/service"
	"financial-news-ai/pkg/common"
	"financial-news-ai/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AuthHandler handles the login, signup, password reset and session endpoints.
type AuthHandler struct {
	authService service.AuthService
	cookieName  string
	logger      *logger.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, cookieName string, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, cookieName: cookieName, logger: logger}
}

// RegisterRoutes registers the public auth routes.
func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/login", h.Login)
	g.POST("/signup", h.Signup)
	g.POST("/password-reset", h.ResetPassword)
}

// RegisterSessionRoutes registers the auth routes that need a session.
func (h *AuthHandler) RegisterSessionRoutes(g *echo.Group) {
	g.POST("/logout", h.Logout)
	g.GET("/me", h.Me)
}

// Login godoc
// @Summary Log in
// @Description Any non-empty email and password succeed. The name is the local part of the email.
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body  body    dto.LoginRequest   true    "Login form"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	resp, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.setSessionCookie(c, resp)
	return c.JSON(http.StatusOK, resp)
}

// Signup godoc
// @Summary Create an account
// @Description Password and confirmation must match. An empty name becomes "User".
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body  body    dto.SignupRequest   true    "Signup form"
// @Success 201 {object} dto.AuthResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req dto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	resp, err := h.authService.Signup(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	h.setSessionCookie(c, resp)
	return c.JSON(http.StatusCreated, resp)
}

// ResetPassword godoc
// @Summary Reset password
// @Description Checks that both passwords match. Nothing is stored.
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body  body    dto.PasswordResetRequest   true    "Reset form"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /auth/password-reset [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req dto.PasswordResetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request payload"})
	}

	resp, err := h.authService.ResetPassword(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Logout godoc
// @Summary Log out
// @Description Destroys the session and its card state.
// @Tags auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.UnauthorizedResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	token, _ := c.Get(common.ContextKeySessionToken).(string)
	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		return respondError(c, h.logger, err)
	}
	if h.cookieName != "" {
		c.SetCookie(&http.Cookie{
			Name:     h.cookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return c.JSON(http.StatusOK, dto.UserResponse{LoggedIn: false})
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.UnauthorizedResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	session := sessionFrom(c)
	if session == nil {
		return respondError(c, h.logger, service.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, dto.UserResponse{
		LoggedIn: true,
		Name:     session.Name,
		Email:    session.Email,
	})
}

func (h *AuthHandler) setSessionCookie(c echo.Context, resp *dto.AuthResponse) {
	if h.cookieName == "" {
		return
	}
	cookie := &http.Cookie{
		Name:     h.cookieName,
		Value:    resp.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if expires, err := time.Parse(time.RFC3339, resp.ExpiresAt); err == nil {
		cookie.Expires = expires
	}
	c.SetCookie(cookie)
}
