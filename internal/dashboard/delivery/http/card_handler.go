package http

import (
	"net/http"

	"financial-news-ai/internal/dashboard/service"
	"financial-news-ai/pkg/logger"

	"github.com/labstack/echo/v4"
)

// CardHandler handles card actions and favorites for the current session.
type CardHandler struct {
	cardService service.CardService
	logger      *logger.Logger
}

// NewCardHandler creates a new CardHandler.
func NewCardHandler(cardService service.CardService, logger *logger.Logger) *CardHandler {
	return &CardHandler{cardService: cardService, logger: logger}
}

// RegisterRoutes registers the card routes to the Echo group.
func (h *CardHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/:id", h.GetCard)
	g.POST("/:id/expand", h.Expand)
	g.POST("/:id/collapse", h.Collapse)
	g.POST("/:id/analyze", h.Analyze)
}

// RegisterFavoriteRoutes registers the favorites routes to the Echo group.
func (h *CardHandler) RegisterFavoriteRoutes(g *echo.Group) {
	g.GET("", h.ListFavorites)
	g.POST("/:ticker", h.ToggleFavorite)
}

// GetCard godoc
// @Summary Get card state
// @Description Returns expansion, analysis status (idle, pending, ready) and the cached analysis.
// @Tags cards
// @Produce  json
// @Security BearerAuth
// @Param   id  path    string true    "News ID"
// @Success 200 {object} dto.CardResponse
// @Failure 401 {object} dto.UnauthorizedResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /cards/{id} [get]
func (h *CardHandler) GetCard(c echo.Context) error {
	card, err := h.cardService.GetCard(c.Request().Context(), sessionFrom(c).ID, c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, card)
}

// Expand godoc
// @Summary Expand a card
// @Description Starts an analysis unless one is cached or already pending.
// @Tags cards
// @Produce  json
// @Security BearerAuth
// @Param   id  path    string true    "News ID"
// @Success 202 {object} dto.CardResponse
// @Failure 401 {object} dto.UnauthorizedResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /cards/{id}/expand [post]
func (h *CardHandler) Expand(c echo.Context) error {
	card, err := h.cardService.Expand(c.Request().Context(), sessionFrom(c).ID, c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusAccepted, card)
}

// Collapse godoc
// @Summary Collapse a card
// @Description Cancels a pending analysis and discards the cached one.
// @Tags cards
// @Produce  json
// @Security BearerAuth
// @Param   id  path    string true    "News ID"
// @Success 200 {object} dto.CardResponse
// @Failure 401 {object} dto.UnauthorizedResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /cards/{id}/collapse [post]
func (h *CardHandler) Collapse(c echo.Context) error {
	card, err := h.cardService.Collapse(c.Request().Context(), sessionFrom(c).ID, c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, card)
}

// Analyze godoc
// @Summary Generate or retry an analysis
// @Tags cards
// @Produce  json
// @Security BearerAuth
// @Param   id  path    string true    "News ID"
// @Success 202 {object} dto.CardResponse
// @Failure 401 {object} dto.UnauthorizedResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /cards/{id}/analyze [post]
func (h *CardHandler) Analyze(c echo.Context) error {
	card, err := h.cardService.Analyze(c.Request().Context(), sessionFrom(c).ID, c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusAccepted, card)
}

// ListFavorites godoc
// @Summary List favorite tickers
// @Tags favorites
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} dto.FavoritesResponse
// @Failure 401 {object} dto.UnauthorizedResponse
// @Router /favorites [get]
func (h *CardHandler) ListFavorites(c echo.Context) error {
	return c.JSON(http.StatusOK, h.cardService.ListFavorites(c.Request().Context(), sessionFrom(c).ID))
}

// ToggleFavorite godoc
// @Summary Toggle a favorite ticker
// @Tags favorites
// @Produce  json
// @Security BearerAuth
// @Param   ticker  path    string true    "Ticker"
// @Success 200 {object} dto.FavoriteResponse
// @Failure 401 {object} dto.UnauthorizedResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /favorites/{ticker} [post]
func (h *CardHandler) ToggleFavorite(c echo.Context) error {
	fav, err := h.cardService.ToggleFavorite(c.Request().Context(), sessionFrom(c).ID, c.Param("ticker"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, fav)
}
