package http

import (
	"net/http"

	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/internal/dashboard/service"
	"financial-news-ai/pkg/logger"

	"github.com/labstack/echo/v4"
)

// NewsHandler serves the news feed.
type NewsHandler struct {
	feedService     service.FeedService
	analysisService service.AnalysisService
	logger          *logger.Logger
}

// NewNewsHandler creates a new NewsHandler.
func NewNewsHandler(feedService service.FeedService, analysisService service.AnalysisService, logger *logger.Logger) *NewsHandler {
	return &NewsHandler{feedService: feedService, analysisService: analysisService, logger: logger}
}

// RegisterRoutes registers the news routes to the Echo group.
func (h *NewsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListNews)
	g.GET("/:id", h.GetNews)
	g.GET("/:id/sentiment", h.GetSentiment)
}

// ListNews godoc
// @Summary List news
// @Description Filtered feed in catalog order. Query matches company or ticker, case-insensitively.
// @Tags news
// @Produce  json
// @Security BearerAuth
// @Param   q         query   string  false  "Company or ticker search"
// @Param   halal     query   bool    false  "Only halal-compliant stocks"
// @Param   category  query   string  false  "all, earnings, market or dividends"
// @Success 200 {object} dto.FeedResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.UnauthorizedResponse
// @Router /news [get]
func (h *NewsHandler) ListNews(c echo.Context) error {
	var req dto.FeedRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters"})
	}

	resp, err := h.feedService.ListNews(c.Request().Context(), req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetNews godoc
// @Summary Get a news item
// @Tags news
// @Produce  json
// @Security BearerAuth
// @Param   id  path    string true    "News ID"
// @Success 200 {object} entity.NewsItem
// @Failure 401 {object} dto.UnauthorizedResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /news/{id} [get]
func (h *NewsHandler) GetNews(c echo.Context) error {
	item, err := h.feedService.GetNews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, item)
}

// GetSentiment godoc
// @Summary Analyze a headline now
// @Description Classifies the headline without the card delay. Uses the remote provider when configured, with local fallback.
// @Tags news
// @Produce  json
// @Security BearerAuth
// @Param   id  path    string true    "News ID"
// @Success 200 {object} entity.SentimentAnalysis
// @Failure 401 {object} dto.UnauthorizedResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /news/{id}/sentiment [get]
func (h *NewsHandler) GetSentiment(c echo.Context) error {
	item, err := h.feedService.GetNews(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, h.analysisService.Analyze(c.Request().Context(), *item))
}
