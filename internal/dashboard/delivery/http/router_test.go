package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/internal/dashboard/repository"
	"financial-news-ai/internal/dashboard/service"
	"financial-news-ai/internal/entity"
	"financial-news-ai/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookieName = "authToken"

func newTestRouter(t *testing.T, checks map[string]HealthCheck) *echo.Echo {
	t.Helper()
	log := logger.NewNop()

	feed, err := service.NewFeedService(context.Background(), repository.NewStaticNewsRepository(), time.Minute, log)
	require.NoError(t, err)
	analysis := service.NewAnalysisService(service.NewSentimentClassifier(time.UTC), nil, log)
	cards := service.NewCardService(feed, analysis, 0, time.Minute, log)
	t.Cleanup(cards.Close)
	auth := service.NewAuthService(service.AuthConfig{JWTSecret: "test-secret", TTL: time.Hour},
		repository.NewMemorySessionRepository(time.Minute), cards, log)

	return NewRouter(Services{Auth: auth, Feed: feed, Analysis: analysis, Cards: cards}, testCookieName, checks, log)
}

func doRequest(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, e *echo.Echo) string {
	t.Helper()
	rec := doRequest(e, http.MethodPost, "/api/v1/auth/login", `{"email":"jane@example.com","password":"secret"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRouter_RequiresSession(t *testing.T) {
	e := newTestRouter(t, nil)

	for _, path := range []string{"/api/v1/news", "/api/v1/news/1", "/api/v1/cards/1", "/api/v1/favorites", "/api/v1/auth/me"} {
		rec := doRequest(e, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, dto.UnauthorizedResponse{Error: "Not logged in", Redirect: "/"}, decode[dto.UnauthorizedResponse](t, rec))
	}

	rec := doRequest(e, http.MethodGet, "/api/v1/news", "", "bogus")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_LoginMeLogout(t *testing.T) {
	e := newTestRouter(t, nil)
	token := login(t, e)

	rec := doRequest(e, http.MethodGet, "/api/v1/auth/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.UserResponse{LoggedIn: true, Name: "jane", Email: "jane@example.com"}, decode[dto.UserResponse](t, rec))

	rec = doRequest(e, http.MethodPost, "/api/v1/auth/logout", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), testCookieName+"=")

	rec = doRequest(e, http.MethodGet, "/api/v1/auth/me", "", token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_LoginSetsCookie(t *testing.T) {
	e := newTestRouter(t, nil)

	rec := doRequest(e, http.MethodPost, "/api/v1/auth/login", `{"email":"jane@example.com","password":"secret"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_FormErrors(t *testing.T) {
	e := newTestRouter(t, nil)

	tests := []struct {
		name string
		path string
		body string
		want string
	}{
		{"signup mismatch", "/api/v1/auth/signup", `{"name":"a","email":"a@b.c","password":"x","confirmPassword":"y"}`, "Passwords do not match"},
		{"reset mismatch", "/api/v1/auth/password-reset", `{"newPassword":"x","confirmPassword":"y"}`, "Passwords do not match"},
		{"login missing email", "/api/v1/auth/login", `{"password":"x"}`, "Email is required"},
		{"bad json", "/api/v1/auth/login", `{`, "Invalid request payload"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, http.MethodPost, tt.path, tt.body, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decode[dto.ErrorResponse](t, rec).Error)
		})
	}
}

func TestRouter_SignupAndReset(t *testing.T) {
	e := newTestRouter(t, nil)

	rec := doRequest(e, http.MethodPost, "/api/v1/auth/signup", `{"email":"a@b.c","password":"x","confirmPassword":"x"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "User", decode[dto.AuthResponse](t, rec).User.Name)

	rec = doRequest(e, http.MethodPost, "/api/v1/auth/password-reset", `{"newPassword":"x","confirmPassword":"x"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[dto.MessageResponse](t, rec).Message)
}

func TestRouter_NewsFeed(t *testing.T) {
	e := newTestRouter(t, nil)
	token := login(t, e)

	rec := doRequest(e, http.MethodGet, "/api/v1/news?q=msft", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode[dto.FeedResponse](t, rec)
	require.Equal(t, 1, feed.Count)
	assert.Equal(t, "MSFT", feed.Items[0].Ticker)

	rec = doRequest(e, http.MethodGet, "/api/v1/news?halal=true", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	feed = decode[dto.FeedResponse](t, rec)
	assert.Equal(t, 5, feed.Count)
	for _, item := range feed.Items {
		assert.NotEqual(t, "JPM", item.Ticker)
	}

	rec = doRequest(e, http.MethodGet, "/api/v1/news?category=dividends", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ARAMCO", decode[dto.FeedResponse](t, rec).Items[0].Ticker)

	rec = doRequest(e, http.MethodGet, "/api/v1/news?category=crypto", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_NewsItemAndSentiment(t *testing.T) {
	e := newTestRouter(t, nil)
	token := login(t, e)

	rec := doRequest(e, http.MethodGet, "/api/v1/news/1", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AAPL", decode[entity.NewsItem](t, rec).Ticker)

	rec = doRequest(e, http.MethodGet, "/api/v1/news/1/sentiment", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]interface{}](t, rec)
	assert.Equal(t, "bullish", body["sentiment"])
	assert.Equal(t, 0.82, body["confidence"])
	assert.Equal(t, "$182.00 – $187.00", body["shortTermBuyRange"])
	assert.Equal(t, body["explanationBullets"], body["keyPoints"])

	rec = doRequest(e, http.MethodGet, "/api/v1/news/99", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = doRequest(e, http.MethodGet, "/api/v1/news/99/sentiment", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CardLifecycle(t *testing.T) {
	e := newTestRouter(t, nil)
	token := login(t, e)

	rec := doRequest(e, http.MethodPost, "/api/v1/cards/4/expand", "", token)
	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.True(t, decode[dto.CardResponse](t, rec).Expanded)

	require.Eventually(t, func() bool {
		rec := doRequest(e, http.MethodGet, "/api/v1/cards/4", "", token)
		var card dto.CardResponse
		if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &card) != nil {
			return false
		}
		return card.Status == dto.CardStatusReady
	}, 2*time.Second, 5*time.Millisecond)

	rec = doRequest(e, http.MethodGet, "/api/v1/cards/4", "", token)
	card := decode[dto.CardResponse](t, rec)
	require.NotNil(t, card.Analysis)
	assert.Equal(t, entity.SentimentNeutral, card.Analysis.Sentiment)

	rec = doRequest(e, http.MethodPost, "/api/v1/cards/4/collapse", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	card = decode[dto.CardResponse](t, rec)
	assert.False(t, card.Expanded)
	assert.Equal(t, dto.CardStatusIdle, card.Status)

	rec = doRequest(e, http.MethodPost, "/api/v1/cards/4/analyze", "", token)
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = doRequest(e, http.MethodPost, "/api/v1/cards/99/expand", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_Favorites(t *testing.T) {
	e := newTestRouter(t, nil)
	token := login(t, e)

	rec := doRequest(e, http.MethodPost, "/api/v1/favorites/tsla", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, dto.FavoriteResponse{Ticker: "TSLA", Favorite: true}, decode[dto.FavoriteResponse](t, rec))

	rec = doRequest(e, http.MethodGet, "/api/v1/favorites", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"TSLA"}, decode[dto.FavoritesResponse](t, rec).Tickers)

	rec = doRequest(e, http.MethodGet, "/api/v1/cards/4", "", token)
	assert.True(t, decode[dto.CardResponse](t, rec).Favorite)

	rec = doRequest(e, http.MethodPost, "/api/v1/favorites/GOOG", "", token)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	other := login(t, e)
	rec = doRequest(e, http.MethodGet, "/api/v1/favorites", "", other)
	assert.Empty(t, decode[dto.FavoritesResponse](t, rec).Tickers)
}

func TestRouter_Health(t *testing.T) {
	e := newTestRouter(t, map[string]HealthCheck{
		"redis": func(ctx context.Context) error { return nil },
	})
	rec := doRequest(e, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, HealthResponse{Status: "ok", Checks: map[string]string{"redis": "ok"}}, decode[HealthResponse](t, rec))

	e = newTestRouter(t, map[string]HealthCheck{
		"postgres": func(ctx context.Context) error { return errors.New("connection refused") },
	})
	rec = doRequest(e, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", decode[HealthResponse](t, rec).Status)
}

func TestFormMessage(t *testing.T) {
	assert.Equal(t, "Email is required", formMessage(errors.New("invalid form: email is required")))
	assert.Equal(t, "Please fill in all fields", formMessage(errors.New("invalid form")))
}
