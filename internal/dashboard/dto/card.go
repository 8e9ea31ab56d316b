package dto

import "financial-news-ai/internal/entity"

// CardStatus is the analysis panel state of a news card.
type CardStatus string

const (
	CardStatusIdle    CardStatus = "idle"
	CardStatusPending CardStatus = "pending"
	CardStatusReady   CardStatus = "ready"
)

// CardResponse is the transient view state of one news card.
type CardResponse struct {
	NewsID   string                    `json:"newsId"`
	Ticker   string                    `json:"ticker"`
	Expanded bool                      `json:"expanded"`
	Status   CardStatus                `json:"status"`
	Analysis *entity.SentimentAnalysis `json:"analysis"`
	Favorite bool                      `json:"favorite"`
}

// FavoriteResponse is returned after toggling a ticker.
type FavoriteResponse struct {
	Ticker   string `json:"ticker"`
	Favorite bool   `json:"favorite"`
}

// FavoritesResponse lists the favorite tickers of a session.
type FavoritesResponse struct {
	Tickers []string `json:"tickers"`
}
