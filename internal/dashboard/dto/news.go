package dto

import "financial-news-ai/internal/entity"

// FeedRequest is bound from the feed query string.
type FeedRequest struct {
	Query     string `query:"q"`
	HalalOnly bool   `query:"halal"`
	Category  string `query:"category"`
}

// FeedResponse is the filtered feed plus the counts shown next to the tabs.
type FeedResponse struct {
	Items          []entity.NewsItem `json:"items"`
	Count          int               `json:"count"`
	Query          string            `json:"query"`
	HalalOnly      bool              `json:"halalOnly"`
	Category       entity.Category   `json:"category"`
	CategoryCounts map[string]int    `json:"categoryCounts"`
}
