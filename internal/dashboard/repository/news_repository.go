package repository

import (
	"context"
	"time"

	"financial-news-ai/internal/entity"

	"github.com/lib/pq"
)

// NewsRepository is the catalog data source.
type NewsRepository interface {
	FetchNewsCatalog(ctx context.Context) ([]entity.NewsItem, error)
}

// NewStaticNewsRepository returns the compiled-in catalog.
func NewStaticNewsRepository() NewsRepository {
	return &staticNewsRepository{}
}

type staticNewsRepository struct{}

// FetchNewsCatalog returns a fresh copy of the curated records in catalog order.
func (r *staticNewsRepository) FetchNewsCatalog(ctx context.Context) ([]entity.NewsItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	items := make([]entity.NewsItem, 0, len(staticCatalog))
	for _, item := range staticCatalog {
		items = append(items, item.Clone())
	}
	return items, nil
}

func mustParseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

var staticCatalog = []entity.NewsItem{
	{
		ID:          "1",
		Company:     "Apple Inc.",
		Ticker:      "AAPL",
		Headline:    "Apple announces record-breaking Q4 earnings, iPhone sales exceed expectations",
		Source:      "Financial Times",
		SourceIcon:  "📰",
		URL:         "https://www.ft.com/apple-q4-earnings",
		PublishedAt: mustParseTime("2024-01-15T10:30:00Z"),
		Category:    entity.CategoryEarnings,
		IsHalal:     true,
		Price:       185.92,
		PriceChange: 2.35,
		Summary: pq.StringArray{
			"Q4 revenue reaches $119.6 billion, up 2% year-over-year",
			"iPhone revenue grew 6% driven by strong iPhone 15 Pro demand",
			"Services business hits all-time high with $22.3 billion revenue",
			"Company maintains strong gross margin of 45.2%",
		},
	},
	{
		ID:          "2",
		Company:     "Microsoft Corporation",
		Ticker:      "MSFT",
		Headline:    "Microsoft Cloud revenue surges 25% as AI adoption accelerates across enterprise",
		Source:      "Bloomberg",
		SourceIcon:  "📊",
		URL:         "https://www.bloomberg.com/microsoft-cloud-ai",
		PublishedAt: mustParseTime("2024-01-15T09:15:00Z"),
		Category:    entity.CategoryEarnings,
		IsHalal:     true,
		Price:       412.78,
		PriceChange: 3.87,
		Summary: pq.StringArray{
			"Azure and cloud services revenue increased 30% year-over-year",
			"AI services now contribute $3.2 billion in quarterly revenue",
			"Enterprise adoption of Copilot exceeds 40,000 organizations",
			"Operating margin expands to 47% as efficiency improvements continue",
		},
	},
	{
		ID:          "3",
		Company:     "JPMorgan Chase",
		Ticker:      "JPM",
		Headline:    "JPMorgan reports strong Q4 results driven by investment banking recovery",
		Source:      "Reuters",
		SourceIcon:  "📡",
		URL:         "https://www.reuters.com/jpmorgan-q4-results",
		PublishedAt: mustParseTime("2024-01-15T08:45:00Z"),
		Category:    entity.CategoryEarnings,
		IsHalal:     false,
		Price:       168.45,
		PriceChange: 1.92,
		Summary: pq.StringArray{
			"Investment banking fees surge 35% as M&A activity rebounds",
			"Net income rises to $12.6 billion, beating analyst estimates",
			"Trading revenue remains strong with fixed income up 8%",
			"Management raises full-year 2024 guidance on improved outlook",
		},
	},
	{
		ID:          "4",
		Company:     "Tesla Inc.",
		Ticker:      "TSLA",
		Headline:    "Tesla faces delivery challenges in China amid increased competition from local manufacturers",
		Source:      "Wall Street Journal",
		SourceIcon:  "📈",
		URL:         "https://www.wsj.com/tesla-china-challenges",
		PublishedAt: mustParseTime("2024-01-14T16:20:00Z"),
		Category:    entity.CategoryMarket,
		IsHalal:     true,
		Price:       238.52,
		PriceChange: -2.18,
		Summary: pq.StringArray{
			"China deliveries down 12% quarter-over-quarter amid price pressure",
			"BYD and local competitors gain market share with aggressive pricing",
			"Tesla reduces prices by 5-8% across Model 3 and Model Y in China",
			"Company accelerates production of updated Model Y to boost demand",
		},
	},
	{
		ID:          "5",
		Company:     "Saudi Aramco",
		Ticker:      "ARAMCO",
		Headline:    "Saudi Aramco maintains dividend despite oil price volatility, focuses on sustainability",
		Source:      "Arab News",
		SourceIcon:  "🌍",
		URL:         "https://www.arabnews.com/aramco-dividend-sustainability",
		PublishedAt: mustParseTime("2024-01-14T12:00:00Z"),
		Category:    entity.CategoryDividends,
		IsHalal:     true,
		Price:       28.45,
		PriceChange: 0.75,
		Summary: pq.StringArray{
			"Quarterly dividend maintained at $0.27 per share despite price volatility",
			"Company invests $15 billion in carbon capture and renewable projects",
			"Oil production capacity expansion on track for 13 million bpd by 2027",
			"Free cash flow remains robust at $28.4 billion for the quarter",
		},
	},
	{
		ID:          "6",
		Company:     "Nvidia Corporation",
		Ticker:      "NVDA",
		Headline:    "Nvidia GPU demand remains strong as AI infrastructure buildout continues globally",
		Source:      "CNBC",
		SourceIcon:  "📺",
		URL:         "https://www.cnbc.com/nvidia-gpu-demand-ai",
		PublishedAt: mustParseTime("2024-01-14T11:30:00Z"),
		Category:    entity.CategoryMarket,
		IsHalal:     true,
		Price:       521.67,
		PriceChange: 5.24,
		Summary: pq.StringArray{
			"Data center revenue expected to exceed $18 billion this quarter",
			"H100 and H200 GPUs remain sold out through first half of 2024",
			"New AI chip customers include major cloud providers and enterprises",
			"Company guides for continued strong growth in AI infrastructure spend",
		},
	},
}
