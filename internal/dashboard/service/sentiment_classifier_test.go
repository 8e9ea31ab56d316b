package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"financial-news-ai/internal/dashboard/repository"
	"financial-news-ai/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadCatalog(t *testing.T) []entity.NewsItem {
	t.Helper()
	items, err := repository.NewStaticNewsRepository().FetchNewsCatalog(context.Background())
	require.NoError(t, err)
	return items
}

func TestClassifyHeadline(t *testing.T) {
	tests := []struct {
		headline string
		want     entity.Sentiment
	}{
		{"Company misses estimates", entity.SentimentBearish},
		{"Shares plunge after profit warning", entity.SentimentBearish},
		{"Regulator opens investigation", entity.SentimentBearish},
		{"Company beats estimates", entity.SentimentBullish},
		{"Analyst upgrade lifts shares", entity.SentimentBullish},
		{"Strongest quarter yet", entity.SentimentBullish},
		{"Record sales but guidance cut", entity.SentimentNeutral},
		{"Strong demand offset by weak margins", entity.SentimentNeutral},
		{"Company holds annual meeting", entity.SentimentNeutral},
		{"", entity.SentimentNeutral},
		{"RECORD-BREAKING QUARTER", entity.SentimentBullish},
	}

	for _, tt := range tests {
		t.Run(tt.headline, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyHeadline(tt.headline))
		})
	}
}

func TestClassifyHeadline_SingleKeywords(t *testing.T) {
	for _, k := range bearishKeywords {
		assert.Equal(t, entity.SentimentBearish, ClassifyHeadline("the stock "+k+" today"), k)
		for _, b := range bullishKeywords {
			assert.Equal(t, entity.SentimentNeutral, ClassifyHeadline(k+" and "+b), k+"/"+b)
		}
	}
	for _, k := range bullishKeywords {
		assert.Equal(t, entity.SentimentBullish, ClassifyHeadline("the stock "+k+" today"), k)
	}
}

func TestClassify_ConfidenceIsFixedPerVerdict(t *testing.T) {
	want := map[entity.Sentiment]float64{
		entity.SentimentBullish: 0.82,
		entity.SentimentBearish: 0.78,
		entity.SentimentNeutral: 0.62,
	}
	headlines := []string{"surge", "strong growth and record", "drop", "fraud lawsuit layoffs", "flat", "weak but strong"}
	for _, h := range headlines {
		got := Classify(entity.NewsItem{Headline: h, Price: 10})
		assert.Equal(t, want[got.Sentiment], got.Confidence, h)
	}
}

func TestClassify_AppleOverride(t *testing.T) {
	item := loadCatalog(t)[0]
	require.Equal(t, "AAPL", item.Ticker)

	got := Classify(item)
	assert.Equal(t, entity.SentimentBullish, got.Sentiment)
	assert.Equal(t, 0.82, got.Confidence)
	assert.Equal(t, "$182.00 – $187.00", got.ShortTermBuyRange)
	assert.Equal(t, "$175.00 – $185.00", got.LongTermBuyRange)
	assert.Equal(t, "$182.00 – $187.00 | $175.00 – $185.00", got.BuyRange)
	assert.Equal(t, "Why this is Bullish", got.ExplanationTitle)
	assert.Len(t, got.ExplanationBullets, 4)
	assert.Equal(t, entity.AnalysisSourceLocal, got.Source)

	lower := item
	lower.Ticker = "aapl"
	lower.Price = 1
	got = Classify(lower)
	assert.Equal(t, "$182.00 – $187.00", got.ShortTermBuyRange)

	bearish := item
	bearish.Headline = "Apple shares drop"
	got = Classify(bearish)
	assert.Equal(t, entity.SentimentBearish, got.Sentiment)
	assert.Equal(t, FormatBuyRange(185.92*0.93, 185.92*0.97), got.ShortTermBuyRange)
}

func TestClassify_TeslaNeutral(t *testing.T) {
	got := Classify(entity.NewsItem{
		Ticker:   "TSLA",
		Headline: "Tesla faces delivery challenges in China amid increased competition",
		Price:    238.52,
	})
	assert.Equal(t, entity.SentimentNeutral, got.Sentiment)
	assert.Equal(t, 0.62, got.Confidence)
	// 238.52 * 1.005 = 239.7126
	assert.Equal(t, "$234.94 – $239.71", got.ShortTermBuyRange)
	assert.Equal(t, "$228.98 – $236.13", got.LongTermBuyRange)
	assert.Equal(t, "Overall sentiment is neutral. Market reaction may depend on deeper details beyond the headline.", got.Summary)
}

func TestClassify_CatalogVerdicts(t *testing.T) {
	want := map[string]entity.Sentiment{
		"AAPL":   entity.SentimentBullish,
		"MSFT":   entity.SentimentBullish,
		"JPM":    entity.SentimentBullish,
		"TSLA":   entity.SentimentNeutral,
		"ARAMCO": entity.SentimentNeutral,
		"NVDA":   entity.SentimentBullish,
	}
	for _, item := range loadCatalog(t) {
		assert.Equal(t, want[item.Ticker], Classify(item).Sentiment, item.Ticker)
	}
}

func TestClassify_RangesFollowMultipliers(t *testing.T) {
	for sentiment, headline := range map[entity.Sentiment]string{
		entity.SentimentBullish: "surge",
		entity.SentimentBearish: "decline",
		entity.SentimentNeutral: "update",
	} {
		p := verdictProfiles[sentiment]
		for _, price := range []float64{0, 1, 28.45, 99.99, 412.78, 1234.5} {
			got := Classify(entity.NewsItem{Ticker: "TEST", Headline: headline, Price: price})
			assert.Equal(t, FormatBuyRange(price*p.shortLow, price*p.shortHigh), got.ShortTermBuyRange)
			assert.Equal(t, FormatBuyRange(price*p.longLow, price*p.longHigh), got.LongTermBuyRange)
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	for _, item := range loadCatalog(t) {
		a := Classify(item)
		b := Classify(item)
		assert.Equal(t, a.Sentiment, b.Sentiment)
		assert.Equal(t, a.Confidence, b.Confidence)
		assert.Equal(t, a.ShortTermBuyRange, b.ShortTermBuyRange)
		assert.Equal(t, a.LongTermBuyRange, b.LongTermBuyRange)
	}
}

func TestClassifyAt_Timestamp(t *testing.T) {
	at := time.Date(2024, 1, 15, 14, 5, 9, 0, time.UTC)
	got := ClassifyAt(entity.NewsItem{Headline: "flat"}, at)
	assert.Equal(t, "1/15/2024, 2:05:09 PM", got.AnalysisTimestamp)
}

func TestSentimentClassifier_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*60*60)
	c := NewSentimentClassifier(loc)
	c.now = func() time.Time { return time.Date(2024, 1, 15, 20, 0, 0, 0, time.UTC) }

	got := c.Classify(entity.NewsItem{Headline: "flat"})
	assert.Equal(t, "1/16/2024, 3:00:00 AM", got.AnalysisTimestamp)
}

func TestClassify_BulletsAreNotShared(t *testing.T) {
	a := Classify(entity.NewsItem{Headline: "surge"})
	a.ExplanationBullets[0] = "changed"
	b := Classify(entity.NewsItem{Headline: "surge"})
	assert.Equal(t, "Headline uses strong positive language (record / exceeds / strong growth).", b.ExplanationBullets[0])
}

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{234.9422, "234.94"},
		{239.7226, "239.72"},
		{0.125, "0.13"},
		{0.375, "0.38"},
		{1.005, "1.00"},
		{2.675, "2.67"},
		{0.994, "0.99"},
		{0.995, "0.99"},
		{9.999, "10.00"},
		{1234567.891, "1234567.89"},
		{-1.5, "-1.50"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, formatMoney(tt.in))
		})
	}
}
