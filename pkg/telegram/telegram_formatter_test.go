package telegram

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"financial-news-ai/internal/dashboard/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatSentimentDigest_Empty(t *testing.T) {
	messages := FormatSentimentDigest(nil, "")
	require.Len(t, messages, 1)
	assert.Equal(t, "No news in the catalog today.", messages[0])
}

func TestFormatSentimentDigest_SingleMessage(t *testing.T) {
	messages := FormatSentimentDigest([]dto.DigestEntry{
		{
			Ticker:            "AAPL",
			Company:           "Apple Inc.",
			Headline:          "Apple announces record-breaking Q4 earnings",
			IsHalal:           true,
			Price:             185.92,
			PriceChange:       2.35,
			Sentiment:         "bullish",
			Confidence:        0.82,
			ShortTermBuyRange: "$182.00 – $187.00",
			LongTermBuyRange:  "$175.00 – $185.00",
		},
		{
			Ticker:     "JPM",
			Company:    "JPMorgan Chase",
			Sentiment:  "neutral",
			Confidence: 0.62,
		},
	}, "1/15/2024, 10:30:00 AM")

	require.Len(t, messages, 1)
	msg := messages[0]
	assert.True(t, strings.HasPrefix(msg, "📰 *Financial News Sentiment Digest* 📰\n🕒 1/15/2024, 10:30:00 AM\n"))
	assert.Contains(t, msg, "📈 *AAPL* - Apple Inc. ☪️ Halal\n")
	assert.Contains(t, msg, "💵 *Price:* $185.92 (+2.35%)\n")
	assert.Contains(t, msg, "🟢 *Sentiment:* BULLISH\n")
	assert.Contains(t, msg, "🎯 *Confidence:* 82%\n")
	assert.Contains(t, msg, "⏱ *Short-term buy:* $182.00 – $187.00\n")
	assert.Contains(t, msg, "📈 *JPM* - JPMorgan Chase\n")
	assert.Contains(t, msg, "🟡 *Sentiment:* NEUTRAL\n")
}

func TestFormatSentimentDigest_SplitsLongDigest(t *testing.T) {
	entries := make([]dto.DigestEntry, 0, 60)
	for i := 0; i < 60; i++ {
		entries = append(entries, dto.DigestEntry{
			Ticker:    fmt.Sprintf("T%02d", i),
			Company:   strings.Repeat("Company ", 5),
			Headline:  strings.Repeat("headline ", 10),
			Sentiment: "bearish",
		})
	}

	messages := FormatSentimentDigest(entries, "")
	require.Greater(t, len(messages), 1)
	for _, m := range messages {
		assert.LessOrEqual(t, len(m), MaxMessageLength)
	}
	assert.True(t, strings.HasPrefix(messages[1], "---*Sentiment Digest Part 2*---"))

	joined := strings.Join(messages, "")
	for _, e := range entries {
		assert.Equal(t, 1, strings.Count(joined, "*"+e.Ticker+"*"))
	}
}

func TestSentimentIcon(t *testing.T) {
	assert.Equal(t, "🟢", SentimentIcon("Bullish"))
	assert.Equal(t, "🔴", SentimentIcon("bearish"))
	assert.Equal(t, "🟡", SentimentIcon("neutral"))
	assert.Equal(t, "🟡", SentimentIcon(""))
}

func TestFormatErrorAlertMessage(t *testing.T) {
	at := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	msg := FormatErrorAlertMessage(at, "digest", "send failed")
	assert.Contains(t, msg, "2024-01-15T10:30:00Z")
	assert.Contains(t, msg, "*Type:* digest")
	assert.Contains(t, msg, "send failed")
}
