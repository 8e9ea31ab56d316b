package telegram

import (
	"fmt"
	"strings"
	"time"

	"financial-news-ai/internal/dashboard/dto"
)

// MaxMessageLength keeps each message under Telegram's 4096 character limit.
const MaxMessageLength = 4090

// FormatSentimentDigest formats digest entries into Markdown messages,
// splitting so that no message exceeds MaxMessageLength.
func FormatSentimentDigest(entries []dto.DigestEntry, generatedAt string) []string {
	if len(entries) == 0 {
		return []string{"No news in the catalog today."}
	}

	var messages []string
	var currentMessage strings.Builder
	part := 1

	startNewPart := func() {
		currentMessage.Reset()
		if part == 1 {
			currentMessage.WriteString("📰 *Financial News Sentiment Digest* 📰\n")
			if generatedAt != "" {
				currentMessage.WriteString(fmt.Sprintf("🕒 %s\n", generatedAt))
			}
			currentMessage.WriteString("\n")
			return
		}
		currentMessage.WriteString(fmt.Sprintf("---*Sentiment Digest Part %d*---\n\n", part))
	}

	startNewPart()

	for _, e := range entries {
		entry := formatDigestEntry(e)
		if currentMessage.Len()+len(entry) > MaxMessageLength {
			messages = append(messages, currentMessage.String())
			part++
			startNewPart()
		}
		currentMessage.WriteString(entry)
	}

	messages = append(messages, currentMessage.String())
	return messages
}

func formatDigestEntry(e dto.DigestEntry) string {
	var b strings.Builder

	halal := ""
	if e.IsHalal {
		halal = " ☪️ Halal"
	}
	b.WriteString(fmt.Sprintf("📈 *%s* - %s%s\n", e.Ticker, e.Company, halal))
	b.WriteString(fmt.Sprintf("🗞 %s\n", e.Headline))
	b.WriteString(fmt.Sprintf("💵 *Price:* $%.2f (%+.2f%%)\n", e.Price, e.PriceChange))
	b.WriteString(fmt.Sprintf("%s *Sentiment:* %s\n", SentimentIcon(e.Sentiment), strings.ToUpper(e.Sentiment)))
	b.WriteString(fmt.Sprintf("🎯 *Confidence:* %.0f%%\n", e.Confidence*100))
	b.WriteString(fmt.Sprintf("⏱ *Short-term buy:* %s\n", e.ShortTermBuyRange))
	b.WriteString(fmt.Sprintf("🏦 *Long-term buy:* %s\n", e.LongTermBuyRange))
	b.WriteString("\n")
	return b.String()
}

// SentimentIcon returns the icon shown next to a verdict.
func SentimentIcon(sentiment string) string {
	switch strings.ToLower(sentiment) {
	case "bullish":
		return "🟢"
	case "bearish":
		return "🔴"
	default:
		return "🟡"
	}
}

// FormatErrorAlertMessage formats a failure alert for the digest job.
func FormatErrorAlertMessage(at time.Time, errType string, errMsg string) string {
	var b strings.Builder
	b.WriteString("🚨 *Error Alert* 🚨\n\n")
	b.WriteString(fmt.Sprintf("🕒 *Time:* %s\n", at.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("📌 *Type:* %s\n", errType))
	b.WriteString(fmt.Sprintf("💬 *Message:* %s\n", errMsg))
	return b.String()
}
