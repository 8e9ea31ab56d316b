package repository

import (
	"fmt"

	"financial-news-ai/internal/dashboard/dto"
)

// BuildSentimentPrompt asks the model for the same JSON shape the HTTP provider returns.
func BuildSentimentPrompt(req dto.RemoteSentimentRequest) string {
	return fmt.Sprintf(`You are an equity analyst who reads a single news headline and judges its likely short-term effect on the stock.

Company: %s
Ticker: %s
Headline: "%s"

Rules:
- "sentiment" must be exactly one of "bullish", "bearish" or "neutral".
- "confidence" is a number between 0.0 and 1.0.
- Buy ranges are formatted "$LOW – $HIGH" with two decimals, LOW <= HIGH, using an en dash.
- The short-term range targets small pullbacks; the long-term range targets deeper support.
- "explanationBullets" holds exactly four short sentences.
- Do not invent facts that are not implied by the headline.

Respond with JSON only, no markdown fences:
{
  "sentiment": "bullish | bearish | neutral",
  "confidence": <float 0.0-1.0>,
  "summary": "<one or two sentences>",
  "shortTermBuyRange": "$LOW – $HIGH",
  "longTermBuyRange": "$LOW – $HIGH",
  "contextExplanation": "<one sentence disclaimer>",
  "explanationTitle": "Why this is <Sentiment>",
  "explanationBullets": ["<string>", "<string>", "<string>", "<string>"]
}`, req.Company, req.Ticker, req.Headline)
}
