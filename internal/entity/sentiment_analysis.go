package entity

import "encoding/json"

// Sentiment is the classifier verdict.
type Sentiment string

const (
	SentimentBullish Sentiment = "bullish"
	SentimentBearish Sentiment = "bearish"
	SentimentNeutral Sentiment = "neutral"
)

// Valid reports whether s is one of the three verdicts.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentBullish, SentimentBearish, SentimentNeutral:
		return true
	}
	return false
}

// AnalysisSource records which path produced an analysis.
type AnalysisSource string

const (
	AnalysisSourceLocal    AnalysisSource = "local"
	AnalysisSourceRemote   AnalysisSource = "remote"
	AnalysisSourceFallback AnalysisSource = "fallback"
)

// SentimentAnalysis is derived per request and never persisted.
type SentimentAnalysis struct {
	Sentiment          Sentiment      `json:"sentiment"`
	Confidence         float64        `json:"confidence"`
	Summary            string         `json:"summary"`
	BuyRange           string         `json:"buyRange"`
	ShortTermBuyRange  string         `json:"shortTermBuyRange"`
	LongTermBuyRange   string         `json:"longTermBuyRange"`
	AnalysisTimestamp  string         `json:"analysisTimestamp"`
	ContextExplanation string         `json:"contextExplanation"`
	ExplanationTitle   string         `json:"explanationTitle"`
	ExplanationBullets []string       `json:"explanationBullets"`
	Source             AnalysisSource `json:"source"`
	FallbackReason     string         `json:"fallbackReason,omitempty"`
}

// MarshalJSON also emits the bullets under the older "keyPoints" name.
func (a SentimentAnalysis) MarshalJSON() ([]byte, error) {
	type plain SentimentAnalysis
	return json.Marshal(struct {
		plain
		KeyPoints []string `json:"keyPoints"`
	}{
		plain:     plain(a),
		KeyPoints: a.ExplanationBullets,
	})
}
