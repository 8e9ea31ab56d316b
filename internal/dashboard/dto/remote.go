package dto

// RemoteSentimentRequest is the body sent to a remote sentiment provider.
type RemoteSentimentRequest struct {
	Headline string `json:"headline"`
	Company  string `json:"company"`
	Ticker   string `json:"ticker"`
}

// RemoteSentimentResponse accepts both the current and the older field names.
// Every field is optional; normalization fills the gaps.
type RemoteSentimentResponse struct {
	Sentiment          *string  `json:"sentiment"`
	Confidence         *float64 `json:"confidence"`
	Summary            *string  `json:"summary"`
	BuyRange           *string  `json:"buyRange"`
	ShortTermBuyRange  *string  `json:"shortTermBuyRange"`
	LongTermBuyRange   *string  `json:"longTermBuyRange"`
	AnalysisTimestamp  *string  `json:"analysisTimestamp"`
	ContextExplanation *string  `json:"contextExplanation"`
	ExplanationTitle   *string  `json:"explanationTitle"`
	ExplanationBullets []string `json:"explanationBullets"`
	KeyPoints          []string `json:"keyPoints"`
	Error              string   `json:"error"`
}
