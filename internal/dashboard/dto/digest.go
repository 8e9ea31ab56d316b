package dto

// DigestEntry is one line of the sentiment digest.
type DigestEntry struct {
	Ticker            string  `json:"ticker"`
	Company           string  `json:"company"`
	Headline          string  `json:"headline"`
	IsHalal           bool    `json:"isHalal"`
	Price             float64 `json:"price"`
	PriceChange       float64 `json:"priceChange"`
	Sentiment         string  `json:"sentiment"`
	Confidence        float64 `json:"confidence"`
	ShortTermBuyRange string  `json:"shortTermBuyRange"`
	LongTermBuyRange  string  `json:"longTermBuyRange"`
}
