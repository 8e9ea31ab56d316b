package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/internal/entity"
)

var (
	// ErrRemoteUnavailable covers transport failures, non-OK statuses and an open circuit.
	ErrRemoteUnavailable = errors.New("remote sentiment provider unavailable")
	// ErrMalformedResponse is returned when the provider answered but the payload is unusable.
	ErrMalformedResponse = errors.New("malformed remote sentiment response")
)

const (
	defaultRemoteConfidence = 0.7
	missingValue            = "—"
	defaultRemoteTitle      = "AI Explanation"
)

// RemoteSentimentRepository asks an external provider for a sentiment analysis.
// Callers decide what to do on error; the repository never substitutes a local result.
type RemoteSentimentRepository interface {
	Analyze(ctx context.Context, req dto.RemoteSentimentRequest) (*entity.SentimentAnalysis, error)
}

// NormalizeRemoteResponse turns a provider payload into an analysis.
// A missing or unknown sentiment makes the whole response malformed.
func NormalizeRemoteResponse(resp *dto.RemoteSentimentResponse) (*entity.SentimentAnalysis, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	if resp.Sentiment == nil || *resp.Sentiment == "" {
		reason := "missing sentiment"
		if resp.Error != "" {
			reason = resp.Error
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, reason)
	}

	sentiment := entity.Sentiment(strings.ToLower(strings.TrimSpace(*resp.Sentiment)))
	if !sentiment.Valid() {
		return nil, fmt.Errorf("%w: unknown sentiment %q", ErrMalformedResponse, *resp.Sentiment)
	}

	confidence := defaultRemoteConfidence
	if resp.Confidence != nil {
		confidence = *resp.Confidence
	}
	confidence = math.Max(0, math.Min(1, confidence))

	buyRange := stringOr(resp.BuyRange, missingValue)
	bullets := resp.ExplanationBullets
	if bullets == nil {
		bullets = resp.KeyPoints
	}
	if bullets == nil {
		bullets = []string{}
	}

	return &entity.SentimentAnalysis{
		Sentiment:          sentiment,
		Confidence:         confidence,
		Summary:            stringOr(resp.Summary, missingValue),
		BuyRange:           buyRange,
		ShortTermBuyRange:  stringOr(resp.ShortTermBuyRange, buyRange),
		LongTermBuyRange:   stringOr(resp.LongTermBuyRange, buyRange),
		AnalysisTimestamp:  stringOr(resp.AnalysisTimestamp, ""),
		ContextExplanation: stringOr(resp.ContextExplanation, ""),
		ExplanationTitle:   stringOr(resp.ExplanationTitle, defaultRemoteTitle),
		ExplanationBullets: bullets,
		Source:             entity.AnalysisSourceRemote,
	}, nil
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
