package service

import (
	"context"
	"errors"

	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/internal/dashboard/repository"
	"financial-news-ai/internal/entity"
	"financial-news-ai/pkg/logger"
)

// AnalysisService produces a sentiment analysis for a news item. It always returns a result.
type AnalysisService interface {
	Analyze(ctx context.Context, item entity.NewsItem) *entity.SentimentAnalysis
}

// NewAnalysisService creates an AnalysisService. A nil remote means local classification only.
func NewAnalysisService(classifier *SentimentClassifier, remote repository.RemoteSentimentRepository, log *logger.Logger) AnalysisService {
	return &analysisService{
		classifier: classifier,
		remote:     remote,
		logger:     log,
	}
}

type analysisService struct {
	classifier *SentimentClassifier
	remote     repository.RemoteSentimentRepository
	logger     *logger.Logger
}

// Analyze asks the remote provider when one is configured and falls back to the local classifier on any error.
func (s *analysisService) Analyze(ctx context.Context, item entity.NewsItem) *entity.SentimentAnalysis {
	if s.remote == nil {
		return s.record(s.classifier.Classify(item))
	}

	analysis, err := s.remote.Analyze(ctx, dto.RemoteSentimentRequest{
		Headline: item.Headline,
		Company:  item.Company,
		Ticker:   item.Ticker,
	})
	if err == nil {
		if analysis.AnalysisTimestamp == "" {
			analysis.AnalysisTimestamp = s.classifier.Classify(item).AnalysisTimestamp
		}
		return s.record(analysis)
	}

	s.logger.Warn("Remote sentiment failed, using local classifier",
		logger.StringField("ticker", item.Ticker),
		logger.ErrorField(err))
	remoteFallbackTotal.WithLabelValues(fallbackReason(err)).Inc()

	fallback := s.classifier.Classify(item)
	fallback.Source = entity.AnalysisSourceFallback
	fallback.FallbackReason = err.Error()
	return s.record(fallback)
}

func (s *analysisService) record(a *entity.SentimentAnalysis) *entity.SentimentAnalysis {
	sentimentAnalysesTotal.WithLabelValues(string(a.Source), string(a.Sentiment)).Inc()
	return a
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.Is(err, repository.ErrMalformedResponse):
		return "malformed"
	default:
		return "unavailable"
	}
}
