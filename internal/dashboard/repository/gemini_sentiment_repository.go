package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"financial-news-ai/internal/dashboard/config"
	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/internal/entity"
	"financial-news-ai/pkg/circuitbreaker"
	"financial-news-ai/pkg/logger"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// ContentGenerator is the part of genai.Models the Gemini repository uses.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// geminiSentimentRepository asks Gemini for a sentiment analysis of one headline.
type geminiSentimentRepository struct {
	generator      ContentGenerator
	model          string
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	breaker        *circuitbreaker.CircuitBreaker
}

// NewGeminiSentimentRepository creates a new instance of geminiSentimentRepository.
func NewGeminiSentimentRepository(cfg *config.Config, log *logger.Logger, generator ContentGenerator) (RemoteSentimentRepository, error) {
	if generator == nil {
		return nil, fmt.Errorf("gemini content generator is required")
	}
	if cfg.Gemini.Model == "" {
		return nil, fmt.Errorf("gemini.model is required")
	}

	return &geminiSentimentRepository{
		generator:      generator,
		model:          cfg.Gemini.Model,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.Remote.MaxRequestPerMinute),
		breaker:        circuitbreaker.New(circuitbreaker.DefaultConfig("remote-sentiment-gemini"), log),
	}, nil
}

// Analyze performs headline analysis using the Gemini API.
func (r *geminiSentimentRepository) Analyze(ctx context.Context, req dto.RemoteSentimentRequest) (*entity.SentimentAnalysis, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to wait for request limit: %v", ErrRemoteUnavailable, err)
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrRemoteUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	return result.(*entity.SentimentAnalysis), nil
}

func (r *geminiSentimentRepository) generate(ctx context.Context, req dto.RemoteSentimentRequest) (*entity.SentimentAnalysis, error) {
	prompt := BuildSentimentPrompt(req)
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := r.generator.GenerateContent(ctx, r.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(0.2)),
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		r.logger.Error("Failed to generate content with Gemini", logger.ErrorField(err), logger.StringField("ticker", req.Ticker))
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: no content found in Gemini response", ErrMalformedResponse)
	}

	rawJSON := cleanJSONFences(resp.Text())
	if rawJSON == "" {
		return nil, fmt.Errorf("%w: no content found in Gemini response", ErrMalformedResponse)
	}

	var decoded dto.RemoteSentimentResponse
	if err := json.Unmarshal([]byte(rawJSON), &decoded); err != nil {
		r.logger.Error("Failed to unmarshal sentiment from Gemini response", logger.ErrorField(err), logger.StringField("response", rawJSON))
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return NormalizeRemoteResponse(&decoded)
}

// cleanJSONFences strips markdown code fences the model sometimes adds around JSON.
func cleanJSONFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
