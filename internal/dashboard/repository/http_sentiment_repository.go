package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"financial-news-ai/internal/dashboard/config"
	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/internal/entity"
	"financial-news-ai/pkg/circuitbreaker"
	"financial-news-ai/pkg/logger"

	"golang.org/x/time/rate"
)

// httpSentimentRepository posts {headline, company, ticker} to an analysis endpoint.
type httpSentimentRepository struct {
	client         *http.Client
	endpoint       string
	logger         *logger.Logger
	requestLimiter *rate.Limiter
	breaker        *circuitbreaker.CircuitBreaker
}

// NewHTTPSentimentRepository creates a client for a JSON sentiment endpoint.
func NewHTTPSentimentRepository(cfg *config.Config, log *logger.Logger) (RemoteSentimentRepository, error) {
	if cfg.Remote.Endpoint == "" {
		return nil, fmt.Errorf("remote.endpoint is required for the http provider")
	}

	return &httpSentimentRepository{
		client:         &http.Client{Timeout: cfg.Remote.Timeout},
		endpoint:       cfg.Remote.Endpoint,
		logger:         log,
		requestLimiter: newRequestLimiter(cfg.Remote.MaxRequestPerMinute),
		breaker:        circuitbreaker.New(circuitbreaker.DefaultConfig("remote-sentiment-http"), log),
	}, nil
}

func newRequestLimiter(maxPerMinute int) *rate.Limiter {
	if maxPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(maxPerMinute)), 1)
}

// Analyze sends one request through the rate limiter and the circuit breaker.
func (r *httpSentimentRepository) Analyze(ctx context.Context, req dto.RemoteSentimentRequest) (*entity.SentimentAnalysis, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: failed to wait for request limit: %v", ErrRemoteUnavailable, err)
	}

	result, err := r.breaker.Execute(func() (interface{}, error) {
		return r.do(ctx, req)
	})
	if err != nil {
		return nil, r.classifyError(err)
	}
	return result.(*entity.SentimentAnalysis), nil
}

// classifyError keeps malformed-response errors as they are and wraps everything else as unavailability.
func (r *httpSentimentRepository) classifyError(err error) error {
	if errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrRemoteUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
}

func (r *httpSentimentRepository) do(ctx context.Context, req dto.RemoteSentimentRequest) (*entity.SentimentAnalysis, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		r.logger.Error("Failed to send request to sentiment endpoint", logger.ErrorField(err), logger.StringField("ticker", req.Ticker))
		return nil, fmt.Errorf("%w: %v", ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrRemoteUnavailable, err)
	}

	var decoded dto.RemoteSentimentResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if resp.StatusCode != http.StatusOK {
		r.logger.Error("Received non-OK response from sentiment endpoint",
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("ticker", req.Ticker))
		if decodeErr == nil && decoded.Error != "" {
			return nil, fmt.Errorf("%w: status %d: %s", ErrRemoteUnavailable, resp.StatusCode, decoded.Error)
		}
		return nil, fmt.Errorf("%w: status %d", ErrRemoteUnavailable, resp.StatusCode)
	}

	if decodeErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, decodeErr)
	}

	return NormalizeRemoteResponse(&decoded)
}
