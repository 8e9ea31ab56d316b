package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/internal/entity"
	"financial-news-ai/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingAnalysis returns a result only after release is closed, ignoring cancellation.
type blockingAnalysis struct {
	release chan struct{}
	started chan struct{}
	calls   atomic.Int32
}

func newBlockingAnalysis() *blockingAnalysis {
	return &blockingAnalysis{release: make(chan struct{}), started: make(chan struct{}, 10)}
}

func (a *blockingAnalysis) Analyze(ctx context.Context, item entity.NewsItem) *entity.SentimentAnalysis {
	a.calls.Add(1)
	a.started <- struct{}{}
	<-a.release
	return Classify(item)
}

func newTestCardService(t *testing.T, analysis AnalysisService, delay time.Duration) CardService {
	t.Helper()
	svc := NewCardService(newTestFeedService(t), analysis, delay, time.Minute, logger.NewNop())
	t.Cleanup(svc.Close)
	return svc
}

func localAnalysis() AnalysisService {
	return NewAnalysisService(NewSentimentClassifier(time.UTC), nil, logger.NewNop())
}

func waitForStatus(t *testing.T, svc CardService, sessionID, newsID string, want dto.CardStatus) *dto.CardResponse {
	t.Helper()
	var card *dto.CardResponse
	require.Eventually(t, func() bool {
		var err error
		card, err = svc.GetCard(context.Background(), sessionID, newsID)
		return err == nil && card.Status == want
	}, 2*time.Second, 5*time.Millisecond)
	return card
}

func TestCardService_ExpandRunsAnalysis(t *testing.T) {
	svc := newTestCardService(t, localAnalysis(), 20*time.Millisecond)
	ctx := context.Background()

	card, err := svc.GetCard(ctx, "s1", "1")
	require.NoError(t, err)
	assert.False(t, card.Expanded)
	assert.Equal(t, dto.CardStatusIdle, card.Status)

	card, err = svc.Expand(ctx, "s1", "1")
	require.NoError(t, err)
	assert.True(t, card.Expanded)
	assert.Equal(t, dto.CardStatusPending, card.Status)
	assert.Nil(t, card.Analysis)

	card = waitForStatus(t, svc, "s1", "1", dto.CardStatusReady)
	require.NotNil(t, card.Analysis)
	assert.Equal(t, entity.SentimentBullish, card.Analysis.Sentiment)
	assert.Equal(t, "$182.00 – $187.00", card.Analysis.ShortTermBuyRange)
	assert.Equal(t, "AAPL", card.Ticker)
}

func TestCardService_ExpandReusesCachedResult(t *testing.T) {
	analysis := newBlockingAnalysis()
	svc := newTestCardService(t, analysis, 0)
	ctx := context.Background()

	_, err := svc.Expand(ctx, "s1", "2")
	require.NoError(t, err)
	<-analysis.started

	card, err := svc.Expand(ctx, "s1", "2")
	require.NoError(t, err)
	assert.Equal(t, dto.CardStatusPending, card.Status)

	close(analysis.release)
	waitForStatus(t, svc, "s1", "2", dto.CardStatusReady)

	card, err = svc.Expand(ctx, "s1", "2")
	require.NoError(t, err)
	assert.Equal(t, dto.CardStatusReady, card.Status)
	assert.Equal(t, int32(1), analysis.calls.Load())
}

func TestCardService_CollapseSuppressesPendingResult(t *testing.T) {
	analysis := newBlockingAnalysis()
	svc := newTestCardService(t, analysis, 0)
	ctx := context.Background()

	_, err := svc.Expand(ctx, "s1", "4")
	require.NoError(t, err)
	<-analysis.started

	card, err := svc.Collapse(ctx, "s1", "4")
	require.NoError(t, err)
	assert.False(t, card.Expanded)
	assert.Equal(t, dto.CardStatusIdle, card.Status)

	close(analysis.release)
	time.Sleep(50 * time.Millisecond)

	card, err = svc.GetCard(ctx, "s1", "4")
	require.NoError(t, err)
	assert.Equal(t, dto.CardStatusIdle, card.Status)
	assert.Nil(t, card.Analysis)
}

func TestCardService_CollapseCancelsDelay(t *testing.T) {
	analysis := newBlockingAnalysis()
	close(analysis.release)
	svc := newTestCardService(t, analysis, time.Hour)
	ctx := context.Background()

	_, err := svc.Expand(ctx, "s1", "3")
	require.NoError(t, err)
	_, err = svc.Collapse(ctx, "s1", "3")
	require.NoError(t, err)

	svc.Close()
	assert.Equal(t, int32(0), analysis.calls.Load())
}

func TestCardService_CollapseDiscardsResult(t *testing.T) {
	svc := newTestCardService(t, localAnalysis(), 0)
	ctx := context.Background()

	_, err := svc.Expand(ctx, "s1", "1")
	require.NoError(t, err)
	waitForStatus(t, svc, "s1", "1", dto.CardStatusReady)

	card, err := svc.Collapse(ctx, "s1", "1")
	require.NoError(t, err)
	assert.Nil(t, card.Analysis)

	_, err = svc.Expand(ctx, "s1", "1")
	require.NoError(t, err)
	waitForStatus(t, svc, "s1", "1", dto.CardStatusReady)
}

func TestCardService_AnalyzeRestartsTask(t *testing.T) {
	analysis := newBlockingAnalysis()
	svc := newTestCardService(t, analysis, 0)
	ctx := context.Background()

	_, err := svc.Expand(ctx, "s1", "5")
	require.NoError(t, err)
	<-analysis.started

	card, err := svc.Analyze(ctx, "s1", "5")
	require.NoError(t, err)
	assert.Equal(t, dto.CardStatusPending, card.Status)
	assert.True(t, card.Expanded)
	<-analysis.started

	close(analysis.release)
	card = waitForStatus(t, svc, "s1", "5", dto.CardStatusReady)
	assert.Equal(t, entity.SentimentNeutral, card.Analysis.Sentiment)
	assert.Equal(t, int32(2), analysis.calls.Load())
}

func TestCardService_ReleaseDropsState(t *testing.T) {
	analysis := newBlockingAnalysis()
	svc := newTestCardService(t, analysis, 0)
	ctx := context.Background()

	_, err := svc.ToggleFavorite(ctx, "s1", "AAPL")
	require.NoError(t, err)
	_, err = svc.Expand(ctx, "s1", "1")
	require.NoError(t, err)
	<-analysis.started

	svc.Release("s1")
	close(analysis.release)
	time.Sleep(50 * time.Millisecond)

	card, err := svc.GetCard(ctx, "s1", "1")
	require.NoError(t, err)
	assert.False(t, card.Expanded)
	assert.Equal(t, dto.CardStatusIdle, card.Status)
	assert.Empty(t, svc.ListFavorites(ctx, "s1").Tickers)
}

func TestCardService_SessionsAreIsolated(t *testing.T) {
	svc := newTestCardService(t, localAnalysis(), 0)
	ctx := context.Background()

	_, err := svc.ToggleFavorite(ctx, "s1", "msft")
	require.NoError(t, err)
	_, err = svc.Expand(ctx, "s1", "2")
	require.NoError(t, err)

	card, err := svc.GetCard(ctx, "s2", "2")
	require.NoError(t, err)
	assert.False(t, card.Expanded)
	assert.False(t, card.Favorite)
	assert.Empty(t, svc.ListFavorites(ctx, "s2").Tickers)
}

func TestCardService_ToggleFavorite(t *testing.T) {
	svc := newTestCardService(t, localAnalysis(), 0)
	ctx := context.Background()

	fav, err := svc.ToggleFavorite(ctx, "s1", "nvda")
	require.NoError(t, err)
	assert.Equal(t, dto.FavoriteResponse{Ticker: "NVDA", Favorite: true}, *fav)

	_, err = svc.ToggleFavorite(ctx, "s1", "AAPL")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "NVDA"}, svc.ListFavorites(ctx, "s1").Tickers)

	card, err := svc.GetCard(ctx, "s1", "6")
	require.NoError(t, err)
	assert.True(t, card.Favorite)

	fav, err = svc.ToggleFavorite(ctx, "s1", "NVDA")
	require.NoError(t, err)
	assert.False(t, fav.Favorite)
	assert.Equal(t, []string{"AAPL"}, svc.ListFavorites(ctx, "s1").Tickers)

	_, err = svc.ToggleFavorite(ctx, "s1", "GOOG")
	assert.ErrorIs(t, err, ErrTickerNotFound)
}

func TestCardService_UnknownNews(t *testing.T) {
	svc := newTestCardService(t, localAnalysis(), 0)
	ctx := context.Background()

	_, err := svc.GetCard(ctx, "s1", "99")
	assert.ErrorIs(t, err, ErrNewsNotFound)
	_, err = svc.Expand(ctx, "s1", "99")
	assert.ErrorIs(t, err, ErrNewsNotFound)
	_, err = svc.Collapse(ctx, "s1", "99")
	assert.ErrorIs(t, err, ErrNewsNotFound)
	_, err = svc.Analyze(ctx, "s1", "99")
	assert.ErrorIs(t, err, ErrNewsNotFound)
}

func TestCardService_ConcurrentActions(t *testing.T) {
	svc := newTestCardService(t, localAnalysis(), time.Millisecond)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			newsID := []string{"1", "2", "3"}[i%3]
			_, _ = svc.Expand(ctx, "s1", newsID)
			if i%2 == 0 {
				_, _ = svc.Collapse(ctx, "s1", newsID)
			}
			_, _ = svc.Analyze(ctx, "s1", newsID)
			_, _ = svc.ToggleFavorite(ctx, "s1", "TSLA")
		}(i)
	}
	wg.Wait()

	for _, id := range []string{"1", "2", "3"} {
		waitForStatus(t, svc, "s1", id, dto.CardStatusReady)
	}
}

// panicOnceAnalysis panics on the first call and classifies normally afterwards.
type panicOnceAnalysis struct {
	calls atomic.Int32
}

func (a *panicOnceAnalysis) Analyze(ctx context.Context, item entity.NewsItem) *entity.SentimentAnalysis {
	if a.calls.Add(1) == 1 {
		panic("analysis exploded")
	}
	return Classify(item)
}

func TestCardService_PanickingAnalysisFreesCard(t *testing.T) {
	analysis := &panicOnceAnalysis{}
	svc := newTestCardService(t, analysis, 0)
	ctx := context.Background()

	card, err := svc.Expand(ctx, "s1", "1")
	require.NoError(t, err)
	assert.Equal(t, dto.CardStatusPending, card.Status)

	card = waitForStatus(t, svc, "s1", "1", dto.CardStatusIdle)
	assert.True(t, card.Expanded)
	assert.Nil(t, card.Analysis)

	card, err = svc.Expand(ctx, "s1", "1")
	require.NoError(t, err)
	assert.Equal(t, dto.CardStatusPending, card.Status)

	card = waitForStatus(t, svc, "s1", "1", dto.CardStatusReady)
	require.NotNil(t, card.Analysis)
	assert.Equal(t, int32(2), analysis.calls.Load())
}
