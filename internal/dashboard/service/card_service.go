package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/internal/entity"
	"financial-news-ai/pkg/logger"
	"financial-news-ai/pkg/utils"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// CardService owns the per-session view state of news cards and the favorites set.
// State lives in process memory only.
type CardService interface {
	GetCard(ctx context.Context, sessionID, newsID string) (*dto.CardResponse, error)
	Expand(ctx context.Context, sessionID, newsID string) (*dto.CardResponse, error)
	Collapse(ctx context.Context, sessionID, newsID string) (*dto.CardResponse, error)
	Analyze(ctx context.Context, sessionID, newsID string) (*dto.CardResponse, error)
	ToggleFavorite(ctx context.Context, sessionID, ticker string) (*dto.FavoriteResponse, error)
	ListFavorites(ctx context.Context, sessionID string) *dto.FavoritesResponse
	Release(sessionID string)
	Close()
}

type cardState struct {
	expanded bool
	analysis *entity.SentimentAnalysis
	taskID   string
	cancel   context.CancelFunc
}

func (c *cardState) stopTask() {
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = nil
	c.taskID = ""
}

type sessionState struct {
	mu        sync.Mutex
	cards     map[string]*cardState
	favorites map[string]struct{}
}

func (s *sessionState) card(newsID string) *cardState {
	c, ok := s.cards[newsID]
	if !ok {
		c = &cardState{}
		s.cards[newsID] = c
	}
	return c
}

func (s *sessionState) cancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cards {
		c.stopTask()
	}
}

// NewCardService creates a CardService. Session state idle for longer than idleTTL is dropped
// and its pending analyses are cancelled.
func NewCardService(feed FeedService, analysis AnalysisService, delay, idleTTL time.Duration, log *logger.Logger) CardService {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	rootCtx, rootCancel := context.WithCancel(context.Background())

	s := &cardService{
		feed:       feed,
		analysis:   analysis,
		delay:      delay,
		idleTTL:    idleTTL,
		logger:     log,
		sessions:   cache.New(idleTTL, idleTTL/2),
		rootCtx:    rootCtx,
		rootCancel: rootCancel,
	}
	s.sessions.OnEvicted(func(sessionID string, v interface{}) {
		v.(*sessionState).cancelAll()
		activeSessionStates.Dec()
		s.logger.Debug("Card state released", logger.StringField("session_id", sessionID))
	})
	return s
}

type cardService struct {
	feed     FeedService
	analysis AnalysisService
	delay    time.Duration
	idleTTL  time.Duration
	logger   *logger.Logger

	mu         sync.Mutex
	sessions   *cache.Cache
	rootCtx    context.Context
	rootCancel context.CancelFunc
	wg         sync.WaitGroup
}

// session returns the state for sessionID and refreshes its idle deadline.
func (s *cardService) session(sessionID string) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.sessions.Get(sessionID); ok {
		st := v.(*sessionState)
		s.sessions.SetDefault(sessionID, st)
		return st
	}
	// An expired entry the janitor has not swept yet would be overwritten without eviction.
	s.sessions.DeleteExpired()
	st := &sessionState{
		cards:     make(map[string]*cardState),
		favorites: make(map[string]struct{}),
	}
	s.sessions.SetDefault(sessionID, st)
	activeSessionStates.Inc()
	return st
}

func (s *cardService) GetCard(ctx context.Context, sessionID, newsID string) (*dto.CardResponse, error) {
	item, err := s.feed.GetNews(ctx, newsID)
	if err != nil {
		return nil, err
	}
	st := s.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.view(item, st.card(newsID)), nil
}

// Expand opens the card and starts an analysis unless one is cached or already running.
func (s *cardService) Expand(ctx context.Context, sessionID, newsID string) (*dto.CardResponse, error) {
	item, err := s.feed.GetNews(ctx, newsID)
	if err != nil {
		return nil, err
	}
	st := s.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	c := st.card(newsID)
	c.expanded = true
	if c.analysis == nil && c.taskID == "" {
		s.startTask(st, c, *item)
	}
	return st.view(item, c), nil
}

// Collapse closes the card, cancels any pending analysis and drops the cached result.
func (s *cardService) Collapse(ctx context.Context, sessionID, newsID string) (*dto.CardResponse, error) {
	item, err := s.feed.GetNews(ctx, newsID)
	if err != nil {
		return nil, err
	}
	st := s.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	c := st.card(newsID)
	c.expanded = false
	c.stopTask()
	c.analysis = nil
	return st.view(item, c), nil
}

// Analyze discards the current result and starts a fresh analysis.
func (s *cardService) Analyze(ctx context.Context, sessionID, newsID string) (*dto.CardResponse, error) {
	item, err := s.feed.GetNews(ctx, newsID)
	if err != nil {
		return nil, err
	}
	st := s.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	c := st.card(newsID)
	c.expanded = true
	c.analysis = nil
	s.startTask(st, c, *item)
	return st.view(item, c), nil
}

// startTask must be called with st.mu held.
func (s *cardService) startTask(st *sessionState, c *cardState, item entity.NewsItem) {
	c.stopTask()

	taskID := uuid.NewString()
	ctx, cancel := context.WithCancel(s.rootCtx)
	c.taskID = taskID
	c.cancel = cancel

	s.wg.Add(1)
	utils.GoSafe(s.logger, func() {
		defer s.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Card analysis panicked",
					logger.StringField("news_id", item.ID),
					logger.Field("panic", r))
				analysisTasksTotal.WithLabelValues("panicked").Inc()
				s.clearTask(st, c, taskID)
			}
		}()

		if err := utils.SleepContext(ctx, s.delay); err != nil {
			analysisTasksTotal.WithLabelValues("cancelled").Inc()
			return
		}
		result := s.analysis.Analyze(ctx, item)

		st.mu.Lock()
		defer st.mu.Unlock()
		if ctx.Err() != nil || c.taskID != taskID {
			analysisTasksTotal.WithLabelValues("stale").Inc()
			return
		}
		c.analysis = result
		c.taskID = ""
		c.cancel = nil
		analysisTasksTotal.WithLabelValues("completed").Inc()
	})
}

// clearTask drops the card's task if taskID is still the live one, so the card can be analysed again.
func (s *cardService) clearTask(st *sessionState, c *cardState, taskID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if c.taskID == taskID {
		c.taskID = ""
		c.cancel = nil
	}
}

// ToggleFavorite flips membership of ticker in the session's favorites.
func (s *cardService) ToggleFavorite(ctx context.Context, sessionID, ticker string) (*dto.FavoriteResponse, error) {
	item, err := s.feed.FindByTicker(ctx, ticker)
	if err != nil {
		return nil, err
	}
	st := s.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	_, favorite := st.favorites[item.Ticker]
	if favorite {
		delete(st.favorites, item.Ticker)
	} else {
		st.favorites[item.Ticker] = struct{}{}
	}
	return &dto.FavoriteResponse{Ticker: item.Ticker, Favorite: !favorite}, nil
}

func (s *cardService) ListFavorites(ctx context.Context, sessionID string) *dto.FavoritesResponse {
	st := s.session(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	tickers := make([]string, 0, len(st.favorites))
	for t := range st.favorites {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return &dto.FavoritesResponse{Tickers: tickers}
}

// Release drops all state of a session and cancels its pending analyses.
func (s *cardService) Release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions.Delete(sessionID)
}

// Close cancels every pending analysis and waits for the tasks to exit.
func (s *cardService) Close() {
	s.mu.Lock()
	items := s.sessions.Items()
	for _, item := range items {
		item.Object.(*sessionState).cancelAll()
	}
	s.sessions.Flush()
	activeSessionStates.Sub(float64(len(items)))
	s.mu.Unlock()

	s.rootCancel()
	s.wg.Wait()
}

// view must be called with st.mu held.
func (st *sessionState) view(item *entity.NewsItem, c *cardState) *dto.CardResponse {
	status := dto.CardStatusIdle
	switch {
	case c.analysis != nil:
		status = dto.CardStatusReady
	case c.taskID != "":
		status = dto.CardStatusPending
	}
	_, favorite := st.favorites[item.Ticker]
	return &dto.CardResponse{
		NewsID:   item.ID,
		Ticker:   item.Ticker,
		Expanded: c.expanded,
		Status:   status,
		Analysis: c.analysis,
		Favorite: favorite,
	}
}
