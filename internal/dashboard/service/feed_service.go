package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/internal/dashboard/repository"
	"financial-news-ai/internal/entity"
	"financial-news-ai/pkg/logger"

	"github.com/patrickmn/go-cache"
)

var (
	// ErrInvalidCategory is returned for a category outside all/earnings/market/dividends.
	ErrInvalidCategory = errors.New("invalid category")
	// ErrNewsNotFound is returned for an unknown news id.
	ErrNewsNotFound = errors.New("news item not found")
	// ErrTickerNotFound is returned for a ticker that is not in the catalog.
	ErrTickerNotFound = errors.New("ticker not found")
)

// FeedQuery holds the three feed controls.
type FeedQuery struct {
	Query     string
	HalalOnly bool
	Category  entity.Category
}

// ParseCategory maps a raw query value to a category. Empty means all.
func ParseCategory(raw string) (entity.Category, error) {
	c := entity.Category(strings.ToLower(strings.TrimSpace(raw)))
	if c == "" || c == entity.CategoryAll {
		return entity.CategoryAll, nil
	}
	for _, known := range entity.Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
}

// FilterNews keeps the items matching every control, in catalog order. The catalog is not modified.
func FilterNews(catalog []entity.NewsItem, q FeedQuery) []entity.NewsItem {
	query := strings.ToLower(strings.TrimSpace(q.Query))
	out := make([]entity.NewsItem, 0, len(catalog))
	for _, item := range catalog {
		if q.HalalOnly && !item.IsHalal {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(item.Company), query) &&
			!strings.Contains(strings.ToLower(item.Ticker), query) {
			continue
		}
		if q.Category != "" && q.Category != entity.CategoryAll && item.Category != q.Category {
			continue
		}
		out = append(out, item)
	}
	return out
}

// FeedService serves the news catalog and its filtered views.
type FeedService interface {
	ListNews(ctx context.Context, req dto.FeedRequest) (*dto.FeedResponse, error)
	GetNews(ctx context.Context, id string) (*entity.NewsItem, error)
	FindByTicker(ctx context.Context, ticker string) (*entity.NewsItem, error)
	Catalog(ctx context.Context) []entity.NewsItem
}

// NewFeedService loads the catalog once. The catalog never changes afterwards.
func NewFeedService(ctx context.Context, newsRepo repository.NewsRepository, cacheTTL time.Duration, log *logger.Logger) (FeedService, error) {
	catalog, err := newsRepo.FetchNewsCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load news catalog: %w", err)
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	byID := make(map[string]int, len(catalog))
	byTicker := make(map[string]int, len(catalog))
	for i, item := range catalog {
		if _, dup := byID[item.ID]; dup {
			return nil, fmt.Errorf("duplicate news id %q in catalog", item.ID)
		}
		if _, dup := byTicker[strings.ToUpper(item.Ticker)]; dup {
			return nil, fmt.Errorf("duplicate ticker %q in catalog", item.Ticker)
		}
		byID[item.ID] = i
		byTicker[strings.ToUpper(item.Ticker)] = i
	}

	log.Info("News catalog loaded", logger.IntField("items", len(catalog)))

	return &feedService{
		catalog:  catalog,
		byID:     byID,
		byTicker: byTicker,
		memo:     cache.New(cacheTTL, 2*cacheTTL),
		logger:   log,
	}, nil
}

type feedService struct {
	catalog  []entity.NewsItem
	byID     map[string]int
	byTicker map[string]int
	memo     *cache.Cache
	logger   *logger.Logger
}

type feedResult struct {
	items  []entity.NewsItem
	counts map[string]int
}

// ListNews applies the feed controls. Results are memoized on the normalized controls.
func (s *feedService) ListNews(ctx context.Context, req dto.FeedRequest) (*dto.FeedResponse, error) {
	category, err := ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	q := FeedQuery{
		Query:     strings.TrimSpace(req.Query),
		HalalOnly: req.HalalOnly,
		Category:  category,
	}

	key := fmt.Sprintf("%s|%t|%s", strings.ToLower(q.Query), q.HalalOnly, q.Category)
	var result *feedResult
	if v, ok := s.memo.Get(key); ok {
		result = v.(*feedResult)
	} else {
		result = &feedResult{
			items:  FilterNews(s.catalog, q),
			counts: s.categoryCounts(q),
		}
		s.memo.SetDefault(key, result)
	}

	items := make([]entity.NewsItem, 0, len(result.items))
	for _, item := range result.items {
		items = append(items, item.Clone())
	}
	counts := make(map[string]int, len(result.counts))
	for k, v := range result.counts {
		counts[k] = v
	}

	return &dto.FeedResponse{
		Items:          items,
		Count:          len(items),
		Query:          q.Query,
		HalalOnly:      q.HalalOnly,
		Category:       q.Category,
		CategoryCounts: counts,
	}, nil
}

// categoryCounts counts the items each tab would show under the same query and halal flag.
func (s *feedService) categoryCounts(q FeedQuery) map[string]int {
	counts := make(map[string]int, len(entity.Categories)+1)
	base := FilterNews(s.catalog, FeedQuery{Query: q.Query, HalalOnly: q.HalalOnly, Category: entity.CategoryAll})
	counts[string(entity.CategoryAll)] = len(base)
	for _, c := range entity.Categories {
		counts[string(c)] = 0
	}
	for _, item := range base {
		counts[string(item.Category)]++
	}
	return counts
}

func (s *feedService) GetNews(ctx context.Context, id string) (*entity.NewsItem, error) {
	i, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNewsNotFound, id)
	}
	item := s.catalog[i].Clone()
	return &item, nil
}

func (s *feedService) FindByTicker(ctx context.Context, ticker string) (*entity.NewsItem, error) {
	i, ok := s.byTicker[strings.ToUpper(strings.TrimSpace(ticker))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
	}
	item := s.catalog[i].Clone()
	return &item, nil
}

// Catalog returns a copy of the whole catalog in order.
func (s *feedService) Catalog(ctx context.Context) []entity.NewsItem {
	items := make([]entity.NewsItem, 0, len(s.catalog))
	for _, item := range s.catalog {
		items = append(items, item.Clone())
	}
	return items
}
