package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"financial-news-ai/internal/dashboard/dto"
	"financial-news-ai/pkg/logger"
	"financial-news-ai/pkg/telegram"
	"financial-news-ai/pkg/utils"

	"github.com/robfig/cron/v3"
)

// alertTimeout bounds the error alert, which is sent after the digest context may have expired.
const alertTimeout = 30 * time.Second

// ErrNotifierDisabled is returned when a digest is sent without a Telegram notifier.
var ErrNotifierDisabled = errors.New("telegram notifier is not configured")

// DigestService classifies the whole catalog and posts the result to Telegram.
type DigestService interface {
	BuildDigest(ctx context.Context) []dto.DigestEntry
	SendDigest(ctx context.Context) error
}

// NewDigestService creates a new DigestService. notifier may be nil, in which case SendDigest fails.
func NewDigestService(feed FeedService, analysis AnalysisService, notifier telegram.Notifier, loc *time.Location, log *logger.Logger) DigestService {
	if loc == nil {
		loc = time.UTC
	}
	return &digestService{
		feed:     feed,
		analysis: analysis,
		notifier: notifier,
		location: loc,
		logger:   log,
	}
}

type digestService struct {
	feed     FeedService
	analysis AnalysisService
	notifier telegram.Notifier
	location *time.Location
	logger   *logger.Logger
}

// BuildDigest returns one entry per catalog item, in catalog order.
func (s *digestService) BuildDigest(ctx context.Context) []dto.DigestEntry {
	catalog := s.feed.Catalog(ctx)
	entries := make([]dto.DigestEntry, 0, len(catalog))
	for _, item := range catalog {
		a := s.analysis.Analyze(ctx, item)
		entries = append(entries, dto.DigestEntry{
			Ticker:            item.Ticker,
			Company:           item.Company,
			Headline:          item.Headline,
			IsHalal:           item.IsHalal,
			Price:             item.Price,
			PriceChange:       item.PriceChange,
			Sentiment:         string(a.Sentiment),
			Confidence:        a.Confidence,
			ShortTermBuyRange: a.ShortTermBuyRange,
			LongTermBuyRange:  a.LongTermBuyRange,
		})
	}
	return entries
}

func (s *digestService) SendDigest(ctx context.Context) error {
	if s.notifier == nil {
		return ErrNotifierDisabled
	}

	entries := s.BuildDigest(ctx)
	generatedAt := utils.FormatLocaleTimestamp(utils.TimeNowIn(s.location))
	messages := telegram.FormatSentimentDigest(entries, generatedAt)
	for i, msg := range messages {
		if err := s.notifier.SendMessage(ctx, msg); err != nil {
			return fmt.Errorf("failed to send digest part %d: %w", i+1, err)
		}
	}

	s.logger.Info("Sentiment digest sent",
		logger.IntField("entries", len(entries)),
		logger.IntField("messages", len(messages)))
	return nil
}

// DigestScheduler runs SendDigest on a cron schedule.
type DigestScheduler struct {
	cron    *cron.Cron
	digest  DigestService
	logger  *logger.Logger
	timeout time.Duration
	mu      sync.Mutex
	running bool
}

// NewDigestScheduler validates spec and registers the digest job.
func NewDigestScheduler(spec string, digest DigestService, notifier telegram.Notifier, loc *time.Location, log *logger.Logger) (*DigestScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithLocation(loc))

	s := &DigestScheduler{
		cron:    c,
		digest:  digest,
		logger:  log,
		timeout: 5 * time.Minute,
	}
	_, err := c.AddFunc(spec, func() {
		s.run(notifier)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid digest cron %q: %w", spec, err)
	}
	return s, nil
}

func (s *DigestScheduler) run(notifier telegram.Notifier) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.digest.SendDigest(ctx); err != nil {
		s.logger.Error("Failed to send scheduled digest", logger.ErrorField(err))
		if notifier != nil && !errors.Is(err, ErrNotifierDisabled) {
			alertCtx, alertCancel := context.WithTimeout(context.Background(), alertTimeout)
			defer alertCancel()
			if alertErr := notifier.SendMessage(alertCtx, telegram.FormatErrorAlertMessage(time.Now(), "digest", err.Error())); alertErr != nil {
				s.logger.Error("Failed to send digest error alert", logger.ErrorField(alertErr))
			}
		}
	}
}

// Start begins running the schedule in the background.
func (s *DigestScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()
	s.logger.Info("Digest scheduler started")
}

// Stop halts the schedule and waits for a running digest to finish or ctx to end.
func (s *DigestScheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false

	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("Digest scheduler stop timed out")
	}
	s.logger.Info("Digest scheduler stopped")
}
