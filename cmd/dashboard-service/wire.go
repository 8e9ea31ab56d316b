package main

import (
	"context"
	"fmt"
	"time"

	"financial-news-ai/internal/dashboard/config"
	delivery "financial-news-ai/internal/dashboard/delivery/http"
	"financial-news-ai/internal/dashboard/repository"
	"financial-news-ai/internal/dashboard/service"
	"financial-news-ai/pkg/logger"
	"financial-news-ai/pkg/postgres"
	"financial-news-ai/pkg/redis"
	"financial-news-ai/pkg/telegram"
	"financial-news-ai/pkg/utils"

	"google.golang.org/genai"
)

// app holds the wired components and the cleanups to run on exit, in reverse order.
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	location *time.Location

	feed     service.FeedService
	analysis service.AnalysisService
	notifier telegram.Notifier
	checks   map[string]delivery.HealthCheck

	cleanups []func()
}

func (a *app) close() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}
}

// newApp loads configuration and wires the pieces shared by every command.
func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{
		cfg:      cfg,
		logger:   appLogger,
		location: utils.LoadLocation(cfg.Analysis.DisplayTimeZone),
		checks:   make(map[string]delivery.HealthCheck),
	}
	a.cleanups = append(a.cleanups, func() { _ = appLogger.Sync() })

	newsRepo, err := a.newsRepository()
	if err != nil {
		a.close()
		return nil, err
	}

	a.feed, err = service.NewFeedService(ctx, newsRepo, cfg.Feed.CacheTTL, appLogger)
	if err != nil {
		a.close()
		return nil, err
	}

	remote, err := a.remoteSentimentRepository(ctx)
	if err != nil {
		a.close()
		return nil, err
	}
	a.analysis = service.NewAnalysisService(service.NewSentimentClassifier(a.location), remote, appLogger)

	if cfg.Telegram.BotToken != "" {
		a.notifier, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, appLogger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
	}

	return a, nil
}

func (a *app) newsRepository() (repository.NewsRepository, error) {
	switch a.cfg.Catalog.Source {
	case "", "static":
		return repository.NewStaticNewsRepository(), nil
	case "postgres":
		db, err := postgres.NewDB(postgres.Config{
			Host:            a.cfg.Database.Host,
			Port:            a.cfg.Database.Port,
			User:            a.cfg.Database.User,
			Password:        a.cfg.Database.Password,
			DBName:          a.cfg.Database.DBName,
			SSLMode:         a.cfg.Database.SSLMode,
			TimeZone:        a.cfg.Database.TimeZone,
			MaxIdleConns:    a.cfg.Database.MaxIdleConns,
			MaxOpenConns:    a.cfg.Database.MaxOpenConns,
			ConnMaxLifetime: a.cfg.Database.ConnMaxLifetime,
			LogLevel:        a.cfg.Database.LogLevel,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		sqlDB, err := db.DB.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		a.cleanups = append(a.cleanups, func() { _ = sqlDB.Close() })
		a.checks["postgres"] = sqlDB.PingContext
		return repository.NewPostgresNewsRepository(db.DB), nil
	default:
		return nil, fmt.Errorf("unknown catalog.source %q", a.cfg.Catalog.Source)
	}
}

// remoteSentimentRepository returns nil in mock mode.
func (a *app) remoteSentimentRepository(ctx context.Context) (repository.RemoteSentimentRepository, error) {
	switch a.cfg.Analysis.Mode {
	case "", "mock":
		return nil, nil
	case "remote":
	default:
		return nil, fmt.Errorf("unknown analysis.mode %q", a.cfg.Analysis.Mode)
	}

	switch a.cfg.Remote.Provider {
	case "http":
		return repository.NewHTTPSentimentRepository(a.cfg, a.logger)
	case "gemini":
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  a.cfg.Gemini.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		return repository.NewGeminiSentimentRepository(a.cfg, a.logger, client.Models)
	default:
		return nil, fmt.Errorf("unknown remote.provider %q", a.cfg.Remote.Provider)
	}
}

// sessionRepository connects the configured session store.
func (a *app) sessionRepository() (repository.SessionRepository, error) {
	switch a.cfg.Session.Store {
	case "", "memory":
		return repository.NewMemorySessionRepository(time.Minute), nil
	case "redis":
		client, err := redis.NewClient(redis.Config{
			Host:     a.cfg.Redis.Host,
			Port:     a.cfg.Redis.Port,
			Password: a.cfg.Redis.Password,
			DB:       a.cfg.Redis.DB,
			PoolSize: a.cfg.Redis.PoolSize,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		a.cleanups = append(a.cleanups, func() { _ = client.Close() })
		a.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return repository.NewRedisSessionRepository(client.Client), nil
	default:
		return nil, fmt.Errorf("unknown session.store %q", a.cfg.Session.Store)
	}
}
