package config

import (
	"time"

	"financial-news-ai/pkg/config"
)

// Catalog selects where the news catalog is read from.
type Catalog struct {
	Source string `mapstructure:"source"` // "static" or "postgres"
}

// Feed holds feed filter settings.
type Feed struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Analysis holds sentiment analysis settings.
type Analysis struct {
	Mode            string        `mapstructure:"mode"` // "mock" or "remote"
	SimulatedDelay  time.Duration `mapstructure:"simulated_delay"`
	DisplayTimeZone string        `mapstructure:"display_time_zone"`
	CardIdleTTL     time.Duration `mapstructure:"card_idle_ttl"`
}

// Remote holds the optional remote sentiment provider configuration.
type Remote struct {
	Provider            string        `mapstructure:"provider"` // "http" or "gemini"
	Endpoint            string        `mapstructure:"endpoint"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// Session holds session and login form settings.
type Session struct {
	Store          string        `mapstructure:"store"` // "redis" or "memory"
	TTL            time.Duration `mapstructure:"ttl"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	CookieName     string        `mapstructure:"cookie_name"`
	SimulatedDelay time.Duration `mapstructure:"simulated_delay"`
}

// Digest holds the Telegram digest schedule.
type Digest struct {
	Cron string `mapstructure:"cron"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the dashboard service.
type Config struct {
	App      config.App      `mapstructure:"app"`
	Logger   config.Logger   `mapstructure:"logger"`
	Database config.Database `mapstructure:"database"`
	Redis    config.Redis    `mapstructure:"redis"`
	API      config.API      `mapstructure:"api"`
	Catalog  Catalog         `mapstructure:"catalog"`
	Feed     Feed            `mapstructure:"feed"`
	Analysis Analysis        `mapstructure:"analysis"`
	Remote   Remote          `mapstructure:"remote"`
	Gemini   Gemini          `mapstructure:"gemini"`
	Session  Session         `mapstructure:"session"`
	Digest   Digest          `mapstructure:"digest"`
	Telegram Telegram        `mapstructure:"telegram"`
}

// Defaults select mock analysis after 650ms, login after 600ms and the static catalog.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                      "financial-news-ai",
		"app.env":                       "development",
		"logger.level":                  "info",
		"logger.encoding":               "json",
		"api.port":                      8080,
		"database.host":                 "localhost",
		"database.port":                 5432,
		"database.ssl_mode":             "disable",
		"redis.host":                    "localhost",
		"redis.port":                    6379,
		"catalog.source":                "static",
		"feed.cache_ttl":                "5m",
		"analysis.mode":                 "mock",
		"analysis.simulated_delay":      "650ms",
		"analysis.display_time_zone":    "UTC",
		"analysis.card_idle_ttl":        "30m",
		"remote.provider":               "http",
		"remote.endpoint":               "",
		"remote.timeout":                "15s",
		"remote.max_request_per_minute": 60,
		"gemini.api_key":                "",
		"gemini.model":                  "gemini-2.0-flash",
		"session.store":                 "memory",
		"session.ttl":                   "24h",
		"session.jwt_secret":            "",
		"session.cookie_name":           "authToken",
		"session.simulated_delay":       "600ms",
		"digest.cron":                   "",
		"telegram.bot_token":            "",
		"telegram.chat_id":              0,
	}
}

// Load loads the dashboard configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, Defaults(), &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
