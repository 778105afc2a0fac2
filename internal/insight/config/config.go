package config

import (
	"time"

	"golang-stock-insight/pkg/config"
)

// Polygon holds the configuration for the Polygon.io market data API.
type Polygon struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	BarsLookbackDays    int    `mapstructure:"bars_lookback_days"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	BaseURL             string `mapstructure:"base_url"`
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// News holds the configuration for article retrieval.
type News struct {
	RSSBaseURL       string        `mapstructure:"rss_base_url"`
	MaxItems         int           `mapstructure:"max_items"`
	CacheTTL         time.Duration `mapstructure:"cache_ttl"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
	MaxNewsAgeInDays int           `mapstructure:"max_news_age_in_days"`
}

// Panel holds panel lifecycle tuning.
type Panel struct {
	AutoStart        bool          `mapstructure:"auto_start"`
	AutoStartDelay   time.Duration `mapstructure:"auto_start_delay"`
	AnalysisTimeout  time.Duration `mapstructure:"analysis_timeout"`
	StreamBufferSize int           `mapstructure:"stream_buffer_size"`
}

// Scheduler holds the scheduled-analysis configuration.
type Scheduler struct {
	Enabled        bool   `mapstructure:"enabled"`
	CronExpression string `mapstructure:"cron_expression"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the analysis service.
type Config struct {
	App       config.App      `mapstructure:"app"`
	Logger    config.Logger   `mapstructure:"logger"`
	Database  config.Database `mapstructure:"database"`
	Redis     config.Redis    `mapstructure:"redis"`
	API       config.API      `mapstructure:"api"`
	Polygon   Polygon         `mapstructure:"polygon"`
	Gemini    Gemini          `mapstructure:"gemini"`
	News      News            `mapstructure:"news"`
	Panel     Panel           `mapstructure:"panel"`
	Scheduler Scheduler       `mapstructure:"scheduler"`
	Telegram  Telegram        `mapstructure:"telegram"`
}

// Load loads the analysis service configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
