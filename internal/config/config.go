package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	BotToken string `env:"BOT_TOKEN"`

	// DataFile is the JSON ledger snapshot. When DatabaseURL is set the
	// ledger lives in Postgres instead and DataFile is ignored.
	DataFile    string `env:"DATA_FILE" envDefault:"economy.json"`
	DatabaseURL string `env:"DATABASE_URL"`

	// ModerationDB enables durable moderation state (bbolt file path).
	// Empty keeps bans and toggles in memory, lost on restart.
	ModerationDB string `env:"MODERATION_DB"`

	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"@"`
	DailyReward   int64  `env:"DAILY_REWARD" envDefault:"1000"`
	Timezone      string `env:"TZ" envDefault:"UTC"`

	MenuImageURL   string        `env:"MENU_IMAGE_URL"`
	ScreenshotURL  string        `env:"SCREENSHOT_API_URL"`
	TTSURL         string        `env:"TTS_API_URL"`
	ImageSearchURL string        `env:"IMAGE_SEARCH_API_URL"`
	ConvertURL     string        `env:"CONVERT_API_URL"`
	ProxyTimeout   time.Duration `env:"PROXY_TIMEOUT" envDefault:"15s"`
}

func MustLoad() Config {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.BotToken == "" {
		log.Fatal("BOT_TOKEN is required")
	}
	if cfg.CommandPrefix == "" {
		cfg.CommandPrefix = "@"
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		log.Fatalf("config: bad TZ %q: %v", cfg.Timezone, err)
	}
	return cfg
}
