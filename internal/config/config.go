// Package config читает настройки приложения из окружения.
package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config хранит основные настройки приложения.
type Config struct {
	TelegramToken   string        `env:"TELEGRAM_BOT_TOKEN"`
	DatabaseURL     string        `env:"DATABASE_URL"` // пусто — работаем на заглушке в памяти
	StoreDelay      time.Duration `env:"STORE_DELAY"      envDefault:"800ms"`
	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"1m"`
	Timezone        string        `env:"APP_TIMEZONE"     envDefault:"Local"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
}

// LoadConfig разбирает переменные окружения.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if cfg.TelegramToken == "" {
		return nil, errors.New("TELEGRAM_BOT_TOKEN не задан в окружении")
	}
	return cfg, nil
}
